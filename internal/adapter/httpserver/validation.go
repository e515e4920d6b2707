package httpserver

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of input validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var (
	validID       = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	validStrategy = map[string]bool{
		string(domain.MergeReplace): true,
		string(domain.MergeFill):    true,
		string(domain.MergeAppend):  true,
	}
)

// ValidateSessionID checks the path-supplied session id.
func ValidateSessionID(id string) ValidationResult {
	switch {
	case id == "":
		return invalid("id", "REQUIRED", "Session ID is required")
	case len(id) > 64:
		return invalid("id", "TOO_LONG", "Session ID is too long (max 64 characters)")
	case !validID.MatchString(id):
		return invalid("id", "INVALID_FORMAT", "Session ID contains invalid characters")
	}
	return ValidationResult{Valid: true}
}

// ValidateJobID checks a job posting id.
func ValidateJobID(jobID string) ValidationResult {
	switch {
	case jobID == "":
		return invalid("job_id", "REQUIRED", "Job ID is required")
	case len(jobID) > 100:
		return invalid("job_id", "TOO_LONG", "Job ID is too long (max 100 characters)")
	case !validID.MatchString(jobID):
		return invalid("job_id", "INVALID_FORMAT", "Job ID contains invalid characters")
	}
	return ValidationResult{Valid: true}
}

// ValidateStrategy checks an optional merge strategy value.
func ValidateStrategy(s string) ValidationResult {
	if s == "" || validStrategy[s] {
		return ValidationResult{Valid: true}
	}
	return invalid("strategy", "INVALID_VALUE", "Strategy must be one of: replace, merge, append")
}

func invalid(field, code, msg string) ValidationResult {
	return ValidationResult{Valid: false, Errors: []ValidationError{{Field: field, Code: code, Message: msg}}}
}

// SanitizeString strips null bytes and control noise from free-form input and
// bounds its length.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	if len(input) > domain.MaxMessageLength {
		input = input[:domain.MaxMessageLength]
	}
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}
	return input
}
