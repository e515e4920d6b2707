// Package domain holds the core entities, error taxonomy, and ports of the
// recruitment chat service. It stays free of third-party imports so usecases
// and adapters can depend on it without pulling in infrastructure.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrSessionExpired    = errors.New("session expired")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrUpstreamServer    = errors.New("upstream server error")
	ErrProviderAuth      = errors.New("provider credentials invalid")
	ErrProviderQuota     = errors.New("provider quota exhausted")
	ErrInternal          = errors.New("internal error")
)

// EmploymentType enumerates how a posting is staffed.
type EmploymentType string

// Employment types accepted in job postings.
const (
	EmploymentFullTime   EmploymentType = "full-time"
	EmploymentPartTime   EmploymentType = "part-time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
)

// SalaryRange is the advertised compensation band of a posting.
type SalaryRange struct {
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Currency string  `json:"currency" yaml:"currency"`
}

// ExperienceRange is the advertised experience band of a posting.
type ExperienceRange struct {
	Min  int    `json:"min" yaml:"min"`
	Max  int    `json:"max" yaml:"max"`
	Unit string `json:"unit" yaml:"unit"` // years|months
}

// JobPosting is immutable reference data loaded at startup and never mutated.
type JobPosting struct {
	ID               string          `json:"id" yaml:"id"`
	Title            string          `json:"title" yaml:"title"`
	Company          string          `json:"company" yaml:"company"`
	Location         string          `json:"location" yaml:"location"`
	EmploymentType   EmploymentType  `json:"employment_type" yaml:"employment_type"`
	Requirements     []string        `json:"requirements" yaml:"requirements"`
	Responsibilities []string        `json:"responsibilities" yaml:"responsibilities"`
	Benefits         []string        `json:"benefits" yaml:"benefits"`
	Skills           []string        `json:"skills" yaml:"skills"`
	Salary           SalaryRange     `json:"salary" yaml:"salary"`
	Experience       ExperienceRange `json:"experience" yaml:"experience"`
	Remote           bool            `json:"remote" yaml:"remote"`
}

// SkillLevel is the self-reported or inferred proficiency of a skill.
type SkillLevel string

// Skill levels ordered from weakest to strongest.
const (
	LevelBeginner     SkillLevel = "Beginner"
	LevelIntermediate SkillLevel = "Intermediate"
	LevelAdvanced     SkillLevel = "Advanced"
	LevelExpert       SkillLevel = "Expert"
)

// Skill is one entry of a candidate's skill list. Confidence reflects how
// sure extraction was about the claim, in [0,1].
type Skill struct {
	Name       string     `json:"name"`
	Level      SkillLevel `json:"level"`
	Confidence float64    `json:"confidence"`
}

// Experience captures total professional experience.
// Invariants: Years >= 0, Months in [0,11].
type Experience struct {
	Years       int    `json:"years"`
	Months      int    `json:"months"`
	Description string `json:"description,omitempty"`
}

// Education is one degree entry, keyed for merging by (Degree, Institution).
type Education struct {
	Degree         string  `json:"degree"`
	Institution    string  `json:"institution"`
	GraduationYear int     `json:"graduation_year,omitempty"`
	GPA            float64 `json:"gpa,omitempty"`
}

// Availability describes when and how the candidate can start.
type Availability struct {
	StartDate         string `json:"start_date,omitempty"`
	NoticePeriodDays  int    `json:"notice_period_days,omitempty"` // 0-365
	PreferredSchedule string `json:"preferred_schedule,omitempty"` // Full-time|Part-time|Flexible
}

// SalaryExpectation is the candidate side of the salary conversation.
type SalaryExpectation struct {
	Expected   float64 `json:"expected"`
	Currency   string  `json:"currency"`
	Negotiable bool    `json:"negotiable"`
}

// LocationInfo captures where the candidate is and is willing to be.
type LocationInfo struct {
	Current            string   `json:"current,omitempty"`
	WillingToRelocate  bool     `json:"willing_to_relocate"`
	PreferredLocations []string `json:"preferred_locations,omitempty"`
}

// CandidateProfile is built incrementally from chat. It is created empty at
// session start and mutated only through the merge operation or explicit API
// updates. Confidence is always recomputed, never set ad hoc.
type CandidateProfile struct {
	ID           string            `json:"id"`
	Name         string            `json:"name,omitempty"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Experience   Experience        `json:"experience"`
	Skills       []Skill           `json:"skills,omitempty"`
	Education    []Education       `json:"education,omitempty"`
	Interests    []string          `json:"interests,omitempty"`
	Availability Availability      `json:"availability"`
	Salary       SalaryExpectation `json:"salary"`
	Location     LocationInfo      `json:"location"`
	Confidence   float64           `json:"confidence"`
	LastUpdated  time.Time         `json:"last_updated"`
}

// HasExperience reports whether any experience has been captured.
func (p CandidateProfile) HasExperience() bool {
	return p.Experience.Years > 0 || p.Experience.Months > 0
}

// MessageRole identifies who authored a chat message.
type MessageRole string

// Message roles.
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// MessageMeta carries optional per-message diagnostics.
type MessageMeta struct {
	Extracted      *CandidateProfile `json:"extracted,omitempty"`
	Confidence     float64           `json:"confidence,omitempty"`
	ProcessingTime time.Duration     `json:"processing_time,omitempty"`
	Fallback       bool              `json:"fallback,omitempty"`
}

// ChatMessage is immutable once appended to a session. Insertion order is
// conversation order; extraction re-scans the whole ordered list.
type ChatMessage struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Role      MessageRole  `json:"role"`
	Content   string       `json:"content"` // 1-2000 chars
	CreatedAt time.Time    `json:"created_at"`
	Meta      *MessageMeta `json:"meta,omitempty"`
}

// SessionStatus is the lifecycle state of a conversation session.
// Transitions: active -> completed, active -> expired. Terminal states only
// leave the store via deletion.
type SessionStatus string

// Session statuses.
const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
)

// Stage is the current phase of the scripted conversation flow. It is derived
// per turn from (message count, populated profile fields) and never regresses
// except on explicit reset.
type Stage string

// Conversation stages in visitation order.
const (
	StageGreeting      Stage = "greeting"
	StageInfoGathering Stage = "information_gathering"
	StageAssessment    Stage = "qualification_assessment"
	StageSalary        Stage = "salary_negotiation"
	StageWrapUp        Stage = "wrapping_up"
	StageCompleted     Stage = "completed"
)

// DefaultSessionTTL is how long a fresh session stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// MaxMessageLength bounds inbound chat content.
const MaxMessageLength = 2000

// ConversationSession owns one candidate profile and an ordered message list,
// and references a job posting by id (many sessions may share one posting).
type ConversationSession struct {
	ID        string           `json:"id"`
	JobID     string           `json:"job_id,omitempty"`
	Messages  []ChatMessage    `json:"messages"`
	Profile   CandidateProfile `json:"profile"`
	Status    SessionStatus    `json:"status"`
	Stage     Stage            `json:"stage"`
	Version   int64            `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Expired reports whether the session's expiry has passed at now.
func (s ConversationSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// MessageCount returns the number of messages exchanged so far.
func (s ConversationSession) MessageCount() int { return len(s.Messages) }

// MergeStrategy selects how new profile data combines with existing data.
type MergeStrategy string

// Merge strategies.
const (
	MergeReplace MergeStrategy = "replace"
	MergeFill    MergeStrategy = "merge" // default: fill gaps, max experience, union lists
	MergeAppend  MergeStrategy = "append"
)

// SessionStore is the narrow persistence port for sessions. The reference
// store is in-memory; Redis and Postgres adapters back the same contract.
//
//go:generate mockery --name=SessionStore --with-expecter --filename=session_store_mock.go
type SessionStore interface {
	Get(ctx Context, id string) (ConversationSession, error)
	Save(ctx Context, s ConversationSession) error
	Delete(ctx Context, id string) error
	ListAll(ctx Context) ([]ConversationSession, error)
}

// JobCatalog serves read-only job posting reference data.
type JobCatalog interface {
	Get(id string) (JobPosting, error)
	List() []JobPosting
}

// CompletionClient is the single outbound port to the language-model
// provider. Only the gateway may call it.
type CompletionClient interface {
	Complete(ctx Context, prompt string, maxTokens int) (string, error)
}

// Reply is one generated assistant turn.
type Reply struct {
	Text       string
	Confidence float64
	// Fallback marks canned replies served after retries were exhausted.
	Fallback bool
}

// ReplyGateway produces the assistant reply for a rendered prompt, absorbing
// transient provider failures into stage-keyed fallbacks.
type ReplyGateway interface {
	Generate(ctx Context, promptText string, st Stage) (Reply, error)
}

// Session lifecycle event names.
const (
	EventSessionCreated   = "session.created"
	EventSessionCompleted = "session.completed"
	EventSessionExpired   = "session.expired"
	EventProfileUpdated   = "profile.updated"
)

// SessionEvent is the payload carried by lifecycle events.
type SessionEvent struct {
	SessionID  string        `json:"session_id"`
	JobID      string        `json:"job_id,omitempty"`
	Stage      Stage         `json:"stage"`
	Status     SessionStatus `json:"status"`
	Confidence float64       `json:"confidence"`
	Messages   int           `json:"messages"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// SessionKey returns the partitioning key for the event, keeping all events
// of one session in order.
func (e SessionEvent) SessionKey() string { return e.SessionID }

// EventPublisher emits session lifecycle events. Implementations must be safe
// to skip (a nil publisher disables events).
type EventPublisher interface {
	Publish(ctx Context, event string, payload any) error
	Close() error
}

// Context aliases std context so domain signatures stay uniform.
type Context = context.Context
