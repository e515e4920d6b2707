// Package prompt renders the text prompt sent to the language model. The
// builder is a pure function of its inputs; the only state it carries is a
// token-encoding cache.
package prompt

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
	"github.com/fairyhunter13/ai-recruit-chat/pkg/textx"
)

const notSpecified = "Not specified"

// stageInstructions tells the model what to do in each conversation stage.
var stageInstructions = map[domain.Stage]string{
	domain.StageGreeting:      "Warmly greet the candidate, introduce yourself and the role briefly, and ask an open question to get the conversation going. Ask for their name if they have not given it.",
	domain.StageInfoGathering: "Collect the candidate's basic details: full name, email address, and phone number. Ask for one missing item at a time and acknowledge what they have already shared.",
	domain.StageAssessment:    "Ask about the candidate's professional experience and technical skills relevant to the role. Probe for years of experience and concrete projects.",
	domain.StageSalary:        "Discuss compensation. Ask about the candidate's salary expectations and whether they are negotiable. Mention the advertised range only if asked.",
	domain.StageWrapUp:        "Summarize what you have learned about the candidate, explain the next steps of the hiring process, and thank them for their time.",
	domain.StageCompleted:     "The conversation is complete. Politely close and point the candidate to the next steps already shared.",
}

// Builder renders prompts bounded by a token budget.
type Builder struct {
	counter       *TokenCounter
	model         string
	historyWindow int
	tokenBudget   int
}

// NewBuilder constructs a Builder. historyWindow bounds how many trailing
// messages are rendered; tokenBudget caps the whole prompt.
func NewBuilder(model string, historyWindow, tokenBudget int) *Builder {
	if historyWindow <= 0 {
		historyWindow = 8
	}
	if tokenBudget <= 0 {
		tokenBudget = 3000
	}
	return &Builder{
		counter:       NewTokenCounter(),
		model:         model,
		historyWindow: historyWindow,
		tokenBudget:   tokenBudget,
	}
}

// Build renders the full prompt: persona, job facts, stage instructions,
// recent history, profile so far, the current user message, and a closing
// directive. Missing inputs degrade to stable placeholder lines so the
// template shape never changes underneath the model.
func (b *Builder) Build(userMessage string, job domain.JobPosting, p domain.CandidateProfile, history []domain.ChatMessage, st domain.Stage) string {
	window := b.historyWindow
	out := b.render(userMessage, job, p, history, st, window)
	// Shrink the history window until the prompt fits the budget.
	for window > 0 && b.counter.Count(out, b.model) > b.tokenBudget {
		window--
		out = b.render(userMessage, job, p, history, st, window)
	}
	if b.counter.Count(out, b.model) > b.tokenBudget {
		// History is already gone; hard-cap on characters as a last resort.
		out = textx.Truncate(out, b.tokenBudget*4)
	}
	return out
}

func (b *Builder) render(userMessage string, job domain.JobPosting, p domain.CandidateProfile, history []domain.ChatMessage, st domain.Stage, window int) string {
	var sb strings.Builder

	company := orElse(job.Company, "the company")
	title := orElse(job.Title, "the open position")
	fmt.Fprintf(&sb, "You are a friendly recruitment assistant for %s, speaking with a candidate about the %s role.\n\n", company, title)

	sb.WriteString("Job details:\n")
	fmt.Fprintf(&sb, "- Title: %s\n", orElse(job.Title, notSpecified))
	fmt.Fprintf(&sb, "- Company: %s\n", orElse(job.Company, notSpecified))
	fmt.Fprintf(&sb, "- Location: %s (remote: %s)\n", orElse(job.Location, notSpecified), yesNo(job.Remote))
	fmt.Fprintf(&sb, "- Requirements: %s\n", joinOr(job.Requirements))
	fmt.Fprintf(&sb, "- Responsibilities: %s\n", joinOr(job.Responsibilities))
	if job.Salary.Max > 0 {
		fmt.Fprintf(&sb, "- Salary range: %.0f-%.0f %s\n", job.Salary.Min, job.Salary.Max, job.Salary.Currency)
	} else {
		fmt.Fprintf(&sb, "- Salary range: %s\n", notSpecified)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Current objective (%s): %s\n\n", st, stageInstructions[st])

	sb.WriteString("Conversation so far:\n")
	recent := tail(history, window)
	if len(recent) == 0 {
		sb.WriteString("This is the beginning of the conversation.\n")
	}
	for _, m := range recent {
		fmt.Fprintf(&sb, "%s: %s\n", roleLabel(m.Role), m.Content)
	}
	sb.WriteString("\n")

	sb.WriteString("What we know about the candidate so far:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", orElse(p.Name, notSpecified))
	fmt.Fprintf(&sb, "- Email: %s\n", orElse(p.Email, notSpecified))
	fmt.Fprintf(&sb, "- Phone: %s\n", orElse(p.Phone, notSpecified))
	fmt.Fprintf(&sb, "- Experience: %s\n", experienceLine(p.Experience))
	fmt.Fprintf(&sb, "- Skills: %s\n", skillsLine(p.Skills))
	if p.Salary.Expected > 0 {
		fmt.Fprintf(&sb, "- Salary expectation: %.0f %s\n", p.Salary.Expected, p.Salary.Currency)
	} else {
		fmt.Fprintf(&sb, "- Salary expectation: %s\n", notSpecified)
	}
	fmt.Fprintf(&sb, "- Location: %s\n", orElse(p.Location.Current, notSpecified))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Candidate's message: %s\n\n", userMessage)
	sb.WriteString("Respond conversationally in a few sentences. Ask at most one question.")

	return sb.String()
}

func tail(history []domain.ChatMessage, n int) []domain.ChatMessage {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func roleLabel(r domain.MessageRole) string {
	switch r {
	case domain.RoleAssistant:
		return "Assistant"
	case domain.RoleSystem:
		return "System"
	default:
		return "User"
	}
}

func orElse(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func joinOr(items []string) string {
	if len(items) == 0 {
		return notSpecified
	}
	return strings.Join(items, "; ")
}

func experienceLine(e domain.Experience) string {
	if e.Years == 0 && e.Months == 0 {
		return notSpecified
	}
	parts := make([]string, 0, 2)
	if e.Years > 0 {
		parts = append(parts, fmt.Sprintf("%d years", e.Years))
	}
	if e.Months > 0 {
		parts = append(parts, fmt.Sprintf("%d months", e.Months))
	}
	return strings.Join(parts, " ")
}

func skillsLine(skills []domain.Skill) string {
	if len(skills) == 0 {
		return notSpecified
	}
	parts := make([]string, 0, len(skills))
	for _, s := range skills {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, s.Level))
	}
	return strings.Join(parts, ", ")
}
