package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

func testJob() domain.JobPosting {
	return domain.JobPosting{
		ID:           "job-1",
		Title:        "Senior Backend Engineer",
		Company:      "Acme Corp",
		Location:     "Berlin",
		Requirements: []string{"5+ years Go", "Kubernetes"},
		Salary:       domain.SalaryRange{Min: 80000, Max: 110000, Currency: "EUR"},
		Remote:       true,
	}
}

func TestBuild_ContainsAllSections(t *testing.T) {
	t.Parallel()
	b := NewBuilder("gpt-4", 8, 3000)
	p := domain.CandidateProfile{Name: "Sarah Johnson"}
	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "Hello!"},
		{Role: domain.RoleAssistant, Content: "Hi Sarah, welcome!"},
	}

	out := b.Build("What does the role pay?", testJob(), p, history, domain.StageSalary)

	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "Senior Backend Engineer")
	assert.Contains(t, out, "80000-110000 EUR")
	assert.Contains(t, out, "salary_negotiation")
	assert.Contains(t, out, "User: Hello!")
	assert.Contains(t, out, "Assistant: Hi Sarah, welcome!")
	assert.Contains(t, out, "Name: Sarah Johnson")
	assert.Contains(t, out, "Candidate's message: What does the role pay?")
	assert.Contains(t, out, "Ask at most one question.")
}

func TestBuild_EmptyHistoryPlaceholder(t *testing.T) {
	t.Parallel()
	b := NewBuilder("gpt-4", 8, 3000)
	out := b.Build("Hi", testJob(), domain.CandidateProfile{}, nil, domain.StageGreeting)
	assert.Contains(t, out, "This is the beginning of the conversation.")
}

func TestBuild_MissingProfileFieldsSayNotSpecified(t *testing.T) {
	t.Parallel()
	b := NewBuilder("gpt-4", 8, 3000)
	out := b.Build("Hi", domain.JobPosting{}, domain.CandidateProfile{}, nil, domain.StageGreeting)
	assert.Contains(t, out, "Email: Not specified")
	assert.Contains(t, out, "Skills: Not specified")
	assert.Contains(t, out, "Salary range: Not specified")
}

func TestBuild_HistoryWindowBounded(t *testing.T) {
	t.Parallel()
	b := NewBuilder("gpt-4", 4, 3000)
	history := make([]domain.ChatMessage, 0, 20)
	for i := 0; i < 20; i++ {
		history = append(history, domain.ChatMessage{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("message number %d", i),
		})
	}
	out := b.Build("Hi", testJob(), domain.CandidateProfile{}, history, domain.StageGreeting)
	assert.NotContains(t, out, "message number 0")
	assert.NotContains(t, out, "message number 15")
	assert.Contains(t, out, "message number 19")
}

func TestBuild_TokenBudgetShrinksHistory(t *testing.T) {
	t.Parallel()
	b := NewBuilder("gpt-4", 10, 400)
	long := strings.Repeat("lorem ipsum dolor sit amet ", 30)
	history := make([]domain.ChatMessage, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, domain.ChatMessage{Role: domain.RoleUser, Content: long})
	}
	out := b.Build("Hi", testJob(), domain.CandidateProfile{}, history, domain.StageGreeting)
	assert.LessOrEqual(t, b.counter.Count(out, "gpt-4"), 400+400/4, "prompt must stay near the budget")
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()
	b := NewBuilder("gpt-4", 8, 3000)
	p := domain.CandidateProfile{Name: "Sarah"}
	first := b.Build("Hi", testJob(), p, nil, domain.StageGreeting)
	second := b.Build("Hi", testJob(), p, nil, domain.StageGreeting)
	assert.Equal(t, first, second)
}

func TestFallback_AllStagesCovered(t *testing.T) {
	t.Parallel()
	for _, st := range []domain.Stage{
		domain.StageGreeting, domain.StageInfoGathering, domain.StageAssessment,
		domain.StageSalary, domain.StageWrapUp, domain.StageCompleted,
	} {
		assert.NotEmpty(t, Fallback(st), string(st))
	}
	assert.Equal(t, Fallback(domain.StageGreeting), Fallback(domain.Stage("unknown")))
}

func TestTokenCounter_CountsAndCaches(t *testing.T) {
	t.Parallel()
	c := NewTokenCounter()
	n := c.Count("Hello, world!", "gpt-4")
	assert.Greater(t, n, 0)
	assert.Less(t, n, 10)
	// Provider-prefixed ids normalize onto the same encoding.
	m := c.Count("Hello, world!", "meta-llama/llama-3.1-8b-instruct:free")
	assert.Equal(t, n, m)
}
