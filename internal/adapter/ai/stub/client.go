// Package stub provides a deterministic completion client for tests and for
// running the service without provider credentials.
package stub

import (
	"strings"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// Client echoes a deterministic reply derived from the prompt. It never
// fails, which makes orchestration paths reproducible in tests.
type Client struct{}

// New constructs a stub client.
func New() *Client { return &Client{} }

// Complete returns a canned reply that references the candidate's message so
// assertions can tie replies to inputs.
func (c *Client) Complete(_ domain.Context, prompt string, _ int) (string, error) {
	// The rendered prompt carries the user message on a known line.
	for _, line := range strings.Split(prompt, "\n") {
		if msg, ok := strings.CutPrefix(line, "Candidate's message: "); ok {
			return "Thanks for telling me: " + strings.TrimSpace(msg), nil
		}
	}
	return "Thanks! Could you tell me more about yourself?", nil
}
