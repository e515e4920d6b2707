package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/repo/memory"
	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
	"github.com/fairyhunter13/ai-recruit-chat/internal/prompt"
)

// fakeGateway returns a fixed reply or error.
type fakeGateway struct {
	reply domain.Reply
	err   error
	calls int
}

func (g *fakeGateway) Generate(_ domain.Context, _ string, _ domain.Stage) (domain.Reply, error) {
	g.calls++
	if g.err != nil {
		return domain.Reply{}, g.err
	}
	return g.reply, nil
}

func newConversationService(t *testing.T, gw domain.ReplyGateway) (*ConversationService, *SessionService) {
	t.Helper()
	sessions := NewSessionService(memory.New(), testCatalog(), nil, domain.DefaultSessionTTL)
	builder := prompt.NewBuilder("gpt-4", 8, 3000)
	return NewConversationService(sessions, testCatalog(), gw, builder), sessions
}

func TestProcessMessage_FullTurn(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{reply: domain.Reply{Text: "Great to meet you, Sarah!", Confidence: 0.9}}
	conv, sessions := newConversationService(t, gw)
	ctx := context.Background()

	sess, err := sessions.Create(ctx, nil, "backend-eng")
	require.NoError(t, err)

	res, err := conv.ProcessMessage(ctx, sess.ID, "Hi, I'm Sarah Johnson, I have 6 years of experience with React and Node.js")
	require.NoError(t, err)

	assert.Equal(t, "Great to meet you, Sarah!", res.AssistantMessage.Content)
	assert.Equal(t, domain.RoleAssistant, res.AssistantMessage.Role)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, gw.calls)

	assert.Equal(t, "Sarah Johnson", res.Profile.Name)
	assert.Equal(t, 6, res.Profile.Experience.Years)
	names := make([]string, 0, len(res.Profile.Skills))
	for _, sk := range res.Profile.Skills {
		names = append(names, sk.Name)
	}
	assert.Contains(t, names, "React")
	assert.Contains(t, names, "Node.js")

	after, err := sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, after.Messages, 2)
	assert.Equal(t, domain.RoleUser, after.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, after.Messages[1].Role)
	require.NotNil(t, after.Messages[1].Meta)
	assert.NotNil(t, after.Messages[1].Meta.Extracted)
	assert.Equal(t, sess.Version+1, after.Version)
}

func TestProcessMessage_ValidatesContent(t *testing.T) {
	t.Parallel()
	conv, sessions := newConversationService(t, &fakeGateway{reply: domain.Reply{Text: "ok"}})
	ctx := context.Background()

	sess, err := sessions.Create(ctx, nil, "")
	require.NoError(t, err)

	_, err = conv.ProcessMessage(ctx, sess.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = conv.ProcessMessage(ctx, sess.ID, strings.Repeat("a", domain.MaxMessageLength+1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestProcessMessage_MissingSession(t *testing.T) {
	t.Parallel()
	conv, _ := newConversationService(t, &fakeGateway{reply: domain.Reply{Text: "ok"}})
	_, err := conv.ProcessMessage(context.Background(), "absent", "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessMessage_ExpiredSession(t *testing.T) {
	t.Parallel()
	conv, sessions := newConversationService(t, &fakeGateway{reply: domain.Reply{Text: "ok"}})
	ctx := context.Background()

	sess, err := sessions.Create(ctx, nil, "")
	require.NoError(t, err)
	sess.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, sessions.Store.Save(ctx, sess))

	_, err = conv.ProcessMessage(ctx, sess.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestProcessMessage_GatewayErrorLeavesSessionUntouched(t *testing.T) {
	t.Parallel()
	conv, sessions := newConversationService(t, &fakeGateway{err: domain.ErrProviderAuth})
	ctx := context.Background()

	sess, err := sessions.Create(ctx, nil, "")
	require.NoError(t, err)

	_, err = conv.ProcessMessage(ctx, sess.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrProviderAuth)

	after, err := sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Messages, "failed turns do not persist the user message")
	assert.Equal(t, sess.Version, after.Version)
}

func TestProcessMessage_StageNeverRegresses(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{reply: domain.Reply{Text: "noted", Confidence: 0.9}}
	conv, sessions := newConversationService(t, gw)
	ctx := context.Background()

	sess, err := sessions.Create(ctx, nil, "")
	require.NoError(t, err)

	turns := []string{
		"Hi there!",
		"I'm Sarah Johnson, you can reach me at sarah.j@example.com",
		"I have 6 years of experience with React and Node.js",
		"I'm looking for around $120,000 per year",
		"Sounds good, what are the next steps?",
	}
	prev := sess.Stage
	ranks := map[domain.Stage]int{
		domain.StageGreeting:      0,
		domain.StageInfoGathering: 1,
		domain.StageAssessment:    2,
		domain.StageSalary:        3,
		domain.StageWrapUp:        4,
		domain.StageCompleted:     5,
	}
	for _, msg := range turns {
		res, err := conv.ProcessMessage(ctx, sess.ID, msg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ranks[res.Stage], ranks[prev], "stage regressed from %s to %s", prev, res.Stage)
		prev = res.Stage
	}
	assert.NotEqual(t, domain.StageGreeting, prev, "conversation advanced past greeting")
}

func TestReset_ReturnsToGreeting(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{reply: domain.Reply{Text: "noted", Confidence: 0.9}}
	conv, sessions := newConversationService(t, gw)
	ctx := context.Background()

	sess, err := sessions.Create(ctx, nil, "")
	require.NoError(t, err)
	_, err = conv.ProcessMessage(ctx, sess.ID, "Hi, I'm Sarah Johnson")
	require.NoError(t, err)
	_, err = conv.ProcessMessage(ctx, sess.ID, "My email is sarah.j@example.com")
	require.NoError(t, err)

	got, err := conv.Reset(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageGreeting, got.Stage)
	assert.Equal(t, "Sarah Johnson", got.Profile.Name, "reset keeps the profile")
	assert.NotEmpty(t, got.Messages, "reset keeps the history")
}
