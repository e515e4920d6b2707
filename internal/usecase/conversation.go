package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
	"github.com/fairyhunter13/ai-recruit-chat/internal/extract"
	"github.com/fairyhunter13/ai-recruit-chat/internal/profile"
	"github.com/fairyhunter13/ai-recruit-chat/internal/prompt"
	"github.com/fairyhunter13/ai-recruit-chat/internal/stage"
	"github.com/fairyhunter13/ai-recruit-chat/pkg/textx"
)

// TurnResult is what one processed message yields to the caller.
type TurnResult struct {
	AssistantMessage domain.ChatMessage
	Profile          domain.CandidateProfile
	Stage            domain.Stage
	Confidence       float64
	Fallback         bool
}

// ConversationService orchestrates one chat turn: extract, merge, advance the
// stage, render the prompt, generate, append.
type ConversationService struct {
	Sessions *SessionService
	Catalog  domain.JobCatalog
	Gateway  domain.ReplyGateway

	extractor *extract.Engine
	builder   *prompt.Builder
	now       func() time.Time
}

// NewConversationService constructs a ConversationService.
func NewConversationService(sessions *SessionService, catalog domain.JobCatalog, gateway domain.ReplyGateway, builder *prompt.Builder) *ConversationService {
	return &ConversationService{
		Sessions:  sessions,
		Catalog:   catalog,
		Gateway:   gateway,
		extractor: extract.New(),
		builder:   builder,
		now:       time.Now,
	}
}

// ProcessMessage runs the full turn for one inbound candidate message. The
// whole read-modify-write, including the model call, holds the per-session
// lock so concurrent turns on one session cannot interleave their merges.
func (c *ConversationService) ProcessMessage(ctx domain.Context, sessionID, content string) (TurnResult, error) {
	tracer := otel.Tracer("usecase.conversation")
	ctx, span := tracer.Start(ctx, "conversation.ProcessMessage")
	defer span.End()

	content = textx.CollapseWhitespace(strings.TrimSpace(content))
	if content == "" {
		return TurnResult{}, fmt.Errorf("op=conversation.process: empty message: %w", domain.ErrInvalidArgument)
	}
	if len(content) > domain.MaxMessageLength {
		return TurnResult{}, fmt.Errorf("op=conversation.process: message exceeds %d chars: %w",
			domain.MaxMessageLength, domain.ErrInvalidArgument)
	}

	started := c.now()
	var result TurnResult
	var extracted extract.Result

	_, err := c.Sessions.mutate(ctx, sessionID, func(sess *domain.ConversationSession) error {
		if sess.Status != domain.SessionActive || sess.Expired(c.now()) {
			return fmt.Errorf("op=conversation.process: id=%s: %w", sessionID, domain.ErrSessionExpired)
		}

		history := sess.Messages
		now := c.now().UTC()
		sess.Messages = append(sess.Messages, domain.ChatMessage{
			ID:        ulid.Make().String(),
			SessionID: sess.ID,
			Role:      domain.RoleUser,
			Content:   content,
			CreatedAt: now,
		})

		// Extraction is best-effort: it never fails, at worst it adds nothing.
		extracted = c.extractor.Extract(sess.Messages)
		merged := profile.Merge(sess.Profile, extracted.Profile, domain.MergeFill)
		observability.RecordExtraction(extracted.FieldConfidence)
		observability.ProfileConfidenceHistogram.Observe(merged.Confidence)

		next := stage.Next(sess.Stage, merged, len(sess.Messages))

		var job domain.JobPosting
		if sess.JobID != "" && c.Catalog != nil {
			if j, err := c.Catalog.Get(sess.JobID); err == nil {
				job = j
			}
		}

		promptText := c.builder.Build(content, job, merged, history, next)
		reply, err := c.Gateway.Generate(ctx, promptText, next)
		if err != nil {
			return fmt.Errorf("op=conversation.process: %w", err)
		}

		assistant := domain.ChatMessage{
			ID:        ulid.Make().String(),
			SessionID: sess.ID,
			Role:      domain.RoleAssistant,
			Content:   reply.Text,
			CreatedAt: c.now().UTC(),
			Meta: &domain.MessageMeta{
				Extracted:      &extracted.Profile,
				Confidence:     reply.Confidence,
				ProcessingTime: c.now().Sub(started),
				Fallback:       reply.Fallback,
			},
		}
		sess.Messages = append(sess.Messages, assistant)
		sess.Profile = merged
		sess.Stage = next

		result = TurnResult{
			AssistantMessage: assistant,
			Profile:          merged,
			Stage:            next,
			Confidence:       reply.Confidence,
			Fallback:         reply.Fallback,
		}
		return nil
	})
	if err != nil {
		return TurnResult{}, err
	}

	if len(extracted.FieldConfidence) > 0 {
		if sess, gerr := c.Sessions.Store.Get(ctx, sessionID); gerr == nil {
			c.Sessions.publish(ctx, domain.EventProfileUpdated, sess)
		}
	}

	observability.LoggerFromContext(ctx).Info("turn processed",
		slog.String("session_id", sessionID),
		slog.String("stage", string(result.Stage)),
		slog.Int("extracted_fields", len(extracted.FieldConfidence)),
		slog.Bool("fallback", result.Fallback))
	return result, nil
}

// Reset returns the session to the start of the flow without touching the
// accumulated profile or history.
func (c *ConversationService) Reset(ctx domain.Context, sessionID string) (domain.ConversationSession, error) {
	return c.Sessions.mutate(ctx, sessionID, func(sess *domain.ConversationSession) error {
		if sess.Status != domain.SessionActive {
			return fmt.Errorf("op=conversation.reset: id=%s: %w", sessionID, domain.ErrSessionExpired)
		}
		sess.Stage = stage.Reset()
		return nil
	})
}
