// Package usecase wires the pure core packages (extract, profile, stage,
// prompt) to the ports (store, catalog, gateway, events) and owns the
// per-session concurrency contract: every mutation is a locked
// read-modify-write keyed by session id.
package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
	"github.com/fairyhunter13/ai-recruit-chat/internal/profile"
)

// SessionService owns the session lifecycle.
type SessionService struct {
	Store   domain.SessionStore
	Catalog domain.JobCatalog
	Events  domain.EventPublisher

	ttl   time.Duration
	locks *keyedMutex
	now   func() time.Time
}

// NewSessionService constructs a SessionService. A nil events publisher
// disables event emission.
func NewSessionService(store domain.SessionStore, catalog domain.JobCatalog, events domain.EventPublisher, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &SessionService{
		Store:   store,
		Catalog: catalog,
		Events:  events,
		ttl:     ttl,
		locks:   newKeyedMutex(),
		now:     time.Now,
	}
}

// publish emits a lifecycle event, logging delivery failures instead of
// surfacing them: events are advisory, the session flow never depends on them.
func (s *SessionService) publish(ctx domain.Context, event string, sess domain.ConversationSession) {
	if s.Events == nil {
		return
	}
	ev := domain.SessionEvent{
		SessionID:  sess.ID,
		JobID:      sess.JobID,
		Stage:      sess.Stage,
		Status:     sess.Status,
		Confidence: sess.Profile.Confidence,
		Messages:   sess.MessageCount(),
		OccurredAt: s.now().UTC(),
	}
	if err := s.Events.Publish(ctx, event, ev); err != nil {
		observability.LoggerFromContext(ctx).Warn("event publish failed",
			slog.String("event", event),
			slog.String("session_id", sess.ID),
			slog.Any("error", err))
	}
}

// Create allocates a new active session. An optional seed profile is merged
// into the empty profile; an optional job id must exist in the catalog.
func (s *SessionService) Create(ctx domain.Context, seed *domain.CandidateProfile, jobID string) (domain.ConversationSession, error) {
	if jobID != "" && s.Catalog != nil {
		if _, err := s.Catalog.Get(jobID); err != nil {
			return domain.ConversationSession{}, fmt.Errorf("op=session.create: job %s: %w", jobID, err)
		}
	}

	now := s.now().UTC()
	p := domain.CandidateProfile{}
	if seed != nil {
		p = profile.Merge(p, *seed, domain.MergeFill)
	}
	p.ID = uuid.New().String()

	sess := domain.ConversationSession{
		ID:        uuid.New().String(),
		JobID:     jobID,
		Messages:  []domain.ChatMessage{},
		Profile:   p,
		Status:    domain.SessionActive,
		Stage:     domain.StageGreeting,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.Store.Save(ctx, sess); err != nil {
		return domain.ConversationSession{}, fmt.Errorf("op=session.create: %w", err)
	}

	observability.SessionsCreatedTotal.Inc()
	observability.SessionsActive.Inc()
	s.publish(ctx, domain.EventSessionCreated, sess)
	return sess, nil
}

// Get returns the session only if it passes validation. Expired sessions are
// flagged distinctly from missing ones so callers can diagnose the difference.
func (s *SessionService) Get(ctx domain.Context, id string) (domain.ConversationSession, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.ConversationSession{}, err
	}
	if sess.Status == domain.SessionExpired || sess.Expired(s.now()) {
		return domain.ConversationSession{}, fmt.Errorf("op=session.get: id=%s: %w", id, domain.ErrSessionExpired)
	}
	return sess, nil
}

// Validate reports whether the session exists, is unexpired, and carries its
// core fields.
func (s *SessionService) Validate(ctx domain.Context, id string) bool {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return false
	}
	return sess.ID != "" && sess.Status == domain.SessionActive
}

// mutate applies fn to the stored session under the per-session lock and
// persists the result. fn sees the freshest stored copy; updatedAt and the
// version counter are bumped on success.
func (s *SessionService) mutate(ctx domain.Context, id string, fn func(*domain.ConversationSession) error) (domain.ConversationSession, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.ConversationSession{}, err
	}
	if err := fn(&sess); err != nil {
		return domain.ConversationSession{}, err
	}
	sess.UpdatedAt = s.now().UTC()
	sess.Version++
	if err := s.Store.Save(ctx, sess); err != nil {
		return domain.ConversationSession{}, fmt.Errorf("op=session.save: %w", err)
	}
	return sess, nil
}

// UpdateProfile merges a partial profile into the session using the given
// strategy. When minConfidence is non-nil and the merged confidence falls
// below it, the update is rejected with a conflict carrying both values.
func (s *SessionService) UpdateProfile(ctx domain.Context, id string, partial domain.CandidateProfile, strategy domain.MergeStrategy, minConfidence *float64) (domain.CandidateProfile, error) {
	if strategy == "" {
		strategy = domain.MergeFill
	}
	sess, err := s.mutate(ctx, id, func(sess *domain.ConversationSession) error {
		if sess.Expired(s.now()) {
			return fmt.Errorf("op=profile.update: id=%s: %w", id, domain.ErrSessionExpired)
		}
		merged := profile.Merge(sess.Profile, partial, strategy)
		if minConfidence != nil && merged.Confidence < *minConfidence {
			return fmt.Errorf("op=profile.update: confidence %.2f below threshold %.2f: %w",
				merged.Confidence, *minConfidence, domain.ErrConflict)
		}
		sess.Profile = merged
		return nil
	})
	if err != nil {
		return domain.CandidateProfile{}, err
	}

	observability.ProfileConfidenceHistogram.Observe(sess.Profile.Confidence)
	s.publish(ctx, domain.EventProfileUpdated, sess)
	return sess.Profile, nil
}

// Extend pushes the expiry forward by the given number of hours from now.
// Extending an expired session revives it; completed sessions are final and
// cannot be extended.
func (s *SessionService) Extend(ctx domain.Context, id string, hours int) (domain.ConversationSession, error) {
	if hours <= 0 {
		return domain.ConversationSession{}, fmt.Errorf("op=session.extend: hours must be positive: %w", domain.ErrInvalidArgument)
	}
	return s.mutate(ctx, id, func(sess *domain.ConversationSession) error {
		if sess.Status == domain.SessionCompleted {
			return fmt.Errorf("op=session.extend: id=%s: session is completed: %w", id, domain.ErrConflict)
		}
		sess.ExpiresAt = s.now().UTC().Add(time.Duration(hours) * time.Hour)
		if sess.Status == domain.SessionExpired {
			sess.Status = domain.SessionActive
			observability.SessionsActive.Inc()
		}
		return nil
	})
}

// Complete marks the session finished. Completing twice is a no-op; expired
// sessions cannot be completed.
func (s *SessionService) Complete(ctx domain.Context, id string) (domain.ConversationSession, error) {
	var wasActive bool
	sess, err := s.mutate(ctx, id, func(sess *domain.ConversationSession) error {
		if sess.Status == domain.SessionExpired || sess.Expired(s.now()) {
			return fmt.Errorf("op=session.complete: id=%s: %w", id, domain.ErrSessionExpired)
		}
		wasActive = sess.Status == domain.SessionActive
		sess.Status = domain.SessionCompleted
		sess.Stage = domain.StageCompleted
		return nil
	})
	if err != nil {
		return domain.ConversationSession{}, err
	}
	if wasActive {
		observability.SessionsActive.Dec()
		s.publish(ctx, domain.EventSessionCompleted, sess)
	}
	return sess, nil
}

// MarkExpired flips the session into the expired terminal state. Completed
// sessions stay completed.
func (s *SessionService) MarkExpired(ctx domain.Context, id string) error {
	var wasActive bool
	sess, err := s.mutate(ctx, id, func(sess *domain.ConversationSession) error {
		if sess.Status == domain.SessionCompleted {
			return fmt.Errorf("op=session.mark_expired: id=%s: session is completed: %w", id, domain.ErrConflict)
		}
		wasActive = sess.Status == domain.SessionActive
		sess.Status = domain.SessionExpired
		return nil
	})
	if err != nil {
		return err
	}
	if wasActive {
		observability.SessionsActive.Dec()
		s.publish(ctx, domain.EventSessionExpired, sess)
	}
	return nil
}

// Delete removes the session from the store.
func (s *SessionService) Delete(ctx domain.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	if sess.Status == domain.SessionActive {
		observability.SessionsActive.Dec()
	}
	s.locks.forget(id)
	return nil
}

// ListActive returns all sessions that currently pass validation.
func (s *SessionService) ListActive(ctx domain.Context) ([]domain.ConversationSession, error) {
	all, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=session.list_active: %w", err)
	}
	now := s.now()
	var out []domain.ConversationSession
	for _, sess := range all {
		if sess.Status == domain.SessionActive && !sess.Expired(now) {
			out = append(out, sess)
		}
	}
	return out, nil
}

// CleanupExpired evicts every session whose expiry has passed and returns the
// number removed. It is idempotent and safe to run on any schedule.
func (s *SessionService) CleanupExpired(ctx domain.Context) (int, error) {
	all, err := s.Store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("op=session.cleanup: %w", err)
	}

	now := s.now()
	removed := 0
	for _, sess := range all {
		if !sess.Expired(now) {
			continue
		}
		unlock := s.locks.lock(sess.ID)
		err := s.Store.Delete(ctx, sess.ID)
		unlock()
		if err != nil {
			// Raced with a concurrent delete; skip and keep sweeping.
			observability.LoggerFromContext(ctx).Warn("cleanup delete failed",
				slog.String("session_id", sess.ID),
				slog.Any("error", err))
			continue
		}
		s.locks.forget(sess.ID)
		removed++
		observability.SessionsExpiredTotal.Inc()
		if sess.Status == domain.SessionActive {
			observability.SessionsActive.Dec()
		}
		sess.Status = domain.SessionExpired
		s.publish(ctx, domain.EventSessionExpired, sess)
	}
	if removed > 0 {
		observability.LoggerFromContext(ctx).Info("expired sessions evicted", slog.Int("count", removed))
	}
	return removed, nil
}
