package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-recruit-chat/internal/config"
	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
	"github.com/fairyhunter13/ai-recruit-chat/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg          config.Config
	Sessions     *usecase.SessionService
	Conversation *usecase.ConversationService
	Catalog      domain.JobCatalog

	StoreCheck  func(ctx context.Context) error
	BrokerCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, sessions *usecase.SessionService, conv *usecase.ConversationService, catalog domain.JobCatalog, storeCheck, brokerCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:          cfg,
		Sessions:     sessions,
		Conversation: conv,
		Catalog:      catalog,
		StoreCheck:   storeCheck,
		BrokerCheck:  brokerCheck,
	}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// decodeJSON decodes the body into dst and runs struct validation.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidArgument, err)
	}
	if err := getValidator().Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

type createSessionRequest struct {
	JobID   string                   `json:"job_id,omitempty" validate:"omitempty,max=100"`
	Profile *domain.CandidateProfile `json:"profile,omitempty"`
}

type sessionResponse struct {
	ID        string                  `json:"id"`
	JobID     string                  `json:"job_id,omitempty"`
	Status    domain.SessionStatus    `json:"status"`
	Stage     domain.Stage            `json:"stage"`
	Profile   domain.CandidateProfile `json:"profile"`
	Messages  []domain.ChatMessage    `json:"messages"`
	Version   int64                   `json:"version"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	ExpiresAt time.Time               `json:"expires_at"`
}

func toSessionResponse(s domain.ConversationSession) sessionResponse {
	if s.Messages == nil {
		s.Messages = []domain.ChatMessage{}
	}
	return sessionResponse{
		ID:        s.ID,
		JobID:     s.JobID,
		Status:    s.Status,
		Stage:     s.Stage,
		Profile:   s.Profile,
		Messages:  s.Messages,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

// CreateSessionHandler starts a new conversation session.
func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if r.ContentLength > 0 {
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, r, err, nil)
				return
			}
		}
		if req.JobID != "" {
			if res := ValidateJobID(req.JobID); !res.Valid {
				writeError(w, r, fmt.Errorf("%w: invalid job_id", domain.ErrInvalidArgument), res.Errors)
				return
			}
		}
		sess, err := s.Sessions.Create(r.Context(), req.Profile, req.JobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(sess))
	}
}

// sessionID validates and returns the {id} path param, writing the error
// response itself when invalid.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if res := ValidateSessionID(id); !res.Valid {
		writeError(w, r, fmt.Errorf("%w: invalid session id", domain.ErrInvalidArgument), res.Errors)
		return "", false
	}
	return id, true
}

// GetSessionHandler returns the session if it passes validation.
func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		sess, err := s.Sessions.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// DeleteSessionHandler removes the session.
func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		if err := s.Sessions.Delete(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type postMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type postMessageResponse struct {
	Message    domain.ChatMessage      `json:"message"`
	Profile    domain.CandidateProfile `json:"profile"`
	Stage      domain.Stage            `json:"stage"`
	Confidence float64                 `json:"confidence"`
	Fallback   bool                    `json:"fallback,omitempty"`
}

// PostMessageHandler processes one candidate message and returns the
// assistant's reply with the updated profile and stage.
func (s *Server) PostMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		var req postMessageRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		res, err := s.Conversation.ProcessMessage(r.Context(), id, SanitizeString(req.Content))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, postMessageResponse{
			Message:    res.AssistantMessage,
			Profile:    res.Profile,
			Stage:      res.Stage,
			Confidence: res.Confidence,
			Fallback:   res.Fallback,
		})
	}
}

type updateProfileRequest struct {
	Profile       domain.CandidateProfile `json:"profile" validate:"required"`
	Strategy      string                  `json:"strategy,omitempty"`
	MinConfidence *float64                `json:"min_confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// UpdateProfileHandler merges a partial profile into the session.
func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		var req updateProfileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if res := ValidateStrategy(req.Strategy); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid strategy", domain.ErrInvalidArgument), res.Errors)
			return
		}
		p, err := s.Sessions.UpdateProfile(r.Context(), id, req.Profile, domain.MergeStrategy(req.Strategy), req.MinConfidence)
		if err != nil {
			var details interface{}
			if req.MinConfidence != nil {
				details = map[string]any{"min_confidence": *req.MinConfidence}
			}
			writeError(w, r, err, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": p})
	}
}

type extendSessionRequest struct {
	Hours int `json:"hours" validate:"required,gt=0,lte=720"`
}

// ExtendSessionHandler pushes the session expiry forward.
func (s *Server) ExtendSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		var req extendSessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		sess, err := s.Sessions.Extend(r.Context(), id, req.Hours)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// CompleteSessionHandler finishes the conversation.
func (s *Server) CompleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		sess, err := s.Sessions.Complete(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// ResetSessionHandler returns the conversation flow to the greeting stage.
func (s *Server) ResetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		sess, err := s.Conversation.Reset(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// CleanupSessionsHandler evicts all expired sessions and reports the count.
func (s *Server) CleanupSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := s.Sessions.CleanupExpired(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"removed": n})
	}
}

// ListJobsHandler returns the full job catalog.
func (s *Server) ListJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"jobs": s.Catalog.List()})
	}
}

// GetJobHandler returns a single posting.
func (s *Server) GetJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if res := ValidateJobID(id); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid job id", domain.ErrInvalidArgument), res.Errors)
			return
		}
		job, err := s.Catalog.Get(id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler reports dependency readiness.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name string `json:"name"`
		OK   bool   `json:"ok"`
		Err  string `json:"error,omitempty"`
	}
	run := func(ctx context.Context, name string, fn func(context.Context) error) check {
		if fn == nil {
			return check{Name: name, OK: true}
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			return check{Name: name, OK: false, Err: err.Error()}
		}
		return check{Name: name, OK: true}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		checks := []check{
			run(r.Context(), "store", s.StoreCheck),
			run(r.Context(), "broker", s.BrokerCheck),
		}
		status := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				status = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, status, map[string]any{"checks": checks})
	}
}
