package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return New(rdb)
}

func sampleSession(id string) domain.ConversationSession {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.ConversationSession{
		ID:     id,
		JobID:  "backend-eng",
		Status: domain.SessionActive,
		Stage:  domain.StageInfoGathering,
		Messages: []domain.ChatMessage{
			{ID: "m1", SessionID: id, Role: domain.RoleUser, Content: "hi there", CreatedAt: now},
			{ID: "m2", SessionID: id, Role: domain.RoleAssistant, Content: "welcome", CreatedAt: now},
		},
		Profile:   domain.CandidateProfile{Name: "Dana", Confidence: 0.15},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(domain.DefaultSessionTTL),
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, sampleSession("s1")))
	got, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, "Dana", got.Profile.Name)
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	_, err := st.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, sampleSession("s1")))
	require.NoError(t, st.Delete(ctx, "s1"))
	_, err := st.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, st.Delete(ctx, "s1"), domain.ErrNotFound)
}

func TestStore_ListAll(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, sampleSession("a")))
	require.NoError(t, st.Save(ctx, sampleSession("b")))
	require.NoError(t, st.Save(ctx, sampleSession("c")))

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_SaveSetsTTL(t *testing.T) {
	t.Parallel()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	st := New(rdb)
	ctx := context.Background()

	s := sampleSession("s1")
	s.ExpiresAt = time.Now().Add(2 * time.Hour)
	require.NoError(t, st.Save(ctx, s))
	ttl := mr.TTL("session:s1")
	assert.Greater(t, ttl, time.Hour)
	assert.LessOrEqual(t, ttl, 2*time.Hour)
}

func TestStore_SaveExpiredSessionKeepsKeyBriefly(t *testing.T) {
	t.Parallel()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	st := New(rdb)
	ctx := context.Background()

	s := sampleSession("old")
	s.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, st.Save(ctx, s))
	assert.Equal(t, time.Minute, mr.TTL("session:old"))
}
