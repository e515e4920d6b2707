// Package redis implements a session store on Redis. Sessions are stored as
// JSON documents keyed by id, with the Redis TTL mirroring the session expiry
// so abandoned sessions evict themselves.
package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

const keyPrefix = "session:"

// minTTL keeps keys for already-expired sessions alive briefly so lifecycle
// handling (expired status, events) can still observe them.
const minTTL = time.Minute

// Store persists sessions in Redis.
type Store struct {
	rdb *redis.Client
	now func() time.Time
}

// New constructs a Store around an existing client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, now: time.Now}
}

func key(id string) string { return keyPrefix + id }

// Get loads a session by id.
func (st *Store) Get(ctx domain.Context, id string) (domain.ConversationSession, error) {
	raw, err := st.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ConversationSession{}, fmt.Errorf("op=session.get: id=%s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.ConversationSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	var s domain.ConversationSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.ConversationSession{}, fmt.Errorf("op=session.get: decode: %w", err)
	}
	return s, nil
}

// Save inserts or replaces a session. The key TTL follows the session expiry.
func (st *Store) Save(ctx domain.Context, s domain.ConversationSession) error {
	if s.ID == "" {
		return fmt.Errorf("op=session.save: empty id: %w", domain.ErrInvalidArgument)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("op=session.save: encode: %w", err)
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl < minTTL {
		ttl = minTTL
	}
	if err := st.rdb.Set(ctx, key(s.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("op=session.save: %w", err)
	}
	return nil
}

// Delete removes a session by id.
func (st *Store) Delete(ctx domain.Context, id string) error {
	n, err := st.rdb.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("op=session.delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("op=session.delete: id=%s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListAll scans every session key and loads the documents. The scan is
// cursor-based so it does not block Redis on large keyspaces.
func (st *Store) ListAll(ctx domain.Context) ([]domain.ConversationSession, error) {
	var out []domain.ConversationSession
	iter := st.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := st.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // evicted between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("op=session.list: %w", err)
		}
		var s domain.ConversationSession
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("op=session.list: decode key=%s: %w", iter.Val(), err)
		}
		out = append(out, s)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("op=session.list: scan: %w", err)
	}
	return out, nil
}
