package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"snapbook/internal/pkg/session"
)

// SessionStore keeps live sessions. A token whose session is gone is
// rejected even before it expires.
type SessionStore interface {
	Save(ctx context.Context, s session.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (session.Session, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

type storedSession struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

func sessionKey(id string) string {
	return "snapbook:session:" + id
}

func (s *redisSessionStore) Save(ctx context.Context, sess session.Session, ttl time.Duration) error {
	raw, err := json.Marshal(storedSession{UserID: sess.UserID, Role: sess.Role})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(sess.ID), raw, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, ErrSessionExpired
	}
	if err != nil {
		return session.Session{}, err
	}
	var st storedSession
	if err := json.Unmarshal(raw, &st); err != nil {
		return session.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return session.Session{ID: id, UserID: st.UserID, Role: st.Role}, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}
