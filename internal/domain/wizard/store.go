package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftStore persists drafts between requests.
type DraftStore interface {
	Save(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id string) (*Draft, error)
	// Update applies fn to the stored draft and writes the result only if no
	// other writer touched the draft in between. fn may run more than once.
	Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error)
	Delete(ctx context.Context, id string) error
}

const maxUpdateAttempts = 5

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore keeps each draft as a JSON value that expires after ttl of
// inactivity. Every save refreshes the expiry.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) DraftStore {
	return &redisStore{rdb: rdb, ttl: ttl}
}

func draftKey(id string) string {
	return "snapbook:draft:" + id
}

func (s *redisStore) Save(ctx context.Context, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.rdb.Set(ctx, draftKey(d.ID), raw, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (*Draft, error) {
	raw, err := s.rdb.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return &d, nil
}

func (s *redisStore) Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	key := draftKey(id)
	var out *Draft
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrDraftNotFound
		}
		if err != nil {
			return err
		}
		var d Draft
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("decode draft %s: %w", id, err)
		}
		if err := fn(&d); err != nil {
			return err
		}
		enc, err := json.Marshal(&d)
		if err != nil {
			return fmt.Errorf("encode draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, enc, s.ttl)
			return nil
		})
		if err == nil {
			out = &d
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrDraftBusy
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, draftKey(id)).Err()
}
