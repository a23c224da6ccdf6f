package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revisehub:session:"

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore backs sessions with Redis so anonymous sessions survive a
// process restart for their TTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{rdb: rdb, ttl: ttl}
}

func (r *redisStore) Issue(ctx context.Context) (Session, error) {
	now := time.Now()
	s := Session{ID: uuid.NewString(), CreatedAt: now, ExpiresAt: now.Add(r.ttl)}
	if err := r.rdb.Set(ctx, keyPrefix+s.ID, strconv.FormatInt(now.Unix(), 10), r.ttl).Err(); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (r *redisStore) Get(ctx context.Context, id string) (Session, error) {
	val, err := r.rdb.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrUnknownSession
	}
	if err != nil {
		return Session{}, err
	}
	created, _ := strconv.ParseInt(val, 10, 64)
	ttl, err := r.rdb.TTL(ctx, keyPrefix+id).Result()
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:        id,
		CreatedAt: time.Unix(created, 0),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (r *redisStore) Refresh(ctx context.Context, id string) (Session, error) {
	ok, err := r.rdb.Expire(ctx, keyPrefix+id, r.ttl).Result()
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrUnknownSession
	}
	return r.Get(ctx, id)
}

func (r *redisStore) Revoke(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, keyPrefix+id).Err()
}
