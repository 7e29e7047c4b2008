package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agent-advisor/internal/model"
	"agent-advisor/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "advisor:session:"

// RedisStorage stores each session as one JSON value with a TTL that is
// refreshed on every write, so idle sessions expire on their own.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage wraps client. A ttl of zero keeps sessions forever.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

// RedisOptions builds client options from a redis:// URL when one is given,
// otherwise from the address fields.
func RedisOptions(url, addr, password string, db int) (*redis.Options, error) {
	if url != "" {
		opt, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		return opt, nil
	}
	return &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, nil
}

func (r *RedisStorage) sessionKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (r *RedisStorage) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %v", ErrStorageInit, err)
	}
	logger.Infof("Redis storage initialized (ttl %s)", r.ttl)
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// Backup is a no-op; Redis persistence is configured on the server.
func (r *RedisStorage) Backup(ctx context.Context) error {
	return nil
}

func (r *RedisStorage) CreateSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	if err := r.client.Set(ctx, r.sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to Redis: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from Redis: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &session, nil
}

// UpdateSession overwrites an existing session only (SET XX).
func (r *RedisStorage) UpdateSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	err = r.client.SetArgs(ctx, r.sessionKey(session.ID), data, redis.SetArgs{Mode: "XX", TTL: r.ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to save session to Redis: %w", err)
	}
	return nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, sessionID string) error {
	n, err := r.client.Del(ctx, r.sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *RedisStorage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}

	sessions := make([]*model.Session, 0, len(keys))
	if len(keys) == 0 {
		return sessions, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions from Redis: %w", err)
	}
	for i, v := range values {
		// Expired between SCAN and MGET.
		s, ok := v.(string)
		if !ok {
			continue
		}
		var session model.Session
		if err := json.Unmarshal([]byte(s), &session); err != nil {
			logger.Warnf("Skipping unreadable session %s: %v", keys[i], err)
			continue
		}
		sessions = append(sessions, &session)
	}

	sortNewestFirst(sessions)
	return sessions, nil
}
