package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"steam4all/internal/models"
)

// ProgressKeyPrefix namespaces the per-learner progress keys
const ProgressKeyPrefix = "steam4all_course_progress"

// RedisProgressStore keeps the lesson index in Redis under one key per learner
type RedisProgressStore struct {
	rdb *goredis.Client
}

// NewRedisProgressStore connects to addr and checks the connection
func NewRedisProgressStore(ctx context.Context, addr string) (*RedisProgressStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisProgressStore{rdb: rdb}, nil
}

// ProgressKey returns the Redis key holding learnerID's index
func ProgressKey(learnerID string) string {
	return ProgressKeyPrefix + ":" + learnerID
}

func (s *RedisProgressStore) LoadIndex(ctx context.Context, learnerID string) (string, error) {
	v, err := s.rdb.Get(ctx, ProgressKey(learnerID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get progress: %w", err)
	}
	return v, nil
}

func (s *RedisProgressStore) SaveIndex(ctx context.Context, learnerID, index string) error {
	if err := s.rdb.Set(ctx, ProgressKey(learnerID), index, 0).Err(); err != nil {
		return fmt.Errorf("redis set progress: %w", err)
	}
	return nil
}

func (s *RedisProgressStore) Delete(ctx context.Context, learnerID string) error {
	return s.rdb.Del(ctx, ProgressKey(learnerID)).Err()
}

// List scans every progress key. UpdatedAt is not tracked in Redis and is left zero.
func (s *RedisProgressStore) List(ctx context.Context) ([]models.LearnerProgress, error) {
	var out []models.LearnerProgress
	iter := s.rdb.Scan(ctx, 0, ProgressKeyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		v, err := s.rdb.Get(ctx, key).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.LearnerProgress{
			LearnerID:   strings.TrimPrefix(key, ProgressKeyPrefix+":"),
			LessonIndex: v,
		})
	}
	return out, iter.Err()
}

// PingContext checks the connection, used by the health check
func (s *RedisProgressStore) PingContext(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisProgressStore) Close() error {
	return s.rdb.Close()
}
