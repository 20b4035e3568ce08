package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisSessions keeps the single in-progress run per worker in redis. Keys
// expire so an abandoned phone does not hold a run open forever.
type RedisSessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb, ttl: 15 * time.Minute}
}

func sessionKey(workerID int) string {
	return fmt.Sprintf("attempt:%d", workerID)
}

func (s *RedisSessions) Load(ctx context.Context, workerID int) (Run, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(workerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Run{}, ErrNoActiveRun
	}
	if err != nil {
		return Run{}, errors.Wrap(err, "loading attempt session")
	}

	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return Run{}, errors.Wrap(err, "decoding attempt session")
	}
	return run, nil
}

func (s *RedisSessions) Save(ctx context.Context, run Run) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(err, "encoding attempt session")
	}
	return s.rdb.Set(ctx, sessionKey(run.Worker.ID), raw, s.ttl).Err()
}

func (s *RedisSessions) Delete(ctx context.Context, workerID int) error {
	return s.rdb.Del(ctx, sessionKey(workerID)).Err()
}
