package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/irail-collector/internal/domain/repository"
	"github.com/irail-collector/internal/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const runLockKey = "collector:run-lock"

// releaseScript удаляет лок только если он всё ещё принадлежит
// нашему запуску: TTL мог истечь и лок мог перейти другому процессу.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

type runLock struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRunLock создает Redis-лизинг, защищающий от перекрывающихся
// запусков сбора между несколькими хостами планировщика.
func NewRunLock(client *redis.Client, logger *zap.Logger) repository.RunLockRepository {
	return &runLock{
		client: client,
		logger: logger,
	}
}

// Acquire берёт лок через SET NX EX. TTL страхует от зависшего запуска,
// который так и не снял лок.
func (l *runLock) Acquire(ctx context.Context, runID string, ttl time.Duration) error {
	ok, err := l.client.SetNX(ctx, runLockKey, runID, ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		holder, _ := l.client.Get(ctx, runLockKey).Result()
		l.logger.Warn("Run lock already held",
			zap.String("run_id", runID),
			zap.String("holder", holder))
		return errors.ErrLockHeld
	}

	l.logger.Debug("Run lock acquired",
		zap.String("run_id", runID),
		zap.Duration("ttl", ttl))
	return nil
}

func (l *runLock) Release(ctx context.Context, runID string) error {
	released, err := releaseScript.Run(ctx, l.client, []string{runLockKey}, runID).Int()
	if err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	if released == 0 {
		l.logger.Warn("Run lock expired before release", zap.String("run_id", runID))
		return nil
	}

	l.logger.Debug("Run lock released", zap.String("run_id", runID))
	return nil
}
