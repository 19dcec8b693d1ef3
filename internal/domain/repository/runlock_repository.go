package repository

import (
	"context"
	"time"
)

// RunLockRepository - защита от перекрывающихся запусков сбора.
// Хранилище само гарантирует корректность данных уникальным индексом,
// лок лишь ограничивает расход ресурсов при гонке планировщиков.
type RunLockRepository interface {
	// Acquire берёт лизинг на запуск с TTL. Если лок уже занят другим
	// запуском, возвращает errors.ErrLockHeld.
	Acquire(ctx context.Context, runID string, ttl time.Duration) error

	// Release снимает лок, если он всё ещё принадлежит runID.
	Release(ctx context.Context, runID string) error
}
