package repository

import (
	"context"

	"github.com/irail-collector/internal/domain"
)

// DepartureRepository - хранилище нормализованных отправлений.
type DepartureRepository interface {
	// EnsureSchema идемпотентно создаёт departures_raw и индексы.
	// Вызывается один раз на процесс, до первого батча.
	EnsureSchema(ctx context.Context) error

	// InsertBatch вставляет батч одной станции в одной транзакции.
	// Дубликаты по натуральному ключу молча пропускаются; возвращается
	// число реально вставленных строк. Любая другая ошибка хранилища
	// откатывает весь батч и возвращается как *errors.StorageError.
	InsertBatch(ctx context.Context, records []domain.DepartureRecord) (int, error)

	// Stats - статистика по всему хранилищу, read-only.
	Stats(ctx context.Context) (*domain.StoreStats, error)
}
