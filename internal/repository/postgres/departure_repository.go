package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/irail-collector/internal/domain"
	"github.com/irail-collector/internal/domain/repository"
	"github.com/irail-collector/internal/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// pgUniqueViolation - SQLSTATE нарушения уникального индекса.
const pgUniqueViolation = "23505"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS departures_raw (
		id SERIAL PRIMARY KEY,
		station VARCHAR(100) NOT NULL,
		train_id VARCHAR(50) NOT NULL,
		vehicle VARCHAR(50),
		platform VARCHAR(10),
		scheduled_time TIMESTAMP NOT NULL,
		delay_seconds INT DEFAULT 0,
		cancelled BOOLEAN DEFAULT FALSE,
		destination VARCHAR(100),
		collected_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	// Натуральный ключ отправления: повторный сбор того же отправления
	// должен молча пропускаться, а не перезаписываться.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_departure_natural_key
		ON departures_raw(station, train_id, scheduled_time)`,
	`CREATE INDEX IF NOT EXISTS idx_station
		ON departures_raw(station, scheduled_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_collected
		ON departures_raw(collected_at DESC)`,
}

const insertDepartureQuery = `
	INSERT INTO departures_raw
		(station, train_id, vehicle, platform, scheduled_time,
		 delay_seconds, cancelled, destination, collected_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const statsQuery = `
	SELECT
		COUNT(*) AS total_records,
		COUNT(DISTINCT station) AS distinct_stations,
		MAX(collected_at) AS last_collected_at
	FROM departures_raw
`

type departureRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDepartureRepository создает новый экземпляр departure repository
func NewDepartureRepository(db *DB) repository.DepartureRepository {
	return &departureRepository{
		db:     db,
		logger: db.logger,
	}
}

// EnsureSchema идемпотентно создаёт departures_raw и индексы.
func (r *departureRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.logger.Error("Failed to bootstrap schema", zap.Error(err))
			return errors.NewSchemaError(err)
		}
	}
	r.logger.Info("Departures schema ready")
	return nil
}

// InsertBatch вставляет батч одной станции в одной транзакции.
// Каждая вставка защищена savepoint: нарушение натурального ключа
// откатывает только эту строку, остальные записи батча не страдают.
// Любая другая ошибка откатывает батч целиком.
func (r *departureRepository) InsertBatch(ctx context.Context, records []domain.DepartureRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	station := records[0].Station

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.NewStorageError(station, fmt.Errorf("begin tx: %w", err))
	}
	// Rollback после успешного commit - no-op; гарантирует освобождение
	// транзакции на любом пути выхода.
	defer tx.Rollback()

	inserted := 0
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, "SAVEPOINT sp_departure"); err != nil {
			return 0, errors.NewStorageError(station, fmt.Errorf("savepoint: %w", err))
		}

		_, err := tx.ExecContext(ctx, insertDepartureQuery,
			rec.Station,
			rec.TrainID,
			rec.Vehicle,
			rec.Platform,
			rec.ScheduledTime,
			rec.DelaySeconds,
			rec.Cancelled,
			rec.Destination,
			rec.CollectedAt,
		)
		if err != nil {
			if !isUniqueViolation(err) {
				r.logger.Error("Failed to insert departure",
					zap.String("station", station),
					zap.String("train_id", rec.TrainID),
					zap.Error(err))
				return 0, errors.NewStorageError(station, err)
			}
			// Отправление уже собрано раньше - пропускаем.
			r.logger.Debug("Skipping duplicate departure",
				zap.String("station", station),
				zap.String("train_id", rec.TrainID),
				zap.Time("scheduled_time", rec.ScheduledTime))
			if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT sp_departure"); err != nil {
				return 0, errors.NewStorageError(station, fmt.Errorf("rollback savepoint: %w", err))
			}
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT sp_departure"); err != nil {
			return 0, errors.NewStorageError(station, fmt.Errorf("release savepoint: %w", err))
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewStorageError(station, fmt.Errorf("commit: %w", err))
	}

	return inserted, nil
}

// Stats возвращает агрегированную статистику по всему хранилищу.
func (r *departureRepository) Stats(ctx context.Context) (*domain.StoreStats, error) {
	var stats domain.StoreStats
	if err := r.db.GetContext(ctx, &stats, statsQuery); err != nil {
		r.logger.Error("Failed to query store stats", zap.Error(err))
		return nil, fmt.Errorf("query store stats: %w", err)
	}
	return &stats, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
