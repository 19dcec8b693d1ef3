package usecase

import (
	"context"
	"time"

	"github.com/irail-collector/internal/domain"
	"github.com/irail-collector/internal/domain/repository"
	"go.uber.org/zap"
)

// SummaryUseCase - репортер сводки запуска: чистая агрегация
// результатов станций плюс read-only статистика по хранилищу.
type SummaryUseCase struct {
	departures repository.DepartureRepository
	logger     *zap.Logger
}

// NewSummaryUseCase создает новый репортер сводки
func NewSummaryUseCase(departures repository.DepartureRepository, logger *zap.Logger) *SummaryUseCase {
	return &SummaryUseCase{
		departures: departures,
		logger:     logger,
	}
}

// Summarize агрегирует результаты всех станций в сводку запуска.
// Никаких побочных эффектов кроме вычисления сумм.
func (uc *SummaryUseCase) Summarize(runID string, startedAt time.Time, results []domain.CollectionResult) *domain.RunSummary {
	summary := &domain.RunSummary{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		PerStation: results,
	}
	for _, res := range results {
		summary.TotalInserted += res.Inserted
		summary.TotalAttempted += res.Attempted
		if res.Failed() {
			summary.FailedStations++
		}
	}
	return summary
}

// Report пишет сводку запуска в лог и, если хранилище доступно,
// добавляет общую статистику. Ошибка статистики не портит запуск -
// это чисто операционная видимость.
func (uc *SummaryUseCase) Report(ctx context.Context, summary *domain.RunSummary) {
	for _, res := range summary.PerStation {
		uc.logger.Info("Station result",
			zap.String("run_id", summary.RunID),
			zap.String("station", res.Station),
			zap.Int("inserted", res.Inserted),
			zap.Int("attempted", res.Attempted),
			zap.Bool("failed", res.Failed()))
	}

	uc.logger.Info("Collection summary",
		zap.String("run_id", summary.RunID),
		zap.Int("total_inserted", summary.TotalInserted),
		zap.Int("total_attempted", summary.TotalAttempted),
		zap.Int("failed_stations", summary.FailedStations),
		zap.Int("stations", len(summary.PerStation)),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))

	stats, err := uc.departures.Stats(ctx)
	if err != nil {
		uc.logger.Warn("Failed to query store stats", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int64("total_records", stats.TotalRecords),
		zap.Int("distinct_stations", stats.DistinctStations),
	}
	if stats.LastCollectedAt != nil {
		fields = append(fields, zap.Time("last_collected_at", *stats.LastCollectedAt))
	}
	uc.logger.Info("Store statistics", fields...)
}
