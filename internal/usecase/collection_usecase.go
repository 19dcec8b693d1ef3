package usecase

import (
	"context"
	"time"

	"github.com/irail-collector/internal/domain"
	"github.com/irail-collector/internal/domain/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CollectionUseCase - оркестратор одного запуска сбора: fetch ->
// normalize -> persist для каждой станции, с изоляцией отказов.
type CollectionUseCase struct {
	liveboard      repository.LiveboardRepository
	departures     repository.DepartureRepository
	summary        *SummaryUseCase
	logger         *zap.Logger
	stationTimeout time.Duration
	concurrency    int
}

// NewCollectionUseCase создает новый оркестратор сбора
func NewCollectionUseCase(
	liveboard repository.LiveboardRepository,
	departures repository.DepartureRepository,
	summary *SummaryUseCase,
	logger *zap.Logger,
	stationTimeout time.Duration,
	concurrency int,
) *CollectionUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &CollectionUseCase{
		liveboard:      liveboard,
		departures:     departures,
		summary:        summary,
		logger:         logger,
		stationTimeout: stationTimeout,
		concurrency:    concurrency,
	}
}

// RunCollection обрабатывает все станции независимо друг от друга и
// возвращает сводку запуска. Отказ одной станции никогда не блокирует
// остальные; станции идут через ограниченный пул воркеров, каждый
// воркер пишет только свой слот результата.
func (uc *CollectionUseCase) RunCollection(ctx context.Context, runID string, stations []domain.Station) *domain.RunSummary {
	startedAt := time.Now().UTC()

	uc.logger.Info("Collection run started",
		zap.String("run_id", runID),
		zap.Int("stations", len(stations)),
		zap.Int("concurrency", uc.concurrency))

	results := make([]domain.CollectionResult, len(stations))

	var g errgroup.Group
	g.SetLimit(uc.concurrency)
	for i, station := range stations {
		i, station := i, station
		g.Go(func() error {
			results[i] = uc.collectStation(ctx, runID, station)
			return nil
		})
	}
	// Воркеры ошибок не возвращают: отказ станции уже содержится
	// в её CollectionResult.
	_ = g.Wait()

	return uc.summary.Summarize(runID, startedAt, results)
}

// collectStation выполняет fetch -> normalize -> persist для одной
// станции внутри её собственного таймаута.
func (uc *CollectionUseCase) collectStation(ctx context.Context, runID string, station domain.Station) domain.CollectionResult {
	ctx, cancel := context.WithTimeout(ctx, uc.stationTimeout)
	defer cancel()

	log := uc.logger.With(
		zap.String("run_id", runID),
		zap.String("station", station.Name))

	resp, err := uc.liveboard.GetLiveboard(ctx, station)
	if err != nil {
		log.Error("API request failed, skipping station", zap.Error(err))
		return domain.CollectionResult{Station: station.Name, Err: err}
	}

	collectedAt, records := Normalize(station, resp)
	if len(records) == 0 {
		log.Warn("No departures found", zap.Time("collected_at", collectedAt))
		return domain.CollectionResult{Station: station.Name}
	}

	inserted, err := uc.departures.InsertBatch(ctx, records)
	if err != nil {
		log.Error("Failed to store departures",
			zap.Int("attempted", len(records)),
			zap.Error(err))
		return domain.CollectionResult{
			Station:   station.Name,
			Attempted: len(records),
			Err:       err,
		}
	}

	log.Info("Station collected",
		zap.Int("inserted", inserted),
		zap.Int("attempted", len(records)),
		zap.Time("collected_at", collectedAt))

	return domain.CollectionResult{
		Station:   station.Name,
		Inserted:  inserted,
		Attempted: len(records),
	}
}
