package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/irail-collector/internal/config"
	"github.com/irail-collector/internal/domain"
	"github.com/irail-collector/internal/infrastructure/irail"
	collerrors "github.com/irail-collector/internal/pkg/errors"
	"github.com/irail-collector/internal/pkg/logger"
	"github.com/irail-collector/internal/repository/cache"
	"github.com/irail-collector/internal/repository/postgres"
	"github.com/irail-collector/internal/usecase"
	"go.uber.org/zap"
)

// Один вызов бинаря = один запуск сбора. Планировщик (cron, каждые
// 5 минут) отвечает за периодичность и retry/backoff целых запусков.
// Код выхода 0 - все станции были обработаны, даже если часть упала;
// ненулевой код зарезервирован за фатальными ошибками процесса.
func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting iRail departure collector")

	// 3. Cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	departureRepo := postgres.NewDepartureRepository(db)
	liveboardRepo := irail.NewClient(&cfg.Collector, log)

	// 6. Bootstrap schema (process-fatal on failure)
	if err := departureRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("Schema bootstrap failed", zap.Error(err))
	}

	runID := uuid.NewString()

	// 7. Optional run lock: prevents overlapping runs across hosts
	if cfg.Collector.LockEnabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		runLock := cache.NewRunLock(redisClient.Client(), log)
		if err := runLock.Acquire(ctx, runID, cfg.Collector.LockTTL); err != nil {
			if errors.Is(err, collerrors.ErrLockHeld) {
				// Предыдущий запуск ещё в полёте - пропускаем этот
				// без ошибки, следующий тик планировщика догонит.
				log.Warn("Previous collection run still in flight, skipping",
					zap.String("run_id", runID))
				return
			}
			log.Fatal("Failed to acquire run lock", zap.Error(err))
		}
		defer func() {
			if err := runLock.Release(context.Background(), runID); err != nil {
				log.Error("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	// 8. Initialize use cases
	summaryUC := usecase.NewSummaryUseCase(departureRepo, log)
	collectionUC := usecase.NewCollectionUseCase(
		liveboardRepo,
		departureRepo,
		summaryUC,
		log,
		cfg.Collector.StationTimeout,
		cfg.Collector.Concurrency,
	)

	// 9. Run one collection pass over the station registry
	stations := domain.StationsFromNames(cfg.Collector.Stations)
	summary := collectionUC.RunCollection(ctx, runID, stations)

	// 10. Report run summary and store statistics
	summaryUC.Report(ctx, summary)

	log.Info("Collection run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("total_inserted", summary.TotalInserted),
		zap.Int("failed_stations", summary.FailedStations))
}
