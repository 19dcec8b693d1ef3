package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/irail-collector/internal/domain"
	collerrors "github.com/irail-collector/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockLiveboard is a mock implementation of the LiveboardRepository interface
type MockLiveboard struct {
	mock.Mock
}

func (m *MockLiveboard) GetLiveboard(ctx context.Context, station domain.Station) (*domain.LiveboardResponse, error) {
	args := m.Called(ctx, station)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LiveboardResponse), args.Error(1)
}

// MockDepartures is a mock implementation of the DepartureRepository interface
type MockDepartures struct {
	mock.Mock
}

func (m *MockDepartures) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDepartures) InsertBatch(ctx context.Context, records []domain.DepartureRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

func (m *MockDepartures) Stats(ctx context.Context) (*domain.StoreStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoreStats), args.Error(1)
}

func newTestUseCase(liveboard *MockLiveboard, departures *MockDepartures, concurrency int) *CollectionUseCase {
	logger := zap.NewNop()
	summary := NewSummaryUseCase(departures, logger)
	return NewCollectionUseCase(liveboard, departures, summary, logger, 30*time.Second, concurrency)
}

func forStation(name string) interface{} {
	return mock.MatchedBy(func(s domain.Station) bool { return s.Name == name })
}

func liveboardWith(standardName string, timestamp int64, departures ...domain.RawDeparture) *domain.LiveboardResponse {
	return &domain.LiveboardResponse{
		Timestamp:   domain.FlexInt(timestamp),
		StationInfo: domain.StationInfo{StandardName: standardName},
		Departures:  domain.Departures{Departure: departures},
	}
}

func TestCollectionUseCase_RunCollection(t *testing.T) {
	stations := []domain.Station{
		{Name: "A", DisplayName: "A"},
		{Name: "B", DisplayName: "B"},
		{Name: "C", DisplayName: "C"},
	}

	t.Run("failure isolation: one station outage never blocks others", func(t *testing.T) {
		liveboard := new(MockLiveboard)
		departures := new(MockDepartures)

		liveboard.On("GetLiveboard", mock.Anything, forStation("A")).
			Return(nil, collerrors.NewFetchError("A", errors.New("connection refused")))
		liveboard.On("GetLiveboard", mock.Anything, forStation("B")).
			Return(liveboardWith("B", 1732000000,
				domain.RawDeparture{Vehicle: "BE.NMBS.IC100", Time: 1732000300, Station: "X"}), nil)
		liveboard.On("GetLiveboard", mock.Anything, forStation("C")).
			Return(liveboardWith("C", 1732000000,
				domain.RawDeparture{Vehicle: "BE.NMBS.IC200", Time: 1732000300, Station: "Y"},
				domain.RawDeparture{Vehicle: "BE.NMBS.IC201", Time: 1732000600, Station: "Z"}), nil)
		departures.On("InsertBatch", mock.Anything, mock.MatchedBy(func(records []domain.DepartureRecord) bool {
			return records[0].Station == "B"
		})).Return(1, nil)
		departures.On("InsertBatch", mock.Anything, mock.MatchedBy(func(records []domain.DepartureRecord) bool {
			return records[0].Station == "C"
		})).Return(2, nil)

		uc := newTestUseCase(liveboard, departures, 1)
		summary := uc.RunCollection(context.Background(), "run-1", stations)

		require.Len(t, summary.PerStation, 3)
		assert.Equal(t, 3, summary.TotalInserted)
		assert.Equal(t, 1, summary.FailedStations)

		byStation := make(map[string]domain.CollectionResult)
		for _, res := range summary.PerStation {
			byStation[res.Station] = res
		}
		assert.True(t, byStation["A"].Failed())
		assert.Zero(t, byStation["A"].Inserted)
		assert.Zero(t, byStation["A"].Attempted)
		assert.False(t, byStation["B"].Failed())
		assert.Equal(t, 1, byStation["B"].Inserted)
		assert.False(t, byStation["C"].Failed())
		assert.Equal(t, 2, byStation["C"].Inserted)
	})

	t.Run("empty liveboard is a warning, not an error", func(t *testing.T) {
		liveboard := new(MockLiveboard)
		departures := new(MockDepartures)

		liveboard.On("GetLiveboard", mock.Anything, mock.Anything).
			Return(liveboardWith("A", 1732000000), nil)

		uc := newTestUseCase(liveboard, departures, 1)
		summary := uc.RunCollection(context.Background(), "run-2", stations[:1])

		require.Len(t, summary.PerStation, 1)
		res := summary.PerStation[0]
		assert.False(t, res.Failed())
		assert.Zero(t, res.Inserted)
		assert.Zero(t, res.Attempted)
		departures.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
	})

	t.Run("storage error aborts station but not run", func(t *testing.T) {
		liveboard := new(MockLiveboard)
		departures := new(MockDepartures)

		liveboard.On("GetLiveboard", mock.Anything, forStation("A")).
			Return(liveboardWith("A", 1732000000,
				domain.RawDeparture{Vehicle: "BE.NMBS.IC100", Time: 1732000300}), nil)
		liveboard.On("GetLiveboard", mock.Anything, forStation("B")).
			Return(liveboardWith("B", 1732000000,
				domain.RawDeparture{Vehicle: "BE.NMBS.IC200", Time: 1732000300}), nil)

		departures.On("InsertBatch", mock.Anything, mock.MatchedBy(func(records []domain.DepartureRecord) bool {
			return records[0].Station == "A"
		})).Return(0, collerrors.NewStorageError("A", errors.New("connection lost")))
		departures.On("InsertBatch", mock.Anything, mock.MatchedBy(func(records []domain.DepartureRecord) bool {
			return records[0].Station == "B"
		})).Return(1, nil)

		uc := newTestUseCase(liveboard, departures, 1)
		summary := uc.RunCollection(context.Background(), "run-3", stations[:2])

		assert.Equal(t, 1, summary.TotalInserted)
		assert.Equal(t, 1, summary.FailedStations)
	})

	t.Run("end to end: two departures for A, timeout for B", func(t *testing.T) {
		liveboard := new(MockLiveboard)
		departures := new(MockDepartures)

		liveboard.On("GetLiveboard", mock.Anything, forStation("A")).
			Return(liveboardWith("A", 1732000000,
				domain.RawDeparture{Vehicle: "BE.NMBS.IC100", Time: 1732000300, Canceled: 0, Station: "X"},
				domain.RawDeparture{Vehicle: "BE.NMBS.IC200", Time: 1732000600, Canceled: 1, Station: "Y"}), nil)
		liveboard.On("GetLiveboard", mock.Anything, forStation("B")).
			Return(nil, collerrors.NewFetchError("B", context.DeadlineExceeded))

		var stored []domain.DepartureRecord
		departures.On("InsertBatch", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).([]domain.DepartureRecord)
			}).
			Return(2, nil)

		uc := newTestUseCase(liveboard, departures, 1)
		summary := uc.RunCollection(context.Background(), "run-4", stations[:2])

		assert.Equal(t, 2, summary.TotalInserted)
		assert.Equal(t, 1, summary.FailedStations)

		require.Len(t, stored, 2)
		assert.False(t, stored[0].Cancelled)
		assert.True(t, stored[1].Cancelled)
		assert.Equal(t, stored[0].CollectedAt, stored[1].CollectedAt)
	})

	t.Run("second run over same payload inserts nothing", func(t *testing.T) {
		liveboard := new(MockLiveboard)
		departures := new(MockDepartures)

		liveboard.On("GetLiveboard", mock.Anything, forStation("A")).
			Return(liveboardWith("A", 1732000000,
				domain.RawDeparture{Vehicle: "BE.NMBS.IC100", Time: 1732000300},
				domain.RawDeparture{Vehicle: "BE.NMBS.IC200", Time: 1732000600}), nil).Twice()

		// The store deduplicates on the natural key: first batch lands,
		// the identical second batch is skipped entirely.
		departures.On("InsertBatch", mock.Anything, mock.Anything).Return(2, nil).Once()
		departures.On("InsertBatch", mock.Anything, mock.Anything).Return(0, nil).Once()

		uc := newTestUseCase(liveboard, departures, 1)

		first := uc.RunCollection(context.Background(), "run-5a", stations[:1])
		assert.Equal(t, 2, first.TotalInserted)
		assert.Equal(t, 2, first.TotalAttempted)

		second := uc.RunCollection(context.Background(), "run-5b", stations[:1])
		assert.Zero(t, second.TotalInserted)
		assert.Equal(t, 2, second.TotalAttempted)
	})

	t.Run("parallel and sequential runs agree", func(t *testing.T) {
		build := func() (*MockLiveboard, *MockDepartures) {
			liveboard := new(MockLiveboard)
			departures := new(MockDepartures)
			liveboard.On("GetLiveboard", mock.Anything, forStation("A")).
				Return(nil, collerrors.NewFetchError("A", errors.New("down")))
			liveboard.On("GetLiveboard", mock.Anything, mock.Anything).
				Return(liveboardWith("", 1732000000,
					domain.RawDeparture{Vehicle: "BE.NMBS.IC100", Time: 1732000300}), nil)
			departures.On("InsertBatch", mock.Anything, mock.Anything).Return(1, nil)
			return liveboard, departures
		}

		seqLiveboard, seqDepartures := build()
		sequential := newTestUseCase(seqLiveboard, seqDepartures, 1).
			RunCollection(context.Background(), "run-6a", stations)

		parLiveboard, parDepartures := build()
		parallel := newTestUseCase(parLiveboard, parDepartures, 4).
			RunCollection(context.Background(), "run-6b", stations)

		assert.Equal(t, sequential.TotalInserted, parallel.TotalInserted)
		assert.Equal(t, sequential.TotalAttempted, parallel.TotalAttempted)
		assert.Equal(t, sequential.FailedStations, parallel.FailedStations)
		assert.Len(t, parallel.PerStation, len(sequential.PerStation))
	})
}
