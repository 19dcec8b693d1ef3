package repository

import (
	"context"

	"github.com/irail-collector/internal/domain"
)

// LiveboardRepository - доступ к внешнему transit API.
type LiveboardRepository interface {
	// GetLiveboard выполняет один запрос liveboard для станции.
	// Ошибки сети, не-2xx статус и битый JSON возвращаются как
	// *errors.FetchError; повторов на этом уровне нет.
	GetLiveboard(ctx context.Context, station domain.Station) (*domain.LiveboardResponse, error)
}
