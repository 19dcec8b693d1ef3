package irail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/irail-collector/internal/config"
	"github.com/irail-collector/internal/domain"
	"github.com/irail-collector/internal/domain/repository"
	"github.com/irail-collector/internal/pkg/errors"
	"go.uber.org/zap"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *zap.Logger
}

// NewClient создает новый клиент для iRail liveboard API
func NewClient(cfg *config.CollectorConfig, logger *zap.Logger) repository.LiveboardRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// GetLiveboard возвращает liveboard одной станции
func (c *client) GetLiveboard(ctx context.Context, station domain.Station) (*domain.LiveboardResponse, error) {
	reqURL := fmt.Sprintf("%s/liveboard/?station=%s&format=json&fast=true",
		c.baseURL, url.QueryEscape(station.Name))

	c.logger.Debug("Calling iRail liveboard API",
		zap.String("station", station.Name),
		zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request",
			zap.String("station", station.Name), zap.Error(err))
		return nil, errors.NewFetchError(station.Name, fmt.Errorf("create request: %w", err))
	}
	// iRail terms of use ask for an identifying User-Agent.
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request",
			zap.String("station", station.Name), zap.Error(err))
		return nil, errors.NewFetchError(station.Name, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("iRail API returned error",
			zap.String("station", station.Name),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, errors.NewFetchError(station.Name,
			fmt.Errorf("irail API error: status %d, body: %s", resp.StatusCode, string(body)))
	}

	var liveboard domain.LiveboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&liveboard); err != nil {
		c.logger.Error("Failed to decode response",
			zap.String("station", station.Name), zap.Error(err))
		return nil, errors.NewFetchError(station.Name, fmt.Errorf("decode response: %w", err))
	}

	c.logger.Debug("iRail liveboard API call successful",
		zap.String("station", station.Name),
		zap.Int("departures", len(liveboard.Departures.Departure)),
		zap.Duration("elapsed", time.Since(start)))

	return &liveboard, nil
}
