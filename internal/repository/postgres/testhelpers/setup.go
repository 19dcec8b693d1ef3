package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TestDB represents a test database connection
type TestDB struct {
	DB     *sqlx.DB
	Logger *zap.Logger
}

// SetupTestDB initializes a test database connection. The suite is
// skipped entirely when TEST_DB_HOST is not set, so unit test runs do
// not require a live PostgreSQL.
func SetupTestDB(t *testing.T) *TestDB {
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping database integration tests")
	}

	port := getEnv("TEST_DB_PORT", "5432")
	user := getEnv("TEST_DB_USER", "postgres")
	password := getEnv("TEST_DB_PASSWORD", "postgres")
	dbname := getEnv("TEST_DB_NAME", "irail_test")
	sslmode := getEnv("TEST_DB_SSLMODE", "disable")

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	// Retry connection to wait for a container that is still starting.
	// Same pgx driver as production: duplicate detection relies on
	// pgconn surfacing SQLSTATE codes.
	var db *sqlx.DB
	var err error
	maxRetries := 10
	retryDelay := 500 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("pgx", connStr)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			t.Logf("Database not ready (attempt %d/%d), waiting %v...", i+1, maxRetries, retryDelay)
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		t.Fatalf("Failed to connect to test database after %d attempts: %v", maxRetries, err)
	}

	logger, _ := zap.NewDevelopment()
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TestDB{
		DB:     db,
		Logger: logger,
	}
}

// Cleanup drops collector tables so every suite starts from scratch.
func (tdb *TestDB) Cleanup(ctx context.Context) error {
	_, err := tdb.DB.ExecContext(ctx, "DROP TABLE IF EXISTS departures_raw")
	return err
}

// Truncate empties departures_raw between tests.
func (tdb *TestDB) Truncate(ctx context.Context) error {
	_, err := tdb.DB.ExecContext(ctx, "TRUNCATE departures_raw RESTART IDENTITY")
	return err
}

func (tdb *TestDB) Close() {
	tdb.DB.Close()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
