package domain

import "time"

// DepartureRecord - каноническая запись об отправлении, сохраняемая в
// departures_raw. Натуральный ключ: (station, train_id, scheduled_time).
type DepartureRecord struct {
	ID            int64     `json:"id" db:"id"`
	Station       string    `json:"station" db:"station"`
	TrainID       string    `json:"train_id" db:"train_id"`
	Vehicle       string    `json:"vehicle" db:"vehicle"`
	Platform      string    `json:"platform" db:"platform"`
	ScheduledTime time.Time `json:"scheduled_time" db:"scheduled_time"`
	DelaySeconds  int       `json:"delay_seconds" db:"delay_seconds"`
	Cancelled     bool      `json:"cancelled" db:"cancelled"`
	Destination   string    `json:"destination" db:"destination"`
	CollectedAt   time.Time `json:"collected_at" db:"collected_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CollectionResult - итог обработки одной станции за один запуск.
// Не персистится, потребляется только репортером.
type CollectionResult struct {
	Station   string `json:"station"`
	Inserted  int    `json:"inserted"`
	Attempted int    `json:"attempted"`
	Err       error  `json:"-"`
}

// Failed сообщает, закончилась ли станция ошибкой (fetch или storage).
// Пустой liveboard ошибкой не считается.
func (r CollectionResult) Failed() bool {
	return r.Err != nil
}

// RunSummary - сводка одного полного прохода по всем станциям.
// Живёт только в рамках запуска, уходит в логи.
type RunSummary struct {
	RunID          string             `json:"run_id"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
	TotalInserted  int                `json:"total_inserted"`
	TotalAttempted int                `json:"total_attempted"`
	FailedStations int                `json:"failed_stations"`
	PerStation     []CollectionResult `json:"per_station"`
}

// StoreStats - агрегированная статистика по хранилищу, только для
// операционной видимости в сводке запуска.
type StoreStats struct {
	TotalRecords     int64      `json:"total_records" db:"total_records"`
	DistinctStations int        `json:"distinct_stations" db:"distinct_stations"`
	LastCollectedAt  *time.Time `json:"last_collected_at" db:"last_collected_at"`
}
