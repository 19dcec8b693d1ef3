package errors

import (
	"errors"
	"fmt"
)

// ErrDuplicate marks a departure whose natural key already exists in the store.
// Duplicates are skipped, never overwritten.
var ErrDuplicate = errors.New("duplicate departure")

// ErrLockHeld is returned when another collection run holds the run lock.
var ErrLockHeld = errors.New("collection run lock already held")

// FetchError - ошибка получения liveboard для одной станции
// (сетевая ошибка, таймаут, не-2xx статус или битый JSON).
type FetchError struct {
	Station string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch liveboard for %s: %v", e.Station, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StorageError - ошибка хранилища на уровне батча одной станции.
// Прерывает батч этой станции, но не весь запуск.
type StorageError struct {
	Station string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store departures for %s: %v", e.Station, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SchemaError - ошибка создания целевой схемы. Фатальна для процесса:
// без схемы запуск невозможен.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("bootstrap departures schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewFetchError оборачивает ошибку получения данных станции.
func NewFetchError(station string, err error) *FetchError {
	return &FetchError{Station: station, Err: err}
}

// NewStorageError оборачивает ошибку хранилища для станции.
func NewStorageError(station string, err error) *StorageError {
	return &StorageError{Station: station, Err: err}
}

// NewSchemaError оборачивает ошибку бутстрапа схемы.
func NewSchemaError(err error) *SchemaError {
	return &SchemaError{Err: err}
}

// IsFetchError сообщает, является ли err ошибкой получения liveboard.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsStorageError сообщает, является ли err ошибкой хранилища.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
