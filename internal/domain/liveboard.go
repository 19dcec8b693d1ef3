package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LiveboardResponse - ответ iRail /liveboard/?format=json.
// iRail кодирует числа и флаги строками ("1732000000", "0"), поэтому
// числовые поля разбираются через FlexInt.
type LiveboardResponse struct {
	Version     string      `json:"version"`
	Timestamp   FlexInt     `json:"timestamp"`
	StationInfo StationInfo `json:"stationinfo"`
	Departures  Departures  `json:"departures"`
}

type StationInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StandardName string `json:"standardname"`
}

type Departures struct {
	Number    FlexInt        `json:"number"`
	Departure []RawDeparture `json:"departure"`
}

// RawDeparture - сырой фрагмент ответа API об одном отправлении.
// Отбрасывается после нормализации.
type RawDeparture struct {
	Vehicle  string  `json:"vehicle"`
	Platform string  `json:"platform"`
	Time     FlexInt `json:"time"`
	Delay    FlexInt `json:"delay"`
	Canceled FlexInt `json:"canceled"`
	Station  string  `json:"station"`
}

// FlexInt decodes a JSON value that may arrive either as a number or as a
// quoted decimal string. Missing and null values decode to zero.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flexint: %w", err)
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("flexint: parse %q: %w", s, err)
		}
		*f = FlexInt(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("flexint: %w", err)
	}
	*f = FlexInt(v)
	return nil
}

func (f FlexInt) Int() int {
	return int(f)
}

func (f FlexInt) Int64() int64 {
	return int64(f)
}

// Bool интерпретирует кодировку флага 0/1.
func (f FlexInt) Bool() bool {
	return f != 0
}
