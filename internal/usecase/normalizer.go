package usecase

import (
	"strings"
	"time"

	"github.com/irail-collector/internal/domain"
)

// nmbsVehiclePrefix - префикс перевозчика в идентификаторах iRail
// ("BE.NMBS.IC1234"). В train_id хранится идентификатор без префикса.
const nmbsVehiclePrefix = "BE.NMBS."

// Normalize превращает сырой liveboard в канонические записи об
// отправлениях. Пустой список отправлений - валидный результат
// (ночные часы): возвращается (collectedAt, nil), без ошибки.
//
// collectedAt вычисляется один раз из timestamp ответа и проставляется
// во все записи этого запроса как единая метка свежести. Нулевой
// timestamp даёт начало эпохи, без специальной обработки.
func Normalize(station domain.Station, resp *domain.LiveboardResponse) (time.Time, []domain.DepartureRecord) {
	collectedAt := time.Unix(resp.Timestamp.Int64(), 0).UTC()
	stationName := resolveStationName(station, resp)

	raw := resp.Departures.Departure
	if len(raw) == 0 {
		return collectedAt, nil
	}

	records := make([]domain.DepartureRecord, 0, len(raw))
	for _, dep := range raw {
		records = append(records, domain.DepartureRecord{
			Station:       stationName,
			TrainID:       TrainID(dep.Vehicle),
			Vehicle:       dep.Vehicle,
			Platform:      dep.Platform,
			ScheduledTime: time.Unix(dep.Time.Int64(), 0).UTC(),
			DelaySeconds:  dep.Delay.Int(),
			Cancelled:     dep.Canceled.Bool(),
			Destination:   dep.Station,
			CollectedAt:   collectedAt,
		})
	}

	return collectedAt, records
}

// TrainID убирает один ведущий префикс перевозчика из идентификатора
// состава. Идентификаторы без префикса проходят без изменений.
func TrainID(vehicle string) string {
	return strings.TrimPrefix(vehicle, nmbsVehiclePrefix)
}

// resolveStationName предпочитает каноническое standardname из ответа
// API, затем display name реестра, затем ключ запроса.
func resolveStationName(station domain.Station, resp *domain.LiveboardResponse) string {
	if name := resp.StationInfo.StandardName; name != "" {
		return name
	}
	if station.DisplayName != "" {
		return station.DisplayName
	}
	return station.Name
}
