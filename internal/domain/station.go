package domain

// Station - запись реестра наблюдаемых станций. Name используется как
// ключ запроса к iRail API, DisplayName - человекочитаемое имя для логов,
// пока API не вернул каноническое standardname.
type Station struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// DefaultStations is the registry used when COLLECTOR_STATIONS is not set.
// Defined at process start, never persisted.
var DefaultStations = []Station{
	{Name: "Brussels-Central", DisplayName: "Brussels-Central"},
	{Name: "Antwerp-Central", DisplayName: "Antwerp-Central"},
	{Name: "Ghent-Sint-Pieters", DisplayName: "Ghent-Sint-Pieters"},
	{Name: "Liège-Guillemins", DisplayName: "Liège-Guillemins"},
}

// StationsFromNames строит реестр из списка имён (конфигурация
// COLLECTOR_STATIONS). Пустой список - реестр по умолчанию.
func StationsFromNames(names []string) []Station {
	if len(names) == 0 {
		return DefaultStations
	}
	stations := make([]Station, 0, len(names))
	for _, name := range names {
		stations = append(stations, Station{Name: name, DisplayName: name})
	}
	return stations
}
