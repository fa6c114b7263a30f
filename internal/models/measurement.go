package models

import "time"

// Measurement is one hour of environmental observations for a location.
// AQI is required for training; every other field is optional and nil when
// the upstream source did not report it.
type Measurement struct {
	Timestamp time.Time `json:"timestamp"`
	AQI       *float64  `json:"aqi,omitempty"`

	// Pollutant concentrations
	PM25 *float64 `json:"pm25,omitempty"`
	PM10 *float64 `json:"pm10,omitempty"`
	NO2  *float64 `json:"no2,omitempty"`
	O3   *float64 `json:"o3,omitempty"`
	SO2  *float64 `json:"so2,omitempty"`
	CO   *float64 `json:"co,omitempty"`

	// Weather observations
	Temperature   *float64 `json:"temperature,omitempty"`
	Humidity      *float64 `json:"humidity,omitempty"`
	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	WindDirection *float64 `json:"wind_direction,omitempty"`
	Pressure      *float64 `json:"pressure,omitempty"`
	Visibility    *float64 `json:"visibility,omitempty"`

	// Satellite-derived values
	CloudCover *float64 `json:"cloud_cover,omitempty"`
	AOD        *float64 `json:"aod,omitempty"`
}

// Field names used across the pipeline. The feature engineer builds columns
// from these, and input validation reports completeness against them.
const (
	FieldAQI           = "aqi"
	FieldPM25          = "pm25"
	FieldPM10          = "pm10"
	FieldNO2           = "no2"
	FieldO3            = "o3"
	FieldSO2           = "so2"
	FieldCO            = "co"
	FieldTemperature   = "temperature"
	FieldHumidity      = "humidity"
	FieldWindSpeed     = "wind_speed"
	FieldWindDirection = "wind_direction"
	FieldPressure      = "pressure"
	FieldVisibility    = "visibility"
	FieldCloudCover    = "cloud_cover"
	FieldAOD           = "aod"
)

// MeasurementFields lists every optional numeric field in a stable order
var MeasurementFields = []string{
	FieldAQI,
	FieldPM25, FieldPM10, FieldNO2, FieldO3, FieldSO2, FieldCO,
	FieldTemperature, FieldHumidity, FieldWindSpeed, FieldWindDirection,
	FieldPressure, FieldVisibility,
	FieldCloudCover, FieldAOD,
}

// RecommendedFields are the inputs the model benefits from most; input
// validation scores completeness against this set.
var RecommendedFields = []string{
	FieldTemperature, FieldHumidity, FieldPressure, FieldWindSpeed, FieldWindDirection,
	FieldPM25, FieldPM10, FieldNO2, FieldO3, FieldSO2, FieldCO,
	FieldCloudCover, FieldVisibility, FieldAOD,
}

// Value returns the named field and whether it is present
func (m *Measurement) Value(field string) (float64, bool) {
	var p *float64
	switch field {
	case FieldAQI:
		p = m.AQI
	case FieldPM25:
		p = m.PM25
	case FieldPM10:
		p = m.PM10
	case FieldNO2:
		p = m.NO2
	case FieldO3:
		p = m.O3
	case FieldSO2:
		p = m.SO2
	case FieldCO:
		p = m.CO
	case FieldTemperature:
		p = m.Temperature
	case FieldHumidity:
		p = m.Humidity
	case FieldWindSpeed:
		p = m.WindSpeed
	case FieldWindDirection:
		p = m.WindDirection
	case FieldPressure:
		p = m.Pressure
	case FieldVisibility:
		p = m.Visibility
	case FieldCloudCover:
		p = m.CloudCover
	case FieldAOD:
		p = m.AOD
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Float is a convenience for building optional measurement fields
func Float(v float64) *float64 {
	return &v
}
