package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ayushsingh08-ds/Zephra/internal/logger"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

// DataFetcher pulls hourly weather and air quality series from the
// Open-Meteo APIs and merges them into measurement records.
type DataFetcher struct {
	client        *resty.Client
	weatherURL    string
	airQualityURL string
	log           *logger.Logger
}

// NewDataFetcher creates a fetcher against the given API base URLs
func NewDataFetcher(weatherURL, airQualityURL string) *DataFetcher {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)

	return &DataFetcher{
		client:        client,
		weatherURL:    weatherURL,
		airQualityURL: airQualityURL,
		log:           logger.GetGlobalLogger().WithComponent("fetcher"),
	}
}

// FetchHourly fetches historyHours of hourly data for a location from both
// APIs concurrently and merges the series by timestamp, oldest first.
// Hours present in only one source still yield a record with the other
// source's fields absent.
func (f *DataFetcher) FetchHourly(ctx context.Context, loc Location, historyHours int) ([]models.Measurement, error) {
	pastDays := (historyHours + 23) / 24

	type weatherResult struct {
		resp *weatherResponse
		err  error
	}
	type airResult struct {
		resp *airQualityResponse
		err  error
	}
	weatherChan := make(chan weatherResult, 1)
	airChan := make(chan airResult, 1)

	go func() {
		resp, err := f.fetchWeather(ctx, loc, pastDays)
		weatherChan <- weatherResult{resp, err}
	}()
	go func() {
		resp, err := f.fetchAirQuality(ctx, loc, pastDays)
		airChan <- airResult{resp, err}
	}()

	weather := <-weatherChan
	air := <-airChan
	if weather.err != nil {
		return nil, fmt.Errorf("weather fetch failed: %w", weather.err)
	}
	if air.err != nil {
		return nil, fmt.Errorf("air quality fetch failed: %w", air.err)
	}

	records := mergeHourly(weather.resp, air.resp)
	if len(records) > historyHours {
		records = records[len(records)-historyHours:]
	}

	f.log.Info("fetched hourly data", map[string]interface{}{
		"location": loc.Name,
		"records":  len(records),
	})
	return records, nil
}

func (f *DataFetcher) fetchWeather(ctx context.Context, loc Location, pastDays int) (*weatherResponse, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":      formatCoord(loc.Lat),
			"longitude":     formatCoord(loc.Lon),
			"hourly":        weatherHourlyVars,
			"past_days":     strconv.Itoa(pastDays),
			"forecast_days": "1",
			"timezone":      "UTC",
		}).
		Get(f.weatherURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode())
	}

	var parsed weatherResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse weather response: %w", err)
	}
	return &parsed, nil
}

func (f *DataFetcher) fetchAirQuality(ctx context.Context, loc Location, pastDays int) (*airQualityResponse, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":      formatCoord(loc.Lat),
			"longitude":     formatCoord(loc.Lon),
			"hourly":        airQualityHourlyVars,
			"past_days":     strconv.Itoa(pastDays),
			"forecast_days": "1",
			"timezone":      "UTC",
		}).
		Get(f.airQualityURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("air quality API returned status %d", resp.StatusCode())
	}

	var parsed airQualityResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse air quality response: %w", err)
	}
	return &parsed, nil
}

// mergeHourly joins the two hourly series on timestamp
func mergeHourly(weather *weatherResponse, air *airQualityResponse) []models.Measurement {
	byTime := make(map[time.Time]*models.Measurement)

	record := func(ts time.Time) *models.Measurement {
		if m, ok := byTime[ts]; ok {
			return m
		}
		m := &models.Measurement{Timestamp: ts}
		byTime[ts] = m
		return m
	}

	if weather != nil {
		h := weather.Hourly
		for i, raw := range h.Time {
			ts, err := parseHour(raw)
			if err != nil {
				continue
			}
			m := record(ts)
			m.Temperature = at(h.Temperature, i)
			m.Humidity = at(h.Humidity, i)
			m.WindSpeed = at(h.WindSpeed, i)
			m.WindDirection = at(h.WindDirection, i)
			m.Pressure = at(h.SurfacePressure, i)
			m.CloudCover = at(h.CloudCover, i)
			// Open-Meteo reports visibility in meters; features expect km
			if v := at(h.Visibility, i); v != nil {
				m.Visibility = models.Float(*v / 1000)
			}
		}
	}

	if air != nil {
		h := air.Hourly
		for i, raw := range h.Time {
			ts, err := parseHour(raw)
			if err != nil {
				continue
			}
			m := record(ts)
			m.AQI = at(h.USAQI, i)
			m.PM25 = at(h.PM25, i)
			m.PM10 = at(h.PM10, i)
			m.NO2 = at(h.NO2, i)
			m.O3 = at(h.O3, i)
			m.SO2 = at(h.SO2, i)
			m.CO = at(h.CO, i)
			m.AOD = at(h.AOD, i)
		}
	}

	out := make([]models.Measurement, 0, len(byTime))
	for _, m := range byTime {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// parseHour handles Open-Meteo's zone-less ISO hour stamps, which the
// request pins to UTC.
func parseHour(raw string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02T15:04", raw); err == nil {
		return ts.UTC(), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func at(col []*float64, i int) *float64 {
	if i >= len(col) || col[i] == nil {
		return nil
	}
	v := *col[i]
	return &v
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
