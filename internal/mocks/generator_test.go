package mocks

import (
	"testing"
	"time"

	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

func TestHourlySpacingAndOrder(t *testing.T) {
	end := time.Date(2025, 10, 3, 12, 30, 0, 0, time.UTC)
	records := NewGenerator(1).Hourly(end, 72)

	if len(records) != 72 {
		t.Fatalf("expected 72 records, got %d", len(records))
	}
	if !records[len(records)-1].Timestamp.Equal(end.Truncate(time.Hour)) {
		t.Errorf("last record at %v, want %v", records[len(records)-1].Timestamp, end.Truncate(time.Hour))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Sub(records[i-1].Timestamp) != time.Hour {
			t.Fatalf("gap between records %d and %d is not one hour", i-1, i)
		}
	}
}

func TestHourlyAllFieldsPopulated(t *testing.T) {
	records := NewGenerator(2).Hourly(time.Now().UTC(), 24)

	for i, r := range records {
		for _, field := range models.MeasurementFields {
			if _, ok := r.Value(field); !ok {
				t.Errorf("record %d missing field %s", i, field)
			}
		}
	}
}

func TestHourlyDeterministicForSeed(t *testing.T) {
	end := time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)
	a := NewGenerator(42).Hourly(end, 48)
	b := NewGenerator(42).Hourly(end, 48)

	for i := range a {
		if *a[i].AQI != *b[i].AQI || *a[i].Temperature != *b[i].Temperature {
			t.Fatalf("same seed produced different values at record %d", i)
		}
	}

	c := NewGenerator(43).Hourly(end, 48)
	same := true
	for i := range a {
		if *a[i].AQI != *c[i].AQI {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical series")
	}
}

func TestHourlyRushHourElevation(t *testing.T) {
	// Average many days so noise washes out
	end := time.Date(2025, 10, 3, 23, 0, 0, 0, time.UTC)
	records := NewGenerator(7).Hourly(end, 24*30)

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range records {
		h := r.Timestamp.Hour()
		sums[h] += *r.AQI
		counts[h]++
	}

	peak := (sums[8]/float64(counts[8]) + sums[18]/float64(counts[18])) / 2
	quiet := (sums[3]/float64(counts[3]) + sums[13]/float64(counts[13])) / 2
	if peak <= quiet {
		t.Errorf("rush hour AQI %.1f not above off-peak %.1f", peak, quiet)
	}
}
