package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

// Generator produces synthetic hourly air quality measurements for mockup
// mode and offline development. Output follows a realistic shape: a
// diurnal temperature cycle, traffic-driven AQI peaks around rush hours,
// and small seeded noise so runs are reproducible.
type Generator struct {
	seed int64
}

// NewGenerator creates a generator with the given noise seed
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// Hourly returns n consecutive hourly measurements ending at end, oldest
// first. Every field is populated.
func (g *Generator) Hourly(end time.Time, n int) []models.Measurement {
	rng := rand.New(rand.NewSource(g.seed))
	end = end.Truncate(time.Hour)

	records := make([]models.Measurement, n)
	for i := 0; i < n; i++ {
		ts := end.Add(-time.Duration(n-1-i) * time.Hour)
		hour := ts.Hour()
		phase := 2 * math.Pi * float64(hour) / 24

		aqi := baseAQI(hour, rng)
		temp := 18 + 8*math.Sin(phase-math.Pi/2) + rng.NormFloat64()
		humidity := clamp(60-temp+rng.NormFloat64()*5, 20, 95)
		windSpeed := math.Abs(3 + 2*math.Sin(phase/2) + rng.NormFloat64())

		records[i] = models.Measurement{
			Timestamp:     ts,
			AQI:           models.Float(aqi),
			PM25:          models.Float(aqi*0.35 + rng.NormFloat64()*2),
			PM10:          models.Float(aqi*0.55 + rng.NormFloat64()*3),
			NO2:           models.Float(15 + aqi*0.25 + rng.NormFloat64()*2),
			O3:            models.Float(clamp(30+20*math.Sin(phase-math.Pi/2)+rng.NormFloat64()*4, 5, 150)),
			SO2:           models.Float(math.Abs(5 + rng.NormFloat64()*2)),
			CO:            models.Float(math.Abs(250 + aqi*3 + rng.NormFloat64()*30)),
			Temperature:   models.Float(temp),
			Humidity:      models.Float(humidity),
			WindSpeed:     models.Float(windSpeed),
			WindDirection: models.Float(math.Mod(180+60*math.Sin(phase)+rng.NormFloat64()*20+360, 360)),
			Pressure:      models.Float(1013 + 3*math.Sin(phase) + rng.NormFloat64()),
			Visibility:    models.Float(clamp(18-aqi*0.08+rng.NormFloat64(), 1, 25)),
			CloudCover:    models.Float(clamp(45+rng.NormFloat64()*20, 0, 100)),
			AOD:           models.Float(clamp(0.1+aqi*0.003+rng.NormFloat64()*0.03, 0.01, 1.5)),
		}
	}
	return records
}

// baseAQI draws an hourly AQI in the 40-90 range with rush hour peaks:
// 8:00 and 18:00 run hottest, the shoulder hours around them elevated.
func baseAQI(hour int, rng *rand.Rand) float64 {
	aqi := 40 + rng.Float64()*30
	switch hour {
	case 8, 18:
		aqi *= 1.5
	case 7, 9, 17, 19:
		aqi *= 1.3
	}
	return aqi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
