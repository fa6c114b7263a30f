package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

// Config carries the feature engineering knobs. The zero value is not
// usable; start from DefaultConfig and override as needed.
type Config struct {
	// Lags are the offsets, in hours, for lagged copies of base columns
	Lags []int

	// Windows are the trailing window sizes, in hours, for rolling stats
	Windows []int

	// LagColumns are the base columns (beyond the target) that receive
	// lag features; absent columns are skipped.
	LagColumns []string

	// RollingColumns are the base columns (beyond the target) that
	// receive rolling statistics; absent columns are skipped.
	RollingColumns []string
}

// DefaultConfig returns the documented defaults
func DefaultConfig() Config {
	return Config{
		Lags:    []int{1, 6, 12, 24},
		Windows: []int{3, 6, 12, 24},
		LagColumns: []string{
			models.FieldPM25, models.FieldPM10, models.FieldNO2, models.FieldO3,
			models.FieldTemperature, models.FieldWindSpeed, models.FieldHumidity, models.FieldPressure,
		},
		RollingColumns: []string{
			models.FieldPM25, models.FieldPM10, models.FieldNO2, models.FieldO3,
			models.FieldTemperature, models.FieldWindSpeed,
		},
	}
}

// MaxLag returns the largest configured lag offset. The first MaxLag rows
// of any lag column are undefined.
func (c Config) MaxLag() int {
	max := 0
	for _, lag := range c.Lags {
		if lag > max {
			max = lag
		}
	}
	return max
}

// Engineer transforms raw measurement sequences into feature tables. It is
// a single-owner object: the only mutable state is the scaler fitted during
// normalization, so concurrent callers need their own instance.
type Engineer struct {
	cfg    Config
	scaler *Scaler
}

// NewEngineer creates an engineer with the given configuration
func NewEngineer(cfg Config) *Engineer {
	return &Engineer{cfg: cfg}
}

// Config returns the engineer's configuration
func (e *Engineer) Config() Config {
	return e.cfg
}

// Scaler returns the fitted normalization parameters, or nil
func (e *Engineer) Scaler() *Scaler {
	return e.scaler
}

// SetScaler installs previously fitted normalization parameters, e.g. from
// a loaded artifact bundle.
func (e *Engineer) SetScaler(s *Scaler) {
	e.scaler = s
}

// EngineerFeatures runs the full pipeline: sort by timestamp, then time
// features, meteorological indices, pollutant interactions, lag features,
// and rolling statistics, in that order.
func (e *Engineer) EngineerFeatures(records []models.Measurement, targetCol string) *Frame {
	sorted := make([]models.Measurement, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	timestamps := make([]time.Time, len(sorted))
	for i, r := range sorted {
		timestamps[i] = r.Timestamp
	}
	f := NewFrame(timestamps)

	addBaseColumns(f, sorted)
	addTimeFeatures(f)
	addMeteorologicalIndices(f)
	addPollutantInteractions(f)

	baseCols := e.presentColumns(f, targetCol, e.cfg.LagColumns)
	addLagFeatures(f, baseCols, e.cfg.Lags)

	rollCols := e.presentColumns(f, targetCol, e.cfg.RollingColumns)
	addRollingFeatures(f, rollCols, e.cfg.Windows)

	return f
}

// presentColumns returns target + configured base columns, keeping only
// those that exist in the frame. An absent base column is skipped, never
// an error.
func (e *Engineer) presentColumns(f *Frame, targetCol string, configured []string) []string {
	candidates := append([]string{targetCol}, configured...)
	var out []string
	seen := make(map[string]bool)
	for _, name := range candidates {
		if seen[name] || !f.Has(name) {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// addBaseColumns fills per-field columns from the records. A column exists
// when at least one record carries the field; absent entries become NaN.
func addBaseColumns(f *Frame, records []models.Measurement) {
	for _, field := range models.MeasurementFields {
		present := false
		vals := make([]float64, len(records))
		for i := range records {
			if v, ok := records[i].Value(field); ok {
				vals[i] = v
				present = true
			} else {
				vals[i] = math.NaN()
			}
		}
		if present {
			f.SetColumn(field, vals)
		}
	}
}

// addTimeFeatures derives calendar components plus cyclical encodings.
// Periodic fields get sine/cosine pairs so hour 23 and hour 0 stay
// numerically adjacent.
func addTimeFeatures(f *Frame) {
	n := f.Len()
	hour := make([]float64, n)
	dayOfWeek := make([]float64, n)
	dayOfMonth := make([]float64, n)
	month := make([]float64, n)
	dayOfYear := make([]float64, n)
	season := make([]float64, n)

	hourSin := make([]float64, n)
	hourCos := make([]float64, n)
	dowSin := make([]float64, n)
	dowCos := make([]float64, n)
	monthSin := make([]float64, n)
	monthCos := make([]float64, n)

	for i, ts := range f.Timestamps {
		h := float64(ts.Hour())
		dow := float64(ts.Weekday())
		mo := float64(ts.Month())

		hour[i] = h
		dayOfWeek[i] = dow
		dayOfMonth[i] = float64(ts.Day())
		month[i] = mo
		dayOfYear[i] = float64(ts.YearDay())
		season[i] = float64((int(mo) % 12) / 3)

		hourSin[i] = math.Sin(2 * math.Pi * h / 24)
		hourCos[i] = math.Cos(2 * math.Pi * h / 24)
		dowSin[i] = math.Sin(2 * math.Pi * dow / 7)
		dowCos[i] = math.Cos(2 * math.Pi * dow / 7)
		monthSin[i] = math.Sin(2 * math.Pi * mo / 12)
		monthCos[i] = math.Cos(2 * math.Pi * mo / 12)
	}

	f.SetColumn("hour", hour)
	f.SetColumn("day_of_week", dayOfWeek)
	f.SetColumn("day_of_month", dayOfMonth)
	f.SetColumn("month", month)
	f.SetColumn("day_of_year", dayOfYear)
	f.SetColumn("hour_sin", hourSin)
	f.SetColumn("hour_cos", hourCos)
	f.SetColumn("day_of_week_sin", dowSin)
	f.SetColumn("day_of_week_cos", dowCos)
	f.SetColumn("month_sin", monthSin)
	f.SetColumn("month_cos", monthCos)
	f.SetColumn("season", season)
}

// addMeteorologicalIndices derives dispersion proxies from weather and
// satellite columns. Each index is computed only when its inputs exist.
func addMeteorologicalIndices(f *Frame) {
	n := f.Len()

	if ws, ok := f.Column(models.FieldWindSpeed); ok {
		if wd, ok := f.Column(models.FieldWindDirection); ok {
			windU := make([]float64, n)
			windV := make([]float64, n)
			for i := range ws {
				rad := wd[i] * math.Pi / 180
				windU[i] = ws[i] * math.Cos(rad)
				windV[i] = ws[i] * math.Sin(rad)
			}
			f.SetColumn("wind_u", windU)
			f.SetColumn("wind_v", windV)
		}
		// Heavier dispersion at higher speeds; a heuristic, not a
		// physical law.
		dispersion := make([]float64, n)
		for i := range ws {
			dispersion[i] = math.Pow(ws[i], 1.5)
		}
		f.SetColumn("wind_dispersion_index", dispersion)
	}

	temp, hasTemp := f.Column(models.FieldTemperature)
	hum, hasHum := f.Column(models.FieldHumidity)
	if hasTemp && hasHum {
		// Magnus formula dew point; a small temperature-dew-point gap
		// signals inversion risk.
		const a, b = 17.27, 237.7
		dewPoint := make([]float64, n)
		tempDewDiff := make([]float64, n)
		inversionRisk := make([]float64, n)
		heatIndex := make([]float64, n)
		for i := range temp {
			alpha := (a*temp[i])/(b+temp[i]) + math.Log(hum[i]/100)
			dewPoint[i] = (b * alpha) / (a - alpha)
			tempDewDiff[i] = temp[i] - dewPoint[i]
			inversionRisk[i] = 1 / (1 + tempDewDiff[i])
			heatIndex[i] = -8.78469475556 + 1.61139411*temp[i] + 2.33854883889*hum[i] - 0.14611605*temp[i]*hum[i]
		}
		f.SetColumn("dew_point", dewPoint)
		f.SetColumn("temp_dew_diff", tempDewDiff)
		f.SetColumn("inversion_risk", inversionRisk)
		f.SetColumn("heat_index", heatIndex)
	}

	if press, ok := f.Column(models.FieldPressure); ok && hasTemp {
		stability := make([]float64, n)
		for i := range press {
			stability[i] = press[i] / (temp[i] + 273.15)
		}
		f.SetColumn("stability_index", stability)
	}

	if cloud, ok := f.Column(models.FieldCloudCover); ok {
		if aod, ok := f.Column(models.FieldAOD); ok {
			haze := make([]float64, n)
			for i := range cloud {
				haze[i] = cloud[i] * aod[i]
			}
			f.SetColumn("haze_indicator", haze)
		}
	}

	if vis, ok := f.Column(models.FieldVisibility); ok {
		diffusion := make([]float64, n)
		for i := range vis {
			diffusion[i] = 1 / (1 + vis[i])
		}
		f.SetColumn("diffusion_potential", diffusion)
	}
}

// addPollutantInteractions derives ratios and sums between pollutant pairs
func addPollutantInteractions(f *Frame) {
	n := f.Len()
	// Epsilon keeps the ratios finite when the denominator reads zero
	const eps = 0.001

	pm25, hasPM25 := f.Column(models.FieldPM25)
	pm10, hasPM10 := f.Column(models.FieldPM10)
	if hasPM25 && hasPM10 {
		ratio := make([]float64, n)
		total := make([]float64, n)
		for i := range pm25 {
			ratio[i] = pm25[i] / (pm10[i] + eps)
			total[i] = pm25[i] + pm10[i]
		}
		f.SetColumn("pm25_pm10_ratio", ratio)
		f.SetColumn("total_pm", total)
	}

	no2, hasNO2 := f.Column(models.FieldNO2)
	o3, hasO3 := f.Column(models.FieldO3)
	if hasNO2 && hasO3 {
		ratio := make([]float64, n)
		oxidants := make([]float64, n)
		for i := range no2 {
			ratio[i] = no2[i] / (o3[i] + eps)
			oxidants[i] = no2[i] + o3[i]
		}
		f.SetColumn("no2_o3_ratio", ratio)
		f.SetColumn("total_oxidants", oxidants)
	}
}

// addLagFeatures adds k-hour lagged copies of each base column. The first
// k rows of a lag column are undefined.
func addLagFeatures(f *Frame, columns []string, lags []int) {
	for _, col := range columns {
		vals, ok := f.Column(col)
		if !ok {
			continue
		}
		for _, lag := range lags {
			shifted := make([]float64, len(vals))
			for i := range shifted {
				if i < lag {
					shifted[i] = math.NaN()
				} else {
					shifted[i] = vals[i-lag]
				}
			}
			f.SetColumn(fmt.Sprintf("%s_lag_%dh", col, lag), shifted)
		}
	}
}

// addRollingFeatures adds trailing mean/std/min/max over each window,
// using the available-so-far samples when fewer than the window size have
// elapsed. Rolling stats are defined for every row as long as the window
// holds at least one defined value.
func addRollingFeatures(f *Frame, columns []string, windows []int) {
	for _, col := range columns {
		vals, ok := f.Column(col)
		if !ok {
			continue
		}
		for _, window := range windows {
			n := len(vals)
			mean := make([]float64, n)
			std := make([]float64, n)
			min := make([]float64, n)
			max := make([]float64, n)

			for i := 0; i < n; i++ {
				start := i - window + 1
				if start < 0 {
					start = 0
				}
				sample := sample(vals[start : i+1])
				if len(sample) == 0 {
					nan := math.NaN()
					mean[i], std[i], min[i], max[i] = nan, nan, nan, nan
					continue
				}
				mean[i] = stat.Mean(sample, nil)
				if len(sample) > 1 {
					std[i] = stat.StdDev(sample, nil)
				} else {
					std[i] = 0
				}
				min[i] = floats.Min(sample)
				max[i] = floats.Max(sample)
			}

			f.SetColumn(fmt.Sprintf("%s_rolling_mean_%dh", col, window), mean)
			f.SetColumn(fmt.Sprintf("%s_rolling_std_%dh", col, window), std)
			f.SetColumn(fmt.Sprintf("%s_rolling_min_%dh", col, window), min)
			f.SetColumn(fmt.Sprintf("%s_rolling_max_%dh", col, window), max)
		}
	}
}

// sample collects the defined values from a window
func sample(window []float64) []float64 {
	out := make([]float64, 0, len(window))
	for _, v := range window {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// PrepareForTraining extracts the feature matrix and target vector from an
// engineered frame. The target column is excluded from the features; when
// dropIncomplete is set, rows with any undefined feature or an undefined
// target are removed.
func (e *Engineer) PrepareForTraining(f *Frame, targetCol string, dropIncomplete bool) (*Table, []float64) {
	var names []string
	for _, name := range f.Names() {
		if name != targetCol {
			names = append(names, name)
		}
	}

	target, hasTarget := f.Column(targetCol)

	n := f.Len()
	rows := make([][]float64, 0, n)
	timestamps := make([]time.Time, 0, n)
	var y []float64

	for i := 0; i < n; i++ {
		row := make([]float64, len(names))
		for j, name := range names {
			col, _ := f.Column(name)
			row[j] = col[i]
		}

		if dropIncomplete {
			if !rowComplete(row) {
				continue
			}
			if hasTarget && math.IsNaN(target[i]) {
				continue
			}
		}

		rows = append(rows, row)
		timestamps = append(timestamps, f.Timestamps[i])
		if hasTarget {
			y = append(y, target[i])
		}
	}

	return &Table{Names: names, Rows: rows, Timestamps: timestamps}, y
}

// Normalize z-scores every feature column in place. With fit set the
// parameters are computed from the table and stored for reuse; without it
// the previously fitted parameters are required.
func (e *Engineer) Normalize(t *Table, fit bool) error {
	if fit {
		s := &Scaler{}
		s.Fit(t)
		e.scaler = s
	}
	if e.scaler == nil {
		return ErrNotFitted
	}
	return e.scaler.Transform(t)
}
