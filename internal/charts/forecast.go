package charts

import (
	"fmt"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ayushsingh08-ds/Zephra/internal/models"
	"github.com/ayushsingh08-ds/Zephra/internal/training"
)

// generateForecastChart draws observed AQI followed by the forecast,
// with horizontal markers at the category band boundaries.
func (cg *ChartGenerator) generateForecastChart(history []models.Measurement, forecasts []models.HourlyForecast) (string, error) {
	filename := cg.chartPath("aqi_forecast.png")

	var histX, histY []float64
	for i, m := range history {
		if m.AQI == nil {
			continue
		}
		histX = append(histX, float64(i))
		histY = append(histY, *m.AQI)
	}
	if len(histX) == 0 && len(forecasts) == 0 {
		return "", fmt.Errorf("nothing to plot")
	}

	var fcX, fcY []float64
	offset := float64(len(history))
	for i, f := range forecasts {
		fcX = append(fcX, offset+float64(i))
		fcY = append(fcY, f.PredictedAQI)
	}

	series := []chart.Series{}
	if len(histX) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "Observed AQI",
			XValues: histX,
			YValues: histY,
			Style: chart.Style{
				StrokeColor: drawing.Color{R: 52, G: 58, B: 64, A: 255},
				StrokeWidth: 2,
			},
		})
	}
	if len(fcX) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "Forecast",
			XValues: fcX,
			YValues: fcY,
			Style: chart.Style{
				StrokeColor:     drawing.Color{R: 0, G: 123, B: 255, A: 255},
				StrokeWidth:     2,
				StrokeDashArray: []float64{4, 3},
			},
		})
	}

	// Band boundary guides at the Good/Moderate and Moderate/USG edges
	maxX := offset + float64(len(forecasts))
	for _, bound := range []float64{50, 100} {
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{0, maxX},
			YValues: []float64{bound, bound},
			Style: chart.Style{
				StrokeColor:     drawing.Color{R: 200, G: 120, B: 0, A: 160},
				StrokeWidth:     1,
				StrokeDashArray: []float64{2, 4},
			},
		})
	}

	graph := chart.Chart{
		Title: "AQI: Recent Observations and 24h Forecast",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Width:  800,
		Height: 400,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: drawing.Color{R: 248, G: 249, B: 250, A: 255},
		},
		XAxis: chart.XAxis{
			Name: "Hours",
		},
		YAxis: chart.YAxis{
			Name: "AQI",
		},
		Series: series,
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("render forecast chart: %w", err)
	}
	return filename, nil
}

// generateImportanceChart draws the top model features as a bar chart
func (cg *ChartGenerator) generateImportanceChart(importance []training.FeatureImportance) (string, error) {
	if len(importance) == 0 {
		return "", fmt.Errorf("no importance ranking available")
	}
	filename := cg.chartPath("feature_importance.png")

	ranked := append([]training.FeatureImportance(nil), importance...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Importance > ranked[j].Importance })
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	bars := make([]chart.Value, len(ranked))
	for i, fi := range ranked {
		bars[i] = chart.Value{
			Label: fi.Feature,
			Value: fi.Importance,
			Style: chart.Style{
				FillColor:   drawing.Color{R: 0, G: 123, B: 255, A: 255},
				StrokeColor: drawing.Color{R: 0, G: 123, B: 255, A: 255},
			},
		}
	}

	graph := chart.BarChart{
		Title: "Top Model Features",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Width:    800,
		Height:   400,
		BarWidth: 50,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 40, Right: 20, Bottom: 60},
		},
		XAxis: chart.Style{
			FontSize:            9,
			TextRotationDegrees: 45,
		},
		Bars: bars,
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("render importance chart: %w", err)
	}
	return filename, nil
}
