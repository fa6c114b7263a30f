package charts

import (
	"bytes"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

// TrendHTML renders an interactive AQI trend chart: the observed series
// followed by the hourly forecast. The result is a standalone HTML
// document suitable for storing next to the report.
func TrendHTML(history []models.Measurement, forecasts []models.HourlyForecast) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "900px",
			Height: "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Air Quality Index Trend",
			Subtitle: "Observed values and 24-hour forecast",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "AQI",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: true,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    true,
			Trigger: "axis",
		}),
	)

	var xAxis []string
	observed := make([]opts.LineData, 0, len(history))
	for _, m := range history {
		if m.AQI == nil {
			continue
		}
		xAxis = append(xAxis, m.Timestamp.Format("Jan 02 15:04"))
		observed = append(observed, opts.LineData{Value: *m.AQI})
	}

	// Forecast continues on the same axis; pad its series so the two
	// lines meet instead of overlapping.
	forecast := make([]opts.LineData, len(observed), len(observed)+len(forecasts))
	for i := range forecast {
		forecast[i] = opts.LineData{Value: "-"}
	}
	for _, f := range forecasts {
		xAxis = append(xAxis, f.Timestamp.Format("Jan 02 15:04"))
		forecast = append(forecast, opts.LineData{Value: f.PredictedAQI})
	}

	line.SetXAxis(xAxis).
		AddSeries("Observed", observed).
		AddSeries("Forecast", forecast).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: true}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
