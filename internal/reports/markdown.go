package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayushsingh08-ds/Zephra/internal/models"
	"github.com/ayushsingh08-ds/Zephra/internal/training"
)

// ReportData is everything the report builder needs for one report
type ReportData struct {
	Location      string
	GeneratedAt   time.Time
	History       []models.Measurement
	Forecast      *models.Forecast
	Hourly        []models.HourlyForecast
	Contributions []models.FeatureContribution
	Metrics       *training.Metrics
	Narrative     string
}

// BuildMarkdown renders the report body as markdown. The narrative
// section uses the LLM text when present and a plain template fallback
// otherwise.
func BuildMarkdown(data *ReportData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Air Quality Forecast: %s\n\n", data.Location)
	fmt.Fprintf(&b, "*Generated %s*\n\n", data.GeneratedAt.Format("January 2, 2006 15:04 MST"))

	if f := data.Forecast; f != nil {
		b.WriteString("## 24-Hour Outlook\n\n")
		fmt.Fprintf(&b, "**Predicted AQI: %.0f (%s)**\n\n", f.PredictedAQI, f.Category)
		fmt.Fprintf(&b, "%s\n\n", f.HealthMessage)
		if ci := f.ConfidenceInterval; ci != nil {
			fmt.Fprintf(&b, "95%% confidence interval: %.0f to %.0f\n\n", ci.Lower, ci.Upper)
		}
	}

	narrative := data.Narrative
	if narrative == "" {
		narrative = fallbackNarrative(data)
	}
	b.WriteString("## Summary\n\n")
	b.WriteString(narrative)
	b.WriteString("\n\n")

	if latest := latestMeasurement(data.History); latest != nil {
		b.WriteString("## Current Conditions\n\n")
		b.WriteString("| Measurement | Value |\n|---|---|\n")
		for _, field := range models.MeasurementFields {
			if v, ok := latest.Value(field); ok {
				fmt.Fprintf(&b, "| %s | %.1f |\n", displayName(field), v)
			}
		}
		b.WriteString("\n")
	}

	if len(data.Hourly) > 0 {
		b.WriteString("## Hourly Forecast\n\n")
		b.WriteString("| Hour | Time | AQI | Category |\n|---|---|---|---|\n")
		for _, h := range data.Hourly {
			fmt.Fprintf(&b, "| +%dh | %s | %.0f | %s |\n",
				h.Hour, h.Timestamp.Format("Jan 2 15:04"), h.PredictedAQI, h.Category)
		}
		b.WriteString("\n")
	}

	if len(data.Contributions) > 0 {
		b.WriteString("## What Drives This Forecast\n\n")
		for _, c := range data.Contributions {
			fmt.Fprintf(&b, "- **%s** (%.1f%%)\n", displayName(c.Feature), c.ImportancePercent)
		}
		b.WriteString("\n")
	}

	if m := data.Metrics; m != nil {
		b.WriteString("## Model Quality\n\n")
		fmt.Fprintf(&b, "- Test RMSE: %.2f, MAE: %.2f, R²: %.3f\n", m.Test.RMSE, m.Test.MAE, m.Test.R2)
		fmt.Fprintf(&b, "- Category accuracy: %.0f%% exact, %.0f%% within one band\n",
			m.Category.Accuracy*100, m.Category.WithinOne*100)
		fmt.Fprintf(&b, "- Trained %s on %d samples\n", m.TrainingDate.Format("2006-01-02"), m.NSamples)
		b.WriteString("\n")
	}

	return b.String()
}

// fallbackNarrative is the template text used when no LLM is configured
func fallbackNarrative(data *ReportData) string {
	f := data.Forecast
	if f == nil {
		return "No forecast is available for this location right now."
	}
	return fmt.Sprintf(
		"Air quality in %s is expected to be %s over the next 24 hours, with a predicted AQI of %.0f. %s",
		data.Location, strings.ToLower(f.Category), f.PredictedAQI, f.HealthMessage)
}

func latestMeasurement(history []models.Measurement) *models.Measurement {
	if len(history) == 0 {
		return nil
	}
	latest := &history[0]
	for i := range history[1:] {
		if history[i+1].Timestamp.After(latest.Timestamp) {
			latest = &history[i+1]
		}
	}
	return latest
}

// displayName turns a column name like pm25_rolling_mean_6h into a
// readable label.
func displayName(field string) string {
	replacer := strings.NewReplacer("_", " ")
	name := replacer.Replace(field)
	switch field {
	case models.FieldAQI:
		return "AQI"
	case models.FieldPM25:
		return "PM2.5"
	case models.FieldPM10:
		return "PM10"
	case models.FieldNO2:
		return "NO2"
	case models.FieldO3:
		return "Ozone"
	case models.FieldSO2:
		return "SO2"
	case models.FieldCO:
		return "CO"
	case models.FieldAOD:
		return "Aerosol optical depth"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
