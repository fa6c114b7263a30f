package charts

import (
	"os"
	"path/filepath"

	"github.com/ayushsingh08-ds/Zephra/internal/logger"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
	"github.com/ayushsingh08-ds/Zephra/internal/training"
)

// ChartGenerator renders static chart images for reports
type ChartGenerator struct {
	outputDir string
	log       *logger.Logger
}

// NewChartGenerator creates a generator writing PNGs under outputDir
func NewChartGenerator(outputDir string) *ChartGenerator {
	return &ChartGenerator{
		outputDir: outputDir,
		log:       logger.GetGlobalLogger().WithComponent("charts"),
	}
}

// GenerateCharts renders every chart the report embeds and returns the
// written file paths. A chart that fails to render is skipped with a
// warning rather than failing the report.
func (cg *ChartGenerator) GenerateCharts(history []models.Measurement, forecasts []models.HourlyForecast, importance []training.FeatureImportance) ([]string, error) {
	if err := os.MkdirAll(cg.outputDir, 0755); err != nil {
		return nil, err
	}

	var files []string

	if path, err := cg.generateForecastChart(history, forecasts); err == nil {
		files = append(files, path)
	} else {
		cg.log.Warnf("forecast chart failed: %v", err)
	}

	if path, err := cg.generateImportanceChart(importance); err == nil {
		files = append(files, path)
	} else {
		cg.log.Warnf("importance chart failed: %v", err)
	}

	return files, nil
}

func (cg *ChartGenerator) chartPath(name string) string {
	return filepath.Join(cg.outputDir, name)
}
