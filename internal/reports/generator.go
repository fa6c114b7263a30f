package reports

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/ayushsingh08-ds/Zephra/internal/charts"
	"github.com/ayushsingh08-ds/Zephra/internal/llm"
	"github.com/ayushsingh08-ds/Zephra/internal/logger"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
	"github.com/ayushsingh08-ds/Zephra/internal/storage"
	"github.com/ayushsingh08-ds/Zephra/internal/training"
)

// Generator assembles and stores complete forecast reports: a markdown
// body rendered to HTML, static chart images, and an interactive trend
// page, all placed under one report folder in storage.
type Generator struct {
	store    storage.Client
	narrator *llm.OpenAIClient
	workDir  string
	log      *logger.Logger
}

// NewGenerator creates a report generator. narrator may be nil, in which
// case reports carry the template narrative.
func NewGenerator(store storage.Client, narrator *llm.OpenAIClient, workDir string) *Generator {
	return &Generator{
		store:    store,
		narrator: narrator,
		workDir:  workDir,
		log:      logger.GetGlobalLogger().WithComponent("reports"),
	}
}

// Generate builds the report and stores it under folder. It returns the
// storage path of the main HTML document. Narrative and chart failures
// degrade the report rather than failing it.
func (g *Generator) Generate(ctx context.Context, folder string, data *ReportData) (string, error) {
	if data.Narrative == "" && g.narrator != nil {
		narrative, err := g.narrator.GenerateNarrative(ctx, data.Location, data.Forecast, data.History)
		if err != nil {
			g.log.Warnf("narrative generation failed, using template text: %v", err)
		} else {
			data.Narrative = narrative
		}
	}

	md := BuildMarkdown(data)
	body := markdownToHTML(md)

	chartDir := filepath.Join(g.workDir, "charts")
	chartGen := charts.NewChartGenerator(chartDir)
	chartFiles, err := chartGen.GenerateCharts(data.History, data.Hourly, rankingFromContributions(data.Contributions))
	if err != nil {
		g.log.Warnf("chart generation failed: %v", err)
	}

	var chartNames []string
	for _, file := range chartFiles {
		name := filepath.Base(file)
		content, err := os.ReadFile(file)
		if err != nil {
			g.log.Warnf("reading chart file %s failed: %v", file, err)
			continue
		}
		if err := g.store.StoreFile(ctx, path.Join(folder, name), content); err != nil {
			return "", fmt.Errorf("store chart %s: %w", name, err)
		}
		chartNames = append(chartNames, name)
	}

	if trend, err := charts.TrendHTML(data.History, data.Hourly); err == nil {
		if err := g.store.StoreFile(ctx, path.Join(folder, "trend.html"), []byte(trend)); err != nil {
			return "", fmt.Errorf("store trend page: %w", err)
		}
		chartNames = append(chartNames, "trend.html")
	} else {
		g.log.Warnf("trend chart failed: %v", err)
	}

	full := wrapHTML(data.Location, body, chartNames)
	reportPath := path.Join(folder, "report.html")
	if err := g.store.StoreFile(ctx, reportPath, []byte(full)); err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}

	if err := g.store.StoreFile(ctx, path.Join(folder, "report.md"), []byte(md)); err != nil {
		return "", fmt.Errorf("store markdown source: %w", err)
	}

	g.log.Info("report generated", map[string]interface{}{
		"path":   reportPath,
		"charts": len(chartNames),
	})
	return reportPath, nil
}

func markdownToHTML(md string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.Tables
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	return string(markdown.Render(doc, renderer))
}

func rankingFromContributions(contributions []models.FeatureContribution) []training.FeatureImportance {
	out := make([]training.FeatureImportance, 0, len(contributions))
	for _, c := range contributions {
		out = append(out, training.FeatureImportance{Feature: c.Feature, Importance: c.Importance})
	}
	return out
}
