package reports

import (
	"context"
	"strings"
	"testing"

	"github.com/ayushsingh08-ds/Zephra/internal/storage"
)

func TestGenerateStoresReport(t *testing.T) {
	client, err := storage.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	gen := NewGenerator(client, nil, t.TempDir())
	ctx := context.Background()

	reportPath, err := gen.Generate(ctx, "reports/2025-10-03", sampleReportData())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reportPath != "reports/2025-10-03/report.html" {
		t.Errorf("unexpected report path %s", reportPath)
	}

	html, err := client.GetFile(ctx, reportPath)
	if err != nil {
		t.Fatalf("report not stored: %v", err)
	}
	if !strings.Contains(string(html), "Air Quality Forecast: New York") {
		t.Error("report body missing forecast heading")
	}

	md, err := client.GetFile(ctx, "reports/2025-10-03/report.md")
	if err != nil {
		t.Fatalf("markdown source not stored: %v", err)
	}
	if !strings.Contains(string(md), "## 24-Hour Outlook") {
		t.Error("markdown source incomplete")
	}

	trend, err := client.GetFile(ctx, "reports/2025-10-03/trend.html")
	if err != nil {
		t.Fatalf("trend page not stored: %v", err)
	}
	if !strings.Contains(string(trend), "echarts") {
		t.Error("trend page does not look like an echarts document")
	}
}
