package reports

import (
	"fmt"
	"strings"
)

const pageStyle = `
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 960px;
       margin: 0 auto; padding: 24px; color: #212529; background: #f8f9fa; }
h1, h2 { color: #343a40; }
table { border-collapse: collapse; margin: 12px 0; background: #fff; }
th, td { border: 1px solid #dee2e6; padding: 6px 12px; text-align: left; }
th { background: #e9ecef; }
.charts img { max-width: 100%; margin: 12px 0; border: 1px solid #dee2e6; background: #fff; }
.charts a { display: inline-block; margin: 8px 0; }
`

// wrapHTML wraps the rendered body in a complete document and appends
// the chart section. PNG charts are embedded inline; HTML charts are
// linked so they open interactive.
func wrapHTML(location, body string, chartNames []string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Air Quality Forecast: %s</title>\n", location)
	fmt.Fprintf(&b, "<style>%s</style>\n", pageStyle)
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)

	if len(chartNames) > 0 {
		b.WriteString("<div class=\"charts\">\n<h2>Charts</h2>\n")
		for _, name := range chartNames {
			if strings.HasSuffix(name, ".html") {
				fmt.Fprintf(&b, "<a href=\"%s\">Interactive AQI trend</a>\n", name)
			} else {
				fmt.Fprintf(&b, "<img src=\"%s\" alt=\"%s\">\n", name, name)
			}
		}
		b.WriteString("</div>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
