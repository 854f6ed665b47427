package markdown

import (
	"fmt"
	"html/template"
	"strings"
)

// ChartSandbox is the only permission set granted to embedded charts:
// scripts run inside the frame's own opaque origin and never reach the
// parent document.
const ChartSandbox = "allow-scripts allow-fullscreen"

var chartTmpl = template.Must(template.New("chart").Parse(
	`<div class="chart-container"><iframe title="{{.Title}}" sandbox="{{.Sandbox}}" allowfullscreen srcdoc="{{.Doc}}"></iframe></div>`,
))

// ChartTitle is the accessible title of a chart embed.
func ChartTitle(symbol string) string {
	return fmt.Sprintf("%s Wave Analysis", symbol)
}

// EmbedChart wraps server-produced chart HTML in a sandboxed iframe. The
// document is passed through srcdoc, attribute-escaped.
func EmbedChart(symbol, doc string) template.HTML {
	var b strings.Builder
	err := chartTmpl.Execute(&b, struct{ Title, Sandbox, Doc string }{
		Title:   ChartTitle(symbol),
		Sandbox: ChartSandbox,
		Doc:     doc,
	})
	if err != nil {
		return ""
	}
	return template.HTML(b.String())
}
