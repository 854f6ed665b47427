package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTMLIsIdempotent(t *testing.T) {
	src := "# Wave count\n\nAAPL is in **wave 3**.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	first := ToHTML(src)
	second := ToHTML(src)
	require.Equal(t, first, second)
	assert.Contains(t, string(first), "<strong>wave 3</strong>")
	assert.Contains(t, string(first), "<table>")
}

func TestToHTMLStripsScripts(t *testing.T) {
	out := string(ToHTML("hi <script>alert(1)</script> <img src=x onerror=alert(1)> [x](javascript:alert(1))"))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "javascript:")
}

func TestEmbedChartSandboxesDocument(t *testing.T) {
	out := string(EmbedChart("AAPL", `<script>draw("x")</script>`))
	assert.Contains(t, out, `sandbox="allow-scripts allow-fullscreen"`)
	assert.Contains(t, out, `title="AAPL Wave Analysis"`)
	assert.Contains(t, out, `srcdoc="&lt;script&gt;draw(&#34;x&#34;)&lt;/script&gt;"`)
	assert.Equal(t, 1, strings.Count(out, "<iframe"))
}

func TestEmbedChartEscapesSymbol(t *testing.T) {
	out := string(EmbedChart(`"><b>`, ""))
	assert.NotContains(t, out, `"><b>`)
}

func TestEmbedChartEscapesAttributeText(t *testing.T) {
	out := string(EmbedChart("BRK+B", `<p class='x'>a & b</p>`))
	assert.Contains(t, out, `title="BRK&#43;B Wave Analysis"`)
	assert.Contains(t, out, `srcdoc="&lt;p class=&#39;x&#39;&gt;a &amp; b&lt;/p&gt;"`)
}

func TestRenderFallsBackOnBlank(t *testing.T) {
	require.Equal(t, "  ", RenderWidth("  ", DefaultWidth))
}

func TestRenderIsStable(t *testing.T) {
	SetStyle("dark")
	a := RenderWidth("**bold** text", 40)
	b := RenderWidth("**bold** text", 40)
	require.Equal(t, a, b)
	require.Contains(t, a, "bold")
}

func TestGlamourStyle(t *testing.T) {
	require.Equal(t, "light", GlamourStyle("light"))
	require.Equal(t, "dark", GlamourStyle("catppuccin"))
}
