package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the wrap width used when none is configured.
const DefaultWidth = 100

type rendererKey struct {
	style string
	width int
}

var (
	mu        sync.Mutex
	renderers = map[rendererKey]*glamour.TermRenderer{}
	current   = "dark"
)

// SetStyle selects the glamour standard style ("dark", "light", ...) used by
// RenderWidth. An empty name selects auto-detection.
func SetStyle(name string) {
	mu.Lock()
	current = name
	mu.Unlock()
}

// GlamourStyle maps a UI theme name to a glamour standard style.
func GlamourStyle(theme string) string {
	if theme == "light" {
		return "light"
	}
	return "dark"
}

// RenderWidth renders md as styled ANSI wrapped at width, falling back to
// the raw text when no renderer is available. Renderers are cached per style
// and width; glamour construction is the expensive part.
func RenderWidth(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r := renderer(width)
	if r == nil {
		return md
	}
	mu.Lock()
	out, err := r.Render(md)
	mu.Unlock()
	if err != nil {
		return md
	}
	// glamour adds surrounding newlines; trim for inline display.
	return strings.Trim(out, "\n")
}

func renderer(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	mu.Lock()
	defer mu.Unlock()

	key := rendererKey{style: current, width: width}
	if r, ok := renderers[key]; ok {
		return r
	}
	styleOpt := glamour.WithAutoStyle()
	if current != "" {
		styleOpt = glamour.WithStandardStyle(current)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	renderers[key] = r
	return r
}
