// Package export writes a conversation as a standalone HTML page.
package export

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/wxveio/wxve-chat/chat"
	"github.com/wxveio/wxve-chat/markdown"
)

// DefaultName is the file written by /export without an argument.
const DefaultName = "xve-transcript.html"

type entry struct {
	Class  string
	Body   template.HTML
	Charts []template.HTML
}

type page struct {
	Title     string
	Generated string
	Dark      bool
	Entries   []entry
}

var tmpl = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #111827; background: #ffffff; }
body.dark { color: #e5e7eb; background: #111827; }
.logo { font-weight: 700; font-size: 1.5rem; margin-bottom: .25rem; }
.meta { color: #6b7280; font-size: .85rem; margin-bottom: 2rem; }
.message { padding: .75rem 1rem; margin: 1rem 0; border-left: 3px solid #14b8a6; }
.message.user { border-left-color: #38bdf8; white-space: pre-wrap; }
.message.error { border-left-color: #ef4444; }
.chart-container iframe { width: 100%; height: 480px; border: 0; }
</style>
</head>
<body{{if .Dark}} class="dark"{{end}}>
<div class="logo">wxve.io</div>
<div class="meta">Exported {{.Generated}}</div>
<div class="messages">
{{- range .Entries}}
<div class="{{.Class}}">{{.Body}}{{range .Charts}}{{.}}{{end}}</div>
{{- end}}
</div>
</body>
</html>
`))

// Options controls page rendering.
type Options struct {
	Title string
	Dark  bool
	Now   func() time.Time
}

// WriteHTML renders msgs as a standalone page. User text is escaped,
// assistant markdown is converted and sanitized, and charts are embedded
// only inside sandboxed iframes.
func WriteHTML(w io.Writer, msgs []chat.Message, opts Options) error {
	if opts.Title == "" {
		opts.Title = "Xve conversation"
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	p := page{
		Title:     opts.Title,
		Generated: now().UTC().Format(time.RFC1123),
		Dark:      opts.Dark,
		Entries:   make([]entry, 0, len(msgs)),
	}
	for _, m := range msgs {
		p.Entries = append(p.Entries, toEntry(m))
	}
	if err := tmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}
	return nil
}

// WriteFile writes the transcript to path, creating parent directories.
func WriteFile(path string, msgs []chat.Message, opts Options) error {
	if path == "" {
		path = DefaultName
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteHTML(f, msgs, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toEntry(m chat.Message) entry {
	if m.Role == chat.RoleUser {
		return entry{
			Class: "message user",
			Body:  template.HTML(template.HTMLEscapeString(m.Content)),
		}
	}
	e := entry{Class: "message", Body: markdown.ToHTML(m.Content)}
	if m.Failed {
		e.Class = "message error"
	}
	for _, c := range m.Charts {
		e.Charts = append(e.Charts, markdown.EmbedChart(c.Symbol, c.HTML))
	}
	return e
}
