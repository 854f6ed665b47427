// Package msg defines the UI-only tea.Msg types dispatched within the xve
// TUI. Stream events are dispatched as client event types directly.
// It has no upstream imports (client, model) to avoid import cycles.
package msg

import "time"

// -- Tool activity (translated from client tool events) --

// ToolCallStart when the service starts a named tool.
type ToolCallStart struct {
	Name string
	At   time.Time
}

// ToolCallEnd when that tool finishes.
type ToolCallEnd struct {
	Name string
	At   time.Time
}

// -- Command results --

// ExportResult from /export.
type ExportResult struct {
	Path string
	Err  error
}

// CopyResult from /copy and ctrl+y.
type CopyResult struct {
	Chars int
	Err   error
}

// ThemeSaved after the theme choice was persisted to the profile config.
type ThemeSaved struct {
	Theme string
	Err   error
}

// -- UI events --

// TickMsg for periodic timer updates.
type TickMsg struct{}
