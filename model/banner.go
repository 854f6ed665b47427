package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wxveio/wxve-chat/style"
)

// BannerModel renders the one-line header:
//
//	wxve.io · xve v0.3.0 · api.wxve.io
type BannerModel struct {
	version  string
	endpoint string
	width    int
}

// NewBanner returns a BannerModel for the given version and endpoint.
func NewBanner(version, endpoint string) BannerModel {
	return BannerModel{version: version, endpoint: endpointHost(endpoint), width: 80}
}

// SetWidth bounds the header to width cells.
func (m *BannerModel) SetWidth(w int) {
	m.width = w
}

// Init satisfies tea.Model.
func (m BannerModel) Init() tea.Cmd {
	return nil
}

// Update satisfies tea.Model. The banner is static.
func (m BannerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the header line.
func (m BannerModel) View() string {
	detail := " · xve"
	if m.version != "" {
		detail += " " + m.version
	}
	if m.endpoint != "" {
		detail += " · " + m.endpoint
	}
	const title = "wxve.io"
	return style.BannerTitle.Render(title) + style.BannerDetail.Render(truncate(detail, m.width-len(title)))
}
