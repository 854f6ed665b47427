package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxveio/wxve-chat/chat"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func sample() []chat.Message {
	return []chat.Message{
		{ID: 0, Role: chat.RoleUser, Content: "<b>wave</b> count for AAPL?"},
		{ID: 1, Role: chat.RoleAssistant, Content: "AAPL is in **wave 3**.", Charts: []chat.Chart{
			{Symbol: "AAPL", HTML: "<script>plot()</script>"},
		}},
		{ID: 2, Role: chat.RoleUser, Content: "and MSFT?"},
		{ID: 3, Role: chat.RoleAssistant, Content: "Error: rate limited", Failed: true},
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sample(), Options{Now: fixedNow}))
	out := buf.String()

	assert.Contains(t, out, "<title>Xve conversation</title>")
	assert.Contains(t, out, "Exported Sat, 01 Mar 2025 12:00:00 UTC")
	assert.Contains(t, out, `<div class="message user">&lt;b&gt;wave&lt;/b&gt; count for AAPL?</div>`)
	assert.Contains(t, out, "<strong>wave 3</strong>")
	assert.Contains(t, out, `sandbox="allow-scripts allow-fullscreen"`)
	assert.Contains(t, out, `title="AAPL Wave Analysis"`)
	assert.Contains(t, out, `<div class="message error">`)
	assert.Equal(t, 0, strings.Count(out, "<script>"))
	assert.NotContains(t, out, `class="dark"`)
}

func TestWriteHTMLIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteHTML(&a, sample(), Options{Now: fixedNow, Dark: true}))
	require.NoError(t, WriteHTML(&b, sample(), Options{Now: fixedNow, Dark: true}))
	require.Equal(t, a.String(), b.String())
	require.Contains(t, a.String(), `<body class="dark">`)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chat.html")
	require.NoError(t, WriteFile(path, sample(), Options{Now: fixedNow}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
}
