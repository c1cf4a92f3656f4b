package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBasicMarkdown(t *testing.T) {
	html, err := Render("## State Roundup\n\nBills are *moving*.")
	require.NoError(t, err)

	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "State Roundup")
	assert.Contains(t, html, "<em>moving</em>")
}

func TestRenderStripsScript(t *testing.T) {
	html, err := Render("hello\n\n<script>alert(1)</script>")
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "alert(1)")
	assert.Contains(t, html, "hello")
}

func TestRenderGFMTable(t *testing.T) {
	html, err := Render("| State | Bills |\n| --- | --- |\n| CA | 12 |")
	require.NoError(t, err)

	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "CA")
}

func TestRenderKeepsSafeLinks(t *testing.T) {
	html, err := Render("[tracker](https://example.com/bills)")
	require.NoError(t, err)

	assert.Contains(t, html, `href="https://example.com/bills"`)
}
