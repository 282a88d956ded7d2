package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
	"github.com/cristianadrielbraun/avatarstudio/web/components"
)

func TestHomePageRendersSwatches(t *testing.T) {
	props := HomeProps{
		Title:    "Studio",
		Caption:  "ETHMumbai Style",
		Default:  "eth-blue",
		Swatches: components.Swatches(palette.All(), "eth-blue"),
		Pills:    components.BrandPills(),
	}

	var buf bytes.Buffer
	require.NoError(t, HomePage(props).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<title>Studio</title>")
	assert.Contains(t, html, `data-default-background="eth-blue"`)
	assert.Contains(t, html, "background: linear-gradient(135deg, #3fa9f5 0%, #2c8bd8 100%)")
	assert.Contains(t, html, "Bus Green #00a859")
	assert.Contains(t, html, `src="/api/qr?background=eth-blue"`)
	assert.Contains(t, html, `data-background="sunset"`)
}

func TestHomePageEscapesText(t *testing.T) {
	var buf bytes.Buffer
	err := HomePage(HomeProps{Title: `<b>"Studio"</b>`, Caption: "A & B", RepoURL: "javascript:alert(1)"}).
		Render(context.Background(), &buf)
	require.NoError(t, err)
	html := buf.String()

	assert.Contains(t, html, "<title>&lt;b&gt;&#34;Studio&#34;&lt;/b&gt;</title>")
	assert.Contains(t, html, "A &amp; B")
	assert.NotContains(t, html, "javascript:alert")
}

func TestButtonClassOverridesBackground(t *testing.T) {
	got := buttonClass("bg-[#e2231a]", "disabled:opacity-50")
	assert.Contains(t, got, "rounded-full")
	assert.Contains(t, got, "bg-[#e2231a]")
	assert.Contains(t, got, "disabled:opacity-50")
	assert.Equal(t, "BEST Red #e2231a, Bus Black #1c1c1c", paletteLine(components.BrandPills()[:2]))
}

func TestSwatchClassMergesSelectedBorder(t *testing.T) {
	assert.NotContains(t, SwatchClass(false), "border-zinc-900")

	selected := SwatchClass(true)
	assert.Contains(t, selected, "border-zinc-900")
	assert.NotContains(t, selected, "border-transparent")
}
