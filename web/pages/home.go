package pages

import (
	"net/url"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/avatarstudio/web/components"
)

// HomeProps is the data rendered on the studio page.
type HomeProps struct {
	Title    string
	Caption  string
	RepoURL  string
	Filename string
	Default  string
	Swatches []components.Swatch
	Pills    []components.Pill
}

// SwatchClass merges the base swatch classes with the selected state.
func SwatchClass(selected bool) string {
	base := "h-14 rounded-xl border-2 border-transparent transition hover:scale-[1.02]"
	if selected {
		return twmerge.Merge(base, "border-zinc-900 ring-2 ring-offset-2 ring-zinc-900")
	}
	return base
}

func buttonClass(extra ...string) string {
	return twmerge.Merge(append([]string{"rounded-full px-5 py-2 font-semibold text-white"}, extra...)...)
}

// Swatch and pill colours come from the static palette table.
func swatchStyle(s components.Swatch) templ.SafeCSS {
	return templ.SafeCSS("background: " + s.CSS)
}

func pillStyle(p components.Pill) templ.SafeCSS {
	return templ.SafeCSS("background: " + p.Hex)
}

func paletteLine(pills []components.Pill) string {
	parts := make([]string, len(pills))
	for i, p := range pills {
		parts[i] = p.Label + " " + p.Hex
	}
	return strings.Join(parts, ", ")
}

func qrSrc(background string) string {
	return "/api/qr?background=" + url.QueryEscape(background)
}
