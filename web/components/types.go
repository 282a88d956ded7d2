package components

import (
	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
)

// Swatch is a background option as rendered on the page.
type Swatch struct {
	ID       string
	Name     string
	CSS      string
	Selected bool
}

// Pill is a brand colour chip.
type Pill struct {
	Label string
	Hex   string
}

// Swatches builds the swatch row from the background table.
func Swatches(all []palette.Background, selected string) []Swatch {
	out := make([]Swatch, len(all))
	for i, bg := range all {
		out[i] = Swatch{ID: bg.ID, Name: bg.Name, CSS: bg.CSS(), Selected: bg.ID == selected}
	}
	return out
}

// BrandPills lists the ETHMumbai palette.
func BrandPills() []Pill {
	return []Pill{
		{Label: "BEST Red", Hex: palette.BestRed},
		{Label: "Bus Black", Hex: palette.BusBlack},
		{Label: "ETH Blue", Hex: palette.ETHBlue},
		{Label: "Bus Yellow", Hex: palette.BusYellow},
		{Label: "Bus Green", Hex: palette.BusGreen},
	}
}
