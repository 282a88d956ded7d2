// Package palette holds the ETHMumbai brand colours and the background
// options offered behind an avatar.
//
// Each background is declared once as an ordered list of hex stops; the
// CSS gradient shown in the browser and the stop list used by the
// compositor are both derived from that declaration.
package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Brand colours.
const (
	BestRed   = "#e2231a"
	BusBlack  = "#1c1c1c"
	ETHBlue   = "#3fa9f5"
	BusYellow = "#ffd600"
	BusGreen  = "#00a859"
)

// Background is a selectable backdrop.
type Background struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Angle int      `json:"angle"`
	Stops []string `json:"stops"`
}

var backgrounds = []Background{
	{ID: "best-red", Name: "BEST Red", Angle: 135, Stops: []string{BestRed, "#ff5a3d"}},
	{ID: "bus-black", Name: "Bus Black", Angle: 135, Stops: []string{BusBlack, "#2f2f2f"}},
	{ID: "eth-blue", Name: "ETH Blue", Angle: 135, Stops: []string{ETHBlue, "#2c8bd8"}},
	{ID: "sunset", Name: "Mumbai Sunset", Angle: 160, Stops: []string{BestRed, BusYellow, ETHBlue}},
}

// All returns a copy of the background table in display order.
func All() []Background {
	out := make([]Background, len(backgrounds))
	for i, bg := range backgrounds {
		bg.Stops = append([]string(nil), bg.Stops...)
		out[i] = bg
	}
	return out
}

// Default is the background selected when none is chosen.
func Default() Background {
	return All()[0]
}

// Lookup finds a background by ID.
func Lookup(id string) (Background, bool) {
	for _, bg := range All() {
		if bg.ID == id {
			return bg, true
		}
	}
	return Background{}, false
}

// Offsets spreads n stops evenly across [0,1]. A single stop sits at 0.
func Offsets(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		return out
	}
	for i := range out {
		out[i] = float64(i) / float64(n-1)
	}
	return out
}

// CSS renders the background as a CSS linear-gradient.
func (b Background) CSS() string {
	offsets := Offsets(len(b.Stops))
	parts := make([]string, len(b.Stops))
	for i, s := range b.Stops {
		parts[i] = fmt.Sprintf("%s %s%%", strings.ToLower(s), strconv.FormatFloat(offsets[i]*100, 'f', -1, 64))
	}
	return fmt.Sprintf("linear-gradient(%ddeg, %s)", b.Angle, strings.Join(parts, ", "))
}

// Gradient parses the background's stops.
func (b Background) Gradient() (Gradient, error) {
	return ParseGradient(b.Stops...)
}

// Gradient is an ordered list of one or more colour stops.
type Gradient []color.RGBA

// ParseGradient parses hex stops into a Gradient.
func ParseGradient(stops ...string) (Gradient, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("gradient needs at least one stop")
	}
	g := make(Gradient, len(stops))
	for i, s := range stops {
		c, err := ParseHex(s)
		if err != nil {
			return nil, err
		}
		g[i] = c
	}
	return g, nil
}

// ParseHex parses "#rgb" or "#rrggbb" (the "#" is optional) into an
// opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}

	r, err1 := strconv.ParseUint(v[0:2], 16, 8)
	g, err2 := strconv.ParseUint(v[2:4], 16, 8)
	b, err3 := strconv.ParseUint(v[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}

	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}, nil
}

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
