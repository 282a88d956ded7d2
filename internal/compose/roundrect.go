package compose

import (
	"math"

	"github.com/fogleman/gg"
)

// OpKind identifies a path segment.
type OpKind int

const (
	OpMove OpKind = iota
	OpLine
	OpArc
	OpClose
)

// PathOp is one segment of a rounded rectangle outline. Arcs run
// clockwise (in screen coordinates) from A0 to A1 radians around (X, Y).
type PathOp struct {
	Kind   OpKind
	X, Y   float64
	R      float64
	A0, A1 float64
}

// RoundedRect is an axis-aligned rectangle with circular corners.
type RoundedRect struct {
	X, Y, W, H, R float64
}

// Radius returns R clamped to [0, min(W,H)/2].
func (rr RoundedRect) Radius() float64 {
	r := rr.R
	if limit := math.Min(rr.W, rr.H) / 2; r > limit {
		r = limit
	}
	if r < 0 {
		r = 0
	}
	return r
}

// Path returns the outline: four straight edges joined by quarter-circle
// arcs, starting at the top edge.
func (rr RoundedRect) Path() []PathOp {
	r := rr.Radius()
	x, y, w, h := rr.X, rr.Y, rr.W, rr.H
	return []PathOp{
		{Kind: OpMove, X: x + r, Y: y},
		{Kind: OpLine, X: x + w - r, Y: y},
		{Kind: OpArc, X: x + w - r, Y: y + r, R: r, A0: -math.Pi / 2, A1: 0},
		{Kind: OpLine, X: x + w, Y: y + h - r},
		{Kind: OpArc, X: x + w - r, Y: y + h - r, R: r, A0: 0, A1: math.Pi / 2},
		{Kind: OpLine, X: x + r, Y: y + h},
		{Kind: OpArc, X: x + r, Y: y + h - r, R: r, A0: math.Pi / 2, A1: math.Pi},
		{Kind: OpLine, X: x, Y: y + r},
		{Kind: OpArc, X: x + r, Y: y + r, R: r, A0: math.Pi, A1: 3 * math.Pi / 2},
		{Kind: OpClose},
	}
}

// trace replays the outline onto dc as a new path.
func (rr RoundedRect) trace(dc *gg.Context) {
	dc.NewSubPath()
	for _, op := range rr.Path() {
		switch op.Kind {
		case OpMove:
			dc.MoveTo(op.X, op.Y)
		case OpLine:
			dc.LineTo(op.X, op.Y)
		case OpArc:
			if op.R > 0 {
				dc.DrawArc(op.X, op.Y, op.R, op.A0, op.A1)
			}
		case OpClose:
			dc.ClosePath()
		}
	}
}
