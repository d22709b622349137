// Package gesture provides the coordinate model and border-adjustment
// geometry for swipe and flick operations: offsets and areas expressed as
// absolute pixels or fractions of a reference rect, and the iterative
// correction step that nudges a gesture until an element's bounding box
// falls inside a target area.
package gesture

import (
	"fmt"

	"github.com/devicelab-dev/pagekit/pkg/core"
)

// Offset describes a single gesture's start and end touch points. Values are
// either all absolute pixels or all fractions in [0, 1] of a reference area,
// resolved to pixels by ResolveOffset before reaching the driver.
type Offset struct {
	StartX, StartY, EndX, EndY float64

	relative bool
}

// AbsOffset builds an offset in absolute pixels.
func AbsOffset(startX, startY, endX, endY int) Offset {
	return Offset{
		StartX: float64(startX), StartY: float64(startY),
		EndX: float64(endX), EndY: float64(endY),
	}
}

// RelOffset builds an offset as fractions of a reference area's dimensions.
func RelOffset(startX, startY, endX, endY float64) Offset {
	return Offset{StartX: startX, StartY: startY, EndX: endX, EndY: endY, relative: true}
}

// Relative reports whether the offset is expressed as fractions.
func (o Offset) Relative() bool { return o.relative }

func (o Offset) validate() error {
	if !o.relative {
		return nil
	}
	for _, v := range []float64{o.StartX, o.StartY, o.EndX, o.EndY} {
		if v < 0 || v > 1 {
			return fmt.Errorf("relative offset value %v outside [0.0, 1.0]", v)
		}
	}
	return nil
}

// Area describes a containment rectangle, absolute or as fractions of the
// current window rect.
type Area struct {
	X, Y, Width, Height float64

	relative bool
}

// AbsArea builds an area in absolute pixels.
func AbsArea(x, y, width, height int) Area {
	return Area{X: float64(x), Y: float64(y), Width: float64(width), Height: float64(height)}
}

// RelArea builds an area as fractions of the window rect.
func RelArea(x, y, width, height float64) Area {
	return Area{X: x, Y: y, Width: width, Height: height, relative: true}
}

// Relative reports whether the area is expressed as fractions.
func (a Area) Relative() bool { return a.relative }

func (a Area) validate() error {
	if !a.relative {
		return nil
	}
	for _, v := range []float64{a.X, a.Y, a.Width, a.Height} {
		if v < 0 || v > 1 {
			return fmt.Errorf("relative area value %v outside [0.0, 1.0]", v)
		}
	}
	return nil
}

// Default directional offsets, as fractions of the gesture area.
var (
	Up         = RelOffset(0.5, 0.75, 0.5, 0.25)
	Down       = RelOffset(0.5, 0.25, 0.5, 0.75)
	Left       = RelOffset(0.75, 0.5, 0.25, 0.5)
	Right      = RelOffset(0.25, 0.5, 0.75, 0.5)
	UpperLeft  = RelOffset(0.75, 0.75, 0.25, 0.25)
	UpperRight = RelOffset(0.25, 0.75, 0.75, 0.25)
	LowerLeft  = RelOffset(0.75, 0.25, 0.25, 0.75)
	LowerRight = RelOffset(0.25, 0.25, 0.75, 0.75)
)

// FullArea covers the whole window.
var FullArea = RelArea(0.0, 0.0, 1.0, 1.0)

// Vector is a fully resolved gesture in absolute pixels.
type Vector struct {
	StartX, StartY, EndX, EndY int
}

// Delta returns the vector's displacement.
func (v Vector) Delta() (dx, dy int) {
	return v.EndX - v.StartX, v.EndY - v.StartY
}

// ResolveArea converts an area to absolute pixels. Fractional values scale
// against the window rect: x = wx + ww*fx, width = ww*fw, and so on.
func ResolveArea(a Area, window core.Rect) (core.Rect, error) {
	if err := a.validate(); err != nil {
		return core.Rect{}, err
	}
	if !a.relative {
		return core.Rect{
			X: int(a.X), Y: int(a.Y),
			Width: int(a.Width), Height: int(a.Height),
		}, nil
	}
	return core.Rect{
		X:      window.X + int(float64(window.Width)*a.X),
		Y:      window.Y + int(float64(window.Height)*a.Y),
		Width:  int(float64(window.Width) * a.Width),
		Height: int(float64(window.Height) * a.Height),
	}, nil
}

// ResolveOffset converts an offset to an absolute gesture vector. Fractional
// values scale against the resolved area rect.
func ResolveOffset(o Offset, area core.Rect) (Vector, error) {
	if err := o.validate(); err != nil {
		return Vector{}, err
	}
	if !o.relative {
		return Vector{
			StartX: int(o.StartX), StartY: int(o.StartY),
			EndX: int(o.EndX), EndY: int(o.EndY),
		}, nil
	}
	return Vector{
		StartX: area.X + int(float64(area.Width)*o.StartX),
		StartY: area.Y + int(float64(area.Height)*o.StartY),
		EndX:   area.X + int(float64(area.Width)*o.EndX),
		EndY:   area.Y + int(float64(area.Height)*o.EndY),
	}, nil
}
