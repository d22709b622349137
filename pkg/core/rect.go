package core

// Rect represents an element's or window's position and size in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the rect.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains checks if a point is within the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Border returns the rect's four edges.
func (r Rect) Border() Border {
	return Border{
		Left:   r.X,
		Right:  r.X + r.Width,
		Top:    r.Y,
		Bottom: r.Y + r.Height,
	}
}

// Border holds the four edges of a bounding box in pixels.
type Border struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Inside reports whether b lies entirely within outer.
func (b Border) Inside(outer Border) bool {
	return b.Left >= outer.Left && b.Right <= outer.Right &&
		b.Top >= outer.Top && b.Bottom <= outer.Bottom
}
