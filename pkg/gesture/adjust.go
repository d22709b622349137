package gesture

import "github.com/devicelab-dev/pagekit/pkg/core"

// AdjustedVector computes the next corrective swipe for aligning an element's
// border inside the target area. It measures the delta between each of the
// element's four edges and the area's edges, clamps out-of-bound deltas to at
// least minDistance (touch drivers misread very short swipes as taps), and
// maps the set of edges needing correction to a single (dx, dy) correction.
//
// The returned bool is false when no correction is needed. Border pairs that
// both need correction on the same axis (element wider or taller than the
// area) cannot be resolved by a single swipe and also report false.
func AdjustedVector(v Vector, area core.Rect, element core.Border, minDistance int) (Vector, bool) {
	dist := func(delta int) int {
		d := delta
		if d < 0 {
			d = -d
		}
		if d < minDistance {
			d = minDistance
		}
		if delta < 0 {
			return -d
		}
		return d
	}

	ab := area.Border()
	deltaLeft := ab.Left - element.Left
	deltaRight := ab.Right - element.Right
	deltaTop := ab.Top - element.Top
	deltaBottom := ab.Bottom - element.Bottom

	// An edge needs correction when the element sticks out past it.
	need := [4]bool{deltaLeft > 0, deltaRight < 0, deltaTop > 0, deltaBottom < 0}

	var dx, dy int
	switch need {
	case [4]bool{true, false, true, false}:
		dx, dy = dist(deltaLeft), dist(deltaTop)
	case [4]bool{false, false, true, false}:
		dx, dy = 0, dist(deltaTop)
	case [4]bool{false, true, true, false}:
		dx, dy = dist(deltaRight), dist(deltaTop)
	case [4]bool{true, false, false, false}:
		dx, dy = dist(deltaLeft), 0
	case [4]bool{false, true, false, false}:
		dx, dy = dist(deltaRight), 0
	case [4]bool{true, false, false, true}:
		dx, dy = dist(deltaLeft), dist(deltaBottom)
	case [4]bool{false, false, false, true}:
		dx, dy = 0, dist(deltaBottom)
	case [4]bool{false, true, false, true}:
		dx, dy = dist(deltaRight), dist(deltaBottom)
	default:
		// Either all edges are inside, or an unresolvable same-axis pair.
		return Vector{}, false
	}

	return Vector{
		StartX: v.StartX,
		StartY: v.StartY,
		EndX:   v.StartX + dx,
		EndY:   v.StartY + dy,
	}, true
}
