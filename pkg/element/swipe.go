package element

import (
	"time"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/gesture"
	"github.com/devicelab-dev/pagekit/pkg/logger"
)

// Swipe defaults. The per-attempt presence timeout is short on purpose: each
// coarse round only needs to notice whether the last swipe brought the
// element in, not wait out the full element budget.
const (
	DefaultSwipeTimeout  = 3 * time.Second
	DefaultMaxRound      = 10
	DefaultMaxAdjustment = 2
	DefaultMinDistance   = 100
	DefaultSwipeDuration = 1000
)

type swipeParams struct {
	offset        gesture.Offset
	area          gesture.Area
	timeout       time.Duration
	maxRound      int
	maxAdjustment int
	minDistance   int
	durationMs    int
	flick         bool
}

func defaultSwipeParams() swipeParams {
	return swipeParams{
		offset:        gesture.Up,
		area:          gesture.FullArea,
		timeout:       DefaultSwipeTimeout,
		maxRound:      DefaultMaxRound,
		maxAdjustment: DefaultMaxAdjustment,
		minDistance:   DefaultMinDistance,
		durationMs:    DefaultSwipeDuration,
	}
}

// SwipeOption configures a swipe-into-view operation.
type SwipeOption func(*swipeParams)

// Toward sets the repeated scroll gesture. Defaults to gesture.Up.
func Toward(o gesture.Offset) SwipeOption {
	return func(p *swipeParams) { p.offset = o }
}

// WithinArea sets the containment area the element must end up inside.
// Defaults to the full window.
func WithinArea(a gesture.Area) SwipeOption {
	return func(p *swipeParams) { p.area = a }
}

// SwipeTimeout sets the per-round presence check budget.
func SwipeTimeout(d time.Duration) SwipeOption {
	return func(p *swipeParams) { p.timeout = d }
}

// MaxRound caps the coarse scroll rounds. Zero disables scrolling.
func MaxRound(n int) SwipeOption {
	return func(p *swipeParams) { p.maxRound = n }
}

// MaxAdjustment caps the fine correction rounds. Zero disables corrections.
func MaxAdjustment(n int) SwipeOption {
	return func(p *swipeParams) { p.maxAdjustment = n }
}

// MinDistance sets the minimum correction swipe length in pixels. Corrections
// shorter than this are stretched, since very short swipes register as taps.
func MinDistance(px int) SwipeOption {
	return func(p *swipeParams) { p.minDistance = px }
}

// SwipeDuration sets the gesture duration in milliseconds. Ignored by FlickBy.
func SwipeDuration(ms int) SwipeOption {
	return func(p *swipeParams) { p.durationMs = ms }
}

// SwipeResult reports what a swipe-into-view operation did.
type SwipeResult struct {
	SwipeRounds  int
	AdjustRounds int
	Viewable     bool
	Aligned      bool
}

// SwipeBy scrolls until the element is viewable, then issues fine correction
// swipes until its border lies inside the target area. The base gesture and
// the area resolve against the current window rect at call time.
func (e *Element) SwipeBy(opts ...SwipeOption) (*SwipeResult, error) {
	return e.swipeInto(false, opts...)
}

// FlickBy is SwipeBy with fast, duration-less gestures.
func (e *Element) FlickBy(opts ...SwipeOption) (*SwipeResult, error) {
	return e.swipeInto(true, opts...)
}

func (e *Element) swipeInto(flick bool, opts ...SwipeOption) (*SwipeResult, error) {
	p := defaultSwipeParams()
	for _, o := range opts {
		o(&p)
	}
	p.flick = flick

	s, err := e.bind()
	if err != nil {
		return nil, err
	}

	window, err := s.WindowRect()
	if err != nil {
		return nil, err
	}
	area, err := gesture.ResolveArea(p.area, window)
	if err != nil {
		return nil, err
	}
	base, err := gesture.ResolveOffset(p.offset, area)
	if err != nil {
		return nil, err
	}

	res := &SwipeResult{}
	if err := e.swipeIntoViewable(s, base, p, res); err != nil {
		return res, err
	}
	if !res.Viewable {
		// Give-up is a reported outcome. Alignment needs a measurable
		// border, so there is nothing left to adjust.
		return res, nil
	}
	if err := e.adjustIntoArea(s, base, area, p, res); err != nil {
		return res, err
	}
	return res, nil
}

// swipeIntoViewable repeats the base gesture until the element is present and
// displayed. Each round re-checks with the short swipe timeout. Running out
// of rounds leaves Viewable false; only driver errors are returned.
func (e *Element) swipeIntoViewable(s core.Session, base gesture.Vector, p swipeParams, res *SwipeResult) error {
	for {
		viewable, err := e.isViewable(p.timeout)
		if err != nil {
			return err
		}
		if viewable {
			res.Viewable = true
			return nil
		}
		if res.SwipeRounds >= p.maxRound {
			logger.Warn("[swipe] %s: not viewable after %d rounds, giving up", e.Remark(), res.SwipeRounds)
			return nil
		}
		if err := e.gestureOnce(s, base, p); err != nil {
			return err
		}
		res.SwipeRounds++
		logger.Debug("[swipe] %s: round %d (%d,%d)->(%d,%d)",
			e.Remark(), res.SwipeRounds, base.StartX, base.StartY, base.EndX, base.EndY)
	}
}

// adjustIntoArea issues correction swipes until the element's border lies
// inside the area. Alignment is checked before each correction, so an element
// already inside costs zero rounds. The round budget is checked only after a
// needed correction is computed.
func (e *Element) adjustIntoArea(s core.Session, base gesture.Vector, area core.Rect, p swipeParams, res *SwipeResult) error {
	for {
		border, err := e.Border()
		if err != nil {
			return err
		}
		if border.Inside(area.Border()) {
			res.Aligned = true
			return nil
		}
		corr, ok := gesture.AdjustedVector(base, area, border, p.minDistance)
		if !ok {
			// Unresolvable geometry, e.g. element larger than the area.
			return nil
		}
		if res.AdjustRounds >= p.maxAdjustment {
			return nil
		}
		if err := e.gestureOnce(s, corr, p); err != nil {
			return err
		}
		res.AdjustRounds++
		logger.Debug("[adjust] %s: round %d (%d,%d)->(%d,%d)",
			e.Remark(), res.AdjustRounds, corr.StartX, corr.StartY, corr.EndX, corr.EndY)
	}
}

func (e *Element) gestureOnce(s core.Session, v gesture.Vector, p swipeParams) error {
	if p.flick || p.durationMs <= 0 {
		return s.Flick(v.StartX, v.StartY, v.EndX, v.EndY)
	}
	return s.Swipe(v.StartX, v.StartY, v.EndX, v.EndY, p.durationMs)
}

// isViewable reports whether the element is present within the budget and
// currently displayed. Timeouts and staleness read as not viewable.
func (e *Element) isViewable(timeout time.Duration) (bool, error) {
	res, err := e.WaitFor(Present, Within(timeout), Reraise(false))
	if err != nil {
		return false, err
	}
	if !res.Satisfied {
		return false, nil
	}
	d, err := res.Handle.IsDisplayed()
	if err != nil {
		if core.IsReferenceError(err) {
			return false, nil
		}
		return false, err
	}
	return d, nil
}
