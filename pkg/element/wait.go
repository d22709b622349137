package element

import (
	"errors"
	"fmt"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/logger"
)

// Resolution is the outcome of a wait operation. Callers must disambiguate a
// resolved handle from satisfaction-by-absence: Handle is non-nil when the
// target state was observed on a live element, Absent is true when the wait
// was satisfied by the element not being found.
type Resolution struct {
	Handle    core.Handle
	Absent    bool
	Satisfied bool
	Elapsed   time.Duration
}

// waitParams carries the per-call overrides of one wait.
type waitParams struct {
	timeout         *time.Duration
	reraise         *bool
	presentRequired bool
}

// WaitOption adjusts a single wait call.
type WaitOption func(*waitParams)

// Within overrides the wait budget for this call only.
func Within(d time.Duration) WaitOption {
	return func(w *waitParams) { w.timeout = &d }
}

// Reraise overrides the timeout policy for this call only.
func Reraise(b bool) WaitOption {
	return func(w *waitParams) { w.reraise = &b }
}

// AllowAbsent makes absence an acceptable terminal state for invisible and
// unclickable waits. It has no effect on other states.
func AllowAbsent() WaitOption {
	return func(w *waitParams) { w.presentRequired = false }
}

// WaitFor resolves the element into the target state within the configured
// timeout, consulting the cached handle first and falling back to fresh
// locator queries on staleness or a cache miss.
//
// On timeout the effective reraise policy (call > element > process) decides
// the outcome: a *core.TimeoutError, or an unsatisfied Resolution with a nil
// error. Driver errors other than not-found and staleness propagate as-is.
func (e *Element) WaitFor(state State, opts ...WaitOption) (*Resolution, error) {
	w := waitParams{presentRequired: true}
	for _, o := range opts {
		o(&w)
	}

	s, err := e.bind()
	if err != nil {
		return nil, err
	}

	cfg := e.cfg()
	timeout := cfg.EffectiveTimeout(w.timeout, e.timeout)
	e.waitTimeout = timeout

	start := time.Now()
	res, err := e.resolveState(s, state, timeout, w.presentRequired)
	e.lastWait = time.Since(start)

	if err != nil {
		var tErr *core.TimeoutError
		if errors.As(err, &tErr) {
			if cfg.EffectiveReraise(w.reraise, e.reraise) {
				logger.Error("%v", tErr)
				return nil, tErr
			}
			logger.Warn("%v", tErr)
			return &Resolution{Elapsed: e.lastWait}, nil
		}
		return nil, err
	}

	res.Satisfied = true
	res.Elapsed = e.lastWait
	return res, nil
}

// resolveState runs the two-phase resolution: cached handle first, locator
// fallback on staleness or cache miss. A timeout in the cached phase is a
// timeout of the whole wait; only reference invalidity falls through.
func (e *Element) resolveState(s core.Session, state State, timeout time.Duration, presentRequired bool) (*Resolution, error) {
	if h := e.cachedHandle(state); h != nil {
		res, err := e.poll(state, timeout, presentRequired, func() (*Resolution, error) {
			return evalHandle(h, state, presentRequired)
		})
		if err == nil {
			e.storeFromCached(state, res)
			logger.Debug("[wait] %s: %s via cache", e.Remark(), state)
			return res, nil
		}
		if !core.IsReferenceError(err) {
			return nil, err
		}
		// Cached handle no longer live: relocate with a fresh budget.
		logger.Debug("[wait] %s: cache invalid, relocating", e.Remark())
	}

	res, err := e.pollLocated(s, state, timeout, presentRequired)
	if err != nil {
		return nil, err
	}
	e.storeFromLocated(state, res)
	logger.Debug("[wait] %s: %s via locator", e.Remark(), state)
	return res, nil
}

// cachedHandle returns the handle to try the predicate against before any
// locator query. All states evaluate against the present slot, the weakest
// state implied by every other; absence waits never use the cache.
func (e *Element) cachedHandle(state State) core.Handle {
	if state == Absent || !e.CacheEnabled() {
		return nil
	}
	return e.presentCache
}

// poll evaluates a condition at the configured interval until it reports a
// resolution or the timeout elapses. The condition is always evaluated at
// least once, so a wait whose condition already holds returns immediately.
func (e *Element) poll(state State, timeout time.Duration, presentRequired bool, eval func() (*Resolution, error)) (*Resolution, error) {
	deadline := time.Now().Add(timeout)
	for {
		res, err := eval()
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
		if time.Now().After(deadline) {
			return nil, &core.TimeoutError{
				State:   state.status(presentRequired),
				Timeout: timeout,
				Remark:  e.Remark(),
			}
		}
		time.Sleep(e.cfg().PollInterval)
	}
}

// pollLocated polls fresh locator queries. Not-found and staleness are
// retried; not-found is the success condition for the absence family.
func (e *Element) pollLocated(s core.Session, state State, timeout time.Duration, presentRequired bool) (*Resolution, error) {
	return e.poll(state, timeout, presentRequired, func() (*Resolution, error) {
		h, err := e.findOnce(s)
		if err != nil {
			if core.IsNotFound(err) {
				switch state {
				case Absent:
					return &Resolution{Absent: true}, nil
				case Invisible, Unclickable:
					if !presentRequired {
						return &Resolution{Absent: true}, nil
					}
				}
				return nil, nil
			}
			if core.IsStale(err) {
				return nil, nil
			}
			return nil, err
		}

		if state == Absent {
			return nil, nil
		}
		if state == Present {
			return &Resolution{Handle: h}, nil
		}

		res, err := evalHandle(h, state, presentRequired)
		if err != nil {
			if core.IsStale(err) {
				// Gone between the query and the predicate; requery.
				return nil, nil
			}
			return nil, err
		}
		return res, nil
	})
}

// evalHandle evaluates the target predicate directly against a handle.
// It returns a non-nil Resolution when the state holds, (nil, nil) when it
// does not hold yet, and an error for staleness or driver failures.
func evalHandle(h core.Handle, state State, presentRequired bool) (*Resolution, error) {
	met := func(ok bool) (*Resolution, error) {
		if ok {
			return &Resolution{Handle: h}, nil
		}
		return nil, nil
	}

	// Staleness of a handle satisfies invisible/unclickable waits that
	// accept absence.
	absentOK := func(err error) (*Resolution, error) {
		if core.IsStale(err) && !presentRequired &&
			(state == Invisible || state == Unclickable) {
			return &Resolution{Absent: true}, nil
		}
		return nil, err
	}

	switch state {
	case Present:
		// Any successful round-trip proves the handle is still attached.
		if _, err := h.IsDisplayed(); err != nil {
			return nil, err
		}
		return &Resolution{Handle: h}, nil

	case Visible:
		d, err := h.IsDisplayed()
		if err != nil {
			return nil, err
		}
		return met(d)

	case Invisible:
		d, err := h.IsDisplayed()
		if err != nil {
			return absentOK(err)
		}
		return met(!d)

	case Clickable, Unclickable:
		d, err := h.IsDisplayed()
		if err != nil {
			return absentOK(err)
		}
		en, err := h.IsEnabled()
		if err != nil {
			return absentOK(err)
		}
		if state == Clickable {
			return met(d && en)
		}
		return met(!(d && en))

	case Selected:
		sel, err := h.IsSelected()
		if err != nil {
			return nil, err
		}
		return met(sel)

	case Unselected:
		sel, err := h.IsSelected()
		if err != nil {
			return nil, err
		}
		return met(!sel)
	}

	return nil, fmt.Errorf("unsupported wait state %v", state)
}

// storeFromCached populates the slots implied by a state resolved through
// the cached handle. The present slot already holds the same handle.
func (e *Element) storeFromCached(state State, res *Resolution) {
	if res.Handle == nil {
		return
	}
	switch state {
	case Visible:
		e.visibleCache = res.Handle
	case Clickable:
		e.visibleCache = res.Handle
		e.clickableCache = res.Handle
	case Selected, Unselected:
		e.selectCache = res.Handle
	}
}

// storeFromLocated populates the slots implied by a state resolved through a
// fresh locator query: clickable implies visible implies present.
func (e *Element) storeFromLocated(state State, res *Resolution) {
	if !e.CacheEnabled() || res.Handle == nil {
		return
	}
	switch state {
	case Present:
		e.presentCache = res.Handle
	case Visible:
		e.presentCache = res.Handle
		e.visibleCache = res.Handle
	case Clickable:
		e.presentCache = res.Handle
		e.visibleCache = res.Handle
		e.clickableCache = res.Handle
	case Invisible, Unclickable:
		e.presentCache = res.Handle
	case Selected, Unselected:
		e.presentCache = res.Handle
		e.selectCache = res.Handle
	}
}

// WaitPresent waits for the element to become present.
func (e *Element) WaitPresent(opts ...WaitOption) (*Resolution, error) {
	return e.WaitFor(Present, opts...)
}

// WaitAbsent waits for the element to become absent.
func (e *Element) WaitAbsent(opts ...WaitOption) (*Resolution, error) {
	return e.WaitFor(Absent, opts...)
}

// WaitVisible waits for the element to become visible.
func (e *Element) WaitVisible(opts ...WaitOption) (*Resolution, error) {
	return e.WaitFor(Visible, opts...)
}

// WaitInvisible waits for the element to become invisible. Combine with
// AllowAbsent to also accept absence.
func (e *Element) WaitInvisible(opts ...WaitOption) (*Resolution, error) {
	return e.WaitFor(Invisible, opts...)
}

// WaitClickable waits for the element to become clickable (displayed and
// enabled).
func (e *Element) WaitClickable(opts ...WaitOption) (*Resolution, error) {
	return e.WaitFor(Clickable, opts...)
}

// WaitUnclickable waits for the element to become unclickable. Combine with
// AllowAbsent to also accept absence.
func (e *Element) WaitUnclickable(opts ...WaitOption) (*Resolution, error) {
	return e.WaitFor(Unclickable, opts...)
}

// WaitSelected waits for the element to become selected.
func (e *Element) WaitSelected(opts ...WaitOption) (*Resolution, error) {
	return e.WaitFor(Selected, opts...)
}

// WaitUnselected waits for the element to become unselected.
func (e *Element) WaitUnselected(opts ...WaitOption) (*Resolution, error) {
	return e.WaitFor(Unselected, opts...)
}

// Present waits with reraise forced on and returns the handle.
func (e *Element) Present() (core.Handle, error) { return e.handleFor(Present) }

// Visible waits with reraise forced on and returns the handle.
func (e *Element) Visible() (core.Handle, error) { return e.handleFor(Visible) }

// Clickable waits with reraise forced on and returns the handle.
func (e *Element) Clickable() (core.Handle, error) { return e.handleFor(Clickable) }

func (e *Element) handleFor(state State) (core.Handle, error) {
	res, err := e.WaitFor(state, Reraise(true))
	if err != nil {
		return nil, err
	}
	return res.Handle, nil
}
