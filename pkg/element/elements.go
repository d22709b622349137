package element

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/logger"
)

// Elements is a declarative descriptor for a multi-match query. Collections
// are never cached: membership changes with every poll, so every operation
// runs fresh locator queries. Index and cache options are not accepted.
type Elements struct {
	owner   Owner
	locator core.Locator
	settings
}

// NewAll declares a collection owned by the given page.
func NewAll(owner Owner, loc core.Locator, opts ...Option) *Elements {
	es := &Elements{owner: owner, locator: loc}
	for _, o := range opts {
		o(&es.settings)
	}
	es.index = nil
	es.cacheOn = nil
	return es
}

// Relocate reassigns the locator and declaration attributes.
func (es *Elements) Relocate(loc core.Locator, opts ...Option) *Elements {
	es.locator = loc
	es.settings = settings{}
	for _, o := range opts {
		o(&es.settings)
	}
	es.index = nil
	es.cacheOn = nil
	return es
}

// Locator returns the collection's locator.
func (es *Elements) Locator() core.Locator { return es.locator }

// Remark returns the collection's identity for logs and failure messages.
func (es *Elements) Remark() string {
	if es.remark != "" {
		return es.remark
	}
	return es.locator.String()
}

func (es *Elements) cfg() *config.Config {
	if es.owner != nil {
		if c := es.owner.Config(); c != nil {
			return c
		}
	}
	return config.Default()
}

func (es *Elements) bind() (core.Session, error) {
	if es.owner == nil {
		return nil, core.ErrNoSession
	}
	s := es.owner.Session()
	if s == nil {
		return nil, core.ErrNoSession
	}
	return s, nil
}

// Group is the outcome of a collection wait.
type Group struct {
	Handles   []core.Handle
	Satisfied bool
	Elapsed   time.Duration
}

// Quantity returns the number of handles in the group.
func (g *Group) Quantity() int { return len(g.Handles) }

// waitAll polls fresh multi-match queries against a group predicate. The
// predicate returns the satisfying handles, or nil to keep polling.
func (es *Elements) waitAll(state string, w waitParams, eval func([]core.Handle) ([]core.Handle, bool)) (*Group, error) {
	s, err := es.bind()
	if err != nil {
		return nil, err
	}

	cfg := es.cfg()
	timeout := cfg.EffectiveTimeout(w.timeout, es.timeout)
	start := time.Now()
	deadline := start.Add(timeout)

	for {
		handles, err := s.FindElements(es.locator)
		if core.IsNotFound(err) {
			// Drivers that error instead of returning an empty slice still
			// mean "no matches"; the predicate decides what that means.
			handles, err = nil, nil
		}
		if err == nil {
			if matched, ok := eval(handles); ok {
				logger.Debug("[wait] %s: %d elements %s", es.Remark(), len(matched), state)
				return &Group{Handles: matched, Satisfied: true, Elapsed: time.Since(start)}, nil
			}
		} else if !core.IsStale(err) {
			return nil, err
		}

		if time.Now().After(deadline) {
			tErr := &core.TimeoutError{State: state, Timeout: timeout, Remark: es.Remark()}
			if cfg.EffectiveReraise(w.reraise, es.reraise) {
				logger.Error("%v", tErr)
				return nil, tErr
			}
			logger.Warn("%v", tErr)
			return &Group{Elapsed: time.Since(start)}, nil
		}
		time.Sleep(cfg.PollInterval)
	}
}

func applyWaitOpts(opts []WaitOption) waitParams {
	w := waitParams{presentRequired: true}
	for _, o := range opts {
		o(&w)
	}
	return w
}

// WaitAllPresent waits until the query matches at least one element.
func (es *Elements) WaitAllPresent(opts ...WaitOption) (*Group, error) {
	return es.waitAll("present", applyWaitOpts(opts), func(hs []core.Handle) ([]core.Handle, bool) {
		if len(hs) > 0 {
			return hs, true
		}
		return nil, false
	})
}

// WaitAllAbsent waits until the query matches nothing.
func (es *Elements) WaitAllAbsent(opts ...WaitOption) (*Group, error) {
	return es.waitAll("absent", applyWaitOpts(opts), func(hs []core.Handle) ([]core.Handle, bool) {
		if len(hs) == 0 {
			return []core.Handle{}, true
		}
		return nil, false
	})
}

// WaitAllVisible waits until the query matches at least one element and every
// match is displayed. A handle going stale mid-check restarts the poll.
func (es *Elements) WaitAllVisible(opts ...WaitOption) (*Group, error) {
	return es.waitAll("visible", applyWaitOpts(opts), func(hs []core.Handle) ([]core.Handle, bool) {
		if len(hs) == 0 {
			return nil, false
		}
		for _, h := range hs {
			d, err := h.IsDisplayed()
			if err != nil || !d {
				return nil, false
			}
		}
		return hs, true
	})
}

// WaitAnyVisible waits until at least one match is displayed and returns the
// displayed subset.
func (es *Elements) WaitAnyVisible(opts ...WaitOption) (*Group, error) {
	return es.waitAll("any visible", applyWaitOpts(opts), func(hs []core.Handle) ([]core.Handle, bool) {
		var visible []core.Handle
		for _, h := range hs {
			d, err := h.IsDisplayed()
			if err != nil {
				continue
			}
			if d {
				visible = append(visible, h)
			}
		}
		if len(visible) > 0 {
			return visible, true
		}
		return nil, false
	})
}

// AreAllPresent reports whether the query matches anything within the budget.
func (es *Elements) AreAllPresent(timeout time.Duration) (bool, error) {
	g, err := es.WaitAllPresent(Within(timeout), Reraise(false))
	if err != nil {
		return false, err
	}
	return g.Satisfied, nil
}

// AreAllVisible reports whether every current match is displayed within the
// budget.
func (es *Elements) AreAllVisible(timeout time.Duration) (bool, error) {
	g, err := es.WaitAllVisible(Within(timeout), Reraise(false))
	if err != nil {
		return false, err
	}
	return g.Satisfied, nil
}

// AreAnyVisible reports whether any current match is displayed within the
// budget.
func (es *Elements) AreAnyVisible(timeout time.Duration) (bool, error) {
	g, err := es.WaitAnyVisible(Within(timeout), Reraise(false))
	if err != nil {
		return false, err
	}
	return g.Satisfied, nil
}

// Quantity waits for presence and returns the match count. Zero when the
// query never matched within the budget.
func (es *Elements) Quantity() (int, error) {
	g, err := es.WaitAllPresent(Reraise(false))
	if err != nil {
		return 0, err
	}
	return g.Quantity(), nil
}

// Texts waits for presence and returns the text of each match. A handle that
// goes stale mid-iteration triggers one fresh wait and retry.
func (es *Elements) Texts() ([]string, error) {
	return collectAll(es, func(h core.Handle) (string, error) { return h.Text() })
}

// Rects waits for presence and returns the rect of each match.
func (es *Elements) Rects() ([]core.Rect, error) {
	return collectAll(es, func(h core.Handle) (core.Rect, error) { return h.Rect() })
}

func collectAll[T any](es *Elements, get func(core.Handle) (T, error)) ([]T, error) {
	const attempts = 2
	var lastErr error
	for i := 0; i < attempts; i++ {
		g, err := es.WaitAllPresent()
		if err != nil {
			return nil, err
		}
		out := make([]T, 0, len(g.Handles))
		stale := false
		for _, h := range g.Handles {
			v, err := get(h)
			if err != nil {
				if core.IsStale(err) {
					stale = true
					lastErr = err
					break
				}
				return nil, err
			}
			out = append(out, v)
		}
		if !stale {
			return out, nil
		}
		logger.Debug("[collect] %s: went stale, re-querying", es.Remark())
	}
	return nil, fmt.Errorf("collection %s kept going stale: %w", es.Remark(), lastErr)
}
