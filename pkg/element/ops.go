package element

import (
	"time"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/logger"
)

// IsPresent reports whether the element appears within the given budget.
// Timeouts are absorbed; only driver failures are returned.
func (e *Element) IsPresent(timeout time.Duration) (bool, error) {
	res, err := e.WaitFor(Present, Within(timeout), Reraise(false))
	if err != nil {
		return false, err
	}
	return res.Satisfied, nil
}

// IsVisible resolves the element to present and reports its displayed state.
func (e *Element) IsVisible() (bool, error) {
	h, err := e.Present()
	if err != nil {
		return false, err
	}
	return h.IsDisplayed()
}

// IsClickable resolves the element to present and reports whether it is both
// displayed and enabled.
func (e *Element) IsClickable() (bool, error) {
	h, err := e.Present()
	if err != nil {
		return false, err
	}
	d, err := h.IsDisplayed()
	if err != nil {
		return false, err
	}
	if !d {
		return false, nil
	}
	return h.IsEnabled()
}

// IsSelected resolves the element to present and reports its selected state.
func (e *Element) IsSelected() (bool, error) {
	h, err := e.Present()
	if err != nil {
		return false, err
	}
	return h.IsSelected()
}

// withHandle resolves the element to the required state and runs fn against
// the handle. A handle that goes stale between resolution and the action is
// relocated once and the action retried.
func (e *Element) withHandle(state State, fn func(core.Handle) error) error {
	h, err := e.handleFor(state)
	if err != nil {
		return err
	}
	if err := fn(h); err != nil {
		if !core.IsStale(err) {
			return err
		}
		logger.Debug("[action] %s: went stale, relocating", e.Remark())
		e.clearCaches("[action]")
		h, err = e.handleFor(state)
		if err != nil {
			return err
		}
		return fn(h)
	}
	return nil
}

// Click waits for the element to become clickable and clicks it.
func (e *Element) Click() error {
	return e.withHandle(Clickable, func(h core.Handle) error {
		return h.Click()
	})
}

// Clear waits for the element to become clickable and clears its content.
func (e *Element) Clear() error {
	return e.withHandle(Clickable, func(h core.Handle) error {
		return h.Clear()
	})
}

// SendKeys waits for the element to become clickable and types into it.
func (e *Element) SendKeys(text string) error {
	return e.withHandle(Clickable, func(h core.Handle) error {
		return h.SendKeys(text)
	})
}

// Text waits for the element to become present and returns its text.
func (e *Element) Text() (string, error) {
	var out string
	err := e.withHandle(Present, func(h core.Handle) error {
		t, err := h.Text()
		out = t
		return err
	})
	return out, err
}

// Attribute waits for the element to become present and returns the named
// attribute's value.
func (e *Element) Attribute(name string) (string, error) {
	var out string
	err := e.withHandle(Present, func(h core.Handle) error {
		v, err := h.Attribute(name)
		out = v
		return err
	})
	return out, err
}

// Rect waits for the element to become present and returns its rect.
func (e *Element) Rect() (core.Rect, error) {
	var out core.Rect
	err := e.withHandle(Present, func(h core.Handle) error {
		r, err := h.Rect()
		out = r
		return err
	})
	return out, err
}

// Border waits for the element to become present and returns its four edges.
func (e *Element) Border() (core.Border, error) {
	r, err := e.Rect()
	if err != nil {
		return core.Border{}, err
	}
	return r.Border(), nil
}

// Center waits for the element to become present and returns its center.
func (e *Element) Center() (int, int, error) {
	r, err := e.Rect()
	if err != nil {
		return 0, 0, err
	}
	x, y := r.Center()
	return x, y, nil
}
