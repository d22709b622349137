// Package element implements the element-state wait engine: descriptors that
// lazily locate driver-native handles, cache them by resolved state, and
// poll the driver until a target state is reached or a timeout elapses.
//
// An Element is bound to an Owner (normally a page.Page). Binding is checked
// on every operation: if the owner's session reference changed since the
// last operation, all cache slots are invalidated before proceeding.
package element

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/logger"
)

// Owner provides the driver session and default policy an element operates
// with. Implemented by page.Page.
type Owner interface {
	Session() core.Session
	Config() *config.Config
}

// settings are the declaration-time attributes shared by Element and
// Elements. Nil fields defer to the process defaults.
type settings struct {
	index   *int
	timeout *time.Duration
	reraise *bool
	cacheOn *bool
	remark  string
}

// Option configures an element at declaration (or relocation) time.
type Option func(*settings)

// WithIndex selects the index-th result of a multi-match query instead of a
// single-match query. Ignored by collections.
func WithIndex(i int) Option {
	return func(s *settings) { s.index = &i }
}

// WithTimeout sets the element-level default wait budget.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = &d }
}

// WithReraise sets the element-level default timeout policy.
func WithReraise(b bool) Option {
	return func(s *settings) { s.reraise = &b }
}

// WithCache overrides the process-wide cache switch for this element.
// Ignored by collections, which are never cached.
func WithCache(b bool) Option {
	return func(s *settings) { s.cacheOn = &b }
}

// WithRemark sets a custom identity used in logs and timeout messages.
func WithRemark(r string) Option {
	return func(s *settings) { s.remark = r }
}

// Element is a declarative descriptor for a single UI element. The locator
// is immutable once assigned, except through Relocate for elements whose
// identity depends on runtime parameters.
type Element struct {
	owner   Owner
	locator core.Locator
	settings

	// session is the driver the caches were populated against. A changed
	// owner session invalidates every slot.
	session core.Session

	presentCache   core.Handle
	visibleCache   core.Handle
	clickableCache core.Handle
	selectCache    core.Handle

	waitTimeout time.Duration // effective budget of the last wait
	lastWait    time.Duration // elapsed duration of the last wait
}

// New declares an element owned by the given page.
func New(owner Owner, loc core.Locator, opts ...Option) *Element {
	e := &Element{owner: owner, locator: loc}
	for _, o := range opts {
		o(&e.settings)
	}
	return e
}

// Relocate reassigns the locator and declaration attributes of a dynamic
// element and invalidates all cache slots. Attributes not re-supplied via
// options revert to their defaults.
func (e *Element) Relocate(loc core.Locator, opts ...Option) *Element {
	e.locator = loc
	e.settings = settings{}
	for _, o := range opts {
		o(&e.settings)
	}
	e.clearCaches("[relocate]")
	return e
}

// Locator returns the element's locator.
func (e *Element) Locator() core.Locator { return e.locator }

// Index returns the configured multi-match index, or -1 when unindexed.
func (e *Element) Index() int {
	if e.index == nil {
		return -1
	}
	return *e.index
}

// Remark returns the element's identity for logs and failure messages.
func (e *Element) Remark() string {
	if e.remark != "" {
		return e.remark
	}
	if e.index != nil {
		return fmt.Sprintf("%s[%d]", e.locator, *e.index)
	}
	return e.locator.String()
}

// Timeout returns the element-level default wait budget.
func (e *Element) Timeout() time.Duration {
	return e.cfg().EffectiveTimeout(nil, e.timeout)
}

// CacheEnabled reports the effective cache switch for this element.
func (e *Element) CacheEnabled() bool {
	return e.cfg().EffectiveCache(e.cacheOn)
}

// WaitTimeout returns the effective budget of the most recent wait, zero if
// no wait has run yet.
func (e *Element) WaitTimeout() time.Duration { return e.waitTimeout }

// LastWait returns the elapsed duration of the most recent wait.
func (e *Element) LastWait() time.Duration { return e.lastWait }

// PresentCache returns the cached present handle, nil if none.
func (e *Element) PresentCache() core.Handle { return e.presentCache }

// VisibleCache returns the cached visible handle, nil if none.
func (e *Element) VisibleCache() core.Handle { return e.visibleCache }

// ClickableCache returns the cached clickable handle, nil if none.
func (e *Element) ClickableCache() core.Handle { return e.clickableCache }

// SelectCache returns the cached select-state handle, nil if none.
func (e *Element) SelectCache() core.Handle { return e.selectCache }

func (e *Element) cfg() *config.Config {
	if e.owner != nil {
		if c := e.owner.Config(); c != nil {
			return c
		}
	}
	return config.Default()
}

// bind resolves the current session and invalidates caches when the owner's
// session reference changed since the previous operation.
func (e *Element) bind() (core.Session, error) {
	if e.owner == nil {
		return nil, core.ErrNoSession
	}
	s := e.owner.Session()
	if s == nil {
		return nil, core.ErrNoSession
	}
	if e.session != s {
		if e.session != nil {
			logger.Debug("[bind] %s: session replaced", e.Remark())
		}
		e.session = s
		e.clearCaches("[bind]")
	}
	return s, nil
}

func (e *Element) clearCaches(tag string) {
	if e.presentCache != nil || e.visibleCache != nil ||
		e.clickableCache != nil || e.selectCache != nil {
		logger.Debug("%s %s: caches cleared", tag, e.Remark())
	}
	e.presentCache = nil
	e.visibleCache = nil
	e.clickableCache = nil
	e.selectCache = nil
}

// findOnce runs one locator query, honoring the configured index. An
// out-of-range index is normalized to ErrNoSuchElement.
func (e *Element) findOnce(s core.Session) (core.Handle, error) {
	if e.index == nil {
		return s.FindElement(e.locator)
	}
	handles, err := s.FindElements(e.locator)
	if err != nil {
		return nil, err
	}
	i := *e.index
	if i < 0 || i >= len(handles) {
		return nil, core.ErrNoSuchElement
	}
	return handles[i], nil
}
