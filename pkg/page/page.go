// Package page ties elements to a driver session. A Page owns the session
// reference and the default wait policy; elements declared against it pick
// both up at operation time, so swapping the session on the page is enough to
// invalidate every element's cached handle.
package page

import (
	"fmt"
	"sort"
	"sync"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/element"
	"github.com/devicelab-dev/pagekit/pkg/gesture"
	"github.com/devicelab-dev/pagekit/pkg/logger"
)

// Page is a page object: a named registry of element descriptors bound to a
// driver session. Pages are safe for registration from multiple goroutines;
// element operations themselves are not synchronized.
type Page struct {
	mu       sync.RWMutex
	session  core.Session
	cfg      *config.Config
	elements map[string]*element.Element
	groups   map[string]*element.Elements
}

// New creates a page bound to the given session. A nil cfg uses the library
// defaults.
func New(session core.Session, cfg *config.Config) *Page {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Page{
		session:  session,
		cfg:      cfg,
		elements: make(map[string]*element.Element),
		groups:   make(map[string]*element.Elements),
	}
}

// Session returns the current driver session. Implements element.Owner.
func (p *Page) Session() core.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

// Config returns the page's default policy. Implements element.Owner.
func (p *Page) Config() *config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// SetSession replaces the driver session. Elements notice the replacement on
// their next operation and drop their cached handles.
func (p *Page) SetSession(s core.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil && p.session != s {
		logger.Info("[page] session replaced")
	}
	p.session = s
}

// Define registers a named element and returns it. Redefining a name replaces
// the previous descriptor.
func (p *Page) Define(name string, loc core.Locator, opts ...element.Option) *element.Element {
	e := element.New(p, loc, opts...)
	p.mu.Lock()
	p.elements[name] = e
	p.mu.Unlock()
	return e
}

// DefineAll registers a named collection and returns it.
func (p *Page) DefineAll(name string, loc core.Locator, opts ...element.Option) *element.Elements {
	es := element.NewAll(p, loc, opts...)
	p.mu.Lock()
	p.groups[name] = es
	p.mu.Unlock()
	return es
}

// Lookup returns a registered element by name.
func (p *Page) Lookup(name string) (*element.Element, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.elements[name]
	if !ok {
		return nil, fmt.Errorf("no element named %q", name)
	}
	return e, nil
}

// LookupAll returns a registered collection by name.
func (p *Page) LookupAll(name string) (*element.Elements, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	es, ok := p.groups[name]
	if !ok {
		return nil, fmt.Errorf("no collection named %q", name)
	}
	return es, nil
}

// Names returns the registered element names, sorted.
func (p *Page) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.elements))
	for n := range p.elements {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WindowRect returns the current window rect.
func (p *Page) WindowRect() (core.Rect, error) {
	s := p.Session()
	if s == nil {
		return core.Rect{}, core.ErrNoSession
	}
	return s.WindowRect()
}

// SwipeBy performs the offset gesture within the area the given number of
// times, without targeting any element.
func (p *Page) SwipeBy(offset gesture.Offset, area gesture.Area, times, durationMs int) error {
	return p.gesture(offset, area, times, durationMs, false)
}

// FlickBy is SwipeBy with fast, duration-less gestures.
func (p *Page) FlickBy(offset gesture.Offset, area gesture.Area, times int) error {
	return p.gesture(offset, area, times, 0, true)
}

func (p *Page) gesture(offset gesture.Offset, area gesture.Area, times, durationMs int, flick bool) error {
	s := p.Session()
	if s == nil {
		return core.ErrNoSession
	}
	window, err := s.WindowRect()
	if err != nil {
		return err
	}
	rect, err := gesture.ResolveArea(area, window)
	if err != nil {
		return err
	}
	v, err := gesture.ResolveOffset(offset, rect)
	if err != nil {
		return err
	}
	for i := 0; i < times; i++ {
		if flick {
			err = s.Flick(v.StartX, v.StartY, v.EndX, v.EndY)
		} else {
			err = s.Swipe(v.StartX, v.StartY, v.EndX, v.EndY, durationMs)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
