// Package mock provides a scripted core.Session for testing the wait engine
// without a device. Nodes appear after a configured number of queries, can be
// marked stale mid-test, and drift with recorded swipes so scroll convergence
// is observable.
package mock

import (
	"sync"

	"github.com/devicelab-dev/pagekit/pkg/core"
)

// Session is a scripted in-memory core.Session.
type Session struct {
	mu     sync.Mutex
	window core.Rect
	nodes  map[string][]*Node

	findOneCalls map[string]int
	findAllCalls map[string]int
	swipes       []Swipe
}

// Swipe is one recorded gesture.
type Swipe struct {
	StartX, StartY, EndX, EndY int
	DurationMs                 int
	Flick                      bool
}

// NewSession creates a session with the given window rect.
func NewSession(window core.Rect) *Session {
	return &Session{
		window:       window,
		nodes:        make(map[string][]*Node),
		findOneCalls: make(map[string]int),
		findAllCalls: make(map[string]int),
	}
}

// Node is a scripted UI element. Fields are read under the session lock;
// tests configure them before handing the session to the engine, or through
// the mutator methods afterwards.
type Node struct {
	s *Session

	Displayed bool
	Enabled   bool
	Selected  bool
	NodeRect  core.Rect
	NodeText  string
	Attrs     map[string]string

	// AppearAfter hides the node from the first N queries on its locator.
	AppearAfter int

	// AppearAfterSwipes hides the node until N gestures were performed,
	// simulating content scrolled into view.
	AppearAfterSwipes int

	// DriftOnSwipe moves the rect by each swipe's delta.
	DriftOnSwipe bool

	stale  bool
	clicks int
	typed  string
}

// Add registers nodes under a locator and returns the session for chaining.
func (s *Session) Add(loc core.Locator, nodes ...*Node) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		n.s = s
	}
	s.nodes[loc.String()] = append(s.nodes[loc.String()], nodes...)
	return s
}

// FindElement returns the first eligible node, or core.ErrNoSuchElement.
func (s *Session) FindElement(loc core.Locator) (core.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := loc.String()
	s.findOneCalls[key]++
	for _, n := range s.eligible(key) {
		return n, nil
	}
	return nil, core.ErrNoSuchElement
}

// FindElements returns all eligible nodes. Zero matches is an empty slice.
func (s *Session) FindElements(loc core.Locator) ([]core.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := loc.String()
	s.findAllCalls[key]++
	var out []core.Handle
	for _, n := range s.eligible(key) {
		out = append(out, n)
	}
	return out, nil
}

// eligible is called under the lock.
func (s *Session) eligible(key string) []*Node {
	queries := s.findOneCalls[key] + s.findAllCalls[key]
	var out []*Node
	for _, n := range s.nodes[key] {
		if n.stale || queries <= n.AppearAfter || len(s.swipes) < n.AppearAfterSwipes {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Swipe records the gesture and applies drift.
func (s *Session) Swipe(startX, startY, endX, endY, durationMs int) error {
	s.record(Swipe{StartX: startX, StartY: startY, EndX: endX, EndY: endY, DurationMs: durationMs})
	return nil
}

// Flick records the gesture and applies drift.
func (s *Session) Flick(startX, startY, endX, endY int) error {
	s.record(Swipe{StartX: startX, StartY: startY, EndX: endX, EndY: endY, Flick: true})
	return nil
}

func (s *Session) record(sw Swipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swipes = append(s.swipes, sw)
	dx, dy := sw.EndX-sw.StartX, sw.EndY-sw.StartY
	for _, ns := range s.nodes {
		for _, n := range ns {
			if n.DriftOnSwipe {
				n.NodeRect.X += dx
				n.NodeRect.Y += dy
			}
		}
	}
}

// WindowRect returns the configured window rect.
func (s *Session) WindowRect() (core.Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window, nil
}

// FindOneCalls returns how many single-match queries ran for the locator.
func (s *Session) FindOneCalls(loc core.Locator) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOneCalls[loc.String()]
}

// FindAllCalls returns how many multi-match queries ran for the locator.
func (s *Session) FindAllCalls(loc core.Locator) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findAllCalls[loc.String()]
}

// Swipes returns all recorded gestures.
func (s *Session) Swipes() []Swipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Swipe, len(s.swipes))
	copy(out, s.swipes)
	return out
}

// Node mutators and core.Handle implementation.

// MarkStale makes every subsequent handle method fail with
// core.ErrStaleElement and hides the node from queries.
func (n *Node) MarkStale() {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.stale = true
}

// Replace marks the node stale and registers a successor under the locator.
// The successor is immediately eligible.
func (n *Node) Replace(loc core.Locator, successor *Node) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.stale = true
	successor.s = n.s
	successor.AppearAfter = 0
	n.s.nodes[loc.String()] = append(n.s.nodes[loc.String()], successor)
}

// SetDisplayed updates the displayed flag.
func (n *Node) SetDisplayed(v bool) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.Displayed = v
}

// SetEnabled updates the enabled flag.
func (n *Node) SetEnabled(v bool) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.Enabled = v
}

// SetSelected updates the selected flag.
func (n *Node) SetSelected(v bool) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.Selected = v
}

// Clicks returns how many times the node was clicked.
func (n *Node) Clicks() int {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	return n.clicks
}

// Typed returns everything sent to the node via SendKeys.
func (n *Node) Typed() string {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	return n.typed
}

func (n *Node) guard() error {
	if n.stale {
		return core.ErrStaleElement
	}
	return nil
}

func (n *Node) ID() string { return "mock-node" }

func (n *Node) IsDisplayed() (bool, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return false, err
	}
	return n.Displayed, nil
}

func (n *Node) IsEnabled() (bool, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return false, err
	}
	return n.Enabled, nil
}

func (n *Node) IsSelected() (bool, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return false, err
	}
	return n.Selected, nil
}

func (n *Node) Rect() (core.Rect, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return core.Rect{}, err
	}
	return n.NodeRect, nil
}

func (n *Node) Text() (string, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return "", err
	}
	return n.NodeText, nil
}

func (n *Node) Attribute(name string) (string, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return "", err
	}
	return n.Attrs[name], nil
}

func (n *Node) Click() error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return err
	}
	n.clicks++
	return nil
}

func (n *Node) Clear() error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return err
	}
	n.typed = ""
	return nil
}

func (n *Node) SendKeys(text string) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if err := n.guard(); err != nil {
		return err
	}
	n.typed += text
	return nil
}
