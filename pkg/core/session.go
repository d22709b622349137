// Package core defines the driver-facing types the page-object engine is
// built on: locators, rects, the session/handle collaborator interfaces, and
// the error taxonomy shared by every wait operation.
package core

// Handle is an opaque reference to a live UI element as reported by the
// underlying automation server. A handle can go stale at any time; methods
// report that through ErrStaleElement.
type Handle interface {
	// ID returns the server-side element identifier, for diagnostics.
	ID() string

	IsDisplayed() (bool, error)
	IsEnabled() (bool, error)
	IsSelected() (bool, error)

	Rect() (Rect, error)
	Text() (string, error)
	Attribute(name string) (string, error)

	Click() error
	Clear() error
	SendKeys(text string) error
}

// Session is the query and gesture surface the engine depends on.
// Implementations: Appium (W3C WebDriver), mock.
//
// Sessions are externally owned: the library references one, detects
// replacement by identity comparison, and never creates or closes sessions
// itself.
type Session interface {
	// FindElement locates a single element, or returns ErrNoSuchElement.
	FindElement(loc Locator) (Handle, error)

	// FindElements locates all matching elements. An empty result is not an
	// error; zero matches and a query failure are distinct outcomes.
	FindElements(loc Locator) ([]Handle, error)

	// Swipe performs one touch gesture from start to end over durationMs.
	Swipe(startX, startY, endX, endY, durationMs int) error

	// Flick performs a fast swipe without a controlled duration.
	Flick(startX, startY, endX, endY int) error

	// WindowRect returns the current window/screen rect.
	WindowRect() (Rect, error)
}
