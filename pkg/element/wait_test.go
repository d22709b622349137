package element

import (
	"errors"
	"testing"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver/mock"
)

// testOwner stands in for a page: a fixed session and a fast-poll config.
type testOwner struct {
	s   core.Session
	cfg *config.Config
}

func (o *testOwner) Session() core.Session  { return o.s }
func (o *testOwner) Config() *config.Config { return o.cfg }

func fastConfig() *config.Config {
	return &config.Config{
		Timeout:      200 * time.Millisecond,
		Reraise:      true,
		Cache:        true,
		PollInterval: time.Millisecond,
	}
}

var loginButton = core.By(core.ByAccessibilityID, "login")

func newFixture(nodes ...*mock.Node) (*testOwner, *mock.Session) {
	s := mock.NewSession(core.Rect{Width: 1080, Height: 2400})
	s.Add(loginButton, nodes...)
	return &testOwner{s: s, cfg: fastConfig()}, s
}

func visibleNode() *mock.Node {
	return &mock.Node{
		Displayed: true,
		Enabled:   true,
		NodeRect:  core.Rect{X: 100, Y: 200, Width: 200, Height: 50},
		NodeText:  "Login",
	}
}

func TestWaitPresentImmediate(t *testing.T) {
	owner, _ := newFixture(visibleNode())
	e := New(owner, loginButton)

	res, err := e.WaitPresent()
	if err != nil {
		t.Fatalf("WaitPresent: %v", err)
	}
	if !res.Satisfied || res.Handle == nil || res.Absent {
		t.Errorf("unexpected resolution: %+v", res)
	}
	if e.PresentCache() == nil {
		t.Error("present cache not populated")
	}
}

func TestWaitPresentAppearsLater(t *testing.T) {
	n := visibleNode()
	n.AppearAfter = 3
	owner, s := newFixture(n)
	e := New(owner, loginButton)

	res, err := e.WaitPresent()
	if err != nil {
		t.Fatalf("WaitPresent: %v", err)
	}
	if !res.Satisfied {
		t.Error("expected satisfied resolution")
	}
	if got := s.FindOneCalls(loginButton); got != 4 {
		t.Errorf("query count = %d, want 4", got)
	}
}

func TestWaitCacheIdempotence(t *testing.T) {
	owner, s := newFixture(visibleNode())
	e := New(owner, loginButton)

	if _, err := e.WaitPresent(); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	queries := s.FindOneCalls(loginButton)

	// Every later wait resolves through the cached handle: no new queries.
	for i := 0; i < 3; i++ {
		if _, err := e.WaitVisible(); err != nil {
			t.Fatalf("cached wait %d: %v", i, err)
		}
	}
	if got := s.FindOneCalls(loginButton); got != queries {
		t.Errorf("query count grew from %d to %d on cached waits", queries, got)
	}
}

func TestWaitCacheDisabled(t *testing.T) {
	owner, s := newFixture(visibleNode())
	e := New(owner, loginButton, WithCache(false))

	if _, err := e.WaitVisible(); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if _, err := e.WaitVisible(); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if got := s.FindOneCalls(loginButton); got != 2 {
		t.Errorf("query count = %d, want 2 with caching disabled", got)
	}
	if e.PresentCache() != nil {
		t.Error("cache populated despite WithCache(false)")
	}
}

func TestWaitStaleFallback(t *testing.T) {
	n := visibleNode()
	owner, s := newFixture(n)
	e := New(owner, loginButton)

	if _, err := e.WaitPresent(); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	queries := s.FindOneCalls(loginButton)

	successor := visibleNode()
	n.Replace(loginButton, successor)

	res, err := e.WaitVisible()
	if err != nil {
		t.Fatalf("wait after staleness: %v", err)
	}
	if !res.Satisfied {
		t.Error("expected satisfied resolution via fallback")
	}
	if got := s.FindOneCalls(loginButton); got != queries+1 {
		t.Errorf("fallback ran %d queries, want exactly 1", got-queries)
	}
	if e.PresentCache() != res.Handle {
		t.Error("fallback did not refresh the present cache")
	}
}

func TestWaitCacheImplication(t *testing.T) {
	owner, _ := newFixture(visibleNode())
	e := New(owner, loginButton)

	if _, err := e.WaitClickable(); err != nil {
		t.Fatalf("WaitClickable: %v", err)
	}
	// Clickable implies visible implies present.
	if e.PresentCache() == nil || e.VisibleCache() == nil || e.ClickableCache() == nil {
		t.Errorf("clickable wait left slots present=%v visible=%v clickable=%v",
			e.PresentCache() != nil, e.VisibleCache() != nil, e.ClickableCache() != nil)
	}

	e2 := New(owner, loginButton)
	if _, err := e2.WaitVisible(); err != nil {
		t.Fatalf("WaitVisible: %v", err)
	}
	if e2.PresentCache() == nil || e2.VisibleCache() == nil {
		t.Error("visible wait must populate present and visible slots")
	}
	if e2.ClickableCache() != nil {
		t.Error("visible wait must not populate the clickable slot")
	}
}

func TestWaitAbsentImmediate(t *testing.T) {
	owner, _ := newFixture() // no nodes
	e := New(owner, loginButton)

	res, err := e.WaitAbsent()
	if err != nil {
		t.Fatalf("WaitAbsent: %v", err)
	}
	if !res.Satisfied || !res.Absent || res.Handle != nil {
		t.Errorf("unexpected resolution: %+v", res)
	}
}

func TestWaitAbsentNeverUsesCache(t *testing.T) {
	n := visibleNode()
	owner, s := newFixture(n)
	e := New(owner, loginButton)

	if _, err := e.WaitPresent(); err != nil {
		t.Fatalf("WaitPresent: %v", err)
	}
	queries := s.FindOneCalls(loginButton)

	n.MarkStale()
	res, err := e.WaitAbsent()
	if err != nil {
		t.Fatalf("WaitAbsent: %v", err)
	}
	if !res.Absent {
		t.Error("expected absence")
	}
	if got := s.FindOneCalls(loginButton); got <= queries {
		t.Error("absence wait must run fresh queries, not consult the cache")
	}
}

func TestWaitTimeoutReraise(t *testing.T) {
	owner, _ := newFixture() // never appears
	e := New(owner, loginButton)

	_, err := e.WaitPresent()
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var tErr *core.TimeoutError
	if !errors.As(err, &tErr) {
		t.Fatalf("error type = %T, want *core.TimeoutError", err)
	}
	if tErr.State != "present" {
		t.Errorf("timeout state = %q, want %q", tErr.State, "present")
	}
	if !core.IsTimeout(err) {
		t.Error("IsTimeout must recognize the error")
	}
}

func TestWaitTimeoutAbsorbed(t *testing.T) {
	owner, _ := newFixture()
	e := New(owner, loginButton)

	res, err := e.WaitPresent(Reraise(false))
	if err != nil {
		t.Fatalf("absorbed timeout returned error: %v", err)
	}
	if res.Satisfied || res.Handle != nil {
		t.Errorf("unexpected resolution: %+v", res)
	}
}

func TestReraisePrecedence(t *testing.T) {
	tests := []struct {
		name      string
		process   bool
		element   *bool
		call      *bool
		wantError bool
	}{
		{name: "process true", process: true, wantError: true},
		{name: "process false", process: false, wantError: false},
		{name: "element overrides process", process: true, element: boolPtr(false), wantError: false},
		{name: "element true over process false", process: false, element: boolPtr(true), wantError: true},
		{name: "call overrides element", process: false, element: boolPtr(true), call: boolPtr(false), wantError: false},
		{name: "call true over all", process: false, element: boolPtr(false), call: boolPtr(true), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, _ := newFixture()
			owner.cfg.Reraise = tt.process

			var declOpts []Option
			if tt.element != nil {
				declOpts = append(declOpts, WithReraise(*tt.element))
			}
			e := New(owner, loginButton, declOpts...)

			var waitOpts []WaitOption
			if tt.call != nil {
				waitOpts = append(waitOpts, Reraise(*tt.call))
			}

			_, err := e.WaitPresent(waitOpts...)
			if tt.wantError && err == nil {
				t.Error("expected timeout error")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected absorbed timeout, got %v", err)
			}
		})
	}
}

func TestTimeoutPrecedence(t *testing.T) {
	owner, _ := newFixture()
	owner.cfg.Timeout = time.Hour // would hang if used

	e := New(owner, loginButton, WithTimeout(50*time.Millisecond))
	start := time.Now()
	if _, err := e.WaitPresent(Reraise(false)); err != nil {
		t.Fatalf("WaitPresent: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("element timeout not honored, waited %v", elapsed)
	}
	if e.WaitTimeout() != 50*time.Millisecond {
		t.Errorf("WaitTimeout = %v, want 50ms", e.WaitTimeout())
	}

	// Call-level override beats the element default.
	if _, err := e.WaitPresent(Within(20*time.Millisecond), Reraise(false)); err != nil {
		t.Fatalf("WaitPresent: %v", err)
	}
	if e.WaitTimeout() != 20*time.Millisecond {
		t.Errorf("WaitTimeout = %v, want 20ms", e.WaitTimeout())
	}
	if e.LastWait() <= 0 {
		t.Error("LastWait not recorded")
	}
}

func TestWaitInvisible(t *testing.T) {
	n := visibleNode()
	owner, _ := newFixture(n)
	e := New(owner, loginButton)

	go func() {
		time.Sleep(20 * time.Millisecond)
		n.SetDisplayed(false)
	}()

	res, err := e.WaitInvisible()
	if err != nil {
		t.Fatalf("WaitInvisible: %v", err)
	}
	if !res.Satisfied || res.Absent {
		t.Errorf("unexpected resolution: %+v", res)
	}
}

func TestWaitInvisibleRequiresPresence(t *testing.T) {
	owner, _ := newFixture() // element never exists
	e := New(owner, loginButton)

	// Default: absence does not satisfy an invisibility wait.
	_, err := e.WaitInvisible()
	var tErr *core.TimeoutError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if tErr.State != "invisible" {
		t.Errorf("timeout state = %q, want %q", tErr.State, "invisible")
	}

	// With AllowAbsent, absence resolves immediately.
	res, err := e.WaitInvisible(AllowAbsent())
	if err != nil {
		t.Fatalf("WaitInvisible(AllowAbsent): %v", err)
	}
	if !res.Satisfied || !res.Absent {
		t.Errorf("unexpected resolution: %+v", res)
	}
}

func TestWaitUnclickableAllowAbsentTimeoutMessage(t *testing.T) {
	owner, _ := newFixture(visibleNode()) // stays clickable
	e := New(owner, loginButton)

	_, err := e.WaitUnclickable(AllowAbsent())
	var tErr *core.TimeoutError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if tErr.State != "unclickable or absent" {
		t.Errorf("timeout state = %q, want %q", tErr.State, "unclickable or absent")
	}
}

func TestWaitSelected(t *testing.T) {
	n := visibleNode()
	n.Selected = true
	owner, _ := newFixture(n)
	e := New(owner, loginButton)

	res, err := e.WaitSelected()
	if err != nil {
		t.Fatalf("WaitSelected: %v", err)
	}
	if !res.Satisfied {
		t.Error("expected satisfied resolution")
	}
	if e.SelectCache() == nil || e.PresentCache() == nil {
		t.Error("selected wait must populate select and present slots")
	}
	if e.VisibleCache() != nil {
		t.Error("selected wait must not populate the visible slot")
	}
}

func TestIndexedElement(t *testing.T) {
	first := visibleNode()
	second := visibleNode()
	second.NodeText = "Second"
	owner, _ := newFixture(first, second)

	e := New(owner, loginButton, WithIndex(1))
	text, err := e.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Second" {
		t.Errorf("Text = %q, want %q", text, "Second")
	}
}

func TestIndexOutOfRange(t *testing.T) {
	owner, _ := newFixture(visibleNode())

	// Out-of-range reads as not-found, so a presence wait times out rather
	// than erroring immediately.
	e := New(owner, loginButton, WithIndex(5))
	_, err := e.WaitPresent()
	if !core.IsTimeout(err) {
		t.Fatalf("expected timeout for out-of-range index, got %v", err)
	}

	// And an absence wait on the same index succeeds at once.
	res, err := e.WaitAbsent()
	if err != nil {
		t.Fatalf("WaitAbsent: %v", err)
	}
	if !res.Absent {
		t.Error("out-of-range index must read as absent")
	}
}

func TestSessionReplacementInvalidatesCaches(t *testing.T) {
	owner, s1 := newFixture(visibleNode())
	e := New(owner, loginButton)

	if _, err := e.WaitClickable(); err != nil {
		t.Fatalf("WaitClickable: %v", err)
	}
	if e.ClickableCache() == nil {
		t.Fatal("cache not populated")
	}

	s2 := mock.NewSession(core.Rect{Width: 1080, Height: 2400})
	s2.Add(loginButton, visibleNode())
	owner.s = s2

	res, err := e.WaitPresent()
	if err != nil {
		t.Fatalf("wait on new session: %v", err)
	}
	if !res.Satisfied {
		t.Error("expected satisfied resolution")
	}
	if got := s2.FindOneCalls(loginButton); got != 1 {
		t.Errorf("new session query count = %d, want 1", got)
	}
	if got := s1.FindOneCalls(loginButton); got != 1 {
		t.Errorf("old session query count = %d, want 1", got)
	}
	if e.ClickableCache() != nil {
		t.Error("clickable slot survived session replacement")
	}
}

func TestRelocateClearsCaches(t *testing.T) {
	owner, _ := newFixture(visibleNode())
	e := New(owner, loginButton, WithTimeout(time.Minute))

	if _, err := e.WaitPresent(); err != nil {
		t.Fatalf("WaitPresent: %v", err)
	}

	other := core.By(core.ByID, "other")
	e.Relocate(other)
	if e.PresentCache() != nil {
		t.Error("relocate must clear caches")
	}
	if e.Locator() != other {
		t.Errorf("Locator = %v, want %v", e.Locator(), other)
	}
	// Declaration attributes reset unless re-supplied.
	if e.Timeout() != owner.cfg.Timeout {
		t.Errorf("Timeout = %v, want process default %v", e.Timeout(), owner.cfg.Timeout)
	}
}

func TestNoSession(t *testing.T) {
	e := New(&testOwner{cfg: fastConfig()}, loginButton)
	if _, err := e.WaitPresent(); !errors.Is(err, core.ErrNoSession) {
		t.Errorf("error = %v, want ErrNoSession", err)
	}
}

func boolPtr(b bool) *bool { return &b }
