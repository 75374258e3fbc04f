package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posmatch/backend/internal/domain"
)

const testDebounce = 20 * time.Millisecond

// fakeResolver blocks each call until the test releases the query
type fakeResolver struct {
	mu      sync.Mutex
	calls   []string
	gates   map[string]chan struct{}
	errs    map[string]error
	started chan string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		gates:   make(map[string]chan struct{}),
		errs:    make(map[string]error),
		started: make(chan string, 16),
	}
}

// hold makes Resolve for query block until release is called
func (f *fakeResolver) hold(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[query] = make(chan struct{})
}

func (f *fakeResolver) release(query string) {
	f.mu.Lock()
	gate := f.gates[query]
	f.mu.Unlock()
	close(gate)
}

func (f *fakeResolver) fail(query string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[query] = err
}

func (f *fakeResolver) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeResolver) Resolve(ctx context.Context, raw string) (*domain.RecommendationResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, raw)
	gate := f.gates[raw]
	err := f.errs[raw]
	f.mu.Unlock()

	f.started <- raw

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	return &domain.RecommendationResult{
		Query:      raw,
		Items:      []domain.RecommendationItem{{Product: domain.Product{Identifier: raw, Name: raw}}},
		SourceTier: domain.TierLocalQueryMatch,
	}, nil
}

func newTestController(t *testing.T, r Resolver) *Controller {
	t.Helper()
	c := NewController(r, Options{Debounce: testDebounce})
	t.Cleanup(c.Close)
	return c
}

func waitStarted(t *testing.T, f *fakeResolver, want string) {
	t.Helper()
	select {
	case got := <-f.started:
		require.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatalf("resolver was not called with %q", want)
	}
}

func TestNewController_Defaults(t *testing.T) {
	c := NewController(newFakeResolver(), Options{})
	defer c.Close()

	assert.Equal(t, DefaultDebounce, c.debounce)
	assert.NotNil(t, c.logger)
	assert.Equal(t, StatusIdle, c.State().Status)
}

func TestController_DebouncesKeystrokes(t *testing.T) {
	f := newFakeResolver()
	c := newTestController(t, f)

	for _, q := range []string{"c", "co", "cof", "coffee"} {
		c.Input(q)
	}

	waitStarted(t, f, "coffee")
	assert.Eventually(t, func() bool {
		return c.State().Status == StatusResults
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"coffee"}, f.Calls())
	s := c.State()
	assert.Equal(t, "coffee", s.Query)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "coffee", s.Items[0].Product.Identifier)
	assert.Equal(t, domain.TierLocalQueryMatch, s.SourceTier)
}

func TestController_LoadingWhileInFlight(t *testing.T) {
	f := newFakeResolver()
	f.hold("kiosk")
	c := newTestController(t, f)

	c.Input("kiosk")
	waitStarted(t, f, "kiosk")

	s := c.State()
	assert.Equal(t, StatusLoading, s.Status)
	assert.Equal(t, "kiosk", s.Query)
	assert.Empty(t, s.Items)

	f.release("kiosk")
	assert.Eventually(t, func() bool {
		return c.State().Status == StatusResults
	}, time.Second, 5*time.Millisecond)
}

func TestController_LastQueryWins(t *testing.T) {
	f := newFakeResolver()
	f.hold("first")
	c := newTestController(t, f)

	c.Input("first")
	waitStarted(t, f, "first")

	c.Input("second")
	waitStarted(t, f, "second")
	assert.Eventually(t, func() bool {
		return c.State().Status == StatusResults
	}, time.Second, 5*time.Millisecond)

	// the earlier query settles after the later one
	f.release("first")
	time.Sleep(3 * testDebounce)

	s := c.State()
	assert.Equal(t, StatusResults, s.Status)
	assert.Equal(t, "second", s.Query)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "second", s.Items[0].Product.Identifier)
}

func TestController_ClearReturnsToIdle(t *testing.T) {
	f := newFakeResolver()
	c := newTestController(t, f)

	c.Input("coffee")
	waitStarted(t, f, "coffee")
	assert.Eventually(t, func() bool {
		return c.State().Status == StatusResults
	}, time.Second, 5*time.Millisecond)

	c.Input("   ")

	s := c.State()
	assert.Equal(t, StatusIdle, s.Status)
	assert.Empty(t, s.Items)
	assert.Empty(t, s.Query)
}

func TestController_ClearDropsPendingQuery(t *testing.T) {
	f := newFakeResolver()
	f.hold("retail")
	c := newTestController(t, f)

	c.Input("retail")
	waitStarted(t, f, "retail")
	c.Input("")
	f.release("retail")
	time.Sleep(3 * testDebounce)

	assert.Equal(t, StatusIdle, c.State().Status)
}

func TestController_ErrorState(t *testing.T) {
	f := newFakeResolver()
	f.fail("broken", errors.New("boom"))
	c := newTestController(t, f)

	c.Input("broken")
	waitStarted(t, f, "broken")
	assert.Eventually(t, func() bool {
		return c.State().Status == StatusError
	}, time.Second, 5*time.Millisecond)

	s := c.State()
	assert.Equal(t, ErrorMessage, s.Error)
	assert.Empty(t, s.Items)
}

func TestController_OnChangeSequence(t *testing.T) {
	f := newFakeResolver()

	var mu sync.Mutex
	var seen []Status
	c := NewController(f, Options{
		Debounce: testDebounce,
		OnChange: func(s Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, s.Status)
		},
	})
	defer c.Close()

	c.Input("coffee")
	waitStarted(t, f, "coffee")
	assert.Eventually(t, func() bool {
		return c.State().Status == StatusResults
	}, time.Second, 5*time.Millisecond)
	c.Input("")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusLoading, StatusResults, StatusIdle}, seen)
}

func TestController_CloseDropsLateResults(t *testing.T) {
	f := newFakeResolver()
	f.hold("late")
	c := NewController(f, Options{Debounce: testDebounce})

	c.Input("late")
	waitStarted(t, f, "late")
	c.Close()
	time.Sleep(3 * testDebounce)

	assert.Equal(t, StatusLoading, c.State().Status)

	// input after close is ignored
	c.Input("ignored")
	time.Sleep(3 * testDebounce)
	assert.Equal(t, []string{"late"}, f.Calls())

	c.Close()
}

func TestController_GenerationIncreases(t *testing.T) {
	c := newTestController(t, newFakeResolver())

	c.Input("")
	first := c.State().Generation
	c.Input("")
	assert.Greater(t, c.State().Generation, first)
}

func TestPlaceholder(t *testing.T) {
	assert.Contains(t, Placeholder(), SampleQueries[0])
	assert.NotEmpty(t, SampleQueries)
}
