// Package session drives a single interactive search box: it debounces
// keystrokes, issues at most one resolution per quiet period and applies
// only the result of the most recently issued query.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/posmatch/backend/internal/domain"
	"github.com/posmatch/backend/internal/metrics"
)

// DefaultDebounce is the quiet period after the last keystroke before a query is resolved
const DefaultDebounce = 600 * time.Millisecond

// ErrorMessage is shown when resolution fails outright
const ErrorMessage = "We couldn't process your request right now. Please try again."

// SampleQueries is the rotation shown while the search box is idle
var SampleQueries = []string{
	"I run a busy coffee shop",
	"Looking for a POS for my food truck",
	"I need a fast checkout for my retail store",
	"Full service restaurant with a kitchen",
	"Self-service ordering for a quick service restaurant",
}

// Placeholder returns the static idle-state prompt
func Placeholder() string {
	return "Describe your business, e.g. \"" + SampleQueries[0] + "\""
}

// Resolver produces a recommendation result for raw query text
type Resolver interface {
	Resolve(ctx context.Context, raw string) (*domain.RecommendationResult, error)
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusResults Status = "results"
	StatusError   Status = "error"
)

// Snapshot is a point-in-time copy of the visible session state
type Snapshot struct {
	Status          Status
	Query           string
	Items           []domain.RecommendationItem
	AdvisoryMessage string
	SourceTier      domain.Tier
	Error           string
	Generation      uint64
}

// Options configures a Controller
type Options struct {
	Debounce time.Duration
	// OnChange is invoked with the controller lock held after every state
	// transition. It must not call back into the Controller.
	OnChange func(Snapshot)
	Logger   *zap.Logger
}

// Controller owns the state of one query session
type Controller struct {
	resolver Resolver
	debounce time.Duration
	onChange func(Snapshot)
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	state      Snapshot
	closed     bool
}

// NewController creates an idle Controller
func NewController(resolver Resolver, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		resolver: resolver,
		debounce: opts.Debounce,
		onChange: opts.OnChange,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		state:    Snapshot{Status: StatusIdle},
	}
}

// Input records a change to the query text. Every call supersedes any
// pending or in-flight query. Blank text returns the session to idle.
func (c *Controller) Input(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.generation++
	gen := c.generation
	c.stopTimer()

	if strings.TrimSpace(raw) == "" {
		c.setState(Snapshot{Status: StatusIdle, Generation: gen})
		return
	}

	c.timer = time.AfterFunc(c.debounce, func() {
		c.run(gen, raw)
	})
}

// State returns a copy of the current session state
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Close stops the debounce timer and cancels in-flight work. Results
// arriving after Close are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.stopTimer()
	c.cancel()
}

func (c *Controller) run(gen uint64, raw string) {
	c.mu.Lock()
	if !c.current(gen) {
		c.mu.Unlock()
		return
	}
	c.setState(Snapshot{Status: StatusLoading, Query: raw, Generation: gen})
	c.mu.Unlock()

	result, err := c.resolver.Resolve(c.ctx, raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.current(gen) {
		metrics.StaleResultsDropped.Inc()
		c.logger.Debug("Dropping stale result",
			zap.String("query", raw),
			zap.Uint64("generation", gen),
			zap.Uint64("current", c.generation))
		return
	}

	if err == nil && result == nil {
		result = &domain.RecommendationResult{SourceTier: domain.TierNone}
	}
	if err != nil {
		c.logger.Warn("Resolution failed", zap.String("query", raw), zap.Error(err))
		c.setState(Snapshot{Status: StatusError, Query: raw, Error: ErrorMessage, Generation: gen})
		return
	}

	c.setState(Snapshot{
		Status:          StatusResults,
		Query:           raw,
		Items:           result.Items,
		AdvisoryMessage: result.AdvisoryMessage,
		SourceTier:      result.SourceTier,
		Generation:      gen,
	})
}

// current reports whether gen is still the live query. Caller holds c.mu.
func (c *Controller) current(gen uint64) bool {
	return !c.closed && gen == c.generation
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) setState(s Snapshot) {
	c.state = s
	if c.onChange != nil {
		c.onChange(s.clone())
	}
}

func (s Snapshot) clone() Snapshot {
	if s.Items != nil {
		items := make([]domain.RecommendationItem, len(s.Items))
		copy(items, s.Items)
		s.Items = items
	}
	return s
}
