// Package pager implements the paginated topic list controller.
//
// A Controller owns the list state for one Filter. Refresh and LoadMore do
// the in-flight check synchronously and hand back a Fetch; the caller runs
// the Fetch wherever it likes (a tea.Cmd, a goroutine, inline) and feeds the
// Result back through Apply on the owning context. At most one Fetch is
// outstanding at any time, so results are applied in dispatch order.
package pager

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
)

// DefaultLimit is the page size used when none is configured
const DefaultLimit = 40

// Option configures a Controller
type Option func(*Controller)

// WithLimit sets the page size. Non-positive values are ignored.
func WithLimit(limit int) Option {
	return func(c *Controller) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithTimeout bounds each fetch with a context deadline. Zero leaves timeouts
// to the repository.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// Controller is the list synchronization controller for one Filter
type Controller struct {
	mu sync.Mutex

	fetcher domain.TopicRepository
	filter  domain.Filter
	limit   int
	timeout time.Duration
	logger  zerolog.Logger

	phase   phase
	items   []domain.Topic
	loaded  bool
	hasMore bool
	lastErr *ListError

	// gen is bumped by Close; results carrying an older generation are dropped
	gen    uint64
	closed bool
}

// New creates a controller in the initial state: nothing loaded, not
// loading, more pages assumed.
func New(fetcher domain.TopicRepository, filter domain.Filter, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		filter:  filter,
		limit:   DefaultLimit,
		logger:  zerolog.Nop(),
		phase:   idlePhase{},
		hasMore: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "pager").Str("filter", filter.String()).Logger()
	return c
}

// Filter returns the filter this controller lists
func (c *Controller) Filter() domain.Filter {
	return c.filter
}

// Limit returns the page size
func (c *Controller) Limit() int {
	return c.limit
}

// Fetch is a dispatched page request waiting to be run
type Fetch struct {
	Request Request

	gen     uint64
	fetcher domain.TopicRepository
	timeout time.Duration
}

// Result is the outcome of running a Fetch
type Result struct {
	Request Request
	Topics  []domain.Topic
	Err     error

	gen uint64
}

// Run performs the remote call. It blocks and does not touch controller
// state, so it is safe to call from any goroutine.
func (f *Fetch) Run(ctx context.Context) Result {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	topics, err := f.fetcher.ListTopics(ctx, f.Request.Filter, f.Request.Offset, f.Request.Limit)
	return Result{Request: f.Request, Topics: topics, Err: err, gen: f.gen}
}

// Refresh dispatches a request for the first page. It returns false, and
// changes nothing, when a request is already in flight.
func (c *Controller) Refresh() (*Fetch, bool) {
	return c.dispatch(TriggerRefresh)
}

// Retry is Refresh, offered by blocking error views
func (c *Controller) Retry() (*Fetch, bool) {
	return c.Refresh()
}

// LoadMore dispatches a request for the page after the held items. It returns
// false, and changes nothing, when a request is in flight or the last page
// has been reached.
func (c *Controller) LoadMore() (*Fetch, bool) {
	return c.dispatch(TriggerLoadMore)
}

func (c *Controller) dispatch(trigger Trigger) (*Fetch, bool) {
	c.mu.Lock()

	if reason := c.rejectLocked(trigger); reason != "" {
		c.mu.Unlock()
		ignoredTotal.WithLabelValues(trigger.String(), reason).Inc()
		c.logger.Debug().Str("trigger", trigger.String()).Str("reason", reason).Msg("trigger ignored")
		return nil, false
	}

	req := Request{Filter: c.filter, Limit: c.limit, Trigger: trigger}
	if trigger == TriggerLoadMore {
		req.Offset = len(c.items)
	}
	c.phase = loadingPhase{req: req, gen: c.gen}
	fetch := &Fetch{Request: req, gen: c.gen, fetcher: c.fetcher, timeout: c.timeout}
	c.mu.Unlock()

	dispatchTotal.WithLabelValues(trigger.String()).Inc()
	c.logger.Debug().Str("trigger", trigger.String()).Int("offset", req.Offset).Int("limit", req.Limit).Msg("page requested")
	return fetch, true
}

// rejectLocked returns why a trigger cannot dispatch, or "" when it can
func (c *Controller) rejectLocked(trigger Trigger) string {
	switch {
	case c.closed:
		return reasonClosed
	case !c.phase.accepts():
		return reasonInFlight
	case trigger == TriggerLoadMore && !c.hasMore:
		return reasonNoMore
	default:
		return ""
	}
}

// Apply folds a Result into the state. It returns false when the result was
// dropped because the controller was closed or the result does not belong to
// the request in flight.
func (c *Controller) Apply(res Result) (Snapshot, bool) {
	c.mu.Lock()

	current, ok := c.phase.(loadingPhase)
	if c.closed || res.gen != c.gen || !ok || current.req != res.Request {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Debug().Str("trigger", res.Request.Trigger.String()).Msg("stale result dropped")
		return snap, false
	}

	c.phase = idlePhase{}
	req := res.Request

	if res.Err != nil {
		// Items are left untouched so a failed page never blanks the list
		c.lastErr = Classify(res.Err)
		snap := c.snapshotLocked()
		c.mu.Unlock()

		failuresTotal.WithLabelValues(c.lastErr.Kind.String()).Inc()
		c.logger.Warn().
			Err(res.Err).
			Str("trigger", req.Trigger.String()).
			Str("kind", c.lastErr.Kind.String()).
			Int("status_code", c.lastErr.StatusCode).
			Int("offset", req.Offset).
			Msg("page request failed")
		return snap, true
	}

	if req.Offset == 0 {
		c.items = append([]domain.Topic(nil), res.Topics...)
	} else {
		c.items = append(c.items, res.Topics...)
	}
	c.loaded = true
	c.hasMore = len(res.Topics) == req.Limit
	c.lastErr = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug().
		Str("trigger", req.Trigger.String()).
		Int("received", len(res.Topics)).
		Int("total", len(snap.Items)).
		Bool("has_more", snap.HasMore).
		Msg("page applied")
	return snap, true
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close tears the controller down. Outstanding results are dropped when they
// arrive and further triggers are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.gen++
	c.phase = idlePhase{}
	c.logger.Debug().Msg("controller closed")
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Filter:  c.filter,
		Loaded:  c.loaded,
		HasMore: c.hasMore,
		Err:     c.lastErr,
	}
	if c.items != nil {
		// Full slice expression: appends by the holder never reach our array
		snap.Items = c.items[:len(c.items):len(c.items)]
	}
	if lp, ok := c.phase.(loadingPhase); ok {
		snap.Loading = true
		snap.Pending = lp.req.Trigger
	}
	return snap
}
