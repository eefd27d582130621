package browse

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Clark-Hu/movie-browser/internal/catalog"
	"github.com/Clark-Hu/movie-browser/internal/domain"
	"github.com/Clark-Hu/movie-browser/internal/event"
)

// Status describes what the view currently represents.
type Status int

const (
	// StatusIdle means nothing has been searched yet.
	StatusIdle Status = iota
	// StatusLoading means a fetch is outstanding; Movies may be stale.
	StatusLoading
	// StatusReady means Movies holds a derived, non-empty result.
	StatusReady
	// StatusEmpty means the last search succeeded with nothing to show.
	StatusEmpty
	// StatusError means the last search failed; Movies is empty.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// View is the rendered result list. Generation increases on every full
// re-render; renderers reset their scroll position when it changes.
type View struct {
	Status     Status
	Movies     []domain.Movie
	Generation uint64
	Err        error
}

// Snapshot is the payload delivered with every notification.
type Snapshot struct {
	State    QueryState
	View     View
	Tags     []string
	MoreTags bool
}

// Notification kinds published by the controller.
const (
	StateChanged event.Kind = iota
	ViewChanged
	MenuChanged
	TagsChanged
)

// Options configures a Controller.
type Options struct {
	Strategy Strategy
	TagBatch int
	Logger   *log.Logger
	// Now supplies "today" for date windows. Defaults to time.Now.
	Now func() time.Time
}

// Controller owns the query state and the last fetched result set, talks to
// the search backend, and publishes derived views to subscribers.
type Controller struct {
	backend  catalog.Client
	strategy Strategy
	logger   *log.Logger
	now      func() time.Time
	bus      *event.Bus[Snapshot]

	mu      sync.Mutex
	state   QueryState
	results []domain.Movie
	fetched bool
	lastErr error
	view    View
	issued  uint64
	applied uint64
	shelf   *TagShelf
}

// New constructs a controller with default state for the chosen strategy.
func New(backend catalog.Client, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyRelevancy
	}
	return &Controller{
		backend:  backend,
		strategy: opts.Strategy,
		logger:   opts.Logger,
		now:      opts.Now,
		bus:      event.NewBus[Snapshot](opts.Logger),
		state:    DefaultState(opts.Strategy),
		shelf:    NewTagShelf(opts.TagBatch),
	}
}

// Subscribe registers handler for a notification kind. Handlers run
// synchronously on the goroutine that caused the change and may call back
// into the controller.
func (c *Controller) Subscribe(kind event.Kind, handler func(event.Kind, Snapshot)) {
	c.bus.Subscribe(kind, handler)
}

// Init loads the tag shelf and, for the relevancy strategy, the full listing.
func (c *Controller) Init(ctx context.Context) {
	c.LoadTags(ctx)
	if c.strategy == StrategyRelevancy {
		c.Fetch(ctx)
	}
}

// LoadTags refreshes the tag shelf from the backend. Failures leave the shelf empty.
func (c *Controller) LoadTags(ctx context.Context) {
	tags, err := c.backend.CommonTags(ctx)
	if err != nil {
		c.logger.Printf("browse: fetch common tags failed: %v", err)
		tags = nil
	}

	c.mu.Lock()
	c.shelf.Load(tags)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Publish(TagsChanged, snap)
}

// Dispatch runs an action through Reduce and applies its effect.
func (c *Controller) Dispatch(ctx context.Context, a Action) error {
	c.mu.Lock()
	prev := c.state
	next, effect, err := Reduce(prev, a)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.mu.Unlock()

	c.applyAndMaybeRefetch(ctx, prev, next, effect)
	return nil
}

// applyAndMaybeRefetch is the single place where a state transition turns
// into a re-derive, a re-fetch, or a plain notification.
func (c *Controller) applyAndMaybeRefetch(ctx context.Context, prev, next QueryState, effect Effect) {
	c.mu.Lock()
	switch effect {
	case EffectTags:
		c.shelf.ShowMore()
	case EffectRederive:
		c.rederiveLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if prev != next {
		c.bus.Publish(StateChanged, snap)
	}
	if prev.OpenMenu != next.OpenMenu {
		c.bus.Publish(MenuChanged, snap)
	}
	switch effect {
	case EffectTags:
		c.bus.Publish(TagsChanged, snap)
	case EffectRederive:
		c.bus.Publish(ViewChanged, snap)
	case EffectRefetch:
		c.Fetch(ctx)
	}
}

// SetQuery runs a free-text search. Blank text is a no-op.
func (c *Controller) SetQuery(ctx context.Context, text string) error {
	return c.Dispatch(ctx, SetQuery{Text: text})
}

// SelectTag runs a tag search, or deselects the tag if it is already active.
func (c *Controller) SelectTag(ctx context.Context, tag string) error {
	return c.Dispatch(ctx, SelectTag{Tag: tag})
}

// ClearTagSelection drops the active tag without fetching.
func (c *Controller) ClearTagSelection() {
	_ = c.Dispatch(context.Background(), ClearTag{})
}

// SetSortField re-sorts the cached results.
func (c *Controller) SetSortField(field SortField) error {
	return c.Dispatch(context.Background(), SetSortField{Field: field})
}

// SetSortOrder flips the cached results' order.
func (c *Controller) SetSortOrder(order SortOrder) error {
	return c.Dispatch(context.Background(), SetSortOrder{Order: order})
}

// SetDateWindow re-filters the cached results.
func (c *Controller) SetDateWindow(window DateWindow) error {
	return c.Dispatch(context.Background(), SetDateWindow{Window: window})
}

// SetResultLimit re-limits the cached results.
func (c *Controller) SetResultLimit(limit Limit) error {
	return c.Dispatch(context.Background(), SetResultLimit{Limit: limit})
}

// ToggleMenu opens menu, closing any other, or closes it if already open.
func (c *Controller) ToggleMenu(menu MenuID) error {
	return c.Dispatch(context.Background(), ToggleMenu{Menu: menu})
}

// ClickOutside closes the open menu, if any.
func (c *Controller) ClickOutside() {
	_ = c.Dispatch(context.Background(), ClickOutside{})
}

// ShowMoreTags reveals the next tag batch.
func (c *Controller) ShowMoreTags() {
	_ = c.Dispatch(context.Background(), ShowMoreTags{})
}

// Fetch queries the backend for the current mode and replaces the result
// set. Only the most recently issued fetch may apply its response; responses
// to earlier fetches are dropped whenever they arrive. Backend failures are
// logged and surface as an empty view with StatusError.
func (c *Controller) Fetch(ctx context.Context) {
	c.mu.Lock()
	c.issued++
	token := c.issued
	state := c.state
	c.view.Status = StatusLoading
	c.view.Err = nil
	loading := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Publish(ViewChanged, loading)

	movies, requested, err := c.request(ctx, state)

	c.mu.Lock()
	if token != c.issued {
		c.mu.Unlock()
		c.logger.Printf("browse: discarding superseded response #%d for %s", token, state.Mode)
		return
	}
	c.applied = token
	c.fetched = requested
	c.lastErr = err
	if err != nil {
		c.logger.Printf("browse: fetch #%d for %s failed: %v", token, state.Mode, err)
		c.results = nil
	} else {
		c.results = movies
	}
	c.rederiveLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Publish(ViewChanged, snap)
}

func (c *Controller) request(ctx context.Context, state QueryState) ([]domain.Movie, bool, error) {
	mode := state.Mode
	if c.strategy == StrategyRelevancy {
		switch mode.Kind {
		case ModeTag:
			movies, err := c.backend.SearchRelevancy(ctx, mode.Value, true)
			return movies, true, err
		case ModeFreeText:
			movies, err := c.backend.SearchRelevancy(ctx, mode.Value, false)
			return movies, true, err
		default:
			movies, err := c.backend.SearchRelevancy(ctx, "", false)
			return movies, true, err
		}
	}

	// The result set must stay unfiltered and unsorted server-side: date,
	// sort and limit are applied locally on every re-derive.
	hints := catalog.Hints{DateFilter: string(AllYears)}
	switch mode.Kind {
	case ModeTag:
		movies, err := c.backend.SearchTag(ctx, mode.Value, hints)
		return movies, true, err
	case ModeFreeText:
		movies, err := c.backend.SearchText(ctx, mode.Value, hints)
		return movies, true, err
	default:
		return nil, false, nil
	}
}

func (c *Controller) rederiveLocked() {
	c.view.Generation++
	c.view.Movies = DeriveView(c.results, c.state, c.now())
	c.view.Err = nil

	switch {
	case c.issued != c.applied:
		c.view.Status = StatusLoading
	case c.lastErr != nil:
		c.view.Status = StatusError
		c.view.Err = c.lastErr
	case !c.fetched:
		c.view.Status = StatusIdle
	case len(c.view.Movies) == 0:
		c.view.Status = StatusEmpty
	default:
		c.view.Status = StatusReady
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	view := c.view
	view.Movies = append([]domain.Movie(nil), c.view.Movies...)
	return Snapshot{
		State:    c.state,
		View:     view,
		Tags:     c.shelf.Visible(),
		MoreTags: c.shelf.HasMore(),
	}
}

// State returns the current query state.
func (c *Controller) State() QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the current derived view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked().View
}

// Results returns a copy of the last fetched, unfiltered result set.
func (c *Controller) Results() []domain.Movie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Movie(nil), c.results...)
}

// Snapshot returns the full current state, view and tag shelf.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}
