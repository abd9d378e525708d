// Package feed implements the paginated, filterable project feed.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"diyclient/internal/engage"
	"diyclient/internal/gateway"
	"diyclient/internal/model"
	"diyclient/internal/ui"
)

// PageSize is the number of projects per feed page.
const PageSize = 12

const msgLoadFailed = "Failed to load projects. Please try again."

// Filter keys accepted by SetFilter.
const (
	FilterCategory   = "category"
	FilterDifficulty = "difficulty"
	FilterSearch     = "search"
	FilterSortBy     = "sortBy"
	FilterSortOrder  = "sortOrder"
)

// All is the sentinel for "no category/difficulty restriction".
const All = "all"

// SortOptions are the fields the feed can be ordered by.
var SortOptions = []string{"createdAt", "likes", "views", "totalCost"}

// Filters narrow and order the feed.
type Filters struct {
	Category   string
	Difficulty string
	Search     string
	SortBy     string
	SortOrder  string
}

// DefaultFilters returns the filters a fresh feed starts with.
func DefaultFilters() Filters {
	return Filters{
		Category:   All,
		Difficulty: All,
		SortBy:     "createdAt",
		SortOrder:  "desc",
	}
}

// API is the part of the gateway the feed uses.
type API interface {
	engage.API
	ListProjects(ctx context.Context, params gateway.ListParams) (*model.ProjectPage, error)
	Categories(ctx context.Context) ([]model.CategoryCount, error)
	Stats(ctx context.Context) (*model.PlatformStats, error)
}

// State is what the feed screen renders.
type State struct {
	Projects   []model.Project
	Filters    Filters
	Pagination model.Pagination
	Categories []model.CategoryCount
	Stats      model.PlatformStats
	Loading    bool
	Loaded     bool
	Error      string
}

// Empty reports whether a completed load returned no projects.
func (s State) Empty() bool {
	return s.Loaded && !s.Loading && s.Error == "" && len(s.Projects) == 0
}

// Controller drives the feed screen. Overlapping loads are applied in the
// order their responses arrive.
type Controller struct {
	api     API
	toggler *engage.Toggler
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a feed controller with default filters on page 1.
func NewController(api API, guard engage.Guard, alerts ui.Alerter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "feed")
	return &Controller{
		api:     api,
		toggler: engage.NewToggler(api, guard, alerts, logger),
		logger:  logger,
		state: State{
			Filters:    DefaultFilters(),
			Pagination: model.Pagination{CurrentPage: 1},
		},
	}
}

// State returns a snapshot of the screen state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mount loads the first page plus the category list and platform stats.
// Failures of the latter two are logged only.
func (c *Controller) Mount(ctx context.Context) error {
	if cats, err := c.api.Categories(ctx); err != nil {
		c.logger.Error("fetch categories", "error", err)
	} else {
		c.mu.Lock()
		c.state.Categories = cats
		c.mu.Unlock()
	}

	if stats, err := c.api.Stats(ctx); err != nil {
		c.logger.Error("fetch stats", "error", err)
	} else {
		c.mu.Lock()
		c.state.Stats = *stats
		c.mu.Unlock()
	}

	return c.Load(ctx)
}

// Load fetches the current page with the current filters. On failure the
// previous projects are kept and Error is set.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	f := c.state.Filters
	params := gateway.ListParams{
		Page:       c.state.Pagination.CurrentPage,
		Limit:      PageSize,
		Category:   f.Category,
		Difficulty: f.Difficulty,
		Search:     f.Search,
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
	}
	c.state.Loading = true
	c.mu.Unlock()

	page, err := c.api.ListProjects(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	c.state.Loaded = true
	if err != nil {
		c.logger.Error("fetch projects", "page", params.Page, "error", err)
		c.state.Error = msgLoadFailed
		return fmt.Errorf("load feed: %w", err)
	}
	c.state.Error = ""
	c.state.Projects = page.Projects
	if c.state.Projects == nil {
		c.state.Projects = []model.Project{}
	}
	c.state.Pagination = page.Pagination
	return nil
}

// SetFilter changes one filter, returns to page 1 and reloads.
func (c *Controller) SetFilter(ctx context.Context, key, value string) error {
	c.mu.Lock()
	switch key {
	case FilterCategory:
		c.state.Filters.Category = value
	case FilterDifficulty:
		c.state.Filters.Difficulty = value
	case FilterSearch:
		c.state.Filters.Search = value
	case FilterSortBy:
		c.state.Filters.SortBy = value
	case FilterSortOrder:
		c.state.Filters.SortOrder = value
	default:
		c.mu.Unlock()
		return fmt.Errorf("unknown filter %q", key)
	}
	c.state.Pagination.CurrentPage = 1
	c.mu.Unlock()

	return c.Load(ctx)
}

// Apply replaces every filter, moves to page n and reloads once.
func (c *Controller) Apply(ctx context.Context, f Filters, n int) error {
	if n < 1 {
		return fmt.Errorf("invalid page %d", n)
	}
	c.mu.Lock()
	c.state.Filters = f
	c.state.Pagination.CurrentPage = n
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetPage moves to page n and reloads.
func (c *Controller) SetPage(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("invalid page %d", n)
	}
	c.mu.Lock()
	c.state.Pagination.CurrentPage = n
	c.mu.Unlock()
	return c.Load(ctx)
}

// NextPage loads the following page when there is one.
func (c *Controller) NextPage(ctx context.Context) error {
	c.mu.Lock()
	p := c.state.Pagination
	c.mu.Unlock()
	if !p.HasNextPage {
		return nil
	}
	return c.SetPage(ctx, p.CurrentPage+1)
}

// PrevPage loads the preceding page when there is one.
func (c *Controller) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	p := c.state.Pagination
	c.mu.Unlock()
	if !p.HasPrevPage {
		return nil
	}
	return c.SetPage(ctx, p.CurrentPage-1)
}

// ToggleLike likes or unlikes one project and patches only that project.
func (c *Controller) ToggleLike(ctx context.Context, id string) error {
	patch, err := c.toggler.Like(ctx, id)
	if err != nil {
		return err
	}
	c.apply(id, patch)
	return nil
}

// ToggleSave saves or unsaves one project and patches only that project.
func (c *Controller) ToggleSave(ctx context.Context, id string) error {
	patch, err := c.toggler.Save(ctx, id)
	if err != nil {
		return err
	}
	c.apply(id, patch)
	return nil
}

func (c *Controller) apply(id string, patch engage.Patch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Projects, _ = model.PatchByID(c.state.Projects, id, patch)
}
