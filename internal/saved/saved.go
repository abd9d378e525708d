// Package saved implements the saved projects screen.
package saved

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"diyclient/internal/engage"
	"diyclient/internal/model"
	"diyclient/internal/ui"
)

const msgLoadFailed = "Failed to load saved projects. Please try again."

// API is the part of the gateway the saved screen uses.
type API interface {
	engage.API
	SavedProjects(ctx context.Context) ([]model.Project, error)
}

// State is what the saved screen renders.
type State struct {
	Projects []model.Project
	Loading  bool
	Loaded   bool
	Error    string
}

// Empty reports whether a completed load found no saved projects.
func (s State) Empty() bool {
	return s.Loaded && !s.Loading && s.Error == "" && len(s.Projects) == 0
}

// Controller drives the saved projects screen.
type Controller struct {
	api     API
	guard   engage.Guard
	toggler *engage.Toggler
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a saved projects controller.
func NewController(api API, guard engage.Guard, alerts ui.Alerter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "saved")
	return &Controller{
		api:     api,
		guard:   guard,
		toggler: engage.NewToggler(api, guard, alerts, logger),
		logger:  logger,
	}
}

// State returns a snapshot of the screen state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mount loads the viewer's saved projects. Without a session nothing is
// requested.
func (c *Controller) Mount(ctx context.Context) error {
	if _, err := c.guard.Require(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	projects, err := c.api.SavedProjects(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	c.state.Loaded = true
	if err != nil {
		c.logger.Error("fetch saved projects", "error", err)
		c.state.Error = msgLoadFailed
		return fmt.Errorf("load saved projects: %w", err)
	}
	c.state.Error = ""
	c.state.Projects = projects
	if c.state.Projects == nil {
		c.state.Projects = []model.Project{}
	}
	return nil
}

// Unsave removes id from the viewer's bookmarks and drops it from the list.
func (c *Controller) Unsave(ctx context.Context, id string) error {
	if err := c.toggler.Unsave(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Projects, _ = model.RemoveByID(c.state.Projects, id)
	c.mu.Unlock()
	return nil
}

// ToggleLike likes or unlikes one saved project.
func (c *Controller) ToggleLike(ctx context.Context, id string) error {
	patch, err := c.toggler.Like(ctx, id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Projects, _ = model.PatchByID(c.state.Projects, id, patch)
	c.mu.Unlock()
	return nil
}
