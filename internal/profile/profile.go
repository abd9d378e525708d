// Package profile implements the user profile screen.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"diyclient/internal/engage"
	apperrors "diyclient/internal/errors"
	"diyclient/internal/model"
	"diyclient/internal/ui"
)

// PageSize is the number of projects per profile page.
const PageSize = 12

const (
	msgLoadFailed         = "Failed to load profile. Please try again."
	msgProjectsLoadFailed = "Failed to load projects. Please try again."
)

// Tab selects which part of the profile is shown.
type Tab string

const (
	TabProjects   Tab = "projects"
	TabRecent     Tab = "recent"
	TabCategories Tab = "categories"
)

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabProjects, TabRecent, TabCategories:
		return true
	}
	return false
}

// API is the part of the gateway the profile screen uses.
type API interface {
	engage.API
	Profile(ctx context.Context, userID string) (*model.Profile, error)
	UserProjects(ctx context.Context, userID string, page, limit int) (*model.ProjectPage, error)
	DeleteProject(ctx context.Context, id string) error
}

// State is what the profile screen renders.
type State struct {
	UserID     string
	Profile    *model.Profile
	Projects   []model.Project
	Pagination model.Pagination
	Tab        Tab
	Loading    bool
	Error      string
}

// Controller drives the profile screen.
type Controller struct {
	api     API
	guard   engage.Guard
	toggler *engage.Toggler
	nav     ui.Navigator
	alerts  ui.Alerter
	confirm ui.Confirmer
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a profile controller on the projects tab.
func NewController(api API, guard engage.Guard, nav ui.Navigator, alerts ui.Alerter, confirm ui.Confirmer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "profile")
	return &Controller{
		api:     api,
		guard:   guard,
		toggler: engage.NewToggler(api, guard, alerts, logger),
		nav:     nav,
		alerts:  alerts,
		confirm: confirm,
		logger:  logger,
		state: State{
			Tab:        TabProjects,
			Pagination: model.Pagination{CurrentPage: 1},
		},
	}
}

// State returns a snapshot of the screen state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}

// Mount opens the profile of userID. An empty userID means the signed-in
// user's own profile, which requires a session.
func (c *Controller) Mount(ctx context.Context, userID string) error {
	if userID == "" {
		sess, err := c.guard.Require(ctx)
		if err != nil {
			return err
		}
		userID = sess.UserID()
		c.nav.Navigate(ui.Profile(userID))
	}

	c.mu.Lock()
	if c.state.UserID != userID {
		c.state = State{
			UserID:     userID,
			Tab:        c.state.Tab,
			Pagination: model.Pagination{CurrentPage: 1},
		}
	}
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	profileErr := c.loadProfile(ctx, userID)
	projectsErr := c.LoadProjects(ctx, 1)

	c.mu.Lock()
	c.state.Loading = false
	c.mu.Unlock()

	if profileErr != nil {
		return profileErr
	}
	return projectsErr
}

func (c *Controller) loadProfile(ctx context.Context, userID string) error {
	prof, err := c.api.Profile(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("fetch profile", "user_id", userID, "error", err)
		if c.state.UserID == userID {
			c.state.Error = msgLoadFailed
		}
		return fmt.Errorf("load profile %s: %w", userID, err)
	}
	if c.state.UserID == userID {
		c.state.Profile = prof
	}
	return nil
}

// LoadProjects fetches page n of the user's projects.
func (c *Controller) LoadProjects(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("invalid page %d", n)
	}
	c.mu.Lock()
	userID := c.state.UserID
	c.mu.Unlock()
	if userID == "" {
		return apperrors.ErrNotLoaded
	}

	page, err := c.api.UserProjects(ctx, userID, n, PageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("fetch user projects", "user_id", userID, "page", n, "error", err)
		if c.state.UserID == userID && c.state.Error == "" {
			c.state.Error = msgProjectsLoadFailed
		}
		return fmt.Errorf("load projects of %s: %w", userID, err)
	}
	if c.state.UserID != userID {
		return nil
	}
	c.state.Projects = page.Projects
	if c.state.Projects == nil {
		c.state.Projects = []model.Project{}
	}
	c.state.Pagination = page.Pagination
	return nil
}

// NextPage loads the following projects page when there is one.
func (c *Controller) NextPage(ctx context.Context) error {
	c.mu.Lock()
	p := c.state.Pagination
	c.mu.Unlock()
	if !p.HasNextPage {
		return nil
	}
	return c.LoadProjects(ctx, p.CurrentPage+1)
}

// PrevPage loads the preceding projects page when there is one.
func (c *Controller) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	p := c.state.Pagination
	c.mu.Unlock()
	if !p.HasPrevPage {
		return nil
	}
	return c.LoadProjects(ctx, p.CurrentPage-1)
}

// SetTab switches the visible tab without fetching anything.
func (c *Controller) SetTab(t Tab) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tab %q", t)
	}
	c.mu.Lock()
	c.state.Tab = t
	c.mu.Unlock()
	return nil
}

// IsOwn reports whether the loaded profile belongs to the signed-in user.
func (c *Controller) IsOwn(ctx context.Context) bool {
	sess, err := c.guard.Require(ctx)
	if err != nil {
		return false
	}
	return c.ownedBy(sess.UserID())
}

func (c *Controller) ownedBy(viewerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	own := c.state.Profile != nil && c.state.Profile.User.IsOwnProfile
	return own || (c.state.UserID != "" && c.state.UserID == viewerID)
}

// DeleteProject deletes one of the user's own projects after confirmation and
// adjusts the counters locally.
func (c *Controller) DeleteProject(ctx context.Context, id string) error {
	sess, err := c.guard.Require(ctx)
	if err != nil {
		return err
	}
	if !c.ownedBy(sess.UserID()) {
		return apperrors.ErrNotAuthor
	}
	if !c.confirm.Confirm(ui.MsgConfirmDelete) {
		return apperrors.ErrCancelled
	}

	if err := c.api.DeleteProject(ctx, id); err != nil {
		c.logger.Error("delete project", "project_id", id, "error", err)
		c.alerts.Alert(ui.MsgDeleteFailed)
		return fmt.Errorf("delete %s: %w", id, err)
	}

	c.mu.Lock()
	c.state.Projects, _ = model.RemoveByID(c.state.Projects, id)
	if c.state.Pagination.TotalProjects > 0 {
		c.state.Pagination.TotalProjects--
	}
	if c.state.Profile != nil {
		prof := *c.state.Profile
		if prof.Stats.TotalProjects > 0 {
			prof.Stats.TotalProjects--
		}
		prof.RecentProjects, _ = model.RemoveByID(prof.RecentProjects, id)
		c.state.Profile = &prof
	}
	c.mu.Unlock()

	c.logger.Info("project deleted", "project_id", id)
	c.alerts.Alert(ui.MsgDeleted)
	return nil
}

// ToggleLike likes or unlikes one listed project.
func (c *Controller) ToggleLike(ctx context.Context, id string) error {
	patch, err := c.toggler.Like(ctx, id)
	if err != nil {
		return err
	}
	c.apply(id, patch)
	return nil
}

// ToggleSave saves or unsaves one listed project.
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
	if c.state.Profile != nil {
		prof := *c.state.Profile
		var ok bool
		if prof.RecentProjects, ok = model.PatchByID(prof.RecentProjects, id, patch); ok {
			c.state.Profile = &prof
		}
	}
}

// CategoryShare returns the percentage of the user's projects in category
// name.
func (s State) CategoryShare(name string) float64 {
	if s.Profile == nil {
		return 0
	}
	for _, cs := range s.Profile.CategoryStats {
		if cs.Name == name {
			return cs.Share(s.Profile.Stats.TotalProjects)
		}
	}
	return 0
}
