// Package detail implements the single project screen: likes, saves,
// comments and author-only deletion.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"diyclient/internal/engage"
	apperrors "diyclient/internal/errors"
	"diyclient/internal/model"
	"diyclient/internal/ui"
)

const msgLoadFailed = "Failed to load project. Please try again."

// API is the part of the gateway the detail screen uses.
type API interface {
	engage.API
	GetProject(ctx context.Context, id string) (*model.Project, error)
	AddComment(ctx context.Context, id, text string) (*model.Comment, error)
	DeleteProject(ctx context.Context, id string) error
}

// State is what the detail screen renders.
type State struct {
	Project       *model.Project
	Loading       bool
	AddingComment bool
	Error         string
}

// Controller drives the project detail screen.
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

// NewController creates a detail controller.
func NewController(api API, guard engage.Guard, nav ui.Navigator, alerts ui.Alerter, confirm ui.Confirmer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "detail")
	return &Controller{
		api:     api,
		guard:   guard,
		toggler: engage.NewToggler(api, guard, alerts, logger),
		nav:     nav,
		alerts:  alerts,
		confirm: confirm,
		logger:  logger,
	}
}

// State returns a snapshot of the screen state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.Project != nil {
		p := *s.Project
		p.Comments = append([]model.Comment(nil), p.Comments...)
		s.Project = &p
	}
	return s
}

// Load fetches project id.
func (c *Controller) Load(ctx context.Context, id string) error {
	c.mu.Lock()
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	p, err := c.api.GetProject(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		c.logger.Error("fetch project", "project_id", id, "error", err)
		c.state.Error = msgLoadFailed
		if c.state.Project != nil && c.state.Project.ID != id {
			c.state.Project = nil
		}
		return fmt.Errorf("load project %s: %w", id, err)
	}
	c.state.Project = p
	return nil
}

func (c *Controller) loadedID() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Project == nil {
		return "", apperrors.ErrNotLoaded
	}
	return c.state.Project.ID, nil
}

func (c *Controller) patch(id string, fn func(*model.Project)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Project == nil || c.state.Project.ID != id {
		return
	}
	p := *c.state.Project
	fn(&p)
	c.state.Project = &p
}

// ToggleLike likes or unlikes the loaded project.
func (c *Controller) ToggleLike(ctx context.Context) error {
	id, err := c.loadedID()
	if err != nil {
		return err
	}
	patch, err := c.toggler.Like(ctx, id)
	if err != nil {
		return err
	}
	c.patch(id, patch)
	return nil
}

// ToggleSave saves or unsaves the loaded project.
func (c *Controller) ToggleSave(ctx context.Context) error {
	id, err := c.loadedID()
	if err != nil {
		return err
	}
	patch, err := c.toggler.Save(ctx, id)
	if err != nil {
		return err
	}
	c.patch(id, patch)
	return nil
}

// AddComment posts the trimmed text and appends the returned comment without
// refetching the project.
func (c *Controller) AddComment(ctx context.Context, text string) (*model.Comment, error) {
	id, err := c.loadedID()
	if err != nil {
		return nil, err
	}
	if _, err := c.guard.Require(ctx); err != nil {
		c.alerts.Alert(ui.MsgSignInToComment)
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyComment
	}

	c.mu.Lock()
	c.state.AddingComment = true
	c.mu.Unlock()

	comment, err := c.api.AddComment(ctx, id, text)

	c.mu.Lock()
	c.state.AddingComment = false
	c.mu.Unlock()
	if err != nil {
		c.logger.Error("add comment", "project_id", id, "error", err)
		c.alerts.Alert(ui.MsgCommentFailed)
		return nil, fmt.Errorf("comment on %s: %w", id, err)
	}

	c.patch(id, func(p *model.Project) {
		p.Comments = append(append([]model.Comment(nil), p.Comments...), *comment)
		p.CommentCount++
	})
	return comment, nil
}

// IsAuthor reports whether the signed-in user may edit or delete the loaded
// project.
func (c *Controller) IsAuthor(ctx context.Context) bool {
	if _, err := c.loadedID(); err != nil {
		return false
	}
	sess, err := c.guard.Require(ctx)
	if err != nil {
		return false
	}
	return c.authoredBy(sess.UserID())
}

func (c *Controller) authoredBy(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.state.Project
	return p != nil && (p.IsAuthor || p.AuthoredBy(userID))
}

// Edit navigates to the edit screen of the loaded project.
func (c *Controller) Edit(ctx context.Context) error {
	id, err := c.loadedID()
	if err != nil {
		return err
	}
	if !c.IsAuthor(ctx) {
		return apperrors.ErrNotAuthor
	}
	c.nav.Navigate(ui.Edit(id))
	return nil
}

// Delete removes the loaded project after the user confirms, then returns to
// the feed.
func (c *Controller) Delete(ctx context.Context) error {
	id, err := c.loadedID()
	if err != nil {
		return err
	}
	sess, err := c.guard.Require(ctx)
	if err != nil {
		return err
	}
	if !c.authoredBy(sess.UserID()) {
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

	c.logger.Info("project deleted", "project_id", id)
	c.alerts.Alert(ui.MsgDeleted)
	c.nav.Navigate(ui.Feed())
	return nil
}
