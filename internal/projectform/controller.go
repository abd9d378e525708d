package projectform

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

const (
	msgNotAuthor    = "You are not authorized to edit this project."
	msgLoadFailed   = "Failed to load project. Please try again."
	msgCreateFailed = "Failed to create project. Please try again."
	msgUpdateFailed = "Failed to update project. Please try again."
	msgSignIn       = "You need to be signed in to create projects."
)

// Mode tells whether the form creates a new project or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// API is the part of the gateway the form uses.
type API interface {
	GetProject(ctx context.Context, id string) (*model.Project, error)
	CreateProject(ctx context.Context, payload model.ProjectPayload) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, payload model.ProjectPayload) (*model.Project, error)
}

// State is what the form screen renders. Form is nil until a mount succeeds.
type State struct {
	Mode         Mode
	ProjectID    string
	Form         *Form
	AuthRequired bool
	Denied       bool
	Loading      bool
	Submitting   bool
	Error        string
}

// Controller drives the create and edit screens.
type Controller struct {
	api    API
	guard  engage.Guard
	nav    ui.Navigator
	logger *slog.Logger

	mu    sync.Mutex
	state State
	form  *Form
}

// NewController creates a form controller.
func NewController(api API, guard engage.Guard, nav ui.Navigator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{api: api, guard: guard, nav: nav, logger: logger.With("component", "projectform")}
}

// State returns a snapshot of the screen state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if c.form != nil {
		f := c.form.Clone()
		s.Form = &f
	}
	return s
}

// MountCreate opens an empty form. Without a session nothing is fetched and
// the screen shows the sign-in prompt.
func (c *Controller) MountCreate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = nil
	c.state = State{Mode: ModeCreate}

	if _, err := c.guard.Require(ctx); err != nil {
		c.state.AuthRequired = true
		c.state.Error = msgSignIn
		return err
	}
	c.form = NewForm()
	return nil
}

// MountEdit loads project id into the form. Only the recorded author gets a
// populated form; anyone else sees the denial state even when the fetch
// succeeds.
func (c *Controller) MountEdit(ctx context.Context, id string) error {
	c.mu.Lock()
	c.form = nil
	c.state = State{Mode: ModeEdit, ProjectID: id}
	sess, err := c.guard.Require(ctx)
	if err != nil {
		c.state.AuthRequired = true
		c.state.Error = msgSignIn
		c.mu.Unlock()
		return err
	}
	c.state.Loading = true
	c.mu.Unlock()

	p, err := c.api.GetProject(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		c.logger.Error("fetch project", "project_id", id, "error", err)
		c.state.Error = apperrors.UserMessage(err, msgLoadFailed)
		return fmt.Errorf("load project %s: %w", id, err)
	}
	if !p.AuthoredBy(sess.UserID()) {
		c.state.Denied = true
		c.state.Error = msgNotAuthor
		return apperrors.ErrNotAuthor
	}
	c.form = FromProject(*p)
	return nil
}

// Edit applies fn to the working form.
func (c *Controller) Edit(fn func(*Form) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Denied {
		return apperrors.ErrNotAuthor
	}
	if c.form == nil {
		return apperrors.ErrNotLoaded
	}
	return fn(c.form)
}

// SetField sets a scalar field of the working form.
func (c *Controller) SetField(field, value string) error {
	return c.Edit(func(f *Form) error { return f.SetField(field, value) })
}

// AddItem appends a row to list.
func (c *Controller) AddItem(list List, template map[string]string) error {
	return c.Edit(func(f *Form) error { return f.AddItem(list, template) })
}

// RemoveItem removes a row from list.
func (c *Controller) RemoveItem(list List, index int) error {
	return c.Edit(func(f *Form) error { return f.RemoveItem(list, index) })
}

// UpdateField changes one field of one row.
func (c *Controller) UpdateField(list List, index int, field, value string) error {
	return c.Edit(func(f *Form) error { return f.UpdateField(list, index, field, value) })
}

// Submit validates and sends the form. On success it navigates to the
// project's detail screen; on failure the form is kept and Error is set.
func (c *Controller) Submit(ctx context.Context) (*model.Project, error) {
	c.mu.Lock()
	if _, err := c.guard.Require(ctx); err != nil {
		c.state.AuthRequired = true
		c.state.Error = msgSignIn
		c.mu.Unlock()
		return nil, err
	}
	if c.state.Denied {
		c.mu.Unlock()
		return nil, apperrors.ErrNotAuthor
	}
	if c.form == nil {
		c.mu.Unlock()
		return nil, apperrors.ErrNotLoaded
	}
	if err := c.form.Validate(); err != nil {
		c.state.Error = apperrors.UserMessage(err, msgCreateFailed)
		c.mu.Unlock()
		return nil, err
	}
	payload := c.form.Payload()
	mode, id := c.state.Mode, c.state.ProjectID
	c.state.Submitting = true
	c.state.Error = ""
	c.mu.Unlock()

	var (
		saved    *model.Project
		err      error
		fallback string
	)
	if mode == ModeEdit {
		saved, err = c.api.UpdateProject(ctx, id, payload)
		fallback = msgUpdateFailed
	} else {
		saved, err = c.api.CreateProject(ctx, payload)
		fallback = msgCreateFailed
	}

	c.mu.Lock()
	c.state.Submitting = false
	if err != nil {
		c.state.Error = apperrors.UserMessage(err, fallback)
		c.mu.Unlock()
		c.logger.Error("submit project", "mode", mode, "project_id", id, "error", err)
		return nil, fmt.Errorf("%s project: %w", mode, err)
	}
	c.mu.Unlock()

	target := id
	if mode == ModeCreate {
		target = saved.ID
	}
	c.logger.Info("project saved", "mode", mode, "project_id", target)
	c.nav.Navigate(ui.Project(target))
	return saved, nil
}
