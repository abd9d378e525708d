// Package engage implements the like and save toggles shared by every screen
// that lists projects.
package engage

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "diyclient/internal/errors"
	"diyclient/internal/model"
	"diyclient/internal/session"
	"diyclient/internal/ui"
)

// API is the part of the gateway the toggles use.
type API interface {
	ToggleLike(ctx context.Context, id string) (*model.LikeResult, error)
	ToggleSave(ctx context.Context, id string) (*model.SaveResult, error)
}

// Guard yields the signed-in session or ErrUnauthenticated.
type Guard interface {
	Require(ctx context.Context) (session.Session, error)
}

// Patch updates one project in place.
type Patch func(*model.Project)

// Toggler issues like and save toggles. Without a session it alerts and issues
// no request; on failure it alerts and returns no patch.
type Toggler struct {
	api    API
	guard  Guard
	alerts ui.Alerter
	logger *slog.Logger
}

// NewToggler creates a Toggler.
func NewToggler(api API, guard Guard, alerts ui.Alerter, logger *slog.Logger) *Toggler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toggler{api: api, guard: guard, alerts: alerts, logger: logger}
}

// Like toggles the viewer's like on id.
func (t *Toggler) Like(ctx context.Context, id string) (Patch, error) {
	if _, err := t.guard.Require(ctx); err != nil {
		t.alerts.Alert(ui.MsgSignInToLike)
		return nil, err
	}
	res, err := t.api.ToggleLike(ctx, id)
	if err != nil {
		t.logger.Error("like failed", "project_id", id, "error", err)
		t.alerts.Alert(ui.MsgLikeFailed)
		return nil, fmt.Errorf("like %s: %w", id, err)
	}
	return Patch(model.ApplyLike(*res)), nil
}

// Save toggles the viewer's bookmark on id.
func (t *Toggler) Save(ctx context.Context, id string) (Patch, error) {
	if _, err := t.guard.Require(ctx); err != nil {
		t.alerts.Alert(ui.MsgSignInToSave)
		return nil, err
	}
	res, err := t.api.ToggleSave(ctx, id)
	if err != nil {
		t.logger.Error("save failed", "project_id", id, "error", err)
		t.alerts.Alert(ui.MsgSaveFailed)
		return nil, fmt.Errorf("save %s: %w", id, err)
	}
	return Patch(model.ApplySave(*res)), nil
}

// Unsave toggles the bookmark on a project the viewer has saved.
func (t *Toggler) Unsave(ctx context.Context, id string) error {
	if _, err := t.guard.Require(ctx); err != nil {
		t.alerts.Alert(ui.MsgSignInToSave)
		return err
	}
	if _, err := t.api.ToggleSave(ctx, id); err != nil {
		t.logger.Error("unsave failed", "project_id", id, "error", err)
		t.alerts.Alert(ui.MsgUnsaveFailed)
		return fmt.Errorf("unsave %s: %w", id, err)
	}
	return nil
}

// Unauthenticated reports whether err came from the session gate.
func Unauthenticated(err error) bool {
	return apperrors.Is(err, apperrors.ErrUnauthenticated)
}
