// Package auth implements the sign-in and sign-up screens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "diyclient/internal/errors"
	"diyclient/internal/model"
	"diyclient/internal/session"
	"diyclient/internal/ui"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

const (
	msgPasswordMismatch = "Passwords do not match!"
	msgPasswordTooShort = "Password must be at least 6 characters long!"
	msgGenericFailure   = "Something went wrong!"
	msgRegistered       = "Registration successful! Please sign in with your new account."
	msgWelcome          = "Login successful! Welcome to DIY Community!"
)

// API is the part of the gateway the auth screens use.
type API interface {
	Register(ctx context.Context, req model.Registration) error
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error)
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Username        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string
}

// State is what the auth screens render.
type State struct {
	Loading bool
	Error   string
}

// Controller drives the login and registration screens.
type Controller struct {
	api      API
	sessions *session.Manager
	nav      ui.Navigator
	alerts   ui.Alerter
	validate *validator.Validate
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates an auth controller.
func NewController(api API, sessions *session.Manager, nav ui.Navigator, alerts ui.Alerter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:      api,
		sessions: sessions,
		nav:      nav,
		alerts:   alerts,
		validate: validator.New(),
		logger:   logger.With("component", "auth"),
	}
}

// State returns a snapshot of the screen state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) begin() {
	c.mu.Lock()
	c.state = State{Loading: true}
	c.mu.Unlock()
}

func (c *Controller) finish(msg string) {
	c.mu.Lock()
	c.state = State{Error: msg}
	c.mu.Unlock()
}

// checkRegistration returns the message to show and the error to report.
func (c *Controller) checkRegistration(form RegisterForm) (string, error) {
	if form.Password != form.ConfirmPassword {
		return msgPasswordMismatch, apperrors.ErrValidation
	}
	if len(form.Password) < MinPasswordLength {
		return msgPasswordTooShort, apperrors.ErrValidation
	}
	if err := c.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return msgGenericFailure, err
		}
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		vErr := &apperrors.ValidationError{Fields: fields}
		return vErr.Error(), vErr
	}
	return "", nil
}

// Register creates an account. It does not sign in: on success the user is
// told to sign in and sent to the login screen.
func (c *Controller) Register(ctx context.Context, form RegisterForm) error {
	c.begin()

	if msg, err := c.checkRegistration(form); err != nil {
		c.finish(msg)
		return fmt.Errorf("register: %s: %w", msg, err)
	}

	err := c.api.Register(ctx, model.Registration{
		Username: strings.TrimSpace(form.Username),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	})
	if err != nil {
		c.logger.Warn("registration failed", "error", err)
		c.finish(apperrors.UserMessage(err, msgGenericFailure))
		return fmt.Errorf("register: %w", err)
	}

	c.finish("")
	c.alerts.Alert(msgRegistered)
	c.nav.Navigate(ui.Login())
	return nil
}

// Login signs in and moves to the feed.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.begin()

	res, err := c.api.Login(ctx, model.Credentials{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		c.logger.Warn("login failed", "error", err)
		c.finish(apperrors.UserMessage(err, msgGenericFailure))
		return fmt.Errorf("login: %w", err)
	}

	if err := c.sessions.SignIn(ctx, res.Token, res.User); err != nil {
		c.finish(msgGenericFailure)
		return fmt.Errorf("login: %w", err)
	}

	c.finish("")
	c.logger.Info("signed in", "username", res.User.Username)
	c.alerts.Alert(msgWelcome)
	c.nav.Navigate(ui.Feed())
	return nil
}

// Logout clears the session and returns to the landing screen.
func (c *Controller) Logout(ctx context.Context) error {
	return c.sessions.SignOut(ctx)
}
