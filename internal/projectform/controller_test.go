package projectform

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "diyclient/internal/errors"
	"diyclient/internal/model"
	"diyclient/internal/session"
	"diyclient/internal/ui"
)

// MockAPI is a mock implementation of API.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetProject(ctx context.Context, id string) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockAPI) CreateProject(ctx context.Context, payload model.ProjectPayload) (*model.Project, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockAPI) UpdateProject(ctx context.Context, id string, payload model.ProjectPayload) (*model.Project, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func newController(t *testing.T, api API, userID string) (*Controller, *ui.Recorder) {
	t.Helper()
	rec := ui.NewRecorder(false)
	sessions := session.NewManager(session.NewMemoryStorage(), rec, nil)
	if userID != "" {
		require.NoError(t, sessions.SignIn(context.Background(), "tok", model.User{ID: userID, Username: "maker"}))
	}
	return NewController(api, sessions, rec, nil), rec
}

func fillRequired(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.SetField("title", "Bird house"))
	require.NoError(t, c.SetField("description", "A small house"))
	require.NoError(t, c.SetField("category", "Woodworking"))
}

func TestController_MountCreateRequiresSession(t *testing.T) {
	api := new(MockAPI)
	c, _ := newController(t, api, "")

	err := c.MountCreate(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	s := c.State()
	assert.True(t, s.AuthRequired)
	assert.Nil(t, s.Form)
	assert.ErrorIs(t, c.SetField("title", "x"), apperrors.ErrNotLoaded)
	api.AssertExpectations(t)
}

func TestController_CreateFlow(t *testing.T) {
	api := new(MockAPI)
	c, rec := newController(t, api, "u1")
	ctx := context.Background()
	require.NoError(t, c.MountCreate(ctx))

	fillRequired(t, c)
	require.NoError(t, c.SetField("tags", "a, b ,, c"))
	require.NoError(t, c.SetField("totalCost", ""))
	require.NoError(t, c.AddItem(Steps, map[string]string{"title": "Cut"}))

	api.On("CreateProject", mock.Anything, mock.MatchedBy(func(p model.ProjectPayload) bool {
		return p.Title == "Bird house" &&
			assert.ObjectsAreEqual([]string{"a", "b", "c"}, p.Tags) &&
			p.TotalCost == 0 &&
			len(p.Steps) == 2 && p.Steps[1].StepNumber == 2
	})).Return(&model.Project{ID: "new1"}, nil)

	saved, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new1", saved.ID)

	last, ok := rec.LastRoute()
	require.True(t, ok)
	assert.Equal(t, ui.Project("new1"), last)
	api.AssertExpectations(t)
}

func TestController_SubmitValidationIssuesNoRequest(t *testing.T) {
	api := new(MockAPI)
	c, rec := newController(t, api, "u1")
	require.NoError(t, c.MountCreate(context.Background()))
	require.NoError(t, c.SetField("title", "Only a title"))

	_, err := c.Submit(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "missing or invalid: description, category", c.State().Error)
	assert.Equal(t, "Only a title", c.State().Form.Title, "form is retained")
	assert.Empty(t, rec.Routes())
	api.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
}

func TestController_SubmitServerRejection(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"server message", apperrors.NewAPIError(http.StatusBadRequest, "Invalid category", "POST", "/projects"), "Invalid category"},
		{"no message", errors.New("connection reset"), "Failed to create project. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			api.On("CreateProject", mock.Anything, mock.Anything).Return(nil, tt.err)
			c, rec := newController(t, api, "u1")
			require.NoError(t, c.MountCreate(context.Background()))
			fillRequired(t, c)

			_, err := c.Submit(context.Background())

			require.Error(t, err)
			s := c.State()
			assert.Equal(t, tt.expected, s.Error)
			assert.False(t, s.Submitting)
			assert.Equal(t, "Bird house", s.Form.Title)
			assert.Empty(t, rec.Routes())
		})
	}
}

func TestController_MountEditDeniesNonAuthor(t *testing.T) {
	api := new(MockAPI)
	api.On("GetProject", mock.Anything, "p1").Return(&model.Project{
		ID: "p1", Title: "Someone else's lamp", Author: model.Author{ID: "owner"},
	}, nil)
	c, _ := newController(t, api, "intruder")

	err := c.MountEdit(context.Background(), "p1")

	assert.ErrorIs(t, err, apperrors.ErrNotAuthor)
	s := c.State()
	assert.True(t, s.Denied)
	assert.Equal(t, "You are not authorized to edit this project.", s.Error)
	assert.Nil(t, s.Form, "no field may populate")
	assert.ErrorIs(t, c.SetField("title", "hijack"), apperrors.ErrNotAuthor)

	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotAuthor)
	api.AssertNotCalled(t, "UpdateProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_MountEditWithoutSessionFetchesNothing(t *testing.T) {
	api := new(MockAPI)
	c, _ := newController(t, api, "")

	assert.ErrorIs(t, c.MountEdit(context.Background(), "p1"), apperrors.ErrUnauthenticated)
	api.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything)
}

func TestController_MountEditFetchFailure(t *testing.T) {
	api := new(MockAPI)
	api.On("GetProject", mock.Anything, "gone").Return(nil, apperrors.NewAPIError(http.StatusNotFound, "Project not found", "GET", "/projects/gone"))
	api.On("GetProject", mock.Anything, "p2").Return(nil, errors.New("timeout"))
	c, _ := newController(t, api, "u1")

	require.Error(t, c.MountEdit(context.Background(), "gone"))
	assert.Equal(t, "Project not found", c.State().Error)

	require.Error(t, c.MountEdit(context.Background(), "p2"))
	assert.Equal(t, "Failed to load project. Please try again.", c.State().Error)
	assert.Nil(t, c.State().Form)
}

func TestController_EditFlow(t *testing.T) {
	api := new(MockAPI)
	api.On("GetProject", mock.Anything, "p1").Return(&model.Project{
		ID: "p1", Title: "Lamp", Description: "Bright", Category: "Electronics", Difficulty: model.Intermediate,
		Tags: []string{"led", "desk"}, TotalCost: 15, Author: model.Author{ID: "u1"},
	}, nil)
	api.On("UpdateProject", mock.Anything, "p1", mock.MatchedBy(func(p model.ProjectPayload) bool {
		return p.Title == "Lamp v2" && p.TotalCost == 15 && len(p.Tags) == 2
	})).Return(&model.Project{ID: "p1"}, nil)
	c, rec := newController(t, api, "u1")
	ctx := context.Background()

	require.NoError(t, c.MountEdit(ctx, "p1"))
	s := c.State()
	require.NotNil(t, s.Form)
	assert.Equal(t, "led, desk", s.Form.Tags)
	assert.Equal(t, ModeEdit, s.Mode)

	require.NoError(t, c.SetField("title", "Lamp v2"))
	_, err := c.Submit(ctx)
	require.NoError(t, err)

	last, _ := rec.LastRoute()
	assert.Equal(t, ui.Project("p1"), last)
	api.AssertExpectations(t)
}

func TestController_EditUpdateFailureFallback(t *testing.T) {
	api := new(MockAPI)
	api.On("GetProject", mock.Anything, "p1").Return(&model.Project{
		ID: "p1", Title: "Lamp", Description: "Bright", Category: "Electronics", Author: model.Author{ID: "u1"},
	}, nil)
	api.On("UpdateProject", mock.Anything, "p1", mock.Anything).Return(nil, errors.New("eof"))
	c, _ := newController(t, api, "u1")

	require.NoError(t, c.MountEdit(context.Background(), "p1"))
	_, err := c.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Failed to update project. Please try again.", c.State().Error)
}

func TestController_StateIsASnapshot(t *testing.T) {
	c, _ := newController(t, new(MockAPI), "u1")
	require.NoError(t, c.MountCreate(context.Background()))

	s := c.State()
	s.Form.Title = "mutated"
	s.Form.Steps[0].Title = "mutated"

	assert.Empty(t, c.State().Form.Title)
	assert.Empty(t, c.State().Form.Steps[0].Title)
}
