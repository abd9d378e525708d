package saved

import (
	"context"
	"errors"
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

func (m *MockAPI) SavedProjects(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockAPI) ToggleLike(ctx context.Context, id string) (*model.LikeResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LikeResult), args.Error(1)
}

func (m *MockAPI) ToggleSave(ctx context.Context, id string) (*model.SaveResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SaveResult), args.Error(1)
}

func newController(t *testing.T, signedIn bool) (*Controller, *MockAPI, *ui.Recorder) {
	t.Helper()
	api := new(MockAPI)
	rec := ui.NewRecorder(false)
	sessions := session.NewManager(session.NewMemoryStorage(), rec, nil)
	if signedIn {
		require.NoError(t, sessions.SignIn(context.Background(), "tok", model.User{ID: "u1", Username: "maker"}))
	}
	return NewController(api, sessions, rec, nil), api, rec
}

func bookmarks() []model.Project {
	return []model.Project{
		{ID: "p1", Title: "Bird house", IsSaved: true},
		{ID: "p2", Title: "Desk lamp", IsSaved: true, LikeCount: 4},
	}
}

func TestController_Mount(t *testing.T) {
	tests := []struct {
		name      string
		signedIn  bool
		setupMock func(*MockAPI)
		wantErr   error
		wantState func(*testing.T, State)
	}{
		{
			name:     "lists bookmarks",
			signedIn: true,
			setupMock: func(m *MockAPI) {
				m.On("SavedProjects", mock.Anything).Return(bookmarks(), nil)
			},
			wantState: func(t *testing.T, s State) {
				assert.Len(t, s.Projects, 2)
				assert.False(t, s.Empty())
			},
		},
		{
			name:     "nothing saved",
			signedIn: true,
			setupMock: func(m *MockAPI) {
				m.On("SavedProjects", mock.Anything).Return([]model.Project{}, nil)
			},
			wantState: func(t *testing.T, s State) {
				assert.True(t, s.Empty())
			},
		},
		{
			name:      "signed out issues no request",
			setupMock: func(*MockAPI) {},
			wantErr:   apperrors.ErrUnauthenticated,
			wantState: func(t *testing.T, s State) {
				assert.False(t, s.Loaded)
			},
		},
		{
			name:     "request fails",
			signedIn: true,
			setupMock: func(m *MockAPI) {
				m.On("SavedProjects", mock.Anything).Return(nil, errors.New("boom"))
			},
			wantErr: errors.New("boom"),
			wantState: func(t *testing.T, s State) {
				assert.Equal(t, "Failed to load saved projects. Please try again.", s.Error)
				assert.False(t, s.Empty())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, api, _ := newController(t, tt.signedIn)
			tt.setupMock(api)

			err := c.Mount(context.Background())

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, apperrors.ErrUnauthenticated) {
					assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
				}
			} else {
				require.NoError(t, err)
			}
			tt.wantState(t, c.State())
			api.AssertExpectations(t)
		})
	}
}

func TestController_Unsave(t *testing.T) {
	c, api, rec := newController(t, true)
	api.On("SavedProjects", mock.Anything).Return(bookmarks(), nil)
	api.On("ToggleSave", mock.Anything, "p1").Return(&model.SaveResult{Saved: false}, nil).Once()
	api.On("ToggleSave", mock.Anything, "p2").Return(nil, errors.New("boom")).Once()
	ctx := context.Background()
	require.NoError(t, c.Mount(ctx))

	require.NoError(t, c.Unsave(ctx, "p1"))
	require.Error(t, c.Unsave(ctx, "p2"))

	s := c.State()
	require.Len(t, s.Projects, 1)
	assert.Equal(t, "p2", s.Projects[0].ID)
	assert.Equal(t, []string{"Failed to remove project from saved. Please try again."}, rec.Alerts())
}

func TestController_ToggleLike(t *testing.T) {
	c, api, _ := newController(t, true)
	api.On("SavedProjects", mock.Anything).Return(bookmarks(), nil)
	api.On("ToggleLike", mock.Anything, "p2").Return(&model.LikeResult{Liked: true, LikeCount: 5}, nil)
	ctx := context.Background()
	require.NoError(t, c.Mount(ctx))

	require.NoError(t, c.ToggleLike(ctx, "p2"))

	s := c.State()
	assert.Equal(t, 5, s.Projects[1].LikeCount)
	assert.True(t, s.Projects[1].IsLiked)
	assert.Equal(t, 0, s.Projects[0].LikeCount)
}
