package engage

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

func manager(t *testing.T, signedIn bool) *session.Manager {
	t.Helper()
	m := session.NewManager(session.NewMemoryStorage(), nil, nil)
	if signedIn {
		require.NoError(t, m.SignIn(context.Background(), "tok", model.User{ID: "u1", Username: "maker"}))
	}
	return m
}

func TestToggler_Like(t *testing.T) {
	tests := []struct {
		name       string
		signedIn   bool
		setupMock  func(*MockAPI)
		wantErr    error
		wantAlerts []string
		wantLiked  bool
		wantCount  int
	}{
		{
			name:     "signed in",
			signedIn: true,
			setupMock: func(m *MockAPI) {
				m.On("ToggleLike", mock.Anything, "p1").Return(&model.LikeResult{Liked: true, LikeCount: 4}, nil)
			},
			wantLiked: true,
			wantCount: 4,
		},
		{
			name:       "signed out issues no request",
			setupMock:  func(*MockAPI) {},
			wantErr:    apperrors.ErrUnauthenticated,
			wantAlerts: []string{ui.MsgSignInToLike},
			wantCount:  3,
		},
		{
			name:     "request fails",
			signedIn: true,
			setupMock: func(m *MockAPI) {
				m.On("ToggleLike", mock.Anything, "p1").Return(nil, errors.New("boom"))
			},
			wantErr:    errors.New("boom"),
			wantAlerts: []string{ui.MsgLikeFailed},
			wantCount:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			tt.setupMock(api)
			rec := ui.NewRecorder(false)
			tg := NewToggler(api, manager(t, tt.signedIn), rec, nil)

			p := model.Project{ID: "p1", LikeCount: 3}
			patch, err := tg.Like(context.Background(), "p1")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, patch)
				if errors.Is(tt.wantErr, apperrors.ErrUnauthenticated) {
					assert.True(t, Unauthenticated(err))
				}
			} else {
				require.NoError(t, err)
				patch(&p)
			}
			assert.Equal(t, tt.wantLiked, p.IsLiked)
			assert.Equal(t, tt.wantCount, p.LikeCount)
			assert.Equal(t, tt.wantAlerts, rec.Alerts())
			api.AssertExpectations(t)
			if !tt.signedIn {
				api.AssertNotCalled(t, "ToggleLike", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestToggler_Save(t *testing.T) {
	api := new(MockAPI)
	api.On("ToggleSave", mock.Anything, "p1").Return(&model.SaveResult{Saved: true}, nil).Once()
	api.On("ToggleSave", mock.Anything, "p1").Return(nil, errors.New("boom")).Once()
	rec := ui.NewRecorder(false)
	tg := NewToggler(api, manager(t, true), rec, nil)

	p := model.Project{ID: "p1"}
	patch, err := tg.Save(context.Background(), "p1")
	require.NoError(t, err)
	patch(&p)
	assert.True(t, p.IsSaved)

	_, err = tg.Save(context.Background(), "p1")
	assert.Error(t, err)
	assert.Equal(t, []string{ui.MsgSaveFailed}, rec.Alerts())

	rec2 := ui.NewRecorder(false)
	_, err = NewToggler(api, manager(t, false), rec2, nil).Save(context.Background(), "p1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Equal(t, []string{ui.MsgSignInToSave}, rec2.Alerts())
	api.AssertExpectations(t)
}

func TestToggler_Unsave(t *testing.T) {
	api := new(MockAPI)
	api.On("ToggleSave", mock.Anything, "p1").Return(&model.SaveResult{Saved: false}, nil).Once()
	api.On("ToggleSave", mock.Anything, "p2").Return(nil, errors.New("boom")).Once()
	rec := ui.NewRecorder(false)
	tg := NewToggler(api, manager(t, true), rec, nil)

	require.NoError(t, tg.Unsave(context.Background(), "p1"))
	assert.Error(t, tg.Unsave(context.Background(), "p2"))
	assert.Equal(t, []string{ui.MsgUnsaveFailed}, rec.Alerts())
	api.AssertExpectations(t)
}
