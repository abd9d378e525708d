package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "diyclient/internal/errors"
	"diyclient/internal/gateway"
	"diyclient/internal/model"
	"diyclient/internal/session"
	"diyclient/internal/ui"
)

// MockAPI is a mock implementation of API.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListProjects(ctx context.Context, params gateway.ListParams) (*model.ProjectPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectPage), args.Error(1)
}

func (m *MockAPI) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategoryCount), args.Error(1)
}

func (m *MockAPI) Stats(ctx context.Context) (*model.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformStats), args.Error(1)
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

func pageOf(projects ...model.Project) *model.ProjectPage {
	return &model.ProjectPage{
		Projects:   projects,
		Pagination: model.Pagination{CurrentPage: 1, TotalPages: 1, TotalProjects: len(projects)},
	}
}

func newController(t *testing.T, api API, signedIn bool) (*Controller, *ui.Recorder) {
	t.Helper()
	rec := ui.NewRecorder(false)
	sessions := session.NewManager(session.NewMemoryStorage(), rec, nil)
	if signedIn {
		require.NoError(t, sessions.SignIn(context.Background(), "tok", model.User{ID: "u1", Username: "maker"}))
	}
	return NewController(api, sessions, rec, nil), rec
}

func params(page int, f Filters) gateway.ListParams {
	return gateway.ListParams{
		Page: page, Limit: PageSize,
		Category: f.Category, Difficulty: f.Difficulty, Search: f.Search,
		SortBy: f.SortBy, SortOrder: f.SortOrder,
	}
}

func TestController_MountUsesDefaults(t *testing.T) {
	api := new(MockAPI)
	api.On("Categories", mock.Anything).Return([]model.CategoryCount{{Name: "Woodworking", Count: 2}}, nil)
	api.On("Stats", mock.Anything).Return(&model.PlatformStats{TotalProjects: 2, TotalUsers: 1}, nil)
	api.On("ListProjects", mock.Anything, gateway.ListParams{
		Page: 1, Limit: 12, Category: "all", Difficulty: "all", Search: "", SortBy: "createdAt", SortOrder: "desc",
	}).Return(pageOf(model.Project{ID: "p1"}), nil)

	c, _ := newController(t, api, false)
	require.NoError(t, c.Mount(context.Background()))

	s := c.State()
	assert.Len(t, s.Projects, 1)
	assert.Len(t, s.Categories, 1)
	assert.Equal(t, 1, s.Stats.TotalUsers)
	assert.False(t, s.Empty())
	api.AssertExpectations(t)
}

func TestController_MountAuxiliaryFailuresAreNotFatal(t *testing.T) {
	api := new(MockAPI)
	api.On("Categories", mock.Anything).Return(nil, errors.New("down"))
	api.On("Stats", mock.Anything).Return(nil, errors.New("down"))
	api.On("ListProjects", mock.Anything, mock.Anything).Return(pageOf(), nil)

	c, _ := newController(t, api, false)
	require.NoError(t, c.Mount(context.Background()))

	s := c.State()
	assert.Empty(t, s.Categories)
	assert.Empty(t, s.Error)
	assert.True(t, s.Empty())
}

func TestController_FilterScenario(t *testing.T) {
	api := new(MockAPI)
	c, _ := newController(t, api, false)
	ctx := context.Background()

	woodworking := DefaultFilters()
	woodworking.Category = "Woodworking"
	api.On("ListProjects", mock.Anything, params(1, woodworking)).Return(&model.ProjectPage{
		Projects:   []model.Project{{ID: "p1"}},
		Pagination: model.Pagination{CurrentPage: 1, TotalPages: 3, HasNextPage: true},
	}, nil).Once()

	require.NoError(t, c.SetFilter(ctx, FilterCategory, "Woodworking"))

	api.On("ListProjects", mock.Anything, params(2, woodworking)).Return(&model.ProjectPage{
		Projects:   []model.Project{{ID: "p2"}},
		Pagination: model.Pagination{CurrentPage: 2, TotalPages: 3, HasNextPage: true, HasPrevPage: true},
	}, nil).Once()
	require.NoError(t, c.NextPage(ctx))
	assert.Equal(t, 2, c.State().Pagination.CurrentPage)

	lamp := woodworking
	lamp.Search = "lamp"
	api.On("ListProjects", mock.Anything, params(1, lamp)).Return(pageOf(model.Project{ID: "p3"}), nil).Once()
	require.NoError(t, c.SetFilter(ctx, FilterSearch, "lamp"))

	s := c.State()
	assert.Equal(t, 1, s.Pagination.CurrentPage)
	assert.Equal(t, "p3", s.Projects[0].ID)
	api.AssertExpectations(t)
}

func TestController_SetFilterUnknownKey(t *testing.T) {
	api := new(MockAPI)
	c, _ := newController(t, api, false)

	assert.Error(t, c.SetFilter(context.Background(), "color", "red"))
	api.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything)
}

func TestController_PagingGuards(t *testing.T) {
	api := new(MockAPI)
	c, _ := newController(t, api, false)
	ctx := context.Background()

	require.NoError(t, c.NextPage(ctx))
	require.NoError(t, c.PrevPage(ctx))
	assert.Error(t, c.SetPage(ctx, 0))
	api.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything)

	f := DefaultFilters()
	api.On("ListProjects", mock.Anything, params(3, f)).Return(&model.ProjectPage{
		Pagination: model.Pagination{CurrentPage: 3, TotalPages: 3, HasPrevPage: true},
	}, nil).Once()
	api.On("ListProjects", mock.Anything, params(2, f)).Return(&model.ProjectPage{
		Pagination: model.Pagination{CurrentPage: 2, TotalPages: 3, HasPrevPage: true, HasNextPage: true},
	}, nil).Once()

	require.NoError(t, c.SetPage(ctx, 3))
	require.NoError(t, c.NextPage(ctx), "no next page: no request")
	require.NoError(t, c.PrevPage(ctx))
	assert.Equal(t, 2, c.State().Pagination.CurrentPage)
	api.AssertExpectations(t)
}

func TestController_LoadFailureKeepsStaleList(t *testing.T) {
	api := new(MockAPI)
	c, _ := newController(t, api, false)
	ctx := context.Background()

	api.On("ListProjects", mock.Anything, params(1, DefaultFilters())).Return(pageOf(model.Project{ID: "p1"}), nil).Once()
	require.NoError(t, c.Load(ctx))

	api.On("ListProjects", mock.Anything, mock.Anything).Return(nil, errors.New("502")).Once()
	err := c.SetFilter(ctx, FilterDifficulty, "Advanced")
	require.Error(t, err)

	s := c.State()
	assert.Equal(t, "Failed to load projects. Please try again.", s.Error)
	require.Len(t, s.Projects, 1)
	assert.Equal(t, "p1", s.Projects[0].ID)
	assert.False(t, s.Empty())
	assert.False(t, s.Loading)
}

func TestController_ToggleLikeSignedOut(t *testing.T) {
	api := new(MockAPI)
	api.On("ListProjects", mock.Anything, mock.Anything).Return(pageOf(model.Project{ID: "p1", LikeCount: 3}), nil)
	c, rec := newController(t, api, false)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	err := c.ToggleLike(ctx, "p1")

	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	api.AssertNotCalled(t, "ToggleLike", mock.Anything, mock.Anything)
	p := c.State().Projects[0]
	assert.False(t, p.IsLiked)
	assert.Equal(t, 3, p.LikeCount)
	assert.Equal(t, []string{"Please sign in to like projects!"}, rec.Alerts())
}

func TestController_ToggleLikePatchesOnlyTarget(t *testing.T) {
	api := new(MockAPI)
	p := model.Project{ID: "p", Title: "P", LikeCount: 1}
	q := model.Project{ID: "q", Title: "Q", LikeCount: 9, IsLiked: true}
	api.On("ListProjects", mock.Anything, mock.Anything).Return(pageOf(p, q), nil)
	api.On("ToggleLike", mock.Anything, "p").Return(&model.LikeResult{Liked: true, LikeCount: 2}, nil)
	c, _ := newController(t, api, true)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.ToggleLike(ctx, "p"))

	s := c.State()
	assert.True(t, s.Projects[0].IsLiked)
	assert.Equal(t, 2, s.Projects[0].LikeCount)
	assert.Equal(t, q, s.Projects[1])
}

func TestController_ToggleFailureLeavesState(t *testing.T) {
	api := new(MockAPI)
	api.On("ListProjects", mock.Anything, mock.Anything).Return(pageOf(model.Project{ID: "p1"}), nil)
	api.On("ToggleSave", mock.Anything, "p1").Return(nil, errors.New("boom"))
	c, rec := newController(t, api, true)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	assert.Error(t, c.ToggleSave(ctx, "p1"))
	assert.False(t, c.State().Projects[0].IsSaved)
	assert.Equal(t, []string{"Failed to save project. Please try again."}, rec.Alerts())
}

// orderedAPI holds back the response for the "slow" search until released.
type orderedAPI struct {
	*MockAPI
	started chan struct{}
	release chan struct{}
}

func (o *orderedAPI) ListProjects(_ context.Context, p gateway.ListParams) (*model.ProjectPage, error) {
	if p.Search == "slow" {
		close(o.started)
		<-o.release
	}
	return pageOf(model.Project{ID: p.Search}), nil
}

func TestController_OverlappingLoadsApplyInArrivalOrder(t *testing.T) {
	api := &orderedAPI{MockAPI: new(MockAPI), started: make(chan struct{}), release: make(chan struct{})}
	c, _ := newController(t, api, false)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.SetFilter(ctx, FilterSearch, "slow") }()
	<-api.started

	require.NoError(t, c.SetFilter(ctx, FilterSearch, "fast"))
	assert.Equal(t, "fast", c.State().Projects[0].ID)

	close(api.release)
	require.NoError(t, <-done)

	s := c.State()
	assert.Equal(t, "slow", s.Projects[0].ID, "the later response wins even though it was issued first")
	assert.Equal(t, "fast", s.Filters.Search)
}

func TestController_ApplyLoadsOnce(t *testing.T) {
	api := new(MockAPI)
	want := gateway.ListParams{Page: 3, Limit: PageSize, Category: "Electronics", Difficulty: All, Search: "lamp", SortBy: "likes", SortOrder: "asc"}
	api.On("ListProjects", mock.Anything, want).Return(pageOf(model.Project{ID: "p1"}), nil).Once()
	c, _ := newController(t, api, false)

	f := DefaultFilters()
	f.Category = "Electronics"
	f.Search = "lamp"
	f.SortBy = "likes"
	f.SortOrder = "asc"
	require.NoError(t, c.Apply(context.Background(), f, 3))
	assert.Error(t, c.Apply(context.Background(), f, 0))

	assert.Equal(t, f, c.State().Filters)
	api.AssertExpectations(t)
}
