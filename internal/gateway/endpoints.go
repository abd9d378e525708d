package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"diyclient/internal/model"
)

// ListParams are the query parameters of the project listing. Every field is
// sent, including the "all" sentinels.
type ListParams struct {
	Page       int
	Limit      int
	Category   string
	Difficulty string
	Search     string
	SortBy     string
	SortOrder  string
}

// Values encodes p as a query string.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("category", p.Category)
	v.Set("difficulty", p.Difficulty)
	v.Set("search", p.Search)
	v.Set("sortBy", p.SortBy)
	v.Set("sortOrder", p.SortOrder)
	return v
}

func projectPath(id string, suffix ...string) string {
	p := "/projects/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, req model.Registration) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, req, nil)
}

// Login exchanges credentials for a token and the user record.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error) {
	var out model.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects fetches one page of the feed.
func (c *Client) ListProjects(ctx context.Context, params ListParams) (*model.ProjectPage, error) {
	var out model.ProjectPage
	if err := c.do(ctx, http.MethodGet, "/projects", params.Values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists categories with their project counts.
func (c *Client) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	var out []model.CategoryCount
	if err := c.do(ctx, http.MethodGet, "/projects/categories/list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats fetches the platform-wide counters.
func (c *Client) Stats(ctx context.Context) (*model.PlatformStats, error) {
	var out model.PlatformStats
	if err := c.do(ctx, http.MethodGet, "/projects/stats/overview", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodGet, projectPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject publishes a new project and returns it with its id.
func (c *Client) CreateProject(ctx context.Context, payload model.ProjectPayload) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject replaces a project's content.
func (c *Client) UpdateProject(ctx context.Context, id string, payload model.ProjectPayload) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPut, projectPath(id), nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, projectPath(id), nil, nil, nil)
}

// ToggleLike flips the viewer's like on a project.
func (c *Client) ToggleLike(ctx context.Context, id string) (*model.LikeResult, error) {
	var out model.LikeResult
	if err := c.do(ctx, http.MethodPost, projectPath(id, "like"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleSave flips the viewer's bookmark on a project.
func (c *Client) ToggleSave(ctx context.Context, id string) (*model.SaveResult, error) {
	var out model.SaveResult
	if err := c.do(ctx, http.MethodPost, projectPath(id, "save"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddComment posts a comment and returns the created comment.
func (c *Client) AddComment(ctx context.Context, id, text string) (*model.Comment, error) {
	var out model.Comment
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, projectPath(id, "comments"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SavedProjects lists the viewer's bookmarked projects.
func (c *Client) SavedProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.do(ctx, http.MethodGet, "/projects/saved/list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile fetches a user's profile with stats, recent projects and category breakdown.
func (c *Client) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	var out model.Profile
	if err := c.do(ctx, http.MethodGet, "/projects/profile/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserProjects fetches one page of a user's projects.
func (c *Client) UserProjects(ctx context.Context, userID string, page, limit int) (*model.ProjectPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out model.ProjectPage
	if err := c.do(ctx, http.MethodGet, "/projects/user/"+url.PathEscape(userID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
