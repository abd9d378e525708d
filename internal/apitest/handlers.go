package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	apperrors "diyclient/internal/errors"
	"diyclient/internal/model"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CommentRequest is the body of POST /projects/:id/comments.
type CommentRequest struct {
	Text string `json:"text"`
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, apperrors.ErrorResponse{Message: msg})
}

func intParam(c echo.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil && v > 0 {
		return v
	}
	return def
}

func (s *Server) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Please provide a username, a valid email and a password of at least 6 characters")
	}

	s.data.mu.Lock()
	exists := s.data.userByEmail(req.Email) != nil
	s.data.mu.Unlock()
	if exists {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}

	user := s.AddUser(req.Username, req.Email, req.Password)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (s *Server) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}

	s.data.mu.Lock()
	u := s.data.userByEmail(req.Email)
	s.data.mu.Unlock()
	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}

	token := s.TokenFor(u.ID)
	return c.JSON(http.StatusOK, model.AuthResult{Token: token, User: u.User})
}

func (s *Server) listProjects(c echo.Context) error {
	q := listQuery{
		category:   c.QueryParam("category"),
		difficulty: c.QueryParam("difficulty"),
		search:     strings.TrimSpace(c.QueryParam("search")),
		sortBy:     c.QueryParam("sortBy"),
		sortOrder:  c.QueryParam("sortOrder"),
		published:  true,
	}
	return s.page(c, q)
}

func (s *Server) userProjects(c echo.Context) error {
	q := listQuery{authorID: c.Param("userId"), sortOrder: "desc"}
	if q.authorID != viewerID(c) {
		q.published = true
	}
	return s.page(c, q)
}

func (s *Server) page(c echo.Context, q listQuery) error {
	viewer := viewerID(c)

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	recs, pagination := paginate(s.data.list(q), intParam(c, "page", 1), intParam(c, "limit", 12))
	projects := make([]model.Project, 0, len(recs))
	for _, rec := range recs {
		projects = append(projects, s.data.view(rec, viewer))
	}
	return c.JSON(http.StatusOK, model.ProjectPage{Projects: projects, Pagination: pagination})
}

func (s *Server) categories(c echo.Context) error {
	s.data.mu.Lock()
	counts := make(map[string]int)
	for _, rec := range s.data.projects {
		if rec.project.IsPublished {
			counts[rec.project.Category]++
		}
	}
	s.data.mu.Unlock()

	out := make([]model.CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, model.CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return c.JSON(http.StatusOK, out)
}

func (s *Server) stats(c echo.Context) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	var stats model.PlatformStats
	weekAgo := s.data.clock.AddDate(0, 0, -7)
	for _, rec := range s.data.projects {
		if !rec.project.IsPublished {
			continue
		}
		stats.TotalProjects++
		if rec.project.CreatedAt.After(weekAgo) {
			stats.RecentProjects++
		}
	}
	stats.TotalUsers = len(s.data.users)
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) getProject(c echo.Context) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	rec := s.data.project(c.Param("id"))
	if rec == nil {
		return message(c, http.StatusNotFound, "Project not found")
	}
	rec.project.Views++
	return c.JSON(http.StatusOK, s.data.view(rec, viewerID(c)))
}

func validPayload(p model.ProjectPayload) bool {
	return strings.TrimSpace(p.Title) != "" &&
		strings.TrimSpace(p.Description) != "" &&
		strings.TrimSpace(p.Category) != ""
}

func (s *Server) createProject(c echo.Context) error {
	var payload model.ProjectPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !validPayload(payload) {
		return message(c, http.StatusBadRequest, "Title, description and category are required")
	}
	viewer := viewerID(c)

	s.data.mu.Lock()
	author, ok := s.data.users[viewer]
	s.data.mu.Unlock()
	if !ok {
		return message(c, http.StatusUnauthorized, "User not found")
	}

	p := applyPayload(model.Project{}, payload)
	p.Author = model.Author{ID: author.ID, Username: author.Username}
	created := s.AddProject(p)
	created.IsAuthor = true
	return c.JSON(http.StatusCreated, created)
}

func applyPayload(p model.Project, payload model.ProjectPayload) model.Project {
	p.Title = payload.Title
	p.Description = payload.Description
	p.Category = payload.Category
	p.Difficulty = payload.Difficulty
	p.EstimatedTime = payload.EstimatedTime
	p.TotalCost = payload.TotalCost
	p.Tags = payload.Tags
	p.Materials = payload.Materials
	p.Tools = payload.Tools
	p.Steps = payload.Steps
	p.Images = payload.Images
	p.IsPublished = payload.IsPublished
	p.IsFeatured = payload.IsFeatured
	return p
}

// authored loads the project for a write by its author, answering 404/403 itself.
func (s *Server) authored(c echo.Context) (*projectRecord, error) {
	rec := s.data.project(c.Param("id"))
	if rec == nil {
		return nil, message(c, http.StatusNotFound, "Project not found")
	}
	if rec.project.Author.ID != viewerID(c) {
		return nil, message(c, http.StatusForbidden, "Not authorized to modify this project")
	}
	return rec, nil
}

func (s *Server) updateProject(c echo.Context) error {
	var payload model.ProjectPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !validPayload(payload) {
		return message(c, http.StatusBadRequest, "Title, description and category are required")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	rec, err := s.authored(c)
	if rec == nil {
		return err
	}
	rec.project = applyPayload(rec.project, payload)
	return c.JSON(http.StatusOK, s.data.view(rec, viewerID(c)))
}

func (s *Server) deleteProject(c echo.Context) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	rec, err := s.authored(c)
	if rec == nil {
		return err
	}
	s.data.removeProject(rec.project.ID)
	return message(c, http.StatusOK, "Project deleted successfully")
}

func (s *Server) toggleLike(c echo.Context) error {
	viewer := viewerID(c)
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	rec := s.data.project(c.Param("id"))
	if rec == nil {
		return message(c, http.StatusNotFound, "Project not found")
	}
	liked := !rec.likes[viewer]
	if liked {
		rec.likes[viewer] = true
	} else {
		delete(rec.likes, viewer)
	}
	return c.JSON(http.StatusOK, model.LikeResult{Liked: liked, LikeCount: len(rec.likes)})
}

func (s *Server) toggleSave(c echo.Context) error {
	viewer := viewerID(c)
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if s.data.project(c.Param("id")) == nil {
		return message(c, http.StatusNotFound, "Project not found")
	}
	saved := s.data.saves[viewer]
	if saved == nil {
		saved = make(map[string]bool)
		s.data.saves[viewer] = saved
	}
	id := c.Param("id")
	now := !saved[id]
	if now {
		saved[id] = true
	} else {
		delete(saved, id)
	}
	return c.JSON(http.StatusOK, model.SaveResult{Saved: now})
}

func (s *Server) addComment(c echo.Context) error {
	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return message(c, http.StatusBadRequest, "Comment text is required")
	}
	viewer := viewerID(c)

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	rec := s.data.project(c.Param("id"))
	if rec == nil {
		return message(c, http.StatusNotFound, "Project not found")
	}
	var username string
	if u, ok := s.data.users[viewer]; ok {
		username = u.Username
	}
	comment := model.Comment{
		ID:        uuid.NewString(),
		User:      model.CommentUser{ID: viewer, Username: username},
		Text:      req.Text,
		CreatedAt: s.data.tick(),
	}
	rec.project.Comments = append(rec.project.Comments, comment)
	return c.JSON(http.StatusCreated, comment)
}

func (s *Server) savedList(c echo.Context) error {
	viewer := viewerID(c)
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	out := make([]model.Project, 0)
	for _, rec := range s.data.projects {
		if s.data.saves[viewer][rec.project.ID] {
			out = append(out, s.data.view(rec, viewer))
		}
	}
	return c.JSON(http.StatusOK, out)
}

const recentProjectsLimit = 5

func (s *Server) profile(c echo.Context) error {
	userID := c.Param("userId")
	viewer := viewerID(c)

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	u, ok := s.data.users[userID]
	if !ok {
		return message(c, http.StatusNotFound, "User not found")
	}

	own := viewer == userID
	prof := model.Profile{
		User: model.ProfileUser{
			ID:           u.ID,
			Username:     u.Username,
			CreatedAt:    u.createdAt,
			IsOwnProfile: own,
		},
		RecentProjects: make([]model.Project, 0),
		CategoryStats:  make([]model.CategoryStat, 0),
	}
	if own {
		prof.User.Email = u.Email
	}

	counts := make(map[string]int)
	for _, rec := range s.data.list(listQuery{authorID: userID, sortOrder: "desc"}) {
		prof.Stats.TotalProjects++
		prof.Stats.TotalLikes += len(rec.likes)
		prof.Stats.TotalViews += rec.project.Views
		prof.Stats.TotalComments += len(rec.project.Comments)
		counts[rec.project.Category]++
		if len(prof.RecentProjects) < recentProjectsLimit {
			prof.RecentProjects = append(prof.RecentProjects, s.data.view(rec, viewer))
		}
	}
	prof.Stats.SavedProjectsCount = len(s.data.saves[userID])

	for name, n := range counts {
		prof.CategoryStats = append(prof.CategoryStats, model.CategoryStat{Name: name, Count: n})
	}
	sort.Slice(prof.CategoryStats, func(i, j int) bool {
		a, b := prof.CategoryStats[i], prof.CategoryStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return c.JSON(http.StatusOK, prof)
}
