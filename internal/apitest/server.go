// Package apitest runs an in-memory rendition of the DIY community REST API
// for tests and local demos.
package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"diyclient/internal/auth"
	"diyclient/internal/model"
)

const (
	defaultSecret = "apitest-secret"
	viewerKey     = "viewer"
	claimsKey     = "user"
)

// Request is one call received by the fake API.
type Request struct {
	Method     string
	Route      string // echo route pattern, e.g. /api/projects/:id/like
	Path       string
	Query      url.Values
	Body       string
	Authorized bool
}

type failure struct {
	status  int
	message string
}

// Server is the fake API. All methods are safe for concurrent use.
type Server struct {
	Echo *echo.Echo

	srv    *httptest.Server
	data   *store
	signer *signer

	mu       sync.Mutex
	requests []Request
	failures map[string]failure
}

// NewServer builds the fake API without starting a listener.
func NewServer() *Server {
	s := &Server{
		Echo:     echo.New(),
		data:     newStore(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		signer:   newSigner(defaultSecret),
		failures: make(map[string]failure),
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Validator = &CustomValidator{validator: validator.New()}
	s.routes()
	return s
}

// New starts the fake API on a loopback listener that is closed when t ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := NewServer()
	s.srv = httptest.NewServer(s.Echo)
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base URL, including the /api prefix.
func (s *Server) URL() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.URL + "/api"
}

func (s *Server) routes() {
	e := s.Echo
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(s.record)
	e.Use(s.inject)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := e.Group("/api", s.optionalAuth)

	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	api.GET("/projects", s.listProjects)
	api.GET("/projects/categories/list", s.categories)
	api.GET("/projects/stats/overview", s.stats)
	api.GET("/projects/profile/:userId", s.profile)
	api.GET("/projects/user/:userId", s.userProjects)
	api.GET("/projects/:id", s.getProject)

	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  claimsKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return s.signer.validate(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid")
		},
	}))

	secured.POST("/projects", s.createProject)
	secured.PUT("/projects/:id", s.updateProject)
	secured.DELETE("/projects/:id", s.deleteProject)
	secured.POST("/projects/:id/like", s.toggleLike)
	secured.POST("/projects/:id/save", s.toggleSave)
	secured.POST("/projects/:id/comments", s.addComment)
	secured.GET("/projects/saved/list", s.savedList)
}

// record captures every routed request.
func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:     req.Method,
			Route:      c.Path(),
			Path:       req.URL.Path,
			Query:      req.URL.Query(),
			Body:       string(body),
			Authorized: strings.HasPrefix(req.Header.Get(echo.HeaderAuthorization), "Bearer "),
		})
		s.mu.Unlock()
		return next(c)
	}
}

// inject answers with a configured failure instead of the real handler.
func (s *Server) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		f, ok := s.failures[routeKey(c.Request().Method, c.Path())]
		s.mu.Unlock()
		if ok {
			return echo.NewHTTPError(f.status, f.message)
		}
		return next(c)
	}
}

// optionalAuth resolves the viewer from a valid bearer token, ignoring bad ones.
func (s *Server) optionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if claims, err := s.signer.validate(token); err == nil {
				c.Set(viewerKey, claims.UserID)
			}
		}
		return next(c)
	}
}

func viewerID(c echo.Context) string {
	if claims, ok := c.Get(claimsKey).(*auth.Claims); ok {
		return claims.UserID
	}
	id, _ := c.Get(viewerKey).(string)
	return id
}

func routeKey(method, route string) string {
	return method + " " + route
}

// Fail makes every request matching method and the echo route pattern answer
// with status and message until ClearFailures is called.
func (s *Server) Fail(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[routeKey(method, route)] = failure{status: status, message: message}
}

// ClearFailures removes every configured failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and route.
func (s *Server) Count(method, route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Route == route {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request matching method and route.
func (s *Server) LastRequest(method, route string) (Request, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Route == route {
			return reqs[i], true
		}
	}
	return Request{}, false
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// AddUser registers a user directly and returns it.
func (s *Server) AddUser(username, email, password string) model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	u := &userRecord{
		User:         model.User{ID: uuid.NewString(), Username: username, Email: email},
		passwordHash: hash,
		createdAt:    s.data.tick(),
	}
	s.data.users[u.ID] = u
	return u.User
}

// TokenFor mints a valid token for userID.
func (s *Server) TokenFor(userID string) string {
	tok, err := s.signer.issue(userID, time.Now())
	if err != nil {
		panic(err)
	}
	return tok
}

// AddProject stores p, assigning an id and creation time when missing, and
// returns the stored copy.
func (s *Server) AddProject(p model.Project) model.Project {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.data.tick()
	}
	if u, ok := s.data.users[p.Author.ID]; ok && p.Author.Username == "" {
		p.Author.Username = u.Username
	}
	rec := &projectRecord{project: p, likes: make(map[string]bool)}
	s.data.projects = append(s.data.projects, rec)
	return s.data.view(rec, "")
}

// Like records a like by userID on projectID.
func (s *Server) Like(userID, projectID string) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if rec := s.data.project(projectID); rec != nil {
		rec.likes[userID] = true
	}
}

// Save records a bookmark by userID on projectID.
func (s *Server) Save(userID, projectID string) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if s.data.saves[userID] == nil {
		s.data.saves[userID] = make(map[string]bool)
	}
	s.data.saves[userID][projectID] = true
}

// Project returns the stored project as seen by viewerID.
func (s *Server) Project(id, viewerID string) (model.Project, bool) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	rec := s.data.project(id)
	if rec == nil {
		return model.Project{}, false
	}
	return s.data.view(rec, viewerID), true
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
