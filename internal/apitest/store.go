package apitest

import (
	"sort"
	"strings"
	"sync"
	"time"

	"diyclient/internal/model"
)

type userRecord struct {
	model.User
	passwordHash []byte
	createdAt    time.Time
}

type projectRecord struct {
	project model.Project
	likes   map[string]bool
}

// store is the in-memory data behind the fake API.
type store struct {
	mu       sync.Mutex
	users    map[string]*userRecord
	projects []*projectRecord
	saves    map[string]map[string]bool
	clock    time.Time
}

func newStore(start time.Time) *store {
	return &store{
		users: make(map[string]*userRecord),
		saves: make(map[string]map[string]bool),
		clock: start,
	}
}

// tick advances the fake clock so creation times are strictly ordered.
func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *store) userByEmail(email string) *userRecord {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *store) project(id string) *projectRecord {
	for _, rec := range s.projects {
		if rec.project.ID == id {
			return rec
		}
	}
	return nil
}

func (s *store) removeProject(id string) bool {
	for i, rec := range s.projects {
		if rec.project.ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			for _, saved := range s.saves {
				delete(saved, id)
			}
			return true
		}
	}
	return false
}

// view renders rec for viewerID, filling the viewer-relative fields.
func (s *store) view(rec *projectRecord, viewerID string) model.Project {
	p := rec.project
	p.LikeCount = len(rec.likes)
	p.CommentCount = len(p.Comments)
	p.IsLiked = viewerID != "" && rec.likes[viewerID]
	p.IsSaved = viewerID != "" && s.saves[viewerID][p.ID]
	p.IsAuthor = viewerID != "" && p.Author.ID == viewerID
	p.Tags = append([]string(nil), p.Tags...)
	p.Materials = append([]model.Material(nil), p.Materials...)
	p.Tools = append([]model.Tool(nil), p.Tools...)
	p.Steps = append([]model.Step(nil), p.Steps...)
	p.Images = append([]model.Image(nil), p.Images...)
	p.Comments = append([]model.Comment(nil), p.Comments...)
	return p
}

type listQuery struct {
	category   string
	difficulty string
	search     string
	sortBy     string
	sortOrder  string
	authorID   string
	published  bool
}

func (q listQuery) matches(rec *projectRecord) bool {
	p := rec.project
	if q.published && !p.IsPublished {
		return false
	}
	if q.authorID != "" && p.Author.ID != q.authorID {
		return false
	}
	if q.category != "" && q.category != "all" && p.Category != q.category {
		return false
	}
	if q.difficulty != "" && q.difficulty != "all" && string(p.Difficulty) != q.difficulty {
		return false
	}
	if q.search == "" {
		return true
	}
	needle := strings.ToLower(q.search)
	haystack := []string{p.Title, p.Description, p.Category}
	haystack = append(haystack, p.Tags...)
	for _, m := range p.Materials {
		haystack = append(haystack, m.Name)
	}
	for _, h := range haystack {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func (s *store) list(q listQuery) []*projectRecord {
	var out []*projectRecord
	for _, rec := range s.projects {
		if q.matches(rec) {
			out = append(out, rec)
		}
	}

	less := func(a, b *projectRecord) bool { return a.project.CreatedAt.Before(b.project.CreatedAt) }
	switch q.sortBy {
	case "likes":
		less = func(a, b *projectRecord) bool { return len(a.likes) < len(b.likes) }
	case "views":
		less = func(a, b *projectRecord) bool { return a.project.Views < b.project.Views }
	case "totalCost":
		less = func(a, b *projectRecord) bool { return a.project.TotalCost < b.project.TotalCost }
	}
	asc := q.sortOrder == "asc"
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

func paginate(recs []*projectRecord, page, limit int) ([]*projectRecord, model.Pagination) {
	if limit <= 0 {
		limit = 12
	}
	if page <= 0 {
		page = 1
	}
	total := len(recs)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return recs[start:end], model.Pagination{
		CurrentPage:   page,
		TotalPages:    pages,
		TotalProjects: total,
		HasNextPage:   page < pages,
		HasPrevPage:   page > 1,
	}
}
