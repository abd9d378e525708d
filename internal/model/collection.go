package model

// PatchByID returns a copy of projects in which only the project with the
// given id has been passed through fn. The input slice is not modified.
func PatchByID(projects []Project, id string, fn func(*Project)) ([]Project, bool) {
	out := make([]Project, len(projects))
	copy(out, projects)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
			return out, true
		}
	}
	return out, false
}

// RemoveByID returns a copy of projects without the project with the given id,
// keeping the relative order of the others.
func RemoveByID(projects []Project, id string) ([]Project, bool) {
	out := make([]Project, 0, len(projects))
	removed := false
	for _, p := range projects {
		if !removed && p.ID == id {
			removed = true
			continue
		}
		out = append(out, p)
	}
	return out, removed
}

// FindByID returns the project with the given id.
func FindByID(projects []Project, id string) (Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ApplyLike copies a like toggle result onto p.
func ApplyLike(res LikeResult) func(*Project) {
	return func(p *Project) {
		p.IsLiked = res.Liked
		p.LikeCount = res.LikeCount
	}
}

// ApplySave copies a save toggle result onto p.
func ApplySave(res SaveResult) func(*Project) {
	return func(p *Project) {
		p.IsSaved = res.Saved
	}
}
