package model

import "time"

// ProfileUser is the user block of a profile.
type ProfileUser struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	IsOwnProfile bool      `json:"isOwnProfile"`
}

// ProfileStats aggregates a user's activity.
type ProfileStats struct {
	TotalProjects      int `json:"totalProjects"`
	TotalLikes         int `json:"totalLikes"`
	TotalViews         int `json:"totalViews"`
	TotalComments      int `json:"totalComments"`
	SavedProjectsCount int `json:"savedProjectsCount"`
}

// CategoryStat is one row of a profile's category breakdown.
type CategoryStat struct {
	Name  string `json:"_id"`
	Count int    `json:"count"`
}

// Share returns the percentage of total this category accounts for.
func (c CategoryStat) Share(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(c.Count) / float64(total) * 100
}

// Profile is the payload of the profile endpoint.
type Profile struct {
	User           ProfileUser    `json:"user"`
	Stats          ProfileStats   `json:"stats"`
	RecentProjects []Project      `json:"recentProjects"`
	CategoryStats  []CategoryStat `json:"categoryStats"`
}
