package model

// Pagination describes where a page sits in a paginated listing.
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProjects int  `json:"totalProjects"`
	HasNextPage   bool `json:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage"`
}

// ProjectPage is one page of a project listing.
type ProjectPage struct {
	Projects []Project `json:"projects"`
	Pagination
}

// CategoryCount is a feed category with the number of published projects in it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PlatformStats are the platform-wide counters shown above the feed.
type PlatformStats struct {
	TotalProjects  int `json:"totalProjects"`
	TotalUsers     int `json:"totalUsers"`
	RecentProjects int `json:"recentProjects"`
}
