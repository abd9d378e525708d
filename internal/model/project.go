package model

import "time"

// Difficulty is the skill level a project asks for.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists the levels in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Categories are the project categories offered when creating or editing.
var Categories = []string{
	"Woodworking",
	"Electronics",
	"Crafts & Arts",
	"Home Decor",
	"Jewelry Making",
	"Gardening",
	"Cooking & Baking",
	"Sewing & Textiles",
	"Automotive",
	"3D Printing",
	"Metalworking",
	"Photography",
	"Other",
}

// PlaceholderImageURL is shown for projects without any image.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1581833971358-2c8b550f87b3?w=400"

// Author is the public identity attached to a project.
type Author struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// Material is one entry of a project's bill of materials.
type Material struct {
	Name          string  `json:"name"`
	Quantity      string  `json:"quantity"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// Tool is one tool a project needs.
type Tool struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Step is one instruction of a tutorial. StepNumber is 1-based.
type Step struct {
	StepNumber  int      `json:"stepNumber"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tips        []string `json:"tips,omitempty"`
}

// Image is a picture attached to a project.
type Image struct {
	URL         string `json:"url"`
	IsMainImage bool   `json:"isMainImage"`
	Caption     string `json:"caption"`
}

// CommentUser is the author of a comment.
type CommentUser struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username"`
}

// Comment is a reader remark on a project.
type Comment struct {
	ID        string      `json:"_id"`
	User      CommentUser `json:"user"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Project is the client's copy of a tutorial as served by the API.
// IsLiked, IsSaved and IsAuthor are relative to the viewer.
type Project struct {
	ID            string     `json:"_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime string     `json:"estimatedTime"`
	TotalCost     float64    `json:"totalCost"`
	Tags          []string   `json:"tags"`
	Materials     []Material `json:"materials"`
	Tools         []Tool     `json:"tools"`
	Steps         []Step     `json:"steps"`
	Images        []Image    `json:"images"`
	IsPublished   bool       `json:"isPublished"`
	IsFeatured    bool       `json:"isFeatured"`
	Author        Author     `json:"author"`
	Views         int        `json:"views"`
	LikeCount     int        `json:"likeCount"`
	IsLiked       bool       `json:"isLiked"`
	IsSaved       bool       `json:"isSaved"`
	IsAuthor      bool       `json:"isAuthor"`
	CommentCount  int        `json:"commentCount"`
	Comments      []Comment  `json:"comments"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// MainImage returns the URL of the flagged main image, falling back to the
// first image and then to PlaceholderImageURL.
func (p Project) MainImage() string {
	for _, img := range p.Images {
		if img.IsMainImage && img.URL != "" {
			return img.URL
		}
	}
	if len(p.Images) > 0 && p.Images[0].URL != "" {
		return p.Images[0].URL
	}
	return PlaceholderImageURL
}

// AuthoredBy reports whether userID is the recorded author.
func (p Project) AuthoredBy(userID string) bool {
	return userID != "" && p.Author.ID == userID
}

// ProjectPayload is the body sent when creating or updating a project.
type ProjectPayload struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime string     `json:"estimatedTime"`
	TotalCost     float64    `json:"totalCost"`
	Tags          []string   `json:"tags"`
	Materials     []Material `json:"materials"`
	Tools         []Tool     `json:"tools"`
	Steps         []Step     `json:"steps"`
	Images        []Image    `json:"images"`
	IsPublished   bool       `json:"isPublished"`
	IsFeatured    bool       `json:"isFeatured"`
}

// LikeResult is the API answer to a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// SaveResult is the API answer to a save toggle.
type SaveResult struct {
	Saved bool `json:"saved"`
}
