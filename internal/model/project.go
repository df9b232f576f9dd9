package model

import "time"

// Project is a saved website owned by a user.
type Project struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	Name      string    `json:"name" bson:"name"`
	HTMLCode  string    `json:"htmlCode" bson:"htmlCode"`
	CSSCode   string    `json:"cssCode" bson:"cssCode"`
	JSCode    string    `json:"jsCode" bson:"jsCode"`
	IsPublic  bool      `json:"isPublic" bson:"isPublic"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProjectSummary is a project listing entry with its current SEO score.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"isPublic"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProjectUpdate carries the fields a PUT may change. Nil fields are left untouched.
type ProjectUpdate struct {
	Name     *string `json:"name,omitempty"`
	HTMLCode *string `json:"htmlCode,omitempty"`
	CSSCode  *string `json:"cssCode,omitempty"`
	JSCode   *string `json:"jsCode,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

// Template is a starter site from the gallery. Opening one in the editor
// copies it; templates themselves are read-only.
type Template struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Description  string    `json:"description" bson:"description"`
	HTML         string    `json:"html" bson:"html"`
	CSS          string    `json:"css,omitempty" bson:"css"`
	ThumbnailURL string    `json:"thumbnailUrl" bson:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
