package blog

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// PostID tipe untuk BlogPost
type PostID string

// Status enum
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusPublished, StatusArchived:
		return true
	}
	return false
}

var (
	ErrNotFound  = errors.New("blog post not found")
	ErrSlugTaken = errors.New("slug is already in use")
	// ErrInvalid wraps field-level validation failures.
	ErrInvalid = errors.New("invalid blog post")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Post is the publishable artifact created from a generation response and
// subsequently editable through the admin CMS.
type Post struct {
	ID          PostID     `json:"post_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"` // rendered HTML
	Status      Status     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Author      string     `json:"author"`
	IsCurated   bool       `json:"is_curated"`
	HeroImage   string     `json:"hero_image,omitempty"`
	MainImage   string     `json:"main_image,omitempty"`
	Thumb       string     `json:"thumb,omitempty"`
	ClusterID   string     `json:"cluster_id,omitempty"`
	AnalysisID  string     `json:"analysis_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Visible reports whether the post may appear on public endpoints:
// status published and published_at set and not in the future.
func (p *Post) Visible(now time.Time) bool {
	return p.Status == StatusPublished && p.PublishedAt != nil && !p.PublishedAt.After(now)
}

func (p *Post) Validate() error {
	if p.Title == "" || len(p.Title) > 255 {
		return fmt.Errorf("%w: title is required and must be at most 255 characters", ErrInvalid)
	}
	if !slugPattern.MatchString(p.Slug) || len(p.Slug) > 255 {
		return fmt.Errorf("%w: slug must be lowercase letters, numbers and hyphens", ErrInvalid)
	}
	if p.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalid)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: status must be one of draft, review, published, archived", ErrInvalid)
	}
	if p.Author == "" || len(p.Author) > 100 {
		return fmt.Errorf("%w: author is required and must be at most 100 characters", ErrInvalid)
	}
	return nil
}
