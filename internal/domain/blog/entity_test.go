package blog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validPost() *Post {
	return &Post{
		ID:      "11111111-2222-3333-4444-555555555555",
		Title:   "Housing Policy Roundup",
		Slug:    "housing-policy-roundup",
		Content: "<p>body</p>",
		Status:  StatusDraft,
		Author:  "LegiEquity Team",
	}
}

func TestPostVisible(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name        string
		status      Status
		publishedAt *time.Time
		want        bool
	}{
		{"published in the past", StatusPublished, &past, true},
		{"published right now", StatusPublished, &now, true},
		{"scheduled in the future", StatusPublished, &future, false},
		{"published without timestamp", StatusPublished, nil, false},
		{"draft with timestamp", StatusDraft, &past, false},
		{"archived with timestamp", StatusArchived, &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPost()
			p.Status = tt.status
			p.PublishedAt = tt.publishedAt
			assert.Equal(t, tt.want, p.Visible(now))
		})
	}
}

func TestPostValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Post)
		valid  bool
	}{
		{"valid post", func(p *Post) {}, true},
		{"missing title", func(p *Post) { p.Title = "" }, false},
		{"empty slug", func(p *Post) { p.Slug = "" }, false},
		{"uppercase slug", func(p *Post) { p.Slug = "Bad-Slug" }, false},
		{"slug with spaces", func(p *Post) { p.Slug = "bad slug" }, false},
		{"slug with leading dash", func(p *Post) { p.Slug = "-bad" }, false},
		{"missing content", func(p *Post) { p.Content = "" }, false},
		{"unknown status", func(p *Post) { p.Status = "live" }, false},
		{"missing author", func(p *Post) { p.Author = "" }, false},
		{"review status", func(p *Post) { p.Status = StatusReview }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPost()
			tt.mutate(p)
			err := p.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusReview.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.True(t, StatusArchived.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("deleted").Valid())
}
