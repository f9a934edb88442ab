package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxBlogTitle = 250
	maxBlogSlug  = 260
)

// BlogPost is an aquarium care article. Only published posts are public.
type BlogPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Author      string     `json:"author,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate trims the text fields and checks the required ones.
func (p *BlogPost) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	if p.Title == "" {
		return NewValidationError("title", "Title is required.")
	}
	if utf8.RuneCountInString(p.Title) > maxBlogTitle {
		return NewValidationError("title", "Title must be at most %d characters.", maxBlogTitle)
	}
	if utf8.RuneCountInString(p.Slug) > maxBlogSlug {
		return NewValidationError("slug", "Slug must be at most %d characters.", maxBlogSlug)
	}
	if strings.TrimSpace(p.Content) == "" {
		return NewValidationError("content", "Content is required.")
	}
	return nil
}

// BlogPostsBefore orders posts newest published first, then newest created.
// Drafts without a publish date sort after published posts.
func BlogPostsBefore(a, b *BlogPost) bool {
	switch {
	case a.PublishedAt != nil && b.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
		return a.PublishedAt.After(*b.PublishedAt)
	case a.PublishedAt != nil && b.PublishedAt == nil:
		return true
	case a.PublishedAt == nil && b.PublishedAt != nil:
		return false
	}
	return a.CreatedAt.After(b.CreatedAt)
}
