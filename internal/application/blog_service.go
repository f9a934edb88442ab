package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// BlogService publishes aquarium care articles.
type BlogService struct {
	repo   ports.BlogRepository
	policy *bluemonday.Policy
	logger zerolog.Logger
	now    clock
}

// NewBlogService creates a new blog service
func NewBlogService(repo ports.BlogRepository, logger zerolog.Logger) *BlogService {
	return &BlogService{repo: repo, policy: bluemonday.UGCPolicy(), logger: logger, now: time.Now}
}

// Published lists the public posts.
func (s *BlogService) Published(ctx context.Context) ([]*domain.BlogPost, error) {
	posts, err := s.repo.ListPosts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	return posts, nil
}

// PublishedBySlug returns a public post. Drafts are not found.
func (s *BlogService) PublishedBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	post, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}
	if post == nil || !post.Published {
		return nil, domain.ErrNotFound
	}
	return post, nil
}

// List returns every post, drafts included.
func (s *BlogService) List(ctx context.Context) ([]*domain.BlogPost, error) {
	posts, err := s.repo.ListPosts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	return posts, nil
}

// Get returns one post.
func (s *BlogService) Get(ctx context.Context, id string) (*domain.BlogPost, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}
	if post == nil {
		return nil, domain.ErrNotFound
	}
	return post, nil
}

// Create adds a post. Without a slug one is derived from the title and
// suffixed until it is free; an explicit slug must already be free.
func (s *BlogService) Create(ctx context.Context, post *domain.BlogPost) (*domain.BlogPost, error) {
	if err := s.prepare(post); err != nil {
		return nil, err
	}
	if err := s.assignSlug(ctx, post, ""); err != nil {
		return nil, err
	}
	now := s.now()
	post.ID = newID()
	if post.Author == "" {
		post.Author = domain.StaffFromContext(ctx)
	}
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Published {
		post.PublishedAt = &now
	} else {
		post.PublishedAt = nil
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError("slug", "Slug %s is already in use.", post.Slug)
		}
		return nil, fmt.Errorf("failed to create blog post: %w", err)
	}
	s.logger.Info().Str("slug", post.Slug).Bool("published", post.Published).Msg("Created blog post")
	return post, nil
}

// Update replaces a post's editable fields. The publish date is set the
// first time a post is published and kept afterwards.
func (s *BlogService) Update(ctx context.Context, post *domain.BlogPost) (*domain.BlogPost, error) {
	current, err := s.Get(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(post); err != nil {
		return nil, err
	}
	if post.Slug == "" {
		post.Slug = current.Slug
	}
	if err := s.assignSlug(ctx, post, post.ID); err != nil {
		return nil, err
	}
	if post.Author == "" {
		post.Author = current.Author
	}
	post.CreatedAt = current.CreatedAt
	post.UpdatedAt = s.now()
	post.PublishedAt = current.PublishedAt
	if post.Published && post.PublishedAt == nil {
		at := post.UpdatedAt
		post.PublishedAt = &at
	}
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError("slug", "Slug %s is already in use.", post.Slug)
		}
		return nil, fmt.Errorf("failed to update blog post: %w", err)
	}
	return post, nil
}

// Delete removes a post.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("failed to delete blog post: %w", err)
	}
	return nil
}

func (s *BlogService) prepare(post *domain.BlogPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	post.Content = s.policy.Sanitize(post.Content)
	if strings.TrimSpace(post.Content) == "" {
		return domain.NewValidationError("content", "Content is required.")
	}
	post.Excerpt = s.policy.Sanitize(post.Excerpt)
	if post.Slug != "" {
		post.Slug = slug.Make(post.Slug)
	}
	return nil
}

// assignSlug fills an empty slug from the title and checks that the slug is
// not used by a post other than selfID.
func (s *BlogService) assignSlug(ctx context.Context, post *domain.BlogPost, selfID string) error {
	if post.Slug != "" {
		taken, err := s.slugTaken(ctx, post.Slug, selfID)
		if err != nil {
			return err
		}
		if taken {
			return domain.NewValidationError("slug", "Slug %s is already in use.", post.Slug)
		}
		return nil
	}
	base := slug.Make(post.Title)
	if base == "" {
		base = "post"
	}
	candidate := base
	for n := 2; ; n++ {
		taken, err := s.slugTaken(ctx, candidate, selfID)
		if err != nil {
			return err
		}
		if !taken {
			post.Slug = candidate
			return nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *BlogService) slugTaken(ctx context.Context, candidate, selfID string) (bool, error) {
	existing, err := s.repo.GetPostBySlug(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("failed to check blog slug: %w", err)
	}
	return existing != nil && existing.ID != selfID, nil
}
