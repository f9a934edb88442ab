package memory

import (
	"context"
	"sort"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// BlogRepository is an in-memory ports.BlogRepository.
type BlogRepository struct {
	mu    sync.Mutex
	posts map[string]*domain.BlogPost
}

// NewBlogRepository creates an empty blog store.
func NewBlogRepository() *BlogRepository {
	return &BlogRepository{posts: make(map[string]*domain.BlogPost)}
}

var _ ports.BlogRepository = (*BlogRepository)(nil)

func (r *BlogRepository) CreatePost(_ context.Context, post *domain.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(post.Slug, "") {
		return domain.ErrDuplicate
	}
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *BlogRepository) GetPost(_ context.Context, id string) (*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(p), nil
}

func (r *BlogRepository) GetPostBySlug(_ context.Context, slug string) (*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return clonePost(p), nil
		}
	}
	return nil, nil
}

func (r *BlogRepository) UpdatePost(_ context.Context, post *domain.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.slugTaken(post.Slug, post.ID) {
		return domain.ErrDuplicate
	}
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *BlogRepository) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *BlogRepository) ListPosts(_ context.Context, publishedOnly bool) ([]*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.BlogPost, 0, len(r.posts))
	for _, p := range r.posts {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool { return domain.BlogPostsBefore(out[i], out[j]) })
	return out, nil
}

func (r *BlogRepository) slugTaken(slug, exceptID string) bool {
	for id, p := range r.posts {
		if id != exceptID && p.Slug == slug {
			return true
		}
	}
	return false
}
