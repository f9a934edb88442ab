package application_test

import (
	"context"
	"testing"
	"time"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogPostLifecycle(t *testing.T) {
	svc := application.NewBlogService(memory.NewBlogRepository(), zerolog.Nop())
	ctx := domain.WithStaff(context.Background(), "priya")

	draft, err := svc.Create(ctx, &domain.BlogPost{
		Title:   "Cycling Your First Tank!",
		Content: `<p>Be patient.</p><script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "cycling-your-first-tank", draft.Slug)
	assert.Equal(t, "priya", draft.Author)
	assert.Equal(t, "<p>Be patient.</p>", draft.Content)
	assert.Nil(t, draft.PublishedAt)

	_, err = svc.PublishedBySlug(ctx, draft.Slug)
	assert.ErrorIs(t, err, domain.ErrNotFound, "drafts are not public")

	draft.Published = true
	published, err := svc.Update(ctx, draft)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	firstPublished := *published.PublishedAt

	got, err := svc.PublishedBySlug(ctx, "cycling-your-first-tank")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	got.Title = "Cycling your first tank"
	again, err := svc.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, firstPublished, *again.PublishedAt, "publish date is kept")
	assert.Equal(t, "cycling-your-first-tank", again.Slug)

	require.NoError(t, svc.Delete(ctx, draft.ID))
	_, err = svc.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlogSlugsStayUnique(t *testing.T) {
	svc := application.NewBlogService(memory.NewBlogRepository(), zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Create(ctx, &domain.BlogPost{Title: "Betta care", Content: "one"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &domain.BlogPost{Title: "Betta Care", Content: "two"})
	require.NoError(t, err)
	third, err := svc.Create(ctx, &domain.BlogPost{Title: "Betta care", Content: "three"})
	require.NoError(t, err)
	assert.Equal(t, []string{"betta-care", "betta-care-2", "betta-care-3"}, []string{first.Slug, second.Slug, third.Slug})

	_, err = svc.Create(ctx, &domain.BlogPost{Title: "Other", Slug: "Betta Care", Content: "four"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	second.Slug = "betta-care"
	_, err = svc.Update(ctx, second)
	assert.ErrorAs(t, err, &verr)
}

func TestPublishedPostsNewestFirst(t *testing.T) {
	svc := application.NewBlogService(memory.NewBlogRepository(), zerolog.Nop())
	ctx := context.Background()

	for _, title := range []string{"Plants", "Lighting", "Draft notes"} {
		_, err := svc.Create(ctx, &domain.BlogPost{Title: title, Content: "body", Published: title != "Draft notes"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	posts, err := svc.Published(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Lighting", posts[0].Title)
	assert.Equal(t, "Plants", posts[1].Title)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Draft notes", all[2].Title)
}

func TestBlogRejectsContentThatSanitizesAway(t *testing.T) {
	svc := application.NewBlogService(memory.NewBlogRepository(), zerolog.Nop())
	_, err := svc.Create(context.Background(), &domain.BlogPost{Title: "Empty", Content: "<script>alert(1)</script>"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
