package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"moodblog/internal/feed"
	"moodblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(repo *postRepoStub) *PostService {
	return NewPostService(repo, feed.DefaultWeights)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := newPostService(noopPostRepo())
	ctx := context.Background()

	t.Run("invalid mood", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Content: "hi", Mood: "grumpy"})
		assertValidationError(t, err)
	})

	t.Run("neither content nor image", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Mood: "happy"})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID:  1,
			Mood:    "happy",
			Content: strings.Repeat("x", maxContentLen+1),
		})
		assertValidationError(t, err)
	})

	t.Run("image only is allowed", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Mood: "calm", ImageURL: "/media/i/abc/master.jpg"})
		assert.NoError(t, err)
	})
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 7
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id, currentUserID uint) (*models.Post, error) {
		require.Equal(t, uint(7), id)
		require.Equal(t, uint(1), currentUserID)
		return &models.Post{ID: id, Content: "sunny", Mood: models.MoodHappy, UserID: 1}, nil
	}

	svc := newPostService(repo)
	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Content: "sunny", Mood: "happy"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.ID)
	assert.Equal(t, models.MoodHappy, post.Mood)
}

func TestPostService_Feed_RanksByEngagementAndRecency(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := noopPostRepo()
	repo.listFn = func(_ context.Context, limit, offset int, _ uint) ([]*models.Post, error) {
		assert.Equal(t, feedCandidateWindow, limit)
		assert.Zero(t, offset)
		return []*models.Post{
			{ID: 1, CreatedAt: now.Add(-time.Hour), LikesCount: 0},
			{ID: 2, CreatedAt: now.Add(-time.Hour), LikesCount: 10},
			{ID: 3, CreatedAt: now.Add(-100 * time.Hour), LikesCount: 1},
		}, nil
	}

	svc := newPostService(repo)
	svc.now = func() time.Time { return now }

	posts, err := svc.Feed(context.Background(), FeedInput{Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, uint(2), posts[0].ID)
	assert.Equal(t, uint(1), posts[1].ID)
	assert.Equal(t, uint(3), posts[2].ID)
}

func TestPostService_Feed_Paging(t *testing.T) {
	t.Parallel()

	now := time.Now()
	repo := noopPostRepo()
	repo.listFn = func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) {
		return []*models.Post{
			{ID: 1, CreatedAt: now, LikesCount: 9},
			{ID: 2, CreatedAt: now, LikesCount: 5},
			{ID: 3, CreatedAt: now, LikesCount: 1},
		}, nil
	}

	svc := newPostService(repo)

	page, err := svc.Feed(context.Background(), FeedInput{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint(2), page[0].ID)

	empty, err := svc.Feed(context.Background(), FeedInput{Limit: 10, Offset: 99})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostService_Feed_SortNewBypassesRanking(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var gotLimit, gotOffset int
	repo.listFn = func(_ context.Context, limit, offset int, _ uint) ([]*models.Post, error) {
		gotLimit, gotOffset = limit, offset
		return []*models.Post{{ID: 5}}, nil
	}

	svc := newPostService(repo)
	posts, err := svc.Feed(context.Background(), FeedInput{Sort: "new", Limit: 20, Offset: 40})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	// Chronological pages go straight to the database.
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 40, gotOffset)
}

func TestPostService_Feed_MoodFilter(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.listByMoodFn = func(_ context.Context, mood models.Mood, _, _ int, _ uint) ([]*models.Post, error) {
		assert.Equal(t, models.MoodSad, mood)
		return []*models.Post{{ID: 3, Mood: mood}}, nil
	}

	svc := newPostService(repo)

	posts, err := svc.Feed(context.Background(), FeedInput{Mood: "sad", Limit: 10, CurrentUserID: 4})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	_, err = svc.Feed(context.Background(), FeedInput{Mood: "bogus", Limit: 10})
	assertValidationError(t, err)
}

func TestPostService_UpdatePost_OwnerOnly(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 42, Mood: models.MoodCalm}, nil
	}

	svc := newPostService(repo)
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 9, Content: "nope"})
	assertUnauthorizedError(t, err)
}

func TestPostService_UpdatePost_ChangesMood(t *testing.T) {
	t.Parallel()

	var saved *models.Post
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1, Mood: models.MoodCalm, Content: "old"}, nil
	}
	repo.updateFn = func(_ context.Context, p *models.Post) error {
		saved = p
		return nil
	}

	svc := newPostService(repo)
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 9, Mood: "angry"})
	require.NoError(t, err)
	assert.Equal(t, models.MoodAngry, post.Mood)
	require.NotNil(t, saved)
	assert.Equal(t, "old", saved.Content)

	_, err = svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 9, Mood: "bogus"})
	assertValidationError(t, err)
}

func TestPostService_DeletePost_OwnerOnly(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 42}, nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}

	svc := newPostService(repo)
	err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 1, PostID: 9})
	assertUnauthorizedError(t, err)
	assert.False(t, deleted)

	require.NoError(t, svc.DeletePost(context.Background(), DeletePostInput{UserID: 42, PostID: 9}))
	assert.True(t, deleted)
}

func TestPostService_ToggleLike(t *testing.T) {
	t.Parallel()

	t.Run("likes when not yet liked", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		liked, unliked := false, false
		repo.likeFn = func(_ context.Context, _, _ uint) error { liked = true; return nil }
		repo.unlikeFn = func(_ context.Context, _, _ uint) error { unliked = true; return nil }

		svc := newPostService(repo)
		_, err := svc.ToggleLike(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.False(t, unliked)
	})

	t.Run("unlikes when already liked", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.isLikedFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
		liked, unliked := false, false
		repo.likeFn = func(_ context.Context, _, _ uint) error { liked = true; return nil }
		repo.unlikeFn = func(_ context.Context, _, _ uint) error { unliked = true; return nil }

		svc := newPostService(repo)
		_, err := svc.ToggleLike(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.False(t, liked)
		assert.True(t, unliked)
	})

	t.Run("missing post propagates error", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}

		svc := newPostService(repo)
		_, err := svc.ToggleLike(context.Background(), 1, 2)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestPostService_GetMoodStats(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.countByMoodFn = func(_ context.Context) (map[models.Mood]int64, error) {
		return map[models.Mood]int64{
			models.MoodHappy:   4,
			models.MoodSad:     4,
			models.MoodExcited: 1,
		}, nil
	}
	svc := newPostService(repo)

	stats, err := svc.GetMoodStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.MoodCount["happy"])
	assert.Equal(t, int64(4), stats.MoodCount["sad"])
	assert.Equal(t, int64(1), stats.MoodCount["excited"])
	assert.Len(t, stats.MoodCount, 3)
	// ties resolve in mood display order; happy precedes sad
	assert.Equal(t, "happy", stats.MostCommonMood)
}

func TestPostService_GetMoodStats_NoPosts(t *testing.T) {
	t.Parallel()

	svc := newPostService(noopPostRepo())

	stats, err := svc.GetMoodStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats.MoodCount)
	assert.Empty(t, stats.MostCommonMood)
}
