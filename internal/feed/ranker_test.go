package feed

import (
	"testing"
	"time"

	"moodblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestScore_Baseline(t *testing.T) {
	t.Parallel()

	// Fresh post with no engagement scores exactly the recency weight.
	assert.InDelta(t, 20.0, Score(0, 0, now, false, now), 1e-9)
	// One like adds exactly 2.
	assert.InDelta(t, 22.0, Score(1, 0, now, false, now), 1e-9)
}

func TestScore_Monotonicity(t *testing.T) {
	t.Parallel()

	createdAt := now.Add(-3 * time.Hour)
	base := Score(5, 4, createdAt, false, now)

	assert.InDelta(t, 2.0, Score(6, 4, createdAt, false, now)-base, 1e-9)
	assert.InDelta(t, 3.0, Score(5, 5, createdAt, false, now)-base, 1e-9)
	assert.InDelta(t, 50.0, Score(5, 4, createdAt, true, now)-base, 1e-9)
}

func TestScore_RecencyDecay(t *testing.T) {
	t.Parallel()

	young := Score(0, 0, now.Add(-1*time.Hour), false, now)
	old := Score(0, 0, now.Add(-10*time.Hour), false, now)
	older := Score(0, 0, now.Add(-100*time.Hour), false, now)

	// Newer beats older, and the term stays positive.
	assert.Greater(t, young, old)
	assert.Greater(t, old, older)
	assert.Greater(t, older, 0.0)

	// The gap attributable to recency shrinks as both ages grow.
	nearGap := young - old
	farGap := old - older
	assert.Greater(t, nearGap, farGap)
}

func TestScore_FutureCreatedAtClampedToZeroAge(t *testing.T) {
	t.Parallel()

	skewed := Score(0, 0, now.Add(2*time.Hour), false, now)
	fresh := Score(0, 0, now, false, now)

	assert.InDelta(t, fresh, skewed, 1e-9)
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	t.Parallel()

	p1 := &models.Post{ID: 1, CreatedAt: now}
	p2 := &models.Post{ID: 2, LikesCount: 1, CreatedAt: now}

	ranked := Rank([]*models.Post{p1, p2}, now)

	require.Len(t, ranked, 2)
	assert.Equal(t, uint(2), ranked[0].ID)
	assert.Equal(t, uint(1), ranked[1].ID)
}

func TestRank_ViewerBonusLiftsInteractedPosts(t *testing.T) {
	t.Parallel()

	popular := &models.Post{ID: 1, LikesCount: 10, CommentsCount: 5, CreatedAt: now.Add(-2 * time.Hour)}
	mine := &models.Post{ID: 2, LikesCount: 1, CreatedAt: now.Add(-2 * time.Hour), Commented: true}

	ranked := Rank([]*models.Post{popular, mine}, now)

	assert.Equal(t, uint(2), ranked[0].ID)
}

func TestRank_TiesKeepIncomingOrder(t *testing.T) {
	t.Parallel()

	createdAt := now.Add(-1 * time.Hour)
	a := &models.Post{ID: 1, LikesCount: 3, CreatedAt: createdAt}
	b := &models.Post{ID: 2, LikesCount: 3, CreatedAt: createdAt}
	c := &models.Post{ID: 3, LikesCount: 3, CreatedAt: createdAt}

	ranked := Rank([]*models.Post{a, b, c}, now)

	assert.Equal(t, []*models.Post{a, b, c}, ranked)
}

func TestRank_Deterministic(t *testing.T) {
	t.Parallel()

	posts := []*models.Post{
		{ID: 1, LikesCount: 4, CommentsCount: 1, CreatedAt: now.Add(-5 * time.Hour)},
		{ID: 2, LikesCount: 0, CommentsCount: 9, CreatedAt: now.Add(-30 * time.Minute), Liked: true},
		{ID: 3, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 4, LikesCount: 2, CreatedAt: now},
	}

	first := Rank(posts, now)
	second := Rank(posts, now)

	require.Equal(t, len(posts), len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestRank_EmptyAndSingle(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Rank(nil, now))

	only := &models.Post{ID: 7, CreatedAt: now}
	ranked := Rank([]*models.Post{only}, now)
	require.Len(t, ranked, 1)
	assert.Equal(t, uint(7), ranked[0].ID)
}
