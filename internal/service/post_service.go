package service

import (
	"context"
	"time"

	"moodblog/internal/cache"
	"moodblog/internal/feed"
	"moodblog/internal/middleware"
	"moodblog/internal/models"
	"moodblog/internal/repository"
)

const (
	maxContentLen = 10000

	// feedCandidateWindow bounds how many recent posts enter a ranking pass.
	// Older posts have a vanishing recency term and stable engagement, so
	// they would not climb into the first pages anyway.
	feedCandidateWindow = 200
)

type PostService struct {
	postRepo repository.PostRepository
	weights  feed.Weights

	// now is swappable so feed tests can pin the ranking clock.
	now func() time.Time
}

type CreatePostInput struct {
	UserID   uint
	Content  string
	ImageURL string
	Mood     string
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ImageURL string
	Mood     string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// FeedInput selects a page of the ranked (or chronological) feed.
type FeedInput struct {
	Mood          string
	Sort          string
	Limit         int
	Offset        int
	CurrentUserID uint
}

func NewPostService(postRepo repository.PostRepository, weights feed.Weights) *PostService {
	return &PostService{
		postRepo: postRepo,
		weights:  weights,
		now:      time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	mood := models.Mood(in.Mood)
	if !mood.Valid() {
		return nil, models.NewValidationError("Invalid mood")
	}
	if in.Content == "" && in.ImageURL == "" {
		return nil, models.NewValidationError("Content or image is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	post := &models.Post{
		Content:  in.Content,
		ImageURL: in.ImageURL,
		Mood:     mood,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// Feed returns a page of posts. The default sort ranks the most recent
// candidate window by engagement and recency; sort=new serves straight
// reverse-chronological pages from the database.
func (s *PostService) Feed(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	if in.Mood != "" && !models.Mood(in.Mood).Valid() {
		return nil, models.NewValidationError("Invalid mood")
	}

	if in.Sort == "new" {
		return s.listChronological(ctx, in)
	}

	candidates, err := s.fetchCandidates(ctx, in)
	if err != nil {
		return nil, err
	}

	ranked := s.weights.Rank(candidates, s.now())

	viewer := "anonymous"
	if in.CurrentUserID != 0 {
		viewer = "authenticated"
	}
	middleware.FeedRankings.WithLabelValues(viewer).Inc()

	return pageOf(ranked, in.Limit, in.Offset), nil
}

func (s *PostService) listChronological(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	if in.Mood != "" {
		return s.postRepo.ListByMood(ctx, models.Mood(in.Mood), in.Limit, in.Offset, in.CurrentUserID)
	}
	return s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
}

// fetchCandidates loads the ranking window. Anonymous mood feeds are served
// cache-aside: their candidate set carries no viewer flags, so one cached
// window is valid for every logged-out reader.
func (s *PostService) fetchCandidates(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	if in.Mood != "" {
		if in.CurrentUserID == 0 {
			var posts []*models.Post
			err := cache.Aside(ctx, cache.MoodFeedKey(in.Mood), &posts, cache.MoodFeedTTL, func() error {
				var fetchErr error
				posts, fetchErr = s.postRepo.ListByMood(ctx, models.Mood(in.Mood), feedCandidateWindow, 0, 0)
				return fetchErr
			})
			return posts, err
		}
		return s.postRepo.ListByMood(ctx, models.Mood(in.Mood), feedCandidateWindow, 0, in.CurrentUserID)
	}
	return s.postRepo.List(ctx, feedCandidateWindow, 0, in.CurrentUserID)
}

func pageOf(posts []*models.Post, limit, offset int) []*models.Post {
	if offset >= len(posts) {
		return []*models.Post{}
	}
	end := offset + limit
	if limit <= 0 || end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	if in.Mood != "" {
		mood := models.Mood(in.Mood)
		if !mood.Valid() {
			return nil, models.NewValidationError("Invalid mood")
		}
		post.Mood = mood
	}
	if in.Content != "" {
		if len(in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 10000 characters)")
		}
		post.Content = in.Content
	}
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.UserID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// ToggleLike flips the viewer's like on a post and returns the fresh post.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	isLiked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if isLiked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

// Unlike removes the viewer's like and returns the fresh post. Removing a
// like that does not exist is a no-op.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

// MoodStats summarizes how posts distribute across moods. MostCommonMood is
// empty when there are no posts; ties resolve in mood display order.
type MoodStats struct {
	MoodCount      map[string]int64 `json:"moodCount"`
	MostCommonMood string           `json:"mostCommonMood"`
}

// GetMoodStats aggregates per-mood post counts for the mood dashboard.
func (s *PostService) GetMoodStats(ctx context.Context) (*MoodStats, error) {
	counts, err := s.postRepo.CountByMood(ctx)
	if err != nil {
		return nil, err
	}

	stats := &MoodStats{MoodCount: make(map[string]int64, len(counts))}
	var max int64
	for _, mood := range models.Moods {
		n, ok := counts[mood]
		if !ok {
			continue
		}
		stats.MoodCount[mood.String()] = n
		if n > max {
			max = n
			stats.MostCommonMood = mood.String()
		}
	}
	return stats, nil
}
