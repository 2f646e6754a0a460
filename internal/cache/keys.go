package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix     = "user:%d"
	postKeyPrefix     = "post:%d"
	moodFeedKeyPrefix = "feed:mood:%s"
	otpKeyPrefix      = "otp:%s"
	otpAttemptsPrefix = "otp:%s:attempts"
)

const (
	UserTTL     = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	MoodFeedTTL = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

func MoodFeedKey(mood string) string {
	return fmt.Sprintf(moodFeedKeyPrefix, mood)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateMoodFeeds drops every cached mood feed. Called after post writes;
// the key set is small (one per mood) so a scan is unnecessary.
func InvalidateMoodFeeds(ctx context.Context, moods []string) {
	for _, m := range moods {
		Invalidate(ctx, MoodFeedKey(m))
	}
}
