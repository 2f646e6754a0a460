// Package feed computes the engagement ranking used to order the main post
// feed. Scores are view-dependent and time-dependent: the same post scores
// differently for different viewers and from one request to the next, so a
// score is computed fresh on every request and never cached or persisted.
package feed

import (
	"sort"
	"time"

	"moodblog/internal/models"
)

// Weights holds the tunable constants of the engagement formula.
type Weights struct {
	// Like is the weight of a single like.
	Like float64
	// Comment is the weight of a single comment. Comments outweigh likes:
	// they are the higher-effort signal.
	Comment float64
	// ViewerBonus is the flat boost for posts the requesting viewer has
	// already liked or commented on, keeping their own threads visible.
	ViewerBonus float64
	// RecencyK scales the 1/(ageHours+1) freshness term. The term decays
	// smoothly toward zero and never penalizes old posts.
	RecencyK float64
}

// DefaultWeights is the production configuration.
var DefaultWeights = Weights{
	Like:        2,
	Comment:     3,
	ViewerBonus: 50,
	RecencyK:    20,
}

// Score computes the engagement score of a single post for one viewer at one
// instant. A createdAt in the future (clock skew) counts as age zero.
func (w Weights) Score(likeCount, commentCount int, createdAt time.Time, viewerInteracted bool, now time.Time) float64 {
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	score := float64(likeCount)*w.Like + float64(commentCount)*w.Comment
	if viewerInteracted {
		score += w.ViewerBonus
	}
	score += w.RecencyK / (ageHours + 1)
	return score
}

// Rank orders posts descending by engagement score. The sort is stable, so
// equally-scored posts keep their incoming relative order. Whether the viewer
// interacted with a post is read from the Liked/Commented flags the
// repository query computed; anonymous viewers carry both flags false.
// Scores are ranking artifacts only and are not attached to the result.
func (w Weights) Rank(posts []*models.Post, now time.Time) []*models.Post {
	type scored struct {
		post  *models.Post
		score float64
	}

	ranked := make([]scored, len(posts))
	for i, p := range posts {
		ranked[i] = scored{
			post:  p,
			score: w.Score(p.LikesCount, p.CommentsCount, p.CreatedAt, p.Liked || p.Commented, now),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]*models.Post, len(ranked))
	for i, r := range ranked {
		out[i] = r.post
	}
	return out
}

// Score computes an engagement score using the default weights.
func Score(likeCount, commentCount int, createdAt time.Time, viewerInteracted bool, now time.Time) float64 {
	return DefaultWeights.Score(likeCount, commentCount, createdAt, viewerInteracted, now)
}

// Rank orders posts using the default weights.
func Rank(posts []*models.Post, now time.Time) []*models.Post {
	return DefaultWeights.Rank(posts, now)
}
