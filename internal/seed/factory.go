// Package seed creates demo data for development environments. It writes
// through Gorm directly rather than the service layer so large datasets
// insert quickly.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"moodblog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// moodPhrases drives content generation so posts read plausibly for the
// mood they are tagged with.
var moodPhrases = map[models.Mood][]string{
	models.MoodHappy:   {"Best day in a long while.", "Everything just clicked today.", "Small wins, big smile."},
	models.MoodSad:     {"Rough one today.", "Missing how things used to be.", "Not much energy left."},
	models.MoodAngry:   {"Absolutely done with this.", "Why is everything broken at once?", "Needed to vent somewhere."},
	models.MoodExcited: {"Cannot wait for tomorrow!", "Huge news just landed!", "Counting down the hours."},
	models.MoodCalm:    {"Quiet evening, tea, and a book.", "Long walk cleared my head.", "At peace with it."},
	models.MoodAnxious: {"Too many what-ifs tonight.", "Waiting on results is the worst part.", "Overthinking again."},
	models.MoodLonely:  {"Wish someone would call.", "Empty apartment feels louder than usual.", "Anyone else up?"},
	models.MoodAmused:  {"Still laughing about this.", "You had to be there.", "Cats truly run the internet."},
}

var replyPhrases = []string{
	"Completely agree.",
	"Hang in there!",
	"This made my day.",
	"Been there, it gets better.",
	"Tell me more?",
	"Sending good vibes.",
	"Hard relate.",
	"Hahaha exactly.",
}

// Factory builds and persists demo entities. All randomness flows through
// its rng so a fixed seed reproduces the same dataset.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand

	// all seeded accounts share one bcrypt hash; hashing per user would
	// dominate seeding time
	passwordHash string
}

// DemoPassword is the plaintext password every seeded account accepts.
const DemoPassword = "password123"

func NewFactory(db *gorm.DB, randSeed int64) (*Factory, error) {
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	gofakeit.Seed(randSeed)

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hashing demo password: %w", err)
	}

	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(randSeed)),
		passwordHash: string(hash),
	}, nil
}

// CreateUser persists a user with a generated username, email and bio.
// The index keeps usernames unique across a run regardless of what
// gofakeit produces.
func (f *Factory) CreateUser(index int) (*models.User, error) {
	base := strings.ToLower(gofakeit.Username())
	base = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return -1
	}, base)
	if len(base) > 20 {
		base = base[:20]
	}

	user := &models.User{
		Username: fmt.Sprintf("%s_%d", base, index),
		Email:    fmt.Sprintf("%s_%d@%s", base, index, gofakeit.DomainName()),
		Password: f.passwordHash,
		Bio:      gofakeit.Sentence(8),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("creating user %q: %w", user.Username, err)
	}
	return user, nil
}

// CreatePost persists a post for the user with a random mood and a
// created_at spread over the past maxDays days so the feed ranker has a
// realistic age distribution to work with.
func (f *Factory) CreatePost(user *models.User, maxDays int) (*models.Post, error) {
	mood := models.Moods[f.rng.Intn(len(models.Moods))]
	phrases := moodPhrases[mood]

	post := &models.Post{
		Content: phrases[f.rng.Intn(len(phrases))] + " " + gofakeit.Sentence(10),
		Mood:    mood,
		UserID:  user.ID,
	}
	if f.rng.Intn(4) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}

	if maxDays <= 0 {
		maxDays = 30
	}
	age := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().Add(-age)
	post.UpdatedAt = post.CreatedAt

	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("creating post for user %d: %w", user.ID, err)
	}
	return post, nil
}

// CreateComment persists a comment on the post, optionally as a reply.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		Content: replyPhrases[f.rng.Intn(len(replyPhrases))],
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if parent != nil {
		parentID := parent.ID
		comment.ParentID = &parentID
	}

	after := post.CreatedAt
	if parent != nil {
		after = parent.CreatedAt
	}
	comment.CreatedAt = after.Add(time.Duration(1+f.rng.Intn(600)) * time.Minute)
	comment.UpdatedAt = comment.CreatedAt

	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("creating comment on post %d: %w", post.ID, err)
	}
	return comment, nil
}

// CreateLike persists a like, ignoring duplicate user/post pairs.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	err := f.db.Where("user_id = ? AND post_id = ?", user.ID, post.ID).
		FirstOrCreate(like).Error
	if err != nil {
		return fmt.Errorf("liking post %d as user %d: %w", post.ID, user.ID, err)
	}
	return nil
}
