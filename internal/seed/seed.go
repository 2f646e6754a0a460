package seed

import (
	"fmt"
	"log/slog"
	"os"

	"moodblog/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Options controls the shape of the seeded dataset.
type Options struct {
	Users           int   `yaml:"users"`
	PostsPerUser    int   `yaml:"posts_per_user"`
	CommentsPerPost int   `yaml:"comments_per_post"`
	ReplyChance     int   `yaml:"reply_chance_pct"`
	LikesPerPost    int   `yaml:"likes_per_post"`
	MaxDays         int   `yaml:"max_days"`
	RandSeed        int64 `yaml:"rand_seed"`
	Clean           bool  `yaml:"clean"`
}

// DefaultOptions is a dataset small enough to seed in seconds but large
// enough to make the ranked feed interesting.
func DefaultOptions() Options {
	return Options{
		Users:           25,
		PostsPerUser:    8,
		CommentsPerPost: 4,
		ReplyChance:     40,
		LikesPerPost:    6,
		MaxDays:         30,
	}
}

// LoadProfile reads an Options profile from a YAML file. Fields absent
// from the file keep their DefaultOptions value.
func LoadProfile(path string) (Options, error) {
	opts := DefaultOptions()

	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading seed profile: %w", err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("parsing seed profile %s: %w", path, err)
	}
	return opts, nil
}

// Run seeds the database with users, mood posts, threaded comments and
// likes according to opts.
func Run(db *gorm.DB, opts Options) error {
	if opts.Clean {
		if err := Clean(db); err != nil {
			return err
		}
	}

	factory, err := NewFactory(db, opts.RandSeed)
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := factory.CreateUser(i + 1)
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	slog.Info("seeded users", "count", len(users))

	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.Users*opts.PostsPerUser)
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post, err := factory.CreatePost(user, opts.MaxDays)
			if err != nil {
				return err
			}
			posts = append(posts, post)
		}
	}
	slog.Info("seeded posts", "count", len(posts))

	comments := 0
	for _, post := range posts {
		// roots first, then replies attach to earlier comments of the
		// same post so threads nest naturally
		thread := make([]*models.Comment, 0, opts.CommentsPerPost)
		for i := 0; i < opts.CommentsPerPost; i++ {
			author := users[factory.rng.Intn(len(users))]
			var parent *models.Comment
			if len(thread) > 0 && factory.rng.Intn(100) < opts.ReplyChance {
				parent = thread[factory.rng.Intn(len(thread))]
			}
			comment, err := factory.CreateComment(author, post, parent)
			if err != nil {
				return err
			}
			thread = append(thread, comment)
			comments++
		}
	}
	slog.Info("seeded comments", "count", comments)

	likes := 0
	for _, post := range posts {
		n := opts.LikesPerPost
		if n > len(users) {
			n = len(users)
		}
		for _, idx := range factory.rng.Perm(len(users))[:n] {
			if err := factory.CreateLike(users[idx], post); err != nil {
				return err
			}
			likes++
		}
	}
	slog.Info("seeded likes", "count", likes)

	return nil
}

// Clean removes all seedable data. Deletes run child tables first so
// foreign keys never block.
func Clean(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Like{},
		&models.Comment{},
		&models.Post{},
		&models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("cleaning %T: %w", model, err)
		}
	}
	slog.Info("cleaned existing data")
	return nil
}
