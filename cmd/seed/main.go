// Command seed populates the database with demo users, mood posts,
// threaded comments and likes.
package main

import (
	"flag"
	"log"

	"moodblog/internal/config"
	"moodblog/internal/database"
	"moodblog/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	users := flag.Int("users", defaults.Users, "Number of users to create")
	postsPerUser := flag.Int("posts", defaults.PostsPerUser, "Posts per user")
	commentsPerPost := flag.Int("comments", defaults.CommentsPerPost, "Comments per post")
	likesPerPost := flag.Int("likes", defaults.LikesPerPost, "Likes per post")
	maxDays := flag.Int("max-days", defaults.MaxDays, "Spread post ages over this many days")
	randSeed := flag.Int64("rand-seed", 0, "Random seed (0 uses the current time)")
	clean := flag.Bool("clean", true, "Remove existing data before seeding")
	profile := flag.String("profile", "", "YAML profile file (overrides the other flags)")
	flag.Parse()

	var opts seed.Options
	if *profile != "" {
		loaded, err := seed.LoadProfile(*profile)
		if err != nil {
			log.Fatalf("Failed to load seed profile: %v", err)
		}
		opts = loaded
	} else {
		opts = seed.Options{
			Users:           *users,
			PostsPerUser:    *postsPerUser,
			CommentsPerPost: *commentsPerPost,
			ReplyChance:     defaults.ReplyChance,
			LikesPerPost:    *likesPerPost,
			MaxDays:         *maxDays,
			RandSeed:        *randSeed,
			Clean:           *clean,
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done. Seeded accounts log in with password %q", seed.DemoPassword)
}
