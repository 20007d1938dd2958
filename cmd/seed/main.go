// Command seed populates the document store with development data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/gateway"
	"newsdesk/internal/seed"
	"newsdesk/internal/session"
)

func main() {
	numUsers := flag.Int("users", seed.DefaultOptions().Users, "Number of users to create")
	numPosts := flag.Int("posts", seed.DefaultOptions().Posts, "Number of posts to create")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	docs, err := gateway.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := docs.Disconnect(context.Background()); err != nil {
			log.Printf("disconnect: %v", err)
		}
	}()

	provider := session.NewCredentialProvider(docs, cfg.JWTSecret)

	opts := seed.Options{Users: *numUsers, Posts: *numPosts}
	log.Printf("Seeding %d users and %d posts into %s", opts.Users, opts.Posts, cfg.MongoDB)
	if err := seed.Run(ctx, docs, provider, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
