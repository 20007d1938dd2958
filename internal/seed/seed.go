// Package seed populates the document gateway with realistic development
// data: a handful of registered users and a spread of categorized posts.
package seed

import (
	"context"
	"fmt"

	"newsdesk/internal/gateway"
	"newsdesk/internal/models"
	"newsdesk/internal/session"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options controls seed volume.
type Options struct {
	Users int
	Posts int
}

// DefaultOptions seeds a small but browsable data set.
func DefaultOptions() Options {
	return Options{Users: 4, Posts: 24}
}

// Run creates accounts, profiles, and posts through the same gateways the
// application uses, so seeded data is indistinguishable from organic data.
func Run(ctx context.Context, docs gateway.DocumentGateway, provider session.Provider, opts Options) error {
	if opts.Users < 1 || opts.Posts < 1 {
		return fmt.Errorf("seed options must be positive: %+v", opts)
	}

	userIDs := make([]string, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		identity, err := provider.Register(ctx, gofakeit.Email(), "seed-password-1")
		if err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}

		nickname := gofakeit.Username()
		if len(nickname) > 20 {
			nickname = nickname[:20]
		}
		user := models.User{
			ID:       identity.ID,
			Email:    identity.Email,
			Nickname: nickname,
			Bio:      gofakeit.Sentence(12),
			Avatar:   gofakeit.ImageURL(200, 200),
			NewsIDs:  []string{},
		}
		if err := docs.Set(ctx, "users", identity.ID, user.Fields()); err != nil {
			return fmt.Errorf("seed profile %d: %w", i, err)
		}
		userIDs = append(userIDs, identity.ID)
	}
	provider.SignOut()

	categories := models.Categories()
	for i := 0; i < opts.Posts; i++ {
		authorID := userIDs[i%len(userIDs)]
		post := models.Post{
			Title:       cases.Title(language.English).String(gofakeit.Phrase()),
			Description: gofakeit.Paragraph(1, 3, 12, " "),
			Image:       gofakeit.ImageURL(640, 360),
			Categories:  pickCategories(categories, 1+i%2),
			AuthorID:    authorID,
		}
		id, err := docs.Create(ctx, "posts", post.Fields())
		if err != nil {
			return fmt.Errorf("seed post %d: %w", i, err)
		}
		if err := docs.AddToSet(ctx, "users", authorID, "newsIds", id); err != nil {
			return fmt.Errorf("seed newsIds %d: %w", i, err)
		}
	}

	return nil
}

func pickCategories(all []string, n int) []string {
	picked := []string{}
	for len(picked) < n {
		label := all[gofakeit.Number(0, len(all)-1)]
		picked = models.ToggleCategory(picked, label)
	}
	return picked
}
