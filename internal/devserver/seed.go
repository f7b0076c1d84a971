package devserver

import (
	"context"
	"fmt"

	"github.com/openpress/quill/internal/api"
)

// SeedDemo populates demo data for local development: an admin, an
// author, a regular user (password "changeme123" for all three) and a
// small content set. Idempotent against an already-seeded store.
func (s *Server) SeedDemo(ctx context.Context) error {
	existing, err := s.accounts.FindByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	digest, err := HashPassword("changeme123")
	if err != nil {
		return err
	}

	seedAccounts := []Account{
		{Username: "admin", Email: "admin@example.com", UserType: "admin", Bio: "Site administrator"},
		{Username: "author", Email: "author@example.com", UserType: "author", Bio: "Writes things"},
		{Username: "reader", Email: "reader@example.com", UserType: "regular"},
	}

	var author *Account
	for i := range seedAccounts {
		acct := seedAccounts[i]
		acct.PasswordDigest = digest
		if err := s.accounts.Create(ctx, &acct); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", acct.Username, err)
		}
		if acct.Username == "author" {
			created := acct
			author = &created
		}
	}

	general := s.content.CreateCategory(api.Category{Name: "General", Description: "Everything else"})
	tag := s.content.CreateTag(api.Tag{TagName: "welcome"})

	_, err = s.content.CreateArticle(api.ArticleInput{
		Title:    "Welcome to the blog",
		Content:  "This instance is running the local fixture server.",
		Category: general.ID,
		Tags:     []int{tag.ID},
	}, api.User{ID: author.ID, Username: author.Username})
	return err
}
