package devserver

import (
	"testing"
	"time"

	"github.com/openpress/quill/internal/api"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"General", "general"},
		{"Go & Friends", "go-friends"},
		{"  spaced  out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArticleLifecycle(t *testing.T) {
	store := NewContentStore()
	author := api.User{ID: 1, Username: "alice"}

	cat := store.CreateCategory(api.Category{Name: "News"})
	tag := store.CreateTag(api.Tag{TagName: "golang"})

	// Category must exist
	if _, err := store.CreateArticle(api.ArticleInput{Title: "x", Content: "y", Category: 999}, author); err == nil {
		t.Error("CreateArticle() with missing category should fail")
	}

	art, err := store.CreateArticle(api.ArticleInput{
		Title: "First", Content: "body", Category: cat.ID, Tags: []int{tag.ID, 999},
	}, author)
	if err != nil {
		t.Fatalf("CreateArticle() error: %v", err)
	}
	if art.CategoryName != "News" {
		t.Errorf("CategoryName = %q, want News", art.CategoryName)
	}
	if len(art.Tags) != 1 || art.Tags[0].TagName != "golang" {
		t.Errorf("Tags = %v, want unknown tag ids dropped", art.Tags)
	}

	second, err := store.CreateArticle(api.ArticleInput{Title: "Second", Content: "body", Category: cat.ID}, author)
	if err != nil {
		t.Fatalf("CreateArticle() error: %v", err)
	}

	list := store.ListArticles()
	if len(list) != 2 {
		t.Fatalf("ListArticles() len = %d, want 2", len(list))
	}

	if err := store.DeleteArticle(second.ID); err != nil {
		t.Fatalf("DeleteArticle() error: %v", err)
	}
	if err := store.DeleteArticle(second.ID); err != ErrContentNotFound {
		t.Errorf("second delete = %v, want ErrContentNotFound", err)
	}
}

func TestCommentThreading(t *testing.T) {
	store := NewContentStore()
	user := api.User{ID: 1, Username: "alice"}

	cat := store.CreateCategory(api.Category{Name: "News"})
	art, err := store.CreateArticle(api.ArticleInput{Title: "t", Content: "c", Category: cat.ID}, user)
	if err != nil {
		t.Fatalf("CreateArticle() error: %v", err)
	}
	other, err := store.CreateArticle(api.ArticleInput{Title: "t2", Content: "c2", Category: cat.ID}, user)
	if err != nil {
		t.Fatalf("CreateArticle() error: %v", err)
	}

	root, err := store.CreateComment(api.CommentInput{Article: art.ID, Content: "root"}, user)
	if err != nil {
		t.Fatalf("CreateComment() error: %v", err)
	}
	reply, err := store.CreateComment(api.CommentInput{Article: art.ID, Content: "reply", Parent: &root.ID}, user)
	if err != nil {
		t.Fatalf("CreateComment() error: %v", err)
	}
	if !reply.IsReply {
		t.Error("reply not marked IsReply")
	}

	// A reply must target a comment on the same article
	if _, err := store.CreateComment(api.CommentInput{Article: other.ID, Content: "x", Parent: &root.ID}, user); err == nil {
		t.Error("cross-article reply should fail")
	}

	list := store.ListComments()
	if len(list) != 1 {
		t.Fatalf("ListComments() len = %d, want only root comments", len(list))
	}
	if list[0].ReplyCount != 1 || len(list[0].Replies) != 1 {
		t.Errorf("root comment = %+v, want one nested reply", list[0])
	}
	if list[0].Replies[0].Content != "reply" {
		t.Errorf("nested reply = %+v", list[0].Replies[0])
	}
}

func TestLoginLimiter(t *testing.T) {
	limiter := NewLoginLimiter(time.Minute, 3)

	email := "alice@example.com"
	for i := 0; i < 3; i++ {
		if !limiter.Allow(email) {
			t.Fatalf("Allow() = false after %d failures, want true", i)
		}
		limiter.RecordFailure(email)
	}
	if limiter.Allow(email) {
		t.Error("Allow() = true after hitting the failure cap")
	}

	// Other identities are unaffected
	if !limiter.Allow("bob@example.com") {
		t.Error("Allow() = false for an untouched identity")
	}

	limiter.RecordSuccess(email)
	if !limiter.Allow(email) {
		t.Error("Allow() = false after a successful login reset")
	}
}
