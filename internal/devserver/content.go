package devserver

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openpress/quill/internal/api"
)

// ErrContentNotFound is returned for lookups of missing content
var ErrContentNotFound = errors.New("not found")

// ContentStore keeps articles, categories, tags and comments in memory.
// Content is fixture data; unlike accounts it has no durable backend.
type ContentStore struct {
	mu     sync.RWMutex
	nextID map[string]int

	articles   map[int]*api.Article
	categories map[int]*api.Category
	tags       map[int]*api.Tag
	comments   map[int]*api.Comment
}

// NewContentStore creates an empty content store
func NewContentStore() *ContentStore {
	return &ContentStore{
		nextID:     map[string]int{"article": 1, "category": 1, "tag": 1, "comment": 1},
		articles:   make(map[int]*api.Article),
		categories: make(map[int]*api.Category),
		tags:       make(map[int]*api.Tag),
		comments:   make(map[int]*api.Comment),
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify mirrors the server's slug derivation
func slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func (s *ContentStore) allocID(kind string) int {
	id := s.nextID[kind]
	s.nextID[kind] = id + 1
	return id
}

// Categories

func (s *ContentStore) CreateCategory(c api.Category) api.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.allocID("category")
	if c.Slug == "" {
		c.Slug = slugify(c.Name)
	}
	s.categories[c.ID] = &c
	return c
}

func (s *ContentStore) ListCategories() []api.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *ContentStore) GetCategory(id int) (api.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return api.Category{}, ErrContentNotFound
	}
	return *c, nil
}

func (s *ContentStore) DeleteCategory(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return ErrContentNotFound
	}
	delete(s.categories, id)
	return nil
}

// Tags

func (s *ContentStore) CreateTag(t api.Tag) api.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.allocID("tag")
	if t.Slug == "" {
		t.Slug = slugify(t.TagName)
	}
	s.tags[t.ID] = &t
	return t
}

func (s *ContentStore) ListTags() []api.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagName < out[j].TagName })
	return out
}

func (s *ContentStore) DeleteTag(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[id]; !ok {
		return ErrContentNotFound
	}
	delete(s.tags, id)
	return nil
}

// Articles

func (s *ContentStore) CreateArticle(in api.ArticleInput, author api.User) (api.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, ok := s.categories[in.Category]
	if !ok {
		return api.Article{}, ErrContentNotFound
	}

	now := time.Now()
	art := api.Article{
		ID:           s.allocID("article"),
		Title:        in.Title,
		Content:      in.Content,
		Author:       &author,
		Category:     category.ID,
		CategoryName: category.Name,
		Tags:         s.resolveTags(in.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.articles[art.ID] = &art
	return art, nil
}

func (s *ContentStore) resolveTags(ids []int) []api.Tag {
	var out []api.Tag
	for _, id := range ids {
		if t, ok := s.tags[id]; ok {
			out = append(out, *t)
		}
	}
	return out
}

func (s *ContentStore) ListArticles() []api.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, *a)
	}
	// Newest first, as the listing UI expects
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *ContentStore) GetArticle(id int) (api.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return api.Article{}, ErrContentNotFound
	}
	return *a, nil
}

func (s *ContentStore) UpdateArticle(id int, in api.ArticleInput) (api.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[id]
	if !ok {
		return api.Article{}, ErrContentNotFound
	}

	if category, ok := s.categories[in.Category]; ok {
		a.Category = category.ID
		a.CategoryName = category.Name
	}
	a.Title = in.Title
	a.Content = in.Content
	if in.Tags != nil {
		a.Tags = s.resolveTags(in.Tags)
	}
	a.UpdatedAt = time.Now()
	return *a, nil
}

func (s *ContentStore) DeleteArticle(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return ErrContentNotFound
	}
	delete(s.articles, id)
	return nil
}

// Comments

func (s *ContentStore) CreateComment(in api.CommentInput, user api.User) (api.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[in.Article]; !ok {
		return api.Comment{}, ErrContentNotFound
	}
	if in.Parent != nil {
		parent, ok := s.comments[*in.Parent]
		if !ok || parent.Article != in.Article {
			return api.Comment{}, ErrContentNotFound
		}
	}

	c := api.Comment{
		ID:         s.allocID("comment"),
		Article:    in.Article,
		User:       &user,
		Content:    in.Content,
		Parent:     in.Parent,
		IsApproved: true,
		IsReply:    in.Parent != nil,
		CreatedAt:  time.Now(),
	}
	s.comments[c.ID] = &c
	return c, nil
}

// ListComments returns top-level comments with their replies nested
func (s *ContentStore) ListComments() []api.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	replies := make(map[int][]api.Comment)
	var roots []api.Comment
	for _, c := range s.comments {
		if c.Parent != nil {
			replies[*c.Parent] = append(replies[*c.Parent], *c)
		}
	}

	for _, c := range s.comments {
		if c.Parent != nil {
			continue
		}
		copied := *c
		copied.Replies = replies[c.ID]
		sort.Slice(copied.Replies, func(i, j int) bool {
			return copied.Replies[i].CreatedAt.Before(copied.Replies[j].CreatedAt)
		})
		copied.ReplyCount = len(copied.Replies)
		roots = append(roots, copied)
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].CreatedAt.Before(roots[j].CreatedAt) })
	return roots
}

func (s *ContentStore) GetComment(id int) (api.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return api.Comment{}, ErrContentNotFound
	}
	return *c, nil
}

func (s *ContentStore) DeleteComment(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return ErrContentNotFound
	}
	delete(s.comments, id)
	return nil
}
