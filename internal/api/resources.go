package api

import (
	"context"
	"fmt"
	"net/http"
)

// Articles

// ListArticles returns all articles
func (c *Client) ListArticles(ctx context.Context) ([]Article, error) {
	var out []Article
	err := c.do(ctx, request{method: http.MethodGet, paths: []string{"/articles/"}}, &out)
	return out, err
}

// GetArticle returns one article by id
func (c *Client) GetArticle(ctx context.Context, id int) (*Article, error) {
	var out Article
	err := c.do(ctx, request{method: http.MethodGet, paths: []string{fmt.Sprintf("/articles/%d/", id)}}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateArticle creates an article
func (c *Client) CreateArticle(ctx context.Context, in ArticleInput) (*Article, error) {
	var out Article
	err := c.do(ctx, request{
		method: http.MethodPost,
		paths:  []string{"/articles/"},
		body:   in,
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateArticle replaces an article's editable fields
func (c *Client) UpdateArticle(ctx context.Context, id int, in ArticleInput) (*Article, error) {
	var out Article
	err := c.do(ctx, request{
		method: http.MethodPut,
		paths:  []string{fmt.Sprintf("/articles/%d/", id)},
		body:   in,
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteArticle removes an article
func (c *Client) DeleteArticle(ctx context.Context, id int) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		paths:  []string{fmt.Sprintf("/articles/%d/", id)},
		authed: true,
	}, nil)
}

// Categories

// ListCategories returns all categories
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.do(ctx, request{method: http.MethodGet, paths: []string{"/categories/"}}, &out)
	return out, err
}

// CreateCategory creates a category
func (c *Client) CreateCategory(ctx context.Context, in Category) (*Category, error) {
	var out Category
	err := c.do(ctx, request{
		method: http.MethodPost,
		paths:  []string{"/categories/"},
		body:   in,
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a category
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		paths:  []string{fmt.Sprintf("/categories/%d/", id)},
		authed: true,
	}, nil)
}

// Tags

// ListTags returns all tags
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	err := c.do(ctx, request{method: http.MethodGet, paths: []string{"/tags/"}}, &out)
	return out, err
}

// CreateTag creates a tag
func (c *Client) CreateTag(ctx context.Context, in Tag) (*Tag, error) {
	var out Tag
	err := c.do(ctx, request{
		method: http.MethodPost,
		paths:  []string{"/tags/"},
		body:   in,
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTag removes a tag
func (c *Client) DeleteTag(ctx context.Context, id int) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		paths:  []string{fmt.Sprintf("/tags/%d/", id)},
		authed: true,
	}, nil)
}

// Comments

// ListComments returns all comments, threaded
func (c *Client) ListComments(ctx context.Context) ([]Comment, error) {
	var out []Comment
	err := c.do(ctx, request{method: http.MethodGet, paths: []string{"/comments/"}}, &out)
	return out, err
}

// CreateComment posts a comment, optionally as a reply
func (c *Client) CreateComment(ctx context.Context, in CommentInput) (*Comment, error) {
	var out Comment
	err := c.do(ctx, request{
		method: http.MethodPost,
		paths:  []string{"/comments/"},
		body:   in,
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComment removes a comment
func (c *Client) DeleteComment(ctx context.Context, id int) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		paths:  []string{fmt.Sprintf("/comments/%d/", id)},
		authed: true,
	}, nil)
}

// Profiles

// GetProfile returns the profile for a user id
func (c *Client) GetProfile(ctx context.Context, id int) (*Profile, error) {
	var out Profile
	err := c.do(ctx, request{
		method: http.MethodGet,
		paths:  []string{fmt.Sprintf("/profiles/%d/", id)},
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProfiles returns all profiles (admin dashboard view)
func (c *Client) ListProfiles(ctx context.Context) ([]Profile, error) {
	var out []Profile
	err := c.do(ctx, request{
		method: http.MethodGet,
		paths:  []string{"/profiles/"},
		authed: true,
	}, &out)
	return out, err
}

// ChangeUserType switches a user's role between regular, author and admin
func (c *Client) ChangeUserType(ctx context.Context, profileID int, userType string) (*Profile, error) {
	var out Profile
	err := c.do(ctx, request{
		method: http.MethodPatch,
		paths:  []string{fmt.Sprintf("/profiles/%d/change-user-type/", profileID)},
		body:   map[string]string{"user_type": userType},
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
