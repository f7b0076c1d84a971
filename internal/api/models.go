package api

import "time"

// User is the server's user representation
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

// Profile is the server's user profile representation, nesting the user
type Profile struct {
	ID         int       `json:"id"`
	User       *User     `json:"user,omitempty"`
	UserType   string    `json:"user_type"`
	Bio        string    `json:"bio,omitempty"`
	ProfilePic string    `json:"profile_pic,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// Category groups articles
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug,omitempty"`
}

// Tag labels articles
type Tag struct {
	ID      int    `json:"id"`
	TagName string `json:"tag_name"`
	Slug    string `json:"slug,omitempty"`
}

// Article is a published blog post. Category is written by id and read
// back with its display name alongside.
type Article struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       *User     `json:"author,omitempty"`
	Category     int       `json:"category"`
	CategoryName string    `json:"category_name,omitempty"`
	Tags         []Tag     `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// ArticleInput is the write shape for creating or updating an article.
// Tags are passed as tag ids.
type ArticleInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category int    `json:"category"`
	Tags     []int  `json:"tags,omitempty"`
}

// Comment is a threaded article comment
type Comment struct {
	ID         int       `json:"id"`
	Article    int       `json:"article"`
	User       *User     `json:"user,omitempty"`
	Content    string    `json:"content"`
	Parent     *int      `json:"parent,omitempty"`
	IsApproved bool      `json:"is_approved"`
	IsReply    bool      `json:"is_reply"`
	ReplyCount int       `json:"reply_count"`
	Replies    []Comment `json:"replies,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// CommentInput is the write shape for creating a comment
type CommentInput struct {
	Article int    `json:"article"`
	Content string `json:"content"`
	Parent  *int   `json:"parent,omitempty"`
}

// AuthResponse is the payload returned by the login and register
// endpoints: an access token, optionally a refresh token, and the user.
type AuthResponse struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh,omitempty"`
	User    *User  `json:"user,omitempty"`
}
