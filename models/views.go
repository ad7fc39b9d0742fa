package models

import "time"

// Author is the public part of a user embedded into posts and comments.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type PostView struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	CommentsCount int       `json:"comments_count"`
	User          Author    `json:"user"`
}

type CommentView struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	PostID    uint      `json:"post_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      Author    `json:"user"`
}

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Page     int `json:"page"`
	LastPage int `json:"last_page"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
}

type PostPage struct {
	Data []*PostView `json:"data"`
	Meta PageMeta    `json:"meta"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alpha_dash"`
}

type LoginRequest struct {
	Password string `json:"password" validate:"required,max=255"`
}

type PostInput struct {
	Title string `json:"title" validate:"required,min=5,max=255"`
	Body  string `json:"body" validate:"required,min=5,max=8191"`
}

type CommentInput struct {
	Body string `json:"body" validate:"required,min=2,max=2000"`
}

// RegisterResult is returned exactly once: the plaintext password is never stored.
type RegisterResult struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  Author `json:"user"`
}
