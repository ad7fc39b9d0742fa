package post

import (
	"context"

	"github.com/VitaminP8/forum/models"
)

type PostStorage interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostView(ctx context.Context, id uint) (*models.PostView, error)
	// ListPosts returns one page ordered newest first and the total number of posts.
	ListPosts(ctx context.Context, limit, offset int) ([]*models.PostView, int, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	// DeletePostByID removes the post and all of its comments.
	DeletePostByID(ctx context.Context, id uint) error
}
