package comment

import (
	"context"

	"github.com/VitaminP8/forum/models"
)

type CommentStorage interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentView(ctx context.Context, id uint) (*models.CommentView, error)
	ListCommentsByPost(ctx context.Context, postID uint) ([]*models.CommentView, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteCommentByID(ctx context.Context, id uint) error
}

// PostFinder is the part of the post storage comments need to check their parent.
type PostFinder interface {
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
}
