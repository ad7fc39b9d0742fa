package comment

import (
	"context"
	"fmt"
	"strings"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/internal/auth"
	"github.com/VitaminP8/forum/internal/logging"
	"github.com/VitaminP8/forum/internal/subscription"
	"github.com/VitaminP8/forum/internal/validation"
	"github.com/VitaminP8/forum/models"
)

type Service struct {
	store  CommentStorage
	posts  PostFinder
	events subscription.Manager
	log    logging.Logger
}

func NewService(store CommentStorage, posts PostFinder, events subscription.Manager, log logging.Logger) *Service {
	return &Service{
		store:  store,
		posts:  posts,
		events: events,
		log:    log.With("component", "comments"),
	}
}

// List returns the comments of a post, newest first.
func (s *Service) List(ctx context.Context, postID uint) ([]*models.CommentView, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.ListCommentsByPost(ctx, postID)
}

// Create adds a comment by the user of ctx and notifies subscribers of the post.
func (s *Service) Create(ctx context.Context, postID uint, input models.CommentInput) (*models.CommentView, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	input.Body = strings.TrimSpace(input.Body)
	if err := validation.Validate(&input); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID: userID,
		PostID: postID,
		Body:   input.Body,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	view, err := s.store.GetCommentView(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(postID, view)
	s.log.Info(ctx, "comment created", "comment_id", comment.ID, "post_id", postID, "user_id", userID)
	return view, nil
}

func (s *Service) Update(ctx context.Context, id uint, input models.CommentInput) (*models.CommentView, error) {
	comment, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	input.Body = strings.TrimSpace(input.Body)
	if err := validation.Validate(&input); err != nil {
		return nil, err
	}

	comment.Body = input.Body
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return s.store.GetCommentView(ctx, comment.ID)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	comment, err := s.owned(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCommentByID(ctx, comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.log.Info(ctx, "comment deleted", "comment_id", comment.ID, "post_id", comment.PostID)
	return nil
}

// Subscribe streams comments created on postID until cancel is called.
func (s *Service) Subscribe(ctx context.Context, postID uint) (<-chan *models.CommentView, func(), error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.events.Subscribe(postID)
	return ch, cancel, nil
}

func (s *Service) owned(ctx context.Context, id uint) (*models.Comment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}

	comment, err := s.store.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !comment.OwnedBy(userID) {
		return nil, apperr.ErrForbidden
	}
	return comment, nil
}
