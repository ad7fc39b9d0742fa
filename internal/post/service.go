package post

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/internal/auth"
	"github.com/VitaminP8/forum/internal/logging"
	"github.com/VitaminP8/forum/internal/validation"
	"github.com/VitaminP8/forum/models"
)

const (
	MinPerPage     = 10
	MaxPerPage     = 50
	DefaultPerPage = MinPerPage
)

// ClampPerPage bounds a requested page size to [MinPerPage, MaxPerPage].
func ClampPerPage(perPage int) int {
	if perPage < MinPerPage {
		return MinPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

func lastPage(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

type Service struct {
	store PostStorage
	log   logging.Logger
}

func NewService(store PostStorage, log logging.Logger) *Service {
	return &Service{store: store, log: log.With("component", "posts")}
}

// List returns one page of posts. Out-of-range page sizes are clamped and pages below 1 mean the first page.
// Pages too large to address are capped, which still yields an empty page past the end.
func (s *Service) List(ctx context.Context, perPage, page int) (*models.PostPage, error) {
	perPage = ClampPerPage(perPage)
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt/perPage - 1; page > maxPage {
		page = maxPage
	}

	posts, total, err := s.store.ListPosts(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("could not list posts: %w", err)
	}

	return &models.PostPage{
		Data: posts,
		Meta: models.PageMeta{
			Page:     page,
			LastPage: lastPage(total, perPage),
			PerPage:  perPage,
			Total:    total,
		},
	}, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.PostView, error) {
	return s.store.GetPostView(ctx, id)
}

// Create stores a post authored by the user of ctx.
func (s *Service) Create(ctx context.Context, input models.PostInput) (*models.PostView, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}

	input = normalize(input)
	if err := validation.Validate(&input); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID: userID,
		Title:  input.Title,
		Body:   input.Body,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.log.Info(ctx, "post created", "post_id", post.ID, "user_id", userID)
	return s.store.GetPostView(ctx, post.ID)
}

func (s *Service) Update(ctx context.Context, id uint, input models.PostInput) (*models.PostView, error) {
	post, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	input = normalize(input)
	if err := validation.Validate(&input); err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Body = input.Body
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return s.store.GetPostView(ctx, post.ID)
}

// Delete removes the post and its comments.
func (s *Service) Delete(ctx context.Context, id uint) error {
	post, err := s.owned(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeletePostByID(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.log.Info(ctx, "post deleted", "post_id", post.ID, "user_id", post.UserID)
	return nil
}

// owned loads the post and checks that the user of ctx wrote it.
func (s *Service) owned(ctx context.Context, id uint) (*models.Post, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}

	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(userID) {
		return nil, apperr.ErrForbidden
	}
	return post, nil
}

func normalize(input models.PostInput) models.PostInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	return input
}
