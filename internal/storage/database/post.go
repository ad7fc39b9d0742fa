package database

import (
	"context"
	"fmt"
	"time"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
	"github.com/jinzhu/gorm"
)

const postViewColumns = `posts.id, posts.user_id, posts.title, posts.body, posts.created_at, posts.updated_at,
	COALESCE(users.username, '') AS username,
	(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count`

type postRow struct {
	ID            uint
	UserID        uint
	Title         string
	Body          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Username      string
	CommentsCount int
}

func (r postRow) view() *models.PostView {
	return &models.PostView{
		ID:            r.ID,
		UserID:        r.UserID,
		Title:         r.Title,
		Body:          r.Body,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		CommentsCount: r.CommentsCount,
		User:          models.Author{ID: r.UserID, Username: r.Username},
	}
}

type PostDatabaseStorage struct {
	db *gorm.DB
}

func NewPostDatabaseStorage(db *gorm.DB) *PostDatabaseStorage {
	return &PostDatabaseStorage{db: db}
}

func (s *PostDatabaseStorage) postViews() *gorm.DB {
	return s.db.Table("posts").
		Select(postViewColumns).
		Joins("LEFT JOIN users ON users.id = posts.user_id")
}

func (s *PostDatabaseStorage) CreatePost(_ context.Context, post *models.Post) error {
	var count int
	if err := s.db.Model(&models.User{}).Where("id = ?", post.UserID).Count(&count).Error; err != nil {
		return fmt.Errorf("could not check author: %w", err)
	}
	if count == 0 {
		return apperr.ErrNotFound
	}

	if err := s.db.Create(post).Error; err != nil {
		return fmt.Errorf("could not create post: %w", err)
	}
	return nil
}

func (s *PostDatabaseStorage) GetPostByID(_ context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, notFound(err, "could not get post by id")
	}
	return &post, nil
}

func (s *PostDatabaseStorage) GetPostView(_ context.Context, id uint) (*models.PostView, error) {
	var rows []postRow
	err := s.postViews().Where("posts.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get post: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperr.ErrNotFound
	}
	return rows[0].view(), nil
}

func (s *PostDatabaseStorage) ListPosts(_ context.Context, limit, offset int) ([]*models.PostView, int, error) {
	var total int
	if err := s.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("could not count posts: %w", err)
	}

	var rows []postRow
	err := s.postViews().
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("could not list posts: %w", err)
	}

	views := make([]*models.PostView, 0, len(rows))
	for _, r := range rows {
		views = append(views, r.view())
	}
	return views, total, nil
}

func (s *PostDatabaseStorage) UpdatePost(_ context.Context, post *models.Post) error {
	res := s.db.Model(post).Updates(map[string]interface{}{
		"title": post.Title,
		"body":  post.Body,
	})
	if res.Error != nil {
		return fmt.Errorf("could not update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeletePostByID removes the comments and then the post in one transaction.
func (s *PostDatabaseStorage) DeletePostByID(_ context.Context, id uint) error {
	return withTx(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("could not delete comments: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return fmt.Errorf("could not delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}
