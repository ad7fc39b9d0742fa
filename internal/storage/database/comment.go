package database

import (
	"context"
	"fmt"
	"time"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
	"github.com/jinzhu/gorm"
)

const commentViewColumns = `comments.id, comments.user_id, comments.post_id, comments.body,
	comments.created_at, comments.updated_at, COALESCE(users.username, '') AS username`

type commentRow struct {
	ID        uint
	UserID    uint
	PostID    uint
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string
}

func (r commentRow) view() *models.CommentView {
	return &models.CommentView{
		ID:        r.ID,
		UserID:    r.UserID,
		PostID:    r.PostID,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		User:      models.Author{ID: r.UserID, Username: r.Username},
	}
}

type CommentDatabaseStorage struct {
	db *gorm.DB
}

func NewCommentDatabaseStorage(db *gorm.DB) *CommentDatabaseStorage {
	return &CommentDatabaseStorage{db: db}
}

func (s *CommentDatabaseStorage) commentViews() *gorm.DB {
	return s.db.Table("comments").
		Select(commentViewColumns).
		Joins("LEFT JOIN users ON users.id = comments.user_id")
}

func (s *CommentDatabaseStorage) CreateComment(_ context.Context, comment *models.Comment) error {
	var count int
	if err := s.db.Model(&models.Post{}).Where("id = ?", comment.PostID).Count(&count).Error; err != nil {
		return fmt.Errorf("could not check post: %w", err)
	}
	if count == 0 {
		return apperr.ErrNotFound
	}

	if err := s.db.Create(comment).Error; err != nil {
		return fmt.Errorf("could not create comment: %w", err)
	}
	return nil
}

func (s *CommentDatabaseStorage) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, notFound(err, "could not get comment by id")
	}
	return &comment, nil
}

func (s *CommentDatabaseStorage) GetCommentView(_ context.Context, id uint) (*models.CommentView, error) {
	var rows []commentRow
	err := s.commentViews().Where("comments.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get comment: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperr.ErrNotFound
	}
	return rows[0].view(), nil
}

func (s *CommentDatabaseStorage) ListCommentsByPost(_ context.Context, postID uint) ([]*models.CommentView, error) {
	var rows []commentRow
	err := s.commentViews().
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not list comments: %w", err)
	}

	views := make([]*models.CommentView, 0, len(rows))
	for _, r := range rows {
		views = append(views, r.view())
	}
	return views, nil
}

func (s *CommentDatabaseStorage) UpdateComment(_ context.Context, comment *models.Comment) error {
	res := s.db.Model(comment).Updates(map[string]interface{}{"body": comment.Body})
	if res.Error != nil {
		return fmt.Errorf("could not update comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *CommentDatabaseStorage) DeleteCommentByID(_ context.Context, id uint) error {
	res := s.db.Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return fmt.Errorf("could not delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
