package memory

import (
	"context"
	"sort"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
)

type CommentMemoryStorage struct {
	db *DB
}

func NewCommentMemoryStorage(db *DB) *CommentMemoryStorage {
	return &CommentMemoryStorage{db: db}
}

func (s *CommentMemoryStorage) CreateComment(_ context.Context, comment *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.posts[comment.PostID]; !ok {
		return apperr.ErrNotFound
	}
	if _, ok := s.db.users[comment.UserID]; !ok {
		return apperr.ErrNotFound
	}

	now := s.db.now()
	comment.ID = s.db.nextCommentID
	s.db.nextCommentID++
	comment.CreatedAt = now
	comment.UpdatedAt = now

	stored := *comment
	s.db.comments[comment.ID] = &stored
	return nil
}

func (s *CommentMemoryStorage) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.comments[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *CommentMemoryStorage) GetCommentView(_ context.Context, id uint) (*models.CommentView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.comments[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.view(c), nil
}

// ListCommentsByPost returns all comments of a post, newest first.
func (s *CommentMemoryStorage) ListCommentsByPost(_ context.Context, postID uint) ([]*models.CommentView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var found []*models.Comment
	for _, c := range s.db.comments {
		if c.PostID == postID {
			found = append(found, c)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].ID > found[j].ID
		}
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})

	views := make([]*models.CommentView, 0, len(found))
	for _, c := range found {
		views = append(views, s.view(c))
	}
	return views, nil
}

func (s *CommentMemoryStorage) UpdateComment(_ context.Context, comment *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.comments[comment.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Body = comment.Body
	stored.UpdatedAt = s.db.now()
	comment.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *CommentMemoryStorage) DeleteCommentByID(_ context.Context, id uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.comments[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.db.comments, id)
	return nil
}

// view must be called with mu held.
func (s *CommentMemoryStorage) view(c *models.Comment) *models.CommentView {
	return &models.CommentView{
		ID:        c.ID,
		UserID:    c.UserID,
		PostID:    c.PostID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		User:      s.db.author(c.UserID),
	}
}
