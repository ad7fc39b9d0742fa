package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
)

type PostMemoryStorage struct {
	db *DB
}

func NewPostMemoryStorage(db *DB) *PostMemoryStorage {
	return &PostMemoryStorage{db: db}
}

func (s *PostMemoryStorage) CreatePost(_ context.Context, post *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[post.UserID]; !ok {
		return apperr.ErrNotFound
	}

	now := s.db.now()
	post.ID = s.db.nextPostID
	s.db.nextPostID++
	post.CreatedAt = now
	post.UpdatedAt = now

	stored := *post
	s.db.posts[post.ID] = &stored
	return nil
}

func (s *PostMemoryStorage) GetPostByID(_ context.Context, id uint) (*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.posts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *PostMemoryStorage) GetPostView(_ context.Context, id uint) (*models.PostView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.posts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.view(p), nil
}

// ListPosts returns one page, newest first, and the total number of posts.
func (s *PostMemoryStorage) ListPosts(_ context.Context, limit, offset int) ([]*models.PostView, int, error) {
	if limit < 0 || offset < 0 {
		return nil, 0, fmt.Errorf("invalid page window: limit %d, offset %d", limit, offset)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	all := make([]*models.Post, 0, len(s.db.posts))
	for _, p := range s.db.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	views := []*models.PostView{}
	if offset >= total {
		return views, total, nil
	}
	end := offset + limit
	if end > total || end < offset {
		end = total
	}
	for _, p := range all[offset:end] {
		views = append(views, s.view(p))
	}
	return views, total, nil
}

func (s *PostMemoryStorage) UpdatePost(_ context.Context, post *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.posts[post.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Title = post.Title
	stored.Body = post.Body
	stored.UpdatedAt = s.db.now()
	post.UpdatedAt = stored.UpdatedAt
	return nil
}

// DeletePostByID removes the post together with its comments.
func (s *PostMemoryStorage) DeletePostByID(_ context.Context, id uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.posts[id]; !ok {
		return apperr.ErrNotFound
	}
	for cid, c := range s.db.comments {
		if c.PostID == id {
			delete(s.db.comments, cid)
		}
	}
	delete(s.db.posts, id)
	return nil
}

// view must be called with mu held.
func (s *PostMemoryStorage) view(p *models.Post) *models.PostView {
	count := 0
	for _, c := range s.db.comments {
		if c.PostID == p.ID {
			count++
		}
	}
	return &models.PostView{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         p.Title,
		Body:          p.Body,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CommentsCount: count,
		User:          s.db.author(p.UserID),
	}
}
