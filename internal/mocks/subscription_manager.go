package mocks

import (
	"sync"

	"github.com/VitaminP8/forum/models"
)

// MockSubscriptionManager records published comments instead of delivering them.
type MockSubscriptionManager struct {
	mu        sync.Mutex
	Published map[uint][]*models.CommentView
}

func NewMockSubscriptionManager() *MockSubscriptionManager {
	return &MockSubscriptionManager{
		Published: make(map[uint][]*models.CommentView),
	}
}

func (m *MockSubscriptionManager) Subscribe(uint) (<-chan *models.CommentView, func()) {
	ch := make(chan *models.CommentView)
	return ch, func() {}
}

func (m *MockSubscriptionManager) Publish(postID uint, comment *models.CommentView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published[postID] = append(m.Published[postID], comment)
}

func (m *MockSubscriptionManager) Count(postID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published[postID])
}
