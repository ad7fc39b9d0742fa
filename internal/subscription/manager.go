// Package subscription fans newly created comments out to listeners of their post.
package subscription

import (
	"sync"
	"time"

	"github.com/VitaminP8/forum/models"
)

const publishTimeout = 500 * time.Millisecond

type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[uint][]chan *models.CommentView // postID -> subscriber channels
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subs: make(map[uint][]chan *models.CommentView),
	}
}

func (m *SubscriptionManager) Subscribe(postID uint) (<-chan *models.CommentView, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// buffered so a single publish never blocks on a slow reader
	ch := make(chan *models.CommentView, 1)

	m.subs[postID] = append(m.subs[postID], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subscribers := m.subs[postID]
			for i, sub := range subscribers {
				if sub == ch {
					m.subs[postID] = append(subscribers[:i], subscribers[i+1:]...)
					close(ch)
					break
				}
			}
			if len(m.subs[postID]) == 0 {
				delete(m.subs, postID)
			}
		})
	}

	return ch, cancel
}

// Publish delivers comment to every subscriber of postID, dropping it for readers
// that stay full longer than publishTimeout.
func (m *SubscriptionManager) Publish(postID uint, comment *models.CommentView) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[postID] {
		select {
		case sub <- comment:
		case <-time.After(publishTimeout):
		}
	}
}

// subscribers returns the number of open subscriptions for postID.
func (m *SubscriptionManager) subscribers(postID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[postID])
}
