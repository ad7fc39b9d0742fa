// Package memory keeps users, tokens, posts and comments in process memory.
// All storages built on one DB share a single lock, so a post and its comments
// are removed atomically.
package memory

import (
	"sync"
	"time"

	"github.com/VitaminP8/forum/models"
)

type DB struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	// lookups and usernames index users by their unique keys.
	lookups   map[string]uint
	usernames map[string]uint
	tokens   map[string]*models.Token
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment

	nextUserID    uint
	nextPostID    uint
	nextCommentID uint

	now func() time.Time
}

func New() *DB {
	return &DB{
		users:         make(map[uint]*models.User),
		lookups:       make(map[string]uint),
		usernames:     make(map[string]uint),
		tokens:        make(map[string]*models.Token),
		posts:         make(map[uint]*models.Post),
		comments:      make(map[uint]*models.Comment),
		nextUserID:    1,
		nextPostID:    1,
		nextCommentID: 1,
		now:           time.Now,
	}
}

// author must be called with mu held.
func (db *DB) author(userID uint) models.Author {
	a := models.Author{ID: userID}
	if u, ok := db.users[userID]; ok {
		a.Username = u.Username
	}
	return a
}
