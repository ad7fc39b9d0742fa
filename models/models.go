package models

import "time"

type User struct {
	ID             uint   `gorm:"primary_key"`
	Username       string `gorm:"size:50;unique_index;not null"`
	PasswordHash   string `gorm:"not null"`
	PasswordLookup string `gorm:"size:64;unique_index;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Posts          []Post    `gorm:"foreignkey:UserID"`
	Comments       []Comment `gorm:"foreignkey:UserID"`
	Tokens         []Token   `gorm:"foreignkey:UserID"`
}

type Post struct {
	ID        uint   `gorm:"primary_key"`
	UserID    uint   `gorm:"index;not null"`
	Title     string `gorm:"size:255;not null"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Comments  []Comment `gorm:"foreignkey:PostID"`
}

type Comment struct {
	ID        uint   `gorm:"primary_key"`
	UserID    uint   `gorm:"index;not null"`
	PostID    uint   `gorm:"index;not null"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Token is the server-side record of an issued bearer token; ID is the token's jti.
type Token struct {
	ID        string `gorm:"primary_key;size:36"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:64"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

// OwnedBy reports whether the post belongs to the given user.
func (p *Post) OwnedBy(userID uint) bool {
	return p.UserID == userID
}

// OwnedBy reports whether the comment belongs to the given user.
func (c *Comment) OwnedBy(userID uint) bool {
	return c.UserID == userID
}
