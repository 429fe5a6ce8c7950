package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is the closed set of post categories.
type Category string

const (
	CategoryTech          Category = "tech"
	CategoryHealth        Category = "health"
	CategoryLifestyle     Category = "lifestyle"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategorySports        Category = "sports"
)

// Valid reports whether c is a member of the category enum.
func (c Category) Valid() bool {
	switch c {
	case CategoryTech, CategoryHealth, CategoryLifestyle,
		CategoryEducation, CategoryEntertainment, CategorySports:
		return true
	}
	return false
}

// VoteType distinguishes up and down votes on a post.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether v is a recognized vote type.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Post represents a post in the Ripple application.
//
// UpVotes, DownVotes and ViewCount are mutated only through the repository's
// atomic counter operations and never go negative. Post votes carry no
// per-user membership, so repeated votes by the same caller accumulate; this
// asymmetry with comment reactions is intentional.
type Post struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`
	// Author is the denormalized projection of User exposed to feed readers.
	Author    AuthorInfo `gorm:"-" json:"author"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	ImageURL  string     `json:"image_url"`
	Category  Category   `gorm:"not null;index" json:"category"`
	UpVotes   int        `gorm:"not null;default:0" json:"up_votes"`
	DownVotes int        `gorm:"not null;default:0" json:"down_votes"`
	ViewCount int        `gorm:"not null;default:0" json:"view_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// ReplyCommentsCount counts comments with a parent, any depth; computed at query time
	ReplyCommentsCount int            `gorm:"->" json:"reply_comments_count"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
