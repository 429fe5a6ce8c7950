package models

import (
	"time"

	"gorm.io/gorm"
)

// ReactionKind distinguishes likes and dislikes on a comment.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Valid reports whether k is a recognized reaction kind.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Comment represents a comment on a post. A nil ParentID marks a top-level
// comment; otherwise the comment is a reply to another comment on the same
// post.
//
// Likes and Dislikes are derived from CommentReaction membership and are
// updated in the same transaction as the membership change, so they stay in
// sync with LikedBy/DislikedBy and never go negative.
type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	PostID   uint     `gorm:"not null;index" json:"post_id"`
	Post     Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	UserID   uint     `gorm:"not null" json:"user_id"`
	User     User     `gorm:"foreignKey:UserID" json:"user"`
	ParentID *uint    `gorm:"index" json:"parent_id,omitempty"`
	Parent   *Comment `gorm:"foreignKey:ParentID" json:"-"`
	Content  string   `gorm:"not null" json:"content"`
	Likes    int      `gorm:"not null;default:0" json:"likes"`
	Dislikes int      `gorm:"not null;default:0" json:"dislikes"`
	// LikedBy/DislikedBy are loaded from comment_reactions; a user appears in
	// at most one of them.
	LikedBy    []uint         `gorm:"-" json:"liked_by"`
	DislikedBy []uint         `gorm:"-" json:"disliked_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentReaction is the membership source of truth for comment engagement.
// The unique index on (CommentID, UserID) enforces mutual exclusion between
// like and dislike for a given user.
type CommentReaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	CommentID uint         `gorm:"not null;uniqueIndex:idx_comment_user" json:"comment_id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_comment_user" json:"user_id"`
	Kind      ReactionKind `gorm:"not null" json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
}
