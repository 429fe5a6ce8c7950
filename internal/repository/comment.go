package repository

import (
	"context"
	"errors"

	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	React(ctx context.Context, commentID, userID uint, kind models.ReactionKind) (*models.Comment, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, "create", err)
		return err
	}
	r.log.LogMutation(ctx, "create", map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
	})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, err
	}
	if err := r.loadReactionSets(ctx, []*models.Comment{&comment}); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("list_by_post", "comments")()

	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadReactionSets(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// React records userID's like or dislike on a comment.
//
// The membership row is the source of truth: the upsert refuses to touch a row
// that already holds the same reaction (idempotent re-like), and the counters
// are recomputed from membership inside the same transaction, so likes and
// dislikes always equal the set sizes and cannot go negative. The existence
// check takes a FOR UPDATE lock on the comment row, serializing concurrent
// reactions per comment: each recount statement starts only after the prior
// reaction's commit, so no committed reaction row is missed by the recount's
// snapshot. Reactions on different comments proceed independently.
func (r *commentRepository) React(ctx context.Context, commentID, userID uint, kind models.ReactionKind) (*models.Comment, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Comment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, commentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", commentID)
			}
			return err
		}

		res := tx.Exec(
			`INSERT INTO comment_reactions (comment_id, user_id, kind, created_at)
			 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (comment_id, user_id)
			 DO UPDATE SET kind = excluded.kind
			 WHERE comment_reactions.kind <> excluded.kind`,
			commentID, userID, string(kind),
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Same reaction already recorded; nothing to update.
			return nil
		}
		changed = true

		return tx.Exec(
			`UPDATE comments SET
			 likes = (SELECT COUNT(*) FROM comment_reactions WHERE comment_id = ? AND kind = ?),
			 dislikes = (SELECT COUNT(*) FROM comment_reactions WHERE comment_id = ? AND kind = ?)
			 WHERE id = ?`,
			commentID, string(models.ReactionLike),
			commentID, string(models.ReactionDislike),
			commentID,
		).Error
	})
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			r.log.LogError(ctx, "react", err)
		}
		return nil, err
	}
	if changed {
		r.log.LogMutation(ctx, "react", map[string]interface{}{
			"comment_id": commentID,
			"user_id":    userID,
			"kind":       string(kind),
		})
	}

	return r.GetByID(ctx, commentID)
}

// loadReactionSets fills LikedBy/DislikedBy from comment_reactions for every
// comment in the batch.
func (r *commentRepository) loadReactionSets(ctx context.Context, comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(comments))
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
		byID[c.ID] = c
		c.LikedBy = nil
		c.DislikedBy = nil
	}

	var reactions []models.CommentReaction
	if err := r.db.WithContext(ctx).
		Where("comment_id IN ?", ids).
		Find(&reactions).Error; err != nil {
		return err
	}

	for _, reaction := range reactions {
		c := byID[reaction.CommentID]
		if c == nil {
			continue
		}
		if reaction.Kind == models.ReactionLike {
			c.LikedBy = append(c.LikedBy, reaction.UserID)
		} else {
			c.DislikedBy = append(c.DislikedBy, reaction.UserID)
		}
	}
	return nil
}
