// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
)

// FeedFilter describes one feed query: optional category and author scoping,
// sort specification and pagination.
type FeedFilter struct {
	Category *models.Category
	AuthorID *uint
	SortBy   string // "created_at" or "up_votes"
	SortDir  string // "asc" or "desc"
	Skip     int
	Limit    int
}

// Defaults for feed pagination and sorting.
const (
	DefaultFeedLimit = 10
	SortByCreatedAt  = "created_at"
	SortByUpVotes    = "up_votes"
)

// Normalized returns a copy of f with defaults applied: createdAt desc,
// skip 0, limit 10.
func (f FeedFilter) Normalized() FeedFilter {
	if f.SortBy != SortByUpVotes {
		f.SortBy = SortByCreatedAt
	}
	if f.SortDir != "asc" {
		f.SortDir = "desc"
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultFeedLimit
	}
	return f
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListFeed(ctx context.Context, filter FeedFilter) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Vote(ctx context.Context, id uint, vote models.VoteType) (*models.Post, error)
	IncrementViewCount(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, "create", err)
		return err
	}
	r.log.LogMutation(ctx, "create", map[string]interface{}{"post_id": post.ID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.applyFeedDetails(r.db.WithContext(ctx)).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	post.Author = post.User.Author()
	return &post, nil
}

func (r *postRepository) ListFeed(ctx context.Context, filter FeedFilter) ([]*models.Post, error) {
	defer observability.TrackQuery("list_feed", "posts")()

	f := filter.Normalized()

	// Inner join on the author: a post whose author cannot be resolved is
	// excluded from the feed.
	q := r.applyFeedDetails(r.db.WithContext(ctx)).
		InnerJoins("User")

	if f.Category != nil {
		q = q.Where("posts.category = ?", *f.Category)
	}
	if f.AuthorID != nil {
		q = q.Where("posts.user_id = ?", *f.AuthorID)
	}

	var posts []*models.Post
	err := q.Order("posts." + f.SortBy + " " + f.SortDir).
		Offset(f.Skip).
		Limit(f.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		post.Author = post.User.Author()
	}
	return posts, nil
}

// applyFeedDetails adds subqueries to fetch both comment counts in a single query.
// reply_comments_count includes every comment with a parent, any depth.
func (r *postRepository) applyFeedDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.parent_id IS NOT NULL AND comments.deleted_at IS NULL) AS reply_comments_count")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		r.log.LogError(ctx, "update", err)
		return err
	}
	r.log.LogMutation(ctx, "update", map[string]interface{}{"post_id": post.ID})
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		r.log.LogError(ctx, "delete", err)
		return err
	}
	r.log.LogMutation(ctx, "delete", map[string]interface{}{"post_id": id})
	return nil
}

// Vote increments the matching counter by exactly one in a single conditional
// update. Post votes carry no per-user membership, so repeated votes by the
// same caller accumulate.
func (r *postRepository) Vote(ctx context.Context, id uint, vote models.VoteType) (*models.Post, error) {
	column := "up_votes"
	if vote == models.VoteDown {
		column = "down_votes"
	}

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		r.log.LogError(ctx, "vote", res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	r.log.LogMutation(ctx, "vote", map[string]interface{}{"post_id": id, "vote": string(vote)})

	return r.GetByID(ctx, id)
}

// IncrementViewCount bumps the view counter. Best-effort: detail reads count
// as views and have no ordering requirement relative to other reads.
func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}
