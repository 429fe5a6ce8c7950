package service

import (
	"context"
	"net/http"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedQuery is the request shape for feed listings. Zero values fall back to
// the defaults: createdAt desc, skip 0, limit 10.
type FeedQuery struct {
	Category *models.Category
	// AuthorID scopes the feed to one author's posts; nil means all posts.
	AuthorID *uint
	SortBy   string
	SortDir  string
	Skip     int
	Limit    int
}

// FeedService is the single entry point combining the feed pipeline, the
// cache-aside store and the engagement counters behind a uniform response
// envelope. Faults from collaborators never escape as Go errors; every
// operation returns a Response.
type FeedService struct {
	posts    *PostService
	comments *CommentService
	store    *cache.Store
}

// NewFeedService wires the facade. The cache store is injected here and
// scoped to the service's lifetime; there is no ambient global cache.
func NewFeedService(posts *PostService, comments *CommentService, store *cache.Store) *FeedService {
	return &FeedService{
		posts:    posts,
		comments: comments,
		store:    store,
	}
}

// ListFeed serves the paginated, sorted, joined feed. Identical queries
// derive identical cache keys; a hit short-circuits the query pipeline and is
// tagged by its message, a miss runs the pipeline and repopulates the cache.
func (s *FeedService) ListFeed(ctx context.Context, q FeedQuery) *models.Response {
	span, ctx := observability.NewSpan(ctx, "feed.list")
	defer span.End()

	filter := repository.FeedFilter{
		Category: q.Category,
		AuthorID: q.AuthorID,
		SortBy:   q.SortBy,
		SortDir:  q.SortDir,
		Skip:     q.Skip,
		Limit:    q.Limit,
	}.Normalized()

	category := ""
	if filter.Category != nil {
		category = string(*filter.Category)
	}
	key := cache.FeedKey(cache.FeedKeyParams{
		AuthorID: filter.AuthorID,
		Category: category,
		SortBy:   filter.SortBy,
		SortDir:  filter.SortDir,
		Skip:     filter.Skip,
		Limit:    filter.Limit,
	})
	span.AddAttributes(attribute.String("feed.cache_key", key))

	var posts []*models.Post
	found, err := s.store.GetJSON(ctx, key, &posts)
	if err != nil {
		// The cache is a best-effort accelerator; a broken cache read
		// degrades to a miss instead of failing the request.
		observability.GlobalLogger.Warn("feed cache read failed", "key", key, "error", err.Error())
	}
	if found {
		span.AddAttributes(attribute.Bool("feed.cache_hit", true))
		return models.Success(http.StatusOK, "Posts retrieved successfully from cache.", posts)
	}

	posts, err = s.posts.ListFeed(ctx, filter)
	if err != nil {
		span.SetError(err)
		return models.Failure(err)
	}

	_ = s.store.SetJSON(ctx, key, posts)
	return models.Success(http.StatusOK, "Posts retrieved successfully.", posts)
}

// GetPostDetail returns the post's two-level thread. Detail pages are never
// cached; every successful fetch counts as a view.
func (s *FeedService) GetPostDetail(ctx context.Context, postID uint) *models.Response {
	span, ctx := observability.NewSpan(ctx, "feed.post_detail")
	defer span.End()

	thread, err := s.posts.GetPostThread(ctx, postID)
	if err != nil {
		span.SetError(err)
		return models.Failure(err)
	}
	return models.Success(http.StatusOK, "Post retrieved successfully.", thread)
}

// Vote applies an up or down vote. Votes bypass the cache entirely; feed
// entries stay stale until TTL expiry.
func (s *FeedService) Vote(ctx context.Context, postID uint, vote models.VoteType) *models.Response {
	span, ctx := observability.NewSpan(ctx, "feed.vote")
	defer span.End()

	post, err := s.posts.VotePost(ctx, postID, vote)
	if err != nil {
		span.SetError(err)
		return models.Failure(err)
	}

	message := "Post upvoted successfully."
	if vote == models.VoteDown {
		message = "Post downvoted successfully."
	}
	return models.Success(http.StatusOK, message, post)
}

// React records a like or dislike on a comment. Reactions bypass the cache.
func (s *FeedService) React(ctx context.Context, commentID, userID uint, kind models.ReactionKind) *models.Response {
	span, ctx := observability.NewSpan(ctx, "feed.react")
	defer span.End()

	comment, err := s.comments.React(ctx, commentID, userID, kind)
	if err != nil {
		span.SetError(err)
		return models.Failure(err)
	}

	message := "Comment liked successfully."
	if kind == models.ReactionDislike {
		message = "Comment disliked successfully."
	}
	return models.Success(http.StatusOK, message, comment)
}

// CreatePost creates a post and invalidates cached feed entries.
func (s *FeedService) CreatePost(ctx context.Context, in CreatePostInput) *models.Response {
	span, ctx := observability.NewSpan(ctx, "feed.create_post")
	defer span.End()

	post, err := s.posts.CreatePost(ctx, in)
	if err != nil {
		span.SetError(err)
		return models.Failure(err)
	}

	s.store.InvalidateFeed(ctx)
	return models.Success(http.StatusCreated, "Post created successfully.", post)
}

// UpdatePost edits a post owned by the caller and invalidates cached feed
// entries.
func (s *FeedService) UpdatePost(ctx context.Context, in UpdatePostInput) *models.Response {
	span, ctx := observability.NewSpan(ctx, "feed.update_post")
	defer span.End()

	post, err := s.posts.UpdatePost(ctx, in)
	if err != nil {
		span.SetError(err)
		return models.Failure(err)
	}

	s.store.InvalidateFeed(ctx)
	return models.Success(http.StatusOK, "Post updated successfully.", post)
}

// DeletePost removes a post owned by the caller and invalidates cached feed
// entries. Deletion has no natural payload.
func (s *FeedService) DeletePost(ctx context.Context, in DeletePostInput) *models.Response {
	span, ctx := observability.NewSpan(ctx, "feed.delete_post")
	defer span.End()

	if err := s.posts.DeletePost(ctx, in); err != nil {
		span.SetError(err)
		return models.Failure(err)
	}

	s.store.InvalidateFeed(ctx)
	return models.Success(http.StatusOK, "Post deleted successfully.", nil)
}

// AddComment attaches a comment or reply to a post.
func (s *FeedService) AddComment(ctx context.Context, in CreateCommentInput) *models.Response {
	span, ctx := observability.NewSpan(ctx, "feed.add_comment")
	defer span.End()

	comment, err := s.comments.CreateComment(ctx, in)
	if err != nil {
		span.SetError(err)
		return models.Failure(err)
	}
	return models.Success(http.StatusCreated, "Comment added successfully.", comment)
}
