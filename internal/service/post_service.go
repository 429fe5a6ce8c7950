package service

import (
	"context"
	"strings"

	"ripple/internal/imagehost"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

// PostService owns post lifecycle, the feed query pipeline and the thread
// assembler.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	images      imagehost.Host
}

type CreatePostInput struct {
	UserID   uint
	Content  string
	Category models.Category
	ImageURL string
	// Image, when set, is uploaded to the image host and its public URL
	// replaces ImageURL.
	Image *imagehost.Blob
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Content  string
	Category models.Category
	Image    *imagehost.Blob
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	images imagehost.Host,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		images:      images,
	}
}

const maxContentLen = 50000

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if !in.Category.Valid() {
		return nil, models.NewValidationError("Invalid category")
	}

	imageURL := in.ImageURL
	if in.Image != nil {
		if s.images == nil {
			return nil, models.NewValidationError("Image upload is not available")
		}
		uploaded, err := s.images.Upload(ctx, *in.Image, "posts")
		if err != nil {
			return nil, err
		}
		imageURL = uploaded
	}

	post := &models.Post{
		UserID:   in.UserID,
		Content:  in.Content,
		ImageURL: imageURL,
		Category: in.Category,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You do not have permission to edit this post")
	}

	if in.Content != "" {
		if len(in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = in.Content
	}
	if in.Category != "" {
		if !in.Category.Valid() {
			return nil, models.NewValidationError("Invalid category")
		}
		post.Category = in.Category
	}
	if in.Image != nil {
		if s.images == nil {
			return nil, models.NewValidationError("Image upload is not available")
		}
		uploaded, err := s.images.Upload(ctx, *in.Image, "posts")
		if err != nil {
			return nil, err
		}
		post.ImageURL = uploaded
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}

	if post.UserID != in.UserID {
		return models.NewForbiddenError("You do not have permission to delete this post")
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// ListFeed runs the joined feed pipeline against the data store.
func (s *PostService) ListFeed(ctx context.Context, filter repository.FeedFilter) ([]*models.Post, error) {
	if filter.Category != nil && !filter.Category.Valid() {
		return nil, models.NewValidationError("Invalid category")
	}
	return s.postRepo.ListFeed(ctx, filter)
}

// VotePost applies a single up or down vote. Votes are not deduplicated per
// user; every call counts.
func (s *PostService) VotePost(ctx context.Context, postID uint, vote models.VoteType) (*models.Post, error) {
	if !vote.Valid() {
		return nil, models.NewValidationError("Invalid vote type")
	}
	return s.postRepo.Vote(ctx, postID, vote)
}

// GetPostThread assembles the two-level comment tree for one post and bumps
// the view counter. The increment is a side effect of the read: it is issued
// after the post resolves and is not rolled back if a later step fails.
func (s *PostService) GetPostThread(ctx context.Context, postID uint) (*models.PostThread, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementViewCount(ctx, postID); err != nil {
		observability.GlobalLogger.Warn("view count increment failed",
			"post_id", postID, "error", err.Error())
	} else {
		post.ViewCount++
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &models.PostThread{
		Post:     post,
		Comments: assembleThread(comments),
	}, nil
}

// assembleThread groups a post's comments into top-level comments with their
// direct replies. Replies to replies stay unexpanded.
func assembleThread(comments []*models.Comment) []models.ThreadComment {
	replies := make(map[uint][]*models.Comment)
	for _, c := range comments {
		if c.ParentID != nil {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}

	thread := make([]models.ThreadComment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			continue
		}
		thread = append(thread, models.ThreadComment{
			Comment: c,
			Replies: replies[c.ID],
		})
	}
	return thread
}
