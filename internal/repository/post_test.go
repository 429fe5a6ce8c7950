package repository

import (
	"context"
	"regexp"
	"testing"

	"ripple/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func expectPostWithDetails(mock sqlmock.Sqlmock, id uint, userID uint) {
	mock.ExpectQuery(regexp.QuoteMeta(`AS comments_count`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "category", "up_votes", "down_votes", "view_count", "comments_count", "reply_comments_count"}).
			AddRow(id, userID, "Post content", "tech", 3, 1, 7, 5, 2))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name"}).AddRow(userID, "Ada", "Lovelace"))
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{UserID: 1, Content: "Hello", Category: models.CategoryTech}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Success with computed counts", func(t *testing.T) {
		expectPostWithDetails(mock, 1, 10)

		post, err := repo.GetByID(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "Post content", post.Content)
		assert.Equal(t, 5, post.CommentsCount)
		assert.Equal(t, 2, post.ReplyCommentsCount)
		assert.Equal(t, "Ada", post.User.FirstName)
		assert.Equal(t, "Ada", post.Author.FirstName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`AS comments_count`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(ctx, 99)
		assert.Error(t, err)
		var appErr *models.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_ListFeed(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Default sort joins author", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INNER JOIN "users" "User"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "category", "comments_count", "reply_comments_count", "User__id", "User__first_name"}).
				AddRow(2, 10, "Second", "tech", 1, 0, 10, "Ada").
				AddRow(1, 10, "First", "health", 4, 2, 10, "Ada"))

		posts, err := repo.ListFeed(ctx, FeedFilter{})
		assert.NoError(t, err)
		assert.Len(t, posts, 2)
		assert.Equal(t, 4, posts[1].CommentsCount)
		assert.Equal(t, "Ada", posts[0].User.FirstName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Category filter", func(t *testing.T) {
		category := models.CategoryTech
		mock.ExpectQuery(regexp.QuoteMeta(`posts.category = $`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "content", "category"}))

		posts, err := repo.ListFeed(ctx, FeedFilter{Category: &category})
		assert.NoError(t, err)
		assert.Empty(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Vote(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Upvote increments counter", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`"up_votes"=up_votes + `)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		expectPostWithDetails(mock, 1, 10)

		post, err := repo.Vote(ctx, 1, models.VoteUp)
		assert.NoError(t, err)
		assert.NotNil(t, post)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Downvote targets down_votes", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`"down_votes"=down_votes + `)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		expectPostWithDetails(mock, 1, 10)

		_, err := repo.Vote(ctx, 1, models.VoteDown)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing post", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`"up_votes"=up_votes + `)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		_, err := repo.Vote(ctx, 99, models.VoteUp)
		var appErr *models.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_IncrementViewCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`"view_count"=view_count + `)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.IncrementViewCount(ctx, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "deleted_at"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
