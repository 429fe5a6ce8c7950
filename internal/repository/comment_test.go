package repository

import (
	"context"
	"regexp"
	"testing"

	"ripple/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func expectCommentWithReactions(mock sqlmock.Sqlmock, id uint, likedBy, dislikedBy []uint) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "content", "likes", "dislikes"}).
			AddRow(id, 1, 10, "Nice post", len(likedBy), len(dislikedBy)))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).AddRow(10, "Ada"))

	reactionRows := sqlmock.NewRows([]string{"id", "comment_id", "user_id", "kind"})
	row := uint(0)
	for _, userID := range likedBy {
		row++
		reactionRows.AddRow(row, id, userID, "like")
	}
	for _, userID := range dislikedBy {
		row++
		reactionRows.AddRow(row, id, userID, "dislike")
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comment_reactions"`)).
		WillReturnRows(reactionRows)
}

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	comment := &models.Comment{PostID: 1, UserID: 2, Content: "Nice post"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, comment)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	t.Run("Success loads reaction sets", func(t *testing.T) {
		expectCommentWithReactions(mock, 1, []uint{3, 4}, []uint{5})

		comment, err := repo.GetByID(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, []uint{3, 4}, comment.LikedBy)
		assert.Equal(t, []uint{5}, comment.DislikedBy)
		assert.Equal(t, 2, comment.Likes)
		assert.Equal(t, 1, comment.Dislikes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(ctx, 99)
		var appErr *models.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepository_ListByPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "parent_id", "content"}).
			AddRow(1, 1, 10, nil, "Top level").
			AddRow(2, 1, 11, 1, "A reply"))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).AddRow(10, "Ada").AddRow(11, "Alan"))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comment_reactions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "comment_id", "user_id", "kind"}).
			AddRow(1, 1, 11, "like"))

	comments, err := repo.ListByPost(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, []uint{11}, comments[0].LikedBy)
	assert.Nil(t, comments[0].ParentID)
	assert.NotNil(t, comments[1].ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_React(t *testing.T) {
	ctx := context.Background()

	t.Run("New reaction locks the comment row and recomputes counters", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		// Concurrent reactions on one comment serialize on this lock.
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO comment_reactions`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE comments SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		expectCommentWithReactions(mock, 1, []uint{7}, nil)

		comment, err := repo.React(ctx, 1, 7, models.ReactionLike)
		assert.NoError(t, err)
		assert.Equal(t, []uint{7}, comment.LikedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Repeated reaction is a no-op", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		// Same kind already stored: the conditional upsert touches no row and
		// the counter update is skipped.
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO comment_reactions`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		expectCommentWithReactions(mock, 1, []uint{7}, nil)

		comment, err := repo.React(ctx, 1, 7, models.ReactionLike)
		assert.NoError(t, err)
		assert.Equal(t, 1, comment.Likes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing comment", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.React(ctx, 99, 7, models.ReactionLike)
		var appErr *models.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
