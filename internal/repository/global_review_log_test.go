package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"campusboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func voteLog(postID, userID uint, approve bool) *models.GlobalReviewLog {
	return &models.GlobalReviewLog{
		PostID: postID,
		UserID: &userID,
		Action: models.GlobalActionVote,
		Vote:   &approve,
	}
}

func TestGlobalReviewLogRepository_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("First vote", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewGlobalReviewLogRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "global_review_logs"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := repo.Append(ctx, voteLog(1, 10, true))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate vote maps to ALREADY_VOTED", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewGlobalReviewLogRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "global_review_logs"`)).
			WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_global_vote_once" (SQLSTATE 23505)`))
		mock.ExpectRollback()

		err := repo.Append(ctx, voteLog(1, 10, true))
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeAlreadyVoted, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGlobalReviewLogRepository_Tally(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGlobalReviewLogRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "global_review_logs" WHERE post_id = $1 AND action = $2`)).
		WithArgs(1, string(models.GlobalActionVote)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "global_review_logs" WHERE post_id = $1 AND action = $2 AND vote = $3`)).
		WithArgs(1, string(models.GlobalActionVote), true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	tally, err := repo.Tally(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tally.Total)
	assert.Equal(t, int64(4), tally.Approves)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: global_review_logs.post_id")))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}
