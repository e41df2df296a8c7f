package repository

import (
	"context"
	"regexp"
	"testing"

	"campusboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLogRepository_Append(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReviewLogRepository(db)
	ctx := context.Background()

	reviewerID := uint(5)
	log := &models.ReviewLog{
		PostID:     1,
		ReviewerID: &reviewerID,
		Action:     models.ActionApprove,
		Reason:     "looks fine",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "review_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Append(ctx, log)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewLogRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReviewLogRepository(db)
	ctx := context.Background()

	postID := uint(1)
	action := models.ActionReject

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "review_logs" WHERE post_id = $1 AND action = $2 ORDER BY created_at ASC LIMIT $3`)).
		WithArgs(1, string(models.ActionReject), 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "action", "reason"}).
			AddRow(1, 1, "reject", "off topic").
			AddRow(2, 1, "reject", "spam"))

	logs, err := repo.List(ctx, ReviewLogFilter{PostID: &postID, Action: &action}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, models.ActionReject, logs[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
