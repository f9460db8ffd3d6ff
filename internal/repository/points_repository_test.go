package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-activity-api/internal/models"
)

func TestListTotalPoints(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPointsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT total_point FROM points_history WHERE student_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"total_point"}).AddRow(10).AddRow(15))

	values, err := repo.ListTotalPoints(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 15}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTotalPointsEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPointsRepository(db)

	mock.ExpectQuery("SELECT total_point FROM points_history").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"total_point"}))

	values, err := repo.ListTotalPoints(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTotalPointsFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPointsRepository(db)

	mock.ExpectQuery("SELECT total_point FROM points_history").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListTotalPoints(context.Background(), 1)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePointsRecord(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPointsRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO points_history (student_id, event_id, total_point) VALUES ($1, $2, $3) RETURNING")).
		WithArgs(int64(1), int64(7), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "event_id", "total_point", "created_at"}).AddRow(1, 1, 7, 10, now))

	record := &models.PointsHistoryRecord{StudentID: 1, EventID: 7, TotalPoint: 10}
	require.NoError(t, repo.Create(context.Background(), record))
	assert.Equal(t, int64(1), record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
