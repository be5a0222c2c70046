package services

import (
	"errors"
	"testing"

	"taskdesk/taskdesk/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	db := testutils.SetupTestDB(t)
	user := testutils.CreateUser(t, db, "testuser", "test@example.com", "testpass123")
	testutils.CreateUser(t, db, "admin", "admin@example.com", "adminpass123")
	testutils.CreateTask(t, db, user, "Open", false)
	testutils.CreateTask(t, db, user, "Done", true)

	statsService := NewStatsService(NewUserService(testutils.StaticHasher{}, nil), NewTaskService(nil))

	stats, err := statsService.GetStats(db, "testuser")
	require.NoError(t, err)
	assert.Equal(t, Stats{
		TotalUsers:     2,
		TotalTasks:     2,
		CompletedTasks: 1,
		CurrentUser:    "testuser",
	}, stats)
}

func TestGetStats_Empty(t *testing.T) {
	db := testutils.SetupTestDB(t)
	statsService := NewStatsService(NewUserService(testutils.StaticHasher{}, nil), NewTaskService(nil))

	stats, err := statsService.GetStats(db, "")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.TotalTasks)
	assert.Zero(t, stats.CompletedTasks)
}

func TestGetStats_DatabaseError(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnError(errors.New("connection reset"))

	statsService := NewStatsService(NewUserService(testutils.StaticHasher{}, nil), NewTaskService(nil))
	_, err := statsService.GetStats(db, "testuser")
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
