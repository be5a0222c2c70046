package testutils

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"taskdesk/taskdesk/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

// MockEventRows creates mock SQL rows for events testing
func MockEventRows(events []models.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "event", "version", "entity", "operation", "actor_id",
		"timestamp", "data", "status", "dispatched", "dispatched_at",
	})

	for _, event := range events {
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		if event.Data == nil {
			event.Data = json.RawMessage(`{}`)
		}
		if event.Status == "" {
			event.Status = models.EventStatusPending
		}

		rows.AddRow(
			event.ID,
			event.Event,
			event.Version,
			event.Entity,
			event.Operation,
			event.ActorID,
			event.Timestamp,
			[]byte(event.Data),
			event.Status,
			event.Dispatched,
			event.DispatchedAt,
		)
	}

	return rows
}

func NewResult(lastInsertID, rowsAffected int64) driver.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}
