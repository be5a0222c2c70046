package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	testCases := []struct {
		name      string
		event     string
		entity    string
		operation string
		actorID   uint
		data      interface{}
		wantErr   bool
	}{
		{
			name:      "Valid event",
			event:     "task.created",
			entity:    "task",
			operation: "create",
			actorID:   7,
			data:      map[string]interface{}{"task_id": 1},
			wantErr:   false,
		},
		{
			name:    "Invalid JSON data",
			event:   "task.created",
			entity:  "task",
			data:    make(chan int), // Unmarshalable type
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := NewEvent(tc.event, tc.entity, tc.operation, tc.actorID, tc.data)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, event)
			assert.NotEqual(t, uuid.Nil, event.ID)
			assert.Equal(t, tc.event, event.Event)
			assert.Equal(t, tc.entity, event.Entity)
			assert.Equal(t, tc.operation, event.Operation)
			assert.Equal(t, tc.actorID, event.ActorID)
			assert.Equal(t, EventStatusPending, event.Status)
			assert.False(t, event.Dispatched)
			assert.Nil(t, event.DispatchedAt)

			var payload map[string]interface{}
			assert.NoError(t, json.Unmarshal(event.Data, &payload))
			assert.Equal(t, float64(1), payload["task_id"])
		})
	}
}

func TestEventBeforeCreate_AssignsID(t *testing.T) {
	event := &Event{}
	assert.NoError(t, event.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, event.ID)

	existing := uuid.New()
	event = &Event{ID: existing}
	assert.NoError(t, event.BeforeCreate(nil))
	assert.Equal(t, existing, event.ID)
}
