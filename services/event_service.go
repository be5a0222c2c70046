package services

import (
	"encoding/json"
	"time"

	"taskdesk/taskdesk/broker"
	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/models"

	"gorm.io/gorm"
)

type EventServiceInterface interface {
	// Record writes an outbox row inside the caller's transaction.
	Record(tx *gorm.DB, eventType broker.EventType, entity, operation string, actorID uint, data interface{}) (*models.Event, error)
	// Dispatch publishes a committed event and marks it dispatched.
	Dispatch(db *database.Database, event *models.Event)
	GetPendingEvents(db *database.Database) ([]models.Event, error)
}

type EventService struct {
	producer broker.Producer
}

// NewEventService builds an event service. A nil producer keeps events in
// the outbox as pending.
func NewEventService(producer broker.Producer) *EventService {
	return &EventService{producer: producer}
}

func (s *EventService) Record(tx *gorm.DB, eventType broker.EventType, entity, operation string, actorID uint, data interface{}) (*models.Event, error) {
	event, err := models.NewEvent(string(eventType), entity, operation, actorID, data)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Dispatch(db *database.Database, event *models.Event) {
	if s.producer == nil || event == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode event", "event_id", event.ID, "error", err)
		return
	}

	if err := s.producer.Publish(broker.SubjectFor(event.Entity), payload); err != nil {
		logger.Warn("Failed to publish event, leaving it pending", "event_id", event.ID, "event", event.Event, "error", err)
		return
	}

	now := time.Now().UTC()
	err = db.DB.Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"dispatched":    true,
			"dispatched_at": now,
			"status":        models.EventStatusDispatched,
		}).Error
	if err != nil {
		logger.Error("Failed to mark event dispatched", "event_id", event.ID, "error", err)
		return
	}

	event.Dispatched = true
	event.DispatchedAt = &now
	event.Status = models.EventStatusDispatched
}

func (s *EventService) GetPendingEvents(db *database.Database) ([]models.Event, error) {
	var events []models.Event
	if err := db.DB.Where("dispatched = ?", false).Order("timestamp ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
