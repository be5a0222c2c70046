package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	UserCreated EventType = "user.created"
	UserUpdated EventType = "user.updated"
	UserDeleted EventType = "user.deleted"

	TaskCreated EventType = "task.created"
	TaskUpdated EventType = "task.updated"
	TaskDeleted EventType = "task.deleted"
)

const (
	UserEventsSubject = "taskdesk.user_events"
	TaskEventsSubject = "taskdesk.task_events"
)

// SubjectFor maps an entity name to the subject its events are published on.
func SubjectFor(entity string) string {
	switch entity {
	case "user":
		return UserEventsSubject
	case "task":
		return TaskEventsSubject
	default:
		return "taskdesk." + entity + "_events"
	}
}
