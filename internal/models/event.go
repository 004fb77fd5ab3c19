package models

// ChangeEventType identifies a row-level change pushed to subscribers.
type ChangeEventType string

const (
	EventInsert ChangeEventType = "insert"
	EventUpdate ChangeEventType = "update"
	EventDelete ChangeEventType = "delete"
)

// ChangeTable names the table a change event originates from.
type ChangeTable string

const (
	TableTasks         ChangeTable = "tasks"
	TableNotifications ChangeTable = "notifications"
)

// ChangeEvent is one row-level change delivered on an owner's push channel.
// For deletes only the ID of the removed row is populated on the payload.
type ChangeEvent struct {
	Type         ChangeEventType `json:"type"`
	Table        ChangeTable     `json:"table"`
	Task         *Task           `json:"task,omitempty"`
	Notification *Notification   `json:"notification,omitempty"`
}
