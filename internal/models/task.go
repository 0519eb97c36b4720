package models

import "time"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Task is one projection job: bring the search index copy of a config in line
// with the config store.
type Task struct {
	RequestID  string
	ConfigID   string
	ConfigType ConfigType
	Action     string
	Timestamp  time.Time
}
