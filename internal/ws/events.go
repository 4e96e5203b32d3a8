package ws

import (
	"time"
)

// EventType names a live feed message
type EventType string

const (
	EventCheckIn  EventType = "access.in"
	EventCheckOut EventType = "access.out"
)

// Event is the JSON frame pushed to dashboards
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
