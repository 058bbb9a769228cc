// Package monitor collects live check events during a run and
// streams them to dashboards over a websocket.
package monitor

import (
	"time"

	"digital.vasic.crossbrowser/pkg/check"
)

// EventType represents the type of check event.
type EventType string

const (
	EventStarted  EventType = "started"
	EventPassed   EventType = "passed"
	EventFailed   EventType = "failed"
	EventError    EventType = "error"
	EventSkipped  EventType = "skipped"
	EventTimedOut EventType = "timed_out"
	EventRun      EventType = "run"
)

// Event is a lifecycle event for one check on one descriptor.
type Event struct {
	Type            EventType     `json:"type"`
	CheckID         check.ID      `json:"check_id,omitempty"`
	Name            string        `json:"name,omitempty"`
	DescriptorID    string        `json:"descriptor_id,omitempty"`
	DescriptorLabel string        `json:"descriptor_label,omitempty"`
	SessionID       string        `json:"session_id,omitempty"`
	Status          string        `json:"status,omitempty"`
	Message         string        `json:"message,omitempty"`
	Duration        time.Duration `json:"duration,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
}

// Key identifies the invocation, "<check>[<descriptor>]".
func (e Event) Key() string {
	return string(e.CheckID) + "[" + e.DescriptorID + "]"
}

// EventTypeForStatus maps a check status to the final event type.
func EventTypeForStatus(status string) EventType {
	switch status {
	case check.StatusPassed:
		return EventPassed
	case check.StatusFailed:
		return EventFailed
	case check.StatusSkipped:
		return EventSkipped
	case check.StatusTimedOut:
		return EventTimedOut
	}
	return EventError
}
