package monitor

import (
	"sync"
	"time"

	"digital.vasic.crossbrowser/pkg/check"
)

// EventCollector captures check events and timing data.
type EventCollector struct {
	mu       sync.RWMutex
	events   []Event
	handlers []func(Event)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Total     int           `json:"total"`
	Started   int           `json:"started"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Errors    int           `json:"errors"`
	Skipped   int           `json:"skipped"`
	TimedOut  int           `json:"timed_out"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]Event, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers. Handlers run
// on the caller's goroutine, outside the collector lock.
func (c *EventCollector) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.stats.Total++
	switch event.Type {
	case EventStarted:
		c.stats.Started++
	case EventPassed:
		c.stats.Passed++
	case EventFailed:
		c.stats.Failed++
	case EventError:
		c.stats.Errors++
	case EventSkipped:
		c.stats.Skipped++
	case EventTimedOut:
		c.stats.TimedOut++
	}
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// EmitStarted emits a started event for one invocation.
func (c *EventCollector) EmitStarted(
	id check.ID,
	name, descriptorID, descriptorLabel string,
) {
	c.Emit(Event{
		Type:            EventStarted,
		CheckID:         id,
		Name:            name,
		DescriptorID:    descriptorID,
		DescriptorLabel: descriptorLabel,
		Status:          check.StatusRunning,
	})
}

// EmitResult emits the final event for a finished invocation.
func (c *EventCollector) EmitResult(r *check.Result) {
	c.Emit(Event{
		Type:            EventTypeForStatus(r.Status),
		CheckID:         r.CheckID,
		Name:            r.CheckName,
		DescriptorID:    r.DescriptorID,
		DescriptorLabel: r.DescriptorLabel,
		SessionID:       r.SessionID,
		Status:          r.Status,
		Message:         r.Error,
		Duration:        r.Duration,
	})
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Event, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
