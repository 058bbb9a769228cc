package monitor

import (
	"sync"
	"time"

	"digital.vasic.crossbrowser/pkg/check"
)

// DashboardData is a real-time snapshot of a run.
type DashboardData struct {
	mu          sync.RWMutex
	RunID       string                      `json:"run_id"`
	StartTime   time.Time                   `json:"start_time"`
	Status      string                      `json:"status"` // running, completed, failed
	Invocations map[string]InvocationState  `json:"invocations"`
	Descriptors map[string]DashboardSummary `json:"descriptors"`
	Summary     DashboardSummary            `json:"summary"`
}

// InvocationState is the dashboard view of one check on one
// descriptor.
type InvocationState struct {
	CheckID      check.ID      `json:"check_id"`
	Name         string        `json:"name"`
	DescriptorID string        `json:"descriptor_id"`
	Label        string        `json:"label"`
	Status       string        `json:"status"`
	StartTime    *time.Time    `json:"start_time,omitempty"`
	EndTime      *time.Time    `json:"end_time,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// DashboardSummary holds aggregate stats.
type DashboardSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errors   int     `json:"errors"`
	Skipped  int     `json:"skipped"`
	Running  int     `json:"running"`
	Pending  int     `json:"pending"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed,omitempty"`
}

// NewDashboardData creates a new dashboard data instance.
func NewDashboardData(runID string) *DashboardData {
	return &DashboardData{
		RunID:       runID,
		StartTime:   time.Now(),
		Status:      "running",
		Invocations: make(map[string]InvocationState),
		Descriptors: make(map[string]DashboardSummary),
	}
}

// UpdateFromEvent updates dashboard state from a check event.
// Run-level events are ignored.
func (d *DashboardData) UpdateFromEvent(event Event) {
	if event.CheckID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	key := event.Key()
	state, exists := d.Invocations[key]
	if !exists {
		state = InvocationState{
			CheckID:      event.CheckID,
			Name:         event.Name,
			DescriptorID: event.DescriptorID,
			Label:        event.DescriptorLabel,
		}
	}

	switch event.Type {
	case EventStarted:
		state.Status = check.StatusRunning
		state.StartTime = &now
	case EventPassed, EventFailed, EventError, EventTimedOut:
		state.Status = event.Status
		if state.Status == "" {
			state.Status = string(event.Type)
		}
		state.EndTime = &now
		state.Duration = event.Duration
		state.Message = event.Message
	case EventSkipped:
		state.Status = check.StatusSkipped
	}

	d.Invocations[key] = state
	d.recalcSummary()
}

func (d *DashboardData) recalcSummary() {
	total := DashboardSummary{}
	perDescriptor := make(map[string]DashboardSummary)
	for _, inv := range d.Invocations {
		total = tally(total, inv.Status)
		perDescriptor[inv.DescriptorID] = tally(perDescriptor[inv.DescriptorID], inv.Status)
	}
	for id, s := range perDescriptor {
		perDescriptor[id] = withPassRate(s)
	}
	total = withPassRate(total)
	total.Elapsed = time.Since(d.StartTime).Round(time.Millisecond).String()
	d.Summary = total
	d.Descriptors = perDescriptor
}

func tally(s DashboardSummary, status string) DashboardSummary {
	s.Total++
	switch status {
	case check.StatusPassed:
		s.Passed++
	case check.StatusFailed:
		s.Failed++
	case check.StatusError, check.StatusTimedOut:
		s.Errors++
	case check.StatusSkipped:
		s.Skipped++
	case check.StatusRunning:
		s.Running++
	default:
		s.Pending++
	}
	return s
}

func withPassRate(s DashboardSummary) DashboardSummary {
	if completed := s.Passed + s.Failed + s.Errors; completed > 0 {
		s.PassRate = float64(s.Passed) / float64(completed) * 100
	}
	return s
}

// Snapshot returns a copy of the current dashboard state.
func (d *DashboardData) Snapshot() *DashboardData {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := &DashboardData{
		RunID:       d.RunID,
		StartTime:   d.StartTime,
		Status:      d.Status,
		Summary:     d.Summary,
		Invocations: make(map[string]InvocationState, len(d.Invocations)),
		Descriptors: make(map[string]DashboardSummary, len(d.Descriptors)),
	}
	for k, v := range d.Invocations {
		snap.Invocations[k] = v
	}
	for k, v := range d.Descriptors {
		snap.Descriptors[k] = v
	}
	return snap
}

// SetStatus sets the overall run status.
func (d *DashboardData) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Status = status
}

// BuildDashboardData replays every collected event into a new
// DashboardData.
func BuildDashboardData(
	runID string,
	collector *EventCollector,
) *DashboardData {
	data := NewDashboardData(runID)
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
