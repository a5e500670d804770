package model

// Status is shared by Request and Task.
//
//	pending -> in_progress -> waiting_response -> completed
//
// cancelled is reachable from any non-terminal state. Only pending, completed
// and cancelled are produced today.
type Status string

const (
	StatusPending         Status = "pending"
	StatusInProgress      Status = "in_progress"
	StatusWaitingResponse Status = "waiting_response"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusWaitingResponse, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Priority orders display only; nothing schedules by it.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ParsePriority maps free text to a Priority, defaulting to normal.
func ParsePriority(s string) Priority {
	if p := Priority(s); p.IsValid() {
		return p
	}
	return PriorityNormal
}
