package queue

import "fmt"

type TaskType string

const (
	TaskTypeFollowUp TaskType = "follow_up"
)

// FollowUpTask asks the worker to nudge the assignee of one stale request.
// ExpectedCount is the follow-up count observed when the job was scheduled;
// the worker drops the job if the request moved on since.
type FollowUpTask struct {
	RequestID     int64
	ExpectedCount int
	TraceID       *string
	Attempt       int
}

// NotificationStreamName is the per-user stream live notifications are published to.
func NotificationStreamName(prefix string, userID int64) string {
	return fmt.Sprintf("%s:user-%d", prefix, userID)
}
