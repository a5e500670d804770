package brain

// Intent is the classified purpose of an inbound chat message.
type Intent string

const (
	IntentRequest Intent = "request"
	IntentStatus  Intent = "status"
	IntentTasks   Intent = "tasks"
	IntentRespond Intent = "respond"
	IntentGeneral Intent = "general"
)

func (i Intent) valid() bool {
	switch i {
	case IntentRequest, IntentStatus, IntentTasks, IntentRespond, IntentGeneral:
		return true
	}
	return false
}

// IntentResult is the classifier's verdict. TaskNumber is only meaningful for
// IntentRespond and is nil when the model did not name a task.
type IntentResult struct {
	Intent     Intent
	TaskNumber *int
	Details    string
	// Fallback is set when the verdict is the GENERAL default rather than the
	// model's own answer.
	Fallback bool
}

func generalFallback(details string) IntentResult {
	return IntentResult{Intent: IntentGeneral, Details: details, Fallback: true}
}

// WorkloadContext is the summary of the user's queue given to the classifier.
type WorkloadContext struct {
	PendingTaskCount   int
	ActiveRequestCount int
}
