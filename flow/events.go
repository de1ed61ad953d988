// ABOUTME: Lifecycle events emitted by a flow during execution.
// ABOUTME: Defines EventType constants and the Event struct delivered to the flow's event callback.
package flow

import "time"

// EventType identifies the kind of flow lifecycle event.
type EventType string

const (
	EventFlowStarted   EventType = "flow.started"
	EventFlowCompleted EventType = "flow.completed"
	EventFlowFailed    EventType = "flow.failed"
	EventStepStarted   EventType = "step.started"
	EventStepCompleted EventType = "step.completed"
	EventStepFailed    EventType = "step.failed"
	EventStepRetrying  EventType = "step.retrying"
	EventStepRecovered EventType = "step.recovered"
)

// Event is a lifecycle event emitted during flow execution. Step is the
// emitting step's name (for batch elements, the name carries the element
// index, e.g. "write-chapters[2]"). Attempt is the 1-based attempt number
// that just failed when Type is EventStepRetrying.
type Event struct {
	Type      EventType
	RunID     string
	Step      string
	Action    Action
	Attempt   int
	Err       string
	Timestamp time.Time
}
