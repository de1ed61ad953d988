// ABOUTME: Action labels returned by a step's post phase to select the next transition.
// ABOUTME: Defines the Action string type and the reserved Default label.
package flow

// Action is the label a step returns from its post phase. The flow follows
// the outgoing edge registered for that label, falling back to Default when
// no exact match exists.
//
// Each node declares the closed set of actions it can emit (NodeSpec.Emits);
// Flow.Validate checks edges against that set so a flow's transition table
// can be verified before running.
type Action string

// Default is the label used for the unmarked edge. A post phase that returns
// the empty action is treated as returning Default.
const Default Action = "default"
