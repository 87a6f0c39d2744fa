package output

import "bakematrix/internal/checks"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - config.started
// - check.result
// - config.finished
// - run.finished
//
// JSON mode remains an aggregate of checks.Result values.
type Event struct {
	Type   string `json:"type"`
	RunID  string `json:"run_id,omitempty"`
	Config string `json:"config,omitempty"`
	*checks.Result
	Level    string `json:"level,omitempty"`
	Configs  int    `json:"configs,omitempty"`
	Checks   int    `json:"checks,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}

const (
	EventRunStarted     = "run.started"
	EventConfigStarted  = "config.started"
	EventCheckResult    = "check.result"
	EventConfigFinished = "config.finished"
	EventRunFinished    = "run.finished"
)

func eventFromResult(r checks.Result) Event {
	return Event{Type: EventCheckResult, Config: r.Config, Result: &r}
}
