package model

import (
	"fmt"
	"time"
)

// EventType tags an AgentEvent.
type EventType string

const (
	EventStartDoNotDisturb EventType = "START_DO_NOT_DISTURB"
	EventEndDoNotDisturb   EventType = "END_DO_NOT_DISTURB"
	EventCallStarted       EventType = "CALL_STARTED"
	EventCallEnded         EventType = "CALL_ENDED"

	// EventSkillsUpdate carries a skill replacement only. It has no
	// transition, so the registry stores the skills and then rejects it.
	EventSkillsUpdate EventType = "SKILLS_UPDATE"
)

// Agent actions as named on the interaction surface, and the event each one
// produces.
var actionEvents = []struct {
	action string
	event  EventType
}{
	{"start_do_not_disturb", EventStartDoNotDisturb},
	{"end_do_not_disturb", EventEndDoNotDisturb},
	{"start_call", EventCallStarted},
	{"end_call", EventCallEnded},
}

// Actions lists the agent action names.
func Actions() []string {
	out := make([]string, len(actionEvents))
	for i, ae := range actionEvents {
		out[i] = ae.action
	}
	return out
}

// EventForAction returns the event produced by an agent action name.
func EventForAction(action string) (EventType, bool) {
	for _, ae := range actionEvents {
		if ae.action == action {
			return ae.event, true
		}
	}
	return "", false
}

// ActionForEvent is the inverse of EventForAction.
func ActionForEvent(ev EventType) (string, bool) {
	for _, ae := range actionEvents {
		if ae.event == ev {
			return ae.action, true
		}
	}
	return "", false
}

// FreshnessWindow is the maximum age of an event relative to processing time.
const FreshnessWindow = 60 * time.Minute

// Lunch hours, [start, end) in UTC.
const (
	lunchStartHour = 11
	lunchEndHour   = 13
)

// AgentEvent is the wire shape accepted by the registry.
type AgentEvent struct {
	AgentID   int64     `json:"agent_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Skills    []string  `json:"skills"`
}

// NextState returns the state an agent moves to when ev of type typ occurs at
// ts. The lunch window is read in UTC whatever offset ts carries, so a
// timestamp means the same thing on every route. The current state is not
// consulted. ok is false for event types with
// no defined transition.
func NextState(_ AgentState, typ EventType, ts time.Time) (next AgentState, ok bool) {
	switch typ {
	case EventStartDoNotDisturb:
		if h := ts.UTC().Hour(); h >= lunchStartHour && h < lunchEndHour {
			return StateOnLunch, true
		}
		return StateDoNotDisturb, true
	case EventEndDoNotDisturb, EventCallEnded:
		return StateAvailable, true
	case EventCallStarted:
		return StateOnCall, true
	}
	return "", false
}

// CheckFreshness returns an ErrStaleEvent error when ts is older than
// FreshnessWindow at now. Timestamps in the future pass.
func CheckFreshness(ts, now time.Time) error {
	if ts.Before(now.Add(-FreshnessWindow)) {
		return fmt.Errorf("%w: event timestamp %s is older than %s",
			ErrStaleEvent, ts.UTC().Format(time.RFC3339), FreshnessWindow)
	}
	return nil
}
