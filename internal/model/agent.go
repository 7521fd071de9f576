package model

import (
	"fmt"
	"strings"
	"time"
)

// AgentState is the availability state of an agent.
type AgentState string

const (
	StateAvailable    AgentState = "AVAILABLE"
	StateOnCall       AgentState = "ON_CALL"
	StateDoNotDisturb AgentState = "DO_NOT_DISTURB"
	StateOnLunch      AgentState = "ON_LUNCH"
)

// AgentStates lists every state in display order.
var AgentStates = []AgentState{StateAvailable, StateOnCall, StateDoNotDisturb, StateOnLunch}

// IsValid reports whether s is one of the four known states.
func (s AgentState) IsValid() bool {
	switch s {
	case StateAvailable, StateOnCall, StateDoNotDisturb, StateOnLunch:
		return true
	}
	return false
}

// ParseAgentState parses a state name. Matching is case-insensitive so that
// "available" and "AVAILABLE" are equivalent; the empty string yields
// StateAvailable.
func ParseAgentState(s string) (AgentState, error) {
	if strings.TrimSpace(s) == "" {
		return StateAvailable, nil
	}
	st := AgentState(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: unknown agent state %q", ErrInvalidInput, s)
	}
	return st, nil
}

// Agent is a call-center worker bound one-to-one to an identity.
type Agent struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	UserID          int64      `json:"user_id"`
	State           AgentState `json:"state"`
	LastStateChange time.Time  `json:"last_state_change"`
	Skills          []string   `json:"skills"`
}
