package model

import "time"

// Envelope is the response body of every interaction endpoint.
// Failures carry Kind, and SkillsApplied when a skill replacement persisted
// before the failure.
type Envelope[T any] struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Data          *T     `json:"data"`
	Kind          Kind   `json:"kind,omitempty"`
	SkillsApplied bool   `json:"skills_applied,omitempty"`
}

// ActivityResult echoes the facts of a forwarded event. It reflects the
// request, not a re-read of the agent.
type ActivityResult struct {
	AgentID   int64     `json:"agent_id"`
	Action    EventType `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Skills    []string  `json:"skills"`
}

// SkillsResult confirms an admin skill replacement.
type SkillsResult struct {
	AgentID       int64    `json:"agent_id"`
	UpdatedSkills []string `json:"updated_skills"`
}
