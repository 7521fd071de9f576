// Package events carries agent and skill lifecycle notifications over NATS.
// Publishing is best-effort; nothing in request handling waits on a consumer.
package events

import (
	"context"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// Event topic constants
const (
	TopicAgentCreated        = "switchboard.agent.created"
	TopicAgentStateChanged   = "switchboard.agent.state_changed"
	TopicAgentSkillsReplaced = "switchboard.agent.skills_replaced"

	TopicSkillCreated = "switchboard.skill.created"
	TopicSkillUpdated = "switchboard.skill.updated"
	TopicSkillDeleted = "switchboard.skill.deleted"

	// TopicAll matches every switchboard subject.
	TopicAll = "switchboard.>"
	// TopicAgents matches agent subjects only.
	TopicAgents = "switchboard.agent.>"
)

type AgentCreated struct {
	Agent *model.Agent `json:"agent"`
}

type AgentStateChanged struct {
	AgentID   int64            `json:"agent_id"`
	From      model.AgentState `json:"from"`
	To        model.AgentState `json:"to"`
	EventType model.EventType  `json:"event_type"`
	At        time.Time        `json:"at"`
}

type AgentSkillsReplaced struct {
	AgentID int64    `json:"agent_id"`
	Skills  []string `json:"skills"`
}

type SkillChanged struct {
	Skill *model.Skill `json:"skill"`
}

type SkillDeleted struct {
	SkillID int64 `json:"skill_id"`
}

// Message is a received event: its subject, raw JSON payload and the id of
// the request that produced it ("" when published outside a request).
type Message struct {
	Topic     string
	Data      []byte
	RequestID string
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages on the returned channel. Call the returned
	// cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
