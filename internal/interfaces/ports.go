package interfaces

import "context"

// AgentPayload is the materialized configuration sent to the remote agent API.
type AgentPayload struct {
	Name         string
	Prompt       string
	FirstMessage string
	VoiceID      string
	Temperature  float64
}

// AgentAPI is the remote vendor service hosting conversational voice agents.
type AgentAPI interface {
	CreateAgent(ctx context.Context, payload AgentPayload) (string, error)
	UpdateAgent(ctx context.Context, agentID string, payload AgentPayload) error
	// DeleteAgent treats a remote 404 as already-deleted and returns nil for it.
	DeleteAgent(ctx context.Context, agentID string) error
}

// EmailSender delivers transactional email (verification codes).
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
