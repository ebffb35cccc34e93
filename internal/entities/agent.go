package entities

import "time"

// AgentRecord is the persisted configuration of one business's remote voice agent.
// At most one active record exists per business; remote_agent_id is immutable once set.
type AgentRecord struct {
	ID                   int       `json:"id"`
	BusinessID           string    `json:"business_id"`
	RemoteAgentID        string    `json:"remote_agent_id"`
	VoiceID              string    `json:"voice_id"`
	VoiceName            string    `json:"voice_name"`
	ConfigHash           string    `json:"-"` // digest of the last payload actually sent to the vendor
	FirstMessage         string    `json:"first_message"`
	GoodbyeMessage       string    `json:"goodbye_message"`
	SystemPromptOverride string    `json:"system_prompt_override"`
	Temperature          float64   `json:"temperature"`
	AskForName           bool      `json:"ask_for_name"`
	AskForPhone          bool      `json:"ask_for_phone"`
	AskForEmail          bool      `json:"ask_for_email"`
	AskForCompany        bool      `json:"ask_for_company"`
	AskForAddress        bool      `json:"ask_for_address"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AgentSettings carries a partial settings update. Nil fields mean "keep the
// previous value"; the sync engine applies explicit input → persisted value →
// built-in default independently per field.
type AgentSettings struct {
	SystemPromptOverride *string  `json:"system_prompt_override,omitempty"`
	FirstMessage         *string  `json:"first_message,omitempty"`
	GoodbyeMessage       *string  `json:"goodbye_message,omitempty"`
	VoiceSelector        *string  `json:"voice,omitempty"`
	Temperature          *float64 `json:"temperature,omitempty"`
	AskForName           *bool    `json:"ask_for_name,omitempty"`
	AskForPhone          *bool    `json:"ask_for_phone,omitempty"`
	AskForEmail          *bool    `json:"ask_for_email,omitempty"`
	AskForCompany        *bool    `json:"ask_for_company,omitempty"`
	AskForAddress        *bool    `json:"ask_for_address,omitempty"`

	// KnowledgeEntries, when non-nil, replaces the stored knowledge base for
	// prompt composition. When nil the active entries are loaded fresh.
	KnowledgeEntries []KnowledgeEntry `json:"knowledge_entries,omitempty"`
}

// KnowledgeEntry is a business-supplied fact injected into the composed prompt.
type KnowledgeEntry struct {
	ID         int       `json:"id"`
	BusinessID string    `json:"business_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
