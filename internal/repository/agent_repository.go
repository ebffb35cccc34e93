package repository

import (
	"context"
	"fmt"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AgentRepository struct {
	db *pgxpool.Pool
}

func NewAgentRepository(db *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{db: db}
}

const agentColumns = `id, business_id, remote_agent_id, voice_id, voice_name, config_hash,
	first_message, goodbye_message, system_prompt_override, temperature,
	ask_for_name, ask_for_phone, ask_for_email, ask_for_company, ask_for_address,
	is_active, created_at, updated_at`

func scanAgent(row pgx.Row) (*entities.AgentRecord, error) {
	var rec entities.AgentRecord
	err := row.Scan(
		&rec.ID, &rec.BusinessID, &rec.RemoteAgentID, &rec.VoiceID, &rec.VoiceName, &rec.ConfigHash,
		&rec.FirstMessage, &rec.GoodbyeMessage, &rec.SystemPromptOverride, &rec.Temperature,
		&rec.AskForName, &rec.AskForPhone, &rec.AskForEmail, &rec.AskForCompany, &rec.AskForAddress,
		&rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByBusinessID returns the active agent record for a business, or nil.
func (r *AgentRepository) GetByBusinessID(ctx context.Context, businessID string) (*entities.AgentRecord, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM agent_records WHERE business_id = $1 AND is_active = TRUE", agentColumns),
		businessID)
	return scanAgent(row)
}

// CreateIfAbsent inserts the record unless one already exists for the
// business. The unique constraint on business_id makes this atomic; when the
// insert is skipped the pre-existing record is returned instead.
func (r *AgentRepository) CreateIfAbsent(ctx context.Context, rec *entities.AgentRecord) (created bool, existing *entities.AgentRecord, err error) {
	err = r.db.QueryRow(ctx, `
		INSERT INTO agent_records (business_id, remote_agent_id, voice_id, voice_name, config_hash,
			first_message, goodbye_message, system_prompt_override, temperature,
			ask_for_name, ask_for_phone, ask_for_email, ask_for_company, ask_for_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (business_id) DO NOTHING
		RETURNING id
	`, rec.BusinessID, rec.RemoteAgentID, rec.VoiceID, rec.VoiceName, rec.ConfigHash,
		rec.FirstMessage, rec.GoodbyeMessage, rec.SystemPromptOverride, rec.Temperature,
		rec.AskForName, rec.AskForPhone, rec.AskForEmail, rec.AskForCompany, rec.AskForAddress,
	).Scan(&rec.ID)

	if err == pgx.ErrNoRows {
		// Insert skipped: another record won the race.
		existing, err = r.GetByBusinessID(ctx, rec.BusinessID)
		if err != nil {
			return false, nil, err
		}
		return false, existing, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

// UpdateSynced persists the merged settings, voice identity and new config
// hash after a successful remote sync, in one write.
func (r *AgentRepository) UpdateSynced(ctx context.Context, rec *entities.AgentRecord) error {
	_, err := r.db.Exec(ctx, `
		UPDATE agent_records SET
			voice_id = $1, voice_name = $2, config_hash = $3,
			first_message = $4, goodbye_message = $5, system_prompt_override = $6, temperature = $7,
			ask_for_name = $8, ask_for_phone = $9, ask_for_email = $10,
			ask_for_company = $11, ask_for_address = $12,
			updated_at = NOW()
		WHERE business_id = $13 AND is_active = TRUE
	`, rec.VoiceID, rec.VoiceName, rec.ConfigHash,
		rec.FirstMessage, rec.GoodbyeMessage, rec.SystemPromptOverride, rec.Temperature,
		rec.AskForName, rec.AskForPhone, rec.AskForEmail,
		rec.AskForCompany, rec.AskForAddress,
		rec.BusinessID)
	return err
}

// Delete removes the agent record for a business.
func (r *AgentRepository) Delete(ctx context.Context, businessID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM agent_records WHERE business_id = $1", businessID)
	return err
}
