package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
	"github.com/IbrahimDoba/CallPlatter-sub001/internal/interfaces"
)

var (
	// ErrMissingRequiredField means the caller supplied incomplete creation
	// data; no remote call was attempted.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrAgentNotFound means the business has no active agent record. This is
	// an expected state during early onboarding, not a failure.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrRemoteCallFailed wraps a non-2xx or network failure from the vendor
	// agent API. Local state is left unchanged when it occurs.
	ErrRemoteCallFailed = errors.New("remote agent call failed")
)

const defaultTemperature = 0.5

// AgentStore is the persistence surface the sync engine needs.
type AgentStore interface {
	GetByBusinessID(ctx context.Context, businessID string) (*entities.AgentRecord, error)
	CreateIfAbsent(ctx context.Context, rec *entities.AgentRecord) (created bool, existing *entities.AgentRecord, err error)
	UpdateSynced(ctx context.Context, rec *entities.AgentRecord) error
	Delete(ctx context.Context, businessID string) error
}

// KnowledgeStore lists the active knowledge entries for prompt composition.
type KnowledgeStore interface {
	ListActive(ctx context.Context, businessID string) ([]entities.KnowledgeEntry, error)
}

// BusinessStore resolves the business name and description used in prompts.
type BusinessStore interface {
	GetByID(ctx context.Context, id string) (*entities.Business, error)
}

// Locker serializes read-merge-write sequences per business.
type Locker interface {
	Lock(businessID string)
	Unlock(businessID string)
}

// AgentService keeps each business's remote voice agent in sync with its
// local settings. A content hash over the materialized configuration decides
// whether a remote call is needed at all.
type AgentService struct {
	agentAPI   interfaces.AgentAPI
	agents     AgentStore
	knowledge  KnowledgeStore
	businesses BusinessStore
	locks      Locker
}

func NewAgentService(agentAPI interfaces.AgentAPI, agents AgentStore, knowledge KnowledgeStore, businesses BusinessStore, locks Locker) *AgentService {
	return &AgentService{
		agentAPI:   agentAPI,
		agents:     agents,
		knowledge:  knowledge,
		businesses: businesses,
		locks:      locks,
	}
}

// CreateAgent provisions the remote agent for a business once. Calling it
// again returns the existing agent's ID without touching the vendor API.
func (s *AgentService) CreateAgent(ctx context.Context, businessID, businessName, businessDescription, voiceSelector, firstMessage string, settings entities.AgentSettings) (string, error) {
	if businessID == "" || businessName == "" || businessDescription == "" || voiceSelector == "" || firstMessage == "" {
		return "", ErrMissingRequiredField
	}

	s.locks.Lock(businessID)
	defer s.locks.Unlock(businessID)

	// Fast path; the unique constraint behind CreateIfAbsent is the real
	// duplicate guard.
	existing, err := s.agents.GetByBusinessID(ctx, businessID)
	if err != nil {
		return "", fmt.Errorf("lookup agent record: %w", err)
	}
	if existing != nil {
		return existing.RemoteAgentID, nil
	}

	voiceID, voiceName := ResolveVoice(voiceSelector)
	temperature := defaultTemperature
	if settings.Temperature != nil {
		temperature = clampTemperature(*settings.Temperature)
	}

	// No knowledge entries exist yet at creation time.
	prompt := ComposePrompt(businessDescription, nil, policyFromSettings(settings))

	payload := interfaces.AgentPayload{
		Name:         businessName,
		Prompt:       prompt,
		FirstMessage: firstMessage,
		VoiceID:      voiceID,
		Temperature:  temperature,
	}

	remoteID, err := s.agentAPI.CreateAgent(ctx, payload)
	if err != nil {
		slog.Error("remote agent creation failed", "business_id", businessID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrRemoteCallFailed, err)
	}

	rec := &entities.AgentRecord{
		BusinessID:           businessID,
		RemoteAgentID:        remoteID,
		VoiceID:              voiceID,
		VoiceName:            voiceName,
		ConfigHash:           configHash(prompt, firstMessage, temperature, voiceID),
		FirstMessage:         firstMessage,
		GoodbyeMessage:       derefString(settings.GoodbyeMessage, ""),
		SystemPromptOverride: derefString(settings.SystemPromptOverride, ""),
		Temperature:          temperature,
		AskForName:           derefBool(settings.AskForName, false),
		AskForPhone:          derefBool(settings.AskForPhone, false),
		AskForEmail:          derefBool(settings.AskForEmail, false),
		AskForCompany:        derefBool(settings.AskForCompany, false),
		AskForAddress:        derefBool(settings.AskForAddress, false),
		IsActive:             true,
	}

	created, existing, err := s.agents.CreateIfAbsent(ctx, rec)
	if err != nil {
		// The remote agent exists but has no local record. Delete it so a
		// retried create does not leave an orphan behind.
		s.compensateRemoteCreate(ctx, businessID, remoteID)
		return "", fmt.Errorf("persist agent record: %w", err)
	}
	if !created {
		// Lost the race to a concurrent create; keep theirs, drop ours.
		s.compensateRemoteCreate(ctx, businessID, remoteID)
		return existing.RemoteAgentID, nil
	}

	slog.Info("remote agent created", "business_id", businessID, "agent_id", remoteID, "voice", voiceName)
	return remoteID, nil
}

// UpdateAgent applies a partial settings change. Fields absent from settings
// keep their persisted values. When the materialized configuration hashes to
// the same value as the last sync, no remote call is made.
func (s *AgentService) UpdateAgent(ctx context.Context, businessID string, settings entities.AgentSettings) error {
	s.locks.Lock(businessID)
	defer s.locks.Unlock(businessID)

	rec, err := s.agents.GetByBusinessID(ctx, businessID)
	if err != nil {
		return fmt.Errorf("lookup agent record: %w", err)
	}
	if rec == nil {
		return ErrAgentNotFound
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return fmt.Errorf("lookup business: %w", err)
	}
	if business == nil {
		return ErrAgentNotFound
	}

	merged := *rec
	merged.FirstMessage = derefString(settings.FirstMessage, rec.FirstMessage)
	merged.GoodbyeMessage = derefString(settings.GoodbyeMessage, rec.GoodbyeMessage)
	merged.SystemPromptOverride = derefString(settings.SystemPromptOverride, rec.SystemPromptOverride)
	merged.AskForName = derefBool(settings.AskForName, rec.AskForName)
	merged.AskForPhone = derefBool(settings.AskForPhone, rec.AskForPhone)
	merged.AskForEmail = derefBool(settings.AskForEmail, rec.AskForEmail)
	merged.AskForCompany = derefBool(settings.AskForCompany, rec.AskForCompany)
	merged.AskForAddress = derefBool(settings.AskForAddress, rec.AskForAddress)
	if settings.Temperature != nil {
		merged.Temperature = clampTemperature(*settings.Temperature)
	}

	// Re-resolve only when the caller supplied a new selector; resolving an
	// unchanged voice again could drift to the default over time.
	if settings.VoiceSelector != nil {
		merged.VoiceID, merged.VoiceName = ResolveVoice(*settings.VoiceSelector)
	}

	// Knowledge is always fresh: the supplied replacement list, or the active
	// entries as stored right now.
	entries := settings.KnowledgeEntries
	if entries == nil {
		entries, err = s.knowledge.ListActive(ctx, businessID)
		if err != nil {
			return fmt.Errorf("load knowledge entries: %w", err)
		}
	}

	prompt := ComposePrompt(business.Description, entries, policyFromRecord(&merged))

	newHash := configHash(prompt, merged.FirstMessage, merged.Temperature, merged.VoiceID)
	if newHash == rec.ConfigHash {
		slog.Debug("agent configuration unchanged, skipping remote sync", "business_id", businessID)
		return nil
	}

	payload := interfaces.AgentPayload{
		Name:         business.Name,
		Prompt:       prompt,
		FirstMessage: merged.FirstMessage,
		VoiceID:      merged.VoiceID,
		Temperature:  merged.Temperature,
	}
	if err := s.agentAPI.UpdateAgent(ctx, rec.RemoteAgentID, payload); err != nil {
		// Do not persist anything: the local record must keep describing what
		// the remote agent actually runs.
		slog.Error("remote agent update failed", "business_id", businessID, "agent_id", rec.RemoteAgentID, "error", err)
		return fmt.Errorf("%w: %v", ErrRemoteCallFailed, err)
	}

	merged.ConfigHash = newHash
	if err := s.agents.UpdateSynced(ctx, &merged); err != nil {
		return fmt.Errorf("persist agent record: %w", err)
	}

	slog.Info("remote agent updated", "business_id", businessID, "agent_id", rec.RemoteAgentID)
	return nil
}

// GetAgentID is the call-time lookup: local record only, never a vendor call.
func (s *AgentService) GetAgentID(ctx context.Context, businessID string) (string, error) {
	rec, err := s.agents.GetByBusinessID(ctx, businessID)
	if err != nil {
		return "", fmt.Errorf("lookup agent record: %w", err)
	}
	if rec == nil {
		return "", ErrAgentNotFound
	}
	return rec.RemoteAgentID, nil
}

func (s *AgentService) GetAgentDetails(ctx context.Context, businessID string) (*entities.AgentRecord, error) {
	rec, err := s.agents.GetByBusinessID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("lookup agent record: %w", err)
	}
	if rec == nil {
		return nil, ErrAgentNotFound
	}
	return rec, nil
}

// DeleteAgent tears down a business's agent. Remote deletion is best-effort;
// the local record is removed regardless so account teardown never blocks on
// the vendor.
func (s *AgentService) DeleteAgent(ctx context.Context, businessID string) error {
	s.locks.Lock(businessID)
	defer s.locks.Unlock(businessID)

	rec, err := s.agents.GetByBusinessID(ctx, businessID)
	if err != nil {
		return fmt.Errorf("lookup agent record: %w", err)
	}
	if rec == nil {
		return ErrAgentNotFound
	}

	if err := s.agentAPI.DeleteAgent(ctx, rec.RemoteAgentID); err != nil {
		slog.Warn("remote agent deletion failed, local record removed anyway",
			"business_id", businessID, "agent_id", rec.RemoteAgentID, "error", err)
	}

	if err := s.agents.Delete(ctx, businessID); err != nil {
		return fmt.Errorf("delete agent record: %w", err)
	}
	return nil
}

// compensateRemoteCreate best-effort deletes a remote agent whose local
// record could not be kept.
func (s *AgentService) compensateRemoteCreate(ctx context.Context, businessID, remoteID string) {
	if err := s.agentAPI.DeleteAgent(ctx, remoteID); err != nil {
		slog.Warn("failed to clean up orphaned remote agent",
			"business_id", businessID, "agent_id", remoteID, "error", err)
	}
}

// configHash digests the materialized configuration that was sent to the
// vendor. It is the sync checkpoint, compared bit-for-bit and never parsed.
func configHash(prompt, firstMessage string, temperature float64, voiceID string) string {
	parts := []string{
		prompt,
		firstMessage,
		strconv.FormatFloat(temperature, 'f', -1, 64),
		voiceID,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func policyFromSettings(settings entities.AgentSettings) PromptPolicy {
	return PromptPolicy{
		CustomInstructions: derefString(settings.SystemPromptOverride, ""),
		GoodbyeMessage:     derefString(settings.GoodbyeMessage, ""),
		AskForName:         derefBool(settings.AskForName, false),
		AskForPhone:        derefBool(settings.AskForPhone, false),
		AskForEmail:        derefBool(settings.AskForEmail, false),
		AskForCompany:      derefBool(settings.AskForCompany, false),
		AskForAddress:      derefBool(settings.AskForAddress, false),
	}
}

func policyFromRecord(rec *entities.AgentRecord) PromptPolicy {
	return PromptPolicy{
		CustomInstructions: rec.SystemPromptOverride,
		GoodbyeMessage:     rec.GoodbyeMessage,
		AskForName:         rec.AskForName,
		AskForPhone:        rec.AskForPhone,
		AskForEmail:        rec.AskForEmail,
		AskForCompany:      rec.AskForCompany,
		AskForAddress:      rec.AskForAddress,
	}
}

func clampTemperature(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func derefString(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}

func derefBool(p *bool, fallback bool) bool {
	if p != nil {
		return *p
	}
	return fallback
}
