package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/interfaces"
)

const defaultElevenLabsBaseURL = "https://api.elevenlabs.io"

// Fixed conversational-agent parameters. These are vendor implementation
// details shared by every agent we provision.
const (
	agentModelID          = "eleven_turbo_v2"
	agentLLM              = "gemini-2.0-flash"
	agentLanguage         = "en"
	agentInputAudioFormat = "ulaw_8000" // matches Twilio media streams
	agentOutputAudioFmt   = "ulaw_8000"
)

// ElevenLabsConfig holds vendor credentials, built once at startup and
// injected. A missing API key is a construction-time failure, not a per-call
// check.
type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string // defaults to the public API when empty
}

type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewElevenLabsClient(cfg ElevenLabsConfig) (*ElevenLabsClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("elevenlabs: missing API key")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}
	return &ElevenLabsClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type agentRequest struct {
	Name               string             `json:"name,omitempty"`
	ConversationConfig conversationConfig `json:"conversation_config"`
}

type conversationConfig struct {
	Agent agentConfig `json:"agent"`
	TTS   ttsConfig   `json:"tts"`
	ASR   asrConfig   `json:"asr"`
}

type agentConfig struct {
	Prompt       promptConfig `json:"prompt"`
	FirstMessage string       `json:"first_message"`
	Language     string       `json:"language"`
}

type promptConfig struct {
	Prompt      string  `json:"prompt"`
	LLM         string  `json:"llm"`
	Temperature float64 `json:"temperature"`
}

type ttsConfig struct {
	VoiceID     string `json:"voice_id"`
	ModelID     string `json:"model_id"`
	AudioFormat string `json:"agent_output_audio_format"`
}

type asrConfig struct {
	AudioFormat string `json:"user_input_audio_format"`
}

type createAgentResponse struct {
	AgentID string `json:"agent_id"`
}

func buildAgentRequest(payload interfaces.AgentPayload) agentRequest {
	return agentRequest{
		Name: payload.Name,
		ConversationConfig: conversationConfig{
			Agent: agentConfig{
				Prompt: promptConfig{
					Prompt:      payload.Prompt,
					LLM:         agentLLM,
					Temperature: payload.Temperature,
				},
				FirstMessage: payload.FirstMessage,
				Language:     agentLanguage,
			},
			TTS: ttsConfig{
				VoiceID:     payload.VoiceID,
				ModelID:     agentModelID,
				AudioFormat: agentOutputAudioFmt,
			},
			ASR: asrConfig{
				AudioFormat: agentInputAudioFormat,
			},
		},
	}
}

// CreateAgent provisions a new conversational agent and returns its vendor ID.
func (c *ElevenLabsClient) CreateAgent(ctx context.Context, payload interfaces.AgentPayload) (string, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/v1/convai/agents/create", buildAgentRequest(payload))
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("elevenlabs create agent: status %d: %s", status, body)
	}

	var resp createAgentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("elevenlabs create agent: decode response: %w", err)
	}
	if resp.AgentID == "" {
		return "", fmt.Errorf("elevenlabs create agent: empty agent_id in response: %s", body)
	}
	return resp.AgentID, nil
}

// UpdateAgent applies a full materialized configuration to an existing agent.
func (c *ElevenLabsClient) UpdateAgent(ctx context.Context, agentID string, payload interfaces.AgentPayload) error {
	req := buildAgentRequest(payload)
	req.Name = "" // identity fields are not part of updates

	body, status, err := c.do(ctx, http.MethodPatch, "/v1/convai/agents/"+agentID, req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("elevenlabs update agent %s: status %d: %s", agentID, status, body)
	}
	return nil
}

// DeleteAgent removes the remote agent. A 404 means it is already gone and is
// treated as success.
func (c *ElevenLabsClient) DeleteAgent(ctx context.Context, agentID string) error {
	body, status, err := c.do(ctx, http.MethodDelete, "/v1/convai/agents/"+agentID, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("elevenlabs delete agent %s: status %d: %s", agentID, status, body)
	}
	return nil
}

func (c *ElevenLabsClient) do(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
