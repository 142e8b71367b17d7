package metisbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/llm"
	"github.com/ufilesorg/promptly/internal/logger"
)

// Provider is the legacy vendor-bot chat path: open a session, send
// one flattened message, close the session. The bot API reports no
// token usage, so calls on this path return a zero usage report and
// price as zero coins (a known gap, not a measurement).
type Provider struct {
	client *http.Client
}

// New creates a new vendor bot provider
func New() *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "metisbot"
}

// Call flattens the request into one message, runs it through a fresh
// bot session and tears the session down afterwards
func (p *Provider) Call(ctx context.Context, profile *engine.Profile, req *llm.Request) (*llm.Response, error) {
	text := llm.FlattenText(req.System, req.User)

	sessionID, err := p.createSession(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot session: %w", err)
	}
	defer p.deleteSession(profile, sessionID)

	content, err := p.sendMessage(ctx, profile, sessionID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to send bot message: %w", err)
	}

	return &llm.Response{Text: content}, nil
}

func (p *Provider) createSession(ctx context.Context, profile *engine.Profile) (string, error) {
	body := map[string]interface{}{
		"botId": os.Getenv("METIS_BOT_ID"),
		"user": map[string]string{
			"id":   uuid.New().String(),
			"name": "promptly",
		},
		"initialMessages": nil,
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := p.post(ctx, profile, "/api/v1/chat/session", body, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("bot returned empty session id")
	}
	return result.ID, nil
}

func (p *Provider) sendMessage(ctx context.Context, profile *engine.Profile, sessionID, text string) (string, error) {
	body := map[string]interface{}{
		"message": map[string]string{
			"content": text,
			"type":    "USER",
		},
	}

	var result struct {
		Content string `json:"content"`
	}
	if err := p.post(ctx, profile, "/api/v1/chat/session/"+sessionID+"/message", body, &result); err != nil {
		return "", err
	}
	return result.Content, nil
}

// deleteSession is best effort; a leaked session expires server-side
func (p *Provider) deleteSession(profile *engine.Profile, sessionID string) {
	req, err := http.NewRequest("DELETE", profile.BaseURL+"/api/v1/chat/session/"+sessionID, nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+profile.APIKey())

	resp, err := p.client.Do(req)
	if err != nil {
		logger.Warning("failed to delete bot session %s: %v", sessionID, err)
		return
	}
	resp.Body.Close()
}

func (p *Provider) post(ctx context.Context, profile *engine.Profile, path string, body, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", profile.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+profile.APIKey())

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("API error: %s", string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
