// Package clients holds HTTP clients for the external collaborators the
// engine consumes: the chat service and the billing plan gate.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChatClient implements hiring.ChatService against the chat backend. The
// chat backend does not deduplicate; the orchestrator does.
type ChatClient struct {
	baseURL string
	http    *http.Client
}

// NewChatClient returns a client for the chat backend at baseURL.
func NewChatClient(baseURL string) *ChatClient {
	return &ChatClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateChat opens a channel between company and seeker for one application.
func (c *ChatClient) CreateChat(ctx context.Context, companyID, seekerID, applicationID string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"companyId":     companyID,
		"seekerId":      seekerID,
		"applicationId": applicationID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chats", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("chat service returned %d", resp.StatusCode)
	}
	var out struct {
		ChatID string `json:"chatId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if out.ChatID == "" {
		return "", fmt.Errorf("chat service returned empty chat id")
	}
	return out.ChatID, nil
}
