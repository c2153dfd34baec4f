// Package source bridges the monitor to the browser scraper sidecar over
// its local REST interface. The scraper owns all marketplace DOM mechanics;
// this client only fetches detected messages and posts replies.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xaenox/marketwatch/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Scan fetches the raw message candidates the scraper has detected for one
// account.
func (c *Client) Scan(ctx context.Context, account models.Account) ([]models.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/messages", c.baseURL, url.PathEscape(account.Email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scan request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan failed for %s: %w", account.Email, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scan failed for %s: unexpected status %d", account.Email, resp.StatusCode)
	}

	var raws []models.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed to decode scan response: %w", err)
	}

	return raws, nil
}

type sendRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

// Send asks the scraper to deliver a reply into a conversation.
func (c *Client) Send(ctx context.Context, conversationID, text string) error {
	body, err := json.Marshal(sendRequest{ConversationID: conversationID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	endpoint := c.baseURL + "/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send failed for %s: %w", conversationID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send failed for %s: unexpected status %d", conversationID, resp.StatusCode)
	}

	return nil
}
