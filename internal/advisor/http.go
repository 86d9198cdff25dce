package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"guardians/internal/game"
)

// HTTP forwards questions to an external text service.
//
// The service receives {"input", "weights", "personality"} and answers {"reply": "..."}.
type HTTP struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewHTTP(url, apiKey string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTP{
		url:    strings.TrimSpace(url),
		apiKey: strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type httpReply struct {
	Reply string `json:"reply"`
}

func (c *HTTP) Respond(ctx context.Context, q game.AdvisorQuery) (string, error) {
	if c.url == "" {
		return "", fmt.Errorf("advisor url not configured")
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("advisor request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("advisor status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out httpReply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode advisor reply: %w", err)
	}
	return strings.TrimSpace(out.Reply), nil
}
