package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"guardians/internal/game"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type ActionResult struct {
	Session game.View    `json:"session"`
	Outcome game.Outcome `json:"outcome"`
}

type Content struct {
	Assets        []game.AssetParams `json:"assets"`
	Badges        []game.BadgeInfo   `json:"badges"`
	Personalities []game.Personality `json:"personalities"`
	Tasks         []game.Task        `json:"tasks"`
	Prizes        []game.WheelPrize  `json:"prizes"`
}

func (c *Client) NewGame(ctx context.Context) (game.View, error) {
	var out game.View
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/sessions", nil, &out)
	return out, err
}

func (c *Client) Session(ctx context.Context, id string) (game.View, error) {
	var out game.View
	err := c.jsonRequest(ctx, http.MethodGet, sessionPathFor(id, ""), nil, &out)
	return out, err
}

func (c *Client) EndGame(ctx context.Context, id string) error {
	return c.jsonRequest(ctx, http.MethodDelete, sessionPathFor(id, ""), nil, nil)
}

func (c *Client) Advance(ctx context.Context, id string, choice *int) (ActionResult, error) {
	body := map[string]any{}
	if choice != nil {
		body["choice"] = *choice
	}
	return c.action(ctx, id, "/advance", body)
}

func (c *Client) AnswerDilemma(ctx context.Context, id string, option int) (ActionResult, error) {
	return c.action(ctx, id, "/dilemma", map[string]any{"option": option})
}

func (c *Client) AnswerQuiz(ctx context.Context, id string, option int) (ActionResult, error) {
	return c.action(ctx, id, "/quiz", map[string]any{"option": option})
}

func (c *Client) SetWeight(ctx context.Context, id, asset string, value int) (ActionResult, error) {
	return c.action(ctx, id, "/weights", map[string]any{"asset": asset, "value": value})
}

func (c *Client) ToggleAsset(ctx context.Context, id, asset string) (ActionResult, error) {
	return c.action(ctx, id, "/assets/"+url.PathEscape(asset)+"/toggle", nil)
}

func (c *Client) RequestCoins(ctx context.Context, id string, amount int) (ActionResult, error) {
	return c.action(ctx, id, "/coins/request", map[string]any{"amount": amount})
}

func (c *Client) ApproveCoins(ctx context.Context, id string) (ActionResult, error) {
	return c.action(ctx, id, "/coins/approve", nil)
}

func (c *Client) RejectCoins(ctx context.Context, id string) (ActionResult, error) {
	return c.action(ctx, id, "/coins/reject", nil)
}

func (c *Client) SpinWheel(ctx context.Context, id string) (ActionResult, error) {
	return c.action(ctx, id, "/wheel", nil)
}

func (c *Client) ConfigureAdvisor(ctx context.Context, id string, enabled *bool, personality *string) (ActionResult, error) {
	body := map[string]any{}
	if enabled != nil {
		body["enabled"] = *enabled
	}
	if personality != nil {
		body["personality"] = *personality
	}
	return c.action(ctx, id, "/advisor", body)
}

func (c *Client) AskAdvisor(ctx context.Context, id, input string) (game.View, error) {
	var out game.View
	err := c.jsonRequest(ctx, http.MethodPost, sessionPathFor(id, "/advisor/ask"), map[string]any{"input": input}, &out)
	return out, err
}

func (c *Client) Reset(ctx context.Context, id string) (ActionResult, error) {
	return c.action(ctx, id, "/reset", nil)
}

func (c *Client) Content(ctx context.Context) (Content, error) {
	var out Content
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/content", nil, &out)
	return out, err
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]game.GameResult, error) {
	var out struct {
		Rows []game.GameResult `json:"rows"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/leaderboard?limit=%d", limit), nil, &out)
	return out.Rows, err
}

func (c *Client) action(ctx context.Context, id, suffix string, body map[string]any) (ActionResult, error) {
	var in any
	if body != nil {
		in = body
	}
	var out ActionResult
	err := c.jsonRequest(ctx, http.MethodPost, sessionPathFor(id, suffix), in, &out)
	return out, err
}

func sessionPathFor(id, suffix string) string {
	return "/v1/sessions/" + url.PathEscape(id) + suffix
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
