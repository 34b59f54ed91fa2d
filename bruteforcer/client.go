package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/service"
)

// Client talks to the REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(method, path string, body interface{}, target interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}

	if target != nil {
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

func (c *Client) CreateSession(configID string) (*service.SessionInfo, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}
	var info service.SessionInfo
	if err := c.do("POST", "/api/sessions", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) JoinSession(id string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do("POST", sessionPath(id, "/join"), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) DeleteSession(id string) error {
	return c.do("DELETE", sessionPath(id, ""), nil, nil)
}

func (c *Client) State(id string) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do("GET", sessionPath(id, "/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) LegalMoves(id string, player engine.PlayerID) ([]engine.Coord, error) {
	var resp struct {
		Moves []engine.Coord `json:"moves"`
	}
	if err := c.do("GET", sessionPath(id, fmt.Sprintf("/moves?player=%d", player)), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Moves, nil
}

func (c *Client) WallSlots(id string, validOnly bool) ([]engine.WallSlot, error) {
	suffix := "/walls"
	if validOnly {
		suffix += "?valid=true"
	}
	var resp struct {
		Walls []engine.WallSlot `json:"walls"`
	}
	if err := c.do("GET", sessionPath(id, suffix), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Walls, nil
}

func (c *Client) Move(id string, grant service.SeatGrant, to engine.Coord) (*service.CommandResult, error) {
	body := map[string]interface{}{
		"player": grant.Player,
		"token":  grant.Token,
		"row":    to.Row,
		"col":    to.Col,
	}
	var result service.CommandResult
	if err := c.do("POST", sessionPath(id, "/move"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Wall(id string, grant service.SeatGrant, w engine.Wall) (*service.CommandResult, error) {
	body := map[string]interface{}{
		"player":      grant.Player,
		"token":       grant.Token,
		"row":         w.Row,
		"col":         w.Col,
		"orientation": w.Orientation,
	}
	var result service.CommandResult
	if err := c.do("POST", sessionPath(id, "/wall"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
