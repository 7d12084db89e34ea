// Package history talks to the REST companion endpoint for persisted
// room messages. It races with the live join on purpose; the room state
// reconciles both sides by message id.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"auction-chat/contract"
	"auction-chat/domain"
	"auction-chat/protocol"
)

type response struct {
	Messages []protocol.MessagePayload `json:"messages"`
	IsActive bool                      `json:"isActive"`
	Message  string                    `json:"message,omitempty"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *slog.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		log:        log,
	}
}

// Fetch loads the persisted history for a room. A failure here is
// non-fatal to the caller: live chat continues without backfill.
func (c *Client) Fetch(ctx context.Context, room domain.RoomID) (contract.HistoryPage, error) {
	url := fmt.Sprintf("%s/api/chat/messages/%s", c.baseURL, string(room))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return contract.HistoryPage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contract.HistoryPage{}, fmt.Errorf("history fetch for room %s: %w", room, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return contract.HistoryPage{}, fmt.Errorf("history fetch for room %s: status %d", room, resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return contract.HistoryPage{}, fmt.Errorf("history decode for room %s: %w", room, err)
	}

	now := time.Now().UTC()
	page := contract.HistoryPage{
		Messages: lo.Map(body.Messages, func(p protocol.MessagePayload, _ int) domain.Message {
			return protocol.NormalizeMessage(p, room, now)
		}),
		Active: body.IsActive,
		Notice: body.Message,
	}
	if !page.Active {
		c.log.Debug("Chat is disabled for room", "room", room, "notice", page.Notice)
	}
	return page, nil
}
