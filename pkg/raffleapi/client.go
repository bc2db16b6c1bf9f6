package raffleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/services"
)

// Client calls the raffle HTTP API
type Client struct {
	BaseURL    string
	Token      string
	httpClient *http.Client
}

// NewClient creates a new Client. token may be empty for read-only use.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that authenticates with token
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.Token = token
	return &clone
}

// Phase returns the current phase
func (c *Client) Phase(ctx context.Context) (models.Phase, error) {
	var out struct {
		Phase models.Phase `json:"phase"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/lottery/phase", nil, &out)
	return out.Phase, err
}

// State returns the lottery state
func (c *Client) State(ctx context.Context) (*models.LotteryState, error) {
	var out models.LotteryState
	if err := c.do(ctx, http.MethodGet, "/api/v1/lottery/state", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TicketPrice returns the ticket price
func (c *Client) TicketPrice(ctx context.Context) (models.Amount, error) {
	var out struct {
		TicketPrice models.Amount `json:"ticket_price"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/lottery/ticket-price", nil, &out)
	return out.TicketPrice, err
}

// Round returns one round
func (c *Client) Round(ctx context.Context, id uint32) (*models.Round, error) {
	var out models.Round
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/lottery/rounds/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rounds returns the latest rounds, newest first
func (c *Client) Rounds(ctx context.Context, limit int) ([]*models.Round, error) {
	var out struct {
		Rounds []*models.Round `json:"rounds"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/lottery/rounds?limit="+strconv.Itoa(limit), nil, &out)
	return out.Rounds, err
}

// PlayerTickets returns player's tickets in roundID, or in the current round when roundID is 0
func (c *Client) PlayerTickets(ctx context.Context, player string, roundID uint32) (uint32, error) {
	path := "/api/v1/lottery/players/" + url.PathEscape(player) + "/tickets"
	if roundID != 0 {
		path += "?round=" + strconv.FormatUint(uint64(roundID), 10)
	}
	var out struct {
		Tickets uint32 `json:"tickets"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Tickets, err
}

// Events returns the events of roundID, or the newest page of events when roundID is 0
func (c *Client) Events(ctx context.Context, roundID uint32) ([]*models.Event, error) {
	path := "/api/v1/lottery/events"
	if roundID != 0 {
		path += "?round=" + strconv.FormatUint(uint64(roundID), 10)
	}
	var out struct {
		Events []*models.Event `json:"events"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Events, err
}

// Init initialises the lottery
func (c *Client) Init(ctx context.Context, operator string, price models.Amount) (*models.LotteryState, error) {
	body := map[string]interface{}{"operator": operator, "ticket_price": price}
	var out models.LotteryState
	if err := c.do(ctx, http.MethodPost, "/api/v1/lottery/init", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartRound opens a round
func (c *Client) StartRound(ctx context.Context) (*models.Round, error) {
	var out models.Round
	if err := c.do(ctx, http.MethodPost, "/api/v1/lottery/rounds/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BuyTicket buys count tickets paying amount
func (c *Client) BuyTicket(ctx context.Context, count uint32, amount models.Amount) (*services.TicketReceipt, error) {
	body := map[string]interface{}{"count": count, "attached_amount": amount}
	var out services.TicketReceipt
	if err := c.do(ctx, http.MethodPost, "/api/v1/lottery/tickets", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Draw closes the active round
func (c *Client) Draw(ctx context.Context) (*services.DrawResult, error) {
	var out services.DrawResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/lottery/draw", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Settle pays out the drawn round
func (c *Client) Settle(ctx context.Context) (*services.PayoutResult, error) {
	var out services.PayoutResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/lottery/settle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetTicketPrice changes the ticket price
func (c *Client) SetTicketPrice(ctx context.Context, price models.Amount) (models.Amount, error) {
	body := map[string]interface{}{"ticket_price": price}
	var out struct {
		TicketPrice models.Amount `json:"ticket_price"`
	}
	err := c.do(ctx, http.MethodPut, "/api/v1/lottery/ticket-price", body, &out)
	return out.TicketPrice, err
}

// Transfers lists the payout transfers of roundID
func (c *Client) Transfers(ctx context.Context, roundID uint32) ([]*models.Transfer, error) {
	var out struct {
		Transfers []*models.Transfer `json:"transfers"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/payouts?round="+strconv.FormatUint(uint64(roundID), 10), nil, &out)
	return out.Transfers, err
}

// Dispatch sends pending transfers
func (c *Client) Dispatch(ctx context.Context, retryFailed bool) (*services.DispatchResult, error) {
	var out services.DispatchResult
	path := "/api/v1/payouts/dispatch?retry_failed=" + strconv.FormatBool(retryFailed)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Confirm asks the gateway about sent transfers
func (c *Client) Confirm(ctx context.Context) (*services.ConfirmResult, error) {
	var out services.ConfirmResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/payouts/confirm", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends the request and decodes a 2xx body into out. Error bodies carrying
// a kind are returned as *models.Error.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string           `json:"error"`
			Kind  models.ErrorKind `json:"kind"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Kind != "" {
			return &models.Error{Kind: apiErr.Kind, Message: apiErr.Error}
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
