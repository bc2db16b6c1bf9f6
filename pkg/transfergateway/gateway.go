package transfergateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TransferRequest is one payment to send
type TransferRequest struct {
	TransferID string `json:"transferId"`
	RoundID    uint32 `json:"roundId"`
	Recipient  string `json:"recipient"`
	Amount     string `json:"amount"`
	Memo       string `json:"memo,omitempty"`
}

// Statuses a gateway reports for a submitted transfer
const (
	StatusProcessing = "PROCESSING"
	StatusSettled    = "SETTLED"
	StatusRejected   = "REJECTED"
)

// Gateway moves funds out of the lottery's custody
type Gateway interface {
	// Send submits a transfer and returns the gateway's reference for it
	Send(ctx context.Context, req TransferRequest) (string, error)
	// Status returns the gateway's status for a reference
	Status(ctx context.Context, reference string) (string, error)
}

// HTTPGateway posts transfers to a custody service
type HTTPGateway struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// MockGateway accepts every transfer and keeps them in memory
type MockGateway struct {
	Name string

	mu   sync.Mutex
	sent []TransferRequest
}

// New returns a mock gateway when mock is set, otherwise an HTTP gateway
func New(baseURL, apiKey string, mock bool) Gateway {
	if mock {
		return NewMockGateway("custody")
	}
	return NewHTTPGateway(baseURL, apiKey)
}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockGateway creates a new MockGateway
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{Name: name}
}

// Send posts the transfer to {BaseURL}/transfers
func (g *HTTPGateway) Send(ctx context.Context, transfer TransferRequest) (string, error) {
	jsonBody, err := json.Marshal(transfer)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/transfers", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", transfer.TransferID)

	var response struct {
		Reference string `json:"reference"`
	}
	if err := g.do(req, &response); err != nil {
		return "", err
	}
	if response.Reference == "" {
		return "", fmt.Errorf("gateway returned no reference for transfer %s", transfer.TransferID)
	}
	return response.Reference, nil
}

// Status reads {BaseURL}/transfers/{reference}
func (g *HTTPGateway) Status(ctx context.Context, reference string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/transfers/"+reference, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	var response struct {
		Status string `json:"status"`
	}
	if err := g.do(req, &response); err != nil {
		return "", err
	}
	return response.Status, nil
}

func (g *HTTPGateway) do(req *http.Request, out interface{}) error {
	if g.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.APIKey))
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Send records the transfer and returns a generated reference
func (g *MockGateway) Send(ctx context.Context, req TransferRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sent = append(g.sent, req)
	return fmt.Sprintf("%s-MOCK-%s", strings.ToUpper(g.Name), uuid.NewString()), nil
}

// Status always reports the transfer as settled
func (g *MockGateway) Status(ctx context.Context, reference string) (string, error) {
	return StatusSettled, nil
}

// Sent returns the transfers accepted so far
func (g *MockGateway) Sent() []TransferRequest {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]TransferRequest, len(g.sent))
	copy(out, g.sent)
	return out
}
