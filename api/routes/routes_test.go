package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/raffle-backend/internal/config"
	"github.com/ArowuTest/raffle-backend/internal/handlers"
	"github.com/ArowuTest/raffle-backend/internal/repositories/memory"
	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"github.com/ArowuTest/raffle-backend/pkg/transfergateway"
)

const (
	contractID = "raffle.near"
	operatorID = "op.near"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type zeroSource struct{}

func (zeroSource) Roll(services.DrawInput) (uint64, error) { return 0, nil }

type apiTest struct {
	t       *testing.T
	router  *gin.Engine
	tokens  *jwt.TokenService
	clock   *testClock
	gateway *transfergateway.MockGateway
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	clock := &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	gateway := transfergateway.NewMockGateway("test")

	lotteryService := services.NewLotteryService(store, services.LotteryConfig{
		ContractID:    contractID,
		RoundDuration: time.Hour,
		MinTickets:    3,
		MinPlayers:    2,
	}, clock, zeroSource{}, logger)
	payoutService := services.NewPayoutService(store, store.Transfers(), gateway, clock, logger)
	eventService := services.NewEventService(store.Events())

	deps := HandlerDependencies{
		LotteryHandler: handlers.NewLotteryHandler(lotteryService),
		PayoutHandler:  handlers.NewPayoutHandler(payoutService),
		EventHandler:   handlers.NewEventHandler(eventService),
		HealthHandler:  handlers.NewHealthHandler(lotteryService),
	}
	cfg := &config.Config{Server: config.ServerConfig{AllowedHosts: []string{"localhost:3000"}}}
	tokens := jwt.NewTokenService("test-secret", time.Hour)

	return &apiTest{
		t:       t,
		router:  SetupRouter(cfg, deps, tokens, logger),
		tokens:  tokens,
		clock:   clock,
		gateway: gateway,
	}
}

// do sends a request as identity ("" for anonymous) and decodes the JSON body
func (a *apiTest) do(method, path, identity string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if identity != "" {
		token, err := a.tokens.Issue(identity)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestLotteryLifecycleOverHTTP(t *testing.T) {
	api := newAPITest(t)

	status, body := api.do(http.MethodGet, "/api/v1/lottery/phase", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "INACTIVE", body["phase"])

	// Init needs a token and the contract identity
	status, _ = api.do(http.MethodPost, "/api/v1/lottery/init", "", gin.H{"operator": operatorID, "ticket_price": "100"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, body = api.do(http.MethodPost, "/api/v1/lottery/init", "alice.near", gin.H{"operator": operatorID, "ticket_price": "100"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "UNAUTHORIZED", body["kind"])
	status, body = api.do(http.MethodPost, "/api/v1/lottery/init", contractID, gin.H{"operator": operatorID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", body["kind"])

	status, body = api.do(http.MethodPost, "/api/v1/lottery/init", contractID, gin.H{"operator": operatorID, "ticket_price": "100"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "IDLE", body["phase"])
	assert.Equal(t, "100", body["ticket_price"])

	status, body = api.do(http.MethodPost, "/api/v1/lottery/rounds/start", operatorID, nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(1), body["id"])

	status, body = api.do(http.MethodPost, "/api/v1/lottery/tickets", "alice.near", gin.H{"count": 2, "attached_amount": "200"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(0), body["first_ticket"])
	status, _ = api.do(http.MethodPost, "/api/v1/lottery/tickets", "bob.near", gin.H{"count": 1, "attached_amount": "100"})
	require.Equal(t, http.StatusCreated, status)
	status, body = api.do(http.MethodPost, "/api/v1/lottery/tickets", "carol.near", gin.H{"count": 1, "attached_amount": "99"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "PAYMENT_MISMATCH", body["kind"])

	status, body = api.do(http.MethodGet, "/api/v1/lottery/players/alice.near/tickets", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["tickets"])

	status, body = api.do(http.MethodPost, "/api/v1/lottery/draw", operatorID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "WINDOW_OPEN", body["kind"])

	api.clock.Advance(time.Hour)
	status, body = api.do(http.MethodPost, "/api/v1/lottery/draw", operatorID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "WINNER", body["outcome"])
	assert.Equal(t, "alice.near", body["winner"])

	status, body = api.do(http.MethodPost, "/api/v1/lottery/settle", operatorID, nil)
	require.Equal(t, http.StatusOK, status)
	settlement := body["settlement"].(map[string]interface{})
	assert.Equal(t, "150", settlement["winner_amount"])
	assert.Equal(t, "75", settlement["operator_amount"])

	status, body = api.do(http.MethodGet, "/api/v1/payouts?round=1", operatorID, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, _ = api.do(http.MethodPost, "/api/v1/payouts/dispatch", "alice.near", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = api.do(http.MethodPost, "/api/v1/payouts/dispatch", operatorID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["sent"])
	assert.Len(t, api.gateway.Sent(), 2)

	status, body = api.do(http.MethodGet, "/api/v1/payouts?status=sent", operatorID, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = api.do(http.MethodPost, "/api/v1/payouts/confirm", operatorID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["confirmed"])
	status, body = api.do(http.MethodGet, "/api/v1/payouts?status=CONFIRMED", operatorID, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = api.do(http.MethodGet, "/api/v1/lottery/rounds/1", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice.near", body["winner"])
	assert.Equal(t, float64(3), body["tickets_sold"])

	status, body = api.do(http.MethodGet, "/api/v1/lottery/events?round=1", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["events"], 5)

	status, body = api.do(http.MethodGet, "/api/v1/lottery/state", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "IDLE", body["phase"])
	assert.Equal(t, false, body["rollover"])
}

func TestTicketPriceEndpoints(t *testing.T) {
	api := newAPITest(t)
	status, _ := api.do(http.MethodPost, "/api/v1/lottery/init", contractID, gin.H{"operator": operatorID, "ticket_price": "100"})
	require.Equal(t, http.StatusOK, status)

	status, body := api.do(http.MethodPut, "/api/v1/lottery/ticket-price", "alice.near", gin.H{"ticket_price": "5"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "UNAUTHORIZED", body["kind"])

	status, body = api.do(http.MethodPut, "/api/v1/lottery/ticket-price", operatorID, gin.H{"ticket_price": "5"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "5", body["ticket_price"])

	status, body = api.do(http.MethodGet, "/api/v1/lottery/ticket-price", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "5", body["ticket_price"])

	status, _ = api.do(http.MethodPost, "/api/v1/lottery/rounds/start", operatorID, nil)
	require.Equal(t, http.StatusCreated, status)
	status, body = api.do(http.MethodPut, "/api/v1/lottery/ticket-price", operatorID, gin.H{"ticket_price": "7"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PHASE_VIOLATION", body["kind"])
}

func TestQueryErrors(t *testing.T) {
	api := newAPITest(t)

	status, body := api.do(http.MethodGet, "/api/v1/lottery/rounds/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", body["kind"])

	status, body = api.do(http.MethodGet, "/api/v1/lottery/rounds/9", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["kind"])

	status, body = api.do(http.MethodGet, "/api/v1/lottery/players/alice.near/tickets", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["tickets"])

	status, _ = api.do(http.MethodGet, "/api/v1/lottery/players/alice.near/tickets?round=9", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodGet, "/api/v1/payouts?status=LOST", operatorID, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = api.do(http.MethodGet, "/api/v1/lottery/rounds", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])
}

func TestHealthAndMetrics(t *testing.T) {
	api := newAPITest(t)

	status, body := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "INACTIVE", body["phase"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "raffle_http_requests_total")
}
