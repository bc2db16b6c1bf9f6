package transfergateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGatewaySend(t *testing.T) {
	var got TransferRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transfers", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "t-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"reference":"ref-42"}`))
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL+"/", "secret")
	ref, err := g.Send(context.Background(), TransferRequest{TransferID: "t-1", RoundID: 3, Recipient: "alice.near", Amount: "250"})
	require.NoError(t, err)
	assert.Equal(t, "ref-42", ref)
	assert.Equal(t, "250", got.Amount)
	assert.Equal(t, uint32(3), got.RoundID)
}

func TestHTTPGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/transfers":
			http.Error(w, "insufficient custody balance", http.StatusPaymentRequired)
		default:
			w.Write([]byte(`{"status":"PENDING"}`))
		}
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, "")
	_, err := g.Send(context.Background(), TransferRequest{TransferID: "t-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
	assert.Contains(t, err.Error(), "insufficient custody balance")

	status, err := g.Status(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", status)
}

func TestMockGateway(t *testing.T) {
	g := New("", "", true)
	mock, ok := g.(*MockGateway)
	require.True(t, ok)

	ref, err := g.Send(context.Background(), TransferRequest{TransferID: "t-1", Amount: "1"})
	require.NoError(t, err)
	assert.Contains(t, ref, "CUSTODY-MOCK-")
	assert.Len(t, mock.Sent(), 1)

	_, ok = New("http://custody.local", "k", false).(*HTTPGateway)
	assert.True(t, ok)
}
