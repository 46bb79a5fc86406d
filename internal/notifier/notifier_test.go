package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPost_DeliversPayload(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(zap.NewNop(), srv.URL)
	err := n.Post(context.Background(), Message{UserID: 7, Text: "olá"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "olá", got.Text)
}

func TestPost_WebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := New(zap.NewNop(), srv.URL)
	err := n.Post(context.Background(), Message{Text: "x"})
	assert.Error(t, err)
}

func TestPost_Unreachable(t *testing.T) {
	n := New(zap.NewNop(), "http://127.0.0.1:1/notify")
	err := n.Post(context.Background(), Message{Text: "x"})
	assert.Error(t, err)
}
