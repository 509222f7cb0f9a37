package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/strrl/llmchat/internal/chat"
	"github.com/strrl/llmchat/internal/config"
	"github.com/strrl/llmchat/internal/db"
	"github.com/strrl/llmchat/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, srv *Server, body string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	var out map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return w, out
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestChatCreatesSession(t *testing.T) {
	srv := NewServer(nil)

	w, out := post(t, srv, `{"message":"Hello","session_id":null,"conversation_history":[]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(out["session_id"])
	assert.NoError(t, err)
	assert.Contains(t, out["response"], "Hello")
}

func TestChatKeepsKnownSession(t *testing.T) {
	srv := NewServer(nil)
	_, first := post(t, srv, `{"message":"one","session_id":null}`)

	body, _ := json.Marshal(map[string]any{"message": "two", "session_id": first["session_id"]})
	_, second := post(t, srv, string(body))

	assert.Equal(t, first["session_id"], second["session_id"])
	assert.Contains(t, second["response"], "Echo #2")
}

func TestChatReplacesUnknownSession(t *testing.T) {
	srv := NewServer(nil)

	_, out := post(t, srv, `{"message":"hi","session_id":"stale"}`)

	assert.NotEqual(t, "stale", out["session_id"])
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv := NewServer(nil)

	w, out := post(t, srv, `{"message":"   "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "message is required", out["error"])
}

func TestChatRejectsInvalidJSON(t *testing.T) {
	srv := NewServer(nil)

	w, out := post(t, srv, `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, out["error"])
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := NewServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// The real client against the dev server: the session sticks and the
// history grows by two entries per exchange.
func TestClientAgainstDevServer(t *testing.T) {
	ts := httptest.NewServer(NewServer(nil).Handler())
	t.Cleanup(ts.Close)

	database, err := db.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	ctx := context.Background()
	store, err := storage.NewDuckDBStore(ctx, database)
	require.NoError(t, err)

	cfg := config.Default(t.TempDir())
	cfg.APIBaseURL = ts.URL + "/api"
	client := chat.NewClient(cfg, store, nil)
	require.NoError(t, client.Init(ctx))

	first, ok := client.SendMessage(ctx, "Hello")
	require.True(t, ok)
	require.NoError(t, first.Err)
	assert.True(t, first.NewSession)

	second, ok := client.SendMessage(ctx, "Again")
	require.True(t, ok)
	require.NoError(t, second.Err)
	assert.False(t, second.NewSession)
	assert.Contains(t, second.Text, "received 2 history entries")

	stored, _, err := store.GetItem(ctx, storage.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, client.SessionID(), stored)
	assert.Len(t, client.History(), 4)
}
