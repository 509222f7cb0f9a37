// Package devserver is a local stand-in for the chat backend. It speaks the
// same /api/chat contract and answers with an echo, so the client can be
// tried without a model behind it.
package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/strrl/llmchat/pkg/models"
	"go.uber.org/zap"
)

type chatRequest struct {
	Message             string         `json:"message"`
	SessionID           *string        `json:"session_id"`
	ConversationHistory []models.Entry `json:"conversation_history"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

type Server struct {
	router *chi.Mux
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]int // session id -> messages received
}

func NewServer(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		logger:   logger,
		sessions: make(map[string]int),
	}

	router.Get("/api/health", s.health)
	router.Post("/api/chat", s.chat)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until the listener fails
func (s *Server) Start(addr string) error {
	s.logger.Info("dev server starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	s.mu.Lock()
	sessionID := ""
	if req.SessionID != nil {
		if _, ok := s.sessions[*req.SessionID]; ok {
			sessionID = *req.SessionID
		}
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
		s.logger.Info("session created", zap.String("session_id", sessionID))
	}
	s.sessions[sessionID]++
	turn := s.sessions[sessionID]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Response: fmt.Sprintf("Echo #%d: %s\n(received %d history entries)",
			turn, message, len(req.ConversationHistory)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
