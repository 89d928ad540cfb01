package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"voice-assistant/internal/types"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	user := bearerUser(r)
	if user == "" {
		s.writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.chatTimeout)
	defer cancel()
	asked := time.Now().UTC()
	reply := s.completer.Complete(ctx, req.Message)

	err := s.store.Append(r.Context(), user,
		types.Message{Sender: types.SenderUser, Text: req.Message, Timestamp: asked},
		types.Message{Sender: types.SenderAssistant, Text: reply, Timestamp: time.Now().UTC()},
	)
	if err != nil {
		s.log.WithError(err).WithField("user", user).Error("saving chat")
		s.writeError(w, http.StatusInternalServerError, "failed to save chat")
		return
	}
	writeJSON(w, http.StatusOK, types.ChatResponse{Response: reply})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := bearerUser(r)
	if user == "" {
		s.writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	chats, err := s.store.History(r.Context(), user)
	if err != nil {
		s.log.WithError(err).WithField("user", user).Error("loading chat history")
		s.writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}
