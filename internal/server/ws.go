package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// handleWS keeps a realtime channel open. Nothing is exchanged yet; the
// connection lifecycle is only logged.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	log := s.log.WithField("conn", uuid.NewString())
	log.Info("new client connected")
	defer log.Info("client disconnected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.origin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.origin
}
