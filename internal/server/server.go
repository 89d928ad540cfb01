package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"voice-assistant/internal/speech"
	"voice-assistant/internal/store"
	"voice-assistant/internal/types"
)

// Completer answers free text; failures come back as apology text.
type Completer interface {
	Complete(ctx context.Context, message string) string
}

type Options struct {
	AllowedOrigin string
	Store         store.ChatStore
	Completer     Completer
	TTS           *speech.ElevenLabs
	// ChatTimeout bounds one completion; zero means 20s.
	ChatTimeout time.Duration
	Log         logrus.FieldLogger
}

type Server struct {
	router      *chi.Mux
	store       store.ChatStore
	completer   Completer
	tts         *speech.ElevenLabs
	chatTimeout time.Duration
	origin      string
	log         logrus.FieldLogger
}

func NewServer(opts Options) *Server {
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = 20 * time.Second
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(opts.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{opts.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	s := &Server{
		router:      r,
		store:       opts.Store,
		completer:   opts.Completer,
		tts:         opts.TTS,
		chatTimeout: opts.ChatTimeout,
		origin:      opts.AllowedOrigin,
		log:         opts.Log.WithField("component", "server"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Get("/api/chat/history", s.handleHistory)
	s.router.Post("/api/tts", s.handleTTS)
	s.router.Get("/api/tts/voices", s.handleTTSVoices)
	s.router.Get("/ws", s.handleWS)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, types.ErrorResponse{Error: msg})
}

// bearerUser returns the caller identity carried in the Authorization
// header. The "Bearer " prefix is optional.
func bearerUser(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) >= 6 && strings.EqualFold(h[:6], "bearer") && (len(h) == 6 || h[6] == ' ') {
		h = h[6:]
	}
	return strings.TrimSpace(h)
}
