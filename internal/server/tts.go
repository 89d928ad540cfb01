package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"voice-assistant/internal/speech"
	"voice-assistant/internal/types"
)

// ElevenLabs TTS proxy: JSON { text, voiceId? } -> audio/mpeg
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var body types.TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "invalid text body")
		return
	}
	audio, err := s.tts.Synthesize(r.Context(), body.Text, body.VoiceID)
	if errors.Is(err, speech.ErrNotConfigured) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).Error("elevenlabs synthesize")
		s.writeError(w, http.StatusBadGateway, "tts error")
		return
	}
	defer audio.Close()
	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, audio)
}

// ElevenLabs voices proxy: GET -> JSON { voices: [...] }
func (s *Server) handleTTSVoices(w http.ResponseWriter, r *http.Request) {
	raw, err := s.tts.Voices(r.Context())
	if errors.Is(err, speech.ErrNotConfigured) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).Error("elevenlabs voices")
		s.writeError(w, http.StatusBadGateway, "voices error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
