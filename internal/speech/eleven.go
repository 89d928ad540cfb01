package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var ErrNotConfigured = errors.New("elevenlabs not configured")

// ElevenLabs is a hosted synthesizer used by the server speech proxy.
type ElevenLabs struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	voiceID    string
	model      string
}

func NewElevenLabs(httpClient *http.Client, apiKey, voiceID, model string) *ElevenLabs {
	return &ElevenLabs{
		httpClient: httpClient,
		baseURL:    "https://api.elevenlabs.io",
		apiKey:     apiKey,
		voiceID:    voiceID,
		model:      model,
	}
}

// WithBaseURL points the client at another host (tests, self-hosted relays).
func (e *ElevenLabs) WithBaseURL(u string) *ElevenLabs {
	e.baseURL = strings.TrimRight(u, "/")
	return e
}

func (e *ElevenLabs) Configured() bool { return e != nil && e.apiKey != "" }

// Synthesize streams MP3 audio for text. voiceID overrides the configured
// voice when non-empty. The caller closes the returned reader.
func (e *ElevenLabs) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	if !e.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(voiceID) == "" {
		voiceID = e.voiceID
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, fmt.Errorf("%w: no voice configured or provided", ErrNotConfigured)
	}
	payload := map[string]any{
		"text":     text,
		"model_id": e.model,
		"voice_settings": map[string]any{
			"stability":         0.5,
			"similarity_boost":  0.7,
			"style":             0.2,
			"use_speaker_boost": true,
		},
		"optimize_streaming_latency": 4,
		"output_format":              "mp3_44100_128",
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", e.baseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Voices returns the raw voices listing as JSON.
func (e *ElevenLabs) Voices(ctx context.Context) (json.RawMessage, error) {
	if !e.Configured() {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding voices: %w", err)
	}
	return raw, nil
}

func (e *ElevenLabs) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("xi-api-key", e.apiKey)
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		bb, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode, strings.TrimSpace(string(bb)))
	}
	return resp, nil
}
