package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"voice-assistant/internal/types"
)

// RelayClient forwards free text to the assistant backend instead of calling
// the language model directly, so the backend keeps the user's history.
type RelayClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        logrus.FieldLogger
}

func NewRelayClient(httpClient *http.Client, baseURL, token string, log logrus.FieldLogger) *RelayClient {
	return &RelayClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		log:        log.WithField("service", "relay"),
	}
}

func (c *RelayClient) authHeader() http.Header {
	h := http.Header{}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

func (c *RelayClient) Complete(ctx context.Context, message string) string {
	reply, err := c.chat(ctx, message)
	if err != nil {
		c.log.WithError(err).Error("relay chat")
		return LLMFailureMessage
	}
	return reply
}

func (c *RelayClient) chat(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(types.ChatRequest{Message: message})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header = c.authHeader()
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out types.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// History returns the caller's stored chat documents.
func (c *RelayClient) History(ctx context.Context) ([]types.Chat, error) {
	var chats []types.Chat
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/api/chat/history", c.authHeader(), &chats); err != nil {
		return nil, fmt.Errorf("fetching chat history: %w", err)
	}
	return chats, nil
}

var (
	_ Completer = (*LLMClient)(nil)
	_ Completer = (*RelayClient)(nil)
)
