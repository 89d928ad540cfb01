package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	MissingKeyMessage  = "API Key is missing. Please check your environment variables."
	LLMFailureMessage  = "I'm having trouble accessing ChatGPT. Please try again later."
	LLMNoChoiceMessage = "I didn't receive a valid response from ChatGPT."
)

// Completer answers free text. Implementations never fail; errors are
// turned into a spoken apology.
type Completer interface {
	Complete(ctx context.Context, message string) string
}

// LLMClient sends single-turn chat completions to an OpenAI-compatible API.
type LLMClient struct {
	client *openai.Client
	model  string
	prompt PromptSpec
	log    logrus.FieldLogger
}

// NewLLMClient returns a client for baseURL. With an empty apiKey the client
// is still usable and answers MissingKeyMessage without any network call.
func NewLLMClient(httpClient *http.Client, apiKey, baseURL, model string, prompt PromptSpec, log logrus.FieldLogger) *LLMClient {
	c := &LLMClient{model: model, prompt: prompt, log: log.WithField("service", "llm")}
	if strings.TrimSpace(apiKey) == "" {
		return c
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	c.client = openai.NewClientWithConfig(cfg)
	return c
}

func (c *LLMClient) Complete(ctx context.Context, message string) string {
	if c.client == nil {
		c.log.Warn("language model key is missing")
		return MissingKeyMessage
	}
	reply, err := c.complete(ctx, message)
	if errors.Is(err, errNoChoices) {
		c.log.Error("no choices found in the response")
		return LLMNoChoiceMessage
	}
	if err != nil {
		c.log.WithError(err).Error("chat completion")
		return LLMFailureMessage
	}
	return reply
}

var errNoChoices = errors.New("no choices")

func (c *LLMClient) complete(ctx context.Context, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if sys := strings.TrimSpace(c.prompt.System); sys != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: sys})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.prompt.Style.Temperature,
		MaxTokens:   c.prompt.Style.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
