package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/logger"
	"voice-assistant/internal/types"
)

func testServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestWeather_Current(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Mumbai", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		fmt.Fprint(w, `{"main":{"temp":29.5},"weather":[{"description":"haze"}]}`)
	})
	c := NewWeatherClient(srv.Client(), srv.URL, "k", "", logger.Discard())

	got := c.Current(context.Background(), "Mumbai")
	assert.Equal(t, "The current temperature in Mumbai is 29.5°C with haze.", got)
}

func TestWeather_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"main":`)
		},
		"no main": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"cod":"404"}`)
		},
		"no conditions": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"main":{"temp":20},"weather":[]}`)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := testServer(t, h)
			c := NewWeatherClient(srv.Client(), srv.URL, "k", "metric", logger.Discard())
			assert.Equal(t, WeatherFallback, c.Current(context.Background(), "Mumbai"))
		})
	}
}

func TestWeather_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewWeatherClient(&http.Client{Timeout: time.Second}, url, "k", "metric", logger.Discard())
	assert.Equal(t, "I couldn't fetch the weather data. Please try again later.", c.Current(context.Background(), "Mumbai"))
}

func TestNews_HeadlinesLimit(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		assert.Equal(t, "in", r.URL.Query().Get("country"))
		fmt.Fprint(w, `{"articles":[{"title":"a"},{"title":"b"},{"title":"c"},{"title":"d"},{"title":"e"},{"title":"f"}]}`)
	})
	c := NewNewsClient(srv.Client(), srv.URL, "k", "in", 5, logger.Discard())

	assert.Equal(t, "Here are the top news headlines: a; b; c; d; e", c.Headlines(context.Background()))
}

func TestNews_Failures(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error"}`)
	})
	c := NewNewsClient(srv.Client(), srv.URL, "k", "in", 5, logger.Discard())
	assert.Equal(t, NewsFallback, c.Headlines(context.Background()))

	down := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c = NewNewsClient(down.Client(), down.URL, "k", "in", 5, logger.Discard())
	assert.Equal(t, NewsFallback, c.Headlines(context.Background()))
}

func TestLLM_MissingKeySkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	c := NewLLMClient(srv.Client(), "", srv.URL, "m", PromptSpec{}, logger.Discard())

	assert.Equal(t, "API Key is missing. Please check your environment variables.", c.Complete(context.Background(), "tell me a joke"))
	assert.Zero(t, hits.Load())
}

func TestLLM_Complete(t *testing.T) {
	var spec PromptSpec
	spec.System = "You are a helpful assistant."
	spec.Style.MaxTokens = 64

	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "tell me a joke", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"Why did the gopher cross the road?"}}]}`)
	})
	c := NewLLMClient(srv.Client(), "secret", srv.URL, "llama", spec, logger.Discard())

	assert.Equal(t, "Why did the gopher cross the road?", c.Complete(context.Background(), "tell me a joke"))
}

func TestLLM_EmptyChoices(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","choices":[]}`)
	})
	c := NewLLMClient(srv.Client(), "secret", srv.URL, "llama", PromptSpec{}, logger.Discard())

	assert.Equal(t, LLMNoChoiceMessage, c.Complete(context.Background(), "hi"))
}

func TestLLM_TransportFailure(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom"}}`)
	})
	c := NewLLMClient(srv.Client(), "secret", srv.URL, "llama", PromptSpec{}, logger.Discard())

	assert.Equal(t, LLMFailureMessage, c.Complete(context.Background(), "hi"))
}

func TestRelay_CompleteAndHistory(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/chat":
			var req types.ChatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			_ = json.NewEncoder(w).Encode(types.ChatResponse{Response: "echo: " + req.Message})
		case "/api/chat/history":
			_ = json.NewEncoder(w).Encode([]types.Chat{{UserID: "tok", Messages: []types.Message{{Sender: "User", Text: "hi"}}}})
		default:
			http.NotFound(w, r)
		}
	})
	c := NewRelayClient(srv.Client(), srv.URL+"/", "tok", logger.Discard())

	assert.Equal(t, "echo: hello", c.Complete(context.Background(), "hello"))

	chats, err := c.History(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "hi", chats[0].Messages[0].Text)
}

func TestRelay_FailureIsAbsorbed(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := NewRelayClient(srv.Client(), srv.URL, "", logger.Discard())
	assert.Equal(t, LLMFailureMessage, c.Complete(context.Background(), "hello"))

	_, err := c.History(context.Background())
	assert.Error(t, err)
}

func TestLoadPromptSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assistant.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system: Be brief.\nstyle:\n  temperature: 0.4\n  max_tokens: 200\n"), 0o600))

	spec, err := LoadPromptSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", spec.System)
	assert.InDelta(t, 0.4, spec.Style.Temperature, 0.0001)
	assert.Equal(t, 200, spec.Style.MaxTokens)

	missing, err := LoadPromptSpec(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing.System)
}

func TestNewHTTPClient(t *testing.T) {
	c, err := NewHTTPClient("", 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.Timeout)

	c, err = NewHTTPClient("127.0.0.1:1080", time.Second)
	require.NoError(t, err)
	assert.NotNil(t, c.Transport)
}
