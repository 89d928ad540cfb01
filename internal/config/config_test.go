package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY", "WEATHER_CITY", "NEWS_LIMIT", "ASSISTANT_LISTEN_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg := Load("testdata/does-not-exist.env")

	assert.Equal(t, "Mumbai", cfg.WeatherCity)
	assert.Equal(t, "in", cfg.NewsCountry)
	assert.Equal(t, 5, cfg.NewsLimit)
	assert.Equal(t, 15*time.Second, cfg.ListenTimeout)
	assert.Equal(t, "", cfg.LLMAPIKey)
	assert.Equal(t, "file", cfg.StorageDriver)
}

func TestLoad_LLMKeyFallbackOrder(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "groq")
	t.Setenv("OPENAI_API_KEY", "openai")
	assert.Equal(t, "groq", Load("testdata/does-not-exist.env").LLMAPIKey)

	t.Setenv("LLM_API_KEY", "primary")
	assert.Equal(t, "primary", Load("testdata/does-not-exist.env").LLMAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WEATHER_CITY", "Pune")
	t.Setenv("NEWS_LIMIT", "3")
	t.Setenv("ASSISTANT_LISTEN_TIMEOUT", "30")
	t.Setenv("HTTP_TIMEOUT", "750ms")

	cfg := Load("testdata/does-not-exist.env")
	assert.Equal(t, "Pune", cfg.WeatherCity)
	assert.Equal(t, 3, cfg.NewsLimit)
	assert.Equal(t, 30*time.Second, cfg.ListenTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.HTTPTimeout)
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	t.Setenv("NEWS_LIMIT", "many")
	t.Setenv("ASSISTANT_LISTEN_TIMEOUT", "soon")

	cfg := Load("testdata/does-not-exist.env")
	assert.Equal(t, 5, cfg.NewsLimit)
	assert.Equal(t, 15*time.Second, cfg.ListenTimeout)
}
