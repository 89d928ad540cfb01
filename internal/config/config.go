package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	LogLevel      string
	LogFormat     string
	// Language model (OpenAI-compatible endpoint)
	LLMAPIKey  string
	LLMBaseURL string
	Model      string
	PromptFile string
	// Weather provider
	WeatherAPIKey  string
	WeatherBaseURL string
	WeatherCity    string
	WeatherUnits   string
	// News provider
	NewsAPIKey  string
	NewsBaseURL string
	NewsCountry string
	NewsLimit   int
	// Outbound SOCKS5 proxy for third-party calls, empty for direct
	SOCKSProxy  string
	HTTPTimeout time.Duration
	// Server persistence
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	HistoryLimit  int
	// Server speech proxy
	ElevenAPIKey  string
	ElevenVoiceID string
	ElevenModel   string
	// Client session storage
	DataDir       string
	StorageDriver string
	// Client speech
	Voice         string
	SpeechBinary  string
	ListenTimeout time.Duration
	SearchURL     string
	// Client relay mode
	ServerURL string
	Token     string
}

// Load reads .env (when present) and the process environment.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)
	return Config{
		Port:           getEnvDefault("PORT", "5000"),
		AllowedOrigin:  getEnvDefault("ALLOWED_ORIGIN", "*"),
		LogLevel:       getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvDefault("LOG_FORMAT", "text"),
		LLMAPIKey:      firstEnv("LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY"),
		LLMBaseURL:     getEnvDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:          getEnvDefault("LLM_MODEL", "llama-3.1-70b-versatile"),
		PromptFile:     getEnvDefault("ASSISTANT_PROMPT_FILE", "prompts/assistant.yaml"),
		WeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		WeatherBaseURL: getEnvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		WeatherCity:    getEnvDefault("WEATHER_CITY", "Mumbai"),
		WeatherUnits:   getEnvDefault("WEATHER_UNITS", "metric"),
		NewsAPIKey:     os.Getenv("NEWSAPI_API_KEY"),
		NewsBaseURL:    getEnvDefault("NEWSAPI_BASE_URL", "https://newsapi.org"),
		NewsCountry:    getEnvDefault("NEWS_COUNTRY", "in"),
		NewsLimit:      getEnvIntDefault("NEWS_LIMIT", 5),
		SOCKSProxy:     os.Getenv("SOCKS_PROXY"),
		HTTPTimeout:    getEnvDurationDefault("HTTP_TIMEOUT", 20*time.Second),
		DatabaseURL:    os.Getenv("DB_URL"),
		MongoURI:       os.Getenv("MONGODB_URI"),
		MongoDatabase:  getEnvDefault("MONGODB_DATABASE", "assistant"),
		HistoryLimit:   getEnvIntDefault("CHAT_HISTORY_LIMIT", 0),
		ElevenAPIKey:   os.Getenv("ELEVEN_API_KEY"),
		ElevenVoiceID:  os.Getenv("ELEVEN_VOICE_ID"),
		ElevenModel:    getEnvDefault("ELEVEN_MODEL_ID", "eleven_multilingual_v2"),
		DataDir:        getEnvDefault("ASSISTANT_DATA_DIR", ".assistant"),
		StorageDriver:  getEnvDefault("ASSISTANT_STORAGE", "file"),
		Voice:          getEnvDefault("ASSISTANT_VOICE", "English_(America)"),
		SpeechBinary:   getEnvDefault("ASSISTANT_SPEECH_BIN", "espeak-ng"),
		ListenTimeout:  getEnvDurationDefault("ASSISTANT_LISTEN_TIMEOUT", 15*time.Second),
		SearchURL:      getEnvDefault("ASSISTANT_SEARCH_URL", "https://www.google.com/search?q="),
		ServerURL:      os.Getenv("ASSISTANT_SERVER_URL"),
		Token:          os.Getenv("ASSISTANT_TOKEN"),
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// bare numbers are seconds
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
