package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr            string        `env:"HTTP_ADDR"            envDefault:":8080"`
	LLMBaseURL          string        `env:"LLM_BASE_URL"         envDefault:"https://api.groq.com/openai/v1/"`
	LLMModel            string        `env:"LLM_MODEL"            envDefault:"gemma2-9b-it"`
	LLMAPIKey           string        `env:"LLM_API_KEY"`
	HTTPClientTimeout   time.Duration `env:"HTTP_CLIENT_TIMEOUT"  envDefault:"30s"`
	MaxPageBytes        int64         `env:"MAX_PAGE_BYTES"       envDefault:"5242880"`
	TranscriptLanguages []string      `env:"TRANSCRIPT_LANGUAGES" envDefault:"en"`
	TelegramToken       string        `env:"TELEGRAM_TOKEN"`
	AllowedUsers        []int64       `env:"ALLOWED_USERS"`
	LogLevel            slog.Level    `env:"LOG_LEVEL"            envDefault:"info"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return env.ParseAs[Config]()
}

func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}
