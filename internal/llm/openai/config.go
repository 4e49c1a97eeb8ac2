package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/roastume/internal/llm"
)

// Config for an OpenAI-compatible chat/completions client (DeepSeek by default).
type Config struct {
	APIKey      string        // if empty, falls back to env DEEPSEEK_API_KEY
	BaseURL     string        // default https://api.deepseek.com/v1
	Model       string        // e.g., "deepseek-chat"
	Temperature float32       // 0..2
	MaxTokens   int           // completion cap
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	envelope   *jsonschema.Schema
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	// The schema is a package constant; failing to compile it is a programming error.
	envelope, err := llm.CompileSchema(llm.ChatCompletionSchema())
	if err != nil {
		panic(err)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		envelope:   envelope,
		log:        logger,
	}
}
