// Package config loads the pipeline configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sentinel/pkg/sentinel/internalerr"
)

// Provider names accepted in Config.Provider.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "2s" as well as bare integers, which are read as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler. Bare integers decode as
// string scalars too, so they are recognized after ParseDuration rather
// than by a separate decode.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: bad duration: %w", internalerr.ErrInvalidConfig)
	}
	if parsed, err := time.ParseDuration(s); err == nil {
		*d = Duration(parsed)
		return nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	return fmt.Errorf("config: bad duration %q: %w", s, internalerr.ErrInvalidConfig)
}

// Config holds all adjustable parameters.
type Config struct {
	Provider string `yaml:"provider"`

	Ollama struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"ollama"`

	OpenAI struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"` // falls back to OPENAI_API_KEY
		Model   string `yaml:"model"`
	} `yaml:"openai"`

	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	Retry struct {
		Attempts  int      `yaml:"attempts"`
		BaseDelay Duration `yaml:"base_delay"`
	} `yaml:"retry"`

	// Topics is the master taxonomy the run starts from.
	Topics []string `yaml:"topics"`

	// Threshold is the hit count that promotes a discovered topic.
	Threshold int `yaml:"threshold"`

	// MinConfidence is the floor below which assignments are worth
	// flagging in reports. The pipeline keeps every assignment.
	MinConfidence float64 `yaml:"min_confidence"`

	Input struct {
		Path       string `yaml:"path"`
		IDColumn   string `yaml:"id_column"`
		DateColumn string `yaml:"date_column"`
		TextColumn string `yaml:"text_column"`
	} `yaml:"input"`

	OutputPath string `yaml:"output_path"`
	StorePath  string `yaml:"store_path"`

	Synthetic struct {
		Rows        int     `yaml:"rows"`
		HiddenTopic string  `yaml:"hidden_topic"`
		HiddenRatio float64 `yaml:"hidden_ratio"`
		Seed        int64   `yaml:"seed"`
	} `yaml:"synthetic"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Provider = ProviderOllama
	c.Ollama.BaseURL = "http://localhost:11434"
	c.Ollama.Model = "llama3"
	c.OpenAI.BaseURL = "https://api.openai.com/v1/chat/completions"
	c.OpenAI.Model = "gpt-4o-mini"
	c.Temperature = 0.1
	c.MaxTokens = 512
	c.Retry.Attempts = 3
	c.Retry.BaseDelay = Duration(2 * time.Second)
	c.Topics = []string{
		"Acting Performance",
		"Plot & Story",
		"Visual Effects",
		"Cinematography",
		"Soundtrack & Score",
		"Direction",
		"Dialogue",
	}
	c.Threshold = 5
	c.MinConfidence = 0.7
	c.Input.Path = "data/movie_reviews.csv"
	c.Input.IDColumn = "id"
	c.Input.DateColumn = "date"
	c.Input.TextColumn = "review_text"
	c.OutputPath = "output/processed_reviews.csv"
	c.StorePath = "output/sentinel.db"
	c.Synthetic.Rows = 150
	c.Synthetic.HiddenTopic = "Pacing Issues"
	c.Synthetic.HiddenRatio = 0.15
	c.Synthetic.Seed = 42
	return c
}

// Load reads a YAML config file over the defaults and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that the configuration is runnable.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOllama:
		if c.Ollama.BaseURL == "" || c.Ollama.Model == "" {
			return fmt.Errorf("config: ollama base_url and model required: %w", internalerr.ErrInvalidConfig)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("config: openai api_key (or OPENAI_API_KEY) required: %w", internalerr.ErrInvalidConfig)
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("config: openai model required: %w", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("config: unknown provider %q: %w", c.Provider, internalerr.ErrInvalidConfig)
	}

	if c.Threshold < 1 {
		return fmt.Errorf("config: threshold must be >= 1, got %d: %w", c.Threshold, internalerr.ErrInvalidConfig)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("config: retry attempts must be >= 1, got %d: %w", c.Retry.Attempts, internalerr.ErrInvalidConfig)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("config: min_confidence must be in [0,1]: %w", internalerr.ErrInvalidConfig)
	}
	if c.Input.TextColumn == "" {
		return fmt.Errorf("config: input text_column required: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}
