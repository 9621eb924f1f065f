package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/NethermindEth/magi/ai"
	"github.com/NethermindEth/magi/communication"
	"github.com/NethermindEth/magi/consensus"
)

// Config holds all council configuration.
type Config struct {
	APIPort int           `yaml:"api_port"`
	LLM     LLMConfig     `yaml:"llm"`
	Council CouncilConfig `yaml:"council"`
	Storage StorageConfig `yaml:"storage"`
	NATS    NATSConfig    `yaml:"nats"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig selects the model that plays the council.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // gemini, openai
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	MaxAttempts int     `yaml:"max_attempts"`
	Backoff     string  `yaml:"backoff"`
}

// CouncilConfig tunes the offline simulator.
type CouncilConfig struct {
	SimulationDelay string `yaml:"simulation_delay"`
}

// StorageConfig configures the session store.
type StorageConfig struct {
	DataDir  string `yaml:"data_dir"`
	InMemory bool   `yaml:"in_memory"`
}

// NATSConfig enables event publishing over NATS when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	llm := ai.DefaultLLMConfig()
	return &Config{
		APIPort: 3000,
		LLM: LLMConfig{
			Provider:    llm.Provider,
			MaxTokens:   llm.MaxTokens,
			Temperature: llm.Temperature,
			MaxAttempts: 3,
			Backoff:     "1s",
		},
		Council: CouncilConfig{
			SimulationDelay: consensus.DefaultSimulationDelay.String(),
		},
		Storage: StorageConfig{
			DataDir: "./data/sessions",
		},
		NATS: NATSConfig{
			Subject: communication.DefaultSubject,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and the environment, each
// overriding the previous.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// a missing .env is normal
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MAGI_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("MAGI_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case ai.ProviderOpenAI:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			c.LLM.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
	}
	if v := os.Getenv("MAGI_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAGI_API_PORT %q: %w", v, err)
		}
		c.APIPort = port
	}
	if v := os.Getenv("MAGI_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := c.Backoff(); err != nil {
		return err
	}
	if _, err := c.SimulationDelay(); err != nil {
		return err
	}
	switch c.LLM.Provider {
	case "", ai.ProviderGemini, ai.ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("api_port %d out of range", c.APIPort)
	}
	return nil
}

// Backoff parses llm.backoff.
func (c *Config) Backoff() (time.Duration, error) {
	return parseDuration("llm.backoff", c.LLM.Backoff, time.Second)
}

// SimulationDelay parses council.simulation_delay.
func (c *Config) SimulationDelay() (time.Duration, error) {
	return parseDuration("council.simulation_delay", c.Council.SimulationDelay, consensus.DefaultSimulationDelay)
}

// HasAPIKey reports whether a model backend can be used.
func (c *Config) HasAPIKey() bool {
	return c.LLM.APIKey != ""
}

// AIConfig converts the LLM section for the ai package.
func (c *Config) AIConfig() ai.LLMConfig {
	return ai.LLMConfig{
		Provider:    c.LLM.Provider,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		MaxTokens:   c.LLM.MaxTokens,
		Temperature: c.LLM.Temperature,
	}
}

// RetryPolicy returns the deliberation retry policy.
func (c *Config) RetryPolicy() ai.RetryPolicy {
	p := ai.DeliberationPolicy()
	if c.LLM.MaxAttempts > 0 {
		p.MaxAttempts = c.LLM.MaxAttempts
	}
	if d, err := c.Backoff(); err == nil {
		p.Backoff = d
	}
	return p
}

// ReportPolicy returns the report retry policy.
func (c *Config) ReportPolicy() ai.RetryPolicy {
	p := ai.ReportPolicy()
	p.MaxAttempts = c.RetryPolicy().MaxAttempts
	p.Backoff = c.RetryPolicy().Backoff
	return p
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return d, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
