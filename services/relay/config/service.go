package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "RELAY_"

var (
	ErrMissingAPIKey      = errors.New("openai api key is not set")
	ErrMissingAssistantID = errors.New("assistant id is not set")
)

type OpenAI struct {
	APIKey      string `json:"api_key,omitempty" koanf:"api_key"`
	AssistantID string `json:"assistant_id,omitempty" koanf:"assistant_id"`
	BaseURL     string `json:"base_url,omitempty" koanf:"base_url"`
	OrgID       string `json:"org_id,omitempty" koanf:"org_id"`
}

type HttpServer struct {
	Address string `json:"address,omitempty" koanf:"address"`
}

type Poll struct {
	Interval    time.Duration `json:"interval,omitempty" koanf:"interval"`
	MaxAttempts int           `json:"max_attempts,omitempty" koanf:"max_attempts"`
}

type Log struct {
	Level string `json:"level,omitempty" koanf:"level"`
}

type Tracing struct {
	AgentHost   string `json:"agent_host,omitempty" koanf:"agent_host"`
	ServiceName string `json:"service_name,omitempty" koanf:"service_name"`
}

type RelayConfig struct {
	OpenAI  OpenAI     `json:"openai,omitempty" koanf:"openai"`
	Http    HttpServer `json:"http,omitempty" koanf:"http"`
	Poll    Poll       `json:"poll,omitempty" koanf:"poll"`
	Log     Log        `json:"log,omitempty" koanf:"log"`
	Tracing Tracing    `json:"tracing,omitempty" koanf:"tracing"`
}

func Default() RelayConfig {
	return RelayConfig{
		Http: HttpServer{Address: ":8000"},
		Poll: Poll{
			Interval:    time.Second,
			MaxAttempts: 60,
		},
		Log:     Log{Level: "info"},
		Tracing: Tracing{ServiceName: "assistant-relay"},
	}
}

// well-known variables that don't follow the RELAY_ prefix convention
var envAliases = map[string]string{
	"OPENAI_API_KEY":      "openai.api_key",
	"ASSISTANT_ID":        "openai.assistant_id",
	"OPENAI_BASE_URL":     "openai.base_url",
	"OPENAI_ORG_ID":       "openai.org_id",
	"JAEGER_AGENT_HOST":   "tracing.agent_host",
	"JAEGER_SERVICE_NAME": "tracing.service_name",
}

// envKey maps an environment variable name to a config path, or "" to skip it.
func envKey(name string) string {
	if key, ok := envAliases[name]; ok {
		return key
	}
	if !strings.HasPrefix(name, envPrefix) {
		return ""
	}

	name = strings.TrimPrefix(name, envPrefix)
	return strings.ReplaceAll(strings.ToLower(name), "__", ".")
}

// Load builds the configuration from defaults, an optional TOML file, an optional
// .env file and the process environment, in that order of precedence.
func Load(path, dotenv string) (RelayConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return RelayConfig{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return RelayConfig{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil {
			var pathErr *fs.PathError
			if !errors.As(err, &pathErr) {
				return RelayConfig{}, fmt.Errorf("load env file %s: %w", dotenv, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return RelayConfig{}, fmt.Errorf("load environment: %w", err)
	}

	var cnf RelayConfig
	if err := k.Unmarshal("", &cnf); err != nil {
		return RelayConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cnf, nil
}

func (c RelayConfig) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.OpenAI.AssistantID) == "" {
		return ErrMissingAssistantID
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("poll max attempts must be positive, got %d", c.Poll.MaxAttempts)
	}
	return nil
}
