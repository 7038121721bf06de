// Package config builds the client configuration from three layers, highest
// precedence last: built-in defaults, an optional YAML file, and environment
// variables prefixed ONBOARD_ where "__" separates sections
// (ONBOARD_API__BASE_URL sets api.base_url).  A .env file in the working
// directory is loaded into the environment first when present.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"

	"rhystmorgan/onboardTerm/internal/api"
	"rhystmorgan/onboardTerm/internal/i18n"
)

const (
	EnvPrefix = "ONBOARD_"
	// PathEnv names the YAML file when no path is passed to Load.
	PathEnv = EnvPrefix + "CONFIG"
)

type API struct {
	BaseURL    string        `koanf:"base_url"    validate:"required,url"`
	Timeout    time.Duration `koanf:"timeout"     validate:"gt=0"`
	RetryCount int           `koanf:"retry_count" validate:"gte=1,lte=10"`
	RetryDelay time.Duration `koanf:"retry_delay" validate:"gte=0"`
}

type UI struct {
	Locale string `koanf:"locale" validate:"oneof=en fr"`
}

type Log struct {
	Dir   string `koanf:"dir"   validate:"required"`
	Debug bool   `koanf:"debug"`
}

// Metrics is optional: an empty ListenAddr disables the /metrics endpoint.
type Metrics struct {
	ListenAddr string `koanf:"listen_addr" validate:"omitempty,hostname_port"`
}

type Config struct {
	API     API     `koanf:"api"`
	UI      UI      `koanf:"ui"`
	Log     Log     `koanf:"log"`
	Metrics Metrics `koanf:"metrics"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func defaults() map[string]any {
	return map[string]any{
		"api.base_url":        api.DefaultBaseURL,
		"api.timeout":         api.DefaultTimeout,
		"api.retry_count":     api.DefaultRetryCount,
		"api.retry_delay":     api.DefaultRetryDelay,
		"ui.locale":           string(i18n.English),
		"log.dir":             "logs",
		"log.debug":           false,
		"metrics.listen_addr": "",
	}
}

// Load merges defaults, the YAML file at path (or $ONBOARD_CONFIG), and the
// environment, then validates the result.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")
	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("config default %s: %w", key, err)
		}
	}

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps ONBOARD_API__BASE_URL to api.base_url.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) ToAPIConfig() api.Config {
	return api.Config{
		BaseURL:    c.API.BaseURL,
		Timeout:    c.API.Timeout,
		RetryCount: c.API.RetryCount,
		RetryDelay: c.API.RetryDelay,
	}
}

func (c *Config) Locale() i18n.Locale {
	return i18n.Locale(c.UI.Locale)
}

func GetDefaultConfig() *Config {
	return &Config{
		API: API{
			BaseURL:    api.DefaultBaseURL,
			Timeout:    api.DefaultTimeout,
			RetryCount: api.DefaultRetryCount,
			RetryDelay: api.DefaultRetryDelay,
		},
		UI:  UI{Locale: string(i18n.English)},
		Log: Log{Dir: "logs"},
	}
}
