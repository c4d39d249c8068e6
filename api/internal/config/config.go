package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	Engine        string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	HTTPTimeout   time.Duration

	RetryMaxAttempts int
	RetryDelay       time.Duration

	TelegramBotToken string
	WebhookURL       string

	LogMode     string
	RenderWidth int
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("engine", "gemini")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("http_timeout", 60*time.Second)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.delay", 2*time.Second)
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("webhook_url", "")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("render.width", 80)
}

// Load resolves configuration with precedence: defaults < config file < env.
// A .env file in the working directory (or the given dotenv paths) is loaded
// into the process environment first; variables already set win.
func Load(v *viper.Viper, dotenv ...string) (*Config, error) {
	if err := loadDotEnv(dotenv...); err != nil {
		return nil, err
	}

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "study-helper"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "study-helper"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// VITE_GEMINI_API_KEY from a Vite-style .env is accepted as a fallback
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "VITE_GEMINI_API_KEY")

	return FromViper(v), nil
}

// FromViper maps an already populated viper instance onto Config.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port: strings.TrimSpace(v.GetString("port")),

		Engine:        strings.ToLower(strings.TrimSpace(v.GetString("engine"))),
		GeminiAPIKey:  strings.TrimSpace(v.GetString("gemini_api_key")),
		GeminiModel:   strings.TrimSpace(v.GetString("gemini_model")),
		GeminiBaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("gemini_base_url")), "/"),
		HTTPTimeout:   v.GetDuration("http_timeout"),

		RetryMaxAttempts: v.GetInt("retry.max_attempts"),
		RetryDelay:       v.GetDuration("retry.delay"),

		TelegramBotToken: strings.TrimSpace(v.GetString("telegram_bot_token")),
		WebhookURL:       strings.TrimSpace(v.GetString("webhook_url")),

		LogMode:     v.GetString("log_mode"),
		RenderWidth: v.GetInt("render.width"),
	}
}

// CheckValidity reports every problem found, joined. A missing Gemini key is
// not a configuration error: it surfaces as a failed explanation instead.
func (c *Config) CheckValidity() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	switch c.Engine {
	case "gemini", "genai":
	default:
		errs = append(errs, fmt.Errorf("engine must be gemini or genai, got %q", c.Engine))
	}
	if c.GeminiModel == "" {
		errs = append(errs, errors.New("gemini_model is required"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http_timeout must be greater than 0"))
	}
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, errors.New("retry.max_attempts must be at least 1"))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, errors.New("retry.delay must not be negative"))
	}
	if c.RenderWidth < 20 {
		errs = append(errs, errors.New("render.width must be at least 20"))
	}
	return errors.Join(errs...)
}

func loadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
