package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	envFile = "FURSA_ENV_FILE"

	envTwitterAPIKey       = "FURSA_TWITTER_CONSUMER_KEY"
	envTwitterAPISecret    = "FURSA_TWITTER_CONSUMER_SECRET"
	envTwitterAccessToken  = "FURSA_TWITTER_ACCESS_TOKEN"
	envTwitterAccessSecret = "FURSA_TWITTER_ACCESS_TOKEN_SECRET"

	// TwitterModeBackend posts through the FursaConnect backend.
	TwitterModeBackend = "backend"
	// TwitterModeDirect posts straight to the X API with the user's own keys.
	TwitterModeDirect = "direct"
)

// Config is the runtime configuration of the fursa CLI.
type Config struct {
	BackendURL      string        `env:"FURSA_BACKEND_URL" envDefault:"https://fursaconnet-production.up.railway.app" validate:"required,url"`
	HTTPTimeout     time.Duration `env:"FURSA_HTTP_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	SessionFile     string        `env:"FURSA_SESSION_FILE"`
	UserID          string        `env:"FURSA_USER_ID"`
	RecorderWorkers int           `env:"FURSA_RECORDER_WORKERS" envDefault:"4" validate:"min=1,max=64"`
	TwitterMode     string        `env:"FURSA_TWITTER_MODE" envDefault:"backend" validate:"oneof=backend direct"`

	Twitter TwitterCredentials
}

// TwitterCredentials are OAuth 1.0a user-context keys used in direct mode.
type TwitterCredentials struct {
	APIKey       string `env:"FURSA_TWITTER_CONSUMER_KEY"`
	APISecret    string `env:"FURSA_TWITTER_CONSUMER_SECRET"`
	AccessToken  string `env:"FURSA_TWITTER_ACCESS_TOKEN"`
	AccessSecret string `env:"FURSA_TWITTER_ACCESS_TOKEN_SECRET"`
}

// Load reads the optional .env file and the process environment.
func Load() (Config, error) {
	path := strings.TrimSpace(os.Getenv(envFile))
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return parse(env.Options{})
}

// FromMap builds a configuration from an explicit environment.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.BackendURL = strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/")
	cfg.TwitterMode = strings.ToLower(strings.TrimSpace(cfg.TwitterMode))
	cfg.UserID = strings.TrimSpace(cfg.UserID)

	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and mode specific requirements.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.TwitterMode == TwitterModeDirect {
		var missing []string
		if strings.TrimSpace(c.Twitter.APIKey) == "" {
			missing = append(missing, envTwitterAPIKey)
		}
		if strings.TrimSpace(c.Twitter.APISecret) == "" {
			missing = append(missing, envTwitterAPISecret)
		}
		if strings.TrimSpace(c.Twitter.AccessToken) == "" {
			missing = append(missing, envTwitterAccessToken)
		}
		if strings.TrimSpace(c.Twitter.AccessSecret) == "" {
			missing = append(missing, envTwitterAccessSecret)
		}
		if len(missing) > 0 {
			return fursa.MissingEnvError{Provider: string(fursa.Twitter), Variables: missing}
		}
	}
	return nil
}

// BackendOptions derives backend client options. The cookie jar is supplied
// by the caller.
func (c Config) BackendOptions() backend.Options {
	return backend.Options{BaseURL: c.BackendURL, Timeout: c.HTTPTimeout}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "fursa", "session.json")
}
