package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

const (
	StorageDriverMongo  = "mongo"
	StorageDriverMemory = "memory"

	MailerDriverSMTP = "smtp"
	MailerDriverLog  = "log"
)

// AuthServiceConfig holds the configuration of the auth service.
type AuthServiceConfig struct {
	HTTPAddr        string        `env:"HTTP_ADDR"            envDefault:":8080"`
	RoutePrefix     string        `env:"AUTH_ROUTE_PREFIX"    envDefault:"/api/auth"`
	FrontendURL     string        `env:"FRONTEND_URL,notEmpty"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"     envDefault:"10s"`

	StorageDriver string      `env:"STORAGE_DRIVER" envDefault:"mongo"`
	Mongo         MongoConfig `envPrefix:"MONGO_"`

	Token TokenConfig `envPrefix:"TOKEN_"`

	// ResetSweepSchedule is a cron spec; empty disables the sweep.
	ResetSweepSchedule string `env:"RESET_SWEEP_SCHEDULE" envDefault:"@every 15m"`

	MailerDriver string `env:"MAILER_DRIVER" envDefault:"smtp"`

	Discovery      DiscoveryConfig `envPrefix:"CONSUL_"`
	GRPCHealthAddr string          `env:"GRPC_HEALTH_ADDR"`

	Log LogConfig `envPrefix:"LOG_"`
}

type MongoConfig struct {
	URI            string        `env:"URI"             envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"DATABASE"        envDefault:"tunehub"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

type TokenConfig struct {
	Issuer                   string        `env:"ISSUER"                      envDefault:"tunehub-auth"`
	SessionSecret            string        `env:"SESSION_SECRET,notEmpty"`
	SessionExpiresIn         time.Duration `env:"SESSION_EXPIRES_IN"          envDefault:"24h"`
	SessionExtendedExpiresIn time.Duration `env:"SESSION_EXTENDED_EXPIRES_IN" envDefault:"720h"`
	PasswordResetExpiresIn   time.Duration `env:"PASSWORD_RESET_EXPIRES_IN"   envDefault:"1h"`
}

type DiscoveryConfig struct {
	// Address of the Consul agent; empty disables registration.
	Address     string `env:"ADDRESS"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth-service"`
	ServiceID   string `env:"SERVICE_ID"`
	ServiceHost string `env:"SERVICE_HOST"`
}

type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	Pretty bool   `env:"PRETTY" envDefault:"false"`
}

// NewAuthServiceConfig parses the configuration from environment variables.
func NewAuthServiceConfig() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AuthServiceConfig) validate() error {
	if _, err := url.ParseRequestURI(c.FrontendURL); err != nil {
		return fmt.Errorf("invalid FRONTEND_URL: %w", err)
	}

	switch c.StorageDriver {
	case StorageDriverMongo, StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.MailerDriver {
	case MailerDriverSMTP, MailerDriverLog:
	default:
		return fmt.Errorf("unsupported MAILER_DRIVER %q", c.MailerDriver)
	}

	if len(c.Token.SessionSecret) < 32 {
		return errors.New("TOKEN_SESSION_SECRET must be at least 32 characters")
	}
	if c.Token.SessionExpiresIn <= 0 || c.Token.SessionExtendedExpiresIn <= 0 || c.Token.PasswordResetExpiresIn <= 0 {
		return errors.New("token lifetimes must be positive")
	}

	if c.ResetSweepSchedule != "" {
		if _, err := cron.ParseStandard(c.ResetSweepSchedule); err != nil {
			return fmt.Errorf("invalid RESET_SWEEP_SCHEDULE: %w", err)
		}
	}

	return nil
}
