package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"3333"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Public base URL of this API, used to build the LINE OAuth callback.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:3333"`
	// Frontend origin users are redirected back to after login.
	SiteURL string `envconfig:"SITE_URL" default:"https://satduangdao.com"`

	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	LineChannelID     string `envconfig:"LINE_CHANNEL_ID"`
	LineChannelSecret string `envconfig:"LINE_CHANNEL_SECRET"`

	// Overridable so tests can point the auth flow at a fake LINE.
	LineAuthorizeURL string `envconfig:"LINE_AUTHORIZE_URL" default:"https://access.line.me/oauth2/v2.1/authorize"`
	LineTokenURL     string `envconfig:"LINE_TOKEN_URL" default:"https://api.line.me/oauth2/v2.1/token"`
	LineProfileURL   string `envconfig:"LINE_PROFILE_URL" default:"https://api.line.me/v2/profile"`

	MetricsUser string `envconfig:"METRICS_USER"`
	MetricsPass string `envconfig:"METRICS_PASS"`
	PprofSecret string `envconfig:"PPROF_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
