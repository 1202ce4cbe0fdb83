package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from environment variables once at startup.
type Config struct {
	ServerAddr  string `env:"RUN_ADDRESS" env-default:":8080"`
	DatabaseDSN string `env:"DATABASE_URI"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"debug"`
	ShopName    string `env:"SHOP_NAME" env-default:"Body Mind Soul"`

	Razorpay RazorpayConfig
	Email    EmailConfig
}

// RazorpayConfig holds the gateway credentials. Only PublicKeyID may be
// exposed to browsers.
type RazorpayConfig struct {
	KeyID         string `env:"RAZORPAY_KEY_ID"`
	KeySecret     string `env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET"`
	PublicKeyID   string `env:"RAZORPAY_PUBLIC_KEY_ID"`
}

// EmailConfig holds the transactional email provider settings.
type EmailConfig struct {
	APIKey     string `env:"EMAIL_API_KEY"`
	APIURL     string `env:"EMAIL_API_URL" env-default:"https://api.brevo.com"`
	Sender     string `env:"EMAIL_SENDER"`
	TemplateID int64  `env:"EMAIL_TEMPLATE_ID"`
}

// New returns new Config read from the environment.
func New() (*Config, error) {
	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
