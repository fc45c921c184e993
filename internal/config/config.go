package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	StripeSecretKey                  string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret              string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripePriceProMonth              string `mapstructure:"STRIPE_PRICE_PRO_MONTH"`
	StripePriceProYear               string `mapstructure:"STRIPE_PRICE_PRO_YEAR"`
	StripePriceCredits100            string `mapstructure:"STRIPE_PRICE_CREDITS_100"`
	AppURL                           string `mapstructure:"APP_URL"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	// FunctionsBaseURL is the region-qualified base URL of the legacy billing
	// functions (protocol, host, project ID and region). When set, the relay
	// route under /api/functions is mounted.
	FunctionsBaseURL string `mapstructure:"FUNCTIONS_BASE_URL"`
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("APP_URL", "http://localhost:3000")

	// Bind environment variables
	viper.BindEnv("PORT")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	viper.BindEnv("STRIPE_SECRET_KEY")
	viper.BindEnv("STRIPE_WEBHOOK_SECRET")
	viper.BindEnv("STRIPE_PRICE_PRO_MONTH")
	viper.BindEnv("STRIPE_PRICE_PRO_YEAR")
	viper.BindEnv("STRIPE_PRICE_CREDITS_100")
	viper.BindEnv("APP_URL")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("FUNCTIONS_BASE_URL")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.StripePriceProMonth == "" {
		return nil, errors.New("STRIPE_PRICE_PRO_MONTH is required")
	}
	if cfg.StripePriceProYear == "" {
		return nil, errors.New("STRIPE_PRICE_PRO_YEAR is required")
	}
	if cfg.StripePriceCredits100 == "" {
		return nil, errors.New("STRIPE_PRICE_CREDITS_100 is required")
	}
	if cfg.ClientURL == "" {
		return nil, errors.New("CLIENT_URL is required")
	}

	return &cfg, nil
}
