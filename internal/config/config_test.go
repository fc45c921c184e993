package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "proj-test")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/sa.json")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test_123")
	t.Setenv("STRIPE_PRICE_PRO_MONTH", "price_month")
	t.Setenv("STRIPE_PRICE_PRO_YEAR", "price_year")
	t.Setenv("STRIPE_PRICE_CREDITS_100", "price_credits")
	t.Setenv("CLIENT_URL", "http://localhost:3000")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "http://localhost:3000", cfg.AppURL)
	assert.Empty(t, cfg.FunctionsBaseURL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("APP_URL", "https://app.example.test")
	t.Setenv("FUNCTIONS_BASE_URL", "https://us-central1-proj-test.cloudfunctions.net")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "https://app.example.test", cfg.AppURL)
	assert.Equal(t, "https://us-central1-proj-test.cloudfunctions.net", cfg.FunctionsBaseURL)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	for _, key := range []string{
		"FIREBASE_PROJECT_ID",
		"STRIPE_SECRET_KEY",
		"STRIPE_WEBHOOK_SECRET",
		"STRIPE_PRICE_PRO_MONTH",
		"STRIPE_PRICE_PRO_YEAR",
		"STRIPE_PRICE_CREDITS_100",
		"CLIENT_URL",
	} {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, "")

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadConfig_Base64CredentialsAccepted(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "eyJmYWtlIjoic2EifQ==")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.GoogleApplicationCredentials)
	assert.NotEmpty(t, cfg.FirebaseServiceAccountJSONBase64)
}

func TestLoadConfig_MissingAllCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := LoadConfig()
	require.Error(t, err)
}
