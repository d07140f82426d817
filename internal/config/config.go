package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/zeroechelon/outpost/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	DynamoDB   DynamoDBConfig   `mapstructure:"dynamodb" validate:"required"`
	Stripe     StripeConfig     `mapstructure:"stripe" validate:"required"`
	Quota      QuotaConfig      `mapstructure:"quota" validate:"required"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
	// AppURL is the public base URL used to build checkout and portal
	// redirect targets.
	AppURL string `mapstructure:"app_url" validate:"required,url"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/outpost")

	v.SetEnvPrefix("OUTPOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.app_url", "https://outpost.zeroechelon.com")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("dynamodb.region", "us-east-1")
	v.SetDefault("dynamodb.tenants_table", "outpost-tenants-prod")
	v.SetDefault("dynamodb.usage_table", "outpost-usage-prod")
	v.SetDefault("dynamodb.events_table", "outpost-webhook-events-prod")
	v.SetDefault("dynamodb.customer_index", "payment_customer_id-index")
	v.SetDefault("quota.ceilings", DefaultCeilings())
	v.SetDefault("sentry.sample_rate", 1.0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Quota.Validate()
}

// GetDefaultConfig returns a default configuration for local development
// and for deterministic tests that do not want process-wide state.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server: ServerConfig{
			Address: ":8080",
			AppURL:  "https://outpost.zeroechelon.com",
		},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		DynamoDB: DynamoDBConfig{
			Region:        "us-east-1",
			TenantsTable:  "outpost-tenants-test",
			UsageTable:    "outpost-usage-test",
			EventsTable:   "outpost-webhook-events-test",
			CustomerIndex: "payment_customer_id-index",
		},
		Stripe: StripeConfig{
			SecretKey:     "sk_test_dummy",
			WebhookSecret: "whsec_dummy",
			Prices: map[string]string{
				"free":       "price_free",
				"pro":        "price_pro",
				"enterprise": "price_enterprise",
			},
		},
		Quota: QuotaConfig{Ceilings: DefaultCeilings()},
	}
}
