package config

// StripeConfig holds API credentials and the tier-to-price mapping for the
// payment provider.
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key" validate:"required"`
	WebhookSecret string `mapstructure:"webhook_secret" validate:"required"`
	// PortalConfigID optionally pins a customer portal configuration.
	PortalConfigID string `mapstructure:"portal_config_id"`
	// Prices maps a subscription tier to a Stripe price id.
	Prices map[string]string `mapstructure:"prices" validate:"required"`
	// MeteringEnabled turns on usage reporting to Stripe billing meters.
	MeteringEnabled bool `mapstructure:"metering_enabled"`
	// MeterEventName is the billing meter event name used when reporting.
	MeterEventName string `mapstructure:"meter_event_name"`
}
