package config

// DynamoDBConfig holds table and index names for the durable store.
type DynamoDBConfig struct {
	Region string `mapstructure:"region" validate:"required"`
	// Endpoint overrides the service endpoint, for local stacks.
	Endpoint      string `mapstructure:"endpoint"`
	TenantsTable  string `mapstructure:"tenants_table" validate:"required"`
	UsageTable    string `mapstructure:"usage_table" validate:"required"`
	EventsTable   string `mapstructure:"events_table" validate:"required"`
	CustomerIndex string `mapstructure:"customer_index" validate:"required"`
}
