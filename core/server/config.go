package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	// Empty disables authentication (local development).
	ApiKey string `mapstructure:"api_key" default:""`
	// StoreID identifies the retail store this instance counts for.
	// It is attached to log entries and archived session summaries.
	StoreID string `mapstructure:"store_id" default:"store-001"`
}
