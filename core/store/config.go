package store

// Config holds configuration for the session store.
type Config struct {
	// Driver selects the store backend (redis, memory).
	Driver string `mapstructure:"driver" default:"redis"`
	// Addr is the Redis server address.
	Addr string `mapstructure:"addr" default:"localhost:6379"`
	// Password is the Redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis database number.
	DB int `mapstructure:"db" default:"0"`
	// Key is the key under which the active session record is stored.
	Key string `mapstructure:"key" default:"cyclecount:active-session"`
}
