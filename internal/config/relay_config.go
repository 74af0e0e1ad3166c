package config

import "time"

const (
	// Websocket transport
	DefaultWriteWait      = 10 * time.Second
	DefaultPongWait       = 60 * time.Second
	DefaultMaxMessageSize = 4096
	DefaultSendBuffer     = 256

	// Persistence
	DefaultPersistTimeout  = 5 * time.Second
	DefaultSessionCacheTTL = 10 * time.Minute

	// Database pool
	DefaultDBPort     = 5432
	DefaultDBSSLMode  = "disable"
	DefaultMaxConns   = 10
	DefaultMinConns   = 1
	DefaultEventTopic = "confusense:meeting:"
)

// Relay holds the websocket and persistence tunables of the realtime relay.
type Relay struct {
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
}

// DefaultRelay returns the relay tunables used when nothing is configured.
func DefaultRelay() Relay {
	return Relay{
		WriteWait:      DefaultWriteWait,
		PongWait:       DefaultPongWait,
		PingPeriod:     (DefaultPongWait * 9) / 10,
		MaxMessageSize: DefaultMaxMessageSize,
		SendBuffer:     DefaultSendBuffer,
		PersistTimeout: DefaultPersistTimeout,
	}
}
