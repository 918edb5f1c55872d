package models

import "time"

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig
	Engine    EngineConfig
	Scheduler SchedulerConfig
	Server    ServerConfig
	Redis     RedisConfig
	Nats      NatsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Backend         string // "sqlite" or "postgres"
	Path            string
	PostgresURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
}

// EngineConfig holds bidding rules and contention limits
type EngineConfig struct {
	SnipingWindow     time.Duration
	ExtensionDuration time.Duration
	LockTimeout       time.Duration
	MaxCommitAttempts int
}

// SchedulerConfig holds lifecycle scheduler settings
type SchedulerConfig struct {
	Enabled         bool // run the scheduler inside the HTTP server
	TickInterval    time.Duration
	OutboxInterval  time.Duration
	OutboxBatchSize int
	ListingsFile    string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig holds the pub/sub connection for live auction events.
// An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NatsConfig holds the JetStream connection used to notify the order side.
// An empty URL disables it.
type NatsConfig struct {
	URL           string
	Stream        string
	SubjectPrefix string
}
