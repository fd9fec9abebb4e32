package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Token backends
const (
	TokenMemory = "memory"
	TokenERC20  = "erc20"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`  // pg_advisory_lock key serializing ledger calls across processes
}

// StorageConfig selects the ledger storage backend
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // memory or postgres
}

// NATSConfig holds NATS JetStream configuration.
// An empty URL disables event publishing to NATS.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

// EthereumConfig holds Ethereum-specific configuration
type EthereumConfig struct {
	RPCURL              string        `mapstructure:"rpc_url"`
	CustodyPrivateKey   string        `mapstructure:"custody_private_key"` // hex, with or without 0x
	GasMultiplier       float64       `mapstructure:"gas_multiplier"`
	ReceiptTimeout      time.Duration `mapstructure:"receipt_timeout"`
	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval"`
}

// TokenConfig selects the token transfer backend
type TokenConfig struct {
	Backend        string   `mapstructure:"backend"`         // memory or erc20
	CustodyAddress string   `mapstructure:"custody_address"` // custody of the memory backend
	Tokens         []string `mapstructure:"tokens"`          // tokens known to the memory backend
}

// LedgerConfig holds the contract policy values
type LedgerConfig struct {
	VotingPeriod      time.Duration `mapstructure:"voting_period"`
	FundingPeriod     time.Duration `mapstructure:"funding_period"`
	MilestoneCountMin uint32        `mapstructure:"milestone_count_min"` // exclusive lower bound
	MilestoneCountMax uint32        `mapstructure:"milestone_count_max"` // inclusive upper bound
	VoteQuorum        uint32        `mapstructure:"vote_quorum"`
	EntryTTLBump      time.Duration `mapstructure:"entry_ttl_bump"`
	EntryTTLThreshold time.Duration `mapstructure:"entry_ttl_threshold"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey     string        `mapstructure:"jwt_public_key"`
	APIKeys          []string      `mapstructure:"api_keys"`           // "operator:key" or a bare key
	SignatureMaxSkew time.Duration `mapstructure:"signature_max_skew"` // accepted age of X-Signature-Timestamp
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// RefundSweeperConfig holds configuration for the refund sweeper
type RefundSweeperConfig struct {
	Interval             time.Duration `mapstructure:"interval"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxElapsedTime  time.Duration `mapstructure:"retry_max_elapsed_time"`
	PurgeExpired         bool          `mapstructure:"purge_expired"`
	Worker               WorkerConfig  `mapstructure:"worker"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Storage    StorageConfig  `mapstructure:"storage"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Token      TokenConfig    `mapstructure:"token"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Ledger     LedgerConfig   `mapstructure:"ledger"`
	Auth       AuthConfig     `mapstructure:"auth"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Token         TokenConfig         `mapstructure:"token"`
	Ethereum      EthereumConfig      `mapstructure:"ethereum"`
	Ledger        LedgerConfig        `mapstructure:"ledger"`
	RefundSweeper RefundSweeperConfig `mapstructure:"refund_sweeper"`
}

// setLedgerDefaults sets the defaults shared by every program running the ledger
func setLedgerDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", StoragePostgres)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.advisory_lock_key", 0x63726f77)
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "CROWDFUND_EVENTS")
	v.SetDefault("nats.max_age", "720h")
	v.SetDefault("token.backend", TokenERC20)
	v.SetDefault("ethereum.gas_multiplier", 1.2)
	v.SetDefault("ethereum.receipt_timeout", "2m")
	v.SetDefault("ethereum.receipt_poll_interval", "1s")
	v.SetDefault("ledger.voting_period", "720h")
	v.SetDefault("ledger.funding_period", "720h")
	v.SetDefault("ledger.milestone_count_min", 4)
	v.SetDefault("ledger.milestone_count_max", 100)
	v.SetDefault("ledger.vote_quorum", 1)
	v.SetDefault("ledger.entry_ttl_bump", "720h")
	v.SetDefault("ledger.entry_ttl_threshold", "696h")
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 150)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("nats.connection_name", "crowdfund-api")
	v.SetDefault("auth.signature_max_skew", "5m")
	setLedgerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateBackends(config.Storage, config.Database, config.Token, config.Ethereum); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.connection_name", "crowdfund-sweeper")
	v.SetDefault("refund_sweeper.interval", "15m")
	v.SetDefault("refund_sweeper.retry_initial_interval", "15s")
	v.SetDefault("refund_sweeper.retry_max_elapsed_time", "10m")
	v.SetDefault("refund_sweeper.purge_expired", true)
	v.SetDefault("refund_sweeper.worker.pool_size", 4)
	v.SetDefault("refund_sweeper.worker.queue_size", 100)
	setLedgerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateBackends(cfg.Storage, cfg.Database, cfg.Token, cfg.Ethereum); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateBackends checks the backend selection and the fields each backend requires
func validateBackends(storage StorageConfig, db DatabaseConfig, token TokenConfig, eth EthereumConfig) error {
	switch storage.Backend {
	case StorageMemory:
	case StoragePostgres:
		if db.Host == "" {
			return errors.New("database.host is required")
		}
		if db.DBName == "" {
			return errors.New("database.dbname is required")
		}
	default:
		return fmt.Errorf("unknown storage.backend: %q", storage.Backend)
	}

	switch token.Backend {
	case TokenMemory:
		if token.CustodyAddress == "" {
			return errors.New("token.custody_address is required")
		}
	case TokenERC20:
		if eth.RPCURL == "" {
			return errors.New("ethereum.rpc_url is required")
		}
		if eth.CustodyPrivateKey == "" {
			return errors.New("ethereum.custody_private_key is required")
		}
	default:
		return fmt.Errorf("unknown token.backend: %q", token.Backend)
	}

	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sweeper/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_CROWDFUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Storage
		"storage.backend",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		"database.advisory_lock_key",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.max_age",
		// Token
		"token.backend",
		"token.custody_address",
		"token.tokens",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.custody_private_key",
		"ethereum.gas_multiplier",
		"ethereum.receipt_timeout",
		"ethereum.receipt_poll_interval",
		// Ledger policy
		"ledger.voting_period",
		"ledger.funding_period",
		"ledger.milestone_count_min",
		"ledger.milestone_count_max",
		"ledger.vote_quorum",
		"ledger.entry_ttl_bump",
		"ledger.entry_ttl_threshold",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		"auth.signature_max_skew",
		// Refund sweeper
		"refund_sweeper.interval",
		"refund_sweeper.retry_initial_interval",
		"refund_sweeper.retry_max_elapsed_time",
		"refund_sweeper.purge_expired",
		"refund_sweeper.worker.pool_size",
		"refund_sweeper.worker.queue_size",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
