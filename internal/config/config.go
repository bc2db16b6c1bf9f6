package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ArowuTest/raffle-backend/pkg/jwt"
)

// Storage drivers
const (
	StorageMongoDB = "mongodb"
	StorageBolt    = "bolt"
	StorageMemory  = "memory"
)

var supportedStorage = map[string]struct{}{
	StorageMongoDB: {},
	StorageBolt:    {},
	StorageMemory:  {},
}

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Lottery  LotteryConfig
	Transfer TransferConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string
	// Path of the bolt database file
	Path string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// LotteryConfig holds the lottery policy
type LotteryConfig struct {
	// ContractID is the only identity allowed to call init
	ContractID    string
	RoundDuration time.Duration
	MinTickets    uint32
	MinPlayers    uint32
	// RandomSeed seeds the draw. Anyone who knows it can predict winners.
	RandomSeed string
}

// TransferConfig holds payout gateway configuration
type TransferConfig struct {
	BaseURL string
	APIKey  string
	MockAPI bool
}

// Load loads configuration from .env, config files and environment variables.
// Environment variables use "_" for nesting, e.g. LOTTERY_MINTICKETS.
func Load(paths ...string) (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = GetEnvAsSlice("RAFFLE_CONFIG_PATHS", ",", []string{".", "./config"})
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values viper cannot check for us
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if _, ok := supportedStorage[c.Storage.Driver]; !ok {
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == StorageBolt && c.Storage.Path == "" {
		return errors.New("storage path is required for the bolt driver")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required")
	}
	if c.Lottery.ContractID == "" {
		return errors.New("lottery contract id is required")
	}
	if c.Lottery.RoundDuration <= 0 {
		return errors.New("lottery round duration must be positive")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("Storage.Driver", StorageBolt)
	v.SetDefault("Storage.Path", "raffle.db")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("MongoDB.Database", "raffle")
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", jwt.DefaultExpiry)
	v.SetDefault("Lottery.ContractID", "raffle.near")
	v.SetDefault("Lottery.RoundDuration", 48*time.Hour)
	v.SetDefault("Lottery.MinTickets", 5)
	v.SetDefault("Lottery.MinPlayers", 2)
	v.SetDefault("Lottery.RandomSeed", "raffle")
	v.SetDefault("Transfer.BaseURL", "")
	v.SetDefault("Transfer.APIKey", "")
	v.SetDefault("Transfer.MockAPI", true)
	v.SetDefault("LogLevel", "info")
}
