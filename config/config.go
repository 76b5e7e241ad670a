package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"dealer/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Wallet configuration
	WalletAddress   string // house wallet receiving user payments
	ChainGatewayURL string // HTTP API endpoint for chain access
	ChainAPIKey     string

	// Casino configuration
	HouseEdge         float64 // fraction of every bet accrued into the jackpot pool
	MinBetNano        int64
	MaxBetFraction    float64 // fraction of house balance allowed per bet
	CasinoCooldown    time.Duration
	PaymentMaxAge     time.Duration // oldest payment accepted at settlement
	AmountTolerance   float64       // accepted shortfall on incoming payments
	PaymentScanLimit  int           // recent transactions scanned per verification

	// Escrow configuration
	ProposalWindow  time.Duration // time to accept an open proposal
	PaymentWindow   time.Duration // time to pay after acceptance
	VerifiedRecency time.Duration // max age of a verification for release checks

	// API configuration
	APIPort int // local HTTP API for the frontend and operator tooling

	// Worker configuration
	ExpirySweepInterval time.Duration
	PollInterval        time.Duration
	ClaimRetentionDays  int // used-transaction rows kept before pruning

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Wallet
		WalletAddress:   os.Getenv("WALLET_ADDRESS"),
		ChainGatewayURL: getEnvWithDefault("CHAIN_GATEWAY_URL", "https://toncenter.com/api/v2"),
		ChainAPIKey:     os.Getenv("CHAIN_API_KEY"),

		// Casino defaults
		HouseEdge:        0.05,
		MinBetNano:       100_000_000, // 0.1 TON
		MaxBetFraction:   0.10,
		CasinoCooldown:   30 * time.Second,
		PaymentMaxAge:    15 * time.Minute,
		AmountTolerance:  0.98,
		PaymentScanLimit: 20,

		// Escrow defaults
		ProposalWindow:  30 * time.Minute,
		PaymentWindow:   30 * time.Minute,
		VerifiedRecency: 24 * time.Hour,

		// API defaults
		APIPort: 8090,

		// Worker defaults
		ExpirySweepInterval: time.Minute,
		PollInterval:        30 * time.Second,
		ClaimRetentionDays:  90,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if v := os.Getenv("HOUSE_EDGE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			config.HouseEdge = parsed
		}
	}
	if v := os.Getenv("MIN_BET_NANO"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MinBetNano = parsed
		}
	}
	if v := os.Getenv("MAX_BET_FRACTION"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			config.MaxBetFraction = parsed
		}
	}
	if v := os.Getenv("CASINO_COOLDOWN_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.CasinoCooldown = time.Duration(parsed) * time.Second
		}
	}
	if v := os.Getenv("PROPOSAL_WINDOW_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.ProposalWindow = time.Duration(parsed) * time.Minute
		}
	}
	if v := os.Getenv("PAYMENT_WINDOW_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.PaymentWindow = time.Duration(parsed) * time.Minute
		}
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.APIPort = parsed
		}
	}
	if v := os.Getenv("CLAIM_RETENTION_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.ClaimRetentionDays = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.WalletAddress == "" {
			return nil, fmt.Errorf("WALLET_ADDRESS is required")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		WalletAddress:    "EQTestHouseWalletAddressxxxxxxxxxxxxxxxxxxxxxxxx",
		HouseEdge:        0.05,
		MinBetNano:       100_000_000,
		MaxBetFraction:   0.10,
		CasinoCooldown:   30 * time.Second,
		PaymentMaxAge:    15 * time.Minute,
		AmountTolerance:  0.98,
		PaymentScanLimit: 20,
		ProposalWindow:   30 * time.Minute,
		PaymentWindow:    30 * time.Minute,
		VerifiedRecency:  24 * time.Hour,
	}
}
