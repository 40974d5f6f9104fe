package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Solana RPC and indexing API configuration
	Solana SolanaConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Marketplace and price source configuration
	Market MarketConfig

	// Mint and attestation configuration
	Mint MintConfig

	// Logging configuration
	Log LogConfig
}

// SolanaConfig holds upstream connection settings.
// Every API key is one credential of the routing ring.
type SolanaConfig struct {
	APIKeys         []string      `envconfig:"HELIUS_API_KEYS" default:""`
	RPCURLTemplate  string        `envconfig:"SOLANA_RPC_URL_TEMPLATE" default:"https://mainnet.helius-rpc.com/?api-key=%s"`
	RequestTimeout  time.Duration `envconfig:"SOLANA_REQUEST_TIMEOUT" default:"15s"`
	MaxRetries      int           `envconfig:"SOLANA_MAX_RETRIES" default:"2"`
	RetryDelay      time.Duration `envconfig:"SOLANA_RETRY_DELAY" default:"500ms"`
	HistoryPageSize int           `envconfig:"SOLANA_HISTORY_PAGE_SIZE" default:"1000"`
	HistoryMaxPages int           `envconfig:"SOLANA_HISTORY_MAX_PAGES" default:"3"` // 0 fetches until exhaustion
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
}

// MarketConfig holds marketplace and price API settings
type MarketConfig struct {
	MagicEdenURL   string        `envconfig:"MAGICEDEN_API_URL" default:"https://api-mainnet.magiceden.dev/v2"`
	MagicEdenKey   string        `envconfig:"MAGICEDEN_API_KEY" default:""`
	TensorURL      string        `envconfig:"TENSOR_API_URL" default:"https://api.mainnet.tensordev.io/api/v1"`
	TensorKey      string        `envconfig:"TENSOR_API_KEY" default:""`
	CoinGeckoURL   string        `envconfig:"COINGECKO_API_URL" default:"https://api.coingecko.com/api/v3"`
	CoinGeckoKey   string        `envconfig:"COINGECKO_API_KEY" default:""`
	SOLCoinID      string        `envconfig:"COINGECKO_SOL_ID" default:"solana"`
	SKRCoinID      string        `envconfig:"COINGECKO_SKR_ID" default:"seeker"`
	RequestTimeout time.Duration `envconfig:"MARKET_REQUEST_TIMEOUT" default:"8s"`
	PriceTTL       time.Duration `envconfig:"MARKET_PRICE_TTL" default:"60s"`
	StatsCacheTTL  time.Duration `envconfig:"MARKET_STATS_CACHE_TTL" default:"5m"`
}

// MintConfig holds minting and attestation settings
type MintConfig struct {
	TreasuryAddress   string        `envconfig:"TREASURY_ADDRESS" default:""`
	TreasurySecretKey string        `envconfig:"TREASURY_SECRET_KEY" default:""` // base58, 64 bytes
	CollectionAddress string        `envconfig:"CORE_COLLECTION" default:""`
	MetadataBaseURI   string        `envconfig:"METADATA_BASE_URI" default:"https://identityprism.xyz/api/metadata"`
	AssetName         string        `envconfig:"MINT_ASSET_NAME" default:"Identity Prism"`
	BasePriceSOL      float64       `envconfig:"MINT_PRICE_SOL" default:"0.01"`
	SKRMint           string        `envconfig:"SKR_MINT" default:"SKRbvo6Gf7GondiT3BbTfuRDPqLWei4j2Qy2NPGZhW3"`
	SKRDecimals       int32         `envconfig:"SKR_DECIMALS" default:"6"`
	SKRDiscount       float64       `envconfig:"SKR_DISCOUNT" default:"0.5"`
	StagingTTL        time.Duration `envconfig:"MINT_STAGING_TTL" default:"10m"`
	StagingBackend    string        `envconfig:"MINT_STAGING_BACKEND" default:"memory"` // memory | redis
	AttestationApp    string        `envconfig:"ATTESTATION_APP" default:"identity-prism"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads an optional .env file and then loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the API listen address
func (c *APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
