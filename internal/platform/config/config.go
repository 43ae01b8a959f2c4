package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "receiptmint/pkg/platform/strings"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server   Server
	Ledger   Ledger
	Storage  Storage
	Mirror   Mirror
	Reward   Reward
	Receipt  Receipt
	Redis    RedisConfig
	Kafka    KafkaConfig
	Loyalty  Loyalty
	LogLevel string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Ledger configures the operator (treasury) handle on the ledger network.
type Ledger struct {
	Network          string
	OperatorID       string
	OperatorKey      string
	MaxTxFeeHbar     float64
	TxValidDuration  time.Duration
	OperationTimeout time.Duration
}

// Storage configures the content-addressable pinning service.
type Storage struct {
	PinningURL    string
	GatewayURL    string
	JWT           string
	UploadTimeout time.Duration
}

// Mirror configures the read-only indexing service.
type Mirror struct {
	URL            string
	ListTimeout    time.Duration
	FetchTimeout   time.Duration
	ResolveTimeout time.Duration
}

// Reward configures the fungible incentive paid with each receipt.
type Reward struct {
	TokenID  string
	Amount   int64
	Symbol   string
	Decimals int32
}

// Receipt configures the receipt collection and how minted receipts are shown.
type Receipt struct {
	CollectionID string
	ImageURL     string
	ExplorerURL  string
}

// RedisConfig enables the shared idempotency store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables receipt event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers            []string
	Topic              string
	ClientID           string
	DeliveryTimeout    time.Duration
	MaxBufferedRecords int
}

// Loyalty points the service at the external points collaborator.
type Loyalty struct {
	URL     string
	Timeout time.Duration
}

// ErrMissingRequired is returned by Load when a required variable is unset.
var ErrMissingRequired = errors.New("missing required configuration")

var required = []string{
	"OPERATOR_ID",
	"OPERATOR_KEY",
	"REWARD_TOKEN_ID",
	"RECEIPT_NFT_ID",
	"PINATA_JWT",
	"PORT",
}

var mirrorByNetwork = map[string]string{
	"mainnet":    "https://mainnet-public.mirrornode.hedera.com",
	"testnet":    "https://testnet.mirrornode.hedera.com",
	"previewnet": "https://previewnet.mirrornode.hedera.com",
}

// Load reads an optional .env file, then the environment, and validates it.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can supply a map.
func FromEnv(getenv func(string) string) (Config, error) {
	var missing []string
	for _, key := range required {
		if strings.TrimSpace(getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	env := reader{getenv: getenv}
	network := strings.ToLower(env.str("HEDERA_NETWORK", "testnet"))
	mirrorURL, ok := mirrorByNetwork[network]
	if !ok && env.str("MIRROR_NODE_URL", "") == "" {
		return Config{}, fmt.Errorf("unknown HEDERA_NETWORK %q and no MIRROR_NODE_URL set", network)
	}

	cfg := Config{
		Server: Server{
			Addr:            ":" + strings.TrimPrefix(strings.TrimSpace(getenv("PORT")), ":"),
			ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Ledger: Ledger{
			Network:          network,
			OperatorID:       strings.TrimSpace(getenv("OPERATOR_ID")),
			OperatorKey:      strings.TrimSpace(getenv("OPERATOR_KEY")),
			MaxTxFeeHbar:     env.float("MAX_TX_FEE_HBAR", 20),
			TxValidDuration:  env.duration("TX_VALID_DURATION", 120*time.Second),
			OperationTimeout: env.duration("LEDGER_TIMEOUT", 30*time.Second),
		},
		Storage: Storage{
			PinningURL:    strings.TrimRight(env.str("PINATA_API_URL", "https://api.pinata.cloud"), "/"),
			GatewayURL:    strings.TrimRight(env.str("IPFS_GATEWAY_URL", "https://gateway.pinata.cloud"), "/"),
			JWT:           strings.TrimSpace(getenv("PINATA_JWT")),
			UploadTimeout: env.duration("PINATA_TIMEOUT", 30*time.Second),
		},
		Mirror: Mirror{
			URL:            strings.TrimRight(env.str("MIRROR_NODE_URL", mirrorURL), "/"),
			ListTimeout:    env.duration("MIRROR_LIST_TIMEOUT", 10*time.Second),
			FetchTimeout:   env.duration("METADATA_FETCH_TIMEOUT", 5*time.Second),
			ResolveTimeout: env.duration("METADATA_RESOLVE_TIMEOUT", 10*time.Second),
		},
		Reward: Reward{
			TokenID:  strings.TrimSpace(getenv("REWARD_TOKEN_ID")),
			Amount:   env.int64("REWARD_AMOUNT", 10),
			Symbol:   env.str("REWARD_TOKEN_SYMBOL", "RECV"),
			Decimals: int32(env.int64("REWARD_TOKEN_DECIMALS", 0)),
		},
		Receipt: Receipt{
			CollectionID: strings.TrimSpace(getenv("RECEIPT_NFT_ID")),
			ImageURL:     env.str("RECEIPT_IMAGE_URL", ""),
			ExplorerURL:  strings.TrimRight(env.str("EXPLORER_URL", "https://hashscan.io/"+network), "/"),
		},
		Redis: RedisConfig{
			URL:          env.str("REDIS_URL", ""),
			PoolSize:     int(env.int64("REDIS_POOL_SIZE", 10)),
			MinIdleConns: int(env.int64("REDIS_MIN_IDLE_CONNS", 2)),
			DialTimeout:  env.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  env.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: env.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:            env.list("KAFKA_BROKERS"),
			Topic:              env.str("KAFKA_TOPIC", "receipt-events"),
			ClientID:           env.str("KAFKA_CLIENT_ID", "receiptmint"),
			DeliveryTimeout:    env.duration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
			MaxBufferedRecords: int(env.int64("KAFKA_MAX_BUFFERED_RECORDS", 10000)),
		},
		Loyalty: Loyalty{
			URL:     strings.TrimRight(env.str("LOYALTY_URL", ""), "/"),
			Timeout: env.duration("LOYALTY_TIMEOUT", 5*time.Second),
		},
		LogLevel: env.str("LOG_LEVEL", "info"),
	}

	if env.err != nil {
		return Config{}, env.err
	}
	if cfg.Reward.Amount <= 0 {
		return Config{}, fmt.Errorf("REWARD_AMOUNT must be positive, got %d", cfg.Reward.Amount)
	}
	if cfg.Reward.Decimals < 0 {
		return Config{}, fmt.Errorf("REWARD_TOKEN_DECIMALS must not be negative, got %d", cfg.Reward.Decimals)
	}
	return cfg, nil
}

// reader parses optional values and remembers the first malformed one.
type reader struct {
	getenv func(string) string
	err    error
}

func (r *reader) str(key, fallback string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (r *reader) list(key string) []string {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(raw, ","))
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		r.fail(key, raw)
		return fallback
	}
	return d
}

func (r *reader) int64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.fail(key, raw)
		return fallback
	}
	return n
}

func (r *reader) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		r.fail(key, raw)
		return fallback
	}
	return f
}

func (r *reader) fail(key, raw string) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid value %q for %s", raw, key)
	}
}
