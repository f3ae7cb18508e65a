// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/programs/computebudget"
	"github.com/rovshanmuradov/token-launchpad/internal/wallet"
)

const EnvPrefix = "TOKEN_LAUNCHPAD"

type Config struct {
	RPCURL     string `mapstructure:"rpc_url"`
	Commitment string `mapstructure:"commitment"`

	KeypairPath string `mapstructure:"keypair_path"`
	PrivateKey  string `mapstructure:"private_key"`
	WalletsFile string `mapstructure:"wallets_file"`
	WalletName  string `mapstructure:"wallet_name"`

	ConfirmTimeout   time.Duration `mapstructure:"-"`
	ConfirmTimeoutMS int           `mapstructure:"confirm_timeout_ms"`
	PollInterval     time.Duration `mapstructure:"-"`
	PollIntervalMS   int           `mapstructure:"poll_interval_ms"`

	ComputeUnits             uint32 `mapstructure:"compute_units"`
	PriorityFeeMicroLamports uint64 `mapstructure:"priority_fee_micro_lamports"`

	MintInitialSupply bool `mapstructure:"mint_initial_supply"`
	CreateMetadata    bool `mapstructure:"create_metadata"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`

	// Пустое значение отключает журнал запусков.
	JournalFile string `mapstructure:"journal_file"`
}

const (
	DefaultRPCURL         = "https://api.devnet.solana.com"
	DefaultCommitment     = "confirmed"
	DefaultConfirmTimeout = 60000
	DefaultPollInterval   = 500
	DefaultLogFile        = "logs/launchpad.log"
	DefaultJournalFile    = "logs/launches.csv"
)

// LoadConfig читает JSON-файл (если path не пустой) и переменные окружения TOKEN_LAUNCHPAD_*.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_url":                     DefaultRPCURL,
		"commitment":                  DefaultCommitment,
		"keypair_path":                "",
		"private_key":                 "",
		"wallets_file":                "",
		"wallet_name":                 "",
		"confirm_timeout_ms":          DefaultConfirmTimeout,
		"poll_interval_ms":            DefaultPollInterval,
		"compute_units":               0,
		"priority_fee_micro_lamports": 0,
		"mint_initial_supply":         false,
		"create_metadata":             false,
		"debug_logging":               false,
		"log_file":                    DefaultLogFile,
		"journal_file":                DefaultJournalFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	// Convert ms to Duration
	cfg.ConfirmTimeout = time.Duration(cfg.ConfirmTimeoutMS) * time.Millisecond
	cfg.PollInterval = time.Duration(cfg.PollIntervalMS) * time.Millisecond

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("rpc_url is empty")
	}
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	switch rpc.CommitmentType(cfg.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	if cfg.PrivateKey == "" && cfg.KeypairPath == "" && cfg.WalletsFile == "" {
		return errors.New("one of private_key, keypair_path or wallets_file is required")
	}
	if cfg.WalletsFile != "" && cfg.WalletName == "" && cfg.PrivateKey == "" && cfg.KeypairPath == "" {
		return errors.New("wallet_name is required with wallets_file")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.ConfirmTimeoutMS <= 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	if cfg.PollIntervalMS <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.PollIntervalMS > cfg.ConfirmTimeoutMS {
		return errors.New("poll_interval_ms must not exceed confirm_timeout_ms")
	}
	if cfg.ComputeUnits > computebudget.MaxUnits {
		return fmt.Errorf("compute_units must not exceed %d", computebudget.MaxUnits)
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// CommitmentType returns the configured commitment for RPC calls.
func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

// ComputeBudget returns the priority fee settings.
func (c *Config) ComputeBudget() computebudget.Config {
	return computebudget.Config{
		Units:              c.ComputeUnits,
		UnitPriceMicroLamp: c.PriorityFeeMicroLamports,
	}
}

// WalletSource returns where the wallet key comes from.
func (c *Config) WalletSource() wallet.Source {
	return wallet.Source{
		PrivateKey:  c.PrivateKey,
		KeypairPath: c.KeypairPath,
		WalletsFile: c.WalletsFile,
		WalletName:  c.WalletName,
	}
}
