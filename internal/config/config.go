package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

type WalletMode string

const (
	WalletModeBrowser WalletMode = "browser"
	WalletModeLocal   WalletMode = "local"
)

// Config is the runtime configuration read from the environment
type Config struct {
	Chain wallet.ChainDescriptor

	ContractDataPath string `validate:"omitempty,file"`
	ContractAddress  string `validate:"omitempty,eth_addr"`

	PinataJWT     string
	PinataGateway string `validate:"omitempty,hostname|url"`

	WalletMode          WalletMode    `validate:"oneof=browser local"`
	WalletPrivateKey    string        `validate:"required_if=WalletMode local"`
	WalletBridgeTimeout time.Duration `validate:"gte=0"`

	Port        int `validate:"gte=0,lte=65535"`
	PostgresURL string
	BaseURL     string `validate:"omitempty,url"`
	JwksURI     string `validate:"omitempty,url"`
	ResourceID  string

	AuthorizationServer string `validate:"omitempty,url"`

	LogLevel slog.Level
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration using getenv.
func LoadFrom(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	chain, err := loadChain(get)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Chain:            chain,
		ContractDataPath: get("CONTRACT_DATA_PATH", ""),
		ContractAddress:  get("CONTRACT_ADDRESS", ""),
		PinataJWT:        get("PINATA_JWT", ""),
		PinataGateway:    get("PINATA_GATEWAY", "gateway.pinata.cloud"),
		WalletMode:       WalletMode(strings.ToLower(get("WALLET_MODE", string(WalletModeBrowser)))),
		WalletPrivateKey: get("WALLET_PRIVATE_KEY", ""),
		PostgresURL:      get("POSTGRES_URL", ""),
		BaseURL:          get("BASE_URL", ""),
		JwksURI:          get("JWKS_URI", ""),
		ResourceID:       get("RESOURCE_ID", ""),

		AuthorizationServer: get("AUTHORIZATION_SERVER_URL", ""),
	}

	if cfg.WalletBridgeTimeout, err = time.ParseDuration(get("WALLET_BRIDGE_TIMEOUT", wallet.DefaultRequestTimeout.String())); err != nil {
		return nil, fmt.Errorf("invalid WALLET_BRIDGE_TIMEOUT: %w", err)
	}
	if cfg.Port, err = strconv.Atoi(get("PORT", "0")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadChain(get func(key, fallback string) string) (wallet.ChainDescriptor, error) {
	def := wallet.NeroTestnet

	chainID, err := wallet.ParseChainID(get("EXPECTED_CHAIN_ID", def.ChainID))
	if err != nil {
		return wallet.ChainDescriptor{}, fmt.Errorf("invalid EXPECTED_CHAIN_ID: %w", err)
	}
	decimals, err := strconv.ParseUint(get("CHAIN_CURRENCY_DECIMALS", strconv.Itoa(int(def.NativeCurrency.Decimals))), 10, 8)
	if err != nil {
		return wallet.ChainDescriptor{}, fmt.Errorf("invalid CHAIN_CURRENCY_DECIMALS: %w", err)
	}

	return wallet.NewChainDescriptor(
		chainID,
		get("CHAIN_NAME", def.ChainName),
		wallet.NativeCurrency{
			Name:     get("CHAIN_CURRENCY_NAME", def.NativeCurrency.Name),
			Symbol:   get("CHAIN_CURRENCY_SYMBOL", def.NativeCurrency.Symbol),
			Decimals: uint8(decimals),
		},
		splitList(get("CHAIN_RPC_URLS", strings.Join(def.RPCURLs, ","))),
		splitList(get("CHAIN_EXPLORER_URLS", strings.Join(def.BlockExplorerURLs, ","))),
	), nil
}

// ContractAddressOrZero returns the configured contract address.
func (c *Config) ContractAddressOrZero() common.Address {
	if c.ContractAddress == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.ContractAddress)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
