// Package config loads the deployment a recipe library runs against: the
// contract and token addresses, the RPC endpoint used for simulation, and
// logging. Values are read from YAML over the embedded mainnet defaults and
// validated before use.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	farm "github.com/branched-services/go-farm"
	"github.com/branched-services/go-farm/presets"
)

//go:embed mainnet.yaml
var mainnetYAML []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrMissingToken indicates the token list lacks a symbol the recipes route through.
var ErrMissingToken = errors.New("config: missing token")

// Contracts holds the contract addresses as hex strings.
type Contracts struct {
	Beanstalk       string `yaml:"beanstalk" validate:"required,eth_addr"`
	Pipeline        string `yaml:"pipeline" validate:"required,eth_addr"`
	Tricrypto2      string `yaml:"tricrypto2" validate:"required,eth_addr"`
	Bean3Crv        string `yaml:"bean3crv" validate:"required,eth_addr"`
	Pool3           string `yaml:"pool3" validate:"required,eth_addr"`
	BeanWethWell    string `yaml:"bean_weth_well" validate:"required,eth_addr"`
	UniswapV3Router string `yaml:"uniswap_v3_router" validate:"required,eth_addr"`
	UniswapV3Quoter string `yaml:"uniswap_v3_quoter" validate:"required,eth_addr"`
}

// Token is one entry of the token list.
type Token struct {
	Symbol   string `yaml:"symbol" validate:"required"`
	Address  string `yaml:"address" validate:"required,eth_addr"`
	Decimals uint8  `yaml:"decimals" validate:"lte=36"`
	Native   bool   `yaml:"native"`
}

// Config is the on-disk configuration.
type Config struct {
	Network     string    `yaml:"network" validate:"required"`
	RPCURL      string    `yaml:"rpc_url" validate:"omitempty,url"`
	LogLevel    string    `yaml:"log_level" validate:"oneof=debug info warn error"`
	Development bool      `yaml:"development"`
	Slippage    float64   `yaml:"slippage" validate:"gte=0,lte=100"`
	UniswapFee  uint32    `yaml:"uniswap_fee" validate:"oneof=100 500 3000 10000"`
	Contracts   Contracts `yaml:"contracts"`
	Tokens      []Token   `yaml:"tokens" validate:"required,min=1,dive"`
}

// Default returns the embedded mainnet configuration.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal(mainnetYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return &cfg
}

// Parse decodes data over the defaults and validates the result. Keys absent
// from data keep their default; a tokens list replaces the default list.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// Deployment converts the configuration into a recipe deployment.
func (c *Config) Deployment() (presets.Deployment, error) {
	bySymbol := make(map[string]farm.Token, len(c.Tokens))
	for _, t := range c.Tokens {
		bySymbol[strings.ToUpper(t.Symbol)] = farm.Token{
			Address:  common.HexToAddress(t.Address),
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			Native:   t.Native,
		}
	}

	var missing []string
	token := func(symbol string) farm.Token {
		tok, ok := bySymbol[symbol]
		if !ok {
			missing = append(missing, symbol)
		}
		return tok
	}
	tokens := presets.Tokens{
		BEAN:     token("BEAN"),
		WETH:     token("WETH"),
		USDT:     token("USDT"),
		USDC:     token("USDC"),
		DAI:      token("DAI"),
		CRV3:     token("3CRV"),
		BEANWETH: token("BEANWETH"),
	}
	if len(missing) > 0 {
		return presets.Deployment{}, fmt.Errorf("%w: %s", ErrMissingToken, strings.Join(missing, ", "))
	}

	return presets.Deployment{
		Addresses: presets.Addresses{
			Beanstalk:       common.HexToAddress(c.Contracts.Beanstalk),
			Pipeline:        common.HexToAddress(c.Contracts.Pipeline),
			Tricrypto2:      common.HexToAddress(c.Contracts.Tricrypto2),
			Bean3Crv:        common.HexToAddress(c.Contracts.Bean3Crv),
			Pool3:           common.HexToAddress(c.Contracts.Pool3),
			BeanWethWell:    common.HexToAddress(c.Contracts.BeanWethWell),
			UniswapV3Router: common.HexToAddress(c.Contracts.UniswapV3Router),
			UniswapV3Quoter: common.HexToAddress(c.Contracts.UniswapV3Quoter),
		},
		Tokens:     tokens,
		UniswapFee: c.UniswapFee,
	}, nil
}

// Logger builds a zap logger at the configured level. Development mode uses
// the console encoder.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
