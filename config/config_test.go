package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/branched-services/go-farm/presets"
)

func TestDefaultMatchesMainnet(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mainnet", cfg.Network)

	d, err := cfg.Deployment()
	require.NoError(t, err)
	assert.Equal(t, presets.Mainnet(), d)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
rpc_url: http://localhost:8545
log_level: debug
slippage: 0.5
`))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 0.5, cfg.Slippage, 1e-9)
	assert.Equal(t, uint32(500), cfg.UniswapFee)
	assert.Len(t, cfg.Tokens, 7)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad contract address", "contracts:\n  pipeline: \"0x1234\"\n"},
		{"bad token address", "tokens:\n  - symbol: BEAN\n    address: nope\n    decimals: 6\n"},
		{"empty token list", "tokens: []\n"},
		{"slippage out of range", "slippage: 120\n"},
		{"unknown fee tier", "uniswap_fee: 42\n"},
		{"unknown log level", "log_level: loud\n"},
		{"bad rpc url", "rpc_url: not a url\n"},
		{"malformed yaml", "network: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDeploymentMissingToken(t *testing.T) {
	cfg, err := Parse([]byte(`
tokens:
  - symbol: BEAN
    address: "0xBEA0000029AD1c77D3d5D23Ba2D8893dB9d1Efab"
    decimals: 6
`))
	require.NoError(t, err)

	_, err = cfg.Deployment()
	require.ErrorIs(t, err, ErrMissingToken)
	assert.Contains(t, err.Error(), "3CRV")
}

func TestDeploymentCustomAddresses(t *testing.T) {
	cfg, err := Parse([]byte(`
network: fork
uniswap_fee: 3000
contracts:
  pipeline: "0x0000000000000000000000000000000000000001"
`))
	require.NoError(t, err)

	d, err := cfg.Deployment()
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", d.Addresses.Pipeline.Hex())
	assert.Equal(t, presets.Mainnet().Addresses.Beanstalk, d.Addresses.Beanstalk)
	assert.Equal(t, uint32(3000), d.UniswapFee)
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	cfg.Development = true
	cfg.LogLevel = "debug"
	logger, err = cfg.Logger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: sepolia\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", cfg.Network)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
