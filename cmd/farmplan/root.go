package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	farm "github.com/branched-services/go-farm"
	"github.com/branched-services/go-farm/config"
	"github.com/branched-services/go-farm/ethsim"
	"github.com/branched-services/go-farm/presets"
)

var errNoRPC = errors.New("no RPC endpoint: pass --rpc or set rpc_url in the config file")

// dialFunc opens a simulator against url. The returned func releases it.
type dialFunc func(ctx context.Context, url string, logger *zap.Logger) (farm.Simulator, func(), error)

func dialSimulator(ctx context.Context, url string, logger *zap.Logger) (farm.Simulator, func(), error) {
	sim, client, err := ethsim.Dial(ctx, url, ethsim.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return sim, client.Close, nil
}

// globals are the flags shared by every command.
type globals struct {
	configPath string
	rpcURL     string
	logLevel   string
	dial       dialFunc
}

// env is what a command runs against.
type env struct {
	cfg    *config.Config
	lib    *presets.Library
	logger *zap.Logger
}

func (g *globals) load() (*env, error) {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		if cfg, err = config.Load(g.configPath); err != nil {
			return nil, err
		}
	}
	if g.rpcURL != "" {
		cfg.RPCURL = g.rpcURL
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d, err := cfg.Deployment()
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, lib: presets.New(d), logger: logger}, nil
}

func newRootCommand(dial dialFunc) *cobra.Command {
	g := &globals{dial: dial}
	cmd := &cobra.Command{
		Use:   "farmplan",
		Short: "Quote and plan Beanstalk farm recipes",
		Long: `farmplan composes recipes from the preset library into a single
advancedFarm transaction. It estimates each step with read-only calls
against a node and prints the calls, minimum outputs and encoded
transaction data without signing or sending anything.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to a YAML config file (default: embedded mainnet)")
	cmd.PersistentFlags().StringVar(&g.rpcURL, "rpc", "", "JSON-RPC endpoint used for simulation")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(newRecipesCommand(g), newPlanCommand(g))
	return cmd
}
