// Package ethsim runs farm simulations as eth_call requests against a node.
package ethsim

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	farm "github.com/branched-services/go-farm"
)

// Client is the part of an Ethereum client the simulator needs.
// *ethclient.Client satisfies it.
type Client interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Simulator implements farm.Simulator with eth_call.
type Simulator struct {
	client Client
	block  *big.Int
	logger *zap.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithBlock pins every call to block n. By default calls run against the
// latest block.
func WithBlock(n *big.Int) Option {
	return func(s *Simulator) {
		s.block = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Simulator over client.
func New(client Client, opts ...Option) *Simulator {
	s := &Simulator{client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to the node at url and returns a Simulator over it along
// with the client, which the caller closes.
func Dial(ctx context.Context, url string, opts ...Option) (*Simulator, *ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("ethsim: dial %s: %w", url, err)
	}
	return New(client, opts...), client, nil
}

// Simulate implements farm.Simulator.
func (s *Simulator) Simulate(ctx context.Context, call farm.SimCall) ([]byte, error) {
	to := call.To
	msg := ethereum.CallMsg{
		From:  call.From,
		To:    &to,
		Data:  call.Data,
		Value: call.Value,
	}
	out, err := s.client.CallContract(ctx, msg, s.block)
	if err != nil {
		s.logger.Debug("eth_call failed",
			zap.Stringer("to", call.To),
			zap.Stringer("from", call.From),
			zap.Error(err))
		return nil, fmt.Errorf("ethsim: call %s: %w", call.To.Hex(), err)
	}
	s.logger.Debug("eth_call",
		zap.Stringer("to", call.To),
		zap.Int("returnBytes", len(out)))
	return out, nil
}

var _ farm.Simulator = (*Simulator)(nil)
