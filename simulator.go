package farm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SimCall is a read-only call request.
type SimCall struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Simulator runs a call without mutating chain state and returns the raw
// return data.
type Simulator interface {
	Simulate(ctx context.Context, call SimCall) ([]byte, error)
}

// SimulatorFunc adapts a function to the Simulator interface.
type SimulatorFunc func(ctx context.Context, call SimCall) ([]byte, error)

// Simulate calls f.
func (f SimulatorFunc) Simulate(ctx context.Context, call SimCall) ([]byte, error) {
	return f(ctx, call)
}
