package actions

import (
	"context"
	"fmt"
	"math/big"

	farm "github.com/branched-services/go-farm"
)

// CurveExchangeAmountSlot is the argument word of exchange and
// exchange_underlying holding dx.
const CurveExchangeAmountSlot = 2

// CurveExchange swaps coin i for coin j on a crypto pool. Crypto pools index
// coins with uint256 and send the output to the caller.
func CurveExchange(pool *farm.Contract, i, j int) *farm.Action {
	return &farm.Action{
		Name: fmt.Sprintf("exchange(%d,%d)", i, j),
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			return pool.Invoke("exchange", i, j, amountOrZero(amountIn), rc.MinAmountOut())
		},
		Decode: farm.DecodeUint256,
		Quote: func(ctx context.Context, amountIn *big.Int, rc *farm.RunContext, sim farm.Simulator) ([]byte, error) {
			call, err := pool.Invoke("get_dy", i, j, amountOrZero(amountIn))
			return query(ctx, sim, rc, call, err)
		},
	}
}

// CurveStableExchange swaps coin i for coin j on a stable pool, which index
// coins with int128.
func CurveStableExchange(pool *farm.Contract, i, j int) *farm.Action {
	return &farm.Action{
		Name: fmt.Sprintf("exchange(%d,%d)", i, j),
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			return pool.Invoke("exchange", i, j, amountOrZero(amountIn), rc.MinAmountOut())
		},
		Decode: farm.DecodeUint256,
		Quote: func(ctx context.Context, amountIn *big.Int, rc *farm.RunContext, sim farm.Simulator) ([]byte, error) {
			call, err := pool.Invoke("get_dy", i, j, amountOrZero(amountIn))
			return query(ctx, sim, rc, call, err)
		},
	}
}

// CurveExchangeUnderlying swaps underlying coin i for underlying coin j on a
// metapool and sends the output to receiver.
func CurveExchangeUnderlying(pool *farm.Contract, i, j int, receiver farm.AddressFunc) *farm.Action {
	return &farm.Action{
		Name: fmt.Sprintf("exchange_underlying(%d,%d)", i, j),
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			return pool.Invoke("exchange_underlying", i, j, amountOrZero(amountIn), rc.MinAmountOut(), receiver(rc))
		},
		Decode: farm.DecodeUint256,
		Quote: func(ctx context.Context, amountIn *big.Int, rc *farm.RunContext, sim farm.Simulator) ([]byte, error) {
			call, err := pool.Invoke("get_dy_underlying", i, j, amountOrZero(amountIn))
			return query(ctx, sim, rc, call, err)
		},
	}
}

// CurveAddLiquidity deposits the running amount as coin index of a
// three-coin pool and returns the LP tokens minted. The amount sits at
// argument word index, which is also the clipboard paste slot.
func CurveAddLiquidity(pool *farm.Contract, index int) *farm.Action {
	amounts := func(amountIn *big.Int) ([3]*big.Int, error) {
		var out [3]*big.Int
		if index < 0 || index >= len(out) {
			return out, fmt.Errorf("actions: curve coin index %d out of range", index)
		}
		for k := range out {
			out[k] = new(big.Int)
		}
		out[index] = amountOrZero(amountIn)
		return out, nil
	}
	return &farm.Action{
		Name: fmt.Sprintf("add_liquidity(%d)", index),
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			vec, err := amounts(amountIn)
			if err != nil {
				return nil, err
			}
			return pool.Invoke("add_liquidity", vec, rc.MinAmountOut())
		},
		Decode: farm.DecodeUint256,
		Quote: func(ctx context.Context, amountIn *big.Int, rc *farm.RunContext, sim farm.Simulator) ([]byte, error) {
			vec, err := amounts(amountIn)
			if err != nil {
				return nil, err
			}
			call, err := pool.Invoke("calc_token_amount", vec, true)
			return query(ctx, sim, rc, call, err)
		},
	}
}
