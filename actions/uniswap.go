package actions

import (
	"context"
	"fmt"
	"math/big"

	farm "github.com/branched-services/go-farm"
	"github.com/ethereum/go-ethereum/common"
)

// UniswapV3AmountSlot is the argument word of exactInputSingle holding
// amountIn. The params tuple is static, so its fields are head words.
const UniswapV3AmountSlot = 4

// Common Uniswap V3 fee tiers in hundredths of a basis point.
const (
	FeeLow    uint32 = 500
	FeeMedium uint32 = 3000
	FeeHigh   uint32 = 10000
)

// ExactInputSingleParams mirrors SwapRouter02's params tuple. go-ethereum
// matches fields to tuple components by name.
type ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteExactInputSingleParams mirrors QuoterV2's params tuple.
type QuoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// UniswapV3Swap swaps the running amount of from for to in the fee pool
// through router and sends the output to recipient. Quotes come from
// quoter, whose first return word is the output amount. A nil quoter
// leaves the swap to be simulated directly.
func UniswapV3Swap(router, quoter *farm.Contract, from, to farm.Token, fee uint32, recipient farm.AddressFunc) *farm.Action {
	feeTier := new(big.Int).SetUint64(uint64(fee))
	action := &farm.Action{
		Name: fmt.Sprintf("exactInputSingle(%s,%s,%d)", from, to, fee),
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			return router.Invoke("exactInputSingle", ExactInputSingleParams{
				TokenIn:           from.Address,
				TokenOut:          to.Address,
				Fee:               feeTier,
				Recipient:         recipient(rc),
				AmountIn:          amountOrZero(amountIn),
				AmountOutMinimum:  rc.MinAmountOut(),
				SqrtPriceLimitX96: new(big.Int),
			})
		},
		Decode: farm.DecodeUint256,
	}
	if quoter == nil {
		// estimates simulate the swap itself
		return action
	}
	action.Quote = func(ctx context.Context, amountIn *big.Int, rc *farm.RunContext, sim farm.Simulator) ([]byte, error) {
		call, err := quoter.Invoke("quoteExactInputSingle", QuoteExactInputSingleParams{
			TokenIn:           from.Address,
			TokenOut:          to.Address,
			AmountIn:          amountOrZero(amountIn),
			Fee:               feeTier,
			SqrtPriceLimitX96: new(big.Int),
		})
		return query(ctx, sim, rc, call, err)
	}
	return action
}
