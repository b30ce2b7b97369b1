package actions

import (
	"context"
	"fmt"
	"math/big"

	farm "github.com/branched-services/go-farm"
	"github.com/ethereum/go-ethereum/common"
)

// Well argument and return word positions used by clipboards.
const (
	// WellSwapAmountSlot is the argument word of swapFrom holding amountIn.
	WellSwapAmountSlot = 2

	// WellRemoveAmountSlot is the argument word of removeLiquidity holding lpAmountIn.
	WellRemoveAmountSlot = 0

	// wellOutputsOffset is the return word of the first removeLiquidity output,
	// after the array offset and length words.
	wellOutputsOffset = 2
)

// Well is a Basin liquidity pool. Its LP token is the well contract itself.
type Well struct {
	Contract *farm.Contract
	LPToken  farm.Token
	Tokens   []farm.Token
}

// NewWell creates a Well at addr pairing tokens.
func NewWell(addr common.Address, symbol string, tokens ...farm.Token) *Well {
	return &Well{
		Contract: farm.NewContract(addr, wellABI, farm.WithName(symbol)),
		LPToken:  farm.Token{Address: addr, Symbol: symbol, Decimals: 18},
		Tokens:   tokens,
	}
}

// Address returns the well address.
func (w *Well) Address() common.Address {
	return w.Contract.Address()
}

// IndexOf returns the position of token in the well.
func (w *Well) IndexOf(token farm.Token) (int, bool) {
	for i, t := range w.Tokens {
		if t.Address == token.Address {
			return i, true
		}
	}
	return 0, false
}

// OutputSlot returns the return word of removeLiquidity holding the amount of
// the k-th token.
func OutputSlot(k int) int {
	return wellOutputsOffset + k
}

// WellSwap swaps the running amount of from for to and sends the output to
// recipient.
func WellSwap(well *Well, from, to farm.Token, recipient farm.AddressFunc) *farm.Action {
	c := well.Contract
	return &farm.Action{
		Name: fmt.Sprintf("swapFrom(%s,%s)", from, to),
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			return c.Invoke("swapFrom",
				from.Address,
				to.Address,
				amountOrZero(amountIn),
				rc.MinAmountOut(),
				recipient(rc),
				rc.DeadlineUnix(),
			)
		},
		Decode: farm.DecodeUint256,
		Quote: func(ctx context.Context, amountIn *big.Int, rc *farm.RunContext, sim farm.Simulator) ([]byte, error) {
			call, err := c.Invoke("getSwapOut", from.Address, to.Address, amountOrZero(amountIn))
			return query(ctx, sim, rc, call, err)
		},
	}
}

// WellSync mints LP tokens for whatever was transferred into the well since
// its last update and sends them to recipient. The running amount is the
// quantity of tokenIn sent in; it is only used to quote.
func WellSync(well *Well, tokenIn farm.Token, recipient farm.AddressFunc) *farm.Action {
	c := well.Contract
	return &farm.Action{
		Name: fmt.Sprintf("sync(%s)", tokenIn),
		Encode: func(_ context.Context, _ *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			if _, ok := well.IndexOf(tokenIn); !ok {
				return nil, fmt.Errorf("actions: token %[2]s not in well %[1]s", c.Name(), tokenIn)
			}
			return c.Invoke("sync", recipient(rc), rc.MinAmountOut())
		},
		Decode: farm.DecodeUint256,
		Quote: func(ctx context.Context, amountIn *big.Int, rc *farm.RunContext, sim farm.Simulator) ([]byte, error) {
			idx, ok := well.IndexOf(tokenIn)
			if !ok {
				return nil, fmt.Errorf("actions: token %[2]s not in well %[1]s", c.Name(), tokenIn)
			}
			amounts := make([]*big.Int, len(well.Tokens))
			for k := range amounts {
				amounts[k] = new(big.Int)
			}
			amounts[idx] = amountOrZero(amountIn)
			call, err := c.Invoke("getAddLiquidityOut", amounts)
			return query(ctx, sim, rc, call, err)
		},
	}
}

// WellRemoveLiquidity burns the running amount of LP tokens for a balanced
// share of every well token, sent to recipient. Its outputs are the token
// amounts in well order; the running amount becomes the first of them.
func WellRemoveLiquidity(well *Well, recipient farm.AddressFunc) *farm.Action {
	c := well.Contract
	return &farm.Action{
		Name: "removeLiquidity",
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			return c.Invoke("removeLiquidity",
				amountOrZero(amountIn),
				rc.MinAmountsOut(len(well.Tokens)),
				recipient(rc),
				rc.DeadlineUnix(),
			)
		},
		DecodeOutputs: farm.DecodeUint256Slice,
		Quote: func(ctx context.Context, amountIn *big.Int, rc *farm.RunContext, sim farm.Simulator) ([]byte, error) {
			call, err := c.Invoke("getRemoveLiquidityOut", amountOrZero(amountIn))
			return query(ctx, sim, rc, call, err)
		},
	}
}
