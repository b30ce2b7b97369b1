package actions

import (
	"context"
	"math/big"

	farm "github.com/branched-services/go-farm"
)

// ERC20AmountSlot is the argument word of approve and transfer holding the amount.
const ERC20AmountSlot = 1

// ApproveERC20 approves spender for the running amount of token.
func ApproveERC20(token farm.Token, spender farm.AddressFunc) *farm.Action {
	erc20 := ERC20(token)
	return &farm.Action{
		Name: "approve",
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			return erc20.Invoke("approve", spender(rc), amountOrZero(amountIn))
		},
	}
}

// TransferERC20 sends the running amount of token held by the caller to
// recipient.
func TransferERC20(token farm.Token, recipient farm.AddressFunc) *farm.Action {
	erc20 := ERC20(token)
	return &farm.Action{
		Name: "transfer",
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			return erc20.Invoke("transfer", recipient(rc), amountOrZero(amountIn))
		},
	}
}
