package actions

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	farm "github.com/branched-services/go-farm"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNoPermit indicates a permit step was built without a permit source.
var ErrNoPermit = errors.New("actions: no permit source")

// TransferTokenAmountSlot is the argument word of transferToken holding the amount.
const TransferTokenAmountSlot = 2

// Permit is an EIP-2612 signature authorising the farm contract to spend a
// token on the owner's behalf.
type Permit struct {
	Deadline *big.Int
	V        uint8
	R        [32]byte
	S        [32]byte
}

// PermitSource produces the permit for a run, typically by signing over the
// run's account and amount outside this module.
type PermitSource func(rc *farm.RunContext) (Permit, error)

// StaticPermit returns a PermitSource for a permit signed in advance.
func StaticPermit(p Permit) PermitSource {
	return func(*farm.RunContext) (Permit, error) {
		return p, nil
	}
}

// TransferToken moves the running amount of token from the account's from
// balance to recipient's to balance inside the farm contract.
func TransferToken(beanstalk *farm.Contract, token farm.Token, recipient farm.AddressFunc, from, to farm.BalanceMode) *farm.Action {
	return &farm.Action{
		Name: "transferToken",
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			fromMode, err := from.FarmMode()
			if err != nil {
				return nil, fmt.Errorf("transfer %s from %s: %w", token, from, err)
			}
			toMode, err := to.FarmMode()
			if err != nil {
				return nil, fmt.Errorf("transfer %s to %s: %w", token, to, err)
			}
			return beanstalk.Invoke("transferToken",
				token.Address,
				recipient(rc),
				amountOrZero(amountIn),
				fromMode,
				toMode,
			)
		},
	}
}

// PermitERC20 submits a permit letting spender pull the running amount of
// token from the account.
func PermitERC20(beanstalk *farm.Contract, token farm.Token, spender common.Address, source PermitSource) *farm.Action {
	return &farm.Action{
		Name: "permitERC20",
		Encode: func(_ context.Context, amountIn *big.Int, rc *farm.RunContext) (*farm.Call, error) {
			if source == nil {
				return nil, ErrNoPermit
			}
			p, err := source(rc)
			if err != nil {
				return nil, fmt.Errorf("permit %s: %w", token, err)
			}
			deadline := p.Deadline
			if deadline == nil {
				deadline = rc.DeadlineUnix()
			}
			return beanstalk.Invoke("permitERC20",
				token.Address,
				rc.Account,
				spender,
				amountOrZero(amountIn),
				deadline,
				p.V,
				p.R,
				p.S,
			)
		},
	}
}
