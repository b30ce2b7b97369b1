// Package actions provides the primitive on-chain steps recipes are built
// from: farm balance moves, ERC-20 approvals and transfers, Curve, Basin
// Well and Uniswap V3 swaps.
//
// Every constructor returns a *farm.Action. Actions that produce an amount
// decode the venue's return value and carry a Quote that reads the venue's
// view function, so estimates do not depend on Pipeline holding funds.
package actions

import (
	"context"
	"math/big"

	farm "github.com/branched-services/go-farm"
	"github.com/ethereum/go-ethereum/common"
)

// Beanstalk returns the farm contract at addr.
func Beanstalk(addr common.Address) *farm.Contract {
	return farm.NewContract(addr, beanstalkABI, farm.WithName("beanstalk"))
}

// ERC20 returns the ERC-20 contract of token.
func ERC20(token farm.Token) *farm.Contract {
	return farm.NewContract(token.Address, erc20ABI, farm.WithName(token.String()))
}

// CurveCryptoPool returns a Curve crypto pool such as tricrypto2.
func CurveCryptoPool(addr common.Address, name string) *farm.Contract {
	return farm.NewContract(addr, cryptoABI, farm.WithName(name))
}

// CurveStablePool returns a Curve stable or meta pool.
func CurveStablePool(addr common.Address, name string) *farm.Contract {
	return farm.NewContract(addr, stableABI, farm.WithName(name))
}

// UniswapV3Router returns a SwapRouter02.
func UniswapV3Router(addr common.Address) *farm.Contract {
	return farm.NewContract(addr, routerABI, farm.WithName("uniswapV3Router"))
}

// UniswapV3Quoter returns a QuoterV2.
func UniswapV3Quoter(addr common.Address) *farm.Contract {
	return farm.NewContract(addr, quoterABI, farm.WithName("uniswapV3Quoter"))
}

// query runs a view call from the run's account and returns the raw result.
func query(ctx context.Context, sim farm.Simulator, rc *farm.RunContext, call *farm.Call, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if sim == nil {
		return nil, farm.ErrNoSimulator
	}
	return sim.Simulate(ctx, call.SimCall(rc.Account))
}

// amountOrZero guards encoders against a nil running amount.
func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
