package presets

import (
	farm "github.com/branched-services/go-farm"
	"github.com/branched-services/go-farm/actions"
)

func (l *Library) requireTokens(name string, well *actions.Well, tokens ...farm.Token) error {
	if well == nil || len(well.Tokens) == 0 {
		return &farm.ConstructionError{Scope: name, Err: ErrEmptyWell}
	}
	for _, tok := range tokens {
		if _, ok := well.IndexOf(tok); !ok {
			return &farm.ConstructionError{Scope: name, Step: tok.String(), Err: ErrTokenNotInWell}
		}
	}
	return nil
}

// WellSwap swaps from for to on well.
func (l *Library) WellSwap(well *actions.Well, from, to farm.Token) (ActionBuilder, error) {
	const name = "wellSwap"
	if err := l.requireTokens(name, well, from, to); err != nil {
		return nil, err
	}
	return l.builder(name, []hop{l.wellSwap(well, from, to)}, nil), nil
}

// WellAddLiquidity transfers tokenIn straight into well and syncs it for LP
// tokens.
func (l *Library) WellAddLiquidity(well *actions.Well, tokenIn farm.Token) (ActionBuilder, error) {
	const name = "wellAddLiquidity"
	if err := l.requireTokens(name, well, tokenIn); err != nil {
		return nil, err
	}
	return l.builder(name, []hop{l.wellSync(well, tokenIn)}, nil), nil
}

// UniswapV3Swap swaps from for to in the fee pool. A zero fee uses the
// deployment's default tier.
func (l *Library) UniswapV3Swap(from, to farm.Token, fee uint32) ActionBuilder {
	if fee == 0 {
		fee = l.d.UniswapFee
	}
	return l.builder("uniswapV3Swap", []hop{l.uniV3(from, to, fee)}, nil)
}

// UniV3AddLiquidity swaps from for thru on Uniswap V3, paying the well
// directly, then syncs the well for LP tokens.
func (l *Library) UniV3AddLiquidity(well *actions.Well, from, thru farm.Token) (ActionBuilder, error) {
	const name = "uniV3AddLiquidity"
	if err := l.requireTokens(name, well, thru); err != nil {
		return nil, err
	}
	return l.builder(name, []hop{l.uniV3(from, thru, l.d.UniswapFee), l.wellSync(well, thru)}, nil), nil
}

// UniV3WellSwap swaps from for thru on Uniswap V3, then thru for to on well.
func (l *Library) UniV3WellSwap(well *actions.Well, from, thru, to farm.Token) (ActionBuilder, error) {
	const name = "uniV3WellSwap"
	if err := l.requireTokens(name, well, thru, to); err != nil {
		return nil, err
	}
	return l.builder(name, []hop{l.uniV3(from, thru, l.d.UniswapFee), l.wellSwap(well, thru, to)}, nil), nil
}

// WellSwapUniV3 swaps from for thru on well, then thru for to on Uniswap V3.
func (l *Library) WellSwapUniV3(well *actions.Well, from, thru, to farm.Token) (ActionBuilder, error) {
	const name = "wellSwapUniV3"
	if err := l.requireTokens(name, well, from, thru); err != nil {
		return nil, err
	}
	return l.builder(name, []hop{l.wellSwap(well, from, thru), l.uniV3(thru, to, l.d.UniswapFee)}, nil), nil
}

// WellRemoveLiquidity burns LP tokens of well for a balanced share of each
// well token. An internal destination moves every output into the
// account's internal balance, one approve and transfer per token.
func (l *Library) WellRemoveLiquidity(well *actions.Well) (ActionBuilder, error) {
	const name = "wellRemoveLiquidity"
	if err := l.requireTokens(name, well); err != nil {
		return nil, err
	}
	return func(from, to farm.BalanceMode) (farm.Step, error) {
		load, err := l.load(name, well.LPToken, from, l.d.Addresses.Pipeline, nil)
		if err != nil {
			return nil, err
		}

		recipient := farm.Fixed(l.d.Addresses.Pipeline)
		if to == farm.External {
			recipient = farm.Account()
		}
		b := &pipeBuilder{pipe: farm.NewPipe(name, l.beanstalk, farm.WithPipelineAddress(l.d.Addresses.Pipeline))}
		b.add(actions.WellRemoveLiquidity(well, recipient), farm.WithTag(hopTag(0)))
		for k, tok := range well.Tokens {
			l.deliver(b, tok, hopTag(0), actions.OutputSlot(k), to, true)
		}
		if b.err != nil {
			return nil, b.err
		}
		return append(load, b.pipe), nil
	}, nil
}
