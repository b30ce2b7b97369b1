package presets

import (
	farm "github.com/branched-services/go-farm"
	"github.com/branched-services/go-farm/actions"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// Curve coin indexes.
const (
	tricryptoUSDT = 0
	tricryptoWETH = 2

	underlyingBEAN = 0
	underlyingDAI  = 1
	underlyingUSDC = 2
	underlyingUSDT = 3

	pool3DAI  = 0
	pool3USDC = 1
	pool3USDT = 2
)

// table is the static routing table of the named recipes.
func (l *Library) table() map[string][]hop {
	t := l.d.Tokens

	weth2usdt := []hop{l.curveCrypto(t.WETH, t.USDT, tricryptoWETH, tricryptoUSDT)}
	usdt2weth := []hop{l.curveCrypto(t.USDT, t.WETH, tricryptoUSDT, tricryptoWETH)}
	usdt2bean := []hop{l.underlying(t.USDT, t.BEAN, underlyingUSDT, underlyingBEAN)}
	bean2usdt := []hop{l.underlying(t.BEAN, t.USDT, underlyingBEAN, underlyingUSDT)}
	dai2usdt := []hop{l.stable(t.DAI, t.USDT, pool3DAI, pool3USDT)}
	usdc2usdt := []hop{l.stable(t.USDC, t.USDT, pool3USDC, pool3USDT)}
	usdt23crv := []hop{l.deposit3(t.USDT, pool3USDT)}

	return map[string][]hop{
		"weth2usdt": weth2usdt,
		"usdt2weth": usdt2weth,
		"usdt2bean": usdt2bean,
		"bean2usdt": bean2usdt,
		"usdc2bean": {l.underlying(t.USDC, t.BEAN, underlyingUSDC, underlyingBEAN)},
		"bean2usdc": {l.underlying(t.BEAN, t.USDC, underlyingBEAN, underlyingUSDC)},
		"dai2bean":  {l.underlying(t.DAI, t.BEAN, underlyingDAI, underlyingBEAN)},
		"bean2dai":  {l.underlying(t.BEAN, t.DAI, underlyingBEAN, underlyingDAI)},

		"weth2bean": chain(weth2usdt, usdt2bean),
		"bean2weth": chain(bean2usdt, usdt2weth),

		"dai2usdt":  dai2usdt,
		"usdc2usdt": usdc2usdt,
		"dai2weth":  chain(dai2usdt, usdt2weth),
		"usdc2weth": chain(usdc2usdt, usdt2weth),

		"usdt23crv":     usdt23crv,
		"weth2bean3crv": chain(weth2usdt, usdt23crv),

		"usdt2beaneth": chain(usdt2weth, []hop{l.wellSync(l.beanWeth, t.WETH)}),
		"usdc2beaneth": {l.uniV3(t.USDC, t.WETH, l.d.UniswapFee), l.wellSync(l.beanWeth, t.WETH)},
		"dai2beaneth":  {l.uniV3(t.DAI, t.WETH, l.d.UniswapFee), l.wellSync(l.beanWeth, t.WETH)},
	}
}

func chain(routes ...[]hop) []hop {
	return lo.Flatten(routes)
}

func (l *Library) curveCrypto(in, out farm.Token, i, j int) hop {
	return hop{
		in: in, out: out,
		spender:    l.tricrypto.Address(),
		amountSlot: actions.CurveExchangeAmountSlot,
		build: func(farm.AddressFunc) *farm.Action {
			return actions.CurveExchange(l.tricrypto, i, j)
		},
	}
}

func (l *Library) underlying(in, out farm.Token, i, j int) hop {
	return hop{
		in: in, out: out,
		spender:    l.bean3crv.Address(),
		amountSlot: actions.CurveExchangeAmountSlot,
		direct:     true,
		build: func(recipient farm.AddressFunc) *farm.Action {
			return actions.CurveExchangeUnderlying(l.bean3crv, i, j, recipient)
		},
	}
}

func (l *Library) stable(in, out farm.Token, i, j int) hop {
	return hop{
		in: in, out: out,
		spender:    l.pool3.Address(),
		amountSlot: actions.CurveExchangeAmountSlot,
		build: func(farm.AddressFunc) *farm.Action {
			return actions.CurveStableExchange(l.pool3, i, j)
		},
	}
}

// deposit3 adds one coin to 3pool for 3CRV. The amount sits at the coin's
// own argument word.
func (l *Library) deposit3(in farm.Token, index int) hop {
	return hop{
		in: in, out: l.d.Tokens.CRV3,
		spender:    l.pool3.Address(),
		amountSlot: index,
		build: func(farm.AddressFunc) *farm.Action {
			return actions.CurveAddLiquidity(l.pool3, index)
		},
	}
}

func (l *Library) wellSwap(well *actions.Well, in, out farm.Token) hop {
	return hop{
		in: in, out: out,
		spender:    well.Address(),
		amountSlot: actions.WellSwapAmountSlot,
		direct:     true,
		build: func(recipient farm.AddressFunc) *farm.Action {
			return actions.WellSwap(well, in, out, recipient)
		},
	}
}

func (l *Library) wellSync(well *actions.Well, in farm.Token) hop {
	return hop{
		in: in, out: well.LPToken,
		spender:    common.Address{},
		amountSlot: -1,
		direct:     true,
		well:       well,
		build: func(recipient farm.AddressFunc) *farm.Action {
			return actions.WellSync(well, in, recipient)
		},
	}
}

func (l *Library) uniV3(in, out farm.Token, fee uint32) hop {
	return hop{
		in: in, out: out,
		spender:    l.router.Address(),
		amountSlot: actions.UniswapV3AmountSlot,
		direct:     true,
		build: func(recipient farm.AddressFunc) *farm.Action {
			return actions.UniswapV3Swap(l.router, l.quoter, in, out, fee, recipient)
		},
	}
}
