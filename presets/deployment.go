package presets

import (
	"strings"

	farm "github.com/branched-services/go-farm"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultUniswapFee is the Uniswap V3 fee tier used by recipes that route
// through Uniswap without naming one.
const DefaultUniswapFee uint32 = 500

// Addresses are the contracts recipes route through.
type Addresses struct {
	Beanstalk       common.Address
	Pipeline        common.Address
	Tricrypto2      common.Address
	Bean3Crv        common.Address
	Pool3           common.Address
	BeanWethWell    common.Address
	UniswapV3Router common.Address
	UniswapV3Quoter common.Address
}

// Tokens are the assets recipes convert between.
type Tokens struct {
	BEAN     farm.Token
	WETH     farm.Token
	USDT     farm.Token
	USDC     farm.Token
	DAI      farm.Token
	CRV3     farm.Token
	BEANWETH farm.Token
}

// All returns every token.
func (t Tokens) All() []farm.Token {
	return []farm.Token{t.BEAN, t.WETH, t.USDT, t.USDC, t.DAI, t.CRV3, t.BEANWETH}
}

// BySymbol looks a token up by symbol, ignoring case.
func (t Tokens) BySymbol(symbol string) (farm.Token, bool) {
	for _, tok := range t.All() {
		if strings.EqualFold(tok.Symbol, symbol) {
			return tok, true
		}
	}
	return farm.Token{}, false
}

// Deployment binds recipes to one chain.
type Deployment struct {
	Addresses  Addresses
	Tokens     Tokens
	UniswapFee uint32
}

// Mainnet returns the Ethereum mainnet deployment.
func Mainnet() Deployment {
	return Deployment{
		Addresses: Addresses{
			Beanstalk:       common.HexToAddress("0xC1E088fC1323b20BCBee9bd1B9fC9546db5624C5"),
			Pipeline:        common.HexToAddress("0xb1bE0000C6B3C62749b5F0c92480146452D15423"),
			Tricrypto2:      common.HexToAddress("0xD51a44d3FaE010294C616388b506AcdA1bfAAE46"),
			Bean3Crv:        common.HexToAddress("0xc9C32cd16Bf7eFB85Ff14e0c8603cc90F6F2eE49"),
			Pool3:           common.HexToAddress("0xbEbc44782C7dB0a1A60Cb6fe97d0b483032FF1C7"),
			BeanWethWell:    common.HexToAddress("0xBEA0e11282e2bB5893bEcE110cF199501e872bAd"),
			UniswapV3Router: common.HexToAddress("0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"),
			UniswapV3Quoter: common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e"),
		},
		Tokens: Tokens{
			BEAN:     farm.Token{Address: common.HexToAddress("0xBEA0000029AD1c77D3d5D23Ba2D8893dB9d1Efab"), Symbol: "BEAN", Decimals: 6},
			WETH:     farm.Token{Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Symbol: "WETH", Decimals: 18},
			USDT:     farm.Token{Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), Symbol: "USDT", Decimals: 6},
			USDC:     farm.Token{Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Symbol: "USDC", Decimals: 6},
			DAI:      farm.Token{Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Symbol: "DAI", Decimals: 18},
			CRV3:     farm.Token{Address: common.HexToAddress("0x6c3F90f043a72FA612cbac8115EE7e52BDe6E490"), Symbol: "3CRV", Decimals: 18},
			BEANWETH: farm.Token{Address: common.HexToAddress("0xBEA0e11282e2bB5893bEcE110cF199501e872bAd"), Symbol: "BEANWETH", Decimals: 18},
		},
		UniswapFee: DefaultUniswapFee,
	}
}
