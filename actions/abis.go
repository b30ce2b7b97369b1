package actions

import (
	farm "github.com/branched-services/go-farm"
)

// BeanstalkABI covers the farm functions used to move tokens and run pipes.
const BeanstalkABI = `[
	{
		"name": "transferToken",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "token", "type": "address"},
			{"name": "recipient", "type": "address"},
			{"name": "amount", "type": "uint256"},
			{"name": "fromMode", "type": "uint8"},
			{"name": "toMode", "type": "uint8"}
		],
		"outputs": []
	},
	{
		"name": "permitERC20",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "token", "type": "address"},
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"},
			{"name": "value", "type": "uint256"},
			{"name": "deadline", "type": "uint256"},
			{"name": "v", "type": "uint8"},
			{"name": "r", "type": "bytes32"},
			{"name": "s", "type": "bytes32"}
		],
		"outputs": []
	},
	{
		"name": "getInternalBalance",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "token", "type": "address"}
		],
		"outputs": [
			{"name": "balance", "type": "uint256"}
		]
	},
	{
		"name": "advancedPipe",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "pipes",
				"type": "tuple[]",
				"components": [
					{"name": "target", "type": "address"},
					{"name": "callData", "type": "bytes"},
					{"name": "clipboard", "type": "bytes"}
				]
			},
			{"name": "value", "type": "uint256"}
		],
		"outputs": [
			{"name": "results", "type": "bytes[]"}
		]
	},
	{
		"name": "advancedFarm",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "data",
				"type": "tuple[]",
				"components": [
					{"name": "callData", "type": "bytes"},
					{"name": "clipboard", "type": "bytes"}
				]
			}
		],
		"outputs": [
			{"name": "results", "type": "bytes[]"}
		]
	}
]`

// ERC20ABI is the subset of ERC-20 used by the actions.
const ERC20ABI = `[
	{
		"name": "approve",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "bool"}
		]
	},
	{
		"name": "transfer",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "bool"}
		]
	},
	{
		"name": "balanceOf",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "account", "type": "address"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	}
]`

// CurveCryptoABI covers crypto pools such as tricrypto2, which index coins
// with uint256.
const CurveCryptoABI = `[
	{
		"name": "exchange",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "i", "type": "uint256"},
			{"name": "j", "type": "uint256"},
			{"name": "dx", "type": "uint256"},
			{"name": "min_dy", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	},
	{
		"name": "get_dy",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "i", "type": "uint256"},
			{"name": "j", "type": "uint256"},
			{"name": "dx", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	}
]`

// CurveStableABI covers plain and meta stable pools, which index coins with
// int128. The 3pool liquidity functions take three amounts.
const CurveStableABI = `[
	{
		"name": "exchange",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "i", "type": "int128"},
			{"name": "j", "type": "int128"},
			{"name": "dx", "type": "uint256"},
			{"name": "min_dy", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	},
	{
		"name": "get_dy",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "i", "type": "int128"},
			{"name": "j", "type": "int128"},
			{"name": "dx", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	},
	{
		"name": "exchange_underlying",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "i", "type": "int128"},
			{"name": "j", "type": "int128"},
			{"name": "dx", "type": "uint256"},
			{"name": "min_dy", "type": "uint256"},
			{"name": "_receiver", "type": "address"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	},
	{
		"name": "get_dy_underlying",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "i", "type": "int128"},
			{"name": "j", "type": "int128"},
			{"name": "dx", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	},
	{
		"name": "add_liquidity",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "amounts", "type": "uint256[3]"},
			{"name": "min_mint_amount", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	},
	{
		"name": "calc_token_amount",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "amounts", "type": "uint256[3]"},
			{"name": "is_deposit", "type": "bool"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	}
]`

// WellABI is the subset of the Basin Well interface used by the actions.
const WellABI = `[
	{
		"name": "swapFrom",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "fromToken", "type": "address"},
			{"name": "toToken", "type": "address"},
			{"name": "amountIn", "type": "uint256"},
			{"name": "minAmountOut", "type": "uint256"},
			{"name": "recipient", "type": "address"},
			{"name": "deadline", "type": "uint256"}
		],
		"outputs": [
			{"name": "amountOut", "type": "uint256"}
		]
	},
	{
		"name": "getSwapOut",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "fromToken", "type": "address"},
			{"name": "toToken", "type": "address"},
			{"name": "amountIn", "type": "uint256"}
		],
		"outputs": [
			{"name": "amountOut", "type": "uint256"}
		]
	},
	{
		"name": "sync",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "recipient", "type": "address"},
			{"name": "minLpAmountOut", "type": "uint256"}
		],
		"outputs": [
			{"name": "lpAmountOut", "type": "uint256"}
		]
	},
	{
		"name": "getAddLiquidityOut",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "tokenAmountsIn", "type": "uint256[]"}
		],
		"outputs": [
			{"name": "lpAmountOut", "type": "uint256"}
		]
	},
	{
		"name": "removeLiquidity",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "lpAmountIn", "type": "uint256"},
			{"name": "minTokenAmountsOut", "type": "uint256[]"},
			{"name": "recipient", "type": "address"},
			{"name": "deadline", "type": "uint256"}
		],
		"outputs": [
			{"name": "tokenAmountsOut", "type": "uint256[]"}
		]
	},
	{
		"name": "getRemoveLiquidityOut",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "lpAmountIn", "type": "uint256"}
		],
		"outputs": [
			{"name": "tokenAmountsOut", "type": "uint256[]"}
		]
	}
]`

// UniswapV3RouterABI is SwapRouter02's exactInputSingle.
const UniswapV3RouterABI = `[
	{
		"name": "exactInputSingle",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "params",
				"type": "tuple",
				"components": [
					{"name": "tokenIn", "type": "address"},
					{"name": "tokenOut", "type": "address"},
					{"name": "fee", "type": "uint24"},
					{"name": "recipient", "type": "address"},
					{"name": "amountIn", "type": "uint256"},
					{"name": "amountOutMinimum", "type": "uint256"},
					{"name": "sqrtPriceLimitX96", "type": "uint160"}
				]
			}
		],
		"outputs": [
			{"name": "amountOut", "type": "uint256"}
		]
	}
]`

// UniswapV3QuoterABI is QuoterV2's quoteExactInputSingle.
const UniswapV3QuoterABI = `[
	{
		"name": "quoteExactInputSingle",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{
				"name": "params",
				"type": "tuple",
				"components": [
					{"name": "tokenIn", "type": "address"},
					{"name": "tokenOut", "type": "address"},
					{"name": "amountIn", "type": "uint256"},
					{"name": "fee", "type": "uint24"},
					{"name": "sqrtPriceLimitX96", "type": "uint160"}
				]
			}
		],
		"outputs": [
			{"name": "amountOut", "type": "uint256"},
			{"name": "sqrtPriceX96After", "type": "uint160"},
			{"name": "initializedTicksCrossed", "type": "uint32"},
			{"name": "gasEstimate", "type": "uint256"}
		]
	}
]`

// Parsed ABIs.
var (
	beanstalkABI = farm.MustParseABI(BeanstalkABI)
	erc20ABI     = farm.MustParseABI(ERC20ABI)
	cryptoABI    = farm.MustParseABI(CurveCryptoABI)
	stableABI    = farm.MustParseABI(CurveStableABI)
	wellABI      = farm.MustParseABI(WellABI)
	routerABI    = farm.MustParseABI(UniswapV3RouterABI)
	quoterABI    = farm.MustParseABI(UniswapV3QuoterABI)
)
