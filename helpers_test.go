package farm

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

// Helper ABI for engine tests
const testABIJSON = `[
	{
		"name": "swap",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "amountIn", "type": "uint256"},
			{"name": "minAmountOut", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	},
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
		"name": "deposit",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "amount", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"name": "split",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256[]"}
		]
	},
	{
		"name": "label",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "name", "type": "string"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": []
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

var (
	testVenueAddr    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testFarmAddr     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testPipelineAddr = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testAccount      = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

func testVenue() *Contract {
	return NewContract(testVenueAddr, MustParseABI(testABIJSON), WithName("venue"))
}

func testFarm() *Contract {
	return NewContract(testFarmAddr, MustParseABI(testABIJSON), WithName("farm"))
}

// swapAction doubles its input on the test simulator.
func swapAction(name string, c *Contract) *Action {
	return &Action{
		Name: name,
		Encode: func(_ context.Context, amountIn *big.Int, rc *RunContext) (*Call, error) {
			return c.Invoke("swap", amountIn, rc.MinAmountOut())
		},
		Decode: DecodeUint256,
	}
}

// depositAction has no return value and passes its input through.
func depositAction(name string, c *Contract) *Action {
	return &Action{
		Name: name,
		Encode: func(_ context.Context, amountIn *big.Int, _ *RunContext) (*Call, error) {
			return c.Invoke("deposit", amountIn)
		},
	}
}

// approveAction approves a fixed spender for the running amount.
func approveAction(name string, c *Contract) *Action {
	return &Action{
		Name: name,
		Encode: func(_ context.Context, amountIn *big.Int, _ *RunContext) (*Call, error) {
			return c.Invoke("approve", testFarmAddr, amountIn)
		},
	}
}

// stubSimulator answers swap with twice the first argument, split with both
// halves, approve with true and everything else with empty data. Calls to
// targets in fail return an error.
type stubSimulator struct {
	calls []SimCall
	fail  map[[4]byte]bool
}

var errStubRevert = errors.New("execution reverted")

func (s *stubSimulator) Simulate(_ context.Context, call SimCall) ([]byte, error) {
	s.calls = append(s.calls, call)

	var sel [4]byte
	copy(sel[:], call.Data[:4])
	if s.fail[sel] {
		return nil, errStubRevert
	}

	abi := MustParseABI(testABIJSON)
	switch sel {
	case selectorOf(abi.Methods["swap"].ID):
		in := new(big.Int).SetBytes(call.Data[4:36])
		return EncodeUint256(new(big.Int).Mul(in, big.NewInt(2))), nil
	case selectorOf(abi.Methods["split"].ID):
		in := new(big.Int).SetBytes(call.Data[4:36])
		half := new(big.Int).Div(in, big.NewInt(2))
		return EncodeUint256Slice([]*big.Int{half, new(big.Int).Sub(in, half)}), nil
	case selectorOf(abi.Methods["approve"].ID):
		return EncodeUint256(big.NewInt(1)), nil
	default:
		return []byte{}, nil
	}
}

func selectorOf(id []byte) [4]byte {
	var sel [4]byte
	copy(sel[:], id[:4])
	return sel
}

func methodSelector(t *testing.T, method string) [4]byte {
	t.Helper()
	m, ok := MustParseABI(testABIJSON).Methods[method]
	if !ok {
		t.Fatalf("no method %s", method)
	}
	return selectorOf(m.ID)
}

// argWord returns argument word i of call data.
func argWord(data []byte, i int) *big.Int {
	start := 4 + i*WordSize
	return new(big.Int).SetBytes(data[start : start+WordSize])
}

// addrN returns a distinct address per index.
func addrN(i int) common.Address {
	return common.BigToAddress(big.NewInt(int64(0xa000 + i)))
}
