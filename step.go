package farm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Step is one unit of a workflow: an *Action, a Sequence or a *Pipe.
// This is a sealed interface - only types within this package implement it.
type Step interface {
	// isStep is unexported to seal the interface.
	isStep()

	// StepName returns a human-readable name for logs and errors.
	StepName() string
}

// EncodeFunc produces the call for a step from the running amount.
type EncodeFunc func(ctx context.Context, amountIn *big.Int, rc *RunContext) (*Call, error)

// DecodeFunc turns a step's return data into the amount passed to the next step.
type DecodeFunc func(ret []byte) (*big.Int, error)

// DecodeOutputsFunc turns return data into several amounts, for calls such as
// balanced withdrawals.
type DecodeOutputsFunc func(ret []byte) ([]*big.Int, error)

// QuoteFunc estimates a step through read-only calls. It returns data shaped
// like the step's own return data, so decoders and clipboards apply to it.
type QuoteFunc func(ctx context.Context, amountIn *big.Int, rc *RunContext, sim Simulator) ([]byte, error)

// Action is a single contract call.
//
// An Action with neither Decode nor DecodeOutputs passes its input amount
// through to the next step.
type Action struct {
	Name          string
	Encode        EncodeFunc
	Decode        DecodeFunc
	DecodeOutputs DecodeOutputsFunc
	Quote         QuoteFunc
	Clipboard     []Clipboard
}

func (a *Action) isStep() {}

// StepName returns the action name.
func (a *Action) StepName() string {
	return a.Name
}

// WithClipboard returns a copy of a with refs appended.
func (a *Action) WithClipboard(refs ...Clipboard) *Action {
	clone := *a
	clone.Clipboard = append(append([]Clipboard(nil), a.Clipboard...), refs...)
	return &clone
}

// producesAmount reports whether the action's output depends on its return data.
func (a *Action) producesAmount() bool {
	return a.Decode != nil || a.DecodeOutputs != nil
}

// decode applies the action's decoders. Without decoders the input passes through.
func (a *Action) decode(ret []byte, amountIn *big.Int) (*big.Int, []*big.Int, error) {
	var outputs []*big.Int
	if a.DecodeOutputs != nil {
		outs, err := a.DecodeOutputs(ret)
		if err != nil {
			return nil, nil, err
		}
		outputs = outs
	}
	switch {
	case a.Decode != nil:
		out, err := a.Decode(ret)
		if err != nil {
			return nil, nil, err
		}
		return out, outputs, nil
	case len(outputs) > 0:
		return outputs[0], outputs, nil
	default:
		return amountIn, outputs, nil
	}
}

// Sequence is an ordered list of steps. Sequences are flattened when added
// to a workflow.
type Sequence []Step

func (s Sequence) isStep() {}

// StepName returns the names of the contained steps.
func (s Sequence) StepName() string {
	return fmt.Sprintf("sequence(%d)", len(s))
}

// Flatten expands nested sequences into the runnable units (*Action and
// *Pipe) in order. Nil entries are dropped.
func Flatten(steps ...Step) []Step {
	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		switch v := s.(type) {
		case nil:
		case Sequence:
			out = append(out, Flatten(v...)...)
		case *Action:
			if v != nil {
				out = append(out, v)
			}
		case *Pipe:
			if v != nil {
				out = append(out, v)
			}
		}
	}
	return out
}

// AddressFunc resolves an address from the run, e.g. the acting account.
type AddressFunc func(rc *RunContext) common.Address

// Fixed returns an AddressFunc for a constant address.
func Fixed(addr common.Address) AddressFunc {
	return func(*RunContext) common.Address {
		return addr
	}
}

// Account returns an AddressFunc for the run's account.
func Account() AddressFunc {
	return func(rc *RunContext) common.Address {
		return rc.Account
	}
}

var (
	uint256Args      = abi.Arguments{{Type: mustType("uint256")}}
	uint256SliceArgs = abi.Arguments{{Type: mustType("uint256[]")}}
	bytesSliceArgs   = abi.Arguments{{Type: mustType("bytes[]")}}
)

// DecodeUint256 reads the first return word as a uint256.
func DecodeUint256(ret []byte) (*big.Int, error) {
	if len(ret) < WordSize {
		return nil, ErrShortReturn
	}
	return new(big.Int).SetBytes(ret[:WordSize]), nil
}

// DecodeUint256Slice decodes a single uint256[] return value.
func DecodeUint256Slice(ret []byte) ([]*big.Int, error) {
	values, err := uint256SliceArgs.Unpack(ret)
	if err != nil {
		return nil, err
	}
	out, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("farm: unexpected uint256[] type %T", values[0])
	}
	return out, nil
}

// EncodeUint256 returns v as return data of a function returning one uint256.
func EncodeUint256(v *big.Int) []byte {
	data, _ := uint256Args.Pack(v)
	return data
}

// EncodeUint256Slice returns vs as return data of a function returning uint256[].
func EncodeUint256Slice(vs []*big.Int) []byte {
	data, _ := uint256SliceArgs.Pack(vs)
	return data
}
