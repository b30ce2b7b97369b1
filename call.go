package farm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Call is a packed contract call. Call is immutable; modifier methods return
// new instances.
type Call struct {
	contract *Contract
	method   abi.Method
	args     []any
	data     []byte
	value    *big.Int
}

// newCall packs a method call. Each argument is checked on its own first so
// errors name the offending index.
func newCall(contract *Contract, method abi.Method, rawArgs []any) (*Call, error) {
	if len(rawArgs) != len(method.Inputs) {
		return nil, &ArgumentError{
			Method: method.Name,
			Index:  len(rawArgs),
			Err:    ErrArgumentCount,
		}
	}

	args := make([]any, len(rawArgs))
	for i, arg := range rawArgs {
		converted := convertToABIType(arg, method.Inputs[i].Type)
		if _, err := (abi.Arguments{method.Inputs[i]}).Pack(converted); err != nil {
			return nil, &ArgumentError{
				Method: method.Name,
				Index:  i,
				Err:    err,
			}
		}
		args[i] = converted
	}

	packed, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("farm: pack %s: %w", method.Name, err)
	}

	data := make([]byte, 0, 4+len(packed))
	data = append(data, method.ID[:4]...)
	data = append(data, packed...)

	return &Call{
		contract: contract,
		method:   method,
		args:     args,
		data:     data,
	}, nil
}

// Contract returns the target contract for this call.
func (c *Call) Contract() *Contract {
	return c.contract
}

// Target returns the address the call is sent to.
func (c *Call) Target() common.Address {
	return c.contract.Address()
}

// Method returns the ABI method for this call.
func (c *Call) Method() abi.Method {
	return c.method
}

// Args returns the converted arguments for this call.
func (c *Call) Args() []any {
	out := make([]any, len(c.args))
	copy(out, c.args)
	return out
}

// Data returns a copy of the packed call data, selector included.
func (c *Call) Data() []byte {
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// Selector returns the 4-byte function selector.
func (c *Call) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], c.method.ID[:4])
	return sel
}

// EthValue returns the ETH value for this call (nil if none).
func (c *Call) EthValue() *big.Int {
	return c.value
}

// WithValue attaches ETH value to the call.
//
// Returns a new Call with the value set.
func (c *Call) WithValue(amount *big.Int) *Call {
	clone := c.clone()
	clone.value = new(big.Int).Set(amount)
	return clone
}

// HasReturnValue returns true if the method has a return value.
func (c *Call) HasReturnValue() bool {
	return len(c.method.Outputs) > 0
}

// Unpack decodes return data of this call's method.
func (c *Call) Unpack(ret []byte) ([]any, error) {
	return c.method.Outputs.Unpack(ret)
}

// Query runs the call read-only through sim and decodes the result.
func (c *Call) Query(ctx context.Context, sim Simulator, from common.Address) ([]any, error) {
	if sim == nil {
		return nil, ErrNoSimulator
	}
	ret, err := sim.Simulate(ctx, c.SimCall(from))
	if err != nil {
		return nil, err
	}
	return c.Unpack(ret)
}

// SimCall returns the read-only form of the call sent from the given address.
func (c *Call) SimCall(from common.Address) SimCall {
	return SimCall{
		From:  from,
		To:    c.Target(),
		Data:  c.Data(),
		Value: c.value,
	}
}

// Prepared returns the call as a batch entry without clipboard data.
func (c *Call) Prepared() PreparedCall {
	return PreparedCall{
		Target:   c.Target(),
		CallData: c.Data(),
		Value:    c.value,
	}
}

// withData returns a clone carrying spliced call data.
func (c *Call) withData(data []byte) *Call {
	clone := c.clone()
	clone.data = data
	return clone
}

// checkPaste verifies slot addresses a static head word of the arguments.
func (c *Call) checkPaste(slot int) error {
	layout := headLayout(c.method.Inputs)
	if slot < 0 || slot >= len(layout) || !layout[slot] {
		return ErrSlotOutOfRange
	}
	return nil
}

// clone creates a shallow copy of the Call.
func (c *Call) clone() *Call {
	clone := *c
	clone.args = make([]any, len(c.args))
	copy(clone.args, c.args)
	return &clone
}

// PreparedCall is one entry of the atomic batch.
type PreparedCall struct {
	Target    common.Address
	CallData  []byte
	Value     *big.Int
	Clipboard []byte // encoded on-chain clipboard
}

// headLayout returns one entry per 32-byte head word of the encoded
// arguments, true when the word holds a static value that may be overwritten.
func headLayout(args abi.Arguments) []bool {
	words := make([]bool, 0, len(args))
	for _, arg := range args {
		words = appendHeadWords(words, arg.Type)
	}
	return words
}

func appendHeadWords(words []bool, t abi.Type) []bool {
	if isDynamicType(t) {
		// offset pointer into the tail
		return append(words, false)
	}
	switch t.T {
	case abi.ArrayTy:
		for i := 0; i < t.Size; i++ {
			words = appendHeadWords(words, *t.Elem)
		}
	case abi.TupleTy:
		for _, elem := range t.TupleElems {
			words = appendHeadWords(words, *elem)
		}
	default:
		words = append(words, true)
	}
	return words
}

// isDynamicType checks if an ABI type is dynamic (variable-length encoding).
func isDynamicType(t abi.Type) bool {
	switch t.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy:
		return true
	case abi.ArrayTy:
		return isDynamicType(*t.Elem)
	case abi.TupleTy:
		for _, elem := range t.TupleElems {
			if isDynamicType(*elem) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// convertToABIType handles common Go integer conversions for ABI encoding.
func convertToABIType(value any, abiType abi.Type) any {
	if abiType.T != abi.IntTy && abiType.T != abi.UintTy {
		return value
	}
	switch abiType.Size {
	case 8, 16, 32, 64:
		// go-ethereum expects native integers at these widths
		if v, ok := value.(int); ok && abiType.T == abi.UintTy && abiType.Size == 8 {
			return uint8(v)
		}
		return value
	}
	switch v := value.(type) {
	case int:
		return big.NewInt(int64(v))
	case int64:
		return big.NewInt(v)
	case uint64:
		return new(big.Int).SetUint64(v)
	case int32:
		return big.NewInt(int64(v))
	case uint32:
		return new(big.Int).SetUint64(uint64(v))
	default:
		return v
	}
}
