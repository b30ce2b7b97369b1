package farm

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract wraps an Ethereum contract address and ABI for building calls.
type Contract struct {
	address common.Address
	abi     abi.ABI
	name    string
}

// ContractOption configures a Contract.
type ContractOption func(*Contract)

// WithName labels the contract in logs and errors.
func WithName(name string) ContractOption {
	return func(c *Contract) {
		c.name = name
	}
}

// NewContract creates a Contract wrapper.
func NewContract(address common.Address, contractABI abi.ABI, opts ...ContractOption) *Contract {
	c := &Contract{
		address: address,
		abi:     contractABI,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// At returns a wrapper with the same ABI and name at another address.
// Useful for ERC-20s, which share one ABI.
func (c *Contract) At(address common.Address) *Contract {
	clone := *c
	clone.address = address
	return &clone
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the contract ABI.
func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Name returns the contract label, or its address when unnamed.
func (c *Contract) Name() string {
	if c.name != "" {
		return c.name
	}
	return c.address.Hex()
}

// Invoke creates a Call for the named method with the given arguments.
// The call data is packed immediately.
func (c *Contract) Invoke(methodName string, args ...any) (*Call, error) {
	method, ok := c.abi.Methods[methodName]
	if !ok {
		return nil, &MethodNotFoundError{Contract: c.address, Method: methodName}
	}

	return newCall(c, method, args)
}

// MustInvoke is like Invoke but panics on error.
func (c *Contract) MustInvoke(methodName string, args ...any) *Call {
	call, err := c.Invoke(methodName, args...)
	if err != nil {
		panic(err)
	}
	return call
}

// Unpack decodes return data of the named method.
func (c *Contract) Unpack(methodName string, data []byte) ([]any, error) {
	method, ok := c.abi.Methods[methodName]
	if !ok {
		return nil, &MethodNotFoundError{Contract: c.address, Method: methodName}
	}
	return method.Outputs.Unpack(data)
}

// HasMethod returns true if the contract has a method with the given name.
func (c *Contract) HasMethod(methodName string) bool {
	_, ok := c.abi.Methods[methodName]
	return ok
}

// MethodNames returns all method names in the contract ABI, sorted.
func (c *Contract) MethodNames() []string {
	names := make([]string, 0, len(c.abi.Methods))
	for name := range c.abi.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseABI parses a JSON ABI string into an abi.ABI.
func ParseABI(abiJSON string) (abi.ABI, error) {
	return abi.JSON(strings.NewReader(abiJSON))
}

// MustParseABI is like ParseABI but panics on error.
func MustParseABI(abiJSON string) abi.ABI {
	parsed, err := ParseABI(abiJSON)
	if err != nil {
		panic(err)
	}
	return parsed
}
