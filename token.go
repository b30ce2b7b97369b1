package farm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Token identifies an ERC-20 (or the chain's native asset).
type Token struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
	Native   bool
}

// Amount parses a human-readable quantity of t.
func (t Token) Amount(human string) (Amount, error) {
	return ParseAmount(human, t.Decimals)
}

// FromRaw wraps a raw integer quantity of t.
func (t Token) FromRaw(raw *big.Int) Amount {
	return NewAmount(raw, t.Decimals)
}

// String returns the symbol, or the address when the symbol is empty.
func (t Token) String() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address.Hex()
}

// BalanceMode describes where funds reside before or after a step.
type BalanceMode uint8

const (
	// External is the account's wallet balance.
	External BalanceMode = iota

	// Internal is the account's balance held inside the protocol.
	Internal

	// InTransit is a balance held by the Pipeline executor between steps.
	InTransit
)

// String returns the lower-case mode name.
func (m BalanceMode) String() string {
	switch m {
	case External:
		return "external"
	case Internal:
		return "internal"
	case InTransit:
		return "in-transit"
	default:
		return fmt.Sprintf("BalanceMode(%d)", uint8(m))
	}
}

// ParseBalanceMode parses the names produced by String.
func ParseBalanceMode(s string) (BalanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "external", "wallet":
		return External, nil
	case "internal":
		return Internal, nil
	case "in-transit", "intransit", "pipeline":
		return InTransit, nil
	default:
		return 0, fmt.Errorf("farm: unknown balance mode %q", s)
	}
}

// FarmMode returns the value the farm contract expects for a from/to mode
// argument.
func (m BalanceMode) FarmMode() (uint8, error) {
	switch m {
	case External:
		return 0, nil
	case Internal:
		return 1, nil
	default:
		return 0, ErrInTransitMode
	}
}
