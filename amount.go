package farm

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Amount is an immutable token quantity with a fixed number of decimals.
// The raw integer form (no decimals) is what moves between steps.
//
// Arithmetic between Amounts of different precision panics with a
// *DecimalsMismatchError. Zero is compatible with every precision.
type Amount struct {
	raw      *big.Int
	decimals uint8
}

// Zero is the precision-less zero amount.
var Zero = Amount{}

var hundred = decimal.NewFromInt(100)

// NewAmount creates an Amount from a raw integer. The integer is copied.
func NewAmount(raw *big.Int, decimals uint8) Amount {
	if raw == nil {
		return Amount{raw: new(big.Int), decimals: decimals}
	}
	return Amount{raw: new(big.Int).Set(raw), decimals: decimals}
}

// ZeroAmount returns zero with the given precision.
func ZeroAmount(decimals uint8) Amount {
	return Amount{raw: new(big.Int), decimals: decimals}
}

// ParseAmount parses a human-readable quantity such as "1000.5". Digits past
// the precision are truncated.
func ParseAmount(human string, decimals uint8) (Amount, error) {
	d, err := decimal.NewFromString(human)
	if err != nil {
		return Amount{}, err
	}
	return Amount{raw: d.Shift(int32(decimals)).Truncate(0).BigInt(), decimals: decimals}, nil
}

// MustParseAmount is like ParseAmount but panics on error.
func MustParseAmount(human string, decimals uint8) Amount {
	a, err := ParseAmount(human, decimals)
	if err != nil {
		panic(err)
	}
	return a
}

// Raw returns a copy of the raw integer.
func (a Amount) Raw() *big.Int {
	return new(big.Int).Set(a.int())
}

// Decimals returns the precision.
func (a Amount) Decimals() uint8 {
	return a.decimals
}

func (a Amount) int() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return a.raw
}

func (a Amount) isUntypedZero() bool {
	return a.raw == nil && a.decimals == 0
}

// precision returns the shared precision of a and b.
func precision(a, b Amount) uint8 {
	switch {
	case a.isUntypedZero():
		return b.decimals
	case b.isUntypedZero():
		return a.decimals
	case a.decimals != b.decimals:
		panic(&DecimalsMismatchError{Left: a.decimals, Right: b.decimals})
	}
	return a.decimals
}

// untyped returns Zero in place of r when every operand is Zero, so results
// of Zero-only arithmetic stay compatible with every precision.
func untyped(r Amount, operands ...Amount) Amount {
	for _, o := range operands {
		if !o.isUntypedZero() {
			return r
		}
	}
	return Zero
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	d := precision(a, b)
	return untyped(Amount{raw: new(big.Int).Add(a.int(), b.int()), decimals: d}, a, b)
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	d := precision(a, b)
	return untyped(Amount{raw: new(big.Int).Sub(a.int(), b.int()), decimals: d}, a, b)
}

// Mul returns a * b, truncated toward zero at the shared precision.
func (a Amount) Mul(b Amount) Amount {
	d := precision(a, b)
	raw := new(big.Int).Mul(a.int(), b.int())
	return untyped(Amount{raw: raw.Quo(raw, pow10(d)), decimals: d}, a, b)
}

// Div returns a / b, truncated toward zero. Division by zero returns zero.
func (a Amount) Div(b Amount) Amount {
	d := precision(a, b)
	if b.int().Sign() == 0 {
		return untyped(ZeroAmount(d), a, b)
	}
	raw := new(big.Int).Mul(a.int(), pow10(d))
	return Amount{raw: raw.Quo(raw, b.int()), decimals: d}
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	precision(a, b)
	return a.int().Cmp(b.int())
}

// Eq reports a == b.
func (a Amount) Eq(b Amount) bool { return a.Cmp(b) == 0 }

// Gt reports a > b.
func (a Amount) Gt(b Amount) bool { return a.Cmp(b) > 0 }

// Gte reports a >= b.
func (a Amount) Gte(b Amount) bool { return a.Cmp(b) >= 0 }

// Lt reports a < b.
func (a Amount) Lt(b Amount) bool { return a.Cmp(b) < 0 }

// Lte reports a <= b.
func (a Amount) Lte(b Amount) bool { return a.Cmp(b) <= 0 }

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool {
	return a.int().Sign() == 0
}

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int {
	return a.int().Sign()
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return untyped(Amount{raw: new(big.Int).Neg(a.int()), decimals: a.decimals}, a)
}

// Abs returns |a|.
func (a Amount) Abs() Amount {
	return untyped(Amount{raw: new(big.Int).Abs(a.int()), decimals: a.decimals}, a)
}

// Rescale converts a to another precision, truncating extra digits.
func (a Amount) Rescale(decimals uint8) Amount {
	raw := new(big.Int).Set(a.int())
	switch {
	case decimals > a.decimals:
		raw.Mul(raw, pow10(decimals-a.decimals))
	case decimals < a.decimals:
		raw.Quo(raw, pow10(a.decimals-decimals))
	}
	return Amount{raw: raw, decimals: decimals}
}

// SubSlippage returns a reduced by pct percent, clamped to [0, 100].
func (a Amount) SubSlippage(pct float64) Amount {
	return a.scale(hundred.Sub(clampPct(pct)))
}

// AddSlippage returns a increased by pct percent, clamped to [0, 100].
func (a Amount) AddSlippage(pct float64) Amount {
	return a.scale(hundred.Add(clampPct(pct)))
}

func (a Amount) scale(factor decimal.Decimal) Amount {
	v := decimal.NewFromBigInt(a.int(), 0).Mul(factor).Div(hundred).Truncate(0)
	return untyped(Amount{raw: v.BigInt(), decimals: a.decimals}, a)
}

func clampPct(pct float64) decimal.Decimal {
	p := decimal.NewFromFloat(pct)
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// Decimal returns a as a decimal number.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.int(), -int32(a.decimals))
}

// Human returns the shortest decimal representation, e.g. "1000.5".
func (a Amount) Human() string {
	return a.Decimal().String()
}

// Format returns a with a fixed number of decimal places.
func (a Amount) Format(places int32) string {
	return a.Decimal().StringFixed(places)
}

// String implements fmt.Stringer.
func (a Amount) String() string {
	return a.Human()
}
