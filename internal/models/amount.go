package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"lukechampine.com/uint128"
)

// ErrAmountOverflow is returned when an amount operation does not fit in 128 bits
var ErrAmountOverflow = errors.New("amount overflows 128 bits")

// DefaultTicketPrice is the ticket price reported before the lottery is initialised (10^24)
var DefaultTicketPrice = MustParseAmount("1000000000000000000000000")

// Amount is an unsigned 128-bit token amount expressed in the smallest denomination.
// It travels as a decimal string in JSON and BSON.
type Amount struct {
	v uint128.Uint128
}

// NewAmount creates an Amount from a uint64
func NewAmount(v uint64) Amount {
	return Amount{v: uint128.From64(v)}
}

// ParseAmount parses a base-10 amount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, errors.New("amount is empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Amount{}, fmt.Errorf("invalid amount %q: only decimal digits are allowed", s)
		}
	}
	v, err := uint128.FromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{v: v}, nil
}

// MustParseAmount is like ParseAmount but panics on error
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the decimal representation
func (a Amount) String() string {
	return a.v.String()
}

// IsZero reports whether the amount is zero
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp compares a and b and returns -1, 0 or +1
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(b.v)
}

// Equal reports whether a == b
func (a Amount) Equal(b Amount) bool {
	return a.v.Equals(b.v)
}

// Add returns a+b, failing with ErrAmountOverflow when the sum does not fit
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a.v.AddWrap(b.v)
	if sum.Cmp(a.v) < 0 {
		return Amount{}, ErrAmountOverflow
	}
	return Amount{v: sum}, nil
}

// Sub returns a-b, failing when b > a
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.v.Cmp(b.v) < 0 {
		return Amount{}, fmt.Errorf("cannot subtract %s from %s", b, a)
	}
	return Amount{v: a.v.Sub(b.v)}, nil
}

// MulCount returns a*n, failing with ErrAmountOverflow when the product does not fit
func (a Amount) MulCount(n uint32) (Amount, error) {
	product := new(big.Int).Mul(a.v.Big(), new(big.Int).SetUint64(uint64(n)))
	if product.BitLen() > 128 {
		return Amount{}, ErrAmountOverflow
	}
	return Amount{v: uint128.FromBig(product)}, nil
}

// Half returns a/2 truncated
func (a Amount) Half() Amount {
	return Amount{v: a.v.Div64(2)}
}

// Float64 returns an approximation of the amount, for metrics only
func (a Amount) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.v.Big()).Float64()
	return f
}

// MarshalText implements encoding.TextMarshaler
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the amount as a JSON string
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both a JSON string and a bare JSON number. JSON null
// leaves the amount unchanged.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var text string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("invalid amount %s: %w", data, err)
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid amount %s: %w", data, err)
		}
		text = n.String()
	}
	return a.UnmarshalText([]byte(text))
}

// MarshalBSONValue stores the amount as a BSON string
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(a.String())
}

// UnmarshalBSONValue reads an amount stored as a BSON string
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("cannot decode amount from BSON type %s", t)
	}
	return a.UnmarshalText([]byte(s))
}
