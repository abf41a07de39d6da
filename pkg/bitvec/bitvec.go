// Package bitvec converts integers to and from truth tables.
//
// A truth table is a []bool of fixed width. Bit k of the integer (least
// significant first) becomes entry k of the table; the table is zero-padded
// or truncated to the requested width.
//
//	bitvec.Table(6, 4) // [false true true false]
package bitvec

import (
	"math/big"
	"strings"

	"github.com/matzehuels/robdd/pkg/errors"
)

// Table returns the first width bits of x, least significant first.
func Table(x uint64, width int) []bool {
	if width <= 0 {
		return []bool{}
	}
	out := make([]bool, width)
	for i := 0; i < width && i < 64; i++ {
		out[i] = x&(1<<uint(i)) != 0
	}
	return out
}

// TableBig is Table for integers wider than 64 bits. Negative values are
// rejected by [Parse] and treated as zero here.
func TableBig(x *big.Int, width int) []bool {
	if width <= 0 {
		return []bool{}
	}
	out := make([]bool, width)
	if x == nil || x.Sign() <= 0 {
		return out
	}
	for i := range min(width, x.BitLen()) {
		out[i] = x.Bit(i) == 1
	}
	return out
}

// TableBytes reads a table from little-endian bytes: entry k is bit k%8 of
// b[k/8]. Missing bytes read as zero.
func TableBytes(b []byte, width int) []bool {
	if width <= 0 {
		return []bool{}
	}
	out := make([]bool, width)
	for k := range min(width, 8*len(b)) {
		out[k] = b[k/8]&(1<<(k%8)) != 0
	}
	return out
}

// Int is the inverse of TableBig: entry k of table becomes bit k.
func Int(table []bool) *big.Int {
	x := new(big.Int)
	for i, v := range table {
		if v {
			x.SetBit(x, i, 1)
		}
	}
	return x
}

// Parse reads a non-negative integer. Decimal, "0x" hexadecimal, "0b" binary
// and "0o" octal notations are accepted, with optional underscores.
func Parse(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	x, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid integer %q", s)
	}
	if x.Sign() < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "integer %q is negative", s)
	}
	return x, nil
}

// ParseTable parses s and expands it to a table of the given width.
func ParseTable(s string, width int) ([]bool, error) {
	if err := errors.ValidateWidth(width); err != nil {
		return nil, err
	}
	x, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return TableBig(x, width), nil
}

// String renders a table as a string of '0' and '1', entry 0 first.
func String(table []bool) string {
	var b strings.Builder
	b.Grow(len(table))
	for _, v := range table {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Hex renders the integer of a table in hexadecimal, for compact keys.
func Hex(table []bool) string {
	return Int(table).Text(16)
}
