package bdd

import (
	"strings"

	"github.com/matzehuels/robdd/pkg/errors"
)

// Operator is a binary boolean operator applied position by position to two
// truth tables.
type Operator int

const (
	OpAnd    Operator = iota // conjunction
	OpXor                    // exclusive or
	OpOr                     // disjunction
	OpNand                   // negation of and
	OpNor                    // negation of or
	OpImp                    // implication
	OpBiimp                  // equivalence
	OpDiff                   // a and not b
	OpLess                   // not a and b
	OpInvimp                 // reverse implication
	opCount
)

var opNames = [opCount]string{
	OpAnd:    "and",
	OpXor:    "xor",
	OpOr:     "or",
	OpNand:   "nand",
	OpNor:    "nor",
	OpImp:    "imp",
	OpBiimp:  "biimp",
	OpDiff:   "diff",
	OpLess:   "less",
	OpInvimp: "invimp",
}

// opResults[op][a][b] is op applied to bits a and b.
var opResults = [opCount][2][2]byte{
	//          00   01          10   11
	OpAnd:    {{'0', '0'}, {'0', '1'}},
	OpXor:    {{'0', '1'}, {'1', '0'}},
	OpOr:     {{'0', '1'}, {'1', '1'}},
	OpNand:   {{'1', '1'}, {'1', '0'}},
	OpNor:    {{'1', '0'}, {'0', '0'}},
	OpImp:    {{'1', '1'}, {'0', '1'}},
	OpBiimp:  {{'1', '0'}, {'0', '1'}},
	OpDiff:   {{'0', '0'}, {'1', '0'}},
	OpLess:   {{'0', '1'}, {'0', '0'}},
	OpInvimp: {{'1', '0'}, {'1', '1'}},
}

func (op Operator) String() string {
	if op < 0 || op >= opCount {
		return "unknown"
	}
	return opNames[op]
}

// Valid reports whether op is one of the declared operators.
func (op Operator) Valid() bool { return op >= 0 && op < opCount }

// Operators lists every operator in declaration order.
func Operators() []Operator {
	out := make([]Operator, opCount)
	for i := range out {
		out[i] = Operator(i)
	}
	return out
}

// ParseOperator looks up an operator by name (case-insensitive). The symbols
// "&", "|", "^" and "=" are accepted for and, or, xor and biimp.
func ParseOperator(name string) (Operator, error) {
	switch s := strings.ToLower(strings.TrimSpace(name)); s {
	case "&", "&&":
		return OpAnd, nil
	case "|", "||":
		return OpOr, nil
	case "^":
		return OpXor, nil
	case "=", "==", "<=>":
		return OpBiimp, nil
	case "=>", "->":
		return OpImp, nil
	default:
		for i, n := range opNames {
			if n == s {
				return Operator(i), nil
			}
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidOperator, "unknown operator %q", name)
}

// Eval applies op to two boolean values.
func (op Operator) Eval(a, b bool) bool {
	return opResults[op][b2i(a)][b2i(b)] == '1'
}

// Apply combines two binary strings character by character. Both strings must
// have the same length and contain only '0' and '1'; anything else is an
// OPERATOR_ARITY error.
func (op Operator) Apply(s0, s1 string) (string, error) {
	if !op.Valid() {
		return "", errors.New(errors.ErrCodeInvalidOperator, "unknown operator %d", int(op))
	}
	if len(s0) != len(s1) {
		return "", errors.New(errors.ErrCodeOperatorArity,
			"operand lengths differ: %d and %d", len(s0), len(s1))
	}
	out := make([]byte, len(s0))
	for i := range len(s0) {
		a, ok0 := bitOf(s0[i])
		b, ok1 := bitOf(s1[i])
		if !ok0 || !ok1 {
			return "", errors.New(errors.ErrCodeOperatorArity,
				"operand position %d is not a single bit (%q, %q)", i, s0[i], s1[i])
		}
		out[i] = opResults[op][a][b]
	}
	return string(out), nil
}

func bitOf(c byte) (int, bool) {
	switch c {
	case '0':
		return 0, true
	case '1':
		return 1, true
	}
	return 0, false
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
