// Package ops defines the derivative rules of the scalar autodiff engine.
//
// A node does not carry a closure. It carries a Rule: a Kind tag plus the
// parameters the rule needs beyond its operands' values. Forward computes a
// node's value from its operand values, Backward returns the contributions
// the node's gradient makes to each operand's gradient.
//
// Supported operations:
//   - Add: a + b (d/da = 1, d/db = 1)
//   - Mul: a * b (d/da = b, d/db = a)
//   - Pow: a ** n for a constant real n (d/da = n * a**(n-1))
//   - ReLU: max(0, a) (d/da = 1 if the output is positive, else 0)
package ops

import (
	"errors"
	"fmt"
)

// Errors returned when a rule is malformed.
var (
	ErrUnknownKind = errors.New("unknown operation")
	ErrArity       = errors.New("wrong number of operands")
)

// MaxOperands is the largest number of operands any rule consumes.
const MaxOperands = 2

// Kind identifies which derivative rule applies to a node.
type Kind uint8

// Operation kinds. None marks a leaf.
const (
	None Kind = iota
	Add
	Mul
	Pow
	ReLU
)

var kindNames = [...]string{
	None: "none",
	Add:  "add",
	Mul:  "mul",
	Pow:  "pow",
	ReLU: "relu",
}

// Symbols used by diagnostic dumps.
var kindSymbols = [...]string{
	None: "",
	Add:  "+",
	Mul:  "*",
	Pow:  "pow",
	ReLU: "ReLU",
}

var kindArity = [...]int{
	None: 0,
	Add:  2,
	Mul:  2,
	Pow:  1,
	ReLU: 1,
}

// String returns the lower-case name of the kind ("add", "mul", ...).
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Symbol returns the short label printed next to a node, empty for leaves.
func (k Kind) Symbol() string {
	if !k.Valid() {
		return "?"
	}
	return kindSymbols[k]
}

// Arity returns the number of operands the kind consumes.
func (k Kind) Arity() int {
	if !k.Valid() {
		return -1
	}
	return kindArity[k]
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// ParseKind maps a name produced by Kind.String back to its Kind.
// The empty string is accepted as None.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return None, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Rule is the derivative rule stored on a node.
type Rule struct {
	Kind     Kind
	Exponent float64 // Pow only.
}

// Leaf returns the rule of a node with no operands.
func Leaf() Rule { return Rule{Kind: None} }

// String formats the rule, including the exponent for Pow.
func (r Rule) String() string {
	if r.Kind == Pow {
		return fmt.Sprintf("pow(%g)", r.Exponent)
	}
	return r.Kind.String()
}

// Check returns an error if the rule cannot be applied to n operands.
func (r Rule) Check(n int) error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownKind, r.Kind)
	}
	if want := r.Kind.Arity(); n != want {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, r.Kind, want, n)
	}
	return nil
}

// Forward computes the output value of r applied to the operand values.
// Unused operand slots are ignored.
func Forward(r Rule, in [MaxOperands]float64) float64 {
	switch r.Kind {
	case Add:
		return addForward(in[0], in[1])
	case Mul:
		return mulForward(in[0], in[1])
	case Pow:
		return powForward(in[0], r.Exponent)
	case ReLU:
		return reluForward(in[0])
	default:
		panic(fmt.Sprintf("ops: forward of %s", r.Kind))
	}
}

// Backward returns the gradient contributions for each operand of a node
// with rule r, operand values in, output value out and accumulated gradient
// outGrad. The caller adds them into the operands' gradients; a leaf
// contributes nothing.
func Backward(r Rule, in [MaxOperands]float64, out, outGrad float64) [MaxOperands]float64 {
	switch r.Kind {
	case None:
		return [MaxOperands]float64{}
	case Add:
		return addBackward(outGrad)
	case Mul:
		return mulBackward(in[0], in[1], outGrad)
	case Pow:
		return powBackward(in[0], r.Exponent, outGrad)
	case ReLU:
		return reluBackward(out, outGrad)
	default:
		panic(fmt.Sprintf("ops: backward of %s", r.Kind))
	}
}
