// Package cexpr implements the tiny arithmetic/bitwise expression tree
// the Code Generator uses to pre-evaluate any CRC parameter known at
// generate time while leaving unknown parameters as runtime references
// into the cfg_t configuration record. It replaces the string-keyed
// macro-templating approach of the original tool (see the project's
// design notes) with a small tagged-variant IR and a constant-folding
// Simplify pass.
package cexpr

import "fmt"

// Node is any expression in the IR. Every Node can report whether it is
// a compile-time-known integer (IsConst/ConstValue), simplify itself
// into an equivalent (ideally smaller) Node, and render itself as a C
// expression string with parentheses sufficient to preserve operator
// precedence.
type Node interface {
	IsConst() bool
	ConstValue() uint64
	Simplify() Node
	String() string
}

// Terminal is a leaf: either an integer literal (IsInt true, rendered
// via Display if non-empty, else via Value) or an opaque string
// reference such as "cfg->width".
type Terminal struct {
	IsInt   bool
	Value   uint64
	Display string // optional pretty-printed form of Value, e.g. "0x1D"
	Text    string // used when !IsInt
}

// Int builds an integer terminal.
func Int(v uint64) Terminal { return Terminal{IsInt: true, Value: v} }

// IntHex builds an integer terminal with a specific display string,
// used when the symbol table has already rendered a pretty hex literal.
func IntHex(v uint64, display string) Terminal {
	return Terminal{IsInt: true, Value: v, Display: display}
}

// Str builds a string (non-constant) terminal such as a cfg-> reference.
func Str(text string) Terminal { return Terminal{Text: text} }

func (t Terminal) IsConst() bool      { return t.IsInt }
func (t Terminal) ConstValue() uint64 { return t.Value }
func (t Terminal) Simplify() Node     { return t }
func (t Terminal) String() string {
	if !t.IsInt {
		return t.Text
	}
	if t.Display != "" {
		return t.Display
	}
	return fmt.Sprintf("0x%x", t.Value)
}

// AsNode coerces common Go values (Node, string, int-like) into a Node,
// matching how the generator's call sites mix symbol-table strings and
// sub-expressions freely.
func AsNode(v any) Node {
	switch x := v.(type) {
	case Node:
		return x
	case string:
		return Str(x)
	case int:
		return Int(uint64(x))
	case uint:
		return Int(uint64(x))
	case uint64:
		return Int(x)
	default:
		panic(fmt.Sprintf("cexpr: unsupported operand type %T", v))
	}
}

// Parenthesis wraps an inner expression in parentheses, unless Simplify
// determines the grouping is unnecessary (spec §4.2): a terminal never
// needs parentheses, and a non-constant Parenthesis around an already-
// parenthesised or naturally-atomic expression unwraps.
type Parenthesis struct{ Inner Node }

func (p Parenthesis) IsConst() bool      { return p.Inner.IsConst() }
func (p Parenthesis) ConstValue() uint64 { return p.Inner.ConstValue() }
func (p Parenthesis) String() string     { return "(" + p.Inner.String() + ")" }

func (p Parenthesis) Simplify() Node {
	inner := p.Inner.Simplify()
	if inner.IsConst() {
		return Int(inner.ConstValue())
	}
	switch inner.(type) {
	case Terminal, Parenthesis, FunctionCall:
		return inner
	}
	return Parenthesis{Inner: inner}
}

// FunctionCall renders as Name(args[0], args[1], ...); it is never
// constant-folded since crcgen never knows a runtime function's value
// ahead of time.
type FunctionCall struct {
	Name string
	Args []Node
}

func Call(name string, args ...any) FunctionCall {
	nodes := make([]Node, len(args))
	for i, a := range args {
		nodes[i] = AsNode(a)
	}
	return FunctionCall{Name: name, Args: nodes}
}

func (f FunctionCall) IsConst() bool      { return false }
func (f FunctionCall) ConstValue() uint64 { return 0 }
func (f FunctionCall) Simplify() Node {
	args := make([]Node, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.Simplify()
	}
	return FunctionCall{Name: f.Name, Args: args}
}
func (f FunctionCall) String() string {
	s := f.Name + "("
	for i, a := range f.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// op is the shared representation of every binary operator. kind
// selects the C operator text and the identities Simplify applies.
type op struct {
	kind     string
	lhs, rhs Node
}

func (o op) IsConst() bool { return o.lhs.IsConst() && o.rhs.IsConst() }

func (o op) ConstValue() uint64 {
	l, r := o.lhs.ConstValue(), o.rhs.ConstValue()
	switch o.kind {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "<<":
		return l << r
	case ">>":
		return l >> r
	case "&":
		return l & r
	case "|":
		return l | r
	case "^":
		return l ^ r
	}
	panic("cexpr: unknown operator " + o.kind)
}

func (o op) String() string {
	return wrapOperand(o.lhs, o.kind, true) + " " + o.kind + " " + wrapOperand(o.rhs, o.kind, false)
}

// precedence groups operators from loosest to tightest binding, mirroring
// C's grammar closely enough for the handful of operators this IR emits.
var precedence = map[string]int{
	"|": 1, "^": 2, "&": 3, "<<": 4, ">>": 4, "+": 5, "-": 5, "*": 6,
}

func wrapOperand(n Node, parentOp string, isLHS bool) string {
	child, ok := n.(op)
	if !ok {
		return n.String()
	}
	if precedence[child.kind] < precedence[parentOp] {
		return "(" + child.String() + ")"
	}
	// Same precedence on the right of a non-associative operator
	// (subtraction, shifts) still needs parentheses to preserve meaning.
	if !isLHS && precedence[child.kind] == precedence[parentOp] &&
		(parentOp == "-" || parentOp == "<<" || parentOp == ">>") {
		return "(" + child.String() + ")"
	}
	return child.String()
}

func (o op) Simplify() Node {
	l := o.lhs.Simplify()
	r := o.rhs.Simplify()
	if l.IsConst() && r.IsConst() {
		folded := op{kind: o.kind, lhs: l, rhs: r}
		return Int(folded.ConstValue())
	}
	switch o.kind {
	case "+":
		if isZero(r) {
			return l
		}
		if isZero(l) {
			return r
		}
	case "-":
		if isZero(r) {
			return l
		}
	case "*":
		if isOne(r) {
			return l
		}
		if isOne(l) {
			return r
		}
		if isZero(r) || isZero(l) {
			return Int(0)
		}
	case "<<", ">>":
		if isZero(r) {
			return l
		}
	case "&":
		if isZero(r) || isZero(l) {
			return Int(0)
		}
	case "|", "^":
		if isZero(r) {
			return l
		}
		if isZero(l) {
			return r
		}
	}
	return op{kind: o.kind, lhs: l, rhs: r}
}

func isZero(n Node) bool { return n.IsConst() && n.ConstValue() == 0 }
func isOne(n Node) bool  { return n.IsConst() && n.ConstValue() == 1 }

func bin(kind string, a, b any) op { return op{kind: kind, lhs: AsNode(a), rhs: AsNode(b)} }

func Add(a, b any) Node { return bin("+", a, b) }
func Sub(a, b any) Node { return bin("-", a, b) }
func Mul(a, b any) Node { return bin("*", a, b) }
func Shl(a, b any) Node { return bin("<<", a, b) }
func Shr(a, b any) Node { return bin(">>", a, b) }
func And(a, b any) Node { return bin("&", a, b) }
func Or(a, b any) Node  { return bin("|", a, b) }
func Xor(a, b any) Node { return bin("^", a, b) }

// WithAllOnes resolves the "x AND allones(width) = x" identity from
// spec §4.2, which Simplify can't apply on its own because it requires
// knowing the operand width. Callers (the symbol table / code generator,
// which always know width) should call this instead of And when the
// mask operand is a known all-ones pattern for a known width.
func WithAllOnes(x Node, mask Node, width uint) Node {
	x = x.Simplify()
	mask = mask.Simplify()
	if mask.IsConst() && width > 0 && width < 64 && mask.ConstValue() == (uint64(1)<<width)-1 {
		return x
	}
	if mask.IsConst() && width >= 64 && mask.ConstValue() == ^uint64(0) {
		return x
	}
	return And(x, mask).Simplify()
}
