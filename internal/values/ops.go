package values

import (
	"bytes"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
)

// Op identifies an operator.
type Op int

const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIntDiv
	OpMod
	OpPow
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpXor
	OpEqv
	OpImp
	OpNeg
	OpNot
)

var opNames = [...]string{
	OpNone:   "?",
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpIntDiv: "\\",
	OpMod:    "MOD",
	OpPow:    "^",
	OpEq:     "=",
	OpNe:     "<>",
	OpLt:     "<",
	OpGt:     ">",
	OpLe:     "<=",
	OpGe:     ">=",
	OpAnd:    "AND",
	OpOr:     "OR",
	OpXor:    "XOR",
	OpEqv:    "EQV",
	OpImp:    "IMP",
	OpNeg:    "-",
	OpNot:    "NOT",
}

func (op Op) String() string {
	return opNames[op]
}

// Calc applies operators. It carries the string heap for concatenation
// and comparison and the transcendental implementation used by ^.
type Calc struct {
	Heap StringHeap
	Math mbf.Math
}

// Binary applies a binary operator. Floating point overflow and division
// by zero return the substitute value together with a recoverable error.
func (c *Calc) Binary(op Op, l, r Value) (Value, error) {

	switch op {
	default:
		return l, berrors.New(berrors.SyntaxError)
	case OpAdd:
		if l.kind == String && r.kind == String {
			return c.concat(l, r)
		}
		return c.arith(op, l, r)
	case OpSub, OpMul:
		return c.arith(op, l, r)
	case OpDiv:
		return c.divide(l, r)
	case OpIntDiv, OpMod:
		return c.intDivide(op, l, r)
	case OpPow:
		return c.power(l, r)
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		n, err := c.Compare(l, r)
		if err != nil {
			return Int(0), err
		}
		return Bool(relation(op, n)), nil
	case OpAnd, OpOr, OpXor, OpEqv, OpImp:
		return logical(op, l, r)
	}
}

// Unary applies negation or NOT.
func (c *Calc) Unary(op Op, v Value) (Value, error) {

	switch op {
	default:
		return v, berrors.New(berrors.SyntaxError)
	case OpNeg:
		return Negate(v)
	case OpNot:
		n, err := toLogical(v)
		if err != nil {
			return v, err
		}
		return Int(^int16(n)), nil
	}
}

// Negate returns -v. Negating -32768 promotes to Single.
func Negate(v Value) (Value, error) {

	switch v.kind {
	default:
		return Float(v.f.Neg()), nil
	case Integer:
		if v.i == -32768 {
			return Float(mbf.FromInt(mbf.Single, 32768)), nil
		}
		return Int(-v.i), nil
	case String:
		return v, berrors.New(berrors.TypeMismatch)
	}
}

func relation(op Op, n int) bool {

	switch op {
	default:
		return n == 0
	case OpNe:
		return n != 0
	case OpLt:
		return n < 0
	case OpGt:
		return n > 0
	case OpLe:
		return n <= 0
	case OpGe:
		return n >= 0
	}
}

// Compare orders two values of compatible kinds. Strings compare
// bytewise, a proper prefix being the smaller.
func (c *Calc) Compare(l, r Value) (int, error) {

	if l.kind == String || r.kind == String {
		if l.kind != r.kind {
			return 0, berrors.New(berrors.TypeMismatch)
		}
		return bytes.Compare(c.Heap.Copy(l.s), c.Heap.Copy(r.s)), nil
	}

	l, r, err := PassMostPrecise(l, r)
	if err != nil {
		return 0, err
	}

	if l.kind == Integer {
		switch {
		case l.i < r.i:
			return -1, nil
		case l.i > r.i:
			return 1, nil
		}
		return 0, nil
	}

	return l.f.Cmp(r.f), nil
}

func (c *Calc) concat(l, r Value) (Value, error) {

	if int(l.s.Len)+int(r.s.Len) > 255 {
		return l, berrors.New(berrors.StringTooLong)
	}

	b := append(c.Heap.Copy(l.s), c.Heap.Copy(r.s)...)
	ref, err := c.Heap.Store(b)
	if err != nil {
		return l, err
	}

	return Str(ref), nil
}

//
// + - and * on Integers work in 32 bits. A sum or difference that leaves
// the 16 bit range is promoted to Single; a product overflows
//

func (c *Calc) arith(op Op, l, r Value) (Value, error) {

	l, r, err := PassMostPrecise(l, r)
	if err != nil {
		return l, err
	}

	if l.kind == Integer {
		a, b := int32(l.i), int32(r.i)
		var n int32
		switch op {
		case OpAdd:
			n = a + b
		case OpSub:
			n = a - b
		case OpMul:
			n = a * b
		}
		if n >= -32768 && n <= 32767 {
			return Int(int16(n)), nil
		}
		if op == OpMul {
			return l, berrors.New(berrors.Overflow)
		}
		return Float(mbf.FromInt(mbf.Single, int64(n))), nil
	}

	var f mbf.Float
	switch op {
	case OpAdd:
		f, err = mbf.Add(l.f, r.f)
	case OpSub:
		f, err = mbf.Sub(l.f, r.f)
	case OpMul:
		f, err = mbf.Mul(l.f, r.f)
	}

	return Float(f), err
}

// floats returns both operands as floats: Double if either operand is
// Double, otherwise Single.
func floats(l, r Value) (mbf.Float, mbf.Float, error) {

	if l.kind == String || r.kind == String {
		return mbf.Float{}, mbf.Float{}, berrors.New(berrors.TypeMismatch)
	}

	w := mbf.Single
	if l.kind == Double || r.kind == Double {
		w = mbf.Double
	}

	lf, err := ToFloat(l, w)
	if err != nil {
		return lf, lf, err
	}
	rf, err := ToFloat(r, w)

	return lf, rf, err
}

func (c *Calc) divide(l, r Value) (Value, error) {

	lf, rf, err := floats(l, r)
	if err != nil {
		return l, err
	}

	f, err := mbf.Div(lf, rf)

	return Float(f), err
}

// intDivide implements \ and MOD on Integers. A zero divisor gives the
// largest integer with the sign of the dividend.
func (c *Calc) intDivide(op Op, l, r Value) (Value, error) {

	a, err := ToInt(l)
	if err != nil {
		return l, err
	}
	b, err := ToInt(r)
	if err != nil {
		return l, err
	}

	if b == 0 {
		if a < 0 {
			return Int(-32768), berrors.Soft(berrors.DivisionByZero)
		}
		return Int(32767), berrors.Soft(berrors.DivisionByZero)
	}

	if op == OpMod {
		return Int(int16(int32(a) % int32(b))), nil
	}

	q := int32(a) / int32(b)
	if q > 32767 {
		return l, berrors.New(berrors.Overflow)
	}

	return Int(int16(q)), nil
}

func (c *Calc) power(l, r Value) (Value, error) {

	if r.kind == Integer && l.kind.Numeric() {
		w := mbf.Single
		if l.kind == Double {
			w = mbf.Double
		}
		b, err := ToFloat(l, w)
		if err != nil {
			return l, err
		}
		f, err := mbf.PowInt(b, int(r.i))
		return Float(f), err
	}

	lf, rf, err := floats(l, r)
	if err != nil {
		return l, err
	}

	f, err := c.Math.Pow(lf, rf)

	return Float(f), err
}

// toLogical converts an operand of a bitwise operator. The range runs to
// 65535 so that unsigned masks can be written in decimal.
func toLogical(v Value) (uint16, error) {

	switch v.kind {
	default:
		n, err := v.f.RoundInt()
		if err != nil || n < -32768 || n > 65535 {
			return 0, berrors.New(berrors.Overflow)
		}
		return uint16(n), nil
	case Integer:
		return uint16(v.i), nil
	case String:
		return 0, berrors.New(berrors.TypeMismatch)
	}
}

func logical(op Op, l, r Value) (Value, error) {

	a, err := toLogical(l)
	if err != nil {
		return l, err
	}
	b, err := toLogical(r)
	if err != nil {
		return l, err
	}

	var n uint16
	switch op {
	case OpAnd:
		n = a & b
	case OpOr:
		n = a | b
	case OpXor:
		n = a ^ b
	case OpEqv:
		n = ^(a ^ b)
	case OpImp:
		n = ^a | b
	}

	return Int(int16(n)), nil
}
