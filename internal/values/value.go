// Package values implements the tagged BASIC value: 16 bit integers,
// single and double precision MBF floats and string handles, with the
// coercion and operator rules of GW-BASIC.
package values

import (
	"encoding/binary"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
)

// Kind is the type sigil of a value.
type Kind byte

const (
	Integer Kind = '%'
	Single  Kind = '!'
	Double  Kind = '#'
	String  Kind = '$'
)

// IsKind reports whether c is a type sigil.
func IsKind(c byte) bool {
	return c == '%' || c == '!' || c == '#' || c == '$'
}

func (k Kind) Numeric() bool {
	return k != String
}

// Size is the byte size of the stored form.
func (k Kind) Size() int {

	switch k {
	default:
		return 4
	case Integer:
		return 2
	case Double:
		return 8
	case String:
		return 3
	}
}

// rank orders the numeric kinds by precision.
func (k Kind) rank() int {

	switch k {
	default:
		return -1
	case Integer:
		return 0
	case Single:
		return 1
	case Double:
		return 2
	}
}

// StringRef is a handle into a StringHeap. It never owns the bytes.
type StringRef struct {
	Len    uint8
	Offset uint16
}

// StringHeap stores string bodies for StringRefs.
type StringHeap interface {
	Copy(ref StringRef) []byte
	Store(b []byte) (StringRef, error)
}

// Value is a BASIC value.
type Value struct {
	kind Kind
	i    int16
	f    mbf.Float
	s    StringRef
}

func Int(n int16) Value {
	return Value{kind: Integer, i: n}
}

// Float wraps f as a Single or Double according to its width.
func Float(f mbf.Float) Value {

	if f.Width() == mbf.Double {
		return Value{kind: Double, f: f}
	}

	return Value{kind: Single, f: f}
}

func Str(ref StringRef) Value {
	return Value{kind: String, s: ref}
}

// Bool returns the BASIC truth value: -1 for true, 0 for false.
func Bool(b bool) Value {

	if b {
		return Int(-1)
	}

	return Int(0)
}

// Zero returns the initial value of a variable of kind k.
func Zero(k Kind) Value {

	switch k {
	default:
		return Float(mbf.Zero(mbf.Single))
	case Integer:
		return Int(0)
	case Double:
		return Float(mbf.Zero(mbf.Double))
	case String:
		return Str(StringRef{})
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

// RefPtr returns the handle inside a String value so that heap
// compaction can rewrite it, or nil for numbers.
func (v *Value) RefPtr() *StringRef {

	if v.kind != String {
		return nil
	}

	return &v.s
}

func (v Value) IsString() bool {
	return v.kind == String
}

// Integer returns the payload of an Integer value.
func (v Value) Integer() int16 {
	return v.i
}

// MBF returns the payload of a Single or Double value.
func (v Value) MBF() mbf.Float {
	return v.f
}

// Ref returns the payload of a String value.
func (v Value) Ref() StringRef {
	return v.s
}

// Sign returns -1, 0 or 1 for numeric values.
func (v Value) Sign() int {

	switch v.kind {
	default:
		return v.f.Sign()
	case Integer:
		switch {
		case v.i < 0:
			return -1
		case v.i > 0:
			return 1
		}
		return 0
	case String:
		return 0
	}
}

// IsTrue is the condition test used by IF and WHILE.
func (v Value) IsTrue() bool {
	return v.Sign() != 0
}

// Bytes encodes v in its stored form: integers as two bytes little
// endian, floats as MBF, strings as length then offset.
func (v Value) Bytes() []byte {

	switch v.kind {
	default:
		return v.f.Bytes()
	case Integer:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v.i))
		return b
	case String:
		b := make([]byte, 3)
		b[0] = v.s.Len
		binary.LittleEndian.PutUint16(b[1:], v.s.Offset)
		return b
	}
}

// FromBytes decodes the stored form of a value of kind k.
func FromBytes(k Kind, b []byte) (Value, error) {

	if len(b) < k.Size() {
		return Value{}, berrors.New(berrors.IllegalFunctionCall)
	}
	b = b[:k.Size()]

	switch k {
	default:
		return Float(mbf.FromBytes(b)), nil
	case Integer:
		return Int(int16(binary.LittleEndian.Uint16(b))), nil
	case String:
		return Str(StringRef{Len: b[0], Offset: binary.LittleEndian.Uint16(b[1:])}), nil
	}
}

func width(k Kind) mbf.Width {

	if k == Double {
		return mbf.Double
	}

	return mbf.Single
}

// ToFloat converts a numeric value to a float of width w. Rounding a
// double to single may overflow.
func ToFloat(v Value, w mbf.Width) (mbf.Float, error) {

	switch v.kind {
	default:
		return v.f.To(w)
	case Integer:
		return mbf.FromInt(w, int64(v.i)), nil
	case String:
		return mbf.Zero(w), berrors.New(berrors.TypeMismatch)
	}
}

// ToInt rounds v to a 16 bit integer, half away from zero.
func ToInt(v Value) (int16, error) {

	switch v.kind {
	default:
		n, err := v.f.RoundInt()
		if err != nil || n < -32768 || n > 32767 {
			return 0, berrors.New(berrors.Overflow)
		}
		return int16(n), nil
	case Integer:
		return v.i, nil
	case String:
		return 0, berrors.New(berrors.TypeMismatch)
	}
}

// ToInt64 rounds a numeric value to a machine integer, for arguments
// that take wider ranges than an Integer.
func ToInt64(v Value) (int64, error) {

	switch v.kind {
	default:
		n, err := v.f.RoundInt()
		if err != nil {
			return 0, berrors.New(berrors.Overflow)
		}
		return n, nil
	case Integer:
		return int64(v.i), nil
	case String:
		return 0, berrors.New(berrors.TypeMismatch)
	}
}

// Coerce converts v to kind k. Numeric conversions always succeed
// except for range overflow; converting between strings and numbers is
// a type mismatch.
func Coerce(v Value, k Kind) (Value, error) {

	if v.kind == k {
		return v, nil
	}
	if v.kind == String || k == String {
		return v, berrors.New(berrors.TypeMismatch)
	}

	if k == Integer {
		n, err := ToInt(v)
		if err != nil {
			return v, err
		}
		return Int(n), nil
	}

	f, err := ToFloat(v, width(k))
	if err != nil {
		return Float(f), berrors.New(berrors.Overflow)
	}

	return Float(f), nil
}

// PassMostPrecise converts both operands to the more precise of their
// numeric kinds.
func PassMostPrecise(l, r Value) (Value, Value, error) {

	if l.kind == String || r.kind == String {
		return l, r, berrors.New(berrors.TypeMismatch)
	}

	k := l.kind
	if r.kind.rank() > k.rank() {
		k = r.kind
	}

	l, err := Coerce(l, k)
	if err != nil {
		return l, r, err
	}
	r, err = Coerce(r, k)

	return l, r, err
}
