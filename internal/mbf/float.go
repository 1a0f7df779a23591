// Package mbf implements the Microsoft Binary Format floating point
// numbers used by GW-BASIC, in single (4 byte) and double (8 byte)
// widths, with the legacy engine's rounding behaviour.
package mbf

import (
	"math"

	"gwbasic/internal/berrors"
)

// Width selects the single or double precision format. Its value is the
// size of the stored form in bytes.
type Width uint8

const (
	Single Width = 4
	Double Width = 8
)

//
// Errors returned by the arithmetic. Overflow and division by zero come
// with a usable substitute (the signed maximum magnitude), so they are
// soft; a domain error has no sensible result
//

var (
	ErrOverflow       = berrors.Soft(berrors.Overflow)
	ErrDivisionByZero = berrors.Soft(berrors.DivisionByZero)
	ErrDomain         = berrors.New(berrors.IllegalFunctionCall)
)

// mantissa bits, including the implicit leading one
func (w Width) mbits() uint {
	return uint(w)*8 - 8
}

// working width: mantissa plus the carry byte
func (w Width) work() uint {
	return uint(w) * 8
}

func (w Width) bias() int {
	return 128 + int(w.mbits())
}

// Digits is the number of significant decimal digits PRINT shows.
func (w Width) Digits() int {

	if w == Double {
		return 16
	}

	return 7
}

// ExpChar is the exponent letter used in scientific notation.
func (w Width) ExpChar() byte {

	if w == Double {
		return 'D'
	}

	return 'E'
}

// Float is a normalised MBF number. man holds the mantissa including the
// implicit top bit; exp is the biased exponent and is zero only for the
// value zero.
type Float struct {
	w   Width
	neg bool
	exp uint8
	man uint64
}

// Zero returns zero of width w.
func Zero(w Width) Float {
	return Float{w: w}
}

// Max returns the largest magnitude representable in width w.
func Max(w Width, neg bool) Float {
	return Float{w: w, neg: neg, exp: 0xff, man: 1<<w.mbits() - 1}
}

// FromBytes decodes an MBF byte image; len(b) selects the width.
func FromBytes(b []byte) Float {

	w := Width(len(b))
	if w != Single && w != Double {
		panic("mbf: bad image length")
	}

	exp := b[w-1]
	if exp == 0 {
		return Zero(w)
	}

	var man uint64
	for i := int(w) - 2; i >= 0; i-- {
		man = man<<8 | uint64(b[i])
	}

	top := uint64(1) << (w.mbits() - 1)
	neg := man&top != 0

	return Float{w: w, neg: neg, exp: exp, man: man | top}
}

// Bytes encodes x in MBF layout: mantissa little endian, the sign in the
// top bit of the last mantissa byte, then the exponent.
func (x Float) Bytes() []byte {

	b := make([]byte, x.w)
	if x.exp == 0 {
		return b
	}

	top := uint64(1) << (x.w.mbits() - 1)
	man := x.man &^ top
	if x.neg {
		man |= top
	}

	for i := 0; i < int(x.w)-1; i++ {
		b[i] = byte(man >> (8 * i))
	}
	b[x.w-1] = x.exp

	return b
}

func (x Float) Width() Width {
	return x.w
}

func (x Float) IsZero() bool {
	return x.exp == 0
}

func (x Float) IsNeg() bool {
	return x.exp != 0 && x.neg
}

// Sign returns -1, 0 or 1.
func (x Float) Sign() int {

	switch {
	default:
		return 1
	case x.exp == 0:
		return 0
	case x.neg:
		return -1
	}
}

func (x Float) Neg() Float {

	if x.exp == 0 {
		return x
	}
	x.neg = !x.neg

	return x
}

func (x Float) Abs() Float {

	x.neg = false

	return x
}

// Normalise re-runs normalisation on x. For any Float obtained from this
// package it is the identity.
func (x Float) Normalise() (Float, error) {

	if x.exp == 0 {
		return Zero(x.w), nil
	}

	return normalise(x.w, x.man<<8, int(x.exp), x.neg)
}

// Cmp compares x and y numerically, returning -1, 0 or 1. Mixed widths
// are compared exactly.
func (x Float) Cmp(y Float) int {

	if x.w != y.w {
		x, y = x.ToDouble(), y.ToDouble()
	}

	sx, sy := x.Sign(), y.Sign()
	if sx != sy {
		if sx < sy {
			return -1
		}
		return 1
	}
	if sx == 0 {
		return 0
	}

	c := 0
	switch {
	case x.exp < y.exp:
		c = -1
	case x.exp > y.exp:
		c = 1
	case x.man < y.man:
		c = -1
	case x.man > y.man:
		c = 1
	}

	return c * sx
}

// FromInt converts an integer exactly where the width allows, rounding
// otherwise.
func FromInt(w Width, n int64) Float {

	if n == 0 {
		return Zero(w)
	}

	neg := n < 0
	m := uint64(n)
	if neg {
		m = uint64(-n)
	}

	f, _ := normalise(w, m, 128+int(w.work()), neg)

	return f
}

// FromFloat64 converts an IEEE double, rounding on the carry byte.
// Infinities and values out of range overflow.
func FromFloat64(w Width, f float64) (Float, error) {

	if f == 0 {
		return Zero(w), nil
	}
	if math.IsNaN(f) {
		return Zero(w), ErrDomain
	}

	neg := math.Signbit(f)
	if math.IsInf(f, 0) {
		return Max(w, neg), ErrOverflow
	}

	frac, e := math.Frexp(math.Abs(f))
	m := uint64(math.Ldexp(frac, 64)) >> (64 - w.work())

	return normalise(w, m, e+128, neg)
}

// Float64 converts x to an IEEE double. Double values lose their lowest
// three bits.
func (x Float) Float64() float64 {

	if x.exp == 0 {
		return 0
	}

	f := math.Ldexp(float64(x.man), int(x.exp)-x.w.bias())
	if x.neg {
		f = -f
	}

	return f
}

// ToSingle rounds x to single precision.
func (x Float) ToSingle() (Float, error) {

	if x.w == Single {
		return x, nil
	}
	if x.exp == 0 {
		return Zero(Single), nil
	}

	return normalise(Single, x.man>>24, int(x.exp), x.neg)
}

// ToDouble widens x; this is always exact.
func (x Float) ToDouble() Float {

	if x.w == Double {
		return x
	}

	return Float{w: Double, neg: x.neg, exp: x.exp, man: x.man << 32}
}

// To converts x to width w.
func (x Float) To(w Width) (Float, error) {

	if w == Double {
		return x.ToDouble(), nil
	}

	return x.ToSingle()
}

// intShift is the left shift that turns man into the integer value of
// x; negative means a right shift.
func (x Float) intShift() int {
	return int(x.exp) - x.w.bias()
}

// RoundInt rounds half away from zero. Magnitudes of 2^62 and above
// overflow.
func (x Float) RoundInt() (int64, error) {

	if x.exp == 0 {
		return 0, nil
	}

	var n uint64
	s := x.intShift()
	switch {
	default:
		n = ((x.man >> uint(-s-1)) + 1) >> 1
	case s >= 0:
		if s+int(x.w.mbits()) > 62 {
			return 0, ErrOverflow
		}
		n = x.man << uint(s)
	case -s > int(x.w.mbits()):
		n = 0
	}

	if x.neg {
		return -int64(n), nil
	}

	return int64(n), nil
}

// TruncInt drops the fraction, rounding toward zero.
func (x Float) TruncInt() (int64, error) {

	if x.exp == 0 {
		return 0, nil
	}

	var n uint64
	s := x.intShift()
	switch {
	default:
		n = x.man >> uint(-s)
	case s >= 0:
		if s+int(x.w.mbits()) > 62 {
			return 0, ErrOverflow
		}
		n = x.man << uint(s)
	case -s >= int(x.w.mbits()):
		n = 0
	}

	if x.neg {
		return -int64(n), nil
	}

	return int64(n), nil
}

// Trunc returns x with its fractional bits cleared (FIX).
func (x Float) Trunc() Float {

	s := x.intShift()
	if x.exp == 0 || s >= 0 {
		return x
	}
	if -s >= int(x.w.mbits()) {
		return Zero(x.w)
	}

	x.man &^= 1<<uint(-s) - 1

	return x
}

// IsInt reports whether x has no fractional part.
func (x Float) IsInt() bool {
	return x.Trunc().Cmp(x) == 0
}

// Floor returns the largest integral value not above x (INT).
func (x Float) Floor() Float {

	t := x.Trunc()
	if !x.IsNeg() || t.Cmp(x) == 0 {
		return t
	}

	f, _ := Sub(t, FromInt(x.w, 1))

	return f
}
