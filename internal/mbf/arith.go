package mbf

import (
	"math/bits"
)

//
// Arithmetic works on the denormalised form: the mantissa shifted left
// by one carry byte, held in w.work() bits, with value
// man * 2^(exp - bias - 8). normalise brings such a value back to a
// Float, rounding the carry byte half to even
//

func normalise(w Width, man uint64, exp int, neg bool) (Float, error) {

	if man == 0 {
		return Zero(w), nil
	}

	if w == Single {
		for man >= 1<<32 {
			man >>= 1
			exp++
		}
	}

	top := uint64(1) << (w.work() - 1)
	for man&top == 0 {
		man <<= 1
		exp--
	}

	if exp <= 0 {
		return Zero(w), nil
	}

	c := man & 0xff
	m := man >> 8
	if c > 0x80 || (c == 0x80 && m&1 == 1) {
		m++
		if m == 1<<w.mbits() {
			m >>= 1
			exp++
		}
	}

	if exp > 0xff {
		return Max(w, neg), ErrOverflow
	}

	return Float{w: w, neg: neg, exp: uint8(exp), man: m}, nil
}

// widths must agree; mixed operands are widened to double
func align(x, y Float) (Float, Float) {

	if x.w != y.w {
		return x.ToDouble(), y.ToDouble()
	}

	return x, y
}

// Add returns x+y. When the operands have opposite signs and the
// alignment shift lost bits, the difference is taken one unit low before
// rounding, as the legacy engine does.
func Add(x, y Float) (Float, error) {

	x, y = align(x, y)
	w := x.w

	if y.exp == 0 {
		return x, nil
	}
	if x.exp == 0 {
		return y, nil
	}

	if x.exp < y.exp {
		x, y = y, x
	}

	lm := x.man << 8
	rm := y.man << 8
	d := uint(x.exp - y.exp)
	exact := true

	switch {
	case d >= w.work():
		exact = false
		rm = 0
	case d > 0:
		exact = rm&(1<<d-1) == 0
		rm >>= d
	}

	exp := int(x.exp)

	if x.neg == y.neg {
		sum, carry := bits.Add64(lm, rm, 0)
		if carry != 0 {
			sum = sum>>1 | 1<<63
			exp++
		}
		return normalise(w, sum, exp, x.neg)
	}

	neg := x.neg
	if rm > lm {
		lm, rm = rm, lm
		neg = y.neg
	}

	m := lm - rm
	if !exact && m > 0 {
		m--
	}

	return normalise(w, m, exp, neg)
}

func Sub(x, y Float) (Float, error) {
	return Add(x, y.Neg())
}

// shr128 returns the low 64 bits of (hi:lo) >> s.
func shr128(hi, lo uint64, s uint) uint64 {

	if s >= 64 {
		return hi >> (s - 64)
	}

	return hi<<(64-s) | lo>>s
}

// Mul returns x*y. The full product is truncated to the working width
// before rounding.
func Mul(x, y Float) (Float, error) {

	x, y = align(x, y)
	w := x.w

	if x.exp == 0 || y.exp == 0 {
		return Zero(w), nil
	}

	neg := x.neg != y.neg
	hi, lo := bits.Mul64(x.man<<8, y.man<<8)

	W := w.work()
	exp := int(x.exp) + int(y.exp) - w.bias() - 8

	var m uint64
	if shr128(hi, lo, 2*W-1)&1 == 1 {
		m = shr128(hi, lo, W)
		exp += int(W)
	} else {
		m = shr128(hi, lo, W-1)
		exp += int(W) - 1
	}

	return normalise(w, m, exp, neg)
}

// Div returns x/y. Division by zero yields the maximum magnitude with
// the sign of x.
func Div(x, y Float) (Float, error) {

	x, y = align(x, y)
	w := x.w

	if y.exp == 0 {
		return Max(w, x.neg), ErrDivisionByZero
	}
	if x.exp == 0 {
		return Zero(w), nil
	}

	neg := x.neg != y.neg
	W := w.work()
	lm := x.man << 8
	rm := y.man << 8

	// (lm << W-1) / rm; lm < 2rm so the quotient fits W bits
	hi := lm >> (65 - W)
	lo := lm << (W - 1)
	q, _ := bits.Div64(hi, lo, rm)

	return normalise(w, q, int(x.exp)-int(y.exp)+129, neg)
}

// PowInt raises x to an integer power by repeated squaring.
func PowInt(x Float, n int) (Float, error) {

	w := x.w
	one := FromInt(w, 1)

	if n == 0 {
		return one, nil
	}
	if x.exp == 0 {
		if n < 0 {
			return Max(w, false), ErrDivisionByZero
		}
		return Zero(w), nil
	}

	neg := n < 0
	if neg {
		n = -n
	}
	odd := n&1 == 1

	var err error
	r := one
	b := x
	for n > 0 {
		if n&1 == 1 {
			if r, err = Mul(r, b); err != nil {
				break
			}
		}
		n >>= 1
		if n > 0 {
			if b, err = Mul(b, b); err != nil {
				break
			}
		}
	}

	if err != nil {
		if neg {
			return Zero(w), nil
		}
		return Max(w, x.neg && odd), err
	}

	if neg {
		return Div(one, r)
	}

	return r, nil
}
