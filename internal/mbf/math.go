package mbf

import (
	"math"
)

// Math supplies the transcendental functions. Results have the width of
// the argument.
type Math interface {
	Sqrt(x Float) (Float, error)
	Exp(x Float) (Float, error)
	Log(x Float) (Float, error)
	Sin(x Float) (Float, error)
	Cos(x Float) (Float, error)
	Tan(x Float) (Float, error)
	Atan(x Float) (Float, error)
	Pow(x, y Float) (Float, error)
}

// powCommon handles the cases both implementations share: zero bases,
// integral exponents and negative bases. ok is false when the caller
// must compute exp(y*log(x)).
func powCommon(x, y Float) (Float, bool, error) {

	w := x.w
	if y.w > w {
		w = y.w
	}

	if y.IsZero() {
		return FromInt(w, 1), true, nil
	}
	if x.IsZero() {
		if y.IsNeg() {
			return Max(w, false), true, ErrDivisionByZero
		}
		return Zero(w), true, nil
	}

	if y.IsInt() {
		if n, err := y.TruncInt(); err == nil && n >= -(1<<15) && n < 1<<15 {
			if x.w != w {
				x = x.ToDouble()
			}
			f, err := PowInt(x, int(n))
			return f, true, err
		}
	}

	if x.IsNeg() {
		return Zero(w), true, ErrDomain
	}

	return Zero(w), false, nil
}

// Native evaluates functions through IEEE doubles and package math.
type Native struct{}

func native(x Float, f func(float64) float64) (Float, error) {
	return FromFloat64(x.w, f(x.Float64()))
}

func (Native) Sqrt(x Float) (Float, error) {

	if x.IsNeg() {
		return Zero(x.w), ErrDomain
	}

	return native(x, math.Sqrt)
}

func (Native) Exp(x Float) (Float, error) {
	return native(x, math.Exp)
}

func (Native) Log(x Float) (Float, error) {

	if x.Sign() <= 0 {
		return Zero(x.w), ErrDomain
	}

	return native(x, math.Log)
}

func (Native) Sin(x Float) (Float, error) {
	return native(x, math.Sin)
}

func (Native) Cos(x Float) (Float, error) {
	return native(x, math.Cos)
}

func (Native) Tan(x Float) (Float, error) {
	return native(x, math.Tan)
}

func (Native) Atan(x Float) (Float, error) {
	return native(x, math.Atan)
}

func (Native) Pow(x, y Float) (Float, error) {

	if f, ok, err := powCommon(x, y); ok {
		return f, err
	}

	w := x.w
	if y.w > w {
		w = y.w
	}

	return FromFloat64(w, math.Pow(x.Float64(), y.Float64()))
}

//
// Legacy computes everything in double precision MBF arithmetic using
// iterative methods: Newton's method for
// square roots and logarithms, the secant method for the arctangent
// and a twelve term Taylor series for sine, cosine and the exponential
//

type Legacy struct{}

const taylorTerms = 12

var (
	one    = FromInt(Double, 1)
	two    = FromInt(Double, 2)
	pi     = FromBytes([]byte{0xc2, 0x68, 0x21, 0xa2, 0xda, 0x0f, 0x49, 0x82})
	halfPi = FromBytes([]byte{0xc2, 0x68, 0x21, 0xa2, 0xda, 0x0f, 0x49, 0x81})
	twoPi  = FromBytes([]byte{0xc2, 0x68, 0x21, 0xa2, 0xda, 0x0f, 0x49, 0x83})
	ln2    = FromBytes([]byte{0x7a, 0xcf, 0xd1, 0xf7, 0x17, 0x72, 0x31, 0x80})

	// 1/n! for n = 0..2*taylorTerms
	invFact = func() []Float {
		t := make([]Float, 2*taylorTerms+1)
		f := one
		t[0] = one
		for n := 1; n < len(t); n++ {
			f, _ = Mul(f, FromInt(Double, int64(n)))
			t[n], _ = Div(one, f)
		}
		return t
	}()
)

// result rounds a double working value back to the argument's width.
func result(w Width, f Float, err error) (Float, error) {

	if err != nil {
		if w == Single {
			f, _ = f.ToSingle()
		}
		return f, err
	}

	return f.To(w)
}

// same reports convergence: the iteration stopped moving.
func same(a, b Float) bool {
	return a.Cmp(b) == 0
}

func (Legacy) Sqrt(x Float) (Float, error) {

	if x.IsNeg() {
		return Zero(x.w), ErrDomain
	}
	if x.IsZero() {
		return x, nil
	}

	a := x.ToDouble()

	// halve the exponent for the first guess
	g := a
	g.exp = uint8((int(a.exp)-128)/2 + 128)

	for i := 0; i < 64; i++ {
		q, _ := Div(a, g)
		s, _ := Add(g, q)
		n, _ := Div(s, two)
		if same(n, g) {
			break
		}
		g = n
	}

	return result(x.w, g, nil)
}

// expD is the double precision exponential: x = k ln2 + r, then the
// Taylor series in r.
func expD(x Float) (Float, error) {

	q, _ := Div(x, ln2)
	k, err := q.RoundInt()
	if err != nil || k > 200 {
		if x.IsNeg() {
			return Zero(Double), nil
		}
		return Max(Double, false), ErrOverflow
	}
	if k < -200 {
		return Zero(Double), nil
	}

	kl, _ := Mul(FromInt(Double, k), ln2)
	r, _ := Sub(x, kl)

	sum := Zero(Double)
	p := one
	for n := 0; n <= taylorTerms; n++ {
		t, _ := Mul(p, invFact[n])
		sum, _ = Add(sum, t)
		p, _ = Mul(p, r)
	}

	e := int(sum.exp) + int(k)
	if e > 0xff {
		return Max(Double, false), ErrOverflow
	}
	if e <= 0 {
		return Zero(Double), nil
	}
	sum.exp = uint8(e)

	return sum, nil
}

func (Legacy) Exp(x Float) (Float, error) {

	f, err := expD(x.ToDouble())

	return result(x.w, f, err)
}

// logD splits x into m * 2^e with 1 <= m < 2 and solves exp(y) = m by
// Newton's method.
func logD(x Float) Float {

	e := int(x.exp) - 129
	m := x
	m.exp = 129

	y, _ := Mul(FromInt(Double, int64(e)), ln2)
	lm := Zero(Double)
	for i := 0; i < 64; i++ {
		ey, _ := expD(lm)
		d, _ := Div(m, ey)
		d, _ = Sub(d, one)
		n, _ := Add(lm, d)
		if same(n, lm) {
			break
		}
		lm = n
	}

	r, _ := Add(y, lm)

	return r
}

func (Legacy) Log(x Float) (Float, error) {

	if x.Sign() <= 0 {
		return Zero(x.w), ErrDomain
	}

	return result(x.w, logD(x.ToDouble()), nil)
}

// reduce maps x into [-pi, pi].
func reduce(x Float) Float {

	q, _ := Div(x, twoPi)
	k, err := q.RoundInt()
	if err != nil {
		return Zero(Double)
	}
	kp, _ := Mul(FromInt(Double, k), twoPi)
	r, _ := Sub(x, kp)

	return r
}

// series sums (-1)^n r^(2n+k) / (2n+k)! for n = 0..taylorTerms-1.
func series(r Float, k int) Float {

	r2, _ := Mul(r, r)
	p := one
	if k == 1 {
		p = r
	}

	sum := Zero(Double)
	for n := 0; n < taylorTerms; n++ {
		t, _ := Mul(p, invFact[2*n+k])
		if n&1 == 1 {
			t = t.Neg()
		}
		sum, _ = Add(sum, t)
		p, _ = Mul(p, r2)
	}

	return sum
}

func sinD(x Float) Float {

	r := reduce(x)

	// fold into [-pi/2, pi/2]
	if r.Abs().Cmp(halfPi) > 0 {
		if r.IsNeg() {
			r, _ = Sub(pi.Neg(), r)
		} else {
			r, _ = Sub(pi, r)
		}
	}

	return series(r, 1)
}

func cosD(x Float) Float {

	r := reduce(x)
	neg := false
	if r.Abs().Cmp(halfPi) > 0 {
		neg = true
		if r.IsNeg() {
			r, _ = Add(r, pi)
		} else {
			r, _ = Sub(r, pi)
		}
	}

	c := series(r, 0)
	if neg {
		return c.Neg()
	}

	return c
}

func (Legacy) Sin(x Float) (Float, error) {
	return result(x.w, sinD(x.ToDouble()), nil)
}

func (Legacy) Cos(x Float) (Float, error) {
	return result(x.w, cosD(x.ToDouble()), nil)
}

func (Legacy) Tan(x Float) (Float, error) {

	d := x.ToDouble()
	t, err := Div(sinD(d), cosD(d))

	return result(x.w, t, err)
}

// atanD finds y with sin(y) - x cos(y) = 0 by the secant method, for
// 0 <= x <= 1.
func atanD(x Float) Float {

	f := func(y Float) Float {
		xc, _ := Mul(x, cosD(y))
		r, _ := Sub(sinD(y), xc)
		return r
	}

	y0, y1 := Zero(Double), x
	f0, f1 := f(y0), f(y1)
	for i := 0; i < 64 && !f1.IsZero(); i++ {
		df, _ := Sub(f1, f0)
		if df.IsZero() {
			break
		}
		dy, _ := Sub(y1, y0)
		s, _ := Mul(f1, dy)
		s, _ = Div(s, df)
		y2, _ := Sub(y1, s)
		if same(y2, y1) {
			break
		}
		y0, f0 = y1, f1
		y1, f1 = y2, f(y2)
	}

	return y1
}

func (Legacy) Atan(x Float) (Float, error) {

	d := x.ToDouble()
	a := d.Abs()

	var r Float
	if a.Cmp(one) > 0 {
		inv, _ := Div(one, a)
		r, _ = Sub(halfPi, atanD(inv))
	} else {
		r = atanD(a)
	}

	if d.IsNeg() {
		r = r.Neg()
	}

	return result(x.w, r, nil)
}

func (Legacy) Pow(x, y Float) (Float, error) {

	if f, ok, err := powCommon(x, y); ok {
		return f, err
	}

	w := x.w
	if y.w > w {
		w = y.w
	}

	l, _ := Mul(y.ToDouble(), logD(x.ToDouble()))
	f, err := expD(l)

	return result(w, f, err)
}
