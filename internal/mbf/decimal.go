package mbf

import (
	"strconv"
	"strings"
)

var (
	ten  = FromInt(Double, 10)
	half = FromBytes([]byte{0, 0, 0, 0, 0, 0, 0, 0x80})
)

// pow10 returns 10^n in double precision; exact for n <= 16.
func pow10(n int) Float {

	p := FromInt(Double, 1)
	for ; n > 0; n-- {
		p, _ = Mul(p, ten)
	}

	return p
}

// Decimal scales |x| to an integer of n significant digits, returning it
// with the power of ten that restores the magnitude:
// |x| ~= num * 10^exp10. The scaling is done by repeated multiplication
// or division by ten in double precision.
func (x Float) Decimal(n int) (num uint64, exp10 int) {

	if x.exp == 0 || n <= 0 {
		return 0, 0
	}
	if n > Double.Digits() {
		n = Double.Digits()
	}

	work := x.ToDouble().Abs()
	top, _ := Sub(pow10(n), half)
	bot, _ := Sub(pow10(n-1), half)

	for work.Cmp(top) >= 0 {
		work, _ = Div(work, ten)
		exp10++
	}
	for work.Cmp(bot) < 0 {
		work, _ = Mul(work, ten)
		exp10--
	}

	r, _ := work.RoundInt()
	num = uint64(r)

	return num, exp10
}

// Digits returns the n significant decimal digits of |x| and the
// decimal exponent of the first digit.
func (x Float) Digits(n int) (string, int) {

	num, exp10 := x.Decimal(n)
	if num == 0 {
		return strings.Repeat("0", n), 0
	}

	return peel(num, n), exp10 + n - 1
}

// peel writes num as n decimal digits by repeated subtraction of powers
// of ten.
func peel(num uint64, n int) string {

	p := uint64(1)
	for i := 1; i < n; i++ {
		p *= 10
	}

	b := make([]byte, 0, n)
	for ; n > 0; n-- {
		d := byte('0')
		for num >= p {
			num -= p
			d++
		}
		b = append(b, d)
		p /= 10
	}

	return string(b)
}

// String renders x as PRINT does, without the leading blank for
// positive numbers: decimal notation where it fits in the precision,
// otherwise scientific with E (single) or D (double).
func (x Float) String() string {

	if x.exp == 0 {
		return "0"
	}

	n := x.w.Digits()
	ds, sci := x.Digits(n)
	ds = strings.TrimRight(ds, "0")

	var s string
	if sci > n-1 || len(ds)-sci > n+1 {
		s = Scientific(ds, sci, x.w.ExpChar())
	} else {
		s = Fixed(ds, sci)
	}

	if x.neg {
		return "-" + s
	}

	return s
}

// Scientific formats a digit string whose first digit has decimal
// exponent sci as d.dddE+xx.
func Scientific(ds string, sci int, echar byte) string {

	var sb strings.Builder

	sb.WriteByte(ds[0])
	if len(ds) > 1 {
		sb.WriteByte('.')
		sb.WriteString(ds[1:])
	}
	sb.WriteByte(echar)
	if sci < 0 {
		sb.WriteByte('-')
		sci = -sci
	} else {
		sb.WriteByte('+')
	}
	if sci < 10 {
		sb.WriteByte('0')
	}
	sb.WriteString(strconv.Itoa(sci))

	return sb.String()
}

// Fixed formats a digit string in plain decimal notation. Numbers below
// one have no leading zero.
func Fixed(ds string, sci int) string {

	switch {
	default:
		return ds[:sci+1] + "." + ds[sci+1:]
	case sci >= len(ds)-1:
		return ds + strings.Repeat("0", sci-len(ds)+1)
	case sci < 0:
		return "." + strings.Repeat("0", -sci-1) + ds
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseDecimal reads a decimal literal from the front of s: an optional
// sign, digits with an optional point, and an optional E or D exponent.
// It returns the value in width w and the number of bytes consumed. The
// value is built in double precision and rounded to w at the end, so a
// single precision literal out of range overflows.
func ParseDecimal(w Width, s string) (Float, int, error) {

	i := 0
	neg := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}

	var mant uint64
	exp10 := 0
	seen := false
	dot := false

	for ; i < len(s); i++ {
		c := s[i]
		if c == '.' && !dot {
			dot = true
			continue
		}
		if !isDigit(c) {
			break
		}
		seen = true
		switch {
		default:
			if !dot {
				exp10++
			}
		case mant < 1e17:
			mant = mant*10 + uint64(c-'0')
			if dot {
				exp10--
			}
		}
	}

	if !seen {
		return Zero(w), 0, nil
	}

	if i < len(s) && strings.IndexByte("EeDd", s[i]) >= 0 {
		j := i + 1
		eneg := false
		if j < len(s) && (s[j] == '-' || s[j] == '+') {
			eneg = s[j] == '-'
			j++
		}
		e := 0
		for ; j < len(s) && isDigit(s[j]); j++ {
			if e < 1000 {
				e = e*10 + int(s[j]-'0')
			}
		}
		if eneg {
			e = -e
		}
		exp10 += e
		i = j
	}

	f := FromInt(Double, int64(mant))
	var err error
	for ; exp10 > 0 && !f.IsZero(); exp10-- {
		if f, err = Mul(f, ten); err != nil {
			return Max(w, neg), i, err
		}
	}
	for ; exp10 < 0 && !f.IsZero(); exp10++ {
		f, _ = Div(f, ten)
	}

	if neg {
		f = f.Neg()
	}

	if w == Single {
		f, err = f.ToSingle()
	}

	return f, i, err
}
