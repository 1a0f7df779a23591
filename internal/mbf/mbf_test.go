package mbf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(t *testing.T, s string) Float {

	f, n, err := ParseDecimal(Single, s)
	require.NoError(t, err)
	require.Equal(t, len(s), n)

	return f
}

func double(t *testing.T, s string) Float {

	f, n, err := ParseDecimal(Double, s)
	require.NoError(t, err)
	require.Equal(t, len(s), n)

	return f
}

func TestConstants(t *testing.T) {

	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x81}, FromInt(Single, 1).Bytes())
	assert.Equal(t, []byte{0x00, 0x00, 0x20, 0x84}, FromInt(Single, 10).Bytes())
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x20, 0x84}, FromInt(Double, 10).Bytes())
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x80}, single(t, ".5").Bytes())
	assert.Equal(t, []byte{0xff, 0xff, 0x7f, 0xff}, Max(Single, false).Bytes())
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, Max(Single, true).Bytes())

	p, err := pi.ToSingle()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xdb, 0x0f, 0x49, 0x82}, p.Bytes())
	assert.Equal(t, "3.141593", p.String())
}

func TestRoundTrip(t *testing.T) {

	images := [][]byte{
		{0x00, 0x00, 0x00, 0x81},
		{0xcd, 0xcc, 0x4c, 0x7d},
		{0x9a, 0x99, 0x99, 0xfe},
		{0x12, 0x34, 0x56, 0x01},
		{0xff, 0xff, 0xff, 0xff},
		{0xc2, 0x68, 0x21, 0xa2, 0xda, 0x0f, 0x49, 0x82},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x87, 0x90},
	}

	for _, b := range images {
		first := FromBytes(b).Bytes()
		again := FromBytes(first).Bytes()
		assert.Equal(t, first, again)
		assert.Equal(t, b, first)
	}

	// a zero exponent is zero whatever the mantissa bytes hold
	z := FromBytes([]byte{0x12, 0x34, 0x56, 0x00})
	assert.True(t, z.IsZero())
	assert.Equal(t, []byte{0, 0, 0, 0}, z.Bytes())
}

func TestNormaliseIdempotent(t *testing.T) {

	for _, s := range []string{"1", ".1", "3.14159", "-2.5", "1E+37", "123456.7"} {
		x := single(t, s)
		n1, err := x.Normalise()
		require.NoError(t, err)
		n2, err := n1.Normalise()
		require.NoError(t, err)
		assert.Equal(t, x, n1)
		assert.Equal(t, n1, n2)
	}
}

func TestCarryRounding(t *testing.T) {

	a := single(t, ".1")
	b := single(t, ".2")
	assert.Equal(t, []byte{0xcd, 0xcc, 0x4c, 0x7d}, a.Bytes())

	s, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x9a, 0x99, 0x19, 0x7f}, s.Bytes())
	assert.Equal(t, ".3", s.String())
}

func TestSubtractionLostBits(t *testing.T) {

	// the bits of 6E-8 shifted out during alignment pull the difference
	// one unit down before rounding, leaving it just under 2
	d, err := Sub(FromInt(Single, 2), single(t, "6E-8"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0x7f, 0x81}, d.Bytes())

	d, err = Sub(FromInt(Single, 1), single(t, ".9"))
	require.NoError(t, err)
	assert.Equal(t, ".1", d.String())
}

func TestArithmetic(t *testing.T) {

	tests := []struct {
		op   func(Float, Float) (Float, error)
		x, y string
		want string
	}{
		{Add, "2", "3", "5"},
		{Sub, "2", "3", "-1"},
		{Mul, "1.1", "1.1", "1.21"},
		{Mul, "-4", "2.5", "-10"},
		{Div, "1", "3", ".3333333"},
		{Div, "7", "2", "3.5"},
		{Div, "-1", "4", "-.25"},
		{Add, "1E+20", "1", "1E+20"},
	}

	for _, tt := range tests {
		r, err := tt.op(single(t, tt.x), single(t, tt.y))
		require.NoError(t, err)
		assert.Equal(t, tt.want, r.String(), "%s %s", tt.x, tt.y)
	}
}

func TestDivisionByZero(t *testing.T) {

	r, err := Div(FromInt(Single, 1), Zero(Single))
	assert.Equal(t, ErrDivisionByZero, err)
	assert.Equal(t, Max(Single, false), r)
	assert.Equal(t, "1.701412E+38", r.String())

	r, err = Div(FromInt(Single, -1), Zero(Single))
	assert.Equal(t, ErrDivisionByZero, err)
	assert.Equal(t, "-1.701412E+38", r.String())
}

func TestOverflow(t *testing.T) {

	big := single(t, "1E+38")
	r, err := Mul(big, big)
	assert.Equal(t, ErrOverflow, err)
	assert.Equal(t, Max(Single, false), r)

	r, err = Mul(big, big.Neg())
	assert.Equal(t, ErrOverflow, err)
	assert.Equal(t, Max(Single, true), r)

	_, _, err = ParseDecimal(Single, "1E+39")
	assert.Equal(t, ErrOverflow, err)

	_, _, err = ParseDecimal(Double, "1E+38")
	assert.NoError(t, err)
}

func TestUnderflow(t *testing.T) {

	small := single(t, "1E-30")
	r, err := Mul(small, small)
	require.NoError(t, err)
	assert.True(t, r.IsZero())
}

func TestFormat(t *testing.T) {

	tests := []struct {
		in, want string
	}{
		{"32768", "32768"},
		{"123.45", "123.45"},
		{".001", ".001"},
		{"1E20", "1E+20"},
		{"1000000", "1000000"},
		{"10000000", "1E+07"},
		{"-2.5", "-2.5"},
		{"2.5E-10", "2.5E-10"},
		{"0", "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, single(t, tt.in).String(), tt.in)
	}

	third, err := Div(FromInt(Double, 1), FromInt(Double, 3))
	require.NoError(t, err)
	assert.Equal(t, ".3333333333333333", third.String())
	assert.Equal(t, ".1", double(t, ".1").String())
	assert.Equal(t, "1D+20", double(t, "1D20").String())
}

func TestDigits(t *testing.T) {

	ds, e := single(t, "123.45").Digits(7)
	assert.Equal(t, "1234500", ds)
	assert.Equal(t, 2, e)

	ds, e = single(t, ".5").Digits(3)
	assert.Equal(t, "500", ds)
	assert.Equal(t, -1, e)
}

func TestParsePrefix(t *testing.T) {

	f, n, err := ParseDecimal(Single, "12.5XYZ")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "12.5", f.String())

	_, n, _ = ParseDecimal(Single, "ABC")
	assert.Equal(t, 0, n)
}

func TestConversions(t *testing.T) {

	tests := []struct {
		in           string
		round, trunc int64
		floor, fix   string
	}{
		{"2.5", 3, 2, "2", "2"},
		{"-2.5", -3, -2, "-3", "-2"},
		{"1.4", 1, 1, "1", "1"},
		{".5", 1, 0, "0", "0"},
		{".49", 0, 0, "0", "0"},
		{"-.3", 0, 0, "-1", "0"},
		{"32767", 32767, 32767, "32767", "32767"},
	}

	for _, tt := range tests {
		x := single(t, tt.in)
		r, err := x.RoundInt()
		require.NoError(t, err)
		assert.Equal(t, tt.round, r, tt.in)
		n, err := x.TruncInt()
		require.NoError(t, err)
		assert.Equal(t, tt.trunc, n, tt.in)
		assert.Equal(t, tt.floor, x.Floor().String(), tt.in)
		assert.Equal(t, tt.fix, x.Trunc().String(), tt.in)
	}

	assert.True(t, single(t, "3").IsInt())
	assert.False(t, single(t, "3.5").IsInt())
}

func TestWidths(t *testing.T) {

	d := double(t, ".1")
	s, err := d.ToSingle()
	require.NoError(t, err)
	assert.Equal(t, single(t, ".1"), s)

	back := s.ToDouble()
	assert.Equal(t, 0, back.Cmp(s))
	assert.NotEqual(t, 0, back.Cmp(d))

	_, err = Max(Double, false).ToSingle()
	assert.Equal(t, ErrOverflow, err)
}

func TestFloat64(t *testing.T) {

	f, err := FromFloat64(Single, 0.75)
	require.NoError(t, err)
	assert.Equal(t, 0.75, f.Float64())

	_, err = FromFloat64(Single, 1e300)
	assert.Equal(t, ErrOverflow, err)
}

func TestPowInt(t *testing.T) {

	r, err := PowInt(FromInt(Single, 2), 10)
	require.NoError(t, err)
	assert.Equal(t, "1024", r.String())

	r, err = PowInt(FromInt(Single, 2), -2)
	require.NoError(t, err)
	assert.Equal(t, ".25", r.String())

	r, err = PowInt(FromInt(Single, -3), 3)
	require.NoError(t, err)
	assert.Equal(t, "-27", r.String())

	_, err = PowInt(Zero(Single), -1)
	assert.Equal(t, ErrDivisionByZero, err)

	r, err = PowInt(FromInt(Single, -10), 41)
	assert.Equal(t, ErrOverflow, err)
	assert.True(t, r.IsNeg())
}

func TestMath(t *testing.T) {

	tests := []struct {
		name string
		fn   func(Math, Float) (Float, error)
		in   string
		want string
	}{
		{"SQR", Math.Sqrt, "2", "1.414214"},
		{"SQR", Math.Sqrt, "9", "3"},
		{"EXP", Math.Exp, "1", "2.718282"},
		{"EXP", Math.Exp, "-1", ".3678795"},
		{"LOG", Math.Log, "10", "2.302585"},
		{"LOG", Math.Log, "1", "0"},
		{"SIN", Math.Sin, "1", ".841471"},
		{"SIN", Math.Sin, "10", "-.5440211"},
		{"COS", Math.Cos, "1", ".5403023"},
		{"COS", Math.Cos, "10", "-.8390715"},
		{"ATN", Math.Atan, "1", ".7853982"},
		{"ATN", Math.Atan, "10", "1.471128"},
		{"ATN", Math.Atan, "-.5", "-.4636476"},
		{"TAN", Math.Tan, "1", "1.557408"},
		{"TAN", Math.Tan, "-1", "-1.557408"},
		{"TAN", Math.Tan, "0", "0"},
	}

	for _, m := range []Math{Native{}, Legacy{}} {
		for _, tt := range tests {
			r, err := tt.fn(m, single(t, tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.String(), "%T %s(%s)", m, tt.name, tt.in)
		}

		_, err := m.Sqrt(single(t, "-1"))
		assert.Equal(t, ErrDomain, err)
		_, err = m.Log(Zero(Single))
		assert.Equal(t, ErrDomain, err)
		_, err = m.Exp(single(t, "100"))
		assert.Equal(t, ErrOverflow, err)

		r, err := m.Pow(single(t, "2"), single(t, ".5"))
		require.NoError(t, err)
		assert.Equal(t, "1.414214", r.String())

		r, err = m.Pow(single(t, "-2"), single(t, "3"))
		require.NoError(t, err)
		assert.Equal(t, "-8", r.String())

		_, err = m.Pow(single(t, "-2"), single(t, ".5"))
		assert.Equal(t, ErrDomain, err)
	}
}
