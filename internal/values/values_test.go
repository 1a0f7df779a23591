package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
)

func newCalc() *Calc {
	return &Calc{Heap: NewHeap(1024), Math: mbf.Native{}}
}

func num(t *testing.T, s string) Value {

	v, n, err := ParseLiteral(s)
	require.NoError(t, err)
	require.Equal(t, len(s), n)

	return v
}

func str(t *testing.T, c *Calc, s string) Value {

	ref, err := c.Heap.Store([]byte(s))
	require.NoError(t, err)

	return Str(ref)
}

func TestLiteralKinds(t *testing.T) {

	tests := []struct {
		in   string
		kind Kind
		text string
	}{
		{"12", Integer, "12"},
		{"32767", Integer, "32767"},
		{"32768", Single, "32768"},
		{"1.5", Single, "1.5"},
		{"1E3", Single, "1000"},
		{"1D3", Double, "1000"},
		{"12345678", Double, "12345678"},
		{"2#", Double, "2"},
		{"2!", Single, "2"},
		{"2.6%", Integer, "3"},
		{".25", Single, ".25"},
	}

	for _, tt := range tests {
		v := num(t, tt.in)
		assert.Equal(t, tt.kind, v.Kind(), tt.in)
		assert.Equal(t, tt.text, Number(v), tt.in)
	}

	_, n, _ := ParseLiteral("ABC")
	assert.Equal(t, 0, n)
}

func TestLiteralOverflow(t *testing.T) {

	v, n, err := ParseLiteral("1.701412E+38")
	assert.True(t, berrors.Is(err, berrors.Overflow), "%v", err)
	assert.True(t, berrors.IsRecoverable(err))
	assert.Equal(t, 12, n)
	assert.Equal(t, Single, v.Kind())
	assert.Equal(t, "1.701412E+38", Number(v))

	v, _, err = ParseLiteral("1D99")
	assert.True(t, berrors.IsRecoverable(err), "%v", err)
	assert.Equal(t, Double, v.Kind())
	assert.Equal(t, mbf.Max(mbf.Double, false), v.MBF())

	v, _, err = ParseNumber("-1E40")
	assert.True(t, berrors.IsRecoverable(err), "%v", err)
	assert.Equal(t, "-1.701412E+38", Number(v))

	_, _, err = ParseLiteral("1E40%")
	assert.True(t, berrors.Is(err, berrors.Overflow))
	assert.False(t, berrors.IsRecoverable(err))
}

func TestIntegerPromotion(t *testing.T) {

	c := newCalc()

	v, err := c.Binary(OpAdd, Int(32767), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Single, v.Kind())
	assert.Equal(t, "32768", Number(v))

	v, err = c.Binary(OpSub, Int(-32768), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Single, v.Kind())
	assert.Equal(t, "-32769", Number(v))

	_, err = c.Binary(OpMul, Int(32767), Int(2))
	assert.True(t, berrors.Is(err, berrors.Overflow))
	assert.False(t, berrors.IsRecoverable(err))

	v, err = c.Unary(OpNeg, Int(-32768))
	require.NoError(t, err)
	assert.Equal(t, Single, v.Kind())

	v, err = c.Binary(OpMul, Int(100), Int(200))
	require.NoError(t, err)
	assert.Equal(t, Int(20000), v)
}

func TestMixedKinds(t *testing.T) {

	c := newCalc()

	v, err := c.Binary(OpAdd, Int(1), num(t, "1.5"))
	require.NoError(t, err)
	assert.Equal(t, Single, v.Kind())
	assert.Equal(t, "2.5", Number(v))

	v, err = c.Binary(OpMul, num(t, "2#"), num(t, "1.5"))
	require.NoError(t, err)
	assert.Equal(t, Double, v.Kind())
	assert.Equal(t, "3", Number(v))

	v, err = c.Binary(OpDiv, Int(7), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Single, v.Kind())
	assert.Equal(t, "3.5", Number(v))

	_, err = c.Binary(OpAdd, Int(1), str(t, c, "A"))
	assert.True(t, berrors.Is(err, berrors.TypeMismatch))
}

func TestDivision(t *testing.T) {

	c := newCalc()

	v, err := c.Binary(OpDiv, Int(1), Int(0))
	assert.True(t, berrors.Is(err, berrors.DivisionByZero))
	assert.True(t, berrors.IsRecoverable(err))
	assert.Equal(t, "1.701412E+38", Number(v))

	v, err = c.Binary(OpIntDiv, Int(7), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)

	v, err = c.Binary(OpIntDiv, Int(-7), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(-3), v)

	v, err = c.Binary(OpMod, Int(-7), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(-1), v)

	v, err = c.Binary(OpIntDiv, num(t, "7.6"), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(4), v)

	v, err = c.Binary(OpIntDiv, Int(5), Int(0))
	assert.True(t, berrors.Is(err, berrors.DivisionByZero))
	assert.Equal(t, Int(32767), v)

	_, err = c.Binary(OpIntDiv, Int(-32768), Int(-1))
	assert.True(t, berrors.Is(err, berrors.Overflow))
}

func TestPower(t *testing.T) {

	c := newCalc()

	v, err := c.Binary(OpPow, Int(2), Int(10))
	require.NoError(t, err)
	assert.Equal(t, Single, v.Kind())
	assert.Equal(t, "1024", Number(v))

	v, err = c.Binary(OpPow, Int(2), num(t, ".5"))
	require.NoError(t, err)
	assert.Equal(t, "1.414214", Number(v))
}

func TestComparison(t *testing.T) {

	c := newCalc()

	tests := []struct {
		op   Op
		l, r Value
		want Value
	}{
		{OpLt, Int(1), Int(2), Int(-1)},
		{OpGt, Int(1), Int(2), Int(0)},
		{OpEq, Int(2), num(t, "2.0"), Int(-1)},
		{OpNe, Int(2), num(t, "2.5"), Int(-1)},
		{OpLe, Int(2), Int(2), Int(-1)},
		{OpGe, Int(1), Int(2), Int(0)},
		{OpLt, str(t, c, "AB"), str(t, c, "ABC"), Int(-1)},
		{OpGt, str(t, c, "B"), str(t, c, "ABC"), Int(-1)},
		{OpEq, str(t, c, "X"), str(t, c, "X"), Int(-1)},
		{OpLt, str(t, c, ""), str(t, c, "A"), Int(-1)},
	}

	for _, tt := range tests {
		v, err := c.Binary(tt.op, tt.l, tt.r)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v, "%v", tt.op)
	}

	_, err := c.Binary(OpEq, str(t, c, "1"), Int(1))
	assert.True(t, berrors.Is(err, berrors.TypeMismatch))
}

func TestLogical(t *testing.T) {

	c := newCalc()

	tests := []struct {
		op   Op
		l, r Value
		want int16
	}{
		{OpAnd, Int(12), Int(10), 8},
		{OpOr, Int(12), Int(10), 14},
		{OpXor, Int(12), Int(10), 6},
		{OpEqv, Int(-1), Int(0), 0},
		{OpImp, Int(0), Int(0), -1},
		{OpAnd, num(t, "65535"), Int(255), 255},
	}

	for _, tt := range tests {
		v, err := c.Binary(tt.op, tt.l, tt.r)
		require.NoError(t, err)
		assert.Equal(t, Int(tt.want), v, "%v", tt.op)
	}

	v, err := c.Unary(OpNot, Int(0))
	require.NoError(t, err)
	assert.Equal(t, Int(-1), v)

	_, err = c.Binary(OpOr, num(t, "65536"), Int(0))
	assert.True(t, berrors.Is(err, berrors.Overflow))
}

func TestConcat(t *testing.T) {

	c := newCalc()

	v, err := c.Binary(OpAdd, str(t, c, "AB"), str(t, c, "CD"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ABCD"), c.Heap.Copy(v.Ref()))

	long := make([]byte, 200)
	a, err := c.Heap.Store(long)
	require.NoError(t, err)
	_, err = c.Binary(OpAdd, Str(a), Str(a))
	assert.True(t, berrors.Is(err, berrors.StringTooLong))
}

func TestCoerce(t *testing.T) {

	v, err := Coerce(num(t, "2.5"), Integer)
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)

	v, err = Coerce(num(t, "-2.5"), Integer)
	require.NoError(t, err)
	assert.Equal(t, Int(-3), v)

	_, err = Coerce(num(t, "40000"), Integer)
	assert.True(t, berrors.Is(err, berrors.Overflow))

	_, err = Coerce(Int(1), String)
	assert.True(t, berrors.Is(err, berrors.TypeMismatch))

	v, err = Coerce(Int(3), Double)
	require.NoError(t, err)
	assert.Equal(t, Double, v.Kind())
}

func TestEncoding(t *testing.T) {

	tests := []Value{
		Int(-2),
		Int(32767),
		num(t, "10"),
		num(t, "3.5"),
		num(t, "3.5#"),
		Str(StringRef{Len: 3, Offset: 0x1234}),
	}

	for _, v := range tests {
		b := v.Bytes()
		assert.Len(t, b, v.Kind().Size())
		back, err := FromBytes(v.Kind(), b)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}

	assert.Equal(t, []byte{0xfe, 0xff}, Int(-2).Bytes())
	assert.Equal(t, []byte{0x00, 0x00, 0x60, 0x82}, num(t, "3.5").Bytes())
}

func TestForms(t *testing.T) {

	assert.Equal(t, " 5 ", PrintForm(Int(5)))
	assert.Equal(t, "-5 ", PrintForm(Int(-5)))
	assert.Equal(t, " .5", StrForm(num(t, ".5")))
	assert.Equal(t, " 0", StrForm(Int(0)))
}

func TestParseNumber(t *testing.T) {

	tests := []struct {
		in   string
		want string
	}{
		{"  12", "12"},
		{"-3.5xyz", "-3.5"},
		{"&HFF", "255"},
		{"&777", "511"},
		{"&HFFFF", "-1"},
		{"abc", "0"},
		{"", "0"},
		{"1E2", "100"},
	}

	for _, tt := range tests {
		v, err := Val([]byte(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, Number(v), tt.in)
	}
}

func TestHeapCompact(t *testing.T) {

	h := NewHeap(16)

	a, err := h.Store([]byte("abcd"))
	require.NoError(t, err)
	_, err = h.Store([]byte("garbage!"))
	require.NoError(t, err)
	b, err := h.Store([]byte("xy"))
	require.NoError(t, err)

	_, err = h.Store([]byte("toolong"))
	assert.True(t, berrors.Is(err, berrors.OutOfStringSpace))

	shared := b
	h.Compact([]*StringRef{&a, &b, &shared})
	assert.Equal(t, 10, h.Free())
	assert.Equal(t, []byte("abcd"), h.Copy(a))
	assert.Equal(t, []byte("xy"), h.Copy(b))
	assert.Equal(t, b, shared)

	_, err = h.Store([]byte("toolong"))
	assert.NoError(t, err)
}
