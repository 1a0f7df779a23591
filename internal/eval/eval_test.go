package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
	"gwbasic/internal/vars"
)

func newEvaluator() *Evaluator {
	return New(vars.New(), &values.Calc{Heap: values.NewHeap(4096), Math: mbf.Native{}})
}

func eval(t *testing.T, e *Evaluator, s string) (values.Value, error) {

	b, err := tokens.Tokenise(s)
	require.NoError(t, err, s)

	c := tokens.NewCursor(b, 0)
	v, err := e.Expression(c)
	if err == nil {
		assert.True(t, c.EndOfStatement(), "%s: trailing tokens", s)
	}

	return v, err
}

// text renders a result the way PRINT would, without padding.
func text(e *Evaluator, v values.Value) string {

	if v.IsString() {
		return string(e.Bytes(v))
	}

	return values.Number(v)
}

func check(t *testing.T, e *Evaluator, tests [][2]string) {

	for _, tt := range tests {
		v, err := eval(t, e, tt[0])
		if assert.NoError(t, err, tt[0]) {
			assert.Equal(t, tt[1], text(e, v), tt[0])
		}
	}
}

func TestPrecedence(t *testing.T) {

	check(t, newEvaluator(), [][2]string{
		{"2+3*4", "14"},
		{"(2+3)*4", "20"},
		// Relational operators share one level and associate left, so
		// 1<2 yields -1 before it meets =1 (DESIGN.md section 6).
		{"1<2=-1", "-1"},
		{"1<2=1", "0"},
		{"10-2-3", "5"},
		{"2^3^2", "64"},
		{"-2^2", "-4"},
		{"2^-1", ".5"},
		{"1+2*3-4/2", "5"},
		{"7\\2*2", "1"},
		{"7\\2", "3"},
		{"5 MOD 3", "2"},
		{"12 AND 10 OR 1", "9"},
		{"NOT 0", "-1"},
		{"NOT 1=2", "-1"},
		{"1 <= 1", "-1"},
		{"2 >< 3", "-1"},
		{"3 => 2", "-1"},
		{"2 =< 1", "0"},
		{"+5", "5"},
		{"--5", "5"},
	})
}

func TestFunctions(t *testing.T) {

	check(t, newEvaluator(), [][2]string{
		{"ABS(-3)", "3"},
		{"ABS(-1.5)", "1.5"},
		{"SGN(-2)", "-1"},
		{"INT(-2.5)", "-3"},
		{"FIX(-2.5)", "-2"},
		{"CINT(2.5)", "3"},
		{"SQR(16)", "4"},
		{"CSNG(1)", "1"},
		{"LEN(\"ABC\")", "3"},
		{"ASC(\"A\")", "65"},
		{"CHR$(66)", "B"},
		{"STR$(5)", " 5"},
		{"STR$(-5)", "-5"},
		{"VAL(\"12.5\")", "12.5"},
		{"LEFT$(\"HELLO\",2)", "HE"},
		{"RIGHT$(\"HELLO\",3)", "LLO"},
		{"MID$(\"HELLO\",2,3)", "ELL"},
		{"MID$(\"HELLO\",2)", "ELLO"},
		{"MID$(\"HELLO\",9)", ""},
		{"INSTR(\"HELLO\",\"L\")", "3"},
		{"INSTR(4,\"HELLO\",\"L\")", "4"},
		{"INSTR(\"HELLO\",\"\")", "1"},
		{"INSTR(\"HELLO\",\"Z\")", "0"},
		{"SPACE$(3)", "   "},
		{"STRING$(3,\"X\")", "XXX"},
		{"STRING$(2,65)", "AA"},
		{"HEX$(255)", "FF"},
		{"HEX$(-1)", "FFFF"},
		{"OCT$(8)", "10"},
		{"CVI(MKI$(1234))", "1234"},
		{"CVS(MKS$(1.5))", "1.5"},
		{"CVD(MKD$(2))", "2"},
		{"\"AB\"+\"CD\"", "ABCD"},
		{"\"A\"<\"B\"", "-1"},
	})
}

func TestFunctionErrors(t *testing.T) {

	e := newEvaluator()

	tests := []struct {
		in   string
		code berrors.Code
	}{
		{"ASC(\"\")", berrors.IllegalFunctionCall},
		{"CHR$(256)", berrors.IllegalFunctionCall},
		{"LEFT$(\"A\",-1)", berrors.IllegalFunctionCall},
		{"MID$(\"A\",0)", berrors.IllegalFunctionCall},
		{"LEFT$(\"A\")", berrors.SyntaxError},
		{"LEN(1)", berrors.TypeMismatch},
		{"SQR(-1)", berrors.IllegalFunctionCall},
		{"LOG(0)", berrors.IllegalFunctionCall},
		{"CVI(\"A\")", berrors.IllegalFunctionCall},
		{"HEX$(70000)", berrors.Overflow},
		{"POINT(1,2)", berrors.AdvancedFeature},
	}

	for _, tt := range tests {
		_, err := eval(t, e, tt.in)
		assert.Equal(t, tt.code, berrors.CodeOf(err), tt.in)
	}
}

func TestOperandErrors(t *testing.T) {

	e := newEvaluator()

	tests := []struct {
		in   string
		code berrors.Code
	}{
		{"1+", berrors.MissingOperand},
		{"1+:", berrors.MissingOperand},
		{"(1+)", berrors.SyntaxError},
		{"1+,2", berrors.SyntaxError},
		{"(1", berrors.SyntaxError},
		{"\"A\"+1", berrors.TypeMismatch},
		{"-\"A\"", berrors.TypeMismatch},
		{"32767*2", berrors.Overflow},
	}

	for _, tt := range tests {
		_, err := eval(t, e, tt.in)
		assert.Equal(t, tt.code, berrors.CodeOf(err), tt.in)
	}
}

func TestVariables(t *testing.T) {

	e := newEvaluator()
	require.NoError(t, e.Vars.Set("X", nil, values.Int(5)))
	require.NoError(t, e.Vars.Set("A", []int{3}, values.Int(7)))
	s, err := e.Store([]byte("HI"))
	require.NoError(t, err)
	require.NoError(t, e.Vars.Set("S$", nil, s))

	check(t, e, [][2]string{
		{"X*2", "10"},
		{"A(3)+1", "8"},
		{"A(X-2)", "7"},
		{"S$+\"!\"", "HI!"},
		{"Q", "0"},
	})

	_, err = eval(t, e, "A(11)")
	assert.True(t, berrors.Is(err, berrors.SubscriptOutOfRange))
	_, err = eval(t, e, "A(-1)")
	assert.True(t, berrors.Is(err, berrors.SubscriptOutOfRange))
}

func TestUserFunctions(t *testing.T) {

	e := newEvaluator()
	body, err := tokens.Tokenise("X*X+Y")
	require.NoError(t, err)
	e.Define("A", []string{"X"}, body)

	require.NoError(t, e.Vars.Set("X", nil, values.Int(9)))
	require.NoError(t, e.Vars.Set("Y", nil, values.Int(1)))

	check(t, e, [][2]string{
		{"FNA(3)", "10"},
		{"FNA(X)", "82"},
		{"FNA(FNA(1))", "5"},
		{"X", "9"},
	})

	_, err = eval(t, e, "FNB(1)")
	assert.True(t, berrors.Is(err, berrors.UndefinedUserFunction))
	_, err = eval(t, e, "FNA(1,2)")
	assert.True(t, berrors.Is(err, berrors.SyntaxError))

	str, err := tokens.Tokenise("\"X\"")
	require.NoError(t, err)
	e.Define("S", nil, str)
	_, err = eval(t, e, "FNS")
	assert.True(t, berrors.Is(err, berrors.TypeMismatch))

	rec, err := tokens.Tokenise("FNR")
	require.NoError(t, err)
	e.Define("R", nil, rec)
	_, err = eval(t, e, "FNR")
	assert.True(t, berrors.Is(err, berrors.OutOfMemory))

	e.ClearFunctions()
	_, err = eval(t, e, "FNA(1)")
	assert.True(t, berrors.Is(err, berrors.UndefinedUserFunction))
}

func TestSoftErrors(t *testing.T) {

	e := newEvaluator()
	var seen []berrors.Code
	e.OnSoft = func(err error) error {
		seen = append(seen, berrors.CodeOf(err))
		return nil
	}

	v, err := eval(t, e, "1/0")
	require.NoError(t, err)
	assert.Equal(t, "1.701412E+38", text(e, v))

	_, err = eval(t, e, "-1/0")
	require.NoError(t, err)
	assert.Equal(t, []berrors.Code{berrors.DivisionByZero}, seen)

	e.ResetFlags()
	_, err = eval(t, e, "1/0")
	require.NoError(t, err)
	assert.Len(t, seen, 2)

	e.ResetFlags()
	e.OnSoft = func(err error) error { return err }
	_, err = eval(t, e, "2*(1/0)")
	assert.True(t, berrors.Is(err, berrors.DivisionByZero))
}

func TestRegister(t *testing.T) {

	e := newEvaluator()
	calls := 0
	e.Register(tokens.Rnd, Function{0, 1, func(e *Evaluator, a []values.Value) (values.Value, error) {
		calls++
		return values.Int(int16(42 + len(a))), nil
	}})

	check(t, e, [][2]string{
		{"RND", "42"},
		{"RND(1)", "43"},
	})
	assert.Equal(t, 2, calls)
}

func TestHelpers(t *testing.T) {

	e := newEvaluator()

	b, err := tokens.Tokenise("3.6, \"S\"")
	require.NoError(t, err)
	c := tokens.NewCursor(b, 0)

	n, err := e.Int(c)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.True(t, c.Accept(','))
	s, err := e.String(c)
	require.NoError(t, err)
	assert.Equal(t, "S", string(s))

	b, err = tokens.Tokenise("(1,2)")
	require.NoError(t, err)
	idx, err := e.Indices(tokens.NewCursor(b, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, idx)
}
