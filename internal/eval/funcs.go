package eval

import (
	"bytes"
	"strconv"
	"strings"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
)

type builtin = func(e *Evaluator, a []values.Value) (values.Value, error)

// builtins are the functions the evaluator knows without help from the
// host. Functions over machine state (ERR, RND, TIMER...) are
// registered by the interpreter.
var builtins = map[tokens.Token]Function{
	tokens.Abs:  {1, 1, fnAbs},
	tokens.Sgn:  {1, 1, fnSgn},
	tokens.IntF: {1, 1, fnInt},
	tokens.Fix:  {1, 1, fnFix},
	tokens.Cint: {1, 1, fnCint},
	tokens.Csng: {1, 1, convert(values.Single)},
	tokens.Cdbl: {1, 1, convert(values.Double)},

	tokens.Sqr: {1, 1, math1(mbf.Math.Sqrt)},
	tokens.Exp: {1, 1, math1(mbf.Math.Exp)},
	tokens.Log: {1, 1, math1(mbf.Math.Log)},
	tokens.Sin: {1, 1, math1(mbf.Math.Sin)},
	tokens.Cos: {1, 1, math1(mbf.Math.Cos)},
	tokens.Tan: {1, 1, math1(mbf.Math.Tan)},
	tokens.Atn: {1, 1, math1(mbf.Math.Atan)},

	tokens.Len:     {1, 1, fnLen},
	tokens.Asc:     {1, 1, fnAsc},
	tokens.Chr:     {1, 1, fnChr},
	tokens.Str:     {1, 1, fnStr},
	tokens.Val:     {1, 1, fnVal},
	tokens.Left:    {2, 2, fnLeft},
	tokens.Right:   {2, 2, fnRight},
	tokens.Mid:     {2, 3, fnMid},
	tokens.Instr:   {2, 3, fnInstr},
	tokens.Space:   {1, 1, fnSpace},
	tokens.StringS: {2, 2, fnString},
	tokens.HexS:    {1, 1, radix(16)},
	tokens.OctS:    {1, 1, radix(8)},

	tokens.Cvi: {1, 1, unpack(values.Integer)},
	tokens.Cvs: {1, 1, unpack(values.Single)},
	tokens.Cvd: {1, 1, unpack(values.Double)},
	tokens.Mki: {1, 1, pack(values.Integer)},
	tokens.Mks: {1, 1, pack(values.Single)},
	tokens.Mkd: {1, 1, pack(values.Double)},
}

func illegal() error {
	return berrors.New(berrors.IllegalFunctionCall)
}

func mismatch() error {
	return berrors.New(berrors.TypeMismatch)
}

// float widens a numeric argument for the transcendental functions;
// Integers are computed in single precision.
func float(v values.Value) (mbf.Float, error) {

	switch v.Kind() {
	default:
		return v.MBF(), nil
	case values.Integer:
		return mbf.FromInt(mbf.Single, int64(v.Integer())), nil
	case values.String:
		return mbf.Float{}, mismatch()
	}
}

// IntArg rounds v to an Integer within lo..hi, failing with an illegal
// function call outside it.
func IntArg(v values.Value, lo, hi int) (int, error) {

	n, err := values.ToInt(v)
	if err != nil {
		return 0, err
	}
	if int(n) < lo || int(n) > hi {
		return 0, illegal()
	}

	return int(n), nil
}

func (e *Evaluator) str(v values.Value) ([]byte, error) {

	if !v.IsString() {
		return nil, mismatch()
	}

	return e.Bytes(v), nil
}

func fnAbs(e *Evaluator, a []values.Value) (values.Value, error) {

	v := a[0]
	switch v.Kind() {
	default:
		return values.Float(v.MBF().Abs()), nil
	case values.Integer:
		if v.Integer() < 0 {
			return values.Negate(v)
		}
		return v, nil
	case values.String:
		return v, mismatch()
	}
}

func fnSgn(e *Evaluator, a []values.Value) (values.Value, error) {

	if a[0].IsString() {
		return a[0], mismatch()
	}

	return values.Int(int16(a[0].Sign())), nil
}

func fnInt(e *Evaluator, a []values.Value) (values.Value, error) {

	switch v := a[0]; v.Kind() {
	default:
		return values.Float(v.MBF().Floor()), nil
	case values.Integer:
		return v, nil
	case values.String:
		return v, mismatch()
	}
}

func fnFix(e *Evaluator, a []values.Value) (values.Value, error) {

	switch v := a[0]; v.Kind() {
	default:
		return values.Float(v.MBF().Trunc()), nil
	case values.Integer:
		return v, nil
	case values.String:
		return v, mismatch()
	}
}

func fnCint(e *Evaluator, a []values.Value) (values.Value, error) {
	return values.Coerce(a[0], values.Integer)
}

func convert(k values.Kind) builtin {

	return func(e *Evaluator, a []values.Value) (values.Value, error) {
		return values.Coerce(a[0], k)
	}
}

func math1(f func(mbf.Math, mbf.Float) (mbf.Float, error)) builtin {

	return func(e *Evaluator, a []values.Value) (values.Value, error) {
		x, err := float(a[0])
		if err != nil {
			return a[0], err
		}
		r, err := f(e.Calc.Math, x)
		return values.Float(r), err
	}
}

func fnLen(e *Evaluator, a []values.Value) (values.Value, error) {

	if !a[0].IsString() {
		return a[0], mismatch()
	}

	return values.Int(int16(a[0].Ref().Len)), nil
}

func fnAsc(e *Evaluator, a []values.Value) (values.Value, error) {

	s, err := e.str(a[0])
	if err != nil {
		return a[0], err
	}
	if len(s) == 0 {
		return a[0], illegal()
	}

	return values.Int(int16(s[0])), nil
}

func fnChr(e *Evaluator, a []values.Value) (values.Value, error) {

	n, err := IntArg(a[0], 0, 255)
	if err != nil {
		return a[0], err
	}

	return e.Store([]byte{byte(n)})
}

func fnStr(e *Evaluator, a []values.Value) (values.Value, error) {

	if a[0].IsString() {
		return a[0], mismatch()
	}

	return e.Store([]byte(values.StrForm(a[0])))
}

func fnVal(e *Evaluator, a []values.Value) (values.Value, error) {

	s, err := e.str(a[0])
	if err != nil {
		return a[0], err
	}

	return values.Val(s)
}

func fnLeft(e *Evaluator, a []values.Value) (values.Value, error) {

	s, err := e.str(a[0])
	if err != nil {
		return a[0], err
	}
	n, err := IntArg(a[1], 0, 255)
	if err != nil {
		return a[0], err
	}

	return e.Store(s[:min(n, len(s))])
}

func fnRight(e *Evaluator, a []values.Value) (values.Value, error) {

	s, err := e.str(a[0])
	if err != nil {
		return a[0], err
	}
	n, err := IntArg(a[1], 0, 255)
	if err != nil {
		return a[0], err
	}

	return e.Store(s[len(s)-min(n, len(s)):])
}

func fnMid(e *Evaluator, a []values.Value) (values.Value, error) {

	s, err := e.str(a[0])
	if err != nil {
		return a[0], err
	}
	start, err := IntArg(a[1], 1, 255)
	if err != nil {
		return a[0], err
	}
	n := 255
	if len(a) == 3 {
		if n, err = IntArg(a[2], 0, 255); err != nil {
			return a[0], err
		}
	}

	if start > len(s) {
		return e.Store(nil)
	}
	s = s[start-1:]

	return e.Store(s[:min(n, len(s))])
}

// fnInstr is INSTR([start,] haystack$, needle$).
func fnInstr(e *Evaluator, a []values.Value) (values.Value, error) {

	start := 1
	if len(a) == 3 {
		var err error
		if start, err = IntArg(a[0], 1, 255); err != nil {
			return a[0], err
		}
		a = a[1:]
	}

	hay, err := e.str(a[0])
	if err != nil {
		return a[0], err
	}
	needle, err := e.str(a[1])
	if err != nil {
		return a[1], err
	}

	if start > len(hay) {
		return values.Int(0), nil
	}
	if len(needle) == 0 {
		return values.Int(int16(start)), nil
	}
	i := bytes.Index(hay[start-1:], needle)
	if i < 0 {
		return values.Int(0), nil
	}

	return values.Int(int16(i + start)), nil
}

func fnSpace(e *Evaluator, a []values.Value) (values.Value, error) {

	n, err := IntArg(a[0], 0, 255)
	if err != nil {
		return a[0], err
	}

	return e.Store(bytes.Repeat([]byte{' '}, n))
}

// fnString is STRING$(n, code) or STRING$(n, s$).
func fnString(e *Evaluator, a []values.Value) (values.Value, error) {

	n, err := IntArg(a[0], 0, 255)
	if err != nil {
		return a[0], err
	}

	var c int
	if a[1].IsString() {
		s := e.Bytes(a[1])
		if len(s) == 0 {
			return a[1], illegal()
		}
		c = int(s[0])
	} else if c, err = IntArg(a[1], 0, 255); err != nil {
		return a[1], err
	}

	return e.Store(bytes.Repeat([]byte{byte(c)}, n))
}

func radix(base int) builtin {

	return func(e *Evaluator, a []values.Value) (values.Value, error) {
		if a[0].IsString() {
			return a[0], mismatch()
		}
		n, err := values.ToInt64(a[0])
		if err != nil || n < -32768 || n > 65535 {
			return a[0], berrors.New(berrors.Overflow)
		}
		s := strconv.FormatUint(uint64(uint16(n)), base)
		return e.Store([]byte(strings.ToUpper(s)))
	}
}

// unpack is CVI, CVS and CVD: the leading bytes of a string read as a
// stored number.
func unpack(k values.Kind) builtin {

	return func(e *Evaluator, a []values.Value) (values.Value, error) {
		s, err := e.str(a[0])
		if err != nil {
			return a[0], err
		}
		if len(s) < k.Size() {
			return a[0], illegal()
		}
		return values.FromBytes(k, s[:k.Size()])
	}
}

// pack is MKI$, MKS$ and MKD$.
func pack(k values.Kind) builtin {

	return func(e *Evaluator, a []values.Value) (values.Value, error) {
		v, err := values.Coerce(a[0], k)
		if err != nil {
			return a[0], err
		}
		return e.Store(v.Bytes())
	}
}
