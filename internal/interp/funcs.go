package interp

import (
	"time"

	"gwbasic/internal/eval"
	"gwbasic/internal/mbf"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
)

// number returns n as an Integer when it fits, otherwise as a Single.
func number(n int) values.Value {

	if n >= -32768 && n <= 32767 {
		return values.Int(int16(n))
	}

	return values.Float(mbf.FromInt(mbf.Single, int64(n)))
}

// registerFunctions installs the functions that read machine state.
func (ip *Interpreter) registerFunctions() {

	fn := func(lo, hi int, call func(a []values.Value) (values.Value, error)) eval.Function {
		return eval.Function{Min: lo, Max: hi, Call: func(_ *eval.Evaluator, a []values.Value) (values.Value, error) {
			return call(a)
		}}
	}

	ip.eval.Register(tokens.Err, fn(0, 0, func([]values.Value) (values.Value, error) {
		return values.Int(int16(ip.trap.code)), nil
	}))

	ip.eval.Register(tokens.Erl, fn(0, 0, func([]values.Value) (values.Value, error) {
		switch {
		case ip.trap.code == 0:
			return values.Int(0), nil
		case ip.trap.line < 0:
			return number(65535), nil
		}
		return number(ip.trap.line), nil
	}))

	ip.eval.Register(tokens.Rnd, fn(0, 1, ip.rndCall))

	ip.eval.Register(tokens.Timer, fn(0, 0, func([]values.Value) (values.Value, error) {
		f, err := mbf.FromFloat64(mbf.Single, sinceMidnight(ip.clock()))
		return values.Float(f), err
	}))

	// FRE of a string compacts the string space first
	ip.eval.Register(tokens.Fre, fn(1, 1, func(a []values.Value) (values.Value, error) {
		if a[0].IsString() {
			ip.heap.Compact(ip.vars.Refs())
		}
		return number(ip.heap.Free()), nil
	}))

	ip.eval.Register(tokens.Pos, fn(1, 1, func([]values.Value) (values.Value, error) {
		return values.Int(int16(ip.out.col + 1)), nil
	}))

	ip.eval.Register(tokens.Csrlin, fn(0, 0, func([]values.Value) (values.Value, error) {
		return values.Int(int16(min(ip.out.row, 24) + 1)), nil
	}))

	ip.eval.Register(tokens.Inkey, fn(0, 0, func([]values.Value) (values.Value, error) {
		var key []byte
		if kr, ok := ip.con.(KeyReader); ok {
			if b, ok := kr.Inkey(); ok {
				key = []byte{b}
			}
		}
		return ip.eval.Store(key)
	}))

	ip.eval.Register(tokens.Eof, fn(1, 1, func(a []values.Value) (values.Value, error) {
		n, err := eval.IntArg(a[0], 0, 255)
		if err != nil {
			return values.Value{}, err
		}
		f, err := ip.dev.File(n)
		if err != nil {
			return values.Value{}, err
		}
		return values.Bool(f.EOF()), nil
	}))
}

func sinceMidnight(t time.Time) float64 {

	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())

	return t.Sub(midnight).Seconds()
}
