package interp

import (
	"gwbasic/internal/berrors"
	"gwbasic/internal/eval"
	"gwbasic/internal/mbf"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
	"gwbasic/internal/vars"
)

func stmtLet(ip *Interpreter) error {

	if !ip.cur.IsNameStart() {
		return berrors.New(berrors.SyntaxError)
	}

	return ip.assign()
}

// assign is name[(indices)] = expression.
func (ip *Interpreter) assign() error {

	c := ip.cur
	t, err := ip.readTarget()
	if err != nil {
		return err
	}
	if err := c.Expect(tokens.Eq); err != nil {
		return err
	}
	v, err := ip.eval.Expression(c)
	if err != nil {
		return err
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	return ip.vars.Set(t.name, t.idx, v)
}

func stmtDim(ip *Interpreter) error {

	c := ip.cur
	for {
		t, err := ip.readTarget()
		if err != nil {
			return err
		}
		if t.idx == nil {
			return berrors.New(berrors.SyntaxError)
		}
		if err := ip.vars.Dim(t.name, t.idx); err != nil {
			return err
		}
		if !c.Accept(',') {
			break
		}
	}

	return c.RequireEnd()
}

func stmtErase(ip *Interpreter) error {

	c := ip.cur
	for {
		name, ok := c.ReadName()
		if !ok {
			return berrors.New(berrors.SyntaxError)
		}
		if err := ip.vars.Erase(name); err != nil {
			return err
		}
		if !c.Accept(',') {
			break
		}
	}

	return c.RequireEnd()
}

// stmtOption is OPTION BASE 0|1. BASE is not a keyword, so it arrives
// as a name.
func stmtOption(ip *Interpreter) error {

	c := ip.cur
	if word, ok := c.ReadName(); !ok || word != "BASE" {
		return berrors.New(berrors.SyntaxError)
	}
	v, ok := c.ReadNumber()
	if !ok || v.Kind() != values.Integer {
		return berrors.New(berrors.SyntaxError)
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	return ip.vars.Base(int(v.Integer()))
}

var defKinds = map[tokens.Token]values.Kind{
	tokens.Defint: values.Integer,
	tokens.Defsng: values.Single,
	tokens.Defdbl: values.Double,
	tokens.Defstr: values.String,
}

// defType builds DEFINT, DEFSNG, DEFDBL and DEFSTR: a list of letters
// and letter ranges.
func defType(t tokens.Token) Handler {

	k := defKinds[t]

	return func(ip *Interpreter) error {

		c := ip.cur
		for {
			from, err := letter(c)
			if err != nil {
				return err
			}
			to := from
			if c.Accept(tokens.Minus) {
				if to, err = letter(c); err != nil {
					return err
				}
			}
			if err := ip.vars.DefType(k, from, to); err != nil {
				return err
			}
			if !c.Accept(',') {
				break
			}
		}

		return c.RequireEnd()
	}
}

func letter(c *tokens.Cursor) (byte, error) {

	name, ok := c.ReadName()
	if !ok || len(name) != 1 {
		return 0, berrors.New(berrors.SyntaxError)
	}

	return name[0], nil
}

// stmtDef is DEF FNname[(params)] = expression. DEF SEG and DEF USR
// have no meaning here and are skipped.
func stmtDef(ip *Interpreter) error {

	c := ip.cur
	switch c.PeekToken() {
	case tokens.Fn:
		c.ReadToken()
	case tokens.Usr:
		c.SkipStatement()
		return nil
	default:
		if word, ok := c.ReadName(); ok && word == "SEG" {
			c.SkipStatement()
			return nil
		}
		return berrors.New(berrors.SyntaxError)
	}

	if !ip.running {
		return berrors.New(berrors.IllegalDirect)
	}

	name, ok := c.ReadName()
	if !ok {
		return berrors.New(berrors.SyntaxError)
	}

	var params []string
	if c.Accept('(') {
		for {
			p, ok := c.ReadName()
			if !ok {
				return berrors.New(berrors.SyntaxError)
			}
			params = append(params, p)
			if !c.Accept(',') {
				break
			}
		}
		if err := c.Expect(')'); err != nil {
			return err
		}
	}
	if err := c.Expect(tokens.Eq); err != nil {
		return err
	}

	start := c.Pos()
	c.SkipStatement()
	body := c.Bytes()[start:c.Pos()]
	if len(body) == 0 {
		return berrors.New(berrors.MissingOperand)
	}
	ip.eval.Define(name, params, body)

	return nil
}

func stmtSwap(ip *Interpreter) error {

	c := ip.cur
	a, err := ip.readTarget()
	if err != nil {
		return err
	}
	if err := c.Expect(','); err != nil {
		return err
	}
	b, err := ip.readTarget()
	if err != nil {
		return err
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	return ip.vars.Swap(a.name, a.idx, b.name, b.idx)
}

// stmtMid is MID$(v$, start[, n]) = s$: bytes of v$ are overwritten in
// place and its length never changes.
func stmtMid(ip *Interpreter) error {

	c := ip.cur
	if err := c.Expect('('); err != nil {
		return err
	}
	t, err := ip.readTarget()
	if err != nil {
		return err
	}
	if vars.KindOf(t.name) != values.String {
		return berrors.New(berrors.TypeMismatch)
	}
	if err := c.Expect(','); err != nil {
		return err
	}

	v, err := ip.eval.Number(c)
	if err != nil {
		return err
	}
	start, err := eval.IntArg(v, 1, 255)
	if err != nil {
		return err
	}
	n := 255
	if c.Accept(',') {
		if v, err = ip.eval.Number(c); err != nil {
			return err
		}
		if n, err = eval.IntArg(v, 0, 255); err != nil {
			return err
		}
	}
	if err := c.Expect(')'); err != nil {
		return err
	}
	if err := c.Expect(tokens.Eq); err != nil {
		return err
	}
	repl, err := ip.eval.String(c)
	if err != nil {
		return err
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	cur, err := ip.vars.Get(t.name, t.idx)
	if err != nil {
		return err
	}
	s := ip.eval.Bytes(cur)
	if start > len(s) {
		return berrors.New(berrors.IllegalFunctionCall)
	}
	n = min(n, len(repl), len(s)-start+1)
	copy(s[start-1:], repl[:n])

	nv, err := ip.eval.Store(s)
	if err != nil {
		return err
	}

	return ip.vars.Set(t.name, t.idx, nv)
}

//
// RND is a 24 bit linear congruential generator. RANDOMIZE replaces the
// upper bits of the state
//

const (
	rndSeed = 5228370
	rndMul  = 214013
	rndAdd  = 2531011
	rndMask = 1<<24 - 1
)

type rnd struct {
	x uint32
}

func (r *rnd) reset() {
	r.x = rndSeed
}

func (r *rnd) value() mbf.Float {

	f, _ := mbf.FromFloat64(mbf.Single, float64(r.x)/(1<<24))

	return f
}

func (r *rnd) next() mbf.Float {

	r.x = (r.x*rndMul + rndAdd) & rndMask

	return r.value()
}

// reseed starts a sequence fixed by the bytes of a negative argument.
func (r *rnd) reseed(f mbf.Float) {

	b := f.Bytes()
	x := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	r.x = (x + x>>24) & rndMask
}

func (r *rnd) randomize(n int64) {
	r.x = (r.x & 0xff) | uint32(uint16(n))<<8
}

// rndCall is RND[(x)]: the next number, the last one for zero, the
// first of a new sequence for a negative argument.
func (ip *Interpreter) rndCall(a []values.Value) (values.Value, error) {

	if len(a) == 0 {
		return values.Float(ip.rnd.next()), nil
	}

	f, err := values.ToFloat(a[0], mbf.Single)
	if err != nil {
		return values.Value{}, err
	}
	switch f.Sign() {
	case 0:
		return values.Float(ip.rnd.value()), nil
	case -1:
		ip.rnd.reseed(f)
	}

	return values.Float(ip.rnd.next()), nil
}

const seedPrompt = "Random number seed (-32768 to 32767)? "

func stmtRandomize(ip *Interpreter) error {

	c := ip.cur
	if !c.EndOfStatement() {
		v, err := ip.eval.Number(c)
		if err != nil {
			return err
		}
		if err := c.RequireEnd(); err != nil {
			return err
		}
		n, err := values.ToInt64(v)
		if err != nil {
			return err
		}
		ip.rnd.randomize(n)
		return nil
	}

	for {
		line, err := ip.readLine(seedPrompt)
		if err != nil {
			return err
		}
		v, err := parseItem(string(line))
		if err == nil {
			var n int16
			if n, err = values.ToInt(v); err == nil {
				ip.rnd.randomize(int64(n))
				return nil
			}
		}
		if err := ip.redo(); err != nil {
			return err
		}
	}
}
