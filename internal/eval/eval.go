// Package eval evaluates BASIC expressions straight off the token
// stream with an operator precedence (shunting-yard) parser.
package eval

import (
	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
)

// VariableStore resolves names. idx is empty for scalars.
type VariableStore interface {
	Get(name string, idx []int) (values.Value, error)
	Set(name string, idx []int, v values.Value) error
	Bind(name string, v values.Value) (func(), error)
	Canonical(name string) string
}

// Function is a built in or host function. Functions with Max zero take
// no argument list; with Min zero and Max above zero the list is
// optional.
type Function struct {
	Min, Max int
	Call     func(e *Evaluator, args []values.Value) (values.Value, error)
}

// maxDepth bounds nested user function calls.
const maxDepth = 64

// Evaluator reads expressions from a cursor.
type Evaluator struct {
	Vars VariableStore
	Calc *values.Calc

	// OnSoft is told about the first overflow or division by zero of
	// each kind per statement. A non-nil result aborts the expression
	// with that error.
	OnSoft func(err error) error

	funcs map[tokens.Token]Function
	fns   map[string]*userFunc
	flags map[berrors.Code]bool
	depth int
}

func New(vars VariableStore, calc *values.Calc) *Evaluator {

	e := &Evaluator{
		Vars:  vars,
		Calc:  calc,
		funcs: make(map[tokens.Token]Function),
		fns:   make(map[string]*userFunc),
		flags: make(map[berrors.Code]bool),
	}
	for t, f := range builtins {
		e.funcs[t] = f
	}

	return e
}

// Register installs a function for t, replacing any built in.
func (e *Evaluator) Register(t tokens.Token, f Function) {
	e.funcs[t] = f
}

// ResetFlags starts a new overflow episode. Called at every statement.
func (e *Evaluator) ResetFlags() {

	for k := range e.flags {
		delete(e.flags, k)
	}
}

// soft reports a recoverable error once per episode. Hard errors pass
// through.
func (e *Evaluator) soft(err error) error {

	if err == nil {
		return nil
	}
	if !berrors.IsRecoverable(err) {
		return err
	}

	c := berrors.CodeOf(err)
	if e.flags[c] {
		return nil
	}
	e.flags[c] = true
	if e.OnSoft != nil {
		return e.OnSoft(err)
	}

	return nil
}

//
// Precedence of the binary operators, high binds tighter
//

const (
	precUnaryMinus = 12
	precNot        = 6
)

var binary = map[tokens.Token]struct {
	op   values.Op
	prec int
}{
	tokens.Pow:    {values.OpPow, 13},
	tokens.Mul:    {values.OpMul, 11},
	tokens.Div:    {values.OpDiv, 11},
	tokens.IntDiv: {values.OpIntDiv, 10},
	tokens.Mod:    {values.OpMod, 9},
	tokens.Plus:   {values.OpAdd, 8},
	tokens.Minus:  {values.OpSub, 8},
	tokens.Eq:     {values.OpEq, 7},
	tokens.Lt:     {values.OpLt, 7},
	tokens.Gt:     {values.OpGt, 7},
	tokens.And:    {values.OpAnd, 5},
	tokens.Or:     {values.OpOr, 4},
	tokens.Xor:    {values.OpXor, 3},
	tokens.Eqv:    {values.OpEqv, 2},
	tokens.Imp:    {values.OpImp, 1},
}

// fused maps a pair of comparison tokens to the operator they spell.
var fused = map[[2]tokens.Token]values.Op{
	{tokens.Lt, tokens.Eq}: values.OpLe,
	{tokens.Eq, tokens.Lt}: values.OpLe,
	{tokens.Gt, tokens.Eq}: values.OpGe,
	{tokens.Eq, tokens.Gt}: values.OpGe,
	{tokens.Lt, tokens.Gt}: values.OpNe,
	{tokens.Gt, tokens.Lt}: values.OpNe,
}

type pending struct {
	op    values.Op
	prec  int
	unary bool
}

type machine struct {
	e        *Evaluator
	operands []values.Value
	ops      []pending
}

func (m *machine) push(v values.Value) {
	m.operands = append(m.operands, v)
}

func (m *machine) pop() values.Value {

	v := m.operands[len(m.operands)-1]
	m.operands = m.operands[:len(m.operands)-1]

	return v
}

// apply pops the top operator and its operands and pushes the result.
func (m *machine) apply() error {

	p := m.ops[len(m.ops)-1]
	m.ops = m.ops[:len(m.ops)-1]

	var v values.Value
	var err error
	if p.unary {
		v, err = m.e.Calc.Unary(p.op, m.pop())
	} else {
		r := m.pop()
		l := m.pop()
		v, err = m.e.Calc.Binary(p.op, l, r)
	}
	if err = m.e.soft(err); err != nil {
		return err
	}
	m.push(v)

	return nil
}

// drain applies stacked operators binding at least as tightly as prec.
func (m *machine) drain(prec int) error {

	for len(m.ops) > 0 && m.ops[len(m.ops)-1].prec >= prec {
		if err := m.apply(); err != nil {
			return err
		}
	}

	return nil
}

// operator reads a binary operator, fusing two character comparisons.
func (m *machine) operator(c *tokens.Cursor) (pending, bool) {

	t := c.PeekToken()
	b, ok := binary[t]
	if !ok {
		return pending{}, false
	}
	c.ReadToken()

	if b.prec == 7 {
		if op, ok := fused[[2]tokens.Token{t, c.PeekToken()}]; ok {
			c.ReadToken()
			return pending{op: op, prec: 7}, true
		}
	}

	return pending{op: b.op, prec: b.prec}, true
}

// Expression evaluates one expression, leaving the cursor on the first
// token that cannot continue it.
func (e *Evaluator) Expression(c *tokens.Cursor) (values.Value, error) {

	m := &machine{e: e}
	want := true

	for {
		if want {
			switch c.PeekToken() {
			case tokens.Minus:
				c.ReadToken()
				m.ops = append(m.ops, pending{op: values.OpNeg, prec: precUnaryMinus, unary: true})
				continue
			case tokens.Plus:
				c.ReadToken()
				continue
			case tokens.Not:
				c.ReadToken()
				m.ops = append(m.ops, pending{op: values.OpNot, prec: precNot, unary: true})
				continue
			}

			v, ok, err := e.operand(c)
			if err != nil {
				return values.Value{}, err
			}
			if !ok {
				return values.Value{}, deficit(c)
			}
			m.push(v)
			want = false
			continue
		}

		p, ok := m.operator(c)
		if !ok {
			break
		}
		if err := m.drain(p.prec); err != nil {
			return values.Value{}, err
		}
		m.ops = append(m.ops, p)
		want = true
	}

	if err := m.drain(0); err != nil {
		return values.Value{}, err
	}

	return m.pop(), nil
}

// deficit is the error for an operator without its right operand:
// missing operand at the end of a statement, a syntax error before
// closing punctuation or a separator.
func deficit(c *tokens.Cursor) error {

	if c.EndOfStatement() {
		return berrors.New(berrors.MissingOperand)
	}

	return berrors.New(berrors.SyntaxError)
}

// operand reads one operand. ok is false when none starts here.
func (e *Evaluator) operand(c *tokens.Cursor) (values.Value, bool, error) {

	t := c.PeekToken()
	switch {
	case c.IsNumber():
		v, ok := c.ReadNumber()
		if !ok {
			return values.Value{}, false, berrors.New(berrors.SyntaxError)
		}
		return v, true, nil

	case t == tokens.LineNum:
		n, _ := c.ReadLineNumber()
		if n > 32767 {
			return values.Float(mbf.FromInt(mbf.Single, int64(n))), true, nil
		}
		return values.Int(int16(n)), true, nil

	case t == '"':
		c.ReadByte()
		ref, err := e.Calc.Heap.Store(c.ReadString())
		if err != nil {
			return values.Value{}, false, err
		}
		return values.Str(ref), true, nil

	case t == '(':
		c.ReadToken()
		v, err := e.Expression(c)
		if err != nil {
			return v, false, err
		}
		if err := c.Expect(')'); err != nil {
			return v, false, err
		}
		return v, true, nil

	case t == tokens.Fn:
		c.ReadToken()
		v, err := e.callUser(c)
		return v, err == nil, err

	case c.IsNameStart():
		name, _ := c.ReadName()
		idx, err := e.Indices(c)
		if err != nil {
			return values.Value{}, false, err
		}
		v, err := e.Vars.Get(name, idx)
		return v, err == nil, err
	}

	if f, ok := e.funcs[t]; ok {
		c.ReadToken()
		args, err := e.args(c, f.Min, f.Max)
		if err != nil {
			return values.Value{}, false, err
		}
		v, err := f.Call(e, args)
		if err = e.soft(err); err != nil {
			return v, false, err
		}
		return v, true, nil
	}
	if t.IsFunction() {
		return values.Value{}, false, berrors.New(berrors.AdvancedFeature)
	}

	return values.Value{}, false, nil
}

// args reads a bracketed argument list of min to max expressions.
func (e *Evaluator) args(c *tokens.Cursor, min, max int) ([]values.Value, error) {

	if max == 0 {
		return nil, nil
	}
	if c.PeekToken() != '(' {
		if min == 0 {
			return nil, nil
		}
		return nil, berrors.New(berrors.SyntaxError)
	}
	c.ReadToken()

	var args []values.Value
	for {
		v, err := e.Expression(c)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if !c.Accept(',') {
			break
		}
	}
	if err := c.Expect(')'); err != nil {
		return nil, err
	}
	if len(args) < min || len(args) > max {
		return nil, berrors.New(berrors.SyntaxError)
	}

	return args, nil
}

// Indices reads an optional subscript list. Both () and [] are
// accepted.
func (e *Evaluator) Indices(c *tokens.Cursor) ([]int, error) {

	open := c.PeekToken()
	if open != '(' && open != '[' {
		return nil, nil
	}
	c.ReadToken()

	var idx []int
	for {
		v, err := e.Expression(c)
		if err != nil {
			return nil, err
		}
		n, err := values.ToInt(v)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, berrors.New(berrors.SubscriptOutOfRange)
		}
		idx = append(idx, int(n))
		if !c.Accept(',') {
			break
		}
	}

	if c.Accept(')') || c.Accept(']') {
		return idx, nil
	}

	return nil, berrors.New(berrors.SyntaxError)
}

// Number evaluates an expression that must be numeric.
func (e *Evaluator) Number(c *tokens.Cursor) (values.Value, error) {

	v, err := e.Expression(c)
	if err == nil && v.IsString() {
		err = berrors.New(berrors.TypeMismatch)
	}

	return v, err
}

// Int evaluates a numeric expression and rounds it to an Integer.
func (e *Evaluator) Int(c *tokens.Cursor) (int, error) {

	v, err := e.Number(c)
	if err != nil {
		return 0, err
	}
	n, err := values.ToInt(v)

	return int(n), err
}

// String evaluates a string expression and returns its bytes.
func (e *Evaluator) String(c *tokens.Cursor) ([]byte, error) {

	v, err := e.Expression(c)
	if err != nil {
		return nil, err
	}
	if !v.IsString() {
		return nil, berrors.New(berrors.TypeMismatch)
	}

	return e.Calc.Heap.Copy(v.Ref()), nil
}

// Bytes returns the body of a String value.
func (e *Evaluator) Bytes(v values.Value) []byte {
	return e.Calc.Heap.Copy(v.Ref())
}

// Store puts b on the string heap.
func (e *Evaluator) Store(b []byte) (values.Value, error) {

	ref, err := e.Calc.Heap.Store(b)
	if err != nil {
		return values.Value{}, err
	}

	return values.Str(ref), nil
}
