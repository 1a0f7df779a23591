package eval

import (
	"gwbasic/internal/berrors"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
)

// userFunc is a DEF FN definition. body holds the tokens of the
// defining expression, terminated by EOL.
type userFunc struct {
	name   string
	params []string
	body   []byte
}

// Define records DEF FN name(params)=body, replacing any earlier
// definition of the same name.
func (e *Evaluator) Define(name string, params []string, body []byte) {

	f := &userFunc{name: e.Vars.Canonical(name)}
	for _, p := range params {
		f.params = append(f.params, e.Vars.Canonical(p))
	}
	f.body = append(append([]byte(nil), body...), tokens.EOL)

	e.fns[f.name] = f
}

// ClearFunctions forgets every DEF FN.
func (e *Evaluator) ClearFunctions() {
	e.fns = make(map[string]*userFunc)
}

func (e *Evaluator) callUser(c *tokens.Cursor) (values.Value, error) {

	name, ok := c.ReadName()
	if !ok {
		return values.Value{}, berrors.New(berrors.SyntaxError)
	}
	f := e.fns[e.Vars.Canonical(name)]
	if f == nil {
		return values.Value{}, berrors.New(berrors.UndefinedUserFunction)
	}

	var args []values.Value
	if len(f.params) > 0 {
		var err error
		if args, err = e.args(c, len(f.params), len(f.params)); err != nil {
			return values.Value{}, err
		}
	}

	if e.depth >= maxDepth {
		return values.Value{}, berrors.New(berrors.OutOfMemory)
	}
	e.depth++
	defer func() { e.depth-- }()

	// parameters are local: bind them all, evaluate, then unwind
	for i, p := range f.params {
		restore, err := e.Vars.Bind(p, args[i])
		if err != nil {
			return values.Value{}, err
		}
		defer restore()
	}

	body := tokens.NewCursor(f.body, 0)
	v, err := e.Expression(body)
	if err != nil {
		return v, err
	}
	if !body.EndOfStatement() {
		return v, berrors.New(berrors.SyntaxError)
	}

	return values.Coerce(v, values.Kind(f.name[len(f.name)-1]))
}
