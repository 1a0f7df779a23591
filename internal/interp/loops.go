package interp

import (
	"gwbasic/internal/berrors"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
	"gwbasic/internal/vars"
)

//
// FOR/NEXT. The loop variable is updated in place by NEXT; a loop that
// would not run at all skips to its NEXT and iterates from there, which
// leaves the variable one step past the start
//

func stmtFor(ip *Interpreter) error {

	c := ip.cur
	name, ok := c.ReadName()
	if !ok || c.PeekToken() == '(' {
		return berrors.New(berrors.SyntaxError)
	}
	name = ip.vars.Canonical(name)
	k := vars.KindOf(name)
	if k == values.String {
		return berrors.New(berrors.TypeMismatch)
	}

	if err := c.Expect(tokens.Eq); err != nil {
		return err
	}
	start, err := ip.eval.Number(c)
	if err != nil {
		return err
	}
	if err := c.Expect(tokens.To); err != nil {
		return err
	}
	limit, err := ip.eval.Number(c)
	if err != nil {
		return err
	}
	step := values.Int(1)
	if c.Accept(tokens.Step) {
		if step, err = ip.eval.Number(c); err != nil {
			return err
		}
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	if start, err = values.Coerce(start, k); err != nil {
		return err
	}
	if limit, err = values.Coerce(limit, k); err != nil {
		return err
	}
	if step, err = values.Coerce(step, k); err != nil {
		return err
	}
	if err := ip.vars.Set(name, nil, start); err != nil {
		return err
	}

	// a loop on the same variable is replaced, with everything inside it
	for i := len(ip.fors) - 1; i >= 0; i-- {
		if ip.fors[i].name == name {
			ip.fors = ip.fors[:i]
			break
		}
	}
	if len(ip.fors) >= ip.cfg.MaxFor {
		return berrors.New(berrors.OutOfMemory)
	}

	f := forFrame{name: name, limit: limit, step: step, sign: step.Sign(), body: ip.here()}
	ip.fors = append(ip.fors, f)
	ip.dump("FOR", f)

	done, err := ip.finished(f, start)
	if err != nil || !done {
		return err
	}

	if err := ip.skipToNext(); err != nil {
		return err
	}

	return stmtNext(ip)
}

// finished reports whether v has passed the limit of f.
func (ip *Interpreter) finished(f forFrame, v values.Value) (bool, error) {

	n, err := ip.eval.Calc.Compare(v, f.limit)
	if err != nil {
		return false, err
	}

	switch {
	case f.sign > 0:
		return n > 0, nil
	case f.sign < 0:
		return n < 0, nil
	}

	return false, nil
}

// skipToNext moves to the NEXT closing the loop just opened, leaving
// the cursor on its variable or just past the NEXT if it names none.
func (ip *Interpreter) skipToNext() error {

	c := ip.cur
	line := ip.line
	depth := 0
	prev := tokens.Token(0)

	for {
		t, ok := ip.scan()
		if !ok {
			ip.line = line
			return berrors.New(berrors.ForWithoutNext)
		}

		switch {
		case t == tokens.For:
			depth++

		case t == tokens.Next && prev != tokens.Resume:
			ip.stmt = c.Pos()
			c.ReadToken()
			if c.EndOfStatement() {
				if depth == 0 {
					return nil
				}
				depth--
				prev = t
				continue
			}
			for {
				mark := c.Pos()
				if _, ok := c.ReadName(); !ok {
					return berrors.New(berrors.SyntaxError)
				}
				if depth == 0 {
					c.Seek(mark)
					return nil
				}
				depth--
				if !c.Accept(',') {
					break
				}
			}
			prev = t
			continue
		}

		prev = t
		c.SkipItem()
	}
}

// scan moves to the next token, following the program into later lines
// when running and stepping over REM and DATA text. ok is false at the
// end of the text.
func (ip *Interpreter) scan() (tokens.Token, bool) {

	c := ip.cur
	for {
		switch t := c.PeekToken(); t {
		default:
			return t, true

		case tokens.EOL:
			if !ip.running {
				return t, false
			}
			num, body, ok := ip.prog.Header(c.Pos())
			if !ok {
				return t, false
			}
			ip.line = num
			c.Seek(body)

		case tokens.Rem:
			c.SkipLine()

		case tokens.Data:
			c.ReadToken()
			c.SkipData()
		}
	}
}

func stmtNext(ip *Interpreter) error {

	c := ip.cur
	for {
		name := ""
		if !c.EndOfStatement() {
			n, ok := c.ReadName()
			if !ok {
				return berrors.New(berrors.SyntaxError)
			}
			name = ip.vars.Canonical(n)
		}

		again, err := ip.iterate(name)
		if err != nil || again {
			return err
		}
		if name == "" || !c.Accept(',') {
			break
		}
	}

	return c.RequireEnd()
}

// iterate steps the loop on name, or the innermost loop when name is
// empty, and jumps back to its body unless it has finished.
func (ip *Interpreter) iterate(name string) (bool, error) {

	i := len(ip.fors) - 1
	if name != "" {
		for i >= 0 && ip.fors[i].name != name {
			i--
		}
	}
	if i < 0 {
		return false, berrors.New(berrors.NextWithoutFor)
	}
	ip.fors = ip.fors[:i+1]
	f := ip.fors[i]

	v, err := ip.vars.Get(f.name, nil)
	if err != nil {
		return false, err
	}
	if v, err = ip.eval.Calc.Binary(values.OpAdd, v, f.step); err != nil {
		return false, err
	}
	if err := ip.vars.Set(f.name, nil, v); err != nil {
		return false, err
	}

	done, err := ip.finished(f, v)
	if err != nil {
		return false, err
	}
	if done {
		ip.fors = ip.fors[:i]
		return false, nil
	}
	ip.resume(f.body)

	return true, nil
}

//
// WHILE/WEND. The frame stays while the loop runs; WEND sends
// execution back to the WHILE, which evaluates the condition again
//

func stmtWhile(ip *Interpreter) error {

	c := ip.cur
	start := ip.at(ip.stmt)

	v, err := ip.eval.Expression(c)
	if err != nil {
		return err
	}
	if v.IsString() {
		return berrors.New(berrors.TypeMismatch)
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	n := len(ip.whiles)
	again := n > 0 && ip.whiles[n-1].cond.off == start.off && ip.whiles[n-1].cond.running == start.running
	if !again {
		if n >= ip.cfg.MaxFor {
			return berrors.New(berrors.OutOfMemory)
		}
		f := whileFrame{cond: start}
		ip.whiles = append(ip.whiles, f)
		ip.dump("WHILE", f)
		n++
	}

	if v.IsTrue() {
		return nil
	}
	ip.whiles = ip.whiles[:n-1]

	return ip.skipToWend()
}

// skipToWend moves past the WEND matching the WHILE just read.
func (ip *Interpreter) skipToWend() error {

	c := ip.cur
	line := ip.line
	depth := 0

	for {
		t, ok := ip.scan()
		if !ok {
			ip.line = line
			return berrors.New(berrors.WhileWithoutWend)
		}
		switch t {
		default:
			c.SkipItem()
		case tokens.While:
			c.ReadToken()
			depth++
		case tokens.Wend:
			c.ReadToken()
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

func stmtWend(ip *Interpreter) error {

	if err := ip.cur.RequireEnd(); err != nil {
		return err
	}
	if len(ip.whiles) == 0 {
		return berrors.New(berrors.WendWithoutWhile)
	}
	ip.resume(ip.whiles[len(ip.whiles)-1].cond)

	return nil
}
