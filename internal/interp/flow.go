package interp

import (
	"fmt"

	"gwbasic/internal/berrors"
	"gwbasic/internal/program"
	"gwbasic/internal/tokens"
)

// statements is the dispatch table, keyed by the statement keyword.
// It is filled in by init because the handlers reach back into it.
var statements map[tokens.Token]Handler

func init() {

	statements = map[tokens.Token]Handler{
		tokens.Let:       stmtLet,
		tokens.Print:     stmtPrint,
		tokens.Write:     stmtWrite,
		tokens.Input:     stmtInput,
		tokens.Line:      stmtLine,
		tokens.Goto:      stmtGoto,
		tokens.Gosub:     stmtGosub,
		tokens.Return:    stmtReturn,
		tokens.On:        stmtOn,
		tokens.If:        stmtIf,
		tokens.Else:      stmtElse,
		tokens.For:       stmtFor,
		tokens.Next:      stmtNext,
		tokens.While:     stmtWhile,
		tokens.Wend:      stmtWend,
		tokens.End:       stmtEnd,
		tokens.Stop:      stmtStop,
		tokens.Cont:      stmtCont,
		tokens.Run:       stmtRun,
		tokens.New:       stmtNew,
		tokens.Clear:     stmtClear,
		tokens.List:      stmtList,
		tokens.Delete:    stmtDelete,
		tokens.Renum:     stmtRenum,
		tokens.Rem:       stmtRem,
		tokens.Data:      stmtData,
		tokens.Read:      stmtRead,
		tokens.Restore:   stmtRestore,
		tokens.Dim:       stmtDim,
		tokens.Erase:     stmtErase,
		tokens.Option:    stmtOption,
		tokens.Defint:    defType(tokens.Defint),
		tokens.Defsng:    defType(tokens.Defsng),
		tokens.Defdbl:    defType(tokens.Defdbl),
		tokens.Defstr:    defType(tokens.Defstr),
		tokens.Def:       stmtDef,
		tokens.Swap:      stmtSwap,
		tokens.Mid:       stmtMid,
		tokens.Randomize: stmtRandomize,
		tokens.Error:     stmtError,
		tokens.Resume:    stmtResume,
		tokens.Tron:      stmtTron,
		tokens.Troff:     stmtTroff,
		tokens.Width:     stmtWidth,
	}

	for t := range eventTokens {
		statements[t] = eventStatement(t)
	}
}

// lineTarget reads the line number that ends a GOTO-like statement.
func (ip *Interpreter) lineTarget() (int, error) {

	line, ok := ip.cur.ReadLineNumber()
	if !ok {
		return 0, berrors.New(berrors.SyntaxError)
	}

	return line, ip.cur.RequireEnd()
}

func stmtGoto(ip *Interpreter) error {

	line, err := ip.lineTarget()
	if err != nil {
		return err
	}

	return ip.jump(line)
}

func stmtGosub(ip *Interpreter) error {

	line, err := ip.lineTarget()
	if err != nil {
		return err
	}

	return ip.jumpSub(line, nil)
}

func stmtReturn(ip *Interpreter) error {

	line := -1
	if !ip.cur.EndOfStatement() {
		var err error
		if line, err = ip.lineTarget(); err != nil {
			return err
		}
	}

	return ip.ret(line)
}

// stmtOn is ON ERROR GOTO, ON event GOSUB and ON n GOTO|GOSUB list.
func stmtOn(ip *Interpreter) error {

	c := ip.cur
	t := c.PeekToken()
	if t == tokens.Error {
		c.ReadToken()
		return ip.onError()
	}
	if e, ok := eventTokens[t]; ok {
		c.ReadToken()
		return ip.onEvent(e)
	}

	n, err := ip.eval.Int(c)
	if err != nil {
		return err
	}
	if n < 0 || n > 255 {
		return berrors.New(berrors.IllegalFunctionCall)
	}

	how := c.ReadToken()
	if how != tokens.Goto && how != tokens.Gosub {
		return berrors.New(berrors.SyntaxError)
	}

	target := -1
	for i := 1; ; i++ {
		line, ok := c.ReadLineNumber()
		if !ok {
			return berrors.New(berrors.SyntaxError)
		}
		if i == n {
			target = line
		}
		if !c.Accept(',') {
			break
		}
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	switch {
	case target < 0:
		return nil
	case how == tokens.Gosub:
		return ip.jumpSub(target, nil)
	}

	return ip.jump(target)
}

// stmtIf leaves the cursor on the statements to run: after THEN when
// the condition holds, after the matching ELSE when it does not.
func stmtIf(ip *Interpreter) error {

	c := ip.cur
	v, err := ip.eval.Expression(c)
	if err != nil {
		return err
	}
	if v.IsString() {
		return berrors.New(berrors.TypeMismatch)
	}

	c.Accept(',')
	how := c.ReadToken()
	if how != tokens.Then && how != tokens.Goto {
		return berrors.New(berrors.SyntaxError)
	}

	if v.IsTrue() {
		if how == tokens.Goto || c.PeekToken() == tokens.LineNum {
			return stmtGoto(ip)
		}
		return nil
	}

	findElse(c)
	if c.PeekToken() == tokens.LineNum {
		return stmtGoto(ip)
	}

	return nil
}

// findElse moves past the ELSE belonging to the IF just read, counting
// nested IFs on the way, or to the end of the line if there is none.
func findElse(c *tokens.Cursor) {

	depth := 0
	for {
		switch t := c.PeekToken(); t {
		default:
			c.SkipItem()
		case tokens.EOL:
			return
		case tokens.Rem:
			c.SkipLine()
			return
		case tokens.Data:
			c.ReadToken()
			c.SkipData()
		case tokens.If:
			c.ReadToken()
			depth++
		case tokens.Else:
			c.ReadToken()
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

func stmtRem(ip *Interpreter) error {

	ip.cur.SkipComment()

	return nil
}

// stmtElse ends a THEN clause that runs into its ELSE.
func stmtElse(ip *Interpreter) error {

	ip.cur.SkipLine()

	return nil
}

func stmtData(ip *Interpreter) error {

	ip.cur.SkipData()

	return nil
}

func stmtEnd(ip *Interpreter) error {

	if err := ip.cur.RequireEnd(); err != nil {
		return err
	}

	p := ip.here()
	running := ip.running
	ip.halt()
	if running {
		ip.cont = &p
	}

	return nil
}

func stmtStop(ip *Interpreter) error {

	if err := ip.cur.RequireEnd(); err != nil {
		return err
	}

	return ip.interrupt(ip.here())
}

func stmtCont(ip *Interpreter) error {

	if err := ip.cur.RequireEnd(); err != nil {
		return err
	}
	if ip.cont == nil || ip.running {
		return berrors.New(berrors.CantContinue)
	}

	p := *ip.cont
	ip.cont = nil
	ip.resume(p)

	return nil
}

func stmtRun(ip *Interpreter) error {

	c := ip.cur
	if c.PeekToken() == '"' {
		return ip.delegate(tokens.Run)
	}

	line := -1
	if !c.EndOfStatement() {
		var err error
		if line, err = ip.lineTarget(); err != nil {
			return err
		}
	}

	return ip.runFrom(line)
}

func stmtNew(ip *Interpreter) error {

	if err := ip.cur.RequireEnd(); err != nil {
		return err
	}

	ip.prog.Clear()
	ip.reset()
	ip.halt()

	return nil
}

// stmtClear takes the optional memory size arguments and ignores them.
func stmtClear(ip *Interpreter) error {

	c := ip.cur
	for !c.EndOfStatement() {
		if c.Accept(',') {
			continue
		}
		if _, err := ip.eval.Number(c); err != nil {
			return err
		}
	}

	ip.reset()

	return nil
}

// lineRange reads [from][-[to]] for LIST and DELETE.
func (ip *Interpreter) lineRange() (from, to int, err error) {

	c := ip.cur
	from, to = 0, tokens.MaxLineNumber
	if n, ok := c.ReadLineNumber(); ok {
		from, to = n, n
	}
	if c.Accept(tokens.Minus) {
		to = tokens.MaxLineNumber
		if n, ok := c.ReadLineNumber(); ok {
			to = n
		}
	}

	return from, to, c.RequireEnd()
}

func stmtList(ip *Interpreter) error {

	from, to, err := ip.lineRange()
	if err != nil {
		return err
	}

	ip.prog.Lines(from, to, func(num int, toks []byte) bool {
		if err = ip.out.text(program.Text(num, toks)); err == nil {
			err = ip.out.newline()
		}
		return err == nil && !ip.brk.Load()
	})
	if err != nil {
		return wrapIO(err, "list")
	}

	if ip.running {
		ip.halt()
	}

	return nil
}

func stmtDelete(ip *Interpreter) error {

	from, to, err := ip.lineRange()
	if err != nil {
		return err
	}
	if err := ip.prog.DeleteRange(from, to); err != nil {
		return err
	}

	ip.reset()
	ip.halt()

	return nil
}

// stmtRenum is RENUM [new][,[old][,inc]]. The lines from old on are
// numbered from new in steps of inc, 10 and 10 by default, and every
// reference to them follows.
func stmtRenum(ip *Interpreter) error {

	c := ip.cur
	start, old, inc := 10, 0, 10
	if n, ok := c.ReadLineNumber(); ok {
		start = n
	}
	if c.Accept(',') {
		if n, ok := c.ReadLineNumber(); ok {
			old = n
		}
		if c.Accept(',') {
			n, ok := c.ReadLineNumber()
			if !ok {
				return berrors.New(berrors.SyntaxError)
			}
			inc = n
		}
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	var werr error
	err := ip.prog.Renumber(start, old, inc, func(target, num int) {
		if werr == nil {
			werr = ip.out.text(fmt.Sprintf("Undefined line %d in %d", target, num))
		}
		if werr == nil {
			werr = ip.out.newline()
		}
	})
	if err != nil {
		return err
	}

	ip.reset()
	ip.halt()

	return wrapIO(werr, "renum")
}

func stmtTron(ip *Interpreter) error {

	ip.trace = true

	return ip.cur.RequireEnd()
}

func stmtTroff(ip *Interpreter) error {

	ip.trace = false

	return ip.cur.RequireEnd()
}

// stmtWidth sets the console width. Other WIDTH forms belong to the
// host.
func stmtWidth(ip *Interpreter) error {

	c := ip.cur
	start := c.Pos()
	if t := c.PeekToken(); t == '#' || t == tokens.Lprint || t == '"' {
		return ip.delegate(tokens.Width)
	}

	n, err := ip.eval.Int(c)
	if err != nil {
		return err
	}
	if !c.EndOfStatement() {
		c.Seek(start)
		return ip.delegate(tokens.Width)
	}
	if n < 1 || n > 255 {
		return berrors.New(berrors.IllegalFunctionCall)
	}
	ip.out.width = n

	return nil
}
