package interp

import (
	"github.com/pkg/errors"

	"gwbasic/internal/berrors"
	"gwbasic/internal/tokens"
)

// fail decides the fate of a statement error: divert to the ON ERROR
// handler if one is armed and not already busy, otherwise stop the run
// and hand the error to the caller.
func (ip *Interpreter) fail(err error) error {

	if errors.Cause(err) == ErrInterrupted {
		return ip.interrupt(ip.at(ip.stmt))
	}

	code := berrors.CodeOf(err)
	switch code {
	case berrors.None:
		ip.halt()
		return err
	case berrors.Break:
		return err
	}

	line := -1
	if ip.running {
		line = ip.line
	}
	ip.trap.code = code
	ip.trap.line = line

	if ip.trap.onError != 0 && !ip.trap.handling {
		ip.trap.handling = true
		ip.trap.resume = ip.at(ip.stmt)
		ip.dump("trap", ip.trap)
		if err := ip.jump(ip.trap.onError); err == nil {
			return nil
		}
		ip.trap.handling = false
	}

	return ip.surface(code, line)
}

// surface ends the run with an error positioned at the failing
// statement.
func (ip *Interpreter) surface(code berrors.Code, line int) error {

	e := berrors.New(code).At(ip.stmt)
	e.Line = line

	ip.trap.handling = false
	ip.halt()
	ip.cont = nil

	return e
}

// soft is told about the first overflow or division by zero of a
// statement. Armed traps take it as an ordinary error; otherwise the
// message is printed and the substitute value stands.
func (ip *Interpreter) soft(err error) error {

	if ip.trap.onError != 0 && !ip.trap.handling {
		return err
	}

	return ip.notice(err)
}

// notice prints the message of a recoverable error on a line of its own.
func (ip *Interpreter) notice(err error) error {

	if ip.out.col > 0 {
		ip.out.newline()
	}
	ip.out.text(berrors.CodeOf(err).Message())

	return ip.out.newline()
}

//
// ON ERROR GOTO, RESUME and ERROR
//

func (ip *Interpreter) onError() error {

	c := ip.cur
	if err := c.Expect(tokens.Goto); err != nil {
		return err
	}
	line, ok := c.ReadLineNumber()
	if !ok {
		return berrors.New(berrors.SyntaxError)
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	if line == 0 {
		ip.trap.onError = 0
		if ip.trap.handling {
			// the handler gave up: report the error it was handling
			// from where it happened
			ip.trap.handling = false
			ip.resume(ip.trap.resume)
			ip.stmt = ip.trap.resume.off
			return berrors.New(ip.trap.code)
		}
		return nil
	}

	if _, ok := ip.prog.Offset(line); !ok {
		return berrors.New(berrors.UndefinedLineNumber)
	}
	ip.trap.onError = line

	return nil
}

func stmtResume(ip *Interpreter) error {

	c := ip.cur
	if !ip.trap.handling {
		return berrors.New(berrors.ResumeWithoutError)
	}

	p := ip.trap.resume
	switch {
	case c.EndOfStatement():

	case c.Accept(tokens.Next):
		if err := c.RequireEnd(); err != nil {
			return err
		}
		ip.trap.handling = false
		ip.resume(p)
		ip.cur.SkipStatement()
		return nil

	default:
		line, ok := c.ReadLineNumber()
		if !ok {
			return berrors.New(berrors.SyntaxError)
		}
		if err := c.RequireEnd(); err != nil {
			return err
		}
		if line != 0 {
			if err := ip.jump(line); err != nil {
				return err
			}
			ip.trap.handling = false
			return nil
		}
	}

	if err := c.RequireEnd(); err != nil {
		return err
	}
	ip.trap.handling = false
	ip.resume(p)

	return nil
}

func stmtError(ip *Interpreter) error {

	n, err := ip.eval.Int(ip.cur)
	if err != nil {
		return err
	}
	if n < 1 || n > 255 {
		return berrors.New(berrors.IllegalFunctionCall)
	}
	if err := ip.cur.RequireEnd(); err != nil {
		return err
	}

	return berrors.New(berrors.Code(n))
}
