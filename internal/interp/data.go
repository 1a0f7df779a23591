package interp

import (
	"strings"

	"gwbasic/internal/berrors"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
	"gwbasic/internal/vars"
)

// target is a variable named by READ, INPUT, LINE INPUT or SWAP.
type target struct {
	name string // canonical
	idx  []int
}

func (ip *Interpreter) readTarget() (target, error) {

	c := ip.cur
	name, ok := c.ReadName()
	if !ok {
		return target{}, berrors.New(berrors.SyntaxError)
	}
	idx, err := ip.eval.Indices(c)
	if err != nil {
		return target{}, err
	}

	return target{name: ip.vars.Canonical(name), idx: idx}, nil
}

func (ip *Interpreter) readTargets() ([]target, error) {

	var ts []target
	for {
		t, err := ip.readTarget()
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
		if !ip.cur.Accept(',') {
			return ts, nil
		}
	}
}

// store assigns raw input text to t: strings are kept as they are,
// numbers must parse completely.
func (ip *Interpreter) store(t target, item []byte, quoted bool) error {

	if vars.KindOf(t.name) == values.String {
		v, err := ip.eval.Store(item)
		if err != nil {
			return err
		}
		return ip.vars.Set(t.name, t.idx, v)
	}

	if quoted {
		return berrors.New(berrors.SyntaxError)
	}
	v, err := parseItem(string(item))
	if err != nil {
		return err
	}

	return ip.vars.Set(t.name, t.idx, v)
}

// parseItem reads a number that must fill s apart from blanks. An empty
// item is zero.
func parseItem(s string) (values.Value, error) {

	v, n, err := values.ParseNumber(s)
	if err != nil {
		return v, err
	}
	if strings.TrimSpace(s[n:]) != "" {
		return v, berrors.New(berrors.SyntaxError)
	}

	return v, nil
}

//
// READ walks the DATA statements of the stored program in line order
// with a cursor of its own; RESTORE moves it
//

func stmtRead(ip *Interpreter) error {

	ts, err := ip.readTargets()
	if err != nil {
		return err
	}
	if err := ip.cur.RequireEnd(); err != nil {
		return err
	}

	for _, t := range ts {
		item, quoted, err := ip.readData()
		if err != nil {
			return err
		}
		if err := ip.store(t, item, quoted); err != nil {
			return err
		}
	}

	return nil
}

// readData returns the next DATA item.
func (ip *Interpreter) readData() ([]byte, bool, error) {

	c := tokens.NewCursor(ip.prog.Image(), ip.data.off)
	for !ip.data.inside {
		switch c.PeekToken() {
		default:
			c.SkipItem()
		case tokens.EOL:
			_, body, ok := ip.prog.Header(c.Pos())
			if !ok {
				ip.data.off = c.Pos()
				return nil, false, berrors.New(berrors.OutOfData)
			}
			c.Seek(body)
		case tokens.Rem:
			c.SkipLine()
		case tokens.Data:
			c.ReadToken()
			ip.data.inside = true
		}
	}

	item, quoted := c.ReadData()
	if !c.Accept(',') {
		ip.data.inside = false
		if c.PeekToken() != tokens.EOL {
			// unquoted text after a closing quote
			c.SkipData()
		}
	}
	ip.data.off = c.Pos()

	return item, quoted, nil
}

func stmtRestore(ip *Interpreter) error {

	off := ip.prog.First()
	if !ip.cur.EndOfStatement() {
		line, err := ip.lineTarget()
		if err != nil {
			return err
		}
		var ok bool
		if off, ok = ip.prog.Offset(line); !ok {
			return berrors.New(berrors.UndefinedLineNumber)
		}
	} else if err := ip.cur.RequireEnd(); err != nil {
		return err
	}
	ip.data = dataPointer{off: off}

	return nil
}
