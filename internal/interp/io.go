package interp

import (
	"strings"

	"gwbasic/internal/berrors"
	"gwbasic/internal/eval"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
	"gwbasic/internal/vars"
)

// readLine reads a console line, keeping the column count in step with
// the echo.
func (ip *Interpreter) readLine(prompt string) ([]byte, error) {

	line, err := ip.con.ReadLine(prompt)
	ip.out.setInput()

	return line, wrapIO(err, "input")
}

func (ip *Interpreter) redo() error {

	if err := ip.out.text("?Redo from start"); err != nil {
		return wrapIO(err, "input")
	}

	return wrapIO(ip.out.newline(), "input")
}

// fileNumber reads "#n," and returns the file, or nil when the
// statement does not start with '#'.
func (ip *Interpreter) fileNumber() (File, int, error) {

	c := ip.cur
	if !c.Accept('#') {
		return nil, 0, nil
	}
	n, err := ip.eval.Int(c)
	if err != nil {
		return nil, 0, err
	}
	if err := c.Expect(','); err != nil {
		return nil, 0, err
	}
	f, err := ip.dev.File(n)
	if err != nil {
		return nil, 0, err
	}

	return f, n, nil
}

// output picks the printer for PRINT and WRITE. Files keep their own
// column count.
func (ip *Interpreter) output() (*printer, error) {

	f, n, err := ip.fileNumber()
	if err != nil || f == nil {
		return ip.out, err
	}

	p, ok := ip.files[n]
	if !ok {
		p = &printer{}
		ip.files[n] = p
	}
	p.w = f

	return p, nil
}

// stmtPrint is PRINT [#n,] [USING fmt;] items. A trailing ';' or ','
// holds the line open.
func stmtPrint(ip *Interpreter) error {

	c := ip.cur
	p, err := ip.output()
	if err != nil {
		return err
	}
	if c.Accept(tokens.Using) {
		return ip.printUsing(p)
	}

	newline := true
	for !c.EndOfStatement() {
		newline = true

		switch c.PeekToken() {
		default:
			v, err := ip.eval.Expression(c)
			if err != nil {
				return err
			}
			if v.IsString() {
				err = p.text(string(ip.eval.Bytes(v)))
			} else {
				err = p.number(values.PrintForm(v))
			}
			if err != nil {
				return wrapIO(err, "print")
			}
			continue

		case ';':
			c.ReadToken()

		case ',':
			c.ReadToken()
			if err := p.zone(); err != nil {
				return wrapIO(err, "print")
			}

		case tokens.Tab, tokens.Spc:
			t := c.ReadToken()
			v, err := ip.eval.Number(c)
			if err != nil {
				return err
			}
			if err := c.Expect(')'); err != nil {
				return err
			}
			n, err := eval.IntArg(v, -32768, 32767)
			if err != nil {
				return err
			}
			if err := ip.column(p, t, n); err != nil {
				return wrapIO(err, "print")
			}
		}
		newline = false
	}

	if newline {
		return wrapIO(p.newline(), "print")
	}

	return nil
}

// column is TAB(n) and SPC(n).
func (ip *Interpreter) column(p *printer, t tokens.Token, n int) error {

	if n < 0 {
		if t == tokens.Spc {
			n = 0
		} else {
			n = 1
		}
	}
	if p.width > 0 {
		n %= p.width
	}

	if t == tokens.Tab {
		return p.tab(n)
	}

	return p.text(strings.Repeat(" ", n))
}

// stmtWrite is WRITE [#n,] items: comma separated, strings quoted and
// numbers without padding.
func stmtWrite(ip *Interpreter) error {

	c := ip.cur
	p, err := ip.output()
	if err != nil {
		return err
	}

	var sb strings.Builder
	for !c.EndOfStatement() {
		v, err := ip.eval.Expression(c)
		if err != nil {
			return err
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		if v.IsString() {
			sb.WriteByte('"')
			sb.Write(ip.eval.Bytes(v))
			sb.WriteByte('"')
		} else {
			sb.WriteString(values.Number(v))
		}
		if !c.Accept(',') && !c.Accept(';') {
			break
		}
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	if err := p.text(sb.String()); err != nil {
		return wrapIO(err, "write")
	}

	return wrapIO(p.newline(), "write")
}

// inputPrompt reads ["prompt"{;|,}] and returns the text to show. A
// semicolon after the prompt adds the question mark.
func (ip *Interpreter) inputPrompt(question bool) (string, error) {

	c := ip.cur
	if c.PeekToken() != '"' {
		if question {
			return "? ", nil
		}
		return "", nil
	}
	c.ReadToken()
	s := string(c.ReadString())

	switch {
	case c.Accept(';'):
		if question {
			s += "? "
		}
	case c.Accept(','):
	default:
		return "", berrors.New(berrors.SyntaxError)
	}

	return s, nil
}

// stmtInput is INPUT [;]["prompt"{;|,}] vars and INPUT #n, vars. A
// console reply that does not fit the list is asked for again.
func stmtInput(ip *Interpreter) error {

	c := ip.cur
	f, _, err := ip.fileNumber()
	if err != nil {
		return err
	}

	prompt := ""
	if f == nil {
		c.Accept(';')
		if prompt, err = ip.inputPrompt(true); err != nil {
			return err
		}
	}

	ts, err := ip.readTargets()
	if err != nil {
		return err
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	if f != nil {
		return ip.inputFile(f, ts)
	}

	for {
		line, err := ip.readLine(prompt)
		if err != nil {
			return err
		}
		if ok, err := ip.inputItems(ts, line); ok || err != nil {
			return err
		}
		if err := ip.redo(); err != nil {
			return err
		}
	}
}

// inputItems assigns a console reply. It reports false, assigning
// nothing, if the reply has the wrong number of items or a bad number.
func (ip *Interpreter) inputItems(ts []target, line []byte) (bool, error) {

	items, quoted := splitInput(line)
	if len(items) != len(ts) {
		return false, nil
	}

	for i, t := range ts {
		if vars.KindOf(t.name) == values.String {
			continue
		}
		if quoted[i] {
			return false, nil
		}
		if _, err := parseItem(string(items[i])); err != nil {
			return false, nil
		}
	}

	for i, t := range ts {
		if err := ip.store(t, items[i], quoted[i]); err != nil {
			return true, err
		}
	}

	return true, nil
}

// inputFile reads items from a file, taking new lines as needed.
func (ip *Interpreter) inputFile(f File, ts []target) error {

	var items [][]byte
	var quoted []bool
	for _, t := range ts {
		for len(items) == 0 {
			if f.EOF() {
				return berrors.New(berrors.InputPastEnd)
			}
			line, err := f.ReadLine()
			if err != nil {
				return wrapIO(err, "input")
			}
			items, quoted = splitInput(line)
		}
		if err := ip.store(t, items[0], quoted[0]); err != nil {
			return err
		}
		items, quoted = items[1:], quoted[1:]
	}

	return nil
}

// splitInput breaks a reply into comma separated items. Quoted items
// may hold commas; blanks around unquoted items are dropped.
func splitInput(line []byte) ([][]byte, []bool) {

	var items [][]byte
	var quoted []bool

	i := 0
	for {
		for i < len(line) && line[i] == ' ' {
			i++
		}

		if i < len(line) && line[i] == '"' {
			end := i + 1
			for end < len(line) && line[end] != '"' {
				end++
			}
			items = append(items, line[i+1:end])
			quoted = append(quoted, true)
			i = end + 1
			for i < len(line) && line[i] != ',' {
				i++
			}
		} else {
			start := i
			for i < len(line) && line[i] != ',' {
				i++
			}
			items = append(items, []byte(strings.TrimRight(string(line[start:i]), " ")))
			quoted = append(quoted, false)
		}

		if i >= len(line) {
			return items, quoted
		}
		i++
	}
}

// stmtLine is LINE INPUT [;]["prompt";] v$ and LINE INPUT #n, v$.
// Graphics LINE goes to the host.
func stmtLine(ip *Interpreter) error {

	c := ip.cur
	if !c.Accept(tokens.Input) {
		return ip.delegate(tokens.Line)
	}

	f, _, err := ip.fileNumber()
	if err != nil {
		return err
	}
	prompt := ""
	if f == nil {
		c.Accept(';')
		if prompt, err = ip.inputPrompt(false); err != nil {
			return err
		}
	}

	t, err := ip.readTarget()
	if err != nil {
		return err
	}
	if vars.KindOf(t.name) != values.String {
		return berrors.New(berrors.TypeMismatch)
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	var line []byte
	if f != nil {
		if f.EOF() {
			return berrors.New(berrors.InputPastEnd)
		}
		line, err = f.ReadLine()
		err = wrapIO(err, "line input")
	} else {
		line, err = ip.readLine(prompt)
	}
	if err != nil {
		return err
	}

	return ip.store(t, line, true)
}
