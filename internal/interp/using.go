package interp

import (
	"math"
	"strconv"
	"strings"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
	"gwbasic/internal/values"
)

//
// PRINT USING. The format string is cut into fields, each carrying the
// literal text in front of it. Fields are used in turn, starting over
// at the first when the list outlives the format
//

type usingField struct {
	lit  string
	kind byte // '!', '\\', '&', '#', or 0 for text after the last field

	width int // whole field, in characters

	left, right   int // digit positions each side of the point
	point         bool
	comma         bool
	dollar        bool
	star          bool
	plus          bool // leading sign
	trailingPlus  bool
	trailingMinus bool
	exponent      int // 4 or 5 for ^^^^ and ^^^^^, otherwise 0
}

type usingLexer struct {
	buf []byte
	idx int
}

func (l *usingLexer) peek(n int) byte {

	if l.idx+n >= len(l.buf) {
		return 0
	}

	return l.buf[l.idx+n]
}

func (l *usingLexer) has(s string) bool {
	return strings.HasPrefix(string(l.buf[l.idx:]), s)
}

// count consumes a run of b and returns its length.
func (l *usingLexer) count(b byte) int {

	n := 0
	for l.idx < len(l.buf) && l.buf[l.idx] == b {
		l.idx++
		n++
	}

	return n
}

func parseUsing(format []byte) []usingField {

	l := &usingLexer{buf: format}
	var fields []usingField
	var lit strings.Builder

	save := func(f usingField) {
		f.lit = lit.String()
		lit.Reset()
		fields = append(fields, f)
	}

	for l.idx < len(l.buf) {
		switch ch := l.peek(0); ch {
		default:
			if f, ok := l.numeric(); ok {
				save(f)
				continue
			}
			lit.WriteByte(ch)
			l.idx++

		case '_':
			l.idx++
			if l.idx < len(l.buf) {
				lit.WriteByte(l.peek(0))
				l.idx++
			} else {
				lit.WriteByte('_')
			}

		case '!', '&':
			l.idx++
			save(usingField{kind: ch, width: 1})

		case '\\':
			n := 1
			for l.peek(n) == ' ' {
				n++
			}
			if l.peek(n) != '\\' {
				lit.WriteByte(ch)
				l.idx++
				continue
			}
			l.idx += n + 1
			save(usingField{kind: ch, width: n + 1})
		}
	}

	if lit.Len() > 0 {
		save(usingField{})
	}

	return fields
}

// numeric reads a numeric field at the cursor, if there is one.
func (l *usingLexer) numeric() (usingField, bool) {

	start := l.idx
	f := usingField{kind: '#'}

	if l.peek(0) == '+' {
		f.plus = true
		l.idx++
	}

	switch {
	case l.has("**$"):
		f.star, f.dollar = true, true
		f.left = 3
		l.idx += 3
	case l.has("**"):
		f.star = true
		f.left = 2
		l.idx += 2
	case l.has("$$"):
		f.dollar = true
		f.left = 2
		l.idx += 2
	}

	for l.peek(0) == '#' || l.peek(0) == ',' {
		if l.peek(0) == ',' {
			f.comma = true
		}
		f.left++
		l.idx++
	}

	if l.peek(0) == '.' && (f.left > 0 || l.peek(1) == '#') {
		f.point = true
		l.idx++
		f.right = l.count('#')
	}

	digits := f.left
	if f.star || f.dollar {
		digits--
	}
	if digits <= 0 && f.right == 0 {
		l.idx = start
		return f, false
	}

	switch {
	case l.has("^^^^^"):
		f.exponent = 5
		l.idx += 5
	case l.has("^^^^"):
		f.exponent = 4
		l.idx += 4
	}

	switch {
	case l.peek(0) == '-':
		f.trailingMinus = true
		l.idx++
	case l.peek(0) == '+' && !f.plus:
		f.trailingPlus = true
		l.idx++
	}

	f.width = l.idx - start

	return f, true
}

// printUsing is PRINT USING format; items with the cursor after USING.
func (ip *Interpreter) printUsing(p *printer) error {

	c := ip.cur
	format, err := ip.eval.String(c)
	if err != nil {
		return err
	}
	if err := c.Expect(';'); err != nil {
		return err
	}

	fields := parseUsing(format)
	if len(fields) == 0 || fields[0].kind == 0 {
		return berrors.New(berrors.IllegalFunctionCall)
	}

	var out strings.Builder
	i := 0
	newline := true
	for !c.EndOfStatement() {
		v, err := ip.eval.Expression(c)
		if err != nil {
			return err
		}

		for {
			f := fields[i%len(fields)]
			i++
			out.WriteString(f.lit)
			if f.kind == 0 {
				continue
			}
			s, err := ip.usingItem(f, v)
			if err != nil {
				return err
			}
			out.WriteString(s)
			break
		}

		newline = true
		if !c.Accept(';') && !c.Accept(',') {
			break
		}
		newline = false
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}

	// text up to the next field
	if j := i % len(fields); j != 0 {
		out.WriteString(fields[j].lit)
	}

	if err := p.text(out.String()); err != nil {
		return wrapIO(err, "print using")
	}
	if newline {
		return wrapIO(p.newline(), "print using")
	}

	return nil
}

func (ip *Interpreter) usingItem(f usingField, v values.Value) (string, error) {

	if f.kind != '#' {
		if !v.IsString() {
			return "", berrors.New(berrors.TypeMismatch)
		}
		s := string(ip.eval.Bytes(v))
		if f.kind == '&' {
			return s, nil
		}
		if len(s) > f.width {
			return s[:f.width], nil
		}
		return s + strings.Repeat(" ", f.width-len(s)), nil
	}

	if v.IsString() {
		return "", berrors.New(berrors.TypeMismatch)
	}
	x, err := values.ToFloat(v, mbf.Double)
	if err != nil {
		return "", err
	}

	return usingNumber(f, x.Float64()), nil
}

// usingNumber formats num into a numeric field. A number too wide for
// the field is printed in full behind a '%'.
func usingNumber(f usingField, num float64) string {

	neg := num < 0
	num = math.Abs(num)

	var body string
	if f.exponent > 0 {
		body = usingExponent(f, num)
	} else {
		body = strconv.FormatFloat(num, 'f', f.right, 64)
		whole, frac, _ := strings.Cut(body, ".")
		if whole == "0" && f.left-btoi(f.star)-btoi(f.dollar) <= 0 && f.right > 0 {
			whole = ""
		}
		if f.comma {
			whole = commas(whole)
		}
		body = whole
		if f.point {
			body += "." + frac
		}
	}

	if f.dollar {
		body = "$" + body
	}

	switch {
	case f.plus:
		body = sign(neg, "+") + body
	case f.trailingPlus:
		body += sign(neg, "+")
	case f.trailingMinus:
		body += sign(neg, " ")
	case neg:
		body = "-" + body
	}

	if len(body) > f.width {
		return "%" + body
	}

	fill := " "
	if f.star {
		fill = "*"
	}

	return strings.Repeat(fill, f.width-len(body)) + body
}

// usingExponent formats num as digits, point and E notation exponent,
// keeping one position for the sign when no sign is asked for.
func usingExponent(f usingField, num float64) string {

	lead := f.left
	if !f.plus && !f.trailingPlus && !f.trailingMinus {
		lead--
	}
	lead = max(lead, 0)
	sig := max(lead+f.right, 1)

	s := strconv.FormatFloat(num, 'e', sig-1, 64)
	mant, e, _ := strings.Cut(s, "e")
	digits := strings.Replace(mant, ".", "", 1)
	exp, _ := strconv.Atoi(e)
	if num != 0 {
		exp -= lead - 1
	}

	body := digits[:min(lead, len(digits))]
	if f.point {
		body += "." + digits[min(lead, len(digits)):]
	}

	es := strconv.Itoa(abs(exp))
	for len(es) < f.exponent-2 {
		es = "0" + es
	}
	if exp < 0 {
		return body + "E-" + es
	}

	return body + "E+" + es
}

func commas(s string) string {

	var b strings.Builder
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(s[i])
	}

	return b.String()
}

func sign(neg bool, pos string) string {

	if neg {
		return "-"
	}

	return pos
}

func btoi(b bool) int {

	if b {
		return 1
	}

	return 0
}

func abs(n int) int {

	if n < 0 {
		return -n
	}

	return n
}
