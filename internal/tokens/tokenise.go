package tokens

import (
	"encoding/binary"
	"strings"

	"gwbasic/internal/berrors"
	"gwbasic/internal/values"
)

// MaxLine is the longest tokenised line accepted.
const MaxLine = 255

// MaxLineNumber is the largest program line number.
const MaxLineNumber = 65529

//
// Operators spelled with symbols. ? is shorthand for PRINT
//

var symbols = map[byte]Token{
	'>': Gt, '=': Eq, '<': Lt, '+': Plus, '-': Minus, '*': Mul, '/': Div,
	'^': Pow, '\\': IntDiv, '?': Print,
}

// keywords followed by digits without a blank still split off, so that
// GOTO100 and FOR I=1TO9 read as GOTO 100 and FOR I=1 TO 9
var digitSplit = []Token{Goto, Gosub, Then, Else, To, Step, Run, List, Restore, Resume, Return}

// SplitLineNumber separates a leading line number from program text. ok
// is false for a direct mode line.
func SplitLineNumber(s string) (line int, rest string, ok bool, err error) {

	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false, nil
	}

	n := 0
	for _, c := range s[:i] {
		n = n*10 + int(c-'0')
		if n > MaxLineNumber {
			return 0, s, false, berrors.New(berrors.SyntaxError)
		}
	}

	rest = s[i:]
	if len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}

	return n, rest, true, nil
}

type tokeniser struct {
	src   string
	pos   int
	out   []byte
	lines bool  // numbers are line numbers
	soft  error // first recoverable literal error
}

// Tokenise converts one statement line of program text to tokens,
// without the line header or the terminating EOL. A numeric literal
// out of range is stored as the largest value of its type; the tokens
// then come back together with a recoverable Overflow.
func Tokenise(s string) ([]byte, error) {

	t := &tokeniser{src: s}
	if err := t.run(); err != nil {
		return nil, err
	}
	if len(t.out) > MaxLine {
		return nil, berrors.New(berrors.LineBufferOverflow)
	}

	return t.out, t.soft
}

func upper(b byte) byte {

	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}

	return b
}

func (t *tokeniser) peek(n int) byte {

	if t.pos+n >= len(t.src) {
		return 0
	}

	return upper(t.src[t.pos+n])
}

// emit appends a keyword, handling the encodings that carry a ':'
func (t *tokeniser) emit(k Token) {

	switch k {
	case Else:
		if len(t.out) == 0 || t.out[len(t.out)-1] != ':' {
			t.out = append(t.out, ':')
		}
	case Tick:
		t.out = append(t.out, ':', byte(Rem))
	}

	t.out = k.Encode(t.out)
	t.lines = lineKeywords[k]
}

func (t *tokeniser) run() error {

	for t.pos < len(t.src) {
		c := t.peek(0)
		raw := t.src[t.pos]

		switch {
		default:
			t.out = append(t.out, raw)
			t.pos++
			if c != ' ' && c != ',' && c != '-' {
				t.lines = false
			}
		case c == '"':
			t.literalString()
		case c == '\'':
			t.emit(Tick)
			t.pos++
			t.rest()
		case c == '&':
			t.radix()
		case c >= '0' && c <= '9', c == '.' && t.peek(1) >= '0' && t.peek(1) <= '9':
			if err := t.number(); err != nil {
				return err
			}
		case c >= 'A' && c <= 'Z':
			t.word()
		case symbols[c] != 0:
			if c == '-' && t.lines {
				// a line range keeps line number mode
				t.out = append(t.out, byte(Minus))
				t.pos++
				continue
			}
			t.emit(symbols[c])
			t.pos++
		}
	}

	return nil
}

func (t *tokeniser) literalString() {

	t.out = append(t.out, '"')
	t.pos++
	for t.pos < len(t.src) && t.src[t.pos] != '"' {
		t.out = append(t.out, t.src[t.pos])
		t.pos++
	}
	if t.pos < len(t.src) {
		t.out = append(t.out, '"')
		t.pos++
	}
	t.lines = false
}

// rest copies the remainder of the line untouched (REM and ').
func (t *tokeniser) rest() {

	t.out = append(t.out, t.src[t.pos:]...)
	t.pos = len(t.src)
}

// data copies DATA text untouched up to a ':' outside quotes.
func (t *tokeniser) data() {

	quote := false
	for t.pos < len(t.src) {
		b := t.src[t.pos]
		if b == ':' && !quote {
			return
		}
		if b == '"' {
			quote = !quote
		}
		t.out = append(t.out, b)
		t.pos++
	}
}

func (t *tokeniser) radix() {

	lead := byte(Oct)
	if t.peek(1) == 'H' {
		lead = Hex
	}

	n, used := values.ParseRadix(strings.ToUpper(t.src[t.pos+1:]))
	if used == 0 && lead == Oct {
		t.out = append(t.out, '&')
		t.pos++
		return
	}

	t.out = append(t.out, lead)
	t.out = binary.LittleEndian.AppendUint16(t.out, n)
	t.pos += 1 + used
	t.lines = false
}

func (t *tokeniser) number() error {

	if t.lines {
		i := t.pos
		n := 0
		for i < len(t.src) && t.src[i] >= '0' && t.src[i] <= '9' {
			if n <= MaxLineNumber {
				n = n*10 + int(t.src[i]-'0')
			}
			i++
		}
		if i > t.pos && n <= MaxLineNumber {
			t.out = append(t.out, LineNum)
			t.out = binary.LittleEndian.AppendUint16(t.out, uint16(n))
			t.pos = i
			return nil
		}
	}

	v, n, err := values.ParseLiteral(strings.ToUpper(t.src[t.pos:]))
	if err != nil {
		if !berrors.IsRecoverable(err) {
			return err
		}
		if t.soft == nil {
			t.soft = err
		}
	}

	t.out = EncodeNumber(t.out, v)
	t.pos += n
	t.lines = false

	return nil
}

// EncodeNumber appends the inline literal form of a numeric value.
func EncodeNumber(b []byte, v values.Value) []byte {

	switch v.Kind() {
	default:
		return append(append(b, Sng), v.Bytes()...)
	case values.Double:
		return append(append(b, Dbl), v.Bytes()...)
	case values.Integer:
		n := v.Integer()
		switch {
		case n >= 0 && n <= 10:
			return append(b, Const0+byte(n))
		case n > 10 && n < 256:
			return append(b, Byte, byte(n))
		}
		return append(append(b, Int), v.Bytes()...)
	}
}

func (t *tokeniser) word() {

	start := t.pos
	end := start
	for end < len(t.src) && isNameChar(upper(t.src[end])) {
		end++
	}
	word := strings.ToUpper(t.src[start:end])

	var next byte
	if end < len(t.src) {
		next = t.src[end]
	}

	// sigil and bracket spellings: CHR$, TAB(
	if next == '$' || next == '(' {
		if k, ok := Lookup(word + string(next)); ok {
			t.pos = end + 1
			t.keyword(k)
			return
		}
	}

	if k, ok := Lookup(word); ok {
		t.pos = end
		t.keyword(k)
		return
	}

	// GO TO and GO SUB
	if word == "GO" {
		rest := strings.TrimLeft(strings.ToUpper(t.src[end:]), " ")
		skip := len(t.src[end:]) - len(rest)
		for _, k := range []Token{Goto, Gosub} {
			tail := k.String()[2:]
			if strings.HasPrefix(rest, tail) {
				t.pos = end + skip + len(tail)
				t.keyword(k)
				return
			}
		}
	}

	// FN and USR run into the name that follows
	for _, k := range []Token{Fn, Usr} {
		if p := k.String(); strings.HasPrefix(word, p) && len(word) > len(p) {
			t.pos = start + len(p)
			t.keyword(k)
			return
		}
	}

	for _, k := range digitSplit {
		p := k.String()
		if strings.HasPrefix(word, p) && isDigits(word[len(p):]) {
			t.pos = start + len(p)
			t.keyword(k)
			return
		}
	}

	// a variable name, with its sigil
	t.out = append(t.out, word...)
	t.pos = end
	if end < len(t.src) && values.IsKind(t.src[end]) {
		t.out = append(t.out, t.src[end])
		t.pos++
	}
	t.lines = false
}

func isDigits(s string) bool {

	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// keyword emits k and copies any text that follows it literally.
func (t *tokeniser) keyword(k Token) {

	t.emit(k)

	switch k {
	case Rem:
		t.rest()
	case Data:
		t.data()
	}
}
