package tokens

import (
	"encoding/binary"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
	"gwbasic/internal/values"
)

// Cursor reads a token stream. Reads past the end return EOL.
type Cursor struct {
	buf []byte
	pos int
}

func NewCursor(buf []byte, pos int) *Cursor {
	return &Cursor{buf: buf, pos: pos}
}

func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) Seek(pos int) {
	c.pos = pos
}

// Reset points the cursor at a new buffer.
func (c *Cursor) Reset(buf []byte, pos int) {
	c.buf = buf
	c.pos = pos
}

func (c *Cursor) Bytes() []byte {
	return c.buf
}

// PeekAt returns the byte n positions ahead without moving.
func (c *Cursor) PeekAt(n int) byte {

	if c.pos+n >= len(c.buf) || c.pos+n < 0 {
		return EOL
	}

	return c.buf[c.pos+n]
}

func (c *Cursor) Peek() byte {
	return c.PeekAt(0)
}

func (c *Cursor) ReadByte() byte {

	b := c.Peek()
	if c.pos < len(c.buf) {
		c.pos++
	}

	return b
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

// SkipBlank moves past whitespace and returns the next byte.
func (c *Cursor) SkipBlank() byte {

	for isBlank(c.Peek()) {
		c.pos++
	}

	return c.Peek()
}

// PeekToken returns the next token after whitespace, without consuming
// it. Bytes below 0x80 come back as themselves.
func (c *Cursor) PeekToken() Token {

	b := c.SkipBlank()
	if IsPrefix(b) {
		return Token(b)<<8 | Token(c.PeekAt(1))
	}

	return Token(b)
}

func (c *Cursor) ReadToken() Token {

	t := c.PeekToken()
	if t > 0xff {
		c.pos += 2
	} else if c.pos < len(c.buf) {
		c.pos++
	}

	return t
}

// Accept consumes t if it comes next.
func (c *Cursor) Accept(t Token) bool {

	if c.PeekToken() != t {
		return false
	}
	c.ReadToken()

	return true
}

// Expect consumes t or fails with a syntax error.
func (c *Cursor) Expect(t Token) error {

	if !c.Accept(t) {
		return berrors.New(berrors.SyntaxError)
	}

	return nil
}

// EndOfStatement reports whether only blanks remain before ':' or the
// end of the line. ELSE and ' are stored after a ':' so they end the
// statement too.
func (c *Cursor) EndOfStatement() bool {

	b := c.SkipBlank()

	return b == EOL || b == ':'
}

// RequireEnd fails with a syntax error unless the statement ends here.
func (c *Cursor) RequireEnd() error {

	if !c.EndOfStatement() {
		return berrors.New(berrors.SyntaxError)
	}

	return nil
}

// SkipItem moves past one unit of the stream: a quoted string, an inline
// literal with its payload or a single or double byte token.
func (c *Cursor) SkipItem() {

	b := c.Peek()
	switch {
	default:
		c.pos++
	case b == '"':
		c.pos++
		for c.pos < len(c.buf) && c.buf[c.pos] != '"' && c.buf[c.pos] != EOL {
			c.pos++
		}
		if c.Peek() == '"' {
			c.pos++
		}
	case LiteralSize(b) >= 0:
		c.pos += 1 + LiteralSize(b)
	case IsPrefix(b):
		c.pos += 2
	}

	if c.pos > len(c.buf) {
		c.pos = len(c.buf)
	}
}

// SkipStatement moves to the ':' or EOL that ends the current statement,
// stepping over strings, literals, REM text and DATA text. The
// terminator is not consumed.
func (c *Cursor) SkipStatement() {

	for {
		b := c.Peek()
		switch {
		case b == EOL || b == ':':
			return
		case Token(b) == Rem:
			c.SkipLine()
			return
		case Token(b) == Data:
			c.pos++
			c.SkipData()
		default:
			c.SkipItem()
		}
	}
}

// SkipLine moves to the EOL that ends the current line, stepping over
// strings, literals, DATA text and a closing comment.
func (c *Cursor) SkipLine() {

	for {
		switch b := c.Peek(); {
		default:
			c.SkipItem()
		case b == EOL:
			return
		case Token(b) == Rem:
			c.pos++
			c.SkipComment()
			return
		case Token(b) == Data:
			c.pos++
			c.SkipData()
		}
	}
}

// SkipComment moves over REM text to the EOL. Comment bytes are stored
// raw, so none of them is read as a literal lead or a token prefix.
func (c *Cursor) SkipComment() {

	for c.Peek() != EOL {
		c.pos++
	}
}

// SkipData moves past unquoted DATA text to the next ':' or EOL.
func (c *Cursor) SkipData() {

	quote := false
	for {
		b := c.Peek()
		if b == EOL || (b == ':' && !quote) {
			return
		}
		if b == '"' {
			quote = !quote
		}
		c.pos++
	}
}

// ReadData reads one DATA item: a quoted string, or unquoted text up to
// the next comma, ':' or EOL with surrounding blanks removed. quoted
// reports which form it was.
func (c *Cursor) ReadData() (item []byte, quoted bool) {

	c.SkipBlank()
	if c.Peek() == '"' {
		c.pos++
		start := c.pos
		for c.Peek() != '"' && c.Peek() != EOL {
			c.pos++
		}
		item = append([]byte(nil), c.buf[start:c.pos]...)
		if c.Peek() == '"' {
			c.pos++
		}
		c.SkipBlank()
		return item, true
	}

	start := c.pos
	for {
		b := c.Peek()
		if b == EOL || b == ':' || b == ',' {
			break
		}
		c.pos++
	}

	end := c.pos
	for end > start && isBlank(c.buf[end-1]) {
		end--
	}

	return append([]byte(nil), c.buf[start:end]...), false
}

// ReadString reads the body of a quoted string; the opening quote has
// been consumed. A string may run unterminated to the end of the line.
func (c *Cursor) ReadString() []byte {

	start := c.pos
	for c.Peek() != '"' && c.Peek() != EOL {
		c.pos++
	}
	s := append([]byte(nil), c.buf[start:c.pos]...)
	if c.Peek() == '"' {
		c.pos++
	}

	return s
}

// ReadRest returns the remaining bytes of the line, leaving the cursor
// at the EOL.
func (c *Cursor) ReadRest() []byte {

	start := c.pos
	for c.Peek() != EOL {
		c.pos++
	}

	return append([]byte(nil), c.buf[start:c.pos]...)
}

func isNameStart(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isNameChar(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9') || b == '.'
}

// IsNameStart reports whether a variable name starts at the cursor.
func (c *Cursor) IsNameStart() bool {
	return isNameStart(c.SkipBlank())
}

// ReadName reads a variable name with its sigil, if any. Only the first
// forty characters are significant.
func (c *Cursor) ReadName() (string, bool) {

	if !isNameStart(c.SkipBlank()) {
		return "", false
	}

	start := c.pos
	for isNameChar(c.Peek()) {
		c.pos++
	}
	name := string(c.buf[start:c.pos])
	if len(name) > 40 {
		name = name[:40]
	}

	if b := c.Peek(); values.IsKind(b) {
		name += string(b)
		c.pos++
	}

	return name, true
}

// IsNumber reports whether an inline numeric literal comes next.
func (c *Cursor) IsNumber() bool {

	b := c.SkipBlank()

	return b != LinePtr && b != LineNum && LiteralSize(b) >= 0
}

// ReadNumber decodes an inline numeric literal.
func (c *Cursor) ReadNumber() (values.Value, bool) {

	b := c.SkipBlank()
	size := LiteralSize(b)
	if size < 0 || b == LineNum || b == LinePtr || c.pos+1+size > len(c.buf) {
		return values.Value{}, false
	}

	p := c.buf[c.pos+1 : c.pos+1+size]
	c.pos += 1 + size

	switch {
	default:
		return values.Int(int16(b - Const0)), true
	case b == Byte:
		return values.Int(int16(p[0])), true
	case b == Int, b == Oct, b == Hex:
		return values.Int(int16(binary.LittleEndian.Uint16(p))), true
	case b == Sng, b == Dbl:
		return values.Float(mbf.FromBytes(p)), true
	}
}

// ReadLineNumber decodes a line number reference.
func (c *Cursor) ReadLineNumber() (int, bool) {

	b := c.SkipBlank()
	if (b != LineNum && b != LinePtr) || c.pos+3 > len(c.buf) {
		return 0, false
	}

	n := binary.LittleEndian.Uint16(c.buf[c.pos+1:])
	c.pos += 3

	return int(n), true
}
