package tokens

import (
	"encoding/binary"
	"strconv"
	"strings"

	"gwbasic/internal/values"
)

// Detokenise renders the tokens of one line as program text, stopping
// at EOL.
func Detokenise(b []byte) string {

	var sb strings.Builder
	c := NewCursor(b, 0)

	for {
		x := c.Peek()
		switch {
		default:
			sb.WriteByte(c.ReadByte())
		case x == EOL:
			return sb.String()
		case x == '"':
			start := c.Pos()
			c.SkipItem()
			sb.Write(b[start:c.Pos()])
		case x == ':' && Token(c.PeekAt(1)) == Else:
			c.ReadByte()
		case x == ':' && Token(c.PeekAt(1)) == Rem && Token(c.PeekAt(2)) == Tick:
			c.Seek(c.Pos() + 3)
			sb.WriteByte('\'')
			sb.Write(c.ReadRest())
		case LiteralSize(x) >= 0:
			sb.WriteString(literal(c))
		case x >= 0x80:
			t := c.ReadToken()
			sb.WriteString(t.String())
			switch t {
			case Rem:
				sb.Write(c.ReadRest())
			case Data:
				start := c.Pos()
				c.SkipData()
				sb.Write(b[start:c.Pos()])
			}
		}
	}
}

// literal lists an inline literal. A float that would read back as
// another type carries its sigil.
func literal(c *Cursor) string {

	lead := c.Peek()
	switch lead {
	case Oct, Hex:
		c.ReadByte()
		n := binary.LittleEndian.Uint16([]byte{c.ReadByte(), c.ReadByte()})
		if lead == Hex {
			return "&H" + strings.ToUpper(strconv.FormatUint(uint64(n), 16))
		}
		return "&O" + strconv.FormatUint(uint64(n), 8)
	case LineNum, LinePtr:
		n, _ := c.ReadLineNumber()
		return strconv.Itoa(n)
	}

	v, ok := c.ReadNumber()
	if !ok {
		c.SkipLine()
		return ""
	}

	s := values.Number(v)
	if back, _, err := values.ParseLiteral(s); err == nil && back.Kind() != v.Kind() {
		s += string(rune(v.Kind()))
	}

	return s
}
