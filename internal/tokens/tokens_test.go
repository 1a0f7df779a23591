package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwbasic/internal/berrors"
	"gwbasic/internal/values"
)

func TestTokenise(t *testing.T) {

	tests := []struct {
		in   string
		want []byte
	}{
		{"PRINT 1+2", []byte{0x91, ' ', 0x12, 0xe9, 0x13}},
		{"?A", []byte{0x91, 'A'}},
		{"GOTO 100", []byte{0x89, ' ', 0x0e, 100, 0}},
		{"GOTO100", []byte{0x89, 0x0e, 100, 0}},
		{"GO TO 10", []byte{0x89, ' ', 0x0e, 10, 0}},
		{"X=300", []byte{'X', 0xe7, 0x1c, 0x2c, 0x01}},
		{"X=20", []byte{'X', 0xe7, 0x0f, 20}},
		{"X=&HFF", []byte{'X', 0xe7, 0x0c, 0xff, 0x00}},
		{"'hi", []byte{':', 0x8f, 0xd9, 'h', 'i'}},
		{"FNA(1)", []byte{0xd1, 'A', '(', 0x12, ')'}},
		{"A$=CHR$(65)", []byte{'A', '$', 0xe7, 0xff, 0x96, '(', 0x0f, 65, ')'}},
		{"LIST 10-20", []byte{0x93, ' ', 0x0e, 10, 0, 0xea, 0x0e, 20, 0}},
		{"FOR I=1TO9", []byte{0x82, ' ', 'I', 0xe7, 0x12, 0xcc, 0x1a}},
		{"DATA 1,abc:PRINT", []byte{0x84, ' ', '1', ',', 'a', 'b', 'c', ':', 0x91}},
		{"REM Hi:X", []byte{0x8f, ' ', 'H', 'i', ':', 'X'}},
		{"PRINT \"a:b\"", []byte{0x91, ' ', '"', 'a', ':', 'b', '"'}},
		{"IF A THEN 1 ELSE 2", []byte{0x8b, ' ', 'A', ' ', 0xcd, ' ', 0x0e, 1, 0, ' ', ':', 0xa1, ' ', 0x0e, 2, 0}},
	}

	for _, tt := range tests {
		got, err := Tokenise(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTokeniseTooLong(t *testing.T) {

	_, err := Tokenise(strings.Repeat("A", 300))
	assert.True(t, berrors.Is(err, berrors.LineBufferOverflow))
}

func TestRoundTrip(t *testing.T) {

	tests := []string{
		"PRINT 1+2",
		"FOR I=1 TO 3:PRINT I:NEXT I",
		"GOTO 100",
		"IF X THEN 10 ELSE 20",
		"REM hi there",
		"DATA 1,abc, \"x:y\"",
		"A=1:'note",
		"PRINT \"HELLO\";A$",
		"X=&HFF",
		"X=1.5",
		"X=5!",
		"X=1.5#",
		"X=100000",
		"X=12345678",
		"PRINT 1E+10",
		"LIST 10-20",
		"ON X GOSUB 100,200",
		"PRINT CHR$(65)+LEFT$(A$,2)",
		"DEF FNA(X)=X*2",
		"WHILE A<>B:WEND",
	}

	for _, s := range tests {
		b, err := Tokenise(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, Detokenise(b), s)
	}

	b, err := Tokenise("print a")
	require.NoError(t, err)
	assert.Equal(t, "PRINT A", Detokenise(b))
}

func TestSplitLineNumber(t *testing.T) {

	n, rest, ok, err := SplitLineNumber("10 PRINT")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, n)
	assert.Equal(t, "PRINT", rest)

	_, rest, ok, err = SplitLineNumber("  PRINT 1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "PRINT 1", rest)

	_, _, _, err = SplitLineNumber("70000 X")
	assert.True(t, berrors.Is(err, berrors.SyntaxError))
}

func TestCursor(t *testing.T) {

	b, err := Tokenise("PRINT \"a:b\";X:Y=1")
	require.NoError(t, err)

	c := NewCursor(b, 0)
	assert.Equal(t, Print, c.ReadToken())
	c.SkipStatement()
	assert.Equal(t, byte(':'), c.ReadByte())

	name, ok := c.ReadName()
	require.True(t, ok)
	assert.Equal(t, "Y", name)
	assert.True(t, c.Accept(Eq))
	assert.True(t, c.IsNumber())
	v, ok := c.ReadNumber()
	require.True(t, ok)
	assert.Equal(t, values.Int(1), v)
	assert.True(t, c.EndOfStatement())
	assert.Equal(t, byte(EOL), c.ReadByte())
	assert.Equal(t, byte(EOL), c.ReadByte())
}

func TestSkipLine(t *testing.T) {

	for _, line := range []string{
		"PRINT 1 ' x\xfe\x0c",
		"X=2: DATA 1,\"\xff\",\x0e: REM \x1d",
		"PRINT \"a\xfe\"; 3.5",
	} {
		b, err := Tokenise(line)
		require.NoError(t, err)

		c := NewCursor(append(b, EOL, 0xfe, 0xfe), 0)
		c.SkipLine()
		assert.Equal(t, len(b), c.Pos(), "%q", line)
	}

	b, err := Tokenise("REM \xfe\x0c")
	require.NoError(t, err)
	c := NewCursor(append(b, EOL), 1)
	c.SkipComment()
	assert.Equal(t, len(b), c.Pos())
}

func TestReadData(t *testing.T) {

	c := NewCursor([]byte(` 12 , "a,b" ,x y:`), 0)

	item, quoted := c.ReadData()
	assert.Equal(t, "12", string(item))
	assert.False(t, quoted)
	assert.Equal(t, byte(','), c.ReadByte())

	item, quoted = c.ReadData()
	assert.Equal(t, "a,b", string(item))
	assert.True(t, quoted)
	assert.Equal(t, byte(','), c.ReadByte())

	item, _ = c.ReadData()
	assert.Equal(t, "x y", string(item))
	assert.Equal(t, byte(':'), c.Peek())
}

func TestTwoByteTokens(t *testing.T) {

	b, err := Tokenise("X=CVI(A$)+TIMER")
	require.NoError(t, err)

	c := NewCursor(b, 2)
	assert.Equal(t, Cvi, c.ReadToken())
	c.Seek(len(b) - 2)
	assert.Equal(t, Timer, c.ReadToken())
	assert.True(t, Cvi.IsFunction())
	assert.True(t, Plus.IsOperator())
	assert.Equal(t, "TIMER", Timer.String())
}
