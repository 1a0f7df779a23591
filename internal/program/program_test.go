package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwbasic/internal/berrors"
	"gwbasic/internal/tokens"
)

func store(t *testing.T, p *Program, num int, text string) {

	toks, err := tokens.Tokenise(text)
	require.NoError(t, err)
	require.NoError(t, p.Store(num, toks))
}

func TestEmpty(t *testing.T) {

	p := New()
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, p.Bytes())
	_, _, ok := p.Header(p.First())
	assert.False(t, ok)
	assert.Equal(t, -1, p.LineAt(0))
}

func TestImage(t *testing.T) {

	p := New()
	store(t, p, 20, "END")
	store(t, p, 10, "X=1")

	want := []byte{
		0x00,
		0x08, 0x00, 10, 0x00, 'X', 0xe7, 0x12, 0x00,
		0x0e, 0x00, 20, 0x00, 0x81, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, want, p.Bytes())

	num, body, ok := p.Header(0)
	require.True(t, ok)
	assert.Equal(t, 10, num)
	assert.Equal(t, 5, body)

	num, body, ok = p.Header(8)
	require.True(t, ok)
	assert.Equal(t, 20, num)
	assert.Equal(t, 13, body)

	_, _, ok = p.Header(14)
	assert.False(t, ok)

	off, ok := p.Offset(20)
	require.True(t, ok)
	assert.Equal(t, 8, off)
	_, ok = p.Offset(15)
	assert.False(t, ok)

	assert.Equal(t, 10, p.LineAt(5))
	assert.Equal(t, 10, p.LineAt(8))
	assert.Equal(t, 20, p.LineAt(9))
	assert.Equal(t, 20, p.LineAt(14))
	assert.Equal(t, -1, p.LineAt(15))
}

func TestReplaceAndDelete(t *testing.T) {

	p := New()
	for i, s := range []string{"A=1", "B=2", "C=3", "D=4"} {
		store(t, p, (i+1)*10, s)
	}
	store(t, p, 20, "B=5")

	var listed []string
	p.Lines(0, tokens.MaxLineNumber, func(num int, toks []byte) bool {
		listed = append(listed, Text(num, toks))
		return true
	})
	assert.Equal(t, []string{"10 A=1", "20 B=5", "30 C=3", "40 D=4"}, listed)

	require.NoError(t, p.Delete(10))
	assert.True(t, berrors.Is(p.Delete(10), berrors.UndefinedLineNumber))

	require.NoError(t, p.DeleteRange(25, 35))
	assert.Equal(t, 2, p.Len())
	assert.True(t, berrors.Is(p.DeleteRange(100, 200), berrors.IllegalFunctionCall))

	next, ok := p.Following(20)
	require.True(t, ok)
	assert.Equal(t, 40, next)
	_, ok = p.Following(40)
	assert.False(t, ok)

	p.Clear()
	assert.Equal(t, 0, p.Len())
}

func TestLoad(t *testing.T) {

	p := New()
	store(t, p, 10, "PRINT \"HI\"")
	store(t, p, 20, "GOTO 10")

	q := New()
	require.NoError(t, q.Load(p.Bytes()))
	assert.Equal(t, p.Bytes(), q.Bytes())
	assert.Equal(t, 2, q.Len())

	bad := p.Bytes()
	bad[1] = 0x03
	assert.Error(t, q.Load(bad))
	assert.Equal(t, 2, q.Len())

	assert.Error(t, q.Load([]byte{1, 2}))
	assert.Error(t, q.Load(p.Bytes()[:8]))
}

func TestTooLarge(t *testing.T) {

	p := New()
	line := make([]byte, 250)
	for i := range line {
		line[i] = 'A'
	}

	var err error
	for n := 1; err == nil; n++ {
		err = p.Store(n, line)
	}
	assert.True(t, berrors.Is(err, berrors.OutOfMemory))
	assert.LessOrEqual(t, len(p.Bytes()), MaxImage)
}

func listing(p *Program) []string {

	var out []string
	p.Lines(0, tokens.MaxLineNumber, func(num int, toks []byte) bool {
		out = append(out, Text(num, toks))
		return true
	})

	return out
}

func renumProgram(t *testing.T) *Program {

	p := New()
	store(t, p, 100, "ON ERROR GOTO 0")
	store(t, p, 110, "IF X THEN 130 ELSE 140")
	store(t, p, 120, "ON X GOSUB 100,130: GOTO 999")
	store(t, p, 130, `DATA 110,"GOTO 120": RESTORE 130`)
	store(t, p, 140, `PRINT "GOTO 110": RESUME 120 ' GOTO 100`)

	return p
}

func TestRenumber(t *testing.T) {

	p := renumProgram(t)

	var undefined [][2]int
	require.NoError(t, p.Renumber(10, 0, 10, func(target, num int) {
		undefined = append(undefined, [2]int{target, num})
	}))
	assert.Equal(t, []string{
		"10 ON ERROR GOTO 0",
		"20 IF X THEN 40 ELSE 50",
		"30 ON X GOSUB 10,40: GOTO 999",
		`40 DATA 110,"GOTO 120": RESTORE 40`,
		`50 PRINT "GOTO 110": RESUME 30 ' GOTO 100`,
	}, listing(p))
	assert.Equal(t, [][2]int{{999, 30}}, undefined)

	off, ok := p.Offset(50)
	require.True(t, ok)
	assert.Equal(t, 50, p.LineAt(off+1))

	p = renumProgram(t)
	require.NoError(t, p.Renumber(1000, 130, 100, nil))
	assert.Equal(t, []string{
		"100 ON ERROR GOTO 0",
		"110 IF X THEN 1000 ELSE 1100",
		"120 ON X GOSUB 100,1000: GOTO 999",
		`1000 DATA 110,"GOTO 120": RESTORE 1000`,
		`1100 PRINT "GOTO 110": RESUME 120 ' GOTO 100`,
	}, listing(p))

	p = renumProgram(t)
	before := p.Bytes()
	require.NoError(t, p.Renumber(100, 0, 10, nil))
	assert.Equal(t, before, p.Bytes())
}

func TestRenumberErrors(t *testing.T) {

	p := renumProgram(t)
	before := p.Bytes()

	for _, args := range [][3]int{
		{105, 120, 10},
		{110, 120, 10},
		{65520, 0, 10},
		{10, 0, 0},
		{10, 500, 10},
	} {
		err := p.Renumber(args[0], args[1], args[2], nil)
		assert.True(t, berrors.Is(err, berrors.IllegalFunctionCall), "%v: %v", args, err)
		assert.Equal(t, before, p.Bytes(), "%v", args)
	}

	assert.NoError(t, New().Renumber(10, 0, 10, nil))
}
