// Package tokens defines the tokenised program format: keyword and
// operator tokens, inline numeric literals, a cursor over token bytes
// and conversion to and from program text.
package tokens

// Token is a keyword or operator. One byte tokens are 0x81-0xFC; the
// 0xFD, 0xFE and 0xFF families are two bytes, prefix first.
type Token uint16

//
// Inline literal lead bytes and their payload sizes
//

const (
	EOL     = 0x00
	Oct     = 0x0b // 2 bytes
	Hex     = 0x0c // 2 bytes
	LinePtr = 0x0d // 2 bytes
	LineNum = 0x0e // 2 bytes
	Byte    = 0x0f // 1 byte
	Const0  = 0x11 // through 0x1b for 0..10, no payload
	Const10 = 0x1b
	Int     = 0x1c // 2 bytes
	Sng     = 0x1d // 4 bytes
	Dbl     = 0x1f // 8 bytes
)

// LiteralSize returns the payload size following lead byte b, or -1 if b
// does not start an inline literal.
func LiteralSize(b byte) int {

	switch {
	default:
		return -1
	case b == Oct || b == Hex || b == LinePtr || b == LineNum || b == Int:
		return 2
	case b == Byte:
		return 1
	case b >= Const0 && b <= Const10:
		return 0
	case b == Sng:
		return 4
	case b == Dbl:
		return 8
	}
}

const (
	End Token = iota + 0x81
	For
	Next
	Data
	Input
	Dim
	Read
	Let
	Goto
	Run
	If
	Restore
	Gosub
	Return
	Rem
	Stop // 0x90
	Print
	Clear
	List
	New
	On
	Wait
	Def
	Poke
	Cont
	_
	_
	Out
	Lprint
	Llist
	_
	Width // 0xa0
	Else
	Tron
	Troff
	Swap
	Erase
	Edit
	Error
	Resume
	Delete
	Auto
	Renum
	Defstr
	Defint
	Defsng
	Defdbl
	Line // 0xb0
	While
	Wend
	Call
	_
	_
	_
	Write
	Option
	Randomize
	Open
	Close
	Load
	Merge
	Save
	Color
	Cls // 0xc0
	Motor
	Bsave
	Bload
	Sound
	Beep
	Pset
	Preset
	Screen
	Key
	Locate
	_
	To
	Then
	Tab
	Step
	Usr // 0xd0
	Fn
	Spc
	Not
	Erl
	Err
	StringS
	Using
	Instr
	Tick
	Varptr
	Csrlin
	Point
	Off
	Inkey
)

const (
	Gt Token = iota + 0xe6
	Eq
	Lt
	Plus
	Minus
	Mul
	Div
	Pow
	And
	Or
	Xor
	Eqv
	Imp
	Mod
	IntDiv
)

const (
	Cvi Token = iota + 0xfd81
	Cvs
	Cvd
	Mki
	Mks
	Mkd
	_
	_
	_
	_
	Exterr
)

const (
	Files Token = iota + 0xfe81
	Field
	System
	Name
	Lset
	Rset
	Kill
	Put
	Get
	Reset
	Common
	Chain
	Date
	Time
	Paint
	Com // 0xfe90
	Circle
	Draw
	Play
	Timer
	Erdev
	Ioctl
	Chdir
	Mkdir
	Rmdir
	Shell
	Environ
	View
	Window
	Pmap
	Palette
	Lcopy // 0xfea0
	Calls
	_
	_
	_
	Pcopy
	_
	Lock
	Unlock
)

const (
	Left Token = iota + 0xff81
	Right
	Mid
	Sgn
	IntF
	Abs
	Sqr
	Rnd
	Sin
	Log
	Exp
	Cos
	Tan
	Atn
	Fre
	Inp // 0xff90
	Pos
	Len
	Str
	Val
	Asc
	Chr
	Peek
	Space
	OctS
	HexS
	Lpos
	Cint
	Csng
	Cdbl
	Fix
	Pen // 0xffa0
	Stick
	Strig
	Eof
	Loc
	Lof
)

var names = map[Token]string{
	End: "END", For: "FOR", Next: "NEXT", Data: "DATA", Input: "INPUT",
	Dim: "DIM", Read: "READ", Let: "LET", Goto: "GOTO", Run: "RUN",
	If: "IF", Restore: "RESTORE", Gosub: "GOSUB", Return: "RETURN",
	Rem: "REM", Stop: "STOP", Print: "PRINT", Clear: "CLEAR",
	List: "LIST", New: "NEW", On: "ON", Wait: "WAIT", Def: "DEF",
	Poke: "POKE", Cont: "CONT", Out: "OUT", Lprint: "LPRINT",
	Llist: "LLIST", Width: "WIDTH", Else: "ELSE", Tron: "TRON",
	Troff: "TROFF", Swap: "SWAP", Erase: "ERASE", Edit: "EDIT",
	Error: "ERROR", Resume: "RESUME", Delete: "DELETE", Auto: "AUTO",
	Renum: "RENUM", Defstr: "DEFSTR", Defint: "DEFINT",
	Defsng: "DEFSNG", Defdbl: "DEFDBL", Line: "LINE", While: "WHILE",
	Wend: "WEND", Call: "CALL", Write: "WRITE", Option: "OPTION",
	Randomize: "RANDOMIZE", Open: "OPEN", Close: "CLOSE", Load: "LOAD",
	Merge: "MERGE", Save: "SAVE", Color: "COLOR", Cls: "CLS",
	Motor: "MOTOR", Bsave: "BSAVE", Bload: "BLOAD", Sound: "SOUND",
	Beep: "BEEP", Pset: "PSET", Preset: "PRESET", Screen: "SCREEN",
	Key: "KEY", Locate: "LOCATE", To: "TO", Then: "THEN", Tab: "TAB(",
	Step: "STEP", Usr: "USR", Fn: "FN", Spc: "SPC(", Not: "NOT",
	Erl: "ERL", Err: "ERR", StringS: "STRING$", Using: "USING",
	Instr: "INSTR", Tick: "'", Varptr: "VARPTR", Csrlin: "CSRLIN",
	Point: "POINT", Off: "OFF", Inkey: "INKEY$",

	Gt: ">", Eq: "=", Lt: "<", Plus: "+", Minus: "-", Mul: "*", Div: "/",
	Pow: "^", And: "AND", Or: "OR", Xor: "XOR", Eqv: "EQV", Imp: "IMP",
	Mod: "MOD", IntDiv: "\\",

	Cvi: "CVI", Cvs: "CVS", Cvd: "CVD", Mki: "MKI$", Mks: "MKS$",
	Mkd: "MKD$", Exterr: "EXTERR",

	Files: "FILES", Field: "FIELD", System: "SYSTEM", Name: "NAME",
	Lset: "LSET", Rset: "RSET", Kill: "KILL", Put: "PUT", Get: "GET",
	Reset: "RESET", Common: "COMMON", Chain: "CHAIN", Date: "DATE$",
	Time: "TIME$", Paint: "PAINT", Com: "COM", Circle: "CIRCLE",
	Draw: "DRAW", Play: "PLAY", Timer: "TIMER", Erdev: "ERDEV",
	Ioctl: "IOCTL", Chdir: "CHDIR", Mkdir: "MKDIR", Rmdir: "RMDIR",
	Shell: "SHELL", Environ: "ENVIRON", View: "VIEW", Window: "WINDOW",
	Pmap: "PMAP", Palette: "PALETTE", Lcopy: "LCOPY", Calls: "CALLS",
	Pcopy: "PCOPY", Lock: "LOCK", Unlock: "UNLOCK",

	Left: "LEFT$", Right: "RIGHT$", Mid: "MID$", Sgn: "SGN", IntF: "INT",
	Abs: "ABS", Sqr: "SQR", Rnd: "RND", Sin: "SIN", Log: "LOG",
	Exp: "EXP", Cos: "COS", Tan: "TAN", Atn: "ATN", Fre: "FRE",
	Inp: "INP", Pos: "POS", Len: "LEN", Str: "STR$", Val: "VAL",
	Asc: "ASC", Chr: "CHR$", Peek: "PEEK", Space: "SPACE$", OctS: "OCT$",
	HexS: "HEX$", Lpos: "LPOS", Cint: "CINT", Csng: "CSNG", Cdbl: "CDBL",
	Fix: "FIX", Pen: "PEN", Stick: "STICK", Strig: "STRIG", Eof: "EOF",
	Loc: "LOC", Lof: "LOF",
}

// keywords maps keyword text back to its token; operators spelled with
// symbols are not included
var keywords = map[string]Token{}

func init() {

	for t, n := range names {
		c := n[0]
		if c >= 'A' && c <= 'Z' {
			keywords[n] = t
		}
	}
}

func (t Token) String() string {

	n, ok := names[t]
	if !ok {
		return "?"
	}

	return n
}

// Lookup returns the token spelled by word.
func Lookup(word string) (Token, bool) {

	t, ok := keywords[word]

	return t, ok
}

// Encode appends the byte form of t.
func (t Token) Encode(b []byte) []byte {

	if t > 0xff {
		return append(b, byte(t>>8), byte(t))
	}

	return append(b, byte(t))
}

// IsPrefix reports whether b starts a two byte token.
func IsPrefix(b byte) bool {
	return b >= 0xfd && b <= 0xff
}

// IsOperator reports whether t is one of the operator tokens.
func (t Token) IsOperator() bool {
	return t >= Gt && t <= IntDiv
}

// IsFunction reports whether t names a built in function.
func (t Token) IsFunction() bool {

	switch {
	case t>>8 == 0xff, t>>8 == 0xfd:
		return true
	}

	switch t {
	case StringS, Instr, Varptr, Csrlin, Point, Inkey, Erl, Err, Usr, Fn, Timer,
		Date, Time, Ioctl, Environ, Pmap, Play, Exterr:
		return true
	}

	return false
}

// lineKeywords are followed by line numbers rather than values.
var lineKeywords = map[Token]bool{
	Goto: true, Gosub: true, Then: true, Else: true, Restore: true,
	Resume: true, Run: true, List: true, Llist: true, Delete: true,
	Renum: true, Edit: true, Auto: true, Return: true,
}
