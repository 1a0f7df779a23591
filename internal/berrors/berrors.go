// Package berrors holds the numbered GW-BASIC error conditions raised by
// the engine.
package berrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a GW-BASIC error number as reported by ERR.
type Code int

const (
	None                    Code = 0
	NextWithoutFor          Code = 1
	SyntaxError             Code = 2
	ReturnWithoutGosub      Code = 3
	OutOfData               Code = 4
	IllegalFunctionCall     Code = 5
	Overflow                Code = 6
	OutOfMemory             Code = 7
	UndefinedLineNumber     Code = 8
	SubscriptOutOfRange     Code = 9
	DuplicateDefinition     Code = 10
	DivisionByZero          Code = 11
	IllegalDirect           Code = 12
	TypeMismatch            Code = 13
	OutOfStringSpace        Code = 14
	StringTooLong           Code = 15
	StringFormulaTooComplex Code = 16
	CantContinue            Code = 17
	UndefinedUserFunction   Code = 18
	NoResume                Code = 19
	ResumeWithoutError      Code = 20
	MissingOperand          Code = 22
	LineBufferOverflow      Code = 23
	ForWithoutNext          Code = 26
	WhileWithoutWend        Code = 29
	WendWithoutWhile        Code = 30
	BadFileNumber           Code = 52
	FileNotFound            Code = 53
	InputPastEnd            Code = 62
	BadFileName             Code = 64
	DirectStatementInFile   Code = 66
	AdvancedFeature         Code = 73
	Break                   Code = 255
)

//
// Message text, as printed by the interpreter and returned by ERR-driven
// handlers. Codes without an entry print as "Unprintable error"
//

var messages = map[Code]string{
	NextWithoutFor:          "NEXT without FOR",
	SyntaxError:             "Syntax error",
	ReturnWithoutGosub:      "RETURN without GOSUB",
	OutOfData:               "Out of DATA",
	IllegalFunctionCall:     "Illegal function call",
	Overflow:                "Overflow",
	OutOfMemory:             "Out of memory",
	UndefinedLineNumber:     "Undefined line number",
	SubscriptOutOfRange:     "Subscript out of range",
	DuplicateDefinition:     "Duplicate Definition",
	DivisionByZero:          "Division by zero",
	IllegalDirect:           "Illegal direct",
	TypeMismatch:            "Type mismatch",
	OutOfStringSpace:        "Out of string space",
	StringTooLong:           "String too long",
	StringFormulaTooComplex: "String formula too complex",
	CantContinue:            "Can't continue",
	UndefinedUserFunction:   "Undefined user function",
	NoResume:                "No RESUME",
	ResumeWithoutError:      "RESUME without error",
	MissingOperand:          "Missing operand",
	LineBufferOverflow:      "Line buffer overflow",
	ForWithoutNext:          "FOR without NEXT",
	WhileWithoutWend:        "WHILE without WEND",
	WendWithoutWhile:        "WEND without WHILE",
	BadFileNumber:           "Bad file number",
	FileNotFound:            "File not found",
	InputPastEnd:            "Input past end",
	BadFileName:             "Bad file name",
	DirectStatementInFile:   "Direct statement in file",
	AdvancedFeature:         "Advanced feature",
	Break:                   "Break",
}

// Message returns the text GW-BASIC prints for c.
func (c Code) Message() string {

	msg, ok := messages[c]
	if !ok {
		return "Unprintable error"
	}

	return msg
}

func (c Code) String() string {
	return c.Message()
}

// Error is a BASIC runtime condition. Pos is the program offset of the
// statement that raised it, or -1 when unknown; Line is filled in by the
// interpreter when the statement belongs to a numbered line.
type Error struct {
	Code Code
	Pos  int
	Line int

	recoverable bool
}

// New returns a hard error with code c.
func New(c Code) *Error {
	return &Error{Code: c, Pos: -1, Line: -1}
}

// Soft returns a recoverable error: the operation that raised it also
// produced a substitute value and execution may carry on with it.
func Soft(c Code) *Error {
	return &Error{Code: c, Pos: -1, Line: -1, recoverable: true}
}

// At returns a copy of e positioned at the given program offset.
func (e *Error) At(pos int) *Error {

	ne := *e
	ne.Pos = pos

	return &ne
}

func (e *Error) Error() string {

	if e.Line >= 0 {
		return fmt.Sprintf("%s in %d", e.Code.Message(), e.Line)
	}

	return e.Code.Message()
}

// Recoverable reports whether e carries a usable substitute result.
func (e *Error) Recoverable() bool {
	return e.recoverable
}

// CodeOf extracts the BASIC error code from err, looking through wrapped
// errors, or None if err is not a BASIC error.
func CodeOf(err error) Code {

	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}

	return None
}

// Is reports whether err is a BASIC error with code c.
func Is(err error, c Code) bool {
	return err != nil && CodeOf(err) == c
}

// IsRecoverable reports whether err is a recoverable BASIC error.
func IsRecoverable(err error) bool {

	var be *Error

	return errors.As(err, &be) && be.recoverable
}
