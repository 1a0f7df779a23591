package main

import (
	"io"
	"os"

	"github.com/danswartzendruber/liner"
	"golang.org/x/term"

	"gwbasic/internal/interp"
)

// console is the interpreter's screen and keyboard plus the command
// line reader.
type console interface {
	interp.Console

	// Command reads a command line. Lines read here go into the
	// history; INPUT replies do not.
	Command() (string, error)

	// Width is the terminal width in columns, or 0 if unknown.
	Width() int

	Close() error
}

// newConsole returns a line editing console on a terminal and a plain
// stream otherwise, so that programs can be piped in.
func newConsole() console {

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return &pipeConsole{Console: interp.NewStream(os.Stdin, os.Stdout)}
	}

	l := liner.NewLiner()
	l.SetMultiLineMode(true)

	return &ttyConsole{l: l, w: os.Stdout}
}

//
// ttyConsole edits lines with liner. liner puts the terminal in raw
// mode only while a prompt is up, so output in between needs no
// translation
//

type ttyConsole struct {
	l *liner.State
	w io.Writer
}

func (c *ttyConsole) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

func (c *ttyConsole) ReadLine(prompt string) ([]byte, error) {

	s, err := c.prompt(prompt)

	return []byte(s), err
}

func (c *ttyConsole) Command() (string, error) {

	s, err := c.prompt("")
	if err == nil && s != "" {
		c.l.AppendHistory(s)
	}

	return s, err
}

//
// Annoyingly, a non-nil error from Prompt can be totally okay: ^D at
// the start of a line is EOF and ^C aborts the prompt. The abort reads
// as a break, like ^C while a program runs
//

func (c *ttyConsole) prompt(prompt string) (string, error) {

	s, err := c.l.Prompt(prompt)
	switch {
	case err == nil:
		return s, nil
	case err == liner.ErrPromptAborted:
		return "", interp.ErrInterrupted
	default:
		return "", err
	}
}

func (c *ttyConsole) Width() int {

	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}

	return cols
}

func (c *ttyConsole) Close() error {
	return c.l.Close()
}

// pipeConsole reads commands through the interpreter's stream console,
// which echoes them into the output.
type pipeConsole struct {
	interp.Console
}

func (c *pipeConsole) Command() (string, error) {

	line, err := c.ReadLine("")

	return string(line), err
}

func (c *pipeConsole) Width() int {
	return 0
}

func (c *pipeConsole) Close() error {
	return nil
}
