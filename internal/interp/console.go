package interp

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"gwbasic/internal/berrors"
)

// ErrInterrupted is returned by a console read cut short by a break.
// The interrupted statement runs again on CONT.
var ErrInterrupted = errors.New("interrupted")

// Console is the screen and keyboard.
type Console interface {
	io.Writer

	// ReadLine shows prompt and returns one line of input without its
	// line ending.
	ReadLine(prompt string) ([]byte, error)
}

// KeyReader is implemented by consoles that can poll the keyboard for
// INKEY$.
type KeyReader interface {
	Inkey() (byte, bool)
}

// File is an open device or file for PRINT #, INPUT # and EOF.
type File interface {
	io.Writer
	ReadLine() ([]byte, error)
	EOF() bool
}

// Devices resolves file numbers.
type Devices interface {
	File(n int) (File, error)
}

// FileTable is a fixed set of open files.
type FileTable map[int]File

func (t FileTable) File(n int) (File, error) {

	f, ok := t[n]
	if !ok {
		return nil, berrors.New(berrors.BadFileNumber)
	}

	return f, nil
}

// stream is a console over a reader and a writer. Input is echoed so
// that the output reads as a transcript.
type stream struct {
	r *bufio.Reader
	w io.Writer
}

// NewStream returns a console reading lines from r and writing to w.
func NewStream(r io.Reader, w io.Writer) Console {
	return &stream{r: bufio.NewReader(r), w: w}
}

func (s *stream) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *stream) ReadLine(prompt string) ([]byte, error) {

	if _, err := io.WriteString(s.w, prompt); err != nil {
		return nil, err
	}

	line, err := s.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")

	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		return nil, err
	}

	return []byte(line), nil
}

//
// printer tracks the output column for PRINT zones, TAB and POS, and
// breaks lines at the width
//

const zoneWidth = 14

type printer struct {
	w     io.Writer
	col   int // 0 based
	width int // 0 for no wrapping
	row   int
}

func (p *printer) raw(s string) error {

	_, err := io.WriteString(p.w, s)

	return err
}

func (p *printer) newline() error {

	p.col = 0
	p.row++

	return p.raw("\n")
}

// text writes s, wrapping at the width.
func (p *printer) text(s string) error {

	for len(s) > 0 {
		n := len(s)
		if p.width > 0 && p.col+n > p.width {
			n = p.width - p.col
		}
		if err := p.raw(s[:n]); err != nil {
			return err
		}
		p.col += n
		s = s[n:]
		if p.width > 0 && p.col >= p.width {
			if err := p.newline(); err != nil {
				return err
			}
		}
	}

	return nil
}

// number writes a formatted number, starting a new line first if it
// would not fit on this one.
func (p *printer) number(s string) error {

	if p.width > 0 && p.col > 0 && p.col+len(s) > p.width {
		if err := p.newline(); err != nil {
			return err
		}
	}

	return p.text(s)
}

// zone moves to the start of the next print zone.
func (p *printer) zone() error {

	next := (p.col/zoneWidth + 1) * zoneWidth
	if p.width > 0 && next > p.width-zoneWidth {
		return p.newline()
	}

	return p.text(strings.Repeat(" ", next-p.col))
}

// tab moves to column n, counted from 1, on this line or the next.
func (p *printer) tab(n int) error {

	if p.width > 0 && n > p.width {
		n = p.width
	}
	if n < 1 {
		n = 1
	}
	if n-1 < p.col {
		if err := p.newline(); err != nil {
			return err
		}
	}

	return p.text(strings.Repeat(" ", n-1-p.col))
}

// setInput records that the console echoed a line end.
func (p *printer) setInput() {

	p.col = 0
	p.row++
}
