package interp

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"gwbasic/internal/berrors"
	"gwbasic/internal/program"
	"gwbasic/internal/tokens"
)

//
// Program files. A text file holds one numbered line per record, as LIST
// prints them. A binary file is a 0xFF byte followed by the program
// image without its leading NUL
//

const imageMark = 0xFF

// Load replaces the program with one read from r, text or binary, and
// clears the machine as NEW does. The old program is kept if r does
// not hold a whole program.
func (ip *Interpreter) Load(r io.Reader) error {

	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "load")
	}

	img := append([]byte{tokens.EOL}, bytes.TrimPrefix(data, []byte{imageMark})...)
	if len(data) == 0 || data[0] != imageMark {
		if img, err = textImage(data); err != nil {
			return err
		}
	}

	if err := ip.prog.Load(img); err != nil {
		return errors.Wrap(err, "load")
	}
	ip.reset()
	ip.halt()

	return nil
}

// textImage tokenises program text into an image.
func textImage(data []byte) ([]byte, error) {

	prog := program.New()
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimRight(sc.Text(), "\r\x1a")
		if strings.TrimSpace(text) == "" {
			continue
		}

		num, rest, numbered, err := tokens.SplitLineNumber(text)
		if err == nil && !numbered {
			err = berrors.New(berrors.DirectStatementInFile)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "load: line %d", n)
		}
		toks, err := tokens.Tokenise(rest)
		if err != nil && !berrors.IsRecoverable(err) {
			return nil, errors.Wrapf(err, "load: line %d", n)
		}
		if err := prog.Store(num, toks); err != nil {
			return nil, errors.Wrapf(err, "load: line %d", n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "load")
	}

	return prog.Bytes(), nil
}

// Save writes the program to w as text, or as a binary image.
func (ip *Interpreter) Save(w io.Writer, binary bool) error {

	if binary {
		img := ip.prog.Bytes()
		img[0] = imageMark
		_, err := w.Write(img)
		return errors.Wrap(err, "save")
	}

	bw := bufio.NewWriter(w)
	ip.prog.Lines(0, tokens.MaxLineNumber, func(num int, toks []byte) bool {
		bw.WriteString(program.Text(num, toks))
		bw.WriteString("\r\n")
		return true
	})

	return errors.Wrap(bw.Flush(), "save")
}
