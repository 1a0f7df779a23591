package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwbasic/internal/interp"
)

type bufConsole struct {
	interp.Console
}

func (c *bufConsole) Command() (string, error) {

	line, err := c.ReadLine("")

	return string(line), err
}

func (c *bufConsole) Width() int   { return 0 }
func (c *bufConsole) Close() error { return nil }

// start runs a session over the given input and returns the transcript.
func start(t *testing.T, program, input string) string {

	out := &bytes.Buffer{}
	con := &bufConsole{Console: interp.NewStream(strings.NewReader(input), out)}

	ip, err := interp.New(interp.DefaultConfig(), interp.WithConsole(con))
	require.NoError(t, err)
	h := &host{ip: ip}
	h.register()

	require.NoError(t, session(ip, h, con, program))

	return out.String()
}

func TestSession(t *testing.T) {

	out := start(t, "", "10 PRINT 6*7\nRUN\nA$=1\nGOTO 99\nSYSTEM\nPRINT \"never\"\n")

	assert.Equal(t, strings.Join([]string{
		"Ok",
		"10 PRINT 6*7",
		"RUN",
		" 42 ",
		"Ok",
		"A$=1",
		"Type mismatch",
		"Ok",
		"GOTO 99",
		"Undefined line number",
		"Ok",
		"SYSTEM",
		"",
	}, "\n"), out)
}

func TestProgramFiles(t *testing.T) {

	dir := t.TempDir()
	text := filepath.Join(dir, "hello")
	image := filepath.Join(dir, "image.bin")

	out := start(t, "", strings.Join([]string{
		`10 PRINT "hello"`,
		`SAVE "` + text + `",A`,
		`SAVE "` + image + `"`,
		`NEW`,
		`LOAD "` + image + `",R`,
		`KILL "` + image + `"`,
		`LOAD "` + image + `"`,
		`SYSTEM`,
	}, "\n")+"\n")
	assert.Contains(t, out, "hello\n")
	assert.Contains(t, out, "File not found")

	b, err := os.ReadFile(text + basFileSuffix)
	require.NoError(t, err)
	assert.Equal(t, "10 PRINT \"hello\"\r\n", string(b))

	assert.Equal(t, "hello\nOk\n", start(t, text, ""))
}

func TestValidateProgramFilename(t *testing.T) {

	tests := []struct {
		in, out string
		ok      bool
	}{
		{"prog", "prog.BAS", true},
		{"prog.bas", "prog.bas", true},
		{"dir/prog.txt", "dir/prog.txt", true},
		{"  ", "", false},
	}

	for _, tt := range tests {
		out, ok := validateProgramFilename(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.out, out, tt.in)
	}
}

func TestFormatCPUTime(t *testing.T) {

	assert.Equal(t, "00:00:07", formatCPUTime(7))
	assert.Equal(t, "01:01:01", formatCPUTime(3661))
}
