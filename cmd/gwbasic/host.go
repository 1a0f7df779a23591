package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"gwbasic/internal/berrors"
	"gwbasic/internal/interp"
	"gwbasic/internal/tokens"
)

const basFileSuffix = ".BAS"

// errSystem ends the session.
var errSystem = errors.New("system")

// host supplies the statements that reach outside the interpreter:
// program files and leaving BASIC.
type host struct {
	ip *interp.Interpreter
}

func (h *host) register() {

	h.ip.Register(tokens.System, h.system)
	h.ip.Register(tokens.Load, h.loadStmt)
	h.ip.Register(tokens.Run, h.runStmt)
	h.ip.Register(tokens.Save, h.saveStmt)
	h.ip.Register(tokens.Kill, h.killStmt)
}

func (h *host) system(ip *interp.Interpreter) error {

	if err := ip.RequireEnd(); err != nil {
		return err
	}

	return errSystem
}

// loadStmt is LOAD "file"[,R].
func (h *host) loadStmt(ip *interp.Interpreter) error {

	name, err := h.fileName()
	if err != nil {
		return err
	}
	andRun, err := h.option("R")
	if err != nil {
		return err
	}

	if err := h.load(name); err != nil {
		return err
	}
	if andRun {
		return ip.Jump(-1)
	}

	return nil
}

// runStmt is RUN "file": LOAD "file",R.
func (h *host) runStmt(ip *interp.Interpreter) error {

	name, err := h.fileName()
	if err != nil {
		return err
	}
	if err := ip.RequireEnd(); err != nil {
		return err
	}
	if err := h.load(name); err != nil {
		return err
	}

	return ip.Jump(-1)
}

// saveStmt is SAVE "file"[,A]. Without A the program is saved as a
// binary image.
func (h *host) saveStmt(ip *interp.Interpreter) error {

	name, err := h.fileName()
	if err != nil {
		return err
	}
	text, err := h.option("A")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := ip.Save(&buf, !text); err != nil {
		return err
	}

	return errors.Wrap(os.WriteFile(name, buf.Bytes(), 0644), "save")
}

func (h *host) killStmt(ip *interp.Interpreter) error {

	name, err := h.rawName()
	if err != nil {
		return err
	}
	if err := ip.RequireEnd(); err != nil {
		return err
	}

	return fileError(os.Remove(name))
}

// load reads a program file into the interpreter.
func (h *host) load(name string) error {

	name, ok := validateProgramFilename(name)
	if !ok {
		return berrors.New(berrors.BadFileName)
	}

	f, err := os.Open(name)
	if err != nil {
		return fileError(err)
	}
	defer f.Close()

	return h.ip.Load(f)
}

func (h *host) rawName() (string, error) {

	b, err := h.ip.StringExpression()
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", berrors.New(berrors.BadFileName)
	}

	return string(b), nil
}

// fileName reads a program file name, adding the .BAS suffix when
// there is none.
func (h *host) fileName() (string, error) {

	name, err := h.rawName()
	if err != nil {
		return "", err
	}
	name, ok := validateProgramFilename(name)
	if !ok {
		return "", berrors.New(berrors.BadFileName)
	}

	return name, nil
}

// option reads an optional ",X" after a file name and the end of the
// statement.
func (h *host) option(want string) (bool, error) {

	c := h.ip.Cursor()
	if !c.Accept(',') {
		return false, h.ip.RequireEnd()
	}
	name, ok := c.ReadName()
	if !ok || !strings.EqualFold(name, want) {
		return false, berrors.New(berrors.SyntaxError)
	}

	return true, h.ip.RequireEnd()
}

func validateProgramFilename(name string) (string, bool) {

	if strings.TrimSpace(name) == "" {
		return "", false
	}
	if filepath.Ext(name) == "" {
		return name + basFileSuffix, true
	}

	return name, true
}

// fileError maps an OS failure to the BASIC error a program can trap.
func fileError(err error) error {

	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return berrors.New(berrors.FileNotFound)
	default:
		return errors.WithStack(err)
	}
}
