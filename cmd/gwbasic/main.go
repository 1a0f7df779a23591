// Command gwbasic is an interactive GW-BASIC interpreter.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"gwbasic/internal/berrors"
	"gwbasic/internal/interp"
	"gwbasic/internal/tokens"
)

var (
	configFile string
	showStats  bool
	traceOn    bool
)

func main() {

	flag.StringVar(&configFile, "config", "", "read settings from the YAML `file`")
	flag.BoolVar(&showStats, "stats", false, "print CPU usage and statement count on exit")
	flag.BoolVar(&traceOn, "trace", false, "start with TRON in effect")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 1 {
		usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(program string) error {

	cfg := interp.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = interp.LoadConfig(configFile); err != nil {
			return err
		}
	}
	if traceOn {
		cfg.Trace = true
	}

	//
	// The console owns the terminal mode, so it must be closed on every
	// path out of here to leave the terminal cooked
	//

	con := newConsole()
	defer con.Close()

	if cols := con.Width(); configFile == "" && cols > 0 {
		cfg.Width = min(cols, 255)
	}

	ip, err := interp.New(cfg, interp.WithConsole(con))
	if err != nil {
		return err
	}
	h := &host{ip: ip}
	h.register()

	start := time.Now()
	cpu := readCPU()

	go sigHdlr(ip)

	err = session(ip, h, con, program)

	if showStats {
		printStatistics(os.Stderr, ip, start, cpu)
	}

	return err
}

// session runs the program file, if any, then reads commands until
// SYSTEM or end of input.
func session(ip *interp.Interpreter, h *host, con console, program string) error {

	if program != "" {
		if err := h.load(program); err != nil {
			return err
		}
		if report(con, ip.Run()) {
			return nil
		}
	}

	ok := true
	for {
		if ok {
			fmt.Fprintln(con, "Ok")
		}

		line, err := con.Command()
		switch {
		case err == io.EOF:
			return nil
		case errors.Cause(err) == interp.ErrInterrupted:
			fmt.Fprintln(con)
			ok = false
			continue
		case err != nil:
			return errors.Wrap(err, "console")
		}

		_, _, numbered, _ := tokens.SplitLineNumber(line)
		err = ip.Execute(line)
		if report(con, err) {
			return nil
		}
		ok = !numbered || err != nil
	}
}

// report prints what stopped a command. It returns true when the
// command was SYSTEM.
func report(w io.Writer, err error) bool {

	switch {
	case err == nil:
		return false
	case errors.Cause(err) == errSystem:
		return true
	case berrors.CodeOf(err) != berrors.None:
		fmt.Fprintln(w, err)
	default:
		fmt.Fprintf(w, "?%v\n", err)
	}

	return false
}

func writeGoroutineStacks() {

	name := "goroutines-stacks"
	mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC

	dumpFile, err := os.OpenFile(name, mode, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open %s (%v)\n", name, err)
		return
	}
	defer dumpFile.Close()

	_ = pprof.Lookup("goroutine").WriteTo(dumpFile, 2)

	fmt.Fprintf(os.Stderr, "Dumped goroutine stacks to %v\n", name)
}

// sigHdlr turns ^C into a BASIC break. SIGQUIT dumps the goroutine
// stacks for debugging a hung interpreter.
func sigHdlr(ip *interp.Interpreter) {

	ch := make(chan os.Signal, 1)

	signal.Ignore(syscall.SIGTSTP)

	signal.Notify(ch, syscall.SIGQUIT)
	signal.Notify(ch, syscall.SIGINT)

	for sig := range ch {
		switch sig {
		default:
			fmt.Fprintf(os.Stderr, "Unexpected signal %v\n", sig)

		case syscall.SIGQUIT:
			writeGoroutineStacks()

		case syscall.SIGINT:
			ip.Break()
		}
	}
}
