package main

import (
	"flag"
	"fmt"
	"os"
)

// commands are the statements the front end adds to the interpreter.
var commands = []struct{ name, help string }{
	{"LOAD \"file\"[,R]", "Load a program, text or binary, and optionally run it"},
	{"RUN \"file\"", "Load a program and run it"},
	{"SAVE \"file\"[,A]", "Save the program as a binary image, or as text with A"},
	{"KILL \"file\"", "Delete a file"},
	{"SYSTEM", "Exit from BASIC"},
}

func usage() {

	w := flag.CommandLine.Output()

	fmt.Fprintf(w, "Usage: %s [options] [program]\n\nOptions:\n", os.Args[0])
	flag.PrintDefaults()

	fmt.Fprintf(w, "\nFile commands (a name without a suffix gets %s):\n", basFileSuffix)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-18s %s\n", c.name, c.help)
	}
}
