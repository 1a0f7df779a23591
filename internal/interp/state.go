package interp

import (
	"gwbasic/internal/berrors"
	"gwbasic/internal/values"
)

// position is a place execution can return to: an offset in the
// program image when running, otherwise an offset in a direct mode
// line.
type position struct {
	off     int
	line    int // -1 in direct mode
	running bool
	direct  []byte
}

type gosubFrame struct {
	ret   position
	event *trigger // set when entered by an event trap
}

type forFrame struct {
	name  string // canonical
	limit values.Value
	step  values.Value
	sign  int
	body  position
}

type whileFrame struct {
	cond position // start of the WHILE statement
}

//
// Error trap state. onError is the handler line, 0 when disarmed.
// code and line stay readable through ERR and ERL after RESUME
//

type trapState struct {
	onError  int
	handling bool
	resume   position
	code     berrors.Code
	line     int
}

// dataPointer is where READ takes its next item.
type dataPointer struct {
	off    int  // image offset to scan from
	inside bool // off is inside a DATA statement's item list
}

// clearStacks forgets every control frame. Offsets into the program go
// stale when it is edited, so this runs on every edit as well as on
// RUN, CLEAR and NEW.
func (ip *Interpreter) clearStacks() {

	ip.gosubs = ip.gosubs[:0]
	ip.fors = ip.fors[:0]
	ip.whiles = ip.whiles[:0]
}

// reset returns the machine to its state before a RUN: no variables,
// functions, frames, traps or DATA position.
func (ip *Interpreter) reset() {

	ip.clearStacks()
	ip.vars.Clear()
	ip.eval.ClearFunctions()
	ip.heap.Reset()
	ip.trap = trapState{line: -1}
	ip.data = dataPointer{}
	ip.events.reset()
	ip.cont = nil
	ip.rnd.reset()
}

// here is the position of the cursor.
func (ip *Interpreter) here() position {
	return ip.at(ip.cur.Pos())
}

func (ip *Interpreter) at(off int) position {

	p := position{off: off, line: ip.line, running: ip.running}
	if !ip.running {
		p.direct = ip.direct
		p.line = -1
	}

	return p
}

// resume moves execution to p.
func (ip *Interpreter) resume(p position) {

	ip.running = p.running
	ip.line = p.line
	if p.running {
		ip.cur.Reset(ip.prog.Image(), p.off)
	} else {
		ip.direct = p.direct
		ip.cur.Reset(p.direct, p.off)
	}
}
