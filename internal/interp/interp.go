// Package interp is the statement interpreter: it runs tokenised BASIC
// in direct mode and from the stored program, keeps the loop, GOSUB
// and error trap state and dispatches event traps between statements.
package interp

import (
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"gwbasic/internal/berrors"
	"gwbasic/internal/eval"
	"gwbasic/internal/program"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
	"gwbasic/internal/vars"
)

// Handler executes a statement. The cursor is just past the keyword.
type Handler func(ip *Interpreter) error

// Option configures an Interpreter.
type Option func(ip *Interpreter)

func WithConsole(c Console) Option {
	return func(ip *Interpreter) { ip.con = c }
}

func WithDevices(d Devices) Option {
	return func(ip *Interpreter) { ip.dev = d }
}

// WithClock replaces the wall clock behind TIMER.
func WithClock(clock func() time.Time) Option {
	return func(ip *Interpreter) { ip.clock = clock }
}

// Interpreter owns all machine state: program, variables, string space,
// control stacks, traps and the random number generator.
type Interpreter struct {
	cfg   Config
	prog  *program.Program
	vars  *vars.Store
	heap  *values.Heap
	eval  *eval.Evaluator
	con   Console
	out   *printer
	files map[int]*printer
	dev   Devices
	clock func() time.Time

	cur     *tokens.Cursor
	running bool
	direct  []byte
	line    int
	stmt    int // offset of the statement being executed
	halted  bool
	trace   bool

	gosubs []gosubFrame
	fors   []forFrame
	whiles []whileFrame
	trap   trapState
	data   dataPointer
	events events
	cont   *position
	rnd    rnd

	handlers map[tokens.Token]Handler
	brk      atomic.Bool

	// Statements counts the statements executed.
	Statements int64
}

func New(cfg Config, opts ...Option) (*Interpreter, error) {

	cfg = cfg.withDefaults()
	math, err := cfg.math()
	if err != nil {
		return nil, err
	}

	ip := &Interpreter{
		cfg:      cfg,
		prog:     program.New(),
		vars:     vars.New(),
		heap:     values.NewHeap(cfg.StringSpace),
		con:      NewStream(os.Stdin, os.Stdout),
		dev:      FileTable{},
		clock:    time.Now,
		cur:      tokens.NewCursor(nil, 0),
		line:     -1,
		trace:    cfg.Trace,
		files:    make(map[int]*printer),
		handlers: make(map[tokens.Token]Handler),
	}
	for _, o := range opts {
		o(ip)
	}

	ip.out = &printer{w: ip.con, width: cfg.Width}
	ip.eval = eval.New(ip.vars, &values.Calc{Heap: ip.heap, Math: math})
	ip.eval.OnSoft = ip.soft
	ip.registerFunctions()
	ip.events.init(ip.clock())
	ip.reset()

	if cfg.Dump {
		ip.vars.Trace = ip.dumpAssign
	}

	return ip, nil
}

// Register installs a handler for a statement keyword. Built in
// statements that have a host form (PLAY, KEY...) fall back to it.
func (ip *Interpreter) Register(t tokens.Token, h Handler) {
	ip.handlers[t] = h
}

// RegisterFunction installs a function callable from expressions.
func (ip *Interpreter) RegisterFunction(t tokens.Token, f eval.Function) {
	ip.eval.Register(t, f)
}

// Break asks the running program to stop at the next statement. It may
// be called from any goroutine.
func (ip *Interpreter) Break() {
	ip.brk.Store(true)
}

// Program returns the stored program.
func (ip *Interpreter) Program() *program.Program {
	return ip.prog
}

// Execute runs one line of input. A line starting with a number edits
// the program; anything else runs in direct mode.
func (ip *Interpreter) Execute(text string) error {

	num, rest, numbered, err := tokens.SplitLineNumber(text)
	if err != nil {
		return err
	}
	toks, err := ip.tokenise(rest)
	if err != nil {
		return err
	}

	if numbered {
		return ip.edit(num, toks)
	}

	ip.brk.Store(false)
	ip.direct = append(toks, tokens.EOL)
	ip.resume(position{line: -1, direct: ip.direct})

	return ip.loop()
}

// tokenise crunches a line of input. An out of range literal is
// reported here, once, and the line goes on with the largest value.
func (ip *Interpreter) tokenise(text string) ([]byte, error) {

	toks, err := tokens.Tokenise(text)
	if err != nil {
		if !berrors.IsRecoverable(err) {
			return nil, err
		}
		if err := ip.notice(err); err != nil {
			return nil, err
		}
	}

	return toks, nil
}

func (ip *Interpreter) edit(num int, toks []byte) error {

	blank := true
	for _, b := range toks {
		if b != ' ' {
			blank = false
			break
		}
	}

	if blank {
		if err := ip.prog.Delete(num); err != nil {
			return err
		}
	} else if err := ip.prog.Store(num, toks); err != nil {
		return err
	}
	ip.reset()

	return nil
}

// Run runs the stored program from the start, as RUN does.
func (ip *Interpreter) Run() error {

	ip.brk.Store(false)
	if err := ip.runFrom(-1); err != nil {
		return err
	}

	return ip.loop()
}

// Jump moves execution to the start of a line, or of the program when
// line is negative. From a statement handler it starts a run even if
// the handler has just replaced the program.
func (ip *Interpreter) Jump(line int) error {

	ip.halted = false
	ip.running = true
	if line < 0 {
		ip.resume(position{off: ip.prog.First(), line: -1, running: true})
		return nil
	}

	return ip.jump(line)
}

// Evaluate evaluates an expression in direct mode.
func (ip *Interpreter) Evaluate(text string) (values.Value, error) {

	toks, err := ip.tokenise(text)
	if err != nil {
		return values.Value{}, err
	}

	saved := ip.cur
	defer func() { ip.cur = saved }()
	ip.cur = tokens.NewCursor(append(toks, tokens.EOL), 0)

	ip.eval.ResetFlags()
	v, err := ip.eval.Expression(ip.cur)
	if err != nil {
		return v, err
	}

	return v, ip.cur.RequireEnd()
}

// Bytes returns the body of a String value produced by Evaluate or a
// handler's StringExpression. Handles are only good until the next
// statement starts.
func (ip *Interpreter) Bytes(v values.Value) []byte {
	return ip.eval.Bytes(v)
}

//
// Helpers for registered statement handlers
//

func (ip *Interpreter) Cursor() *tokens.Cursor {
	return ip.cur
}

func (ip *Interpreter) Console() Console {
	return ip.con
}

func (ip *Interpreter) Expression() (values.Value, error) {
	return ip.eval.Expression(ip.cur)
}

func (ip *Interpreter) IntExpression() (int, error) {
	return ip.eval.Int(ip.cur)
}

func (ip *Interpreter) StringExpression() ([]byte, error) {
	return ip.eval.String(ip.cur)
}

func (ip *Interpreter) RequireEnd() error {
	return ip.cur.RequireEnd()
}

//
// The run loop
//

func (ip *Interpreter) loop() error {

	ip.halted = false
	for !ip.halted {
		if err := ip.step(); err != nil {
			if err = ip.fail(err); err != nil {
				return err
			}
		}
	}

	return nil
}

func (ip *Interpreter) step() error {

	if ip.brk.Swap(false) {
		return ip.interrupt(ip.here())
	}
	ip.housekeep()

	if ip.running && !ip.trap.handling {
		if ok, err := ip.dispatch(); ok || err != nil {
			return err
		}
	}

	if !ip.advance() {
		if ip.running && ip.trap.handling {
			return berrors.New(berrors.NoResume)
		}
		ip.halt()
		return nil
	}

	ip.stmt = ip.cur.Pos()
	ip.Statements++

	return ip.execute()
}

// advance moves to the start of the next statement, reading the header
// of each line it enters. It reports false when nothing is left to run.
func (ip *Interpreter) advance() bool {

	for {
		switch ip.cur.SkipBlank() {
		default:
			return true

		case ':':
			ip.cur.ReadByte()

		case tokens.EOL:
			if !ip.running {
				return false
			}
			num, body, ok := ip.prog.Header(ip.cur.Pos())
			if !ok {
				return false
			}
			ip.line = num
			ip.cur.Seek(body)
			if ip.trace {
				ip.out.text("[" + strconv.Itoa(num) + "]")
			}
		}
	}
}

func (ip *Interpreter) execute() error {

	c := ip.cur
	if c.IsNameStart() {
		return ip.assign()
	}

	t := c.ReadToken()
	if h, ok := statements[t]; ok {
		return h(ip)
	}

	return ip.delegate(t)
}

// delegate runs a statement through a registered handler.
func (ip *Interpreter) delegate(t tokens.Token) error {

	if h, ok := ip.handlers[t]; ok {
		return h(ip)
	}
	if t >= tokens.End {
		return berrors.New(berrors.AdvancedFeature)
	}

	return berrors.New(berrors.SyntaxError)
}

// halt returns to direct mode.
func (ip *Interpreter) halt() {

	ip.halted = true
	ip.running = false
	ip.direct = nil
	ip.cur.Reset(nil, 0)
}

// housekeep runs between statements: a new overflow episode starts
// and the string space is compacted when it runs low.
func (ip *Interpreter) housekeep() {

	ip.eval.ResetFlags()
	if ip.heap.Free() < ip.heap.Size()/4 {
		ip.heap.Compact(ip.vars.Refs())
	}
}

// interrupt stops at p, where CONT will pick up.
func (ip *Interpreter) interrupt(p position) error {

	err := berrors.New(berrors.Break)
	if ip.running {
		err.Line = ip.line
	}
	ip.halt()
	ip.cont = &p

	return err
}

func (ip *Interpreter) runFrom(line int) error {

	ip.reset()
	ip.running = true
	if line < 0 {
		ip.resume(position{off: ip.prog.First(), line: -1, running: true})
		return nil
	}

	return ip.jump(line)
}

func (ip *Interpreter) jump(line int) error {

	off, ok := ip.prog.Offset(line)
	if !ok {
		return berrors.New(berrors.UndefinedLineNumber)
	}
	ip.resume(position{off: off, line: line, running: true})

	return nil
}

// jumpSub is GOSUB: the return point is the cursor.
func (ip *Interpreter) jumpSub(line int, ev *trigger) error {

	if _, ok := ip.prog.Offset(line); !ok {
		return berrors.New(berrors.UndefinedLineNumber)
	}
	if len(ip.gosubs) >= ip.cfg.MaxGosub {
		return berrors.New(berrors.OutOfMemory)
	}

	f := gosubFrame{ret: ip.here(), event: ev}
	ip.gosubs = append(ip.gosubs, f)
	ip.dump("GOSUB", f)

	return ip.jump(line)
}

// ret is RETURN: back to the last GOSUB, or on to line if it is not
// negative.
func (ip *Interpreter) ret(line int) error {

	if len(ip.gosubs) == 0 {
		return berrors.New(berrors.ReturnWithoutGosub)
	}
	f := ip.gosubs[len(ip.gosubs)-1]
	ip.gosubs = ip.gosubs[:len(ip.gosubs)-1]

	if f.event != nil {
		f.event.stopped = false
	}
	if line >= 0 {
		return ip.jump(line)
	}
	ip.resume(f.ret)

	return nil
}

// wrapIO marks a failure that is not a BASIC error.
func wrapIO(err error, what string) error {

	if err == nil || berrors.CodeOf(err) != berrors.None || errors.Cause(err) == ErrInterrupted {
		return err
	}

	return errors.Wrap(err, what)
}
