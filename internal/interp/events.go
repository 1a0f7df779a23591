package interp

import (
	"time"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
	"gwbasic/internal/tokens"
	"gwbasic/internal/values"
)

// Event names a family of event traps.
type Event int

const (
	EventTimer Event = iota
	EventKey
	EventPlay
	EventCom
	EventPen
	EventStrig
)

func (e Event) String() string {

	switch e {
	default:
		return "?"
	case EventTimer:
		return "TIMER"
	case EventKey:
		return "KEY"
	case EventPlay:
		return "PLAY"
	case EventCom:
		return "COM"
	case EventPen:
		return "PEN"
	case EventStrig:
		return "STRIG"
	}
}

// trigger is one event trap. line is 0 when no handler is set.
type trigger struct {
	enabled   bool
	stopped   bool
	triggered bool
	line      int
}

//
// The triggers in dispatch priority order: TIMER, KEY(1..20), PLAY,
// COM(1..2), PEN, STRIG(0,2,4,6)
//

const (
	numKeys  = 20
	numComs  = 2
	numStrig = 4

	keyBase   = 1
	playBase  = keyBase + numKeys
	comBase   = playBase + 1
	penBase   = comBase + numComs
	strigBase = penBase + 1
	numTraps  = strigBase + numStrig
)

type events struct {
	traps    [numTraps]trigger
	interval time.Duration
	last     time.Time
	play     int // PLAY queue threshold
}

func (ev *events) init(now time.Time) {
	ev.last = now
}

func (ev *events) reset() {

	ev.traps = [numTraps]trigger{}
	ev.interval = 0
	ev.play = 0
}

// slot maps an event and its number to a trap, or nil if n is out of
// range for that event.
func (ev *events) slot(e Event, n int) *trigger {

	switch e {
	case EventTimer:
		return &ev.traps[0]
	case EventKey:
		if n >= 1 && n <= numKeys {
			return &ev.traps[keyBase+n-1]
		}
	case EventPlay:
		return &ev.traps[playBase]
	case EventCom:
		if n >= 1 && n <= numComs {
			return &ev.traps[comBase+n-1]
		}
	case EventPen:
		return &ev.traps[penBase]
	case EventStrig:
		if n >= 0 && n <= 6 && n%2 == 0 {
			return &ev.traps[strigBase+n/2]
		}
	}

	return nil
}

// Trigger raises an event. Events of traps turned OFF are lost; those
// of stopped traps wait until the trap is turned ON again.
func (ip *Interpreter) Trigger(e Event, n int) error {

	t := ip.events.slot(e, n)
	if t == nil {
		return berrors.New(berrors.IllegalFunctionCall)
	}
	if t.enabled {
		t.triggered = true
	}

	return nil
}

// dispatch enters the handler of the most urgent pending event, at most
// one per call. It reports whether it did.
func (ip *Interpreter) dispatch() (bool, error) {

	ev := &ip.events
	if ev.interval > 0 && ev.traps[0].enabled {
		if now := ip.clock(); now.Sub(ev.last) >= ev.interval {
			ev.traps[0].triggered = true
			ev.last = now
		}
	}

	for i := range ev.traps {
		t := &ev.traps[i]
		if !t.enabled || t.stopped || !t.triggered || t.line == 0 {
			continue
		}
		t.triggered = false
		t.stopped = true
		return true, ip.jumpSub(t.line, t)
	}

	return false, nil
}

//
// Event statements. eventNumber reads the bracketed number of KEY(n),
// COM(n), STRIG(n) and of PLAY(n) in ON ... GOSUB
//

func (ip *Interpreter) eventNumber() (int, error) {

	c := ip.cur
	if err := c.Expect('('); err != nil {
		return 0, err
	}
	n, err := ip.eval.Int(c)
	if err != nil {
		return 0, err
	}
	if err := c.Expect(')'); err != nil {
		return 0, err
	}

	return n, nil
}

var eventTokens = map[tokens.Token]Event{
	tokens.Timer: EventTimer,
	tokens.Key:   EventKey,
	tokens.Play:  EventPlay,
	tokens.Com:   EventCom,
	tokens.Pen:   EventPen,
	tokens.Strig: EventStrig,
}

// onEvent is ON event GOSUB line, the cursor past the event keyword.
func (ip *Interpreter) onEvent(e Event) error {

	c := ip.cur
	n := 0
	var err error

	switch e {
	case EventTimer:
		secs, err := ip.timerInterval()
		if err != nil {
			return err
		}
		ip.events.interval = secs
	case EventPlay:
		if n, err = ip.eventNumber(); err != nil {
			return err
		}
		if n < 1 || n > 32 {
			return berrors.New(berrors.IllegalFunctionCall)
		}
		ip.events.play = n
	case EventKey, EventCom, EventStrig:
		if n, err = ip.eventNumber(); err != nil {
			return err
		}
	}

	t := ip.events.slot(e, n)
	if t == nil {
		return berrors.New(berrors.IllegalFunctionCall)
	}
	if err := c.Expect(tokens.Gosub); err != nil {
		return err
	}
	line, ok := c.ReadLineNumber()
	if !ok {
		return berrors.New(berrors.SyntaxError)
	}
	if err := c.RequireEnd(); err != nil {
		return err
	}
	if line != 0 {
		if _, ok := ip.prog.Offset(line); !ok {
			return berrors.New(berrors.UndefinedLineNumber)
		}
	}
	t.line = line

	return nil
}

func (ip *Interpreter) timerInterval() (time.Duration, error) {

	c := ip.cur
	if err := c.Expect('('); err != nil {
		return 0, err
	}
	v, err := ip.eval.Number(c)
	if err != nil {
		return 0, err
	}
	if err := c.Expect(')'); err != nil {
		return 0, err
	}
	f, err := values.ToFloat(v, mbf.Double)
	if err != nil {
		return 0, err
	}

	secs := f.Float64()
	if secs < 1 || secs > 86400 {
		return 0, berrors.New(berrors.IllegalFunctionCall)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

// switchEvent is TIMER, KEY(n), PLAY, COM(n), PEN and STRIG(n) followed
// by ON, OFF or STOP. ok is false if the statement is some other use of
// the keyword.
func (ip *Interpreter) switchEvent(e Event) (ok bool, err error) {

	c := ip.cur
	start := c.Pos()

	n := 0
	switch e {
	case EventKey, EventCom, EventStrig:
		if c.PeekToken() != '(' {
			return false, nil
		}
		if n, err = ip.eventNumber(); err != nil {
			return true, err
		}
	}

	var state tokens.Token
	switch t := c.PeekToken(); t {
	default:
		c.Seek(start)
		return false, nil
	case tokens.On, tokens.Off, tokens.Stop:
		c.ReadToken()
		state = t
	}
	if err := c.RequireEnd(); err != nil {
		return true, err
	}

	t := ip.events.slot(e, n)
	if t == nil {
		return true, berrors.New(berrors.IllegalFunctionCall)
	}

	switch state {
	case tokens.On:
		t.enabled = true
		t.stopped = false
		if e == EventTimer {
			ip.events.last = ip.clock()
		}
	case tokens.Off:
		t.enabled = false
		t.stopped = false
		t.triggered = false
	case tokens.Stop:
		t.enabled = true
		t.stopped = true
	}

	return true, nil
}

// eventStatement builds the handler for an event keyword used as a
// statement. Anything but ON, OFF or STOP goes to the host.
func eventStatement(t tokens.Token) Handler {

	e := eventTokens[t]

	return func(ip *Interpreter) error {
		ok, err := ip.switchEvent(e)
		if ok || err != nil {
			return err
		}
		if e == EventKey && ip.keyDisplay() {
			return nil
		}
		return ip.delegate(t)
	}
}

// keyDisplay accepts KEY ON, KEY OFF and KEY LIST, which only change
// the function key display.
func (ip *Interpreter) keyDisplay() bool {

	if _, ok := ip.handlers[tokens.Key]; ok {
		return false
	}

	c := ip.cur
	start := c.Pos()
	switch c.ReadToken() {
	case tokens.On, tokens.Off, tokens.List:
		if c.EndOfStatement() {
			return true
		}
	}
	c.Seek(start)

	return false
}
