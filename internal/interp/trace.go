package interp

import (
	"github.com/goforj/godump"

	"gwbasic/internal/values"
)

// dump shows interpreter state on stdout when the dump setting is on.
func (ip *Interpreter) dump(label string, v any) {

	if !ip.cfg.Dump {
		return
	}

	godump.Dump(label, v)
}

type assignment struct {
	Name string
	Idx  []int
	Old  string
	New  string
}

// dumpAssign is the variable store's trace hook.
func (ip *Interpreter) dumpAssign(name string, idx []int, old, val values.Value) {

	ip.dump("LET", assignment{Name: name, Idx: idx, Old: ip.show(old), New: ip.show(val)})
}

func (ip *Interpreter) show(v values.Value) string {

	if v.IsString() {
		return `"` + string(ip.eval.Bytes(v)) + `"`
	}

	return values.Number(v)
}
