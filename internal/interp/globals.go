package interp

import (
	"fmt"

	"github.com/jvcmarcenes/wisp/internal/globalnames"
)

// installGlobals binds the native runtime surface into the root
// environment layer, one value per pre-assigned global id. The name
// ordering is shared with the resolver through globalnames so that the
// ids written into the AST land on the right values here.
func (i *Interpreter) installGlobals() {
	i.stringAttr = i.stringAttribute()
	i.listAttr = i.listAttribute()
	i.errorAttr = i.errorAttribute()

	values := map[string]Value{
		// io
		"write":     i.nativeWrite(),
		"writeline": i.nativeWriteline(),
		"debug":     i.nativeDebug(),
		"read":      i.nativeRead(),

		// system / process
		"exit":  i.nativeExit(),
		"abort": i.nativeAbort(),

		// thread
		"sleep": i.nativeSleep(),

		// other
		"clock":  i.nativeClock(),
		"range":  i.nativeRange(),
		"typeof": i.nativeTypeof(),
		"random": i.nativeRandom(),
		"rand":   i.nativeRand(),
		"char":   i.charObject(),
		"paint":  i.paintObject(),

		// std lib
		"math": i.mathObject(),
		"fs":   i.fsObject(),

		// attributes
		"String": i.stringAttr,
		"List":   i.listAttr,
		"Error":  i.errorAttr,
	}

	for _, name := range globalnames.Names {
		v, ok := values[name]
		if !ok {
			panic(fmt.Sprintf("global %q has no native value", name))
		}
		id, _ := globalnames.Id(name)
		i.env.Define(id, v)
	}
}
