// Package globalnames holds the fixed, ordered list of identifiers the
// interpreter pre-binds into the root scope — the native runtime surface
// every program sees without declaring it. Both the resolver (to assign
// stable ids and forbid redefinition) and the interpreter (to install the
// matching native values at those ids) share this single ordering.
package globalnames

// Names is the ordered set of pre-bound global identifiers. Order is
// significant: each name's 1-based position is its resolved id.
var Names = []string{
	"write", "writeline", "debug", "read",
	"exit", "abort",
	"sleep",
	"clock",
	"range",
	"typeof",
	"random", "rand",
	"char",
	"paint",
	"math", "fs",
	"String", "List", "Error",
}

// Id returns the 1-based id of name, and false if it is not a global.
func Id(name string) (int, bool) {
	for i, n := range Names {
		if n == name {
			return i + 1, true
		}
	}
	return 0, false
}

// Count is the number of pre-bound globals.
func Count() int { return len(Names) }
