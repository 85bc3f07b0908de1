// Package invariant provides a single panic-on-violation assertion used to
// guard internal consistency checks in the grammar engine — scanner
// position monotonicity, capture-stack push/pop balance, and "a successful
// parse consumes the whole source". These catch programming errors in the
// scanner/parser themselves, never malformed user input (malformed input is
// reported through parser.SyntaxError instead).
package invariant

import (
	"fmt"
	"runtime"
)

// Invariant panics with a message naming the violated condition and the
// file:line of the call site if condition is false.
func Invariant(condition bool, format string, args ...interface{}) {
	if condition {
		return
	}
	msg := "INVARIANT VIOLATION: " + fmt.Sprintf(format, args...)
	if at, ok := callSite(); ok {
		msg += "\n  at " + at
	}
	panic(msg)
}

// callSite reports the file:line of Invariant's caller.
func callSite() (string, bool) {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return "", false
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fmt.Sprintf("%s:%d (%s)", file, line, fn.Name()), true
	}
	return fmt.Sprintf("%s:%d", file, line), true
}
