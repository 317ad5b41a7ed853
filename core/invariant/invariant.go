// Package invariant provides contract assertions for internal
// consistency checks. Violations are programming errors, not user
// errors: every function panics with the call site attached.
package invariant

import (
	"fmt"
	"runtime"
)

// Precondition checks an input contract at function entry.
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Invariant checks internal consistency during execution.
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// fail panics with a formatted message including the violation site.
func fail(kind, format string, args ...any) {
	msg := fmt.Sprintf(kind+" VIOLATION: "+format, args...)
	if _, file, line, ok := runtime.Caller(2); ok {
		msg += fmt.Sprintf("\n  at %s:%d", file, line)
	}
	panic(msg)
}
