/*
Package grammar is a small parser-combinator library plus a registry of named
rules that modules extend at load time.

A Rule is a function from a Cursor to a Match. Cursors are values: a rule that
fails simply returns a *Mismatch and the caller keeps using its own cursor, so
rewinding never needs bookkeeping. Mismatches are recoverable and drive
Alternation; every other error is fatal and travels up to Parse unchanged.

Rules refer to each other by name through Ref, which resolves against the
Grammar carried by the cursor. A Builder collects definitions and extensions
(a new definition wrapping its parent) and freezes them into an immutable
Grammar that is safe for concurrent parsing.
*/
package grammar

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the core tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}
