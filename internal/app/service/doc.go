// Package service wires modules, themes, profiles, configuration and plugins
// into an Engine that parses and renders formulas.
package service

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the core tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}
