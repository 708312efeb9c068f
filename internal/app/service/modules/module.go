// Package modules defines how operator and keyword modules install grammar
// rules, OpenMath handlers and symbols, and ships the built-in catalog.
package modules

import (
	"fmt"
	"html"
	"strconv"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"

	"github.com/formulaeditor/formulaeditor/internal/app/service/grammar"
)

// T traces to the core tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// Root is the entry rule of every expression grammar.
const Root = "expression"

// RuleVariable parses identifiers and keywords.
const RuleVariable = "variable"

// Precedence ladder bounds. Level names run expression0 … expression170.
const (
	LevelStep = 10
	MaxLevel  = 170
)

// Levels lists the ladder from loosest to tightest.
var Levels = func() []int {
	levels := make([]int, 0, MaxLevel/LevelStep+1)
	for k := 0; k <= MaxLevel; k += LevelStep {
		levels = append(levels, k)
	}
	return levels
}()

// Level names the rule parsing everything binding at precedence k or
// tighter.
func Level(k int) string {
	return Root + strconv.Itoa(k)
}

// Infix names the tail rule of level k: infix, postfix and application
// continuations that follow an operand of level k+10.
func Infix(k int) string {
	return Level(k) + ".infix"
}

func validLevel(k int) error {
	if k < 0 || k > MaxLevel || k%LevelStep != 0 {
		return fmt.Errorf("precedence %d is not on the ladder 0..%d step %d", k, MaxLevel, LevelStep)
	}
	return nil
}

// Module is one unit of registrations. Modules are registered in load
// order; later modules take priority at the same precedence level.
type Module interface {
	Name() string
	Register(r *Registrar) error
}

type funcModule struct {
	name     string
	register func(*Registrar) error
}

func (m funcModule) Name() string                { return m.name }
func (m funcModule) Register(r *Registrar) error { return m.register(r) }

// New wraps a registration function as a Module.
func New(name string, register func(*Registrar) error) Module {
	return funcModule{name: name, register: register}
}

// ref is shorthand for a reference to a ladder level.
func ref(k int) grammar.Rule {
	return grammar.Ref(Level(k))
}

func htmlEscape(s string) string {
	return html.EscapeString(s)
}
