package openmath

import (
	"fmt"
	"io"
	"sort"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// T traces to the core tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// Handler converts an OMA element whose head is the handler's symbol.
// Operands are converted through conv.
type Handler func(el *Element, conv Converter) (entity.Node, error)

// Converter converts elements recursively.
type Converter interface {
	Convert(el *Element) (entity.Node, error)
}

// Builder collects handlers and keywords before freezing them into a
// Dispatcher. It is not safe for concurrent use.
type Builder struct {
	handlers map[string]Handler
	keywords map[string]*entity.Keyword
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		handlers: make(map[string]Handler),
		keywords: make(map[string]*entity.Keyword),
	}
}

// Handle registers h for cd__name, replacing any earlier handler.
func (b *Builder) Handle(cd, name string, h Handler) {
	key := value.SymbolKey(cd, name)
	if _, exists := b.handlers[key]; exists {
		T().Infof("openmath: handler for %s replaced", key)
	}
	b.handlers[key] = h
}

// Keyword registers a keyword under its key, replacing any earlier one.
func (b *Builder) Keyword(k *entity.Keyword) {
	if _, exists := b.keywords[k.Key()]; exists {
		T().Infof("openmath: keyword %s replaced", k.Key())
	}
	b.keywords[k.Key()] = k
}

// Build freezes the registrations.
func (b *Builder) Build() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler, len(b.handlers)),
		keywords: make(map[string]*entity.Keyword, len(b.keywords)),
	}
	for k, h := range b.handlers {
		d.handlers[k] = h
	}
	for k, kw := range b.keywords {
		d.keywords[k] = kw
	}
	T().Debugf("openmath: dispatcher with %d handlers, %d keywords", len(d.handlers), len(d.keywords))
	return d
}

// Dispatcher converts OpenMath element trees to semantic nodes. It is
// immutable and safe for concurrent use.
type Dispatcher struct {
	handlers map[string]Handler
	keywords map[string]*entity.Keyword
}

// Handlers returns the registered handler keys, sorted.
func (d *Dispatcher) Handlers() []string {
	keys := make([]string, 0, len(d.handlers))
	for k := range d.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keyword looks up a keyword by content dictionary and name.
func (d *Dispatcher) Keyword(cd, name string) functional.Option[*entity.Keyword] {
	return functional.FromLookup(d.keywords, value.SymbolKey(cd, name))
}

// Read decodes and converts an OpenMath document.
func (d *Dispatcher) Read(r io.Reader) functional.Result[entity.Node] {
	el, err := Decode(r)
	if err != nil {
		return functional.Err[entity.Node](err)
	}
	node, err := d.Convert(el)
	if err != nil {
		return functional.Err[entity.Node](err)
	}
	return functional.Ok(node)
}

// Convert converts one element.
func (d *Dispatcher) Convert(el *Element) (entity.Node, error) {
	switch el.Name {
	case "OMOBJ":
		if len(el.Children) != 1 {
			return nil, &entity.UnsupportedElement{Element: el.Name, Reason: fmt.Sprintf("expected one child, found %d", len(el.Children))}
		}
		return d.Convert(el.Children[0])

	case "OMI":
		n, err := entity.ParseInteger(el.Text)
		if err != nil {
			return nil, &entity.UnsupportedElement{Element: el.Name, Reason: err.Error()}
		}
		return n, nil

	case "OMF":
		dec := el.Attr("dec")
		if dec == "" {
			return nil, &entity.UnsupportedElement{Element: el.Name, Reason: "only the dec attribute is supported"}
		}
		f, err := entity.ParseDecimal(dec)
		if err != nil {
			return nil, &entity.UnsupportedElement{Element: el.Name, Reason: err.Error()}
		}
		return f, nil

	case "OMV":
		v, err := entity.NewVariable(el.Attr("name"))
		if err != nil {
			return nil, &entity.UnsupportedElement{Element: el.Name, Reason: err.Error()}
		}
		return v, nil

	case "OMS":
		cd, name := el.Attr("cd"), el.Attr("name")
		if kw, ok := d.keywords[value.SymbolKey(cd, name)]; ok {
			return kw, nil
		}
		return nil, &entity.UnknownSymbol{CD: cd, Name: name}

	case "OMA":
		return d.convertApplication(el)
	}
	return nil, &entity.UnsupportedElement{Element: el.Name}
}

func (d *Dispatcher) convertApplication(el *Element) (entity.Node, error) {
	if len(el.Children) == 0 {
		return nil, &entity.UnsupportedElement{Element: el.Name, Reason: "application without head"}
	}
	head := el.Children[0]

	if head.Name == "OMS" {
		cd, name := head.Attr("cd"), head.Attr("name")
		key := value.SymbolKey(cd, name)
		if h, ok := d.handlers[key]; ok {
			node, err := h(el, d)
			if err != nil {
				return nil, fmt.Errorf("convert %s.%s: %w", cd, name, err)
			}
			return node, nil
		}
		if _, ok := d.keywords[key]; !ok {
			return nil, &entity.UnknownSymbol{CD: cd, Name: name}
		}
	}

	fn, err := d.Convert(head)
	if err != nil {
		return nil, err
	}
	args, err := Operands(el, d)
	if err != nil {
		return nil, err
	}
	app, err := entity.NewApplication(fn, args, el.Attr("style"))
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Operands converts the children of an OMA after its head.
func Operands(el *Element, conv Converter) ([]entity.Node, error) {
	if len(el.Children) == 0 {
		return nil, nil
	}
	operands := make([]entity.Node, 0, len(el.Children)-1)
	for _, child := range el.Children[1:] {
		node, err := conv.Convert(child)
		if err != nil {
			return nil, err
		}
		operands = append(operands, node)
	}
	return operands, nil
}

// OperationHandler builds an operation of op from the operands. A wrong
// operand count fails with *entity.MalformedOperandCount.
func OperationHandler(op *entity.Operator) Handler {
	return func(el *Element, conv Converter) (entity.Node, error) {
		operands, err := Operands(el, conv)
		if err != nil {
			return nil, err
		}
		node, err := entity.NewOperation(op, operands...)
		if err != nil {
			return nil, err
		}
		return node, nil
	}
}
