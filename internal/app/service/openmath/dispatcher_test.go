package openmath

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

func operator(t *testing.T, cd, name, token string, arity entity.Arity) *entity.Operator {
	t.Helper()
	result := entity.NewOperator(entity.OperatorSpec{
		CD:         cd,
		Name:       name,
		Symbol:     value.MustSymbol([]string{token}, "", nil),
		Precedence: 120,
		Arity:      arity,
	})
	require.True(t, result.IsOk())
	return result.Unwrap()
}

func keyword(t *testing.T, cd, name string, category entity.KeywordCategory) *entity.Keyword {
	t.Helper()
	kw, err := entity.NewKeyword(cd, name, value.MustSymbol([]string{name}, "", nil), category)
	require.NoError(t, err)
	return kw
}

func dispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	b := NewBuilder()
	b.Handle("arith1", "plus", OperationHandler(operator(t, "arith1", "plus", "+", entity.Nary)))
	b.Handle("arith1", "minus", OperationHandler(operator(t, "arith1", "minus", "-", entity.Binary)))
	b.Keyword(keyword(t, "transc1", "sin", entity.CategoryFunction))
	b.Keyword(keyword(t, "nums1", "pi", entity.CategoryConstant))
	return b.Build()
}

func convert(t *testing.T, d *Dispatcher, doc string) (entity.Node, error) {
	t.Helper()
	result := d.Read(strings.NewReader(doc))
	if result.IsErr() {
		return nil, result.Error()
	}
	return result.Unwrap(), nil
}

func TestConvert_Variants(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	d := dispatcher(t)
	tests := []struct {
		doc  string
		want string
	}{
		{`<OMOBJ xmlns="http://www.openmath.org/OpenMath"><OMI>42</OMI></OMOBJ>`, "42"},
		{`<OMI> -7 </OMI>`, "-7"},
		{`<OMF dec="2.5"/>`, "2.5"},
		{`<OMF dec="1e3"/>`, "1000.0"},
		{`<OMV name="x"/>`, "x"},
		{`<OMS cd="nums1" name="pi"/>`, "nums1.pi"},
		{`<OMA><OMS cd="arith1" name="plus"/><OMV name="a"/><OMI>1</OMI><OMV name="b"/></OMA>`, "plus(a, 1, b)"},
		{`<OMA><OMS cd="transc1" name="sin"/><OMV name="x"/></OMA>`, "apply(transc1.sin, x)"},
		{`<OMA style="sub"><OMV name="x"/><OMV name="i"/><OMV name="j"/></OMA>`, "apply_sub(x, i, j)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			node, err := convert(t, d, tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestConvert_UnknownSymbol(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	d := dispatcher(t)
	for _, doc := range []string{
		`<OMA><OMS cd="arith1" name="gcd"/><OMI>1</OMI><OMI>2</OMI></OMA>`,
		`<OMS cd="arith1" name="gcd"/>`,
		`<OMA><OMS cd="arith1" name="plus"/><OMS cd="arith1" name="gcd"/><OMI>2</OMI></OMA>`,
	} {
		_, err := convert(t, d, doc)
		var unknown *entity.UnknownSymbol
		require.True(t, errors.As(err, &unknown), doc)
		assert.Equal(t, "arith1", unknown.CD)
		assert.Equal(t, "gcd", unknown.Name)
	}
}

func TestConvert_MalformedOperandCount(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	d := dispatcher(t)
	_, err := convert(t, d, `<OMA><OMS cd="arith1" name="minus"/><OMI>1</OMI></OMA>`)
	var malformed *entity.MalformedOperandCount
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 1, malformed.Got)

	_, err = convert(t, d, `<OMA><OMS cd="transc1" name="sin"/></OMA>`)
	require.True(t, errors.As(err, &malformed), "an application needs arguments")
}

func TestConvert_Unsupported(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	d := dispatcher(t)
	for _, doc := range []string{
		`<OMBIND/>`,
		`<OMA/>`,
		`<OMI>abc</OMI>`,
		`<OMF hex="ABCD"/>`,
		`<OMOBJ><OMI>1</OMI><OMI>2</OMI></OMOBJ>`,
	} {
		_, err := convert(t, d, doc)
		var unsupported *entity.UnsupportedElement
		assert.True(t, errors.As(err, &unsupported), doc)
	}

	_, err := convert(t, d, `<OMI>1`)
	assert.Error(t, err)
	_, err = convert(t, d, ``)
	assert.Error(t, err)
}

func TestBuilder_LastRegistrationWins(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	b := NewBuilder()
	b.Handle("arith1", "plus", OperationHandler(operator(t, "arith1", "plus", "+", entity.Nary)))
	doc := `<OMA><OMS cd="arith1" name="plus"/><OMI>1</OMI><OMI>2</OMI></OMA>`

	first, err := convert(t, b.Build(), doc)
	require.NoError(t, err)
	assert.Equal(t, "plus(1, 2)", first.String())

	b.Handle("arith1", "plus", OperationHandler(operator(t, "arith1", "sum", "+", entity.Nary)))
	second, err := convert(t, b.Build(), doc)
	require.NoError(t, err)
	assert.Equal(t, "sum(1, 2)", second.String())
}

func TestDispatcher_IsFrozen(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	b := NewBuilder()
	d := b.Build()
	b.Keyword(keyword(t, "nums1", "e", entity.CategoryConstant))

	assert.True(t, d.Keyword("nums1", "e").IsNone())
	assert.Empty(t, d.Handlers())
}

func TestDecode(t *testing.T) {
	el, err := DecodeString(`<?xml version="1.0"?>
<om:OMOBJ xmlns:om="http://www.openmath.org/OpenMath" version="2.0">
  <om:OMA style="sub"><om:OMV name="x"/><om:OMI> 3 </om:OMI></om:OMA>
</om:OMOBJ>`)
	require.NoError(t, err)

	assert.Equal(t, "OMOBJ", el.Name)
	assert.Equal(t, "2.0", el.Attr("version"))
	assert.NotContains(t, el.Attrs, "om")
	require.Len(t, el.Children, 1)
	oma := el.Children[0]
	assert.Equal(t, "sub", oma.Attr("style"))
	require.Len(t, oma.Children, 2)
	assert.Equal(t, "3", oma.Children[1].Text)
}
