package functional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOption_SomeNone(t *testing.T) {
	some := Some("x")
	assert.True(t, some.IsSome())
	assert.Equal(t, "x", some.Unwrap())

	none := None[string]()
	assert.True(t, none.IsNone())
	assert.Equal(t, "fallback", none.UnwrapOr("fallback"))
	assert.Panics(t, func() { none.Unwrap() })
}

func TestOption_Get(t *testing.T) {
	v, ok := Some(3).Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = None[int]().Get()
	assert.False(t, ok)
}

func TestOption_OrElseAndMap(t *testing.T) {
	alt := None[int]().OrElse(func() Option[int] { return Some(9) })
	assert.Equal(t, 9, alt.Unwrap())

	doubled := MapOption(Some(4), func(x int) int { return x * 2 })
	assert.Equal(t, 8, doubled.Unwrap())
	assert.True(t, MapOption(None[int](), func(x int) int { return x }).IsNone())
}

func TestFromLookup(t *testing.T) {
	m := map[string]int{"a": 1}
	assert.Equal(t, 1, FromLookup(m, "a").Unwrap())
	assert.True(t, FromLookup(m, "b").IsNone())
	assert.Equal(t, "Some(1)", FromLookup(m, "a").String())
	assert.Equal(t, "None", FromLookup(m, "b").String())
}
