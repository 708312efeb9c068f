package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSymbol(t *testing.T) {
	t.Run("mismatched mathml count", func(t *testing.T) {
		result := NewSymbol([]string{"(", ",", ")"}, "", []string{"<mo>(</mo>"})
		require.True(t, result.IsErr())
		assert.Contains(t, result.Error().Error(), "3 on-screen tokens but 1 MathML fragments")
	})

	t.Run("mathml may be omitted", func(t *testing.T) {
		result := NewSymbol([]string{"+"}, "", nil)
		require.True(t, result.IsOk())
		assert.Equal(t, "", result.Unwrap().MathMLAt(0))
	})

	t.Run("tokens are NFC normalised", func(t *testing.T) {
		// e followed by a combining acute accent
		s := MustSymbol([]string{"e\u0301"}, "", nil)
		assert.Equal(t, "\u00e9", s.Token(0))
	})
}

func TestSymbol_AccessorsCopy(t *testing.T) {
	s := MustSymbol([]string{"|", ",", "|"}, "", []string{"<mo>|</mo>", "<mo>,</mo>", "<mo>|</mo>"})

	tokens := s.Onscreen()
	tokens[0] = "X"
	assert.Equal(t, "|", s.Token(0))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "", s.Token(5))
	assert.Equal(t, "| , |", s.String())
}

func TestSymbol_Merge(t *testing.T) {
	times := MustSymbol([]string{"×"}, "", []string{"<mo>×</mo>"})

	merged := times.Merge(SymbolOverride{Onscreen: []string{"*"}})
	require.True(t, merged.IsOk())
	assert.Equal(t, "*", merged.Unwrap().Token(0))
	assert.Equal(t, "<mo>×</mo>", merged.Unwrap().MathMLAt(0), "empty override parts keep the default")

	bad := times.Merge(SymbolOverride{MathML: []string{"<mo>a</mo>", "<mo>b</mo>"}})
	assert.True(t, bad.IsErr())

	assert.True(t, times.Equal(times.Merge(SymbolOverride{}).Unwrap()))
	assert.False(t, times.Equal(merged.Unwrap()))
}

func TestSymbolKey(t *testing.T) {
	key := SymbolKey("arith1", "plus")
	assert.Equal(t, "arith1__plus", key)

	cd, name, ok := SplitSymbolKey(key)
	assert.True(t, ok)
	assert.Equal(t, "arith1", cd)
	assert.Equal(t, "plus", name)

	_, _, ok = SplitSymbolKey("plus")
	assert.False(t, ok)
}
