package functional

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeError struct{ code int }

func (e *codeError) Error() string { return "code " + strconv.Itoa(e.code) }

func TestOk(t *testing.T) {
	result := Ok(42)
	assert.True(t, result.IsOk())
	assert.False(t, result.IsErr())
	assert.Equal(t, 42, result.Unwrap())
	assert.NoError(t, result.Error())
}

func TestErr(t *testing.T) {
	err := errors.New("test error")
	result := Err[int](err)
	assert.False(t, result.IsOk())
	assert.True(t, result.IsErr())
	assert.Equal(t, err, result.Error())
	assert.Panics(t, func() { result.Unwrap() })
}

func TestErrf_Wraps(t *testing.T) {
	inner := &codeError{code: 7}
	result := Errf[string]("loading %s: %w", "x", inner)

	var target *codeError
	require.True(t, result.ErrorAs(&target))
	assert.Equal(t, 7, target.code)
	assert.Equal(t, "loading x: code 7", result.Error().Error())
}

func TestResult_UnwrapOr(t *testing.T) {
	assert.Equal(t, 42, Ok(42).UnwrapOr(100))
	assert.Equal(t, 100, Err[int](errors.New("boom")).UnwrapOr(100))
}

func TestResult_Value(t *testing.T) {
	v, err := Ok("hello").Value()
	assert.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = Err[string](errors.New("nope")).Value()
	assert.Error(t, err)
	assert.Empty(t, v)
}

func TestResult_MapAndThen(t *testing.T) {
	mapped := MapResult(Ok(5), func(x int) string { return fmt.Sprintf("value: %d", x) })
	assert.Equal(t, "value: 5", mapped.Unwrap())

	chained := AndThen(Ok(5), func(x int) Result[int] { return Err[int](errors.New("inner")) })
	assert.EqualError(t, chained.Error(), "inner")

	skipped := AndThen(Err[int](errors.New("outer")), func(x int) Result[int] {
		t.Fatal("must not be called")
		return Ok(x)
	})
	assert.EqualError(t, skipped.Error(), "outer")
}

func TestResult_MapErrAndOrElse(t *testing.T) {
	wrapped := Err[int](errors.New("original")).MapErr(func(err error) error {
		return fmt.Errorf("wrapped: %w", err)
	})
	assert.EqualError(t, wrapped.Error(), "wrapped: original")

	recovered := Err[int](errors.New("x")).OrElse(func(error) Result[int] { return Ok(1) })
	assert.Equal(t, 1, recovered.Unwrap())

	untouched := Ok(2).OrElse(func(error) Result[int] { return Ok(1) })
	assert.Equal(t, 2, untouched.Unwrap())
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "Ok(42)", Ok(42).String())
	assert.Equal(t, "Err(test error)", Err[int](errors.New("test error")).String())
}

func TestCollect(t *testing.T) {
	all := Collect([]Result[int]{Ok(1), Ok(2), Ok(3)})
	assert.Equal(t, []int{1, 2, 3}, all.Unwrap())

	first := Collect([]Result[int]{Ok(1), Err[int](errors.New("second")), Err[int](errors.New("third"))})
	assert.EqualError(t, first.Error(), "second")
}

func TestMapSlice(t *testing.T) {
	parse := func(s string) Result[int] { return FromValue(strconv.Atoi(s)) }

	assert.Equal(t, []int{1, 22}, MapSlice([]string{"1", "22"}, parse).Unwrap())
	assert.True(t, MapSlice([]string{"1", "x"}, parse).IsErr())
}

func BenchmarkResult_ChainedOperations(b *testing.B) {
	for i := 0; i < b.N; i++ {
		step1 := MapResult(Ok(5), func(x int) int { return x * 2 })
		step2 := AndThen(step1, func(x int) Result[int] { return Ok(x + 3) })
		MapResult(step2, func(x int) int { return x * 10 })
	}
}
