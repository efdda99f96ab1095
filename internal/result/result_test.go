package result

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_Success(t *testing.T) {
	r := Map(Ok(21), func(v int) int { return v * 2 })
	require.True(t, r.IsOk())
	assert.Equal(t, 42, r.Value())
}

func TestMap_ErrorPassesThrough(t *testing.T) {
	called := false
	r := Map(Err[int]("boom"), func(v int) string {
		called = true
		return strconv.Itoa(v)
	})
	assert.False(t, called, "f must not run on the error branch")
	assert.False(t, r.IsOk())
	assert.Equal(t, "boom", r.Error())
}

func TestMap_Composition(t *testing.T) {
	f := func(v int) int { return v + 1 }
	g := func(v int) string { return strconv.Itoa(v) }

	for _, in := range []Result[int]{Ok(0), Ok(-7), Err[int]("x")} {
		lhs := Map(Map(in, f), g)
		rhs := Map(in, func(v int) string { return g(f(v)) })
		assert.Equal(t, rhs, lhs)
	}
}

func TestMap_Identity(t *testing.T) {
	for _, in := range []Result[string]{Ok("a"), Err[string]("e")} {
		assert.Equal(t, in, Map(in, func(s string) string { return s }))
	}
}

func TestFrom(t *testing.T) {
	assert.Equal(t, Ok(3), From(3, nil))

	r := From(3, errors.New("bad"))
	assert.False(t, r.IsOk())
	assert.Equal(t, "bad", r.Error())
	assert.Zero(t, r.Value())
}

func TestCatch_RecoversPanic(t *testing.T) {
	r := Catch(func() (int, error) {
		panic("kaboom")
	})
	require.False(t, r.IsOk())
	assert.Contains(t, r.Error(), "kaboom")
}

func TestUnpack(t *testing.T) {
	v, err := Ok("x").Unpack()
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = Err[string]("nope").Unpack()
	assert.EqualError(t, err, "nope")
}

func TestCause(t *testing.T) {
	assert.NoError(t, Ok(1).Cause())

	sentinel := errors.New("sentinel")
	r := Map(From(0, fmt.Errorf("wrapped: %w", sentinel)), strconv.Itoa)
	assert.ErrorIs(t, r.Cause(), sentinel)

	_, err := r.Unpack()
	assert.ErrorIs(t, err, sentinel)
	assert.EqualError(t, Err[int]("plain").Cause(), "plain")
}
