package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwbasic/internal/berrors"
	"gwbasic/internal/values"
)

func TestScalars(t *testing.T) {

	s := New()

	v, err := s.Get("X", nil)
	require.NoError(t, err)
	assert.Equal(t, values.Single, v.Kind())
	assert.True(t, v.Sign() == 0)

	require.NoError(t, s.Set("N%", nil, values.Int(7)))
	v, err = s.Get("N%", nil)
	require.NoError(t, err)
	assert.Equal(t, values.Int(7), v)

	// X and X! are the same variable, X% another
	require.NoError(t, s.Set("X", nil, values.Int(3)))
	v, err = s.Get("X!", nil)
	require.NoError(t, err)
	assert.Equal(t, values.Single, v.Kind())
	assert.Equal(t, "3", values.Number(v))
	v, err = s.Get("X%", nil)
	require.NoError(t, err)
	assert.Equal(t, values.Int(0), v)

	err = s.Set("A$", nil, values.Int(1))
	assert.True(t, berrors.Is(err, berrors.TypeMismatch))
}

func TestDefType(t *testing.T) {

	s := New()
	require.NoError(t, s.DefType(values.Integer, 'I', 'N'))
	assert.Equal(t, "I%", s.Canonical("I"))
	assert.Equal(t, "NAME%", s.Canonical("NAME"))
	assert.Equal(t, "O!", s.Canonical("O"))
	assert.Equal(t, "I#", s.Canonical("I#"))

	assert.Error(t, s.DefType(values.String, 'Z', 'A'))

	s.Clear()
	assert.Equal(t, "I!", s.Canonical("I"))
}

func TestArrays(t *testing.T) {

	s := New()

	require.NoError(t, s.Set("A", []int{10}, values.Int(5)))
	_, err := s.Get("A", []int{11})
	assert.True(t, berrors.Is(err, berrors.SubscriptOutOfRange))
	_, err = s.Get("A", []int{1, 1})
	assert.True(t, berrors.Is(err, berrors.SubscriptOutOfRange))

	assert.True(t, berrors.Is(s.Dim("A", []int{20}), berrors.DuplicateDefinition))
	require.NoError(t, s.Erase("A"))
	require.NoError(t, s.Dim("A", []int{20}))
	v, err := s.Get("A", []int{20})
	require.NoError(t, err)
	assert.Equal(t, "0", values.Number(v))

	require.NoError(t, s.Dim("M%", []int{2, 3}))
	require.NoError(t, s.Set("M%", []int{2, 3}, values.Int(9)))
	require.NoError(t, s.Set("M%", []int{1, 3}, values.Int(4)))
	v, err = s.Get("M%", []int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, values.Int(9), v)

	// a scalar of the same name is independent
	v, err = s.Get("M%", nil)
	require.NoError(t, err)
	assert.Equal(t, values.Int(0), v)

	assert.True(t, berrors.Is(s.Erase("Q"), berrors.IllegalFunctionCall))
	assert.True(t, berrors.Is(s.Dim("BIG#", []int{10000}), berrors.OutOfMemory))
}

func TestOptionBase(t *testing.T) {

	s := New()
	require.NoError(t, s.Base(1))

	require.NoError(t, s.Dim("A", []int{3}))
	_, err := s.Get("A", []int{0})
	assert.True(t, berrors.Is(err, berrors.SubscriptOutOfRange))
	_, err = s.Get("A", []int{3})
	assert.NoError(t, err)

	assert.True(t, berrors.Is(s.Base(0), berrors.DuplicateDefinition))
}

func TestBindAndSwap(t *testing.T) {

	s := New()
	require.NoError(t, s.Set("X", nil, values.Int(1)))

	restore, err := s.Bind("X", values.Int(5))
	require.NoError(t, err)
	v, _ := s.Get("X", nil)
	assert.Equal(t, "5", values.Number(v))
	restore()
	v, _ = s.Get("X", nil)
	assert.Equal(t, "1", values.Number(v))

	restore, err = s.Bind("Y", values.Int(2))
	require.NoError(t, err)
	restore()
	assert.Empty(t, s.scalars["Y!"])

	require.NoError(t, s.Set("B", nil, values.Int(2)))
	require.NoError(t, s.Swap("X", nil, "B", nil))
	v, _ = s.Get("X", nil)
	assert.Equal(t, "2", values.Number(v))

	assert.True(t, berrors.Is(s.Swap("X", nil, "A$", nil), berrors.TypeMismatch))
}

func TestRefs(t *testing.T) {

	s := New()
	h := values.NewHeap(64)

	ref, err := h.Store([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, s.Set("A$", nil, values.Str(ref)))
	require.NoError(t, s.Set("B$", []int{2}, values.Str(ref)))
	require.NoError(t, s.Set("N", nil, values.Int(1)))

	refs := s.Refs()
	assert.Len(t, refs, 1+11)

	var traced []string
	s.Trace = func(name string, idx []int, old, val values.Value) {
		traced = append(traced, name)
	}
	require.NoError(t, s.Set("N", nil, values.Int(2)))
	assert.Equal(t, []string{"N!"}, traced)
}
