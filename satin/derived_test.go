package satin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nci/oceanl2/masked"
)

func datasets(m map[string]*masked.Array) func(string) (*masked.Array, bool) {
	return func(name string) (*masked.Array, bool) {
		arr, ok := m[name]
		return arr, ok
	}
}

func TestEvaluateDerived(t *testing.T) {
	a := masked.New([]int{2, 2}, []float64{1, 2, 3, 0})
	a.Mask[1] = true
	b := masked.New([]int{2, 2}, []float64{4, 4, 4, 4})
	lookup := datasets(map[string]*masked.Array{"a": a, "b": b})

	out, err := EvaluateDerived("a / b", lookup)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false}, out.Mask)
	assert.Equal(t, 0.25, out.Data[0])
	assert.True(t, math.IsNaN(out.Data[1]))
	assert.Equal(t, 0.0, out.Data[3])

	out, err = EvaluateDerived("b / a", lookup)
	require.NoError(t, err)
	assert.True(t, out.Mask[3], "division by zero")

	out, err = EvaluateDerived("a > 1.5", lookup)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Data[0])
	assert.Equal(t, 1.0, out.Data[2])
	assert.Equal(t, 0.0, out.Data[3])
}

func TestEvaluateDerivedErrors(t *testing.T) {
	a := masked.New([]int{2}, []float64{1, 2})
	c := masked.New([]int{1, 2}, []float64{1, 2})
	lookup := datasets(map[string]*masked.Array{"a": a, "c": c})

	_, err := EvaluateDerived("1 + 2", lookup)
	assert.Error(t, err)

	_, err = EvaluateDerived("a + missing", lookup)
	assert.Error(t, err)

	_, err = EvaluateDerived("a + c", lookup)
	assert.Error(t, err)

	_, err = EvaluateDerived("a +* (", lookup)
	assert.Error(t, err)
}
