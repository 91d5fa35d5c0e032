// Package masked provides numeric arrays paired with a validity mask.
// Masked positions keep a value so the array shape never changes.
package masked

import (
	"fmt"
	"math"
)

type Array struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"-"`
	Mask  []bool    `json:"-"`
}

// New returns an unmasked array over data.
func New(shape []int, data []float64) *Array {
	return &Array{Shape: shape, Data: data, Mask: make([]bool, len(data))}
}

// MaskedEqual masks every position whose value equals sentinel.
func MaskedEqual(shape []int, data []float64, sentinel float64) *Array {
	a := New(shape, data)
	for i, v := range data {
		a.Mask[i] = v == sentinel
	}
	return a
}

func (a *Array) Len() int { return len(a.Data) }

// Index converts (row, col) into a flat index of a two dimensional array.
func (a *Array) Index(row, col int) (int, error) {
	if len(a.Shape) != 2 {
		return -1, fmt.Errorf("array of rank %d is not two dimensional", len(a.Shape))
	}
	if row < 0 || row >= a.Shape[0] || col < 0 || col >= a.Shape[1] {
		return -1, fmt.Errorf("index (%d, %d) out of range for shape %v", row, col, a.Shape)
	}
	return row*a.Shape[1] + col, nil
}

// At returns the value at (row, col) and whether it is valid.
func (a *Array) At(row, col int) (float64, bool, error) {
	idx, err := a.Index(row, col)
	if err != nil {
		return 0, false, err
	}
	return a.Data[idx], !a.Mask[idx], nil
}

// Scale returns a new array with value*slope + intercept at every position,
// masked or not. The mask is shared.
func (a *Array) Scale(slope, intercept float64) *Array {
	out := &Array{Shape: a.Shape, Data: make([]float64, len(a.Data)), Mask: a.Mask}
	for i, v := range a.Data {
		out.Data[i] = v*slope + intercept
	}
	return out
}

type Stats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Stats computes statistics over the unmasked values.
func (a *Array) Stats() Stats {
	var s Stats
	var sum, sumSq float64
	for i, v := range a.Data {
		if a.Mask[i] {
			continue
		}
		if s.Count == 0 || v < s.Min {
			s.Min = v
		}
		if s.Count == 0 || v > s.Max {
			s.Max = v
		}
		sum += v
		sumSq += v * v
		s.Count++
	}
	if s.Count > 0 {
		n := float64(s.Count)
		s.Mean = sum / n
		s.StdDev = math.Sqrt(math.Max(sumSq/n-s.Mean*s.Mean, 0))
	}
	return s
}
