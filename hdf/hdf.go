// Package hdf defines the boundary to hierarchical scientific data files.
// Readers open a file, enumerate its named datasets and attributes, and
// select datasets for reading. Every selected dataset must be released with
// EndAccess before the owning file is closed.
package hdf

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("hdf: dataset not found")
	ErrReleased = errors.New("hdf: handle already released")
	ErrClosed   = errors.New("hdf: file already closed")
)

// Array holds the raw values of a dataset in row-major order.
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray checks that data holds one value for every element of shape. The
// shape is kept as given, so a single-row swath stays two dimensional.
func NewArray(shape []int, data []float64) (*Array, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("hdf: scalar datasets are not supported")
	}
	n := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("hdf: negative dimension in shape %v", shape)
		}
		n *= dim
	}
	if n != len(data) {
		return nil, fmt.Errorf("hdf: shape %v needs %d values, got %d", shape, n, len(data))
	}
	return &Array{Shape: shape, Data: data}, nil
}

type Opener interface {
	Open(path string) (File, error)
}

type File interface {
	// Attributes returns the global attributes of the file.
	Attributes() (map[string]string, error)
	// Datasets lists the dataset names in file order.
	Datasets() ([]string, error)
	// Select acquires a dataset handle. Returns ErrNotFound (wrapped) if the
	// name is absent.
	Select(name string) (Dataset, error)
	Close() error
}

type Dataset interface {
	Name() string
	Attributes() (map[string]string, error)
	Read() (*Array, error)
	EndAccess() error
}
