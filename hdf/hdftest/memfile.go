// Package hdftest provides an in-memory hdf.Opener for tests.
package hdftest

import (
	"fmt"
	"os"
	"sync"

	"github.com/nci/oceanl2/hdf"
)

// Dataset describes one named dataset of a MemFile.
type Dataset struct {
	Name       string
	Attributes map[string]string
	Shape      []int
	Data       []float64
	// ReadErr, when set, is returned by Read.
	ReadErr error
}

// MemFile is the content of one in-memory file.
type MemFile struct {
	Attributes map[string]string
	Datasets   []*Dataset
}

// Add appends a dataset and returns the file for chaining.
func (m *MemFile) Add(name string, attrs map[string]string, shape []int, data []float64) *MemFile {
	m.Datasets = append(m.Datasets, &Dataset{Name: name, Attributes: attrs, Shape: shape, Data: data})
	return m
}

func (m *MemFile) lookup(name string) *Dataset {
	for _, ds := range m.Datasets {
		if ds.Name == name {
			return ds
		}
	}
	return nil
}

// MemOpener serves MemFiles by path. Closing a file with datasets still
// selected is reported as an error.
type MemOpener struct {
	mu    sync.Mutex
	files map[string]*MemFile
	paths []string
}

func NewMemOpener() *MemOpener {
	return &MemOpener{files: make(map[string]*MemFile)}
}

func (o *MemOpener) Put(path string, f *MemFile) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files[path] = f
}

// Paths returns the paths passed to Open, in call order.
func (o *MemOpener) Paths() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.paths...)
}

func (o *MemOpener) Open(path string) (hdf.File, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, path)
	f, ok := o.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return &memHandle{file: f, open: make(map[*memDataset]bool)}, nil
}

type memHandle struct {
	file   *MemFile
	closed bool
	open   map[*memDataset]bool
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func (h *memHandle) Attributes() (map[string]string, error) {
	if h.closed {
		return nil, hdf.ErrClosed
	}
	return copyAttrs(h.file.Attributes), nil
}

func (h *memHandle) Datasets() ([]string, error) {
	if h.closed {
		return nil, hdf.ErrClosed
	}
	names := make([]string, 0, len(h.file.Datasets))
	for _, ds := range h.file.Datasets {
		names = append(names, ds.Name)
	}
	return names, nil
}

func (h *memHandle) Select(name string) (hdf.Dataset, error) {
	if h.closed {
		return nil, hdf.ErrClosed
	}
	ds := h.file.lookup(name)
	if ds == nil {
		return nil, fmt.Errorf("%s: %w", name, hdf.ErrNotFound)
	}
	d := &memDataset{ds: ds, owner: h}
	h.open[d] = true
	return d, nil
}

func (h *memHandle) Close() error {
	if h.closed {
		return hdf.ErrClosed
	}
	h.closed = true
	if n := len(h.open); n > 0 {
		return fmt.Errorf("hdftest: file closed with %d dataset handles still selected", n)
	}
	return nil
}

type memDataset struct {
	ds       *Dataset
	owner    *memHandle
	released bool
}

func (d *memDataset) Name() string { return d.ds.Name }

func (d *memDataset) Attributes() (map[string]string, error) {
	if d.released {
		return nil, hdf.ErrReleased
	}
	return copyAttrs(d.ds.Attributes), nil
}

func (d *memDataset) Read() (*hdf.Array, error) {
	if d.released {
		return nil, hdf.ErrReleased
	}
	if d.ds.ReadErr != nil {
		return nil, d.ds.ReadErr
	}
	return hdf.NewArray(append([]int(nil), d.ds.Shape...), append([]float64(nil), d.ds.Data...))
}

func (d *memDataset) EndAccess() error {
	if d.released {
		return hdf.ErrReleased
	}
	d.released = true
	delete(d.owner.open, d)
	return nil
}
