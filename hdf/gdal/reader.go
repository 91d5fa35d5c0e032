// Package gdal reads EOS-HDF files through the multidimensional API of the
// GDAL HDF4 driver (GDAL 3.2 or later). Every scientific dataset of the
// file is an array of some group, whatever its rank; the classic raster
// SUBDATASETS list leaves rank-1 datasets such as the scan-line attributes
// out.
package gdal

// #include <stdlib.h>
// #include "gdal.h"
// #include "cpl_string.h"
// #include "cpl_error.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/nci/oceanl2/hdf"
)

const openFlags = C.GDAL_OF_MULTIDIM_RASTER | C.GDAL_OF_READONLY | C.GDAL_OF_VERBOSE_ERROR

var cHDF4Drivers = func() **C.char {
	cName := C.CString("HDF4")
	defer C.free(unsafe.Pointer(cName))
	return C.CSLAddString(nil, cName)
}()

type Opener struct{}

func NewOpener() *Opener {
	InitGdal()
	return &Opener{}
}

func (o *Opener) Open(path string) (hdf.File, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	hDataset := C.GDALOpenEx(cPath, C.uint(openFlags), cHDF4Drivers, nil, nil)
	if hDataset == nil {
		err := C.CPLGetLastErrorMsg()
		return nil, fmt.Errorf("GDAL could not open %s: %s", path, C.GoString(err))
	}

	hRoot := C.GDALDatasetGetRootGroup(hDataset)
	if hRoot == nil {
		C.GDALClose(hDataset)
		return nil, fmt.Errorf("GDAL has no multidimensional view of %s", path)
	}

	f := &file{
		path:      path,
		hDataset:  hDataset,
		hRoot:     hRoot,
		attrs:     make(map[string]string),
		fullNames: make(map[string]string),
	}
	f.walk(hRoot)
	return f, nil
}

func cslToSlice(list **C.char) []string {
	n := int(C.CSLCount(list))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = C.GoString(C.CSLGetField(list, C.int(i)))
	}
	return out
}

// attributeMap reads attributes as strings and releases the list. Numeric
// attributes are converted by GDAL.
func attributeMap(hAttrs *C.GDALAttributeH, n C.size_t) map[string]string {
	attrs := make(map[string]string, int(n))
	if hAttrs == nil {
		return attrs
	}
	for _, hAttr := range unsafe.Slice(hAttrs, int(n)) {
		name := C.GoString(C.GDALAttributeGetName(hAttr))
		if value := C.GDALAttributeReadAsString(hAttr); value != nil {
			attrs[name] = C.GoString(value)
		}
	}
	C.GDALReleaseAttributes(hAttrs, n)
	return attrs
}

type file struct {
	path      string
	hDataset  C.GDALDatasetH
	hRoot     C.GDALGroupH
	attrs     map[string]string
	names     []string
	fullNames map[string]string
	selected  int
	closed    bool
}

// walk collects the arrays and attributes of a group and its subgroups.
// The first array or attribute seen under a name wins, so the root group
// takes precedence.
func (f *file) walk(hGroup C.GDALGroupH) {
	var nAttrs C.size_t
	for k, v := range attributeMap(C.GDALGroupGetAttributes(hGroup, &nAttrs, nil), nAttrs) {
		if _, ok := f.attrs[k]; !ok {
			f.attrs[k] = v
		}
	}

	arrays := C.GDALGroupGetMDArrayNames(hGroup, nil)
	for _, name := range cslToSlice(arrays) {
		if _, dup := f.fullNames[name]; dup {
			continue
		}
		cName := C.CString(name)
		hArray := C.GDALGroupOpenMDArray(hGroup, cName, nil)
		C.free(unsafe.Pointer(cName))
		if hArray == nil {
			continue
		}
		f.fullNames[name] = C.GoString(C.GDALMDArrayGetFullName(hArray))
		f.names = append(f.names, name)
		C.GDALMDArrayRelease(hArray)
	}
	C.CSLDestroy(arrays)

	groups := C.GDALGroupGetGroupNames(hGroup, nil)
	for _, name := range cslToSlice(groups) {
		cName := C.CString(name)
		hSub := C.GDALGroupOpenGroup(hGroup, cName, nil)
		C.free(unsafe.Pointer(cName))
		if hSub == nil {
			continue
		}
		f.walk(hSub)
		C.GDALGroupRelease(hSub)
	}
	C.CSLDestroy(groups)
}

func (f *file) Attributes() (map[string]string, error) {
	if f.closed {
		return nil, hdf.ErrClosed
	}
	attrs := make(map[string]string, len(f.attrs))
	for k, v := range f.attrs {
		attrs[k] = v
	}
	return attrs, nil
}

func (f *file) Datasets() ([]string, error) {
	if f.closed {
		return nil, hdf.ErrClosed
	}
	return append([]string(nil), f.names...), nil
}

func (f *file) Select(name string) (hdf.Dataset, error) {
	if f.closed {
		return nil, hdf.ErrClosed
	}
	fullName, ok := f.fullNames[name]
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", name, f.path, hdf.ErrNotFound)
	}

	cName := C.CString(fullName)
	defer C.free(unsafe.Pointer(cName))
	hArray := C.GDALGroupOpenMDArrayFromFullname(f.hRoot, cName, nil)
	if hArray == nil {
		err := C.CPLGetLastErrorMsg()
		return nil, fmt.Errorf("GDAL could not open dataset %s: %s", fullName, C.GoString(err))
	}
	f.selected++
	return &dataset{name: name, owner: f, hArray: hArray}, nil
}

func (f *file) Close() error {
	if f.closed {
		return hdf.ErrClosed
	}
	f.closed = true
	C.GDALGroupRelease(f.hRoot)
	C.GDALClose(f.hDataset)
	if f.selected > 0 {
		return fmt.Errorf("%s closed with %d datasets still selected", f.path, f.selected)
	}
	return nil
}

type dataset struct {
	name     string
	owner    *file
	hArray   C.GDALMDArrayH
	released bool
}

func (d *dataset) Name() string { return d.name }

func (d *dataset) Attributes() (map[string]string, error) {
	if d.released {
		return nil, hdf.ErrReleased
	}
	var n C.size_t
	return attributeMap(C.GDALMDArrayGetAttributes(d.hArray, &n, nil), n), nil
}

// shape returns the dimension sizes of the array in storage order.
func (d *dataset) shape() []int {
	var nDims C.size_t
	hDims := C.GDALMDArrayGetDimensions(d.hArray, &nDims)
	if hDims == nil {
		return nil
	}
	shape := make([]int, int(nDims))
	for i, hDim := range unsafe.Slice(hDims, int(nDims)) {
		shape[i] = int(C.GDALDimensionGetSize(hDim))
	}
	C.GDALReleaseDimensions(hDims, nDims)
	return shape
}

func (d *dataset) Read() (*hdf.Array, error) {
	if d.released {
		return nil, hdf.ErrReleased
	}

	shape := d.shape()
	if len(shape) == 0 {
		return nil, fmt.Errorf("dataset %s has no dimensions", d.name)
	}
	total := 1
	for _, n := range shape {
		total *= n
	}
	if total == 0 {
		return hdf.NewArray(shape, nil)
	}

	start := make([]C.GUInt64, len(shape))
	count := make([]C.size_t, len(shape))
	for i, n := range shape {
		count[i] = C.size_t(n)
	}

	hType := C.GDALExtendedDataTypeCreate(C.GDT_Float64)
	defer C.GDALExtendedDataTypeRelease(hType)

	dataBuf := make([]float64, total)
	ok := C.GDALMDArrayRead(d.hArray, &start[0], &count[0], nil, nil, hType,
		unsafe.Pointer(&dataBuf[0]), unsafe.Pointer(&dataBuf[0]), C.size_t(total*8))
	if ok == 0 {
		return nil, fmt.Errorf("GDAL read of %s failed: %s", d.name, C.GoString(C.CPLGetLastErrorMsg()))
	}
	return hdf.NewArray(shape, dataBuf)
}

func (d *dataset) EndAccess() error {
	if d.released {
		return hdf.ErrReleased
	}
	d.released = true
	d.owner.selected--
	C.GDALMDArrayRelease(d.hArray)
	return nil
}
