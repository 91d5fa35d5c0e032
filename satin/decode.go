package satin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nci/oceanl2/hdf"
	"github.com/nci/oceanl2/masked"
)

// Calibration attribute names.
const (
	AttrNoData    = "bad_value_scaled"
	AttrSlope     = "slope"
	AttrIntercept = "intercept"
)

// selectDataset wraps hdf.ErrNotFound into a DatasetNotFoundError.
func selectDataset(f hdf.File, name string) (hdf.Dataset, error) {
	ds, err := f.Select(name)
	if err != nil {
		if errors.Is(err, hdf.ErrNotFound) {
			return nil, &DatasetNotFoundError{Name: name, Err: err}
		}
		return nil, err
	}
	return ds, nil
}

// release ends access to ds, keeping the first error seen.
func release(ds hdf.Dataset, err *error) {
	if e := ds.EndAccess(); e != nil && *err == nil {
		*err = fmt.Errorf("releasing %s: %w", ds.Name(), e)
	}
}

func floatAttr(attrs map[string]string, dataset, name string) (float64, error) {
	s, ok := attrs[name]
	if !ok {
		return 0, &MissingCalibrationAttributeError{Dataset: dataset, Attribute: name}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("dataset %s attribute %s: %v", dataset, name, err)
	}
	return v, nil
}

// Decode reads a dataset and applies its slope/intercept calibration.
// Positions whose raw value equals bad_value_scaled are masked; they are
// still calibrated so the array keeps its shape.
func Decode(f hdf.File, name string) (arr *masked.Array, err error) {
	ds, err := selectDataset(f, name)
	if err != nil {
		return nil, err
	}
	defer release(ds, &err)

	attrs, err := ds.Attributes()
	if err != nil {
		return nil, err
	}

	var calib [3]float64
	for i, attr := range []string{AttrNoData, AttrSlope, AttrIntercept} {
		calib[i], err = floatAttr(attrs, name, attr)
		if err != nil {
			return nil, err
		}
	}
	nodata, slope, intercept := calib[0], calib[1], calib[2]

	raw, err := ds.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return masked.MaskedEqual(raw.Shape, raw.Data, nodata).Scale(slope, intercept), nil
}
