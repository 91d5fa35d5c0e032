package satin

import (
	"fmt"
	"strings"
)

type DatasetNotFoundError struct {
	Name string
	Err  error
}

func (e *DatasetNotFoundError) Error() string {
	return fmt.Sprintf("dataset %s not found", e.Name)
}

func (e *DatasetNotFoundError) Unwrap() error { return e.Err }

type MissingCalibrationAttributeError struct {
	Dataset   string
	Attribute string
}

func (e *MissingCalibrationAttributeError) Error() string {
	return fmt.Sprintf("dataset %s has no %s attribute", e.Dataset, e.Attribute)
}

type MissingTimeAttributeError struct {
	Attribute string
}

func (e *MissingTimeAttributeError) Error() string {
	return fmt.Sprintf("global attribute %q is missing", e.Attribute)
}

type MalformedTimeStringError struct {
	Attribute string
	Value     string
	Reason    string
}

func (e *MalformedTimeStringError) Error() string {
	if len(e.Attribute) == 0 {
		return fmt.Sprintf("malformed time %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("malformed %q value %q: %s", e.Attribute, e.Value, e.Reason)
}

type RequiredFieldMissingError struct {
	Names []string
}

func (e *RequiredFieldMissingError) Error() string {
	return fmt.Sprintf("required scan-line attributes missing: %s", strings.Join(e.Names, ", "))
}

// ProductLoadError wraps the failure to load one dataset into a scene.
type ProductLoadError struct {
	Product string
	Err     error
}

func (e *ProductLoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Product, e.Err)
}

func (e *ProductLoadError) Unwrap() error { return e.Err }

type UnsupportedInstrumentError struct {
	Instrument string
}

func (e *UnsupportedInstrumentError) Error() string {
	return fmt.Sprintf("no reader for instrument %q", e.Instrument)
}

type PointOutOfRangeError struct {
	Row, Col int
	Shape    []int
}

func (e *PointOutOfRangeError) Error() string {
	return fmt.Sprintf("pixel (%d, %d) outside swath of shape %v", e.Row, e.Col, e.Shape)
}
