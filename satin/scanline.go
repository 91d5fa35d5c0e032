package satin

import (
	"fmt"

	"github.com/nci/oceanl2/hdf"
)

// ScanLineAttribute holds the raw per-line values of one housekeeping
// dataset and its attributes.
type ScanLineAttribute struct {
	Data       []float64         `json:"-"`
	Attributes map[string]string `json:"attributes"`
}

type ScanLineAttributeSet map[string]*ScanLineAttribute

// Lines returns the number of scan lines, taken from the first attribute
// present in ScanLineAttrs order.
func (s ScanLineAttributeSet) Lines() int {
	for _, name := range ScanLineAttrs {
		if attr, ok := s[name]; ok {
			return len(attr.Data)
		}
	}
	return 0
}

// ExtractScanLines reads the named scan-line datasets present in the file
// without calibration. Names absent from the file are left out unless they
// appear in required.
func ExtractScanLines(f hdf.File, names []string, required []string) (ScanLineAttributeSet, error) {
	available, err := f.Datasets()
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(available))
	for _, n := range available {
		present[n] = true
	}

	var missing []string
	for _, n := range required {
		if !present[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &RequiredFieldMissingError{Names: missing}
	}

	set := make(ScanLineAttributeSet)
	for _, name := range names {
		if !present[name] {
			continue
		}
		attr, err := readScanLine(f, name)
		if err != nil {
			return nil, err
		}
		set[name] = attr
	}
	return set, nil
}

func readScanLine(f hdf.File, name string) (attr *ScanLineAttribute, err error) {
	ds, err := selectDataset(f, name)
	if err != nil {
		return nil, err
	}
	defer release(ds, &err)

	attrs, err := ds.Attributes()
	if err != nil {
		return nil, err
	}
	raw, err := ds.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return &ScanLineAttribute{Data: raw.Data, Attributes: attrs}, nil
}
