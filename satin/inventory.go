package satin

import (
	"fmt"

	"github.com/nci/oceanl2/hdf"
)

type DatasetInfo struct {
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Geophysical bool              `json:"geophysical,omitempty"`
	Auxiliary   bool              `json:"auxiliary,omitempty"`
	Attributes  map[string]string `json:"attributes"`
}

// FileInventory lists what a level-2 file holds without decoding it.
type FileInventory struct {
	FileName   string            `json:"filename"`
	Attributes map[string]string `json:"attributes"`
	TimeRange  *TimeRange        `json:"time_range,omitempty"`
	TimeError  string            `json:"time_error,omitempty"`
	DataSets   []*DatasetInfo    `json:"datasets"`
}

func Inventory(opener hdf.Opener, path string) (inv *FileInventory, err error) {
	f, err := opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, e)
		}
	}()

	attrs, err := f.Attributes()
	if err != nil {
		return nil, err
	}
	inv = &FileInventory{FileName: path, Attributes: attrs}

	if tr, err := ResolveTimeRange(attrs); err == nil {
		inv.TimeRange = &tr
	} else {
		inv.TimeError = err.Error()
	}

	names, err := f.Datasets()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		info, err := datasetInfo(f, name)
		if err != nil {
			return nil, err
		}
		inv.DataSets = append(inv.DataSets, info)
	}
	return inv, nil
}

func datasetInfo(f hdf.File, name string) (info *DatasetInfo, err error) {
	ds, err := selectDataset(f, name)
	if err != nil {
		return nil, err
	}
	defer release(ds, &err)

	attrs, err := ds.Attributes()
	if err != nil {
		return nil, err
	}
	return &DatasetInfo{
		Name:        name,
		Category:    Classify(name).String(),
		Geophysical: IsGeoPhysProduct(name),
		Auxiliary:   IsAuxiliary(name),
		Attributes:  attrs,
	}, nil
}
