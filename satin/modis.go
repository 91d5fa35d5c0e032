package satin

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nci/oceanl2/hdf"
	"github.com/nci/oceanl2/masked"
	"github.com/nci/oceanl2/swath"
	"github.com/nci/oceanl2/utils"
)

// Geolocation dataset names and their valid ranges in degrees.
const (
	LongitudeName = "longitude"
	LatitudeName  = "latitude"

	maxLongitude = 180.0
	maxLatitude  = 90.0
)

// modisLevel2 reads NASA EOS-HDF MODIS level-2 ocean-colour files.
type modisLevel2 struct {
	l *Loader
}

func newModisLevel2(l *Loader) Reader {
	return &modisLevel2{l: l}
}

func (r *modisLevel2) LoadProduct(scn Scene, prodname string, opts utils.Options) (*Channel, error) {
	path, err := opts.Path(scn.TimeSlot())
	if err != nil {
		return nil, &ProductLoadError{Product: prodname, Err: err}
	}

	ch := NewChannel(prodname)
	if err := ch.Read(r.l.opener, path); err != nil {
		return nil, &ProductLoadError{Product: prodname, Err: err}
	}
	ch.SatID = capitalize(scn.SatName())
	ch.Resolution = ProductResolution
	ch.Shape = ch.Data.Shape

	scn.AppendChannel(ch)

	if r.l.Verbose {
		r.l.Info.Printf("Loading modis lvl2 product %s done: %v", path, ch)
	}
	return ch, nil
}

func (r *modisLevel2) LoadSwath(scn Scene, opts utils.Options) (err error) {
	path, err := opts.Path(scn.TimeSlot())
	if err != nil {
		return err
	}

	f, err := r.l.opener.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, e)
		}
	}()

	info, err := f.Attributes()
	if err != nil {
		return err
	}
	dsets, err := f.Datasets()
	if err != nil {
		return err
	}

	wanted := make(map[string]bool)
	var required []string
	for _, name := range scn.ChannelsToLoad() {
		wanted[name] = true
		if Classify(name) == ScanLine {
			required = append(required, name)
		}
	}

	var errs []error
	for _, bandname := range dsets {
		switch Classify(bandname) {
		case ScanLine, Geolocation:
			continue
		}
		if !wanted[bandname] || IsGeoPhysProduct(bandname) {
			continue
		}
		if IsAuxiliary(bandname) {
			r.l.Info.Printf("%s: %s is not decoded", path, bandname)
			continue
		}

		if r.l.Verbose {
			r.l.Info.Printf("Dataset to load: %s", bandname)
		}
		data, err := Decode(f, bandname)
		if err != nil {
			errs = append(errs, &ProductLoadError{Product: bandname, Err: err})
			continue
		}
		scn.SetDataset(bandname, data)
	}

	scanLines, err := ExtractScanLines(f, ScanLineAttrs, required)
	var missing *RequiredFieldMissingError
	if errors.As(err, &missing) {
		errs = append(errs, err)
		scanLines, err = ExtractScanLines(f, ScanLineAttrs, nil)
	}
	if err != nil {
		errs = append(errs, err)
	} else {
		scn.SetScanLines(scanLines)
	}

	tr, err := ResolveTimeRange(info)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	if !tr.Valid() {
		r.l.Error.Printf("%s: end time %v is before start time %v", path, tr.End, tr.Start)
	}
	scn.SetTimeRange(tr)

	lat, lon, err := readGeolocation(f)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	area, err := swath.NewDefinition(lon, lat)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	scn.SetArea(area)

	if r.l.Verbose {
		r.l.Info.Printf("Loading modis data done: %s", path)
	}
	return errors.Join(errs...)
}

func (r *modisLevel2) Geolocation(scn Scene, opts utils.Options) (lat, lon *masked.Array, err error) {
	path, err := opts.Path(scn.TimeSlot())
	if err != nil {
		return nil, nil, err
	}

	f, err := r.l.opener.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, e)
		}
	}()

	return readGeolocation(f)
}

func readGeolocation(f hdf.File) (lat, lon *masked.Array, err error) {
	lon, err = readCoordinate(f, LongitudeName, maxLongitude)
	if err != nil {
		return nil, nil, err
	}
	lat, err = readCoordinate(f, LatitudeName, maxLatitude)
	if err != nil {
		return nil, nil, err
	}
	return lat, lon, nil
}

// readCoordinate reads a geolocation dataset as stored, in degrees. NaN,
// out of range values and the declared bad value, if any, are masked.
func readCoordinate(f hdf.File, name string, limit float64) (arr *masked.Array, err error) {
	ds, err := selectDataset(f, name)
	if err != nil {
		return nil, err
	}
	defer release(ds, &err)

	attrs, err := ds.Attributes()
	if err != nil {
		return nil, err
	}

	nodata, hasNoData := 0.0, false
	if s, ok := attrs[AttrNoData]; ok {
		nodata, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("dataset %s attribute %s: %v", name, AttrNoData, err)
		}
		hasNoData = true
	}

	raw, err := ds.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	arr = masked.New(raw.Shape, raw.Data)
	for i, v := range arr.Data {
		arr.Mask[i] = math.IsNaN(v) || math.Abs(v) > limit || (hasNoData && v == nodata)
	}
	return arr, nil
}
