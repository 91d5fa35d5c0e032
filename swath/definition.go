// Package swath pairs per-pixel longitude and latitude arrays into a swath
// geolocation definition.
package swath

import (
	"encoding/json"
	"errors"
	"fmt"

	geo "github.com/nci/geometry"

	"github.com/nci/oceanl2/masked"
)

// ErrMaskedCorner is returned when a corner pixel of the swath has no
// valid longitude or latitude.
var ErrMaskedCorner = errors.New("corner pixel has no geolocation")

type Definition struct {
	Lons *masked.Array
	Lats *masked.Array
}

func NewDefinition(lons, lats *masked.Array) (*Definition, error) {
	if lons == nil || lats == nil {
		return nil, fmt.Errorf("swath needs both longitudes and latitudes")
	}
	if len(lons.Shape) != 2 || fmt.Sprint(lons.Shape) != fmt.Sprint(lats.Shape) {
		return nil, fmt.Errorf("longitude shape %v and latitude shape %v do not form a swath", lons.Shape, lats.Shape)
	}
	return &Definition{Lons: lons, Lats: lats}, nil
}

func (d *Definition) Shape() []int { return d.Lons.Shape }

// Point returns the (lon, lat) of a pixel and whether both are valid.
func (d *Definition) Point(row, col int) (lon, lat float64, ok bool, err error) {
	lon, lonOK, err := d.Lons.At(row, col)
	if err != nil {
		return 0, 0, false, err
	}
	lat, latOK, err := d.Lats.At(row, col)
	if err != nil {
		return 0, 0, false, err
	}
	return lon, lat, lonOK && latOK, nil
}

// Corners returns the corner pixels clockwise from the first pixel of the
// first scan line, closing the ring.
func (d *Definition) Corners() ([][2]float64, error) {
	rows, cols := d.Lons.Shape[0], d.Lons.Shape[1]
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty swath")
	}
	idx := [][2]int{{0, 0}, {0, cols - 1}, {rows - 1, cols - 1}, {rows - 1, 0}, {0, 0}}
	ring := make([][2]float64, 0, len(idx))
	for _, rc := range idx {
		lon, lat, ok, err := d.Point(rc[0], rc[1])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("pixel (%d, %d): %w", rc[0], rc[1], ErrMaskedCorner)
		}
		ring = append(ring, [2]float64{lon, lat})
	}
	return ring, nil
}

// FootprintWKT returns the corner polygon of the swath as WKT.
func (d *Definition) FootprintWKT() (string, error) {
	ring, err := d.Corners()
	if err != nil {
		return "", err
	}
	wkt := "POLYGON (("
	for i, p := range ring {
		if i > 0 {
			wkt += ","
		}
		wkt += fmt.Sprintf("%f %f", p[0], p[1])
	}
	return wkt + "))", nil
}

// Footprint returns the corner polygon of the swath as a GeoJSON feature.
func (d *Definition) Footprint() (*geo.Feature, error) {
	ring, err := d.Corners()
	if err != nil {
		return nil, err
	}

	geomJSON, err := json.Marshal(map[string]interface{}{
		"type":        "Polygon",
		"coordinates": [][][2]float64{ring},
	})
	if err != nil {
		return nil, err
	}

	var feat geo.Feature
	featJSON := fmt.Sprintf(`{"type": "Feature", "geometry": %s}`, geomJSON)
	if err := json.Unmarshal([]byte(featJSON), &feat); err != nil {
		return nil, fmt.Errorf("Problem unmarshalling footprint: %v", err)
	}
	return &feat, nil
}
