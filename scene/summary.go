package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	geo "github.com/nci/geometry"

	"github.com/nci/oceanl2/masked"
	"github.com/nci/oceanl2/swath"
)

type DatasetSummary struct {
	Name       string       `json:"name"`
	SatID      string       `json:"sat_id,omitempty"`
	Resolution float64      `json:"resolution,omitempty"`
	Shape      []int        `json:"shape"`
	Stats      masked.Stats `json:"stats"`
}

type Summary struct {
	FullName   string           `json:"full_name"`
	Satellite  string           `json:"satellite"`
	Instrument string           `json:"instrument"`
	TimeSlot   time.Time        `json:"time_slot"`
	Start      time.Time        `json:"start_time"`
	End        time.Time        `json:"end_time"`
	Duration   string           `json:"duration"`
	ScanLines  int              `json:"scan_lines"`
	Datasets   []DatasetSummary `json:"datasets"`
	Footprint  *geo.Feature     `json:"footprint,omitempty"`
	WKT        string           `json:"wkt,omitempty"`

	// NoFootprint says why Footprint is empty for a loaded swath.
	NoFootprint string `json:"no_footprint,omitempty"`
}

// Summary describes what has been loaded into the scene. Channels come
// first in load order, then other datasets sorted by name.
func (s *Scene) Summary() (*Summary, error) {
	sum := &Summary{
		FullName:   s.Name,
		Satellite:  s.Satellite,
		Instrument: s.Instrument,
		TimeSlot:   s.Time,
		Start:      s.TimeRange.Start,
		End:        s.TimeRange.End,
		Duration:   s.TimeRange.Duration().String(),
		ScanLines:  s.ScanLines.Lines(),
	}

	for _, ch := range s.Channels {
		if !ch.IsLoaded() {
			continue
		}
		sum.Datasets = append(sum.Datasets, DatasetSummary{
			Name:       ch.Name,
			SatID:      ch.SatID,
			Resolution: ch.Resolution,
			Shape:      ch.Shape,
			Stats:      ch.Data.Stats(),
		})
	}
	for _, name := range s.DatasetNames() {
		data, _ := s.Dataset(name)
		sum.Datasets = append(sum.Datasets, DatasetSummary{
			Name:  name,
			Shape: data.Shape,
			Stats: data.Stats(),
		})
	}

	if s.Area != nil {
		feat, err := s.Area.Footprint()
		if errors.Is(err, swath.ErrMaskedCorner) {
			sum.NoFootprint = err.Error()
			return sum, nil
		}
		if err != nil {
			return nil, fmt.Errorf("footprint of %s: %v", s.Name, err)
		}
		wkt, err := s.Area.FootprintWKT()
		if err != nil {
			return nil, fmt.Errorf("footprint of %s: %v", s.Name, err)
		}
		sum.Footprint = feat
		sum.WKT = wkt
	}
	return sum, nil
}

func (sum *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}
