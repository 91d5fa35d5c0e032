// Package scene holds the channels, datasets and swath geometry loaded
// from one level-2 file.
package scene

import (
	"sort"
	"sync"
	"time"

	"github.com/nci/oceanl2/masked"
	"github.com/nci/oceanl2/satin"
	"github.com/nci/oceanl2/swath"
)

type Scene struct {
	Name       string
	Satellite  string
	Instrument string
	Time       time.Time
	Requested  []string

	Channels  []*satin.Channel
	Area      *swath.Definition
	TimeRange satin.TimeRange
	ScanLines satin.ScanLineAttributeSet

	mu       sync.RWMutex
	datasets map[string]*masked.Array
}

// New returns an empty scene. fullName selects the configuration file,
// e.g. "aqua" for etc/aqua.yaml.
func New(fullName, satName, instrument string, timeSlot time.Time, channels []string) *Scene {
	return &Scene{
		Name:       fullName,
		Satellite:  satName,
		Instrument: instrument,
		Time:       timeSlot,
		Requested:  channels,
		datasets:   make(map[string]*masked.Array),
	}
}

func (s *Scene) TimeSlot() time.Time      { return s.Time }
func (s *Scene) InstrumentName() string   { return s.Instrument }
func (s *Scene) ChannelsToLoad() []string { return s.Requested }
func (s *Scene) FullName() string         { return s.Name }
func (s *Scene) SatName() string          { return s.Satellite }

func (s *Scene) AppendChannel(ch *satin.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Channels = append(s.Channels, ch)
}

func (s *Scene) SetDataset(name string, data *masked.Array) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = data
}

// Dataset returns a dataset set by SetDataset, or the data of a loaded
// channel of that name.
func (s *Scene) Dataset(name string) (*masked.Array, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.datasets[name]; ok {
		return data, true
	}
	for _, ch := range s.Channels {
		if ch.Name == name && ch.IsLoaded() {
			return ch.Data, true
		}
	}
	return nil, false
}

// DatasetNames returns the names given to SetDataset, sorted.
func (s *Scene) DatasetNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scene) Channel(name string) *satin.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.Channels {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

func (s *Scene) SetArea(area *swath.Definition) { s.Area = area }

func (s *Scene) SetTimeRange(tr satin.TimeRange) { s.TimeRange = tr }

func (s *Scene) SetScanLines(attrs satin.ScanLineAttributeSet) { s.ScanLines = attrs }
