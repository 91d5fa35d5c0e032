package satin

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nci/oceanl2/hdf"
	"github.com/nci/oceanl2/masked"
	"github.com/nci/oceanl2/metrics"
	"github.com/nci/oceanl2/swath"
	"github.com/nci/oceanl2/utils"
)

// Instrument identifies a sensor with a level-2 reader.
type Instrument string

const MODIS Instrument = "modis"

// Instruments lists every instrument NewLoader must find a reader for.
var Instruments = []Instrument{MODIS}

// Reader loads the level-2 files of one instrument.
type Reader interface {
	LoadProduct(scn Scene, product string, opts utils.Options) (*Channel, error)
	LoadSwath(scn Scene, opts utils.Options) error
	Geolocation(scn Scene, opts utils.Options) (lat, lon *masked.Array, err error)
}

var readerFactories = map[Instrument]func(l *Loader) Reader{
	MODIS: newModisLevel2,
}

// Loader dispatches scenes to the reader of their instrument.
type Loader struct {
	Config  ConfigSource
	Info    *log.Logger
	Error   *log.Logger
	Metrics *metrics.MetricsCollector
	Verbose bool

	opener  *hdf.CountingOpener
	readers map[Instrument]Reader
}

func NewLoader(opener hdf.Opener, config ConfigSource) (*Loader, error) {
	l := &Loader{
		Config:  config,
		Info:    log.New(os.Stdout, "L2: ", log.Ldate|log.Ltime|log.Lshortfile),
		Error:   log.New(os.Stderr, "L2: ", log.Ldate|log.Ltime|log.Lshortfile),
		opener:  hdf.NewCountingOpener(opener),
		readers: make(map[Instrument]Reader, len(Instruments)),
	}

	for _, inst := range Instruments {
		factory, ok := readerFactories[inst]
		if !ok {
			return nil, fmt.Errorf("instrument %s has no reader", inst)
		}
		l.readers[inst] = factory(l)
	}
	return l, nil
}

// Counts returns the file and dataset handles used so far.
func (l *Loader) Counts() hdf.Counts {
	return l.opener.Counts()
}

func (l *Loader) Reader(instrument string) (Reader, error) {
	reader, ok := l.readers[Instrument(instrument)]
	if !ok {
		return nil, &UnsupportedInstrumentError{Instrument: instrument}
	}
	return reader, nil
}

// Options returns the "<instrument>-level3" configuration of the scene.
func (l *Loader) Options(scn Scene) (utils.Options, error) {
	return l.Config.Options(scn.FullName(), scn.InstrumentName()+"-level3")
}

// Load reads the requested geophysical products, then the swath, then any
// requested derived products into scn. A product that fails to load does
// not stop the others; all failures are returned joined.
func (l *Loader) Load(scn Scene) error {
	start := time.Now()
	before := l.Counts()

	var errs []error
	loaded := l.load(scn, &errs)

	if l.Metrics != nil {
		l.Metrics.Reset()
		info := l.Metrics.Info
		info.ReqTime = start.Format(time.RFC3339)
		info.ReqDuration = time.Since(start)
		info.Scene = metrics.SceneInfo{
			FullName:   scn.FullName(),
			Instrument: scn.InstrumentName(),
			TimeSlot:   scn.TimeSlot(),
			Requested:  scn.ChannelsToLoad(),
		}
		opts, err := l.Options(scn)
		if err == nil {
			info.Path, err = opts.Path(scn.TimeSlot())
		}
		if err != nil {
			l.Metrics.AddError("path", err)
		}
		info.Loaded = loaded
		after := l.Counts()
		info.Handles = hdf.Counts{
			Opens:    after.Opens - before.Opens,
			Closes:   after.Closes - before.Closes,
			Selects:  after.Selects - before.Selects,
			Releases: after.Releases - before.Releases,
		}
		for _, err := range errs {
			var pe *ProductLoadError
			if errors.As(err, &pe) {
				l.Metrics.AddError(pe.Product, pe.Err)
			} else {
				l.Metrics.AddError("scene", err)
			}
		}
		l.Metrics.Log()
	}

	return errors.Join(errs...)
}

func (l *Loader) load(scn Scene, errs *[]error) []string {
	reader, err := l.Reader(scn.InstrumentName())
	if err != nil {
		*errs = append(*errs, err)
		return nil
	}

	opts, err := l.Options(scn)
	if err != nil {
		*errs = append(*errs, err)
		return nil
	}

	var loaded []string
	for _, prodname := range scn.ChannelsToLoad() {
		if !IsGeoPhysProduct(prodname) {
			continue
		}
		if _, err := reader.LoadProduct(scn, prodname, opts); err != nil {
			l.Error.Printf("%v", err)
			*errs = append(*errs, err)
			continue
		}
		loaded = append(loaded, prodname)
	}

	if err := reader.LoadSwath(scn, opts); err != nil {
		l.Error.Printf("%v", err)
		*errs = append(*errs, splitJoined(err)...)
	}

	*errs = append(*errs, l.loadDerived(scn)...)

	for _, name := range scn.ChannelsToLoad() {
		if IsGeoPhysProduct(name) {
			continue
		}
		if _, ok := scn.Dataset(name); ok {
			loaded = append(loaded, name)
		}
	}
	return loaded
}

// splitJoined flattens an errors.Join result.
func splitJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// ResolveGeolocation reads the latitude and longitude arrays of the scene's
// file.
func (l *Loader) ResolveGeolocation(scn Scene) (lat, lon *masked.Array, err error) {
	reader, err := l.Reader(scn.InstrumentName())
	if err != nil {
		return nil, nil, err
	}
	opts, err := l.Options(scn)
	if err != nil {
		return nil, nil, err
	}
	return reader.Geolocation(scn, opts)
}

// LookupPoint returns the longitude and latitude of one pixel. ok is false
// when either coordinate is masked at that position.
func (l *Loader) LookupPoint(scn Scene, row, col int) (lon, lat float64, ok bool, err error) {
	latArr, lonArr, err := l.ResolveGeolocation(scn)
	if err != nil {
		return 0, 0, false, err
	}
	def, err := swath.NewDefinition(lonArr, latArr)
	if err != nil {
		return 0, 0, false, err
	}

	shape := def.Shape()
	if row < 0 || row >= shape[0] || col < 0 || col >= shape[1] {
		return 0, 0, false, &PointOutOfRangeError{Row: row, Col: col, Shape: shape}
	}
	return def.Point(row, col)
}
