package hdf

import "sync/atomic"

// Counts is a snapshot of the handle operations seen by a CountingOpener.
type Counts struct {
	Opens    int64 `json:"opens"`
	Closes   int64 `json:"closes"`
	Selects  int64 `json:"selects"`
	Releases int64 `json:"releases"`
}

// Balanced reports whether every open and select has been matched by a
// close and release.
func (c Counts) Balanced() bool {
	return c.Opens == c.Closes && c.Selects == c.Releases
}

// CountingOpener wraps an Opener and records successful handle
// acquisitions and releases.
type CountingOpener struct {
	Opener Opener

	opens, closes, selects, releases int64
}

func NewCountingOpener(opener Opener) *CountingOpener {
	return &CountingOpener{Opener: opener}
}

func (c *CountingOpener) Open(path string) (File, error) {
	f, err := c.Opener.Open(path)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&c.opens, 1)
	return &countingFile{File: f, counter: c}, nil
}

func (c *CountingOpener) Counts() Counts {
	return Counts{
		Opens:    atomic.LoadInt64(&c.opens),
		Closes:   atomic.LoadInt64(&c.closes),
		Selects:  atomic.LoadInt64(&c.selects),
		Releases: atomic.LoadInt64(&c.releases),
	}
}

type countingFile struct {
	File
	counter *CountingOpener
}

func (f *countingFile) Select(name string) (Dataset, error) {
	ds, err := f.File.Select(name)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&f.counter.selects, 1)
	return &countingDataset{Dataset: ds, counter: f.counter}, nil
}

func (f *countingFile) Close() error {
	err := f.File.Close()
	if err == nil {
		atomic.AddInt64(&f.counter.closes, 1)
	}
	return err
}

type countingDataset struct {
	Dataset
	counter *CountingOpener
}

func (d *countingDataset) EndAccess() error {
	err := d.Dataset.EndAccess()
	if err == nil {
		atomic.AddInt64(&d.counter.releases, 1)
	}
	return err
}
