package satin

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/nci/oceanl2/hdf"
	"github.com/nci/oceanl2/masked"
)

// ProductResolution is the nominal pixel size of level-2 products, in metres.
const ProductResolution = 1000.0

// Channel is a single product loaded from a level-2 file.
type Channel struct {
	Name       string            `json:"name"`
	Data       *masked.Array     `json:"-"`
	Resolution float64           `json:"resolution"`
	SatID      string            `json:"sat_id"`
	Shape      []int             `json:"shape"`
	Info       map[string]string `json:"-"`

	filled bool
}

func NewChannel(name string) *Channel {
	return &Channel{Name: name, Info: make(map[string]string)}
}

func (c *Channel) IsLoaded() bool {
	return c.filled
}

func (c *Channel) String() string {
	return fmt.Sprintf("'%s: shape %v, resolution %gm'", c.Name, c.Shape, c.Resolution)
}

// Read opens path, keeps its global attributes and decodes the dataset
// named after the channel. Reading again repeats the whole decode.
func (c *Channel) Read(opener hdf.Opener, path string) (err error) {
	c.filled = false

	f, err := opener.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, e)
		}
	}()

	attrs, err := f.Attributes()
	if err != nil {
		return err
	}

	data, err := Decode(f, c.Name)
	if err != nil {
		return err
	}

	c.Info = attrs
	c.Data = data
	c.Shape = data.Shape
	c.filled = true
	return nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	rest := []rune(s[size:])
	for i := range rest {
		rest[i] = unicode.ToLower(rest[i])
	}
	return string(unicode.ToUpper(r)) + string(rest)
}
