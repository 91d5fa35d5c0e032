package satin

import (
	"time"

	"github.com/nci/oceanl2/masked"
	"github.com/nci/oceanl2/swath"
	"github.com/nci/oceanl2/utils"
)

// Scene is the container channels are loaded into.
type Scene interface {
	TimeSlot() time.Time
	InstrumentName() string
	ChannelsToLoad() []string
	// FullName names the scene configuration, e.g. "aqua".
	FullName() string
	SatName() string

	AppendChannel(ch *Channel)
	SetDataset(name string, data *masked.Array)
	Dataset(name string) (*masked.Array, bool)
	SetArea(area *swath.Definition)
	SetTimeRange(tr TimeRange)
	SetScanLines(attrs ScanLineAttributeSet)
}

// ConfigSource provides the options of a configuration section of a scene.
type ConfigSource interface {
	Options(fullName, section string) (utils.Options, error)
}

// DerivedSource is implemented by configuration sources that also define
// derived products.
type DerivedSource interface {
	DerivedProducts(fullName string) ([]utils.DerivedProduct, error)
}
