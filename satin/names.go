package satin

// Dataset names of NASA ocean-colour level-2 files.
var (
	ScanLineAttrs = []string{"year", "day", "msec",
		"slat", "slon", "clat", "clon",
		"elat", "elon", "csol_z"}

	GeoPhysProducts = []string{"aot_869", "chlor_a",
		"poc", "cdom_index", "angstrom",
		"pic", "par",
		"nflh", "ipar", "Kd_490"}

	Channels = []string{"Rrs_412", "Rrs_443", "Rrs_469", "Rrs_488", "Rrs_531",
		"Rrs_547", "Rrs_555", "Rrs_645", "Rrs_667", "Rrs_678"}

	// flags and quality, the latter two only in SST products
	FlagsQuality = []string{"l2_flags", "qual_sst", "qual_sst4"}

	SensorBandParams = []string{"wavelength", "F0", "vcal_offset", "vcal_gain", "Tau_r", "k_oz"}

	// navigation control points and tilt, no lon/lat
	NavigationTilt = []string{"tilt", "cntl_pt_cols", "cntl_pt_rows"}

	LonLat = []string{"longitude", "latitude"}
)

// Category is the static class of a dataset name.
type Category int

const (
	Other Category = iota
	ScanLine
	Geolocation
	Product
)

func (c Category) String() string {
	switch c {
	case ScanLine:
		return "scanline"
	case Geolocation:
		return "geolocation"
	case Product:
		return "product"
	default:
		return "other"
	}
}

type nameInfo struct {
	category    Category
	geophysical bool
	auxiliary   bool
}

var nameTable = buildNameTable()

func buildNameTable() map[string]nameInfo {
	table := make(map[string]nameInfo)
	for _, n := range ScanLineAttrs {
		table[n] = nameInfo{category: ScanLine}
	}
	for _, n := range LonLat {
		table[n] = nameInfo{category: Geolocation}
	}
	for _, n := range Channels {
		table[n] = nameInfo{category: Product}
	}
	for _, n := range GeoPhysProducts {
		table[n] = nameInfo{category: Product, geophysical: true}
	}
	for _, list := range [][]string{FlagsQuality, SensorBandParams, NavigationTilt} {
		for _, n := range list {
			table[n] = nameInfo{category: Other, auxiliary: true}
		}
	}
	return table
}

// Classify returns the category of a dataset name. Unknown names are Other.
func Classify(name string) Category {
	return nameTable[name].category
}

// IsGeoPhysProduct reports whether name is loaded by the product loader
// rather than the swath loader.
func IsGeoPhysProduct(name string) bool {
	return nameTable[name].geophysical
}

// IsAuxiliary reports whether name is a recognised flag, sensor band or
// navigation dataset. These are never decoded.
func IsAuxiliary(name string) bool {
	return nameTable[name].auxiliary
}
