package scene

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	geo "github.com/nci/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nci/oceanl2/hdf/hdftest"
	"github.com/nci/oceanl2/masked"
	"github.com/nci/oceanl2/satin"
	"github.com/nci/oceanl2/swath"
)

func testScene(t *testing.T) *Scene {
	o := hdftest.NewMemOpener()
	f := &hdftest.MemFile{Attributes: map[string]string{}}
	f.Add("chlor_a", map[string]string{"bad_value_scaled": "-1", "slope": "1", "intercept": "0"},
		[]int{2, 2}, []float64{1, 3, -1, 2})
	o.Put("/a.hdf", f)

	scn := New("aqua", "aqua", "modis", time.Date(2020, 2, 29, 13, 5, 0, 0, time.UTC), []string{"chlor_a", "Rrs_443"})

	ch := satin.NewChannel("chlor_a")
	require.NoError(t, ch.Read(o, "/a.hdf"))
	ch.SatID = "Aqua"
	ch.Resolution = satin.ProductResolution
	scn.AppendChannel(ch)
	scn.AppendChannel(satin.NewChannel("poc"))

	scn.SetDataset("Rrs_443", masked.New([]int{2, 2}, []float64{0.5, 0.5, 0.5, 0.5}))

	lons := masked.New([]int{2, 2}, []float64{10, 12, 10.5, 12.5})
	lats := masked.New([]int{2, 2}, []float64{50, 50.2, 49, 49.2})
	area, err := swath.NewDefinition(lons, lats)
	require.NoError(t, err)
	scn.SetArea(area)

	scn.SetTimeRange(satin.TimeRange{
		Start: time.Date(2020, 2, 29, 13, 5, 0, 123e6, time.UTC),
		End:   time.Date(2020, 2, 29, 13, 10, 0, 0, time.UTC),
	})
	scn.SetScanLines(satin.ScanLineAttributeSet{"msec": {Data: []float64{1, 2}}})
	return scn
}

func TestSceneDatasets(t *testing.T) {
	scn := testScene(t)

	var _ satin.Scene = scn

	data, ok := scn.Dataset("chlor_a")
	require.True(t, ok)
	assert.Equal(t, []bool{false, false, true, false}, data.Mask)

	_, ok = scn.Dataset("poc")
	assert.False(t, ok, "unloaded channel")

	_, ok = scn.Dataset("Rrs_443")
	assert.True(t, ok)
	assert.Equal(t, []string{"Rrs_443"}, scn.DatasetNames())
	assert.Nil(t, scn.Channel("sst"))
}

func TestSummary(t *testing.T) {
	sum, err := testScene(t).Summary()
	require.NoError(t, err)

	require.Len(t, sum.Datasets, 2)
	assert.Equal(t, "chlor_a", sum.Datasets[0].Name)
	assert.Equal(t, 3, sum.Datasets[0].Stats.Count)
	assert.Equal(t, 1.0, sum.Datasets[0].Stats.Min)
	assert.Equal(t, 3.0, sum.Datasets[0].Stats.Max)
	assert.Equal(t, 2.0, sum.Datasets[0].Stats.Mean)
	assert.Equal(t, "Rrs_443", sum.Datasets[1].Name)
	assert.Equal(t, 2, sum.ScanLines)
	assert.Equal(t, "4m59.877s", sum.Duration)

	require.NotNil(t, sum.Footprint)
	poly, ok := sum.Footprint.Geometry.(*geo.Polygon)
	require.True(t, ok)
	assert.NotNil(t, poly)
	assert.Equal(t, "POLYGON ((10.000000 50.000000,12.000000 50.200000,12.500000 49.200000,10.500000 49.000000,10.000000 50.000000))", sum.WKT)

	var buf bytes.Buffer
	require.NoError(t, sum.WriteJSON(&buf))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "aqua", decoded["full_name"])
	assert.Equal(t, "2020-02-29T13:05:00.123Z", decoded["start_time"])
}

func TestSummaryMaskedCorner(t *testing.T) {
	scn := testScene(t)
	scn.Area.Lats.Mask[0] = true

	sum, err := scn.Summary()
	require.NoError(t, err)
	assert.Nil(t, sum.Footprint)
	assert.Empty(t, sum.WKT)
	assert.Contains(t, sum.NoFootprint, "pixel (0, 0)")
	assert.Len(t, sum.Datasets, 2)

	var buf bytes.Buffer
	require.NoError(t, NewReporter("../templates").Write(&buf, sum))
	assert.NotContains(t, buf.String(), "footprint:")
	assert.Contains(t, buf.String(), "chlor_a [2 2]")
}

func TestSummaryWithoutArea(t *testing.T) {
	scn := New("terra", "terra", "modis", time.Time{}, nil)
	sum, err := scn.Summary()
	require.NoError(t, err)
	assert.Nil(t, sum.Footprint)
	assert.Empty(t, sum.WKT)
	assert.Empty(t, sum.Datasets)
}

func TestReporter(t *testing.T) {
	sum, err := testScene(t).Summary()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewReporter("../templates").Write(&buf, sum))

	out := buf.String()
	assert.Contains(t, out, "aqua aqua/modis")
	assert.Contains(t, out, "time range: 2020-02-29T13:05:00.123Z .. 2020-02-29T13:10:00.000Z")
	assert.Contains(t, out, "footprint: POLYGON ((10.000000 50.000000")
	assert.Contains(t, out, "chlor_a [2 2] valid=3 min=1 max=3 mean=2")
	assert.Contains(t, out, "Rrs_443 [2 2] valid=4 min=0.5 max=0.5 mean=0.5")
}

func TestReporterMissingTemplate(t *testing.T) {
	sum, err := New("terra", "terra", "modis", time.Time{}, nil).Summary()
	require.NoError(t, err)
	assert.Error(t, NewReporter(t.TempDir()).Write(&bytes.Buffer{}, sum))
}
