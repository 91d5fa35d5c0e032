package satin

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nci/oceanl2/hdf"
	"github.com/nci/oceanl2/hdf/hdftest"
)

func TestInventory(t *testing.T) {
	f := &hdftest.MemFile{Attributes: map[string]string{
		AttrStartTime: "2020060130500123",
		AttrEndTime:   "2020060131000456",
	}}
	f.Add("msec", nil, []int{2}, []float64{1, 2}).
		Add("chlor_a", map[string]string{AttrSlope: "1"}, []int{1, 2}, []float64{1, 2}).
		Add("l2_flags", nil, []int{1, 2}, []float64{0, 0})

	o := hdftest.NewMemOpener()
	o.Put("/a.hdf", f)
	c := hdf.NewCountingOpener(o)

	inv, err := Inventory(c, "/a.hdf")
	require.NoError(t, err)
	assert.Equal(t, "/a.hdf", inv.FileName)
	require.NotNil(t, inv.TimeRange)
	assert.Empty(t, inv.TimeError)
	require.Len(t, inv.DataSets, 3)
	assert.Equal(t, "scanline", inv.DataSets[0].Category)
	assert.True(t, inv.DataSets[1].Geophysical)
	assert.Equal(t, "1", inv.DataSets[1].Attributes[AttrSlope])
	assert.True(t, inv.DataSets[2].Auxiliary)
	assert.True(t, c.Counts().Balanced())

	delete(f.Attributes, AttrEndTime)
	inv, err = Inventory(c, "/a.hdf")
	require.NoError(t, err)
	assert.Nil(t, inv.TimeRange)
	assert.Contains(t, inv.TimeError, "End Time")

	_, err = Inventory(c, "/missing.hdf")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
