package hdf_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nci/oceanl2/hdf"
	"github.com/nci/oceanl2/hdf/hdftest"
)

func newOpener() *hdftest.MemOpener {
	o := hdftest.NewMemOpener()
	f := &hdftest.MemFile{Attributes: map[string]string{"Start Time": "2020060000000000"}}
	f.Add("chlor_a", map[string]string{"slope": "1"}, []int{1, 2}, []float64{1, 2})
	o.Put("/data/a.hdf", f)
	return o
}

func TestCountingOpenerBalanced(t *testing.T) {
	c := hdf.NewCountingOpener(newOpener())

	f, err := c.Open("/data/a.hdf")
	require.NoError(t, err)

	ds, err := f.Select("chlor_a")
	require.NoError(t, err)

	arr, err := ds.Read()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, arr.Shape)

	assert.False(t, c.Counts().Balanced())
	require.NoError(t, ds.EndAccess())
	require.NoError(t, f.Close())

	counts := c.Counts()
	assert.Equal(t, hdf.Counts{Opens: 1, Closes: 1, Selects: 1, Releases: 1}, counts)
	assert.True(t, counts.Balanced())
}

func TestCountingOpenerFailures(t *testing.T) {
	c := hdf.NewCountingOpener(newOpener())

	_, err := c.Open("/data/missing.hdf")
	assert.Error(t, err)

	f, err := c.Open("/data/a.hdf")
	require.NoError(t, err)

	_, err = f.Select("poc")
	assert.True(t, errors.Is(err, hdf.ErrNotFound))

	ds, err := f.Select("chlor_a")
	require.NoError(t, err)
	require.NoError(t, ds.EndAccess())
	assert.True(t, errors.Is(ds.EndAccess(), hdf.ErrReleased))
	require.NoError(t, f.Close())

	assert.Equal(t, hdf.Counts{Opens: 1, Closes: 1, Selects: 1, Releases: 1}, c.Counts())
}

func TestMemFileCloseWithSelectedDataset(t *testing.T) {
	o := newOpener()
	f, err := o.Open("/data/a.hdf")
	require.NoError(t, err)

	_, err = f.Select("chlor_a")
	require.NoError(t, err)
	assert.Error(t, f.Close())
	assert.Equal(t, []string{"/data/a.hdf"}, o.Paths())
}

func TestNewArray(t *testing.T) {
	arr, err := hdf.NewArray([]int{1, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, arr.Shape)

	arr, err = hdf.NewArray([]int{3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, arr.Shape)

	arr, err = hdf.NewArray([]int{0, 1354}, nil)
	require.NoError(t, err)
	assert.Empty(t, arr.Data)

	_, err = hdf.NewArray([]int{2, 2}, []float64{1, 2, 3})
	assert.Error(t, err)
	_, err = hdf.NewArray(nil, []float64{1})
	assert.Error(t, err)
	_, err = hdf.NewArray([]int{-1}, nil)
	assert.Error(t, err)
}

func TestMemFileShapeMismatch(t *testing.T) {
	o := hdftest.NewMemOpener()
	f := &hdftest.MemFile{}
	f.Add("msec", nil, []int{3}, []float64{1, 2})
	o.Put("/bad.hdf", f)

	file, err := o.Open("/bad.hdf")
	require.NoError(t, err)
	ds, err := file.Select("msec")
	require.NoError(t, err)
	_, err = ds.Read()
	assert.Error(t, err)
	require.NoError(t, ds.EndAccess())
	require.NoError(t, file.Close())
}
