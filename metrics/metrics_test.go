package metrics

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nci/oceanl2/hdf"
)

type recordingLogger struct {
	infos []*MetricsInfo
}

func (l *recordingLogger) Log(info *MetricsInfo) {
	l.infos = append(l.infos, info)
}

func TestMetricsCollector(t *testing.T) {
	logger := &recordingLogger{}
	m := NewMetricsCollector(logger)

	m.Info.Scene = SceneInfo{FullName: "aqua", Instrument: "modis", TimeSlot: time.Date(2020, 2, 29, 13, 5, 0, 0, time.UTC)}
	m.Info.Loaded = []string{"poc", "chlor_a"}
	m.Info.Handles = hdf.Counts{Opens: 2, Closes: 2, Selects: 5, Releases: 5}
	m.AddError("Rrs_412", errors.New("no slope"))
	m.Log()

	require.Len(t, logger.infos, 1)

	out, err := logger.infos[0].ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, []interface{}{"chlor_a", "poc"}, decoded["loaded"])
	assert.Equal(t, map[string]interface{}{"Rrs_412": "no slope"}, decoded["errors"])

	m.Reset()
	assert.Empty(t, m.Info.Loaded)
	assert.Nil(t, m.Info.Errors)
}

func TestFileLoggerRotation(t *testing.T) {
	dir := t.TempDir()
	logger := NewFileLogger(dir, 1, 10, false)

	for i := 0; i < 3; i++ {
		logger.Log(&MetricsInfo{Path: "/data/a.hdf"})
	}
	logger.Close()

	files, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	content, err := ioutil.ReadFile(filepath.Join(dir, "load0"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "\n"))
	assert.Contains(t, string(content), `"path":"/data/a.hdf"`)
}
