package metrics

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/nci/oceanl2/hdf"
)

type SceneInfo struct {
	FullName   string    `json:"full_name"`
	Instrument string    `json:"instrument"`
	TimeSlot   time.Time `json:"time_slot"`
	Requested  []string  `json:"requested"`
}

type MetricsInfo struct {
	ReqTime     string            `json:"req_time"`
	ReqDuration time.Duration     `json:"req_duration"`
	Scene       SceneInfo         `json:"scene"`
	Path        string            `json:"path"`
	Loaded      []string          `json:"loaded"`
	Errors      map[string]string `json:"errors,omitempty"`
	Handles     hdf.Counts        `json:"handles"`
}

type MetricsCollector struct {
	Info   *MetricsInfo
	logger Logger
}

func NewMetricsCollector(logger Logger) *MetricsCollector {
	return &MetricsCollector{
		Info:   &MetricsInfo{},
		logger: logger,
	}
}

// Reset starts a new record.
func (m *MetricsCollector) Reset() {
	m.Info = &MetricsInfo{}
}

func (m *MetricsCollector) AddError(name string, err error) {
	if m.Info.Errors == nil {
		m.Info.Errors = make(map[string]string)
	}
	m.Info.Errors[name] = err.Error()
}

func (m *MetricsCollector) Log() {
	if m.logger != nil {
		m.logger.Log(m.Info)
	}
}

func (i *MetricsInfo) ToJSON() (string, error) {
	sort.Strings(i.Loaded)

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(i); err != nil {
		return "", err
	}
	return buf.String(), nil
}
