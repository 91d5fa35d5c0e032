package scene

import (
	"bytes"
	"fmt"
	"io"

	"github.com/edisonguo/jet"
)

const ReportTemplate = "swath_report.jet"

// Reporter renders scene summaries with the templates under a directory.
type Reporter struct {
	view *jet.Set
}

func NewReporter(templateDir string) *Reporter {
	view := jet.NewSet(jet.SafeWriter(func(w io.Writer, b []byte) {
		w.Write(b)
	}), templateDir)
	return &Reporter{view: view}
}

type reportRow struct {
	Name  string
	Shape string
	Count int
	Min   string
	Max   string
	Mean  string
}

type reportData struct {
	FullName   string
	Satellite  string
	Instrument string
	Duration   string
	ScanLines  int
	WKT        string
	Rows       []reportRow
}

func (r *Reporter) Write(w io.Writer, sum *Summary) error {
	template, err := r.view.GetTemplate(ReportTemplate)
	if err != nil {
		return fmt.Errorf("report template: %v", err)
	}

	data := &reportData{
		FullName:   sum.FullName,
		Satellite:  sum.Satellite,
		Instrument: sum.Instrument,
		Duration:   sum.Duration,
		ScanLines:  sum.ScanLines,
		WKT:        sum.WKT,
	}
	for _, ds := range sum.Datasets {
		data.Rows = append(data.Rows, reportRow{
			Name:  ds.Name,
			Shape: fmt.Sprintf("%v", ds.Shape),
			Count: ds.Stats.Count,
			Min:   fmt.Sprintf("%.6g", ds.Stats.Min),
			Max:   fmt.Sprintf("%.6g", ds.Stats.Max),
			Mean:  fmt.Sprintf("%.6g", ds.Stats.Mean),
		})
	}

	var buf bytes.Buffer
	vars := make(jet.VarMap)
	vars.Set("start", sum.Start.Format("2006-01-02T15:04:05.000Z"))
	vars.Set("end", sum.End.Format("2006-01-02T15:04:05.000Z"))
	if err := template.Execute(&buf, vars, data); err != nil {
		return fmt.Errorf("report: %v", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
