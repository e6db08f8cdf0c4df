package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/mandelbench/mandelbench/pkg/types"
)

// Metric names written by this package.
const (
	MetricDuration = "mandelbench_eval_duration_seconds"
	MetricMin      = "mandelbench_eval_min_seconds"
	MetricMax      = "mandelbench_eval_max_seconds"
	MetricInSet    = "mandelbench_in_set_cells"
	MetricCells    = "mandelbench_grid_cells"
	MetricMaxIter  = "mandelbench_max_iter"
	MetricSpeedup  = "mandelbench_speedup_ratio"
	MetricAgree    = "mandelbench_methods_agree"
)

// Label names.
const (
	LabelReport = "report"
	LabelRegion = "region"
	LabelMethod = "method"
)

// Families converts reports into metric families sorted by name.
func Families(reps ...*types.Report) []*dto.MetricFamily {
	fams := map[string]*dto.MetricFamily{}
	family := func(name, help string, typ dto.MetricType) *dto.MetricFamily {
		mf, ok := fams[name]
		if !ok {
			mf = &dto.MetricFamily{Name: proto.String(name), Help: proto.String(help), Type: typ.Enum()}
			fams[name] = mf
		}
		return mf
	}
	gauge := func(name, help string, v float64, labels ...*dto.LabelPair) {
		mf := family(name, help, dto.MetricType_GAUGE)
		mf.Metric = append(mf.Metric, &dto.Metric{Label: labels, Gauge: &dto.Gauge{Value: proto.Float64(v)}})
	}

	for _, rep := range reps {
		base := []*dto.LabelPair{label(LabelReport, rep.ID), label(LabelRegion, regionOf(rep))}

		gauge(MetricCells, "Number of cells in the evaluated grid.", float64(rep.Width*rep.Height), base...)
		gauge(MetricMaxIter, "Iteration cap of the benchmark.", float64(rep.MaxIter), base...)

		for _, res := range rep.Results {
			labels := append(append([]*dto.LabelPair(nil), base...), label(LabelMethod, res.Method))

			var sum float64
			for _, s := range res.Samples {
				sum += s.Seconds()
			}
			mf := family(MetricDuration, "Wall-clock time of one grid evaluation.", dto.MetricType_SUMMARY)
			mf.Metric = append(mf.Metric, &dto.Metric{
				Label: labels,
				Summary: &dto.Summary{
					SampleCount: proto.Uint64(uint64(len(res.Samples))),
					SampleSum:   proto.Float64(sum),
					Quantile: []*dto.Quantile{
						{Quantile: proto.Float64(0.5), Value: proto.Float64(res.Median.Seconds())},
					},
				},
			})

			gauge(MetricMin, "Fastest grid evaluation.", res.Min.Seconds(), labels...)
			gauge(MetricMax, "Slowest grid evaluation.", res.Max.Seconds(), labels...)
			gauge(MetricInSet, "Cells that reached the iteration cap.", float64(res.InSet), labels...)
		}

		if s, ok := rep.Speedup(); ok {
			gauge(MetricSpeedup, "Naive median divided by batched median.", s, base...)
		}
		if rep.Agree != nil {
			v := 0.0
			if *rep.Agree {
				v = 1
			}
			gauge(MetricAgree, "1 if every evaluator produced the same grid.", v, base...)
		}
	}

	out := make([]*dto.MetricFamily, 0, len(fams))
	for _, mf := range fams {
		out = append(out, mf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// WriteText writes reports to w in the Prometheus text format.
func WriteText(w io.Writer, reps ...*types.Report) error {
	for _, mf := range Families(reps...) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("report: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes rep to path, creating parent directories. The file is
// written to a temporary name first and renamed into place so a textfile
// collector never reads a partial file.
func WriteFile(path string, rep *types.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mandelbench-*.prom")
	if err != nil {
		return fmt.Errorf("report: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := WriteText(tmp, rep); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("report: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("report: rename: %w", err)
	}
	return nil
}

// Parse decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned.
func Parse(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("report: parse prometheus text: %w", err)
	}
	return mfs, nil
}

// PreviousMedians reads a report file written by WriteFile and returns the
// median duration per method. A missing file yields an empty map and no
// error.
func PreviousMedians(path string) (map[string]time.Duration, error) {
	mfs, err := readPrevious(path)
	if err != nil {
		return nil, err
	}

	out := map[string]time.Duration{}
	for _, m := range mfs[MetricDuration].GetMetric() {
		method := labelValue(m, LabelMethod)
		for _, q := range m.GetSummary().GetQuantile() {
			if q.GetQuantile() == 0.5 {
				out[method] = time.Duration(q.GetValue() * float64(time.Second))
			}
		}
	}
	return out, nil
}

// PreviousSpeedup returns the speedup recorded in a report file written by
// WriteFile. ok is false when the file is missing or holds no speedup.
func PreviousSpeedup(path string) (speedup float64, ok bool, err error) {
	mfs, err := readPrevious(path)
	if err != nil {
		return 0, false, err
	}
	speedup, ok = Value(mfs[MetricSpeedup], nil)
	return speedup, ok, nil
}

func readPrevious(path string) (map[string]*dto.MetricFamily, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*dto.MetricFamily{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("report: open previous: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Value returns the value of the first counter, gauge or untyped metric in mf
// whose labels include every pair in match.
func Value(mf *dto.MetricFamily, match map[string]string) (float64, bool) {
	for _, m := range mf.GetMetric() {
		if !matches(m, match) {
			continue
		}
		switch {
		case m.Gauge != nil:
			return m.Gauge.GetValue(), true
		case m.Counter != nil:
			return m.Counter.GetValue(), true
		case m.Untyped != nil:
			return m.Untyped.GetValue(), true
		}
	}
	return 0, false
}

func matches(m *dto.Metric, match map[string]string) bool {
	for k, v := range match {
		if labelValue(m, k) != v {
			return false
		}
	}
	return true
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func regionOf(rep *types.Report) string {
	if rep.Region == "" {
		return "custom"
	}
	return rep.Region
}
