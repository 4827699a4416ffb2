// Package gantt renders a solution as an HTML Gantt chart: one horizontal
// row per machine with set-up, operation and tear-down segments.
package gantt

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/greenshop/core/solution"
)

// Kind tells what a segment shows.
type Kind string

const (
	KindSetup     Kind = "set up"
	KindOperation Kind = "operation"
	KindTeardown  Kind = "tear down"
)

// Segment is one bar of a machine row.
type Segment struct {
	Kind  Kind
	Label string
	JobID int
	Start int
	End   int
}

// Row holds the segments of one machine sorted by start.
type Row struct {
	MachineID int
	Segments  []Segment
}

var (
	setupColor    = "#9e9e9e"
	teardownColor = "#616161"
	jobColors     = []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#bcbd22", "#17becf", "#7f7f7f",
	}
)

// Rows extracts the segments of every machine. A set-up covers
// [start, start+set_up_time) of each on-interval and a tear-down covers
// [stop, stop+tear_down_time).
func Rows(s *solution.Solution) []Row {
	rows := make([]Row, 0, len(s.Machines()))
	for _, m := range s.Machines() {
		r := Row{MachineID: m.ID()}
		starts, stops := m.StartTimes(), m.StopTimes()
		for i := range starts {
			r.Segments = append(r.Segments,
				Segment{Kind: KindSetup, Label: "set up", JobID: -1, Start: starts[i], End: starts[i] + m.SetupTime()},
				Segment{Kind: KindTeardown, Label: "tear down", JobID: -1, Start: stops[i], End: stops[i] + m.TeardownTime()},
			)
		}
		for _, op := range m.ScheduledOperations() {
			r.Segments = append(r.Segments, Segment{
				Kind:  KindOperation,
				Label: fmt.Sprintf("O%d_J%d", op.ID(), op.JobID()),
				JobID: op.JobID(),
				Start: op.StartTime(),
				End:   op.EndTime(),
			})
		}
		slices.SortStableFunc(r.Segments, func(a, b Segment) int { return cmp.Compare(a.Start, b.Start) })
		rows = append(rows, r)
	}
	return rows
}

// Chart builds a stacked horizontal bar chart. Series k carries the k-th
// bar of every row; gaps are drawn as transparent bars.
func Chart(s *solution.Solution) *charts.Bar {
	rows := Rows(s)
	labels := make([]string, len(rows))
	// layers[k][r] is the k-th bar of row r.
	var layers [][]opts.BarData
	for r, row := range rows {
		labels[r] = fmt.Sprintf("M%d", row.MachineID)
		cursor, k := 0, 0
		put := func(d opts.BarData) {
			for len(layers) <= k {
				layers = append(layers, make([]opts.BarData, len(rows)))
			}
			layers[k][r] = d
			k++
		}
		for _, seg := range row.Segments {
			start := max(seg.Start, cursor)
			if seg.End <= start {
				continue
			}
			if start > cursor {
				put(opts.BarData{Value: start - cursor, ItemStyle: &opts.ItemStyle{Color: "transparent"}})
			}
			put(opts.BarData{
				Name:      seg.Label,
				Value:     seg.End - start,
				ItemStyle: &opts.ItemStyle{Color: color(seg)},
			})
			cursor = seg.End
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Schedule %s", s.Instance().Name()),
			Subtitle: fmt.Sprintf("cmax %d, energy %d", s.Cmax(), s.TotalEnergyConsumption()),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "machine"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "time"}),
	)
	bar.SetXAxis(labels)
	for k, layer := range layers {
		for r := range layer {
			if layer[r].Value == nil {
				layer[r] = opts.BarData{Value: 0}
			}
		}
		bar.AddSeries(fmt.Sprintf("layer %d", k), layer, charts.WithBarChartOpts(opts.BarChart{Stack: "gantt"}))
	}
	bar.XYReversal()
	return bar
}

// Render writes the chart page to w.
func Render(w io.Writer, s *solution.Solution) error {
	if err := Chart(s).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// HTML returns the chart page as a string.
func HTML(s *solution.Solution) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func color(seg Segment) string {
	switch seg.Kind {
	case KindSetup:
		return setupColor
	case KindTeardown:
		return teardownColor
	default:
		return jobColors[seg.JobID%len(jobColors)]
	}
}
