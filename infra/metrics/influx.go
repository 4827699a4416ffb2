package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/greenshop/core/events"
	coremetrics "github.com/kilianp07/greenshop/core/metrics"
	"github.com/kilianp07/greenshop/infra/logger"
)

// InfluxSink writes runs and search progress to an InfluxDB instance.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one heuristic_run point.
func (s *InfluxSink) RecordRun(r coremetrics.RunResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("heuristic_run").
		AddTag("heuristic", r.Heuristic).
		AddTag("instance", r.Instance).
		AddTag("feasible", strconv.FormatBool(r.Feasible))
	if r.RunID != "" {
		p = p.AddTag("run_id", r.RunID)
	}
	p = p.AddField("cmax", r.Cmax).
		AddField("energy", r.Energy).
		AddField("mean_processing_time", round3(r.MeanProcessingTime)).
		AddField("iterations", r.Iterations).
		AddField("evaluations", r.Evaluations).
		AddField("duration_ms", round3(float64(r.Duration)/float64(time.Millisecond))).
		SetTime(r.Time)
	if r.Feasible {
		p = p.AddField("evaluate", r.Evaluate)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSearchEvent writes one search_event point.
func (s *InfluxSink) RecordSearchEvent(e events.SearchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("search_event").
		AddTag("heuristic", e.Heuristic).
		AddTag("instance", e.Instance).
		AddTag("kind", string(e.Kind))
	if e.RunID != "" {
		p = p.AddTag("run_id", e.RunID)
	}
	p = p.AddField("iteration", e.Iteration).
		AddField("evaluations", e.Evaluations).
		AddField("elapsed_ms", round3(float64(e.Elapsed)/float64(time.Millisecond))).
		SetTime(e.Time)
	if e.Feasible {
		p = p.AddField("evaluate", e.Evaluate)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
