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

	coremetrics "github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/infra/logger"
)

var (
	_ coremetrics.FailureRecorder    = (*InfluxSink)(nil)
	_ coremetrics.SavedGroupRecorder = (*InfluxSink)(nil)
	_ coremetrics.Flusher            = (*InfluxSink)(nil)
)

// InfluxConfig configures InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes matching outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
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

// RecordMatch writes one match_request point.
func (s *InfluxSink) RecordMatch(rec coremetrics.MatchRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("match_request").
		AddTag("company_id", rec.CompanyID).
		AddTag("industry", rec.Industry).
		AddTag("cache_hit", strconv.FormatBool(rec.CacheHit)).
		AddField("candidates", rec.Candidates).
		AddField("matches", rec.Matches).
		AddField("rejected_industry", rec.RejectedIndustry).
		AddField("rejected_weight", rec.RejectedWeight).
		AddField("rejected_bracket", rec.RejectedBracket).
		AddField("group_weight_kg", round3(rec.GroupWeightKg)).
		AddField("total_cost", round3(rec.TotalCost)).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFailure writes a failure point.
func (s *InfluxSink) RecordFailure(rec coremetrics.FailureRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("match_failure").
		AddTag("stage", rec.Stage).
		AddTag("op", rec.Op).
		AddField("error", rec.Err).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSavedGroup writes a persisted group point.
func (s *InfluxSink) RecordSavedGroup(rec coremetrics.SavedGroupRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("load_group_saved").
		AddTag("group_id", rec.GroupID).
		AddField("participants", rec.Participants).
		AddField("total_weight_kg", round3(rec.TotalWeightKg)).
		AddField("total_cost", round3(rec.TotalCost)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Flush releases the client. Writes are blocking so nothing is pending.
func (s *InfluxSink) Flush() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
