package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/akostiuk/zoewatch/core/metrics"
	"github.com/akostiuk/zoewatch/infra/logger"
)

// InfluxSink writes watch measurements to an InfluxDB instance using the
// official client.
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

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
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

// RecordCycle writes the cycle summary as a single point.
func (s *InfluxSink) RecordCycle(res coremetrics.CycleResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("watch_cycle").
		AddTag("outcome", res.Outcome).
		AddTag("stage", res.Stage).
		AddField("cycle_id", res.CycleID).
		AddField("changed", res.Changed).
		AddField("duration_ms", res.Duration.Milliseconds()).
		SetTime(res.Time)
	if !res.Date.IsZero() {
		p.AddField("schedule_date", res.Date.Format("2006-01-02"))
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDeliveries writes one point per send attempt.
func (s *InfluxSink) RecordDeliveries(recs []coremetrics.DeliveryResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("watch_delivery").
			AddTag("queue", r.Group).
			AddTag("sent", strconv.FormatBool(r.Sent)).
			AddField("cycle_id", r.CycleID).
			AddField("chat_id", r.ChatID).
			AddField("latency_ms", r.Latency.Milliseconds()).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
