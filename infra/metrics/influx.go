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

	"github.com/sarkarn/parkinglotmgmt/core/logger"
	"github.com/sarkarn/parkinglotmgmt/core/metrics"
	infralogger "github.com/sarkarn/parkinglotmgmt/infra/logger"
)

// Config holds the InfluxDB connection parameters.
type Config struct {
	InfluxURL    string `koanf:"influx_url"`
	InfluxToken  string `koanf:"influx_token"`
	InfluxOrg    string `koanf:"influx_org"`
	InfluxBucket string `koanf:"influx_bucket"`
}

// InfluxSink writes lot samples to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      infralogger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg Config) metrics.Sink {
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
		return metrics.NopSink{}
	}
	return sink
}

// RecordOccupancy writes one point per level.
func (s *InfluxSink) RecordOccupancy(points []metrics.OccupancyPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, o := range points {
		p := write.NewPointWithMeasurement("level_occupancy").
			AddTag("level", strconv.Itoa(o.LevelNumber)).
			AddTag("level_type", o.LevelType).
			AddField("total_spaces", o.TotalSpaces).
			AddField("occupied_spaces", o.OccupiedSpaces).
			AddField("occupancy_rate", o.OccupancyRate).
			SetTime(o.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordFleet writes the aggregated elevator point.
func (s *InfluxSink) RecordFleet(point metrics.FleetPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("elevator_fleet").
		AddField("total_requests", point.Stats.TotalRequests).
		AddField("active_elevators", point.Stats.ActiveElevators).
		AddField("unassigned_requests", point.Stats.UnassignedRequests).
		AddField("urgent_requests", point.Stats.UrgentRequests).
		AddField("average_wait_seconds", point.Stats.AverageWait.Seconds()).
		SetTime(point.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
