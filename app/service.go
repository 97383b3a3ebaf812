// Package app wires the configured lot, elevator fleet, reservation manager
// and infrastructure into one runnable service.
package app

import (
	"context"
	"fmt"

	"github.com/sarkarn/parkinglotmgmt/config"
	"github.com/sarkarn/parkinglotmgmt/core/elevator"
	"github.com/sarkarn/parkinglotmgmt/core/events"
	"github.com/sarkarn/parkinglotmgmt/core/logger"
	"github.com/sarkarn/parkinglotmgmt/core/lot"
	coremetrics "github.com/sarkarn/parkinglotmgmt/core/metrics"
	"github.com/sarkarn/parkinglotmgmt/core/notify"
	"github.com/sarkarn/parkinglotmgmt/core/reservation"
	"github.com/sarkarn/parkinglotmgmt/core/scheduler"
	"github.com/sarkarn/parkinglotmgmt/core/strategy"
	infralogger "github.com/sarkarn/parkinglotmgmt/infra/logger"
	inframetrics "github.com/sarkarn/parkinglotmgmt/infra/metrics"
	"github.com/sarkarn/parkinglotmgmt/infra/mqtt"
	"github.com/sarkarn/parkinglotmgmt/internal/clock"
	"github.com/sarkarn/parkinglotmgmt/internal/eventbus"
)

// Service owns the assembled core and its periodic drivers.
type Service struct {
	Lot          *lot.ParkingLot
	Elevators    *elevator.Manager
	Reservations *reservation.Manager

	cfg      *config.Config
	bus      *eventbus.Bus[events.Event]
	sink     coremetrics.Sink
	sched    *scheduler.Scheduler
	notifier notify.Notifier
	mqttConn *mqtt.Notifier
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	infralogger.SetLevel(cfg.Logging.Level)
	logg := infralogger.New("service")
	clk := clock.System{}
	bus := eventbus.New[events.Event]()

	elevMgr, err := elevator.NewManager(clk, infralogger.New("elevator"), bus)
	if err != nil {
		return nil, fmt.Errorf("elevator manager: %w", err)
	}
	for _, ec := range cfg.Elevators {
		elevMgr.AddElevator(elevator.NewElevator(ec.ID, ec.ServedLevels, ec.Capacity, ec.VanCompatible, ec.InitialFloor))
	}

	lots, err := lot.New(cfg.BuildLevels(), strategy.NewRegistry(), elevMgr, infralogger.New("lot"))
	if err != nil {
		return nil, fmt.Errorf("parking lot: %w", err)
	}

	var notifier notify.Notifier = notify.BusNotifier{Bus: bus}
	var mqttConn *mqtt.Notifier
	if cfg.Notifier.MQTTEnabled {
		mqttConn, err = mqtt.NewNotifier(cfg.Notifier.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = mqttConn
	}

	policy := reservation.Policy{
		MinDuration: cfg.Policy.MinDuration,
		MaxDuration: cfg.Policy.MaxDuration,
		MaxAdvance:  cfg.Policy.MaxAdvance,
		GracePeriod: cfg.Policy.GracePeriod,
	}
	if policy == (reservation.Policy{}) {
		policy = reservation.DefaultPolicy()
	}
	resMgr, err := reservation.NewManager(policy, lots, clk, infralogger.New("reservation"), notifier, bus)
	if err != nil {
		return nil, fmt.Errorf("reservation manager: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := inframetrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, inframetrics.NewInfluxSinkWithFallback(cfg.Metrics.Influx))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	sched, err := scheduler.New(cfg.Scheduler, elevMgr, resMgr, infralogger.New("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	return &Service{
		Lot:          lots,
		Elevators:    elevMgr,
		Reservations: resMgr,
		cfg:          cfg,
		bus:          bus,
		sink:         sink,
		sched:        sched,
		notifier:     notifier,
		mqttConn:     mqttConn,
		log:          logg,
	}, nil
}

// Run starts the periodic drivers and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	inframetrics.StartCollector(ctx, s.cfg.Metrics.SampleInterval, s.Lot, s.Elevators, s.sink, s.log)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := inframetrics.ServeScrapes(ctx, s.cfg.Metrics.PrometheusAddr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.sched.Run(ctx)
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.mqttConn != nil {
		s.mqttConn.Close()
	}
	return nil
}
