package app

import (
	"context"
	"fmt"
	"time"

	"github.com/akostiuk/zoewatch/config"
	"github.com/akostiuk/zoewatch/core/dispatch"
	coremetrics "github.com/akostiuk/zoewatch/core/metrics"
	"github.com/akostiuk/zoewatch/core/notify"
	"github.com/akostiuk/zoewatch/core/parse"
	"github.com/akostiuk/zoewatch/core/watch"
	"github.com/akostiuk/zoewatch/infra/email"
	"github.com/akostiuk/zoewatch/infra/fetch"
	"github.com/akostiuk/zoewatch/infra/logger"
	"github.com/akostiuk/zoewatch/infra/metrics"
	"github.com/akostiuk/zoewatch/infra/mqtt"
	"github.com/akostiuk/zoewatch/infra/store"
	"github.com/akostiuk/zoewatch/infra/telegram"
	"github.com/akostiuk/zoewatch/internal/eventbus"
)

// Service wires the watcher, the subscriber bot and the observability sinks.
type Service struct {
	Watcher *watch.Watcher

	store       *store.Store
	bot         *telegram.Bot
	mqtt        *mqtt.Announcer
	bus         eventbus.EventBus
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	fetcher, err := fetch.New(cfg.Source, logger.New("fetch"))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	parser := parse.New(parse.DefaultMarkers(), logger.New("parse"))

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()

	var notifier notify.Notifier
	var sender *telegram.Sender
	if cfg.Telegram.Enabled {
		sender, err = telegram.NewSender(cfg.Telegram)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("telegram sender: %w", err)
		}
		notifier = sender
	} else {
		notifier = logNotifier{log: logger.New("notify")}
	}

	planner, err := dispatch.NewPlanner(st, logger.New("planner"))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("planner: %w", err)
	}
	sendTimeout := time.Duration(cfg.Watch.SendTimeoutSeconds) * time.Second
	dispatcher, err := dispatch.NewDispatcher(notifier, sendTimeout, sink, bus, logger.New("dispatch"))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	var announcers []watch.Announcer
	mqttAnn, err := mqtt.NewAnnouncer(cfg.MQTT)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("mqtt announcer: %w", err)
	}
	if mqttAnn != nil {
		announcers = append(announcers, mqttAnn)
	}
	if cfg.Email.Enabled {
		announcers = append(announcers, email.NewDigest(cfg.Email, logger.New("email")))
	}

	watcher, err := watch.New(cfg.Watch, fetcher, parser, st, planner, dispatcher, sink, bus, logger.New("watch"), announcers...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("watcher: %w", err)
	}

	svc := &Service{
		Watcher:     watcher,
		store:       st,
		mqtt:        mqttAnn,
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}
	if cfg.Telegram.Enabled {
		svc.bot = telegram.NewBot(sender, cfg.Telegram, st, st, logger.New("bot"))
	}
	return svc, nil
}

// Run starts the watcher and the bot and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.bot != nil {
		go s.bot.Run(ctx)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.Watcher.Run(ctx)
	return nil
}

// logNotifier stands in for the Telegram transport when it is disabled so the
// pipeline can be exercised end to end without a bot token.
type logNotifier struct {
	log logger.Logger
}

func (n logNotifier) Send(_ context.Context, chatID int64, text string) error {
	n.log.Infof("notification for chat %d suppressed (telegram disabled): %d bytes", chatID, len(text))
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqtt != nil {
		s.mqtt.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	return s.store.Close()
}
