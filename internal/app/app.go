package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/analytics"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type repositories struct {
	products     storage.ProductsRepository
	searchEvents storage.SearchEventsRepository
}

// pipeline holds the broker side of analytics, set only for the kafka sink.
type pipeline struct {
	producer  kafka.SearchEventsProducer
	consumer  kafka.SearchEventsConsumer
	processor *kafka.QueryStatsProcessor
	view      *kafka.QueryStatsView
	serde     schema.Serde
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	tlsConfig  *tls.Config
	sqldb      storage.SQLDB
	repos      repositories
	pipeline   *pipeline
	dispatcher *analytics.Dispatcher
	service    service.Service
	httpServer httphandler.HTTPServer
	wg         sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initTLS()
	app.initStorage()
	app.initPipeline()
	app.initDispatcher()
	app.initCoreService()
	app.initConsumer()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initTLS() {
	const op = "App.initTLS"

	t := app.cfg.Broker.TLS
	if !t.Enabled() {
		return
	}

	tlsConfig, err := adapter.NewTLSConfig(t.CA, t.Cert, t.Key)
	if err != nil {
		app.fallDown(op, err)
	}
	app.tlsConfig = tlsConfig
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}

	app.sqldb = sqldb
	app.repos.products = storage.NewProductsRepository(sqldb)
	app.repos.searchEvents = storage.NewSearchEventsRepository(sqldb)
}

func (app *App) initPipeline() {
	const op = "App.initPipeline"

	if app.cfg.Analytics.Sink != config.SinkKafka {
		return
	}

	ctx := app.ctx
	b := app.cfg.Broker
	if app.tlsConfig != nil {
		kafka.UseTLS(app.tlsConfig)
	}

	srOpts := []sr.ClientOpt{sr.URLs(b.SchemaRegistryURLs...)}
	if app.tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.tlsConfig))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeSearchEventV1(
		ctx,
		schema.SubjectOpt(b.Topics.SearchEvents+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewSearchEventsProducer(
		kafka.ProducerClientOpt(
			ctx, b.SeedBrokers, b.Topics.SearchEvents, app.tlsConfig,
		),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	processor, err := kafka.NewQueryStatsProc(
		b.SeedBrokers,
		b.Topics.SearchEvents,
		b.Consumers.QueryStatsGroup,
		serde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	view, err := kafka.NewQueryStatsView(
		b.SeedBrokers, b.Consumers.QueryStatsGroup,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.pipeline = &pipeline{
		producer:  producer,
		processor: processor,
		view:      view,
		serde:     serde,
	}
}

func (app *App) initDispatcher() {
	const op = "App.initDispatcher"

	var recorder port.SearchEventsRecorder = app.repos.searchEvents
	if app.pipeline != nil {
		recorder = app.pipeline.producer
	}

	d, err := analytics.NewDispatcher(analytics.Config{
		Workers:      app.cfg.Analytics.Workers,
		WriteTimeout: app.cfg.Analytics.WriteTimeout,
	}, recorder)
	if err != nil {
		app.fallDown(op, err)
	}
	app.dispatcher = d
}

func (app *App) initCoreService() {
	var stats port.QueryStatsReader
	if app.pipeline != nil {
		stats = app.pipeline.view
	}

	cfg := service.Config{
		DefaultLimit:      app.cfg.Search.DefaultLimit,
		MaxLimit:          app.cfg.Search.MaxLimit,
		CandidateFactor:   app.cfg.Search.CandidateFactor,
		RelatedLimit:      app.cfg.Search.RelatedLimit,
		CatalogFetchLimit: app.cfg.Catalog.FetchLimit,
		SearchClassifier:  toClassifier(app.cfg.Classifiers.Search),
		CatalogClassifier: toClassifier(app.cfg.Classifiers.Catalog),
	}

	app.service = service.New(
		cfg,
		app.repos.products,
		app.repos.searchEvents,
		app.dispatcher,
		stats,
	)
}

func (app *App) initConsumer() {
	const op = "App.initConsumer"

	if app.pipeline == nil {
		return
	}

	b := app.cfg.Broker
	consumer, err := kafka.NewSearchEventsConsumer(
		kafka.ConsumerClientOpt(
			b.SeedBrokers,
			b.Topics.SearchEvents,
			b.Consumers.SearchEventsSaverGroup,
			app.tlsConfig,
		),
		kafka.ConsumerDecoderOpt(app.pipeline.serde),
		kafka.SearchEventsSaverOpt(app.service),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.pipeline.consumer = consumer
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterSearch(mux, app.service)
	httphandler.RegisterCatalog(mux, app.service)

	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, mux, app.cfg.HTTPHandlerTimeout,
	)
}

// Run starts serving. Any component that stops on its own calls stopFn.
func (app *App) Run(stopFn context.CancelFunc) {
	if p := app.pipeline; p != nil {
		app.wg.Add(1)
		go p.processor.Run(app.ctx, stopFn, &app.wg)
		go p.view.Run(app.ctx)
		go p.consumer.Run(app.ctx)
	}

	go app.httpServer.Run(stopFn)

	slog.Info("application is running", "analyticsSink", app.cfg.Analytics.Sink)
}

func (app *App) Close(ctx context.Context) {
	const op = "App.Close"
	log := slog.With("op", op)

	log.Info("application is closing...")

	app.httpServer.Close(ctx)

	err := app.dispatcher.Close(app.cfg.Analytics.CloseTimeout)
	if err != nil {
		log.Error("failed to drain analytics sink", "err", err)
	}

	if p := app.pipeline; p != nil {
		app.wg.Wait()
		p.consumer.Close()
		p.processor.Close()
		p.producer.Close()
	}

	app.sqldb.Close()

	log.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}

func toClassifier(c config.Classifier) domain.Classifier {
	return domain.Classifier{
		Categories: toRuleSet(c.Categories),
		Brands:     toRuleSet(c.Brands),
	}
}

func toRuleSet(rs config.RuleSet) domain.RuleSet {
	rules := make([]domain.KeywordRule, len(rs.Rules))
	for i, r := range rs.Rules {
		rules[i] = domain.KeywordRule{Label: r.Label, Keywords: r.Keywords}
	}
	return domain.RuleSet{Version: rs.Version, Rules: rules}
}
