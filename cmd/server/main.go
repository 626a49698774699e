// Command server runs the document resolution service: local ONNX
// classifiers and Tesseract OCR behind an HTTP API that references images on
// the server's document volume.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"veridoc/internal/classify"
	"veridoc/internal/inference"
	"veridoc/internal/inference/onnx"
	"veridoc/internal/inference/tesseract"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/httpserver"
	"veridoc/internal/platform/logger"
	platformmetrics "veridoc/internal/platform/metrics"
	platformredis "veridoc/internal/platform/redis"
	"veridoc/internal/platform/token"
	"veridoc/internal/registry"
	registryhandler "veridoc/internal/registry/handler"
	"veridoc/internal/resolution"
	resolutionhandler "veridoc/internal/resolution/handler"
	resolutionmetrics "veridoc/internal/resolution/metrics"
	"veridoc/internal/resolution/ports"
	sessionstore "veridoc/internal/resolution/store/session"
	"veridoc/internal/textextract"
	httptransport "veridoc/internal/transport/http"
	"veridoc/pkg/platform/audit"
	auditkafka "veridoc/pkg/platform/audit/kafka"
	"veridoc/pkg/platform/audit/publisher"
	auditmemory "veridoc/pkg/platform/audit/store/memory"
	auditpostgres "veridoc/pkg/platform/audit/store/postgres"
	"veridoc/pkg/platform/circuit"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	reg := registry.New()

	documents := classify.NewDocumentService(
		loadClassifier(cfg.Inference, cfg.Inference.DocumentModel, "document", log),
		classify.WithDocumentLogger(log),
		classify.WithDocumentBreaker(circuit.New("document-model")),
	)
	origin := classify.NewOriginService(
		loadClassifier(cfg.Inference, cfg.Inference.OriginModel, "origin", log),
		classify.WithOriginLogger(log),
		classify.WithOriginBreaker(circuit.New("origin-model")),
	)
	text := textextract.New(
		tesseract.NewRecognizer(tesseract.Config{
			Languages:      cfg.Inference.OCRLanguages,
			TessdataPrefix: cfg.Inference.TessdataPrefix,
		}),
		textextract.NewExtractor(reg),
		textextract.WithLogger(log),
	)

	auditPublisher, closeAudit, err := buildAuditPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	redisClient, err := platformredis.Connect(context.Background(), cfg.Redis)
	if err != nil {
		return err
	}
	var store ports.SessionStore = sessionstore.NewInMemoryStore()
	if redisClient != nil {
		defer redisClient.Close()
		store = sessionstore.NewRedisStore(redisClient,
			sessionstore.WithRecordTTL(cfg.Resolution.RecordTTL))
		log.Info("session records stored in redis")
	}

	service, err := resolution.New(documents, origin, text, reg,
		resolution.WithLogger(log),
		resolution.WithMetrics(resolutionmetrics.New()),
		resolution.WithAuditPublisher(auditPublisher),
		resolution.WithPathTimeout(cfg.Resolution.PathTimeout),
	)
	if err != nil {
		return err
	}

	coordinator, err := resolution.NewCoordinator(service, store,
		resolution.WithCoordinatorLogger(log),
		resolution.WithCoordinatorAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}

	tokens := token.NewService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        platformmetrics.New(),
		Resolution:     resolutionhandler.New(coordinator, cfg.Resolution.DocumentRoot, log),
		Registry:       registryhandler.New(reg),
		TokenValidator: token.NewMiddlewareAdapter(tokens),
		Audit:          auditPublisher,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	errs := make(chan error, 1)
	go func() {
		log.Info("starting veridoc server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// loadClassifier binds one ONNX model. A missing or unloadable model is a
// legitimate runtime state: the pipeline keeps running on its fallbacks, so
// failures here log and return nil instead of aborting startup.
func loadClassifier(inf config.Inference, model config.Model, name string, log *slog.Logger) inference.Classifier {
	if model.Path == "" {
		log.Warn("model not configured, running on fallback", "model", name)
		return nil
	}

	classifier, err := onnx.NewClassifier(onnx.Config{
		OrtLibraryPath: inf.OrtLibraryPath,
		ModelPath:      model.Path,
		LabelsPath:     model.LabelsPath,
	})
	if err != nil {
		log.Warn("failed to load model, running on fallback", "model", name, "error", err)
		return nil
	}

	log.Info("model loaded", "model", name, "path", model.Path)
	return classifier
}

// buildAuditPublisher picks the audit sink: Kafka when brokers are
// configured, Postgres when a DSN is, and in-memory otherwise.
func buildAuditPublisher(cfg config.Config, log *slog.Logger) (*publisher.Publisher, func(), error) {
	var store audit.Store = auditmemory.NewInMemoryStore()
	cleanup := func() {}

	switch {
	case len(cfg.Kafka.Brokers) > 0:
		kafkaStore, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, nil, err
		}
		store = kafkaStore
		cleanup = kafkaStore.Close
		log.Info("audit events published to kafka", "topic", cfg.Kafka.Topic)

	case cfg.PostgresDSN != "":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store = auditpostgres.New(db)
		cleanup = func() { _ = db.Close() }
		log.Info("audit events persisted to postgres")
	}

	pub := publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	prev := cleanup
	return pub, func() {
		pub.Close()
		prev()
	}, nil
}
