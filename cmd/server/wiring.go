package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certportal/internal/audit/relay"
	"certportal/internal/certificate/handler"
	certmetrics "certportal/internal/certificate/metrics"
	"certportal/internal/certificate/service"
	certmemory "certportal/internal/certificate/store/memory"
	certpostgres "certportal/internal/certificate/store/postgres"
	"certportal/internal/certificate/views"
	"certportal/internal/directory"
	dircache "certportal/internal/directory/cache"
	"certportal/internal/directory/httpclient"
	dirmemory "certportal/internal/directory/memory"
	dirpostgres "certportal/internal/directory/postgres"
	"certportal/internal/platform/config"
	platformmetrics "certportal/internal/platform/metrics"
	"certportal/internal/platform/postgres"
	platformredis "certportal/internal/platform/redis"
	"certportal/internal/render/document"
	"certportal/internal/render/layout"
	"certportal/internal/render/screen"
	audit "certportal/pkg/platform/audit"
	"certportal/pkg/platform/audit/publisher"
	auditmemory "certportal/pkg/platform/audit/store/memory"
	auditpostgres "certportal/pkg/platform/audit/store/postgres"
	"certportal/pkg/platform/httputil"
	"certportal/pkg/platform/middleware/admin"
	"certportal/pkg/platform/middleware/auth"
	"certportal/pkg/platform/middleware/ratelimit"
	"certportal/pkg/platform/middleware/request"
	txcontext "certportal/pkg/platform/tx"
)

type app struct {
	router   http.Handler
	relay    *relay.Relay
	throttle *ratelimit.Window
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type healthCheck func(ctx context.Context) error

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{}
	checks := map[string]healthCheck{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	certMetrics := certmetrics.New(reg)
	httpMetrics := platformmetrics.NewHTTP(reg)

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			a.close()
			return nil, err
		}
		checks["postgres"] = db.PingContext
	}

	dir, err := buildDirectory(ctx, cfg, db, log, a, checks)
	if err != nil {
		a.close()
		return nil, err
	}

	var (
		store      service.Store
		auditStore audit.Store
		outbox     relay.Outbox
		runner     txcontext.Runner = txcontext.Inline{}
	)
	if db != nil {
		store = certpostgres.New(db)
		pgAudit := auditpostgres.New(db)
		auditStore, outbox = pgAudit, pgAudit
		runner = txcontext.NewSQLRunner(db, 0)
	} else {
		log.Warn("DATABASE_URL not set, certificates and audit events are kept in memory")
		store = certmemory.New()
		memAudit := auditmemory.New()
		auditStore, outbox = memAudit, memAudit
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := relay.NewKafkaProducer(cfg.Kafka)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, producer.Close)
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("audit topic bootstrap failed", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		checks["kafka"] = producer.Ping
		a.relay = relay.New(outbox, producer,
			relay.WithLogger(log),
			relay.WithTxRunner(runner),
			relay.WithInterval(cfg.Kafka.PollInterval),
			relay.WithBatchSize(cfg.Kafka.BatchSize),
			relay.WithMetrics(relay.NewMetrics(reg)),
		)
	}

	svc := service.New(store, dir,
		service.WithLogger(log),
		service.WithMetrics(certMetrics),
		service.WithTxRunner(runner),
		service.WithAuditPublisher(publisher.NewPublisher(auditStore, publisher.WithLogger(log))),
	)

	brand := layout.Branding{
		Institution: cfg.Institution.Name,
		Subtitle:    cfg.Institution.Subtitle,
		Contact:     cfg.Institution.Contact,
	}
	h := handler.New(svc,
		views.New(dir, views.WithLogger(log), views.WithMetrics(certMetrics)),
		screen.New(brand, screen.WithLogger(log), screen.WithMetrics(certMetrics)),
		document.New(brand, document.WithLogger(log), document.WithMetrics(certMetrics)),
		log,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(request.RequestID)
	r.Use(middleware.RealIP)
	r.Use(request.Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(request.Time)
	r.Use(httpMetrics.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", healthHandler(checks))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminAPIToken, log))
		h.RegisterAdmin(r)
	})
	var throttle []func(http.Handler) http.Handler
	if cfg.RenderRateLimit > 0 {
		a.throttle = ratelimit.NewWindow(cfg.RenderRateLimit, time.Minute)
		throttle = append(throttle, ratelimit.Middleware(a.throttle, ratelimit.ByCaller, log))
	}
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller(cfg.AdminAPIToken, auth.NewHMACValidator(cfg.JWTSigningKey, ""), log))
		h.RegisterLearner(r, throttle...)
	})

	a.router = r
	return a, nil
}

func buildDirectory(ctx context.Context, cfg config.Server, db *sql.DB, log *slog.Logger, a *app, checks map[string]healthCheck) (directory.Directory, error) {
	var dir directory.Directory
	switch cfg.Directory.Mode {
	case config.DirectoryPostgres:
		dir = dirpostgres.New(db)
	case config.DirectoryHTTP:
		dir = httpclient.New(cfg.Directory.BaseURL, cfg.Directory.Timeout, httpclient.WithLogger(log))
	default:
		dir = dirmemory.Seeded()
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb == nil {
		return dir, nil
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	checks["redis"] = rdb.Health
	return dircache.New(dir, rdb.Client, cfg.Directory.CacheTTL, dircache.WithLogger(log)), nil
}

func healthHandler(checks map[string]healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				out[name] = fmt.Sprintf("down: %v", err)
				continue
			}
			out[name] = "ok"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": out})
	}
}
