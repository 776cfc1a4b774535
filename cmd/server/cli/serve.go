package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"passgate/internal/attestation"
	"passgate/internal/platform/config"
	"passgate/internal/platform/httpserver"
	"passgate/internal/platform/kafka"
	httpmetrics "passgate/internal/platform/metrics"
	rlmetrics "passgate/internal/ratelimit/metrics"
	rlmw "passgate/internal/ratelimit/middleware"
	"passgate/internal/ratelimit/store/bucket"
	"passgate/internal/registration/handler"
	regmetrics "passgate/internal/registration/metrics"
	"passgate/internal/registration/models"
	"passgate/internal/registration/service"
	httptransport "passgate/internal/transport/http"
	"passgate/pkg/platform/audit/observability"
	"passgate/pkg/platform/audit/publisher"
	"passgate/pkg/platform/audit/worker"
	"passgate/pkg/platform/circuit"
	"passgate/pkg/platform/middleware/appcheck"
)

func newServeCmd() *cobra.Command {
	var (
		devPasscode  string
		devAdminName string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Example: `  passgate serve
  passgate serve --config /etc/passgate.yaml
  passgate serve --dev-passcode TEAM42 --dev-admin-name "Coach"  # memory backend only`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), devPasscode, devAdminName)
		},
	}

	cmd.Flags().StringVar(&devPasscode, "dev-passcode", "", "seed one active admin with this passcode (memory backend)")
	cmd.Flags().StringVar(&devAdminName, "dev-admin-name", "", "name of the seeded development admin")

	return cmd
}

func runServe(parent context.Context, devPasscode, devAdminName string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.buildAudit(ctx); err != nil {
		return err
	}

	if devPasscode != "" {
		if cfg.Store.Backend != config.BackendMemory {
			return errors.New("--dev-passcode is only honoured with the memory backend; use `passgate admins create`")
		}
		admin, err := models.NewAdminRecord(uuid.NewString(), devAdminName, devPasscode, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := a.admins.Save(ctx, admin); err != nil {
			return err
		}
		logger.Info("seeded development admin", "admin_id", admin.ID)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var emitter observability.Emitter
	var pub *publisher.Publisher
	if a.auditStore != nil {
		pub = publisher.NewPublisher(a.auditStore,
			publisher.WithLogger(logger),
			publisher.WithAsyncBuffer(cfg.Audit.Buffer),
		)
		emitter = pub
	}

	verifier, err := attestation.New(cfg.AppCheck, logger)
	if err != nil {
		return err
	}

	regMetrics := regmetrics.New(reg)
	svcOpts := []service.Option{
		service.WithLogger(logger),
		service.WithAuditPublisher(emitter),
		service.WithMetrics(regMetrics),
		service.WithMinFailureDelay(cfg.Registration.MinFailureDelay),
		service.WithOrphanRecorder(a.orphans),
	}
	validator := service.NewValidator(a.admins, svcOpts...)
	registrar := service.New(validator, a.identity, a.profiles, svcOpts...)

	rlMetrics := rlmetrics.New(reg)
	limiter := newLimiter(a, rlMetrics)
	rateLimit := rlmw.New(limiter, logger,
		rlmw.WithDisabled(!cfg.RateLimit.Enabled),
		rlmw.WithAuditPublisher(emitter),
		rlmw.WithMetrics(rlMetrics),
	)
	requireAppCheck := appcheck.Require(verifier, logger,
		appcheck.WithHeader(cfg.AppCheck.Header),
		appcheck.WithAuditPublisher(emitter),
	)

	checks := map[string]httptransport.Check{}
	if a.pool != nil {
		checks["postgres"] = a.pool.Ping
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.kafka != nil {
		checks["kafka"] = func(ctx context.Context) error {
			return kafka.Health(ctx, a.kafka, cfg.Kafka.AuditTopic)
		}
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       logger,
		Registration: handler.New(validator, registrar, logger),
		Guard: func(route string) []func(http.Handler) http.Handler {
			return []func(http.Handler) http.Handler{rateLimit.RateLimit(route), requireAppCheck}
		},
		Operator:   handler.NewOperator(a.admins, a.orphans, logger),
		AdminToken: cfg.Server.AdminToken,
		Metrics:    httpmetrics.New(reg),
		Gatherer:   reg,
		Checks:     checks,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting passgate",
			"addr", cfg.Server.Addr,
			"store", cfg.Store.Backend,
			"audit_sink", cfg.Audit.Sink,
			"appcheck_mode", cfg.AppCheck.Mode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if a.outbox != nil && a.auditSink != nil {
		relay := worker.NewRelay(a.outbox, a.auditSink, logger, cfg.Audit.RelayInterval, cfg.Audit.RelayBatch)
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if pub != nil {
			if cerr := pub.Close(); cerr != nil {
				logger.Error("flush audit publisher", "error", cerr)
			}
		}
		return err
	})

	return g.Wait()
}

// newLimiter counts in Redis when it is configured, falling back to an
// in-process window while the breaker is open.
func newLimiter(a *app, m *rlmetrics.Metrics) *rlmw.Limiter {
	cfg := a.cfg.RateLimit
	memory := bucket.NewInMemory()
	if a.redis == nil {
		return rlmw.NewLimiter(memory, cfg.Requests, cfg.Window, a.logger, rlmw.WithLimiterMetrics(m))
	}
	return rlmw.NewLimiter(bucket.NewRedis(a.redis, a.redis.Key("rl:")), cfg.Requests, cfg.Window, a.logger,
		rlmw.WithFallback(memory, circuit.New("ratelimit-redis")),
		rlmw.WithLimiterMetrics(m),
	)
}
