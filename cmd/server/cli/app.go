package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"

	"passgate/internal/identity"
	"passgate/internal/platform/config"
	"passgate/internal/platform/kafka"
	"passgate/internal/platform/postgres"
	redisclient "passgate/internal/platform/redis"
	"passgate/internal/registration/models"
	"passgate/internal/registration/service"
	adminstore "passgate/internal/registration/store/admin"
	orphanstore "passgate/internal/registration/store/orphan"
	profilestore "passgate/internal/registration/store/profile"
	audit "passgate/pkg/platform/audit"
	auditkafka "passgate/pkg/platform/audit/store/kafka"
	auditmemory "passgate/pkg/platform/audit/store/memory"
	auditpostgres "passgate/pkg/platform/audit/store/postgres"
)

type adminStore interface {
	service.AdminStore
	Save(ctx context.Context, admin *models.AdminRecord) error
	ListActive(ctx context.Context) ([]*models.AdminRecord, error)
}

type orphanStore interface {
	service.OrphanRecorder
	ListUnresolved(ctx context.Context, limit int) ([]models.OrphanedAccount, error)
}

// app holds the connected backends. Fields for unconfigured backends are nil.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	pool  *pgxpool.Pool
	redis *redisclient.Client
	kafka *kgo.Client

	admins   adminStore
	profiles service.ProfileStore
	orphans  orphanStore
	identity service.IdentityProvider

	auditStore audit.Store
	outbox     *auditpostgres.Store
	auditSink  audit.Store
}

// connect opens every configured backend and builds the stores on top of them.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	if err := a.open(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.buildStores()
	return a, nil
}

func (a *app) open(ctx context.Context) error {
	cfg := a.cfg
	if cfg.Store.Backend == config.BackendPostgres || cfg.Audit.Sink == config.SinkPostgres {
		if cfg.Postgres.MigrateOnStart {
			if err := postgres.Migrate(cfg.Postgres.URL, a.logger); err != nil {
				return err
			}
		}
		pool, err := postgres.Connect(ctx, cfg.Postgres, a.logger)
		if err != nil {
			return err
		}
		a.pool = pool
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	a.redis = rc

	kc, err := kafka.New(cfg.Kafka)
	if err != nil {
		return err
	}
	a.kafka = kc
	return nil
}

func (a *app) buildStores() {
	opts := []identity.Option{identity.WithMinPasswordLength(a.cfg.Registration.MinPasswordLength)}
	if a.cfg.Store.Backend == config.BackendPostgres {
		a.admins = adminstore.NewPostgres(a.pool)
		a.profiles = profilestore.NewPostgres(a.pool)
		a.orphans = orphanstore.NewPostgres(a.pool)
		a.identity = identity.NewPostgres(a.pool, opts...)
		return
	}
	a.admins = adminstore.NewInMemory()
	a.profiles = profilestore.NewInMemory()
	a.orphans = orphanstore.NewInMemory()
	a.identity = identity.NewInMemory(opts...)
}

// buildAudit selects the audit store and, when Kafka is configured, the
// downstream sink the outbox relay forwards to.
func (a *app) buildAudit(ctx context.Context) error {
	if a.kafka != nil {
		if err := kafka.EnsureTopic(ctx, a.kafka, a.cfg.Kafka.AuditTopic, a.cfg.Kafka.Partitions, a.cfg.Kafka.Replication); err != nil {
			return err
		}
		a.auditSink = auditkafka.New(a.kafka, a.cfg.Kafka.AuditTopic)
	}

	switch a.cfg.Audit.Sink {
	case config.SinkMemory:
		a.auditStore = auditmemory.NewInMemoryStore()
	case config.SinkPostgres:
		a.outbox = auditpostgres.New(a.pool)
		a.auditStore = a.outbox
	case config.SinkKafka:
		if a.auditSink == nil {
			return errors.New("kafka audit sink configured without a kafka client")
		}
		a.auditStore = a.auditSink
	}
	return nil
}

// requirePostgres guards operator commands that only make sense against
// durable storage.
func (a *app) requirePostgres() error {
	if a.cfg.Store.Backend != config.BackendPostgres {
		return fmt.Errorf("this command needs store.backend=%s, got %q", config.BackendPostgres, a.cfg.Store.Backend)
	}
	return nil
}

func (a *app) close() {
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
