package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	goredis "github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"registrar/internal/audit"
	"registrar/internal/domain"
	"registrar/internal/email"
	"registrar/internal/epp"
	httpapi "registrar/internal/http"
	"registrar/internal/org"
	"registrar/internal/platform/config"
	"registrar/internal/platform/database"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/logger"
	"registrar/internal/platform/metrics"
	"registrar/internal/platform/middleware"
	platformredis "registrar/internal/platform/redis"
	"registrar/internal/request"
	"registrar/internal/user"
	txcontext "registrar/pkg/platform/tx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "registrar:", err)
		os.Exit(1)
	}
}

// run wires dependencies and owns the process lifecycle. Business logic lives
// in the internal service packages.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New(cfg.IsProduction())

	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := database.ApplySchema(ctx, db); err != nil {
		return err
	}

	cache, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var availabilityCache *goredis.Client
	if cache != nil {
		defer cache.Close()
		availabilityCache = cache.Client
	}

	registry, err := dialRegistry(ctx, cfg.EPP, log)
	if err != nil {
		return fmt.Errorf("connect registry: %w", err)
	}
	defer registry.Close()

	auditStore := audit.NewPostgresStore(db)
	auditor := audit.NewPublisher(auditStore)

	var auditWorker *audit.Worker
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafka.Close()
		if err := audit.EnsureTopic(ctx, kafka, cfg.AuditTopic); err != nil {
			return fmt.Errorf("ensure audit topic: %w", err)
		}
		auditWorker = audit.NewWorker(auditStore, kafka, cfg.AuditTopic, log)
	}

	appMetrics := metrics.New()

	transport := email.NewSMTPTransport(cfg.Email.SMTPAddr, cfg.Email.From, nil)
	templated, err := email.NewTemplatedSender(transport, cfg.Email.AllowList, cfg.Email.Disabled, log)
	if err != nil {
		return fmt.Errorf("build email sender: %w", err)
	}
	sender := email.NewMeteredSender(templated, appMetrics.EmailsSent, appMetrics.EmailsFailed)

	runner := txcontext.NewRunner(db)
	requestStore := request.NewPostgresStore(db)
	domainStore := domain.NewPostgresStore(db)
	userStore := user.NewPostgresStore(db)

	domainSvc := domain.NewService(domainStore, registry, auditor, runner, log)
	requestSvc, err := request.NewService(request.ServiceConfig{
		Requests:   requestStore,
		Domains:    domainStore,
		Suborgs:    org.NewPostgresSuborgStore(db),
		Agencies:   org.NewPostgresAgencyStore(db),
		Users:      userStore,
		Sender:     sender,
		Auditor:    auditor,
		Tx:         runner,
		Registrar:  domainSvc,
		OpsBCC:     cfg.Email.OpsBCC,
		Production: cfg.IsProduction(),
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("build request service: %w", err)
	}
	availability := domain.NewAvailabilityChecker(registry, availabilityCache, config.AvailabilityCacheTTL, log)

	router := httpapi.NewRouter(httpapi.Deps{
		Requests:     requestSvc,
		Domains:      domainSvc,
		Availability: availability,
		Users:        userStore,
		Auth:         middleware.NewAuthenticator(cfg.JWTSigningKey),
		Metrics:      appMetrics,
		Logger:       log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("registrar listening", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if auditWorker != nil {
		g.Go(func() error {
			if err := auditWorker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// dialRegistry builds the registry client chain: TLS connection, circuit
// breaker, then command metrics.
func dialRegistry(ctx context.Context, cfg config.EPPConfig, log *slog.Logger) (epp.Client, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load registry client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	conn, err := epp.Dial(ctx, epp.Config{
		Addr:     cfg.Addr,
		ClientID: cfg.Login,
		Password: cfg.Password,
		TLS:      tlsCfg,
	}, log)
	if err != nil {
		return nil, err
	}
	return epp.NewInstrumentedClient(epp.NewBreakerClient(conn, log), epp.NewMetrics()), nil
}
