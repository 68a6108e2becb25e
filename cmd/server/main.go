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

	_ "github.com/lib/pq"

	accounthandler "hireline/internal/account/handler"
	accountservice "hireline/internal/account/service"
	accountstore "hireline/internal/account/store"
	accountmemory "hireline/internal/account/store/memory"
	accountpostgres "hireline/internal/account/store/postgres"
	applicationhandler "hireline/internal/application/handler"
	applicationservice "hireline/internal/application/service"
	applicationstore "hireline/internal/application/store"
	applicationmemory "hireline/internal/application/store/memory"
	applicationpostgres "hireline/internal/application/store/postgres"
	"hireline/internal/candidate/cache"
	candidatehandler "hireline/internal/candidate/handler"
	candidateservice "hireline/internal/candidate/service"
	candidatestore "hireline/internal/candidate/store"
	candidatememory "hireline/internal/candidate/store/memory"
	candidatepostgres "hireline/internal/candidate/store/postgres"
	httpapi "hireline/internal/http"
	jwttoken "hireline/internal/jwt_token"
	"hireline/internal/platform/config"
	"hireline/internal/platform/httpserver"
	"hireline/internal/platform/logger"
	"hireline/internal/platform/metrics"
	"hireline/internal/platform/redis"
	postinghandler "hireline/internal/posting/handler"
	postingservice "hireline/internal/posting/service"
	postingstore "hireline/internal/posting/store"
	postingmemory "hireline/internal/posting/store/memory"
	postingpostgres "hireline/internal/posting/store/postgres"
	"hireline/pkg/platform/audit"
	auditpublisher "hireline/pkg/platform/audit/publisher"
	auditmemory "hireline/pkg/platform/audit/store/memory"
	auditpostgres "hireline/pkg/platform/audit/store/postgres"
	txcontext "hireline/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// stores groups one implementation per aggregate so run can swap the whole
// set between PostgreSQL and memory.
type stores struct {
	candidates   candidatestore.Store
	postings     postingstore.Store
	applications applicationstore.Store
	accounts     accountstore.Store
	audit        audit.Store
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		st     stores
		db     *sql.DB
		checks []httpapi.HealthCheck
	)
	if cfg.Postgres.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		st = stores{
			candidates:   candidatepostgres.New(db),
			postings:     postingpostgres.New(db),
			applications: applicationpostgres.New(db),
			accounts:     accountpostgres.New(db),
			audit:        auditpostgres.New(db),
		}
		checks = append(checks, httpapi.HealthCheck{Name: "postgres", Check: db.PingContext})
		log.Info("using postgres stores")
	} else {
		st = stores{
			candidates:   candidatememory.NewInMemoryStore(),
			postings:     postingmemory.NewInMemoryStore(),
			applications: applicationmemory.NewInMemoryStore(),
			accounts:     accountmemory.NewInMemoryStore(),
			audit:        auditmemory.NewInMemoryStore(),
		}
		log.Warn("no postgres URL configured, using in-memory stores")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks = append(checks, httpapi.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	var auditOpts []audit.Option
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := auditpublisher.New(ctx, auditpublisher.Config{
			Brokers:         cfg.Kafka.Brokers,
			ComplianceTopic: cfg.Kafka.ComplianceTopic,
			OpsTopic:        cfg.Kafka.OpsTopic,
		}, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		auditOpts = append(auditOpts, audit.WithPublisher(publisher))
		log.Info("audit events forwarded to kafka", "brokers", cfg.Kafka.Brokers)
	}
	auditor := audit.NewService(st.audit, log, auditOpts...)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)

	accounts := accountservice.NewService(st.accounts, jwtService, auditor, log, cfg.Server.TokenTTL)
	if err := accounts.Bootstrap(ctx, cfg.Server.AdminEmail, cfg.Server.AdminPassword); err != nil {
		return err
	}

	var candidateOpts []candidateservice.Option
	if redisClient != nil {
		candidateOpts = append(candidateOpts,
			candidateservice.WithCache(cache.NewRedisCache(redisClient, cfg.Redis.DuplicateScoreTTL)),
		)
	}
	candidates := candidateservice.NewService(st.candidates, auditor, m, log, candidateservice.Config{
		Threshold:       cfg.Match.Threshold,
		ScanConcurrency: cfg.Match.ScanConcurrency,
	}, candidateOpts...)

	postings := postingservice.NewService(st.postings, auditor, m, log)

	var applicationOpts []applicationservice.Option
	if db != nil {
		applicationOpts = append(applicationOpts, applicationservice.WithTxRunner(
			func(ctx context.Context, fn func(ctx context.Context) error) error {
				return txcontext.Run(ctx, db, fn)
			},
		))
	}
	applications := applicationservice.NewService(st.applications, candidates, postings, auditor, m, log, applicationOpts...)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Metrics:        m,
		Tokens:         jwtService,
		Accounts:       accounthandler.New(accounts, log),
		Candidates:     candidatehandler.New(candidates, log),
		Postings:       postinghandler.New(postings, log),
		Applications:   applicationhandler.New(applications, log),
		RequestTimeout: cfg.Server.RequestTimeout,
		HealthChecks:   checks,
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting hireline", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
