// job-application tracker-service
//
// Kanban state machine for job applications with an auditable status history.
// Exposes a REST API and a gRPC API used by the Gateway to implement:
//   - create / update / delete applications
//   - changeStatus(applicationId, toStatus, reason): policy-checked transitions
//   - application detail with history, list view, per-status summary
//
// Publishes EVENT_* messages to Redis for Gateway SSE forward and runs a
// follow-up reminder job for applications that have gone quiet.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/gustavobragaia/job-application/internal/config"
	"github.com/gustavobragaia/job-application/internal/db"
	"github.com/gustavobragaia/job-application/internal/events"
	"github.com/gustavobragaia/job-application/internal/grpcserver"
	"github.com/gustavobragaia/job-application/internal/httpapi"
	"github.com/gustavobragaia/job-application/internal/kanban"
	"github.com/gustavobragaia/job-application/internal/reminder"
	"github.com/gustavobragaia/job-application/internal/store/postgres"
	"github.com/gustavobragaia/job-application/internal/store/sqlite"
)

const version = "1.0.0"

// store is what the service and the reminder job need from either backend.
type store interface {
	kanban.Store
	reminder.StaleFinder
}

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[tracker-service] Config error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "tracker-service")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Storage ─────────────────────────────────────────────────────────────
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("[tracker-service] Storage: %v", err)
	}
	defer closeStore()

	// ── Events ──────────────────────────────────────────────────────────────
	var publisher kanban.Publisher = events.NewLogPublisher(logger)
	if cfg.RedisURL != "" {
		log.Println("[tracker-service] Connecting to Redis…")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[tracker-service] Redis: %v", err)
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb)
		log.Println("[tracker-service] Redis connected ✓")
	} else {
		log.Println("[tracker-service] REDIS_URL not set, events are logged only")
	}

	svc := kanban.NewService(st, publisher, kanban.WithLogger(logger))

	// ── Follow-up reminders ─────────────────────────────────────────────────
	sched := reminder.New(st, publisher, cfg.FollowUpSchedule, cfg.FollowUpAfter, logger)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[tracker-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ─────────────────────────────────────────────────────────
	h := httpapi.NewHandler(svc, httpapi.WithLogger(logger), httpapi.WithVersion(version))
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// ── gRPC server ─────────────────────────────────────────────────────────
	grpcSrv := grpc.NewServer()
	grpcserver.Register(grpcSrv, grpcserver.NewServer(svc, logger))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[tracker-service] gRPC listen: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[tracker-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("[tracker-service] gRPC listening on :%s", cfg.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// ── Graceful shutdown ───────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		log.Println("[tracker-service] Shutting down…")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		grpcSrv.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[tracker-service] Shutdown error: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("[tracker-service] %v", err)
	}
	log.Println("[tracker-service] Stopped.")
}

// openStore connects to the configured backend and applies migrations.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		log.Printf("[tracker-service] Opening SQLite database %s…", cfg.DatabaseURL)
		s, err := sqlite.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("[tracker-service] SQLite ready ✓")
		return s, closer(s), nil

	default:
		log.Println("[tracker-service] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Println("[tracker-service] PostgreSQL connected ✓")
		return postgres.New(pool, postgres.WithLogger(logger)), pool.Close, nil
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Printf("[tracker-service] Close error: %v", err)
		}
	}
}
