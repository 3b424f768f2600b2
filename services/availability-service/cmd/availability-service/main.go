package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/apptavailability/libs/db"
	"github.com/md-rashed-zaman/apptavailability/libs/grpcx"
	"github.com/md-rashed-zaman/apptavailability/libs/httpx"
	"github.com/md-rashed-zaman/apptavailability/libs/kafkax"
	otelx "github.com/md-rashed-zaman/apptavailability/libs/otel"
	"github.com/md-rashed-zaman/apptavailability/libs/runtime"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/bookings"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/handlers"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/refresh"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/storage"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.Service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.Service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			_ = runtime.Shutdown(5*time.Second, otelShutdown)
		}()
	}

	engine, err := availability.New(cfg.Engine, nil)
	if err != nil {
		panic(err)
	}
	holder := bookings.NewHolder()
	checks := []runtime.ReadyCheck{{Name: "snapshot", Check: holder.ReadyCheck}}

	var loader refresh.Loader
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{})
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
		loader = refresh.NewDBLoader(storage.NewAppointmentRepository(pool), cfg.ResourceID, cfg.Engine.Location, cfg.SnapshotDays)
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	} else {
		logger.Warn("DATABASE_URL not set; serving generated bookings", "seed", cfg.MockSeed, "days", cfg.SnapshotDays)
		loader = refresh.NewGeneratedLoader(cfg.Engine, cfg.SnapshotDays, uint64(cfg.MockSeed))
	}

	grpcServer := grpcx.NewServer()
	healthServer := grpcx.RegisterHealth(grpcServer)

	worker := refresh.NewWorker(loader, holder, logger, refresh.WorkerConfig{
		Interval:  cfg.RefreshInterval,
		OnRefresh: markServing(healthServer),
	})

	var consumer *refresh.Consumer
	if cfg.KafkaBrokers != "" && len(cfg.KafkaTopics) > 0 {
		consumer = refresh.NewConsumer(logger, refresh.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
			Topics:  cfg.KafkaTopics,
		}, worker.Trigger)
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	}

	rateLimit := httpx.NewRateLimiter(cfg.RateLimitPerMin, time.Minute).Middleware()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		rateLimit = httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMin, time.Minute, cfg.Service).Middleware(logger, cfg.RateLimitFailOpen)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	}

	availabilityHandler := handlers.NewAvailabilityHandler(engine, holder, logger, cfg.MaxRangeDays)
	mux := runtime.NewBaseMuxWithReady(checks...)
	api := httpx.Chain(http.HandlerFunc(availabilityHandler.List),
		httpx.WithBodyLimit(int64(cfg.BodyLimitBytes)),
		httpx.WithTimeout(cfg.RequestTimeout),
		rateLimit,
	)
	mux.Handle("/api/v1/public/availabilities", api)
	mux.Handle("/api/v1/public/next", httpx.Chain(http.HandlerFunc(availabilityHandler.Next),
		httpx.WithBodyLimit(int64(cfg.BodyLimitBytes)),
		httpx.WithTimeout(cfg.RequestTimeout),
		rateLimit,
	))

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "availability")
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			consumer.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return err
		}
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		return serveGRPC(grpcServer, lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		if err := runtime.Shutdown(10*time.Second, srv.Shutdown); err != nil {
			logger.Error("http server shutdown error", "err", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("availability service stopped with error", "err", err)
		return
	}
	logger.Info("availability service stopped")
}

// serveGRPC treats a server stopped before or during Serve as a clean exit.
func serveGRPC(srv *grpc.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// markServing flips the gRPC health status once the first snapshot is installed.
func markServing(hs *health.Server) func(*bookings.Snapshot) {
	return func(*bookings.Snapshot) {
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}
}
