package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/totegamma/misblock/client"
	"github.com/totegamma/misblock/internal/config"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/infra/database"
	"github.com/totegamma/misblock/internal/infra/gateway"
	"github.com/totegamma/misblock/internal/infra/repository"
	"github.com/totegamma/misblock/internal/present/consumer"
	"github.com/totegamma/misblock/internal/present/rest"
	authmiddleware "github.com/totegamma/misblock/internal/present/rest/middleware"
	"github.com/totegamma/misblock/internal/service"
	"github.com/totegamma/misblock/internal/usecase"
)

const serviceName = "misblock"

func main() {
	configPath := os.Getenv("MISBLOCK_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(config.SetupLogger(conf.Log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			panic(err)
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}
	err = database.Migrate(db)
	if err != nil {
		panic("failed to migrate database")
	}

	tokenClient := client.New(conf.Token.Endpoint, client.Options{
		Timeout:       conf.Token.TimeoutDuration(),
		APIKey:        conf.Token.APIKey,
		UserAgent:     serviceName + "/1.0",
		OnStateChange: gateway.BreakerObserver,
	})
	tokenGateway := gateway.NewTokenGateway(tokenClient)

	var (
		publisher usecase.EventPublisher
		signalSrc rest.SignalSource
	)
	if conf.Server.RedisAddr != "" {
		rdb, err := database.NewRedis(ctx, conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
		if err != nil {
			panic(err)
		}
		signalService := service.NewSignalService(rdb)
		publisher = signalService
		signalSrc = signalService
	}

	ledger := usecase.NewLedger(
		repository.NewLedgerRepository(db),
		tokenGateway,
		publisher,
		conf.Ledger,
		domain.NewClock(domain.LedgerZone),
	)
	if conf.Server.MemcachedAddr != "" {
		mc, err := database.NewMemcached(conf.Server.MemcachedAddr)
		if err != nil {
			panic(err)
		}
		ledger = ledger.WithRankingCache(service.NewRankingCache(mc, conf.Server.RankingTTL()))
	}

	transfers := usecase.NewTransferUsecase(ledger)
	handler := rest.NewHandler(
		usecase.NewConfigUsecase(ledger),
		usecase.NewPointUsecase(ledger),
		usecase.NewHospitalUsecase(ledger),
		usecase.NewReviewUsecase(ledger),
		usecase.NewBillUsecase(ledger),
		usecase.NewRewardUsecase(ledger),
		transfers,
		signalSrc,
	)

	authMiddleware := authmiddleware.NewAuthMiddleware(service.NewAuthService(conf.Ledger))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(serviceName, otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		})))
	}
	e.Use(authMiddleware.IdentifyIdentity)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		ctx := c.Request().Context()
		status := echo.Map{"database": "ok", "token": "ok"}
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := tokenGateway.Ping(ctx); err != nil {
			status["token"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, status)
	})
	handler.RegisterRoutes(e)

	if conf.Kafka.Enabled() {
		reader := consumer.NewReader(consumer.Config{
			Brokers: conf.Kafka.Brokers,
			GroupID: conf.Kafka.GroupID,
			Topic:   conf.Kafka.Topic,
		})
		transferConsumer := consumer.NewTransferConsumer(reader, transfers, conf.Ledger.TokenContract)
		defer transferConsumer.Close()
		go func() {
			err := transferConsumer.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("transfer consumer stopped", slog.String("error", err.Error()), slog.String("module", "consumer"))
				stop()
			}
		}()
	}

	go resendPendingTransfers(ctx, ledger, conf.Token.ResendEvery())

	go func() {
		slog.Info("misblock started", slog.String("listen", conf.Server.Listen))
		if err := e.Start(conf.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
}

// resendPendingTransfers retries token transfers the ledger committed but
// could not hand to the token service.
func resendPendingTransfers(ctx context.Context, ledger *usecase.Ledger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := ledger.ResendPending(ctx, 100)
			if err != nil {
				slog.Error("failed to resend pending transfers", slog.String("error", err.Error()), slog.String("module", "ledger"))
				continue
			}
			if n > 0 {
				slog.Info("pending transfers resent", slog.Int("count", n), slog.String("module", "ledger"))
			}
		}
	}
}

func setupTraceProvider(ctx context.Context, endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown tracer provider", slog.String("error", err.Error()))
		}
	}, nil
}
