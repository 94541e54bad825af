package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cactilia/api/internal/domain"
	"github.com/cactilia/api/internal/handlers"
	"github.com/cactilia/api/internal/platform/config"
	pfirestore "github.com/cactilia/api/internal/platform/firestore"
	"github.com/cactilia/api/internal/platform/observability"
	firestorerepo "github.com/cactilia/api/internal/repositories/firestore"
	"github.com/cactilia/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	defer func() {
		if err := firestoreProvider.Close(); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	ruleRepo, err := firestorerepo.NewShippingRuleRepository(firestoreProvider, cfg.Shipping.RulesCollection)
	if err != nil {
		logger.Fatal("failed to initialise shipping rule repository", zap.Error(err))
	}

	quoteService, err := services.NewShippingQuoteService(services.ShippingQuoteServiceDeps{
		Rules: ruleRepo,
		Policy: services.ShippingPolicy{
			FallbackItemWeightKg: cfg.Shipping.FallbackItemWeightKg,
			DefaultPackaging: domain.PackageConfig{
				MaxWeightKg: cfg.Shipping.DefaultMaxPackageWeightKg,
				MaxItems:    cfg.Shipping.DefaultMaxItemsPerPackage,
			},
		},
		Logger: func(ctx context.Context, event string, fields map[string]any) {
			observability.FromContext(ctx).Debug(event, zap.Any("fields", fields))
		},
	})
	if err != nil {
		logger.Fatal("failed to initialise shipping quote service", zap.Error(err))
	}

	shippingHandlers := handlers.NewShippingHandlers(quoteService, ruleRepo)
	checkoutHandlers := handlers.NewCheckoutHandlers(services.CheckoutPolicy{
		TaxRate:         cfg.Checkout.TaxRate,
		MinFreeShipping: cfg.Checkout.MinFreeShipping,
	})
	healthHandlers := handlers.NewHealthHandlers(func(ctx context.Context) error {
		_, err := firestoreProvider.Client(ctx)
		return err
	})

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithShippingRoutes(shippingHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("server failed", zap.Error(err))
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
