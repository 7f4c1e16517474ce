package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tireserve/platform/internal/api/handlers"
	"github.com/tireserve/platform/internal/api/middleware"
	"github.com/tireserve/platform/internal/cache"
	"github.com/tireserve/platform/internal/config"
	"github.com/tireserve/platform/internal/health"
	"github.com/tireserve/platform/internal/metrics"
	repository "github.com/tireserve/platform/internal/repositories"
	service "github.com/tireserve/platform/internal/services"
	"github.com/tireserve/platform/pkg/sendGrid"
	"github.com/tireserve/platform/pkg/stripe"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("Database connection closed")
		}
	}()

	redisOpts, err := redis.ParseURL(cfg.RedisConnect.GetDSN())
	if err != nil {
		slog.Error("Error parsing redis address", "error", err.Error())
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		slog.Error("Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	partCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret)
	sendGridClient := sendGrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	partRepo := repository.NewPartRepo(repos.DB)
	cartRepo := repository.NewCartRepo(repos.DB)
	orderRepo := repository.NewOrderRepository(repos.DB)
	serviceRequestRepo := repository.NewServiceRequestRepo(repos.DB)
	quotationRepo := repository.NewQuotationRepo(repos.DB)
	notificationRepo := repository.NewNotificationRepo(repos.DB)
	userRepo := repository.NewUserRepo(repos.DB)
	mechanicRepo := repository.NewMechanicRepo(repos.DB)

	notificationService := service.NewNotificationService(notificationRepo, sendGridClient)
	inventoryService := service.NewInventoryService(partRepo, cfg.Alerts.StockAlertEmail)
	catalogService := service.NewCatalogService(partRepo, partCache, cfg.Cache.DefaultTTL)
	checkoutService := service.NewCheckoutService(
		repos, cartRepo, partRepo, orderRepo, userRepo,
		inventoryService, stripeClient, notificationService, cfg.Stripe.Currency,
	)
	serviceRequestService := service.NewServiceRequestService(
		serviceRequestRepo, partRepo, mechanicRepo, userRepo, repos,
		stripeClient, notificationService, cfg.Stripe.Currency, cfg.Alerts.AdminEmail,
	)
	quotationService := service.NewQuotationService(
		quotationRepo, serviceRequestRepo, userRepo, repos, notificationService,
	)
	webhookService := service.NewWebhookService(stripeClient, checkoutService, serviceRequestService)

	serviceRequestHandler := handlers.NewServiceRequestHandler(serviceRequestService)
	quotationHandler := handlers.NewQuotationHandler(quotationService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, webhookService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{
		DB:           repos.DB,
		RedisClient:  redisClient,
		StripeClient: stripeClient,
	})
	if err != nil {
		slog.Error("Error creating health handler", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/service-requests", serviceRequestHandler.Create())
	routerMux.HandleFunc("GET /api/v1/service-requests/{id}", serviceRequestHandler.Get())
	routerMux.HandleFunc("POST /api/v1/service-requests/{id}/accept", serviceRequestHandler.Accept())
	routerMux.HandleFunc("POST /api/v1/service-requests/{id}/reject", serviceRequestHandler.Reject())
	routerMux.HandleFunc("POST /api/v1/service-requests/{id}/pay", serviceRequestHandler.Pay())
	routerMux.HandleFunc("POST /api/v1/service-requests/{id}/complete", serviceRequestHandler.Complete())
	routerMux.HandleFunc("POST /api/v1/service-requests/{id}/parts", serviceRequestHandler.AttachParts())
	routerMux.HandleFunc("POST /api/v1/quotations", quotationHandler.Create())
	routerMux.HandleFunc("GET /api/v1/quotations/{id}", quotationHandler.Get())
	routerMux.HandleFunc("POST /api/v1/quotations/{id}/send", quotationHandler.Send())
	routerMux.HandleFunc("PUT /api/v1/quotations/{id}/costs", quotationHandler.UpdateCosts())
	routerMux.HandleFunc("POST /api/v1/quotations/{id}/accept", quotationHandler.Accept())
	routerMux.HandleFunc("POST /api/v1/quotations/{id}/reject", quotationHandler.Reject())
	routerMux.HandleFunc("GET /api/v1/parts/{id}", catalogHandler.GetPart())
	routerMux.HandleFunc("GET /api/v1/carts/items", checkoutHandler.ListCartItems())
	routerMux.HandleFunc("POST /api/v1/carts/items", checkoutHandler.AddCartItem())
	routerMux.HandleFunc("PUT /api/v1/carts/items", checkoutHandler.UpdateCartQuantity())
	routerMux.HandleFunc("POST /api/v1/checkout/cart", checkoutHandler.CheckoutCart())
	routerMux.HandleFunc("POST /api/v1/checkout/buy-now", checkoutHandler.BuyNow())
	routerMux.HandleFunc("POST /api/v1/checkout/confirm", checkoutHandler.ConfirmPayment())
	routerMux.HandleFunc("GET /api/v1/orders/{id}", checkoutHandler.GetOrder())
	routerMux.HandleFunc("POST /api/v1/payments/webhook", checkoutHandler.HandleStripeWebhook())
	routerMux.HandleFunc("GET /api/v1/notifications", notificationHandler.ListNotifications())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("Server is starting...", slog.String("address", cfg.Addr))

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := quotationService.ExpireOverdue(sweepCtx); err != nil {
					slog.Error("Quotation expiry sweep failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("Shutdown signal received. Preparing to stop the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("Server shut down gracefully. All connections closed.")
	}
}
