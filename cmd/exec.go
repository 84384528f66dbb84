package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"hotel-booking/config"
	"hotel-booking/handlers"
	"hotel-booking/internal/payment"
	"hotel-booking/internal/payment/paystack"
	"hotel-booking/internal/status"
	_ "hotel-booking/migrations"
	"hotel-booking/monitoring"
	"hotel-booking/security"
	"hotel-booking/services"
	"hotel-booking/store"
	"hotel-booking/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the payment gateway
	provider := payment.Provider(cfg.PaymentProvider)
	gateway, err := payment.NewFactory().CreateGateway(ctx, provider, &paystack.Config{
		SecretKey: cfg.PaystackSecretKey,
		PublicKey: cfg.PaystackPublicKey,
		BaseURL:   cfg.PaystackBaseURL,
		PNSubKey:  cfg.PaystackPNSubKey,
		PNUUID:    cfg.PaystackPNUUID,
		PNChannel: cfg.PaystackPNChannel,
	})
	if err != nil {
		if cfg.Environment != "development" {
			return err
		}
		slog.Warn("falling back to simulated gateway", "provider", cfg.PaymentProvider, "error", err)
		gateway, _ = payment.NewFactory().CreateGateway(ctx, payment.ProviderSimulator, nil)
	}
	defer gateway.Close(context.Background())

	// Initialize services
	monitor := monitoring.NewMonitor(redisClient)
	docStore := store.NewRedisStore(redisClient)
	ticketService := services.NewTicketService(docStore, pn, cfg.Currency)
	ticketService.Monitor = monitor
	ledgerService := services.NewLedgerService(docStore)
	ledgerService.Monitor = monitor
	badgeService := services.NewBadgeService(ledgerService)
	checkoutService := services.NewCheckoutService(
		redisClient, ticketService, gateway, pn, monitor,
		cfg.PaystackPublicKey, cfg.Currency, cfg.CheckoutTimeout,
	)

	// Relay asynchronous gateway notifications into checkout settlement
	txChannel := make(chan *status.Transaction, 1)
	gateway.SetTransactionChannel(txChannel)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case tx := <-txChannel:
				slog.Info("gateway transaction notification", "reference", tx.Reference, "status", tx.Status)
				if err := checkoutService.HandleGatewayNotification(ctx, tx); err != nil {
					slog.Error("checkoutService.HandleGatewayNotification()", "reference", tx.Reference, "error", err)
				}
			}
		}
	}()

	// Initialize handlers
	checkoutHandler := handlers.NewCheckoutHandler(app, checkoutService, gateway)
	orderHandler := handlers.NewOrderHandler(ledgerService, badgeService, cfg.OrdersPageSize)
	catalogHandler := handlers.NewCatalogHandler(app)
	adminHandler := handlers.NewAdminHandler(ticketService, redisClient)
	rateLimiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Start background tasks
	go badgeService.RefreshLoop(ctx, cfg.BadgeRefreshInterval)
	go monitor.CollectLoop(ctx)

	if cfg.EnableMetrics {
		go serveMetrics(cfg.MetricsPort)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Catalog endpoints
		e.Router.GET("/api/v1/catalog/rooms", catalogHandler.GetRooms)
		e.Router.GET("/api/v1/catalog/foods", catalogHandler.GetFoods)

		// Checkout endpoints
		e.Router.POST("/api/v1/checkout/initiate", checkoutHandler.InitiateCheckout).
			BindFunc(rateLimiter.CheckoutRateLimit(cfg.CheckoutRateLimit, cfg.CheckoutRateWindow))
		e.Router.POST("/api/v1/checkout/{checkoutId}/success", checkoutHandler.ConfirmPayment)
		e.Router.POST("/api/v1/checkout/{checkoutId}/cancel", checkoutHandler.CancelCheckout)
		e.Router.GET("/api/v1/checkout/{checkoutId}/status", checkoutHandler.CheckoutStatus)

		// Gateway webhook (unauthenticated, signature-verified)
		e.Router.POST("/api/v1/payment/paystack/webhook", checkoutHandler.PaystackWebhook)

		// Order ledger endpoints
		e.Router.GET("/api/v1/orders", orderHandler.ListOrders)
		e.Router.GET("/api/v1/orders/badge", orderHandler.GetBadge)
		e.Router.POST("/api/v1/orders/badge/seen", orderHandler.MarkBadgeSeen)

		// Admin endpoints
		e.Router.POST("/api/v1/admin/tickets/allocate", adminHandler.AllocateTicket)
		e.Router.GET("/api/v1/admin/checkout-dashboard", adminHandler.CheckoutDashboard)

		// Test endpoint for payment simulation
		if cfg.Environment == "development" {
			e.Router.POST("/api/v1/test/simulate-payment", checkoutHandler.SimulatePayment)
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Error serving metrics: %v", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
