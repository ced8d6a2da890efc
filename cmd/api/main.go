package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"vintage-backend/config"
	"vintage-backend/internal/delivery/http/middleware"
	v1 "vintage-backend/internal/delivery/http/v1"
	"vintage-backend/internal/infrastructure/cache"
	"vintage-backend/internal/infrastructure/gateway"
	pgrepo "vintage-backend/internal/repository/postgres"
	"vintage-backend/internal/usecase"
	"vintage-backend/pkg/logger"
	"vintage-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Database
	pgxPool, err := pgrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Initialize Repositories
	catalogRepo := pgrepo.NewCatalogRepository(pgxPool)
	cartRepo := pgrepo.NewCartRepository(pgxPool)
	orderRepo := pgrepo.NewOrderRepository(pgxPool)
	walletRepo := pgrepo.NewWalletRepository(pgxPool)
	couponRepo := pgrepo.NewCouponRepository(pgxPool)
	offerRepo := pgrepo.NewOfferRepository(pgxPool)
	userRepo := pgrepo.NewUserRepository(pgxPool)
	intentRepo := pgrepo.NewPaymentIntentRepository(pgxPool)
	txManager := pgrepo.NewTransactionManager(pgxPool)

	// Initialize Cache (In-Memory)
	memCache := cache.NewMemoryCache(cfg.CacheCouponTTL, 2*cfg.CacheCouponTTL)

	// Payment Gateway
	paymentGateway := gateway.NewRazorpayGateway(cfg.GatewayKeyID, cfg.GatewayKeySecret, cfg.GatewayBaseURL)

	// Set up Router
	mux := http.NewServeMux()

	// --- Modules Initialization ---

	pricing := usecase.NewPricingResolver()

	// Cart Module
	cartUC := usecase.NewCartUsecase(cartRepo, catalogRepo, pricing, cfg.MaxCartQuantity, cfg.ShippingFee, cfg.FreeShippingThreshold)
	cartHandler := v1.NewCartHandler(cartUC)

	// Checkout Module
	checkoutUC := usecase.NewCheckoutUsecase(
		cartRepo,
		catalogRepo,
		orderRepo,
		walletRepo,
		couponRepo,
		userRepo,
		pricing,
		txManager,
		usecase.CheckoutConfig{
			CODCeiling:            cfg.CODCeiling,
			ShippingFee:           cfg.ShippingFee,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
		},
	)
	checkoutHandler := v1.NewCheckoutHandler(checkoutUC, userRepo)

	// Order Module
	orderUC := usecase.NewOrderUsecase(orderRepo, catalogRepo, walletRepo, pricing, txManager)
	orderHandler := v1.NewOrderHandler(orderUC)
	adminOrderHandler := v1.NewAdminOrderHandler(orderUC)

	// Wallet Module
	walletUC := usecase.NewWalletUsecase(walletRepo, cfg.WalletPageSize)
	walletHandler := v1.NewWalletHandler(walletUC)
	adminWalletHandler := v1.NewAdminWalletHandler(walletUC)

	// Coupon Module
	couponUC := usecase.NewCouponUsecase(couponRepo, memCache, pricing, cfg.CacheCouponTTL)
	couponHandler := v1.NewCouponHandler(couponUC)
	adminCouponHandler := v1.NewAdminCouponHandler(couponUC)

	// Offer Module
	offerUC := usecase.NewOfferUsecase(offerRepo, catalogRepo, pricing, txManager)
	adminOfferHandler := v1.NewAdminOfferHandler(offerUC)

	// Payment Module
	paymentUC := usecase.NewPaymentUsecase(intentRepo, paymentGateway, checkoutUC, cfg.PaymentIntentTTL)
	paymentHandler := v1.NewPaymentHandler(paymentUC)

	// Inventory Module
	inventoryUC := usecase.NewInventoryUsecase(catalogRepo)
	adminInventoryHandler := v1.NewAdminInventoryHandler(inventoryUC)

	// Admin (Protected)
	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Cart (Protected)
	mux.Handle("GET /api/v1/cart", middleware.AuthMiddleware(http.HandlerFunc(cartHandler.GetCart)))
	mux.Handle("POST /api/v1/cart", middleware.AuthMiddleware(http.HandlerFunc(cartHandler.AddToCart)))
	mux.Handle("PUT /api/v1/cart/{variantId}", middleware.AuthMiddleware(http.HandlerFunc(cartHandler.UpdateCartItem)))
	mux.Handle("DELETE /api/v1/cart/{variantId}", middleware.AuthMiddleware(http.HandlerFunc(cartHandler.RemoveFromCart)))

	// Checkout (Protected)
	mux.Handle("POST /api/v1/checkout", middleware.AuthMiddleware(http.HandlerFunc(checkoutHandler.Checkout)))
	mux.Handle("GET /api/v1/user/addresses", middleware.AuthMiddleware(http.HandlerFunc(checkoutHandler.ListAddresses)))

	// Orders (Protected)
	mux.Handle("GET /api/v1/orders", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetMyOrders)))
	mux.Handle("GET /api/v1/orders/{id}", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetMyOrder)))
	mux.Handle("POST /api/v1/orders/{id}/cancel", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.CancelOrder)))
	mux.Handle("POST /api/v1/orders/{id}/items/{itemId}/return", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.RequestReturn)))

	// Wallet (Protected)
	mux.Handle("GET /api/v1/wallet", middleware.AuthMiddleware(http.HandlerFunc(walletHandler.GetWallet)))

	// Coupons (Protected)
	mux.Handle("GET /api/v1/coupons", middleware.AuthMiddleware(http.HandlerFunc(couponHandler.AvailableCoupons)))
	mux.Handle("POST /api/v1/coupons/apply", middleware.AuthMiddleware(http.HandlerFunc(couponHandler.ApplyCoupon)))

	// Payments (Protected)
	mux.Handle("POST /api/v1/payment/create", middleware.AuthMiddleware(http.HandlerFunc(paymentHandler.CreateIntent)))
	mux.Handle("POST /api/v1/payment/verify", middleware.AuthMiddleware(http.HandlerFunc(paymentHandler.VerifyPayment)))
	mux.Handle("POST /api/v1/payment/cancel", middleware.AuthMiddleware(http.HandlerFunc(paymentHandler.CancelPayment)))
	mux.Handle("POST /api/v1/payment/failure", middleware.AuthMiddleware(http.HandlerFunc(paymentHandler.PaymentFailure)))

	// Admin Orders
	mux.Handle("GET /api/v1/admin/orders", adminMiddleware(adminOrderHandler.GetAllOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", adminMiddleware(adminOrderHandler.GetOrder))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", adminMiddleware(adminOrderHandler.UpdateOrderStatus))
	mux.Handle("GET /api/v1/admin/returns", adminMiddleware(adminOrderHandler.ListReturnRequests))
	mux.Handle("POST /api/v1/admin/orders/{id}/items/{itemId}/return", adminMiddleware(adminOrderHandler.ResolveReturn))

	// Admin Coupons
	mux.Handle("GET /api/v1/admin/coupons", adminMiddleware(adminCouponHandler.ListCoupons))
	mux.Handle("GET /api/v1/admin/coupons/{id}", adminMiddleware(adminCouponHandler.GetCoupon))
	mux.Handle("POST /api/v1/admin/coupons", adminMiddleware(adminCouponHandler.CreateCoupon))
	mux.Handle("PUT /api/v1/admin/coupons/{id}", adminMiddleware(adminCouponHandler.UpdateCoupon))
	mux.Handle("DELETE /api/v1/admin/coupons/{id}", adminMiddleware(adminCouponHandler.DeleteCoupon))

	// Admin Offers
	mux.Handle("GET /api/v1/admin/offers", adminMiddleware(adminOfferHandler.ListOffers))
	mux.Handle("GET /api/v1/admin/offers/{id}", adminMiddleware(adminOfferHandler.GetOffer))
	mux.Handle("POST /api/v1/admin/offers", adminMiddleware(adminOfferHandler.CreateOffer))
	mux.Handle("PUT /api/v1/admin/offers/{id}", adminMiddleware(adminOfferHandler.UpdateOffer))
	mux.Handle("DELETE /api/v1/admin/offers/{id}", adminMiddleware(adminOfferHandler.DeleteOffer))

	// Admin Wallet
	mux.Handle("GET /api/v1/admin/wallet/transactions", adminMiddleware(adminWalletHandler.GetAllTransactions))
	mux.Handle("POST /api/v1/admin/wallet/credit", adminMiddleware(adminWalletHandler.CreditWallet))

	// Admin Inventory
	mux.Handle("POST /api/v1/admin/inventory/{variantId}/adjust", adminMiddleware(adminInventoryHandler.AdjustStock))
	mux.Handle("GET /api/v1/admin/inventory/{variantId}/logs", adminMiddleware(adminInventoryHandler.GetInventoryLogs))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Initialize Rate Limiter with lifecycle management
	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,            // requests per second
		100,           // burst
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Background sweepers: expire outdated coupons and abandoned payment intents.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if err := couponUC.ExpireOutdated(sweepCtx); err != nil {
					log.Error().Err(err).Msg("Coupon expiration sweep failed")
				}
				if err := paymentUC.ExpireStale(sweepCtx); err != nil {
					log.Error().Err(err).Msg("Payment intent sweep failed")
				}
			}
		}
	}()

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Stop background goroutines before draining connections
	stopSweeper()
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
