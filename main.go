package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/manavault/backend/src/config"
	"github.com/username/manavault/backend/src/database"
	"github.com/username/manavault/backend/src/handlers"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/model"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/parsers/manabox"
	"github.com/username/manavault/backend/src/processors"
	"github.com/username/manavault/backend/src/security"
	"github.com/username/manavault/backend/src/services"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":    true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("ManaVault backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid.")
		os.Exit(1)
	}

	conditionRates, err := models.LoadConditionRates(config.Cfg.ConditionRatesPath)
	if err != nil {
		logger.L.Error("Failed to load condition rates", "path", config.Cfg.ConditionRatesPath, "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)
	priceService := services.NewPriceService(config.Cfg.ScryfallAPIURL)

	valuationProcessor := processors.NewValuationProcessor(conditionRates)
	buybackProcessor := processors.NewBuybackProcessor(valuationProcessor)
	balanceProcessor := processors.NewBalanceProcessor(valuationProcessor)

	tradingService := services.NewTradingService(
		valuationProcessor,
		buybackProcessor,
		balanceProcessor,
		config.Cfg.TradeTolerance,
		config.Cfg.VerifiedMinTrades,
		config.Cfg.VerifiedMinRating,
	)
	escrowService := services.NewEscrowService(
		services.NewEscrowStore(database.DB),
		config.Cfg.EscrowExpiry,
		config.Cfg.EscrowFeePercent,
		config.Cfg.EscrowFlatFee,
	)
	inventoryService := services.NewInventoryService(
		database.DB,
		manabox.NewParser(),
		priceService,
		config.Cfg.PriceMarkup,
		config.Cfg.USDPHPRate,
	)
	orderService := services.NewOrderService(database.DB, reportCache, config.Cfg.VATRate, config.Cfg.ShippingFlatFee)
	wishlistRepository := services.NewWishlistRepository(database.DB)

	userHandler := handlers.NewUserHandler(authService)
	cardHandler := handlers.NewCardHandler()
	tradeHandler := handlers.NewTradeHandler(tradingService)
	escrowHandler := handlers.NewEscrowHandler(escrowService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	orderHandler := handlers.NewOrderHandler(orderService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistRepository)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "ManaVault Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", userHandler.RegisterUserHandler)
			r.Post("/auth/login", userHandler.LoginUserHandler)

			r.Get("/cards", cardHandler.HandleListCards)
			r.Get("/cards/{id}", cardHandler.HandleGetCard)
			r.Get("/inventory", inventoryHandler.HandleListInventory)

			// Quoting endpoints are open so a browsing customer can price a
			// trade before signing in.
			r.Post("/trades/valuate", tradeHandler.HandleValuateCard)
			r.Post("/trades/basket-value", tradeHandler.HandleBasketValue)
			r.Post("/trades/buyback", tradeHandler.HandleBuybackQuote)
			r.Post("/trades/balance", tradeHandler.HandleTradeBalance)
			r.Post("/trades/summary", tradeHandler.HandleTradeSummary)
			r.Post("/escrow/fee-quote", escrowHandler.HandleFeeQuote)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(userHandler.AuthMiddleware)

			r.Get("/user/me", userHandler.HandleGetMe)
			r.Get("/user/verified-status", tradeHandler.HandleVerifiedStatus)

			r.Post("/escrow", escrowHandler.HandleCreateEscrow)
			r.Get("/escrow/{id}", escrowHandler.HandleGetEscrow)
			r.Post("/escrow/{id}/fund", escrowHandler.HandleFundEscrow)
			r.Post("/escrow/{id}/release", escrowHandler.HandleReleaseEscrow)
			r.Post("/escrow/{id}/refund", escrowHandler.HandleRefundEscrow)
			r.Post("/escrow/{id}/dispute", escrowHandler.HandleDisputeEscrow)
			r.Post("/escrow/{id}/rate", escrowHandler.HandleRateEscrow)

			r.Post("/orders", orderHandler.HandleCreateOrder)

			r.Get("/wishlist", wishlistHandler.HandleListWishlist)
			r.Post("/wishlist", wishlistHandler.HandleAddToWishlist)
			r.Delete("/wishlist/{id}", wishlistHandler.HandleRemoveFromWishlist)

			// Staff routes
			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireRole(model.RoleStaff, model.RoleAdmin))
				r.Post("/inventory/import", inventoryHandler.HandleImportCSV)
				r.Get("/orders", orderHandler.HandleListOrders)
				r.Patch("/orders/{id}/status", orderHandler.HandleUpdateOrderStatus)
			})

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireRole(model.RoleAdmin))
				r.Get("/admin/sales-report", orderHandler.HandleSalesReport)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
