package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/distria/distria/internal"
	"github.com/distria/distria/internal/ai"
	"github.com/distria/distria/internal/ai/mock"
	"github.com/distria/distria/internal/ai/openai"
	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/graphql"
	"github.com/distria/distria/internal/handler"
	"github.com/distria/distria/internal/metrics"
	"github.com/distria/distria/internal/middleware"
	"github.com/distria/distria/internal/report"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Backend GraphQL client
	backend := graphql.NewClient(cfg.GraphQLURL, logger, graphql.WithTimeout(cfg.GraphQLTimeout))
	logger.Info("Backend configured", "endpoint", cfg.GraphQLURL)

	// AI provider
	provider, err := newAIProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("ai provider initialization failed: %w", err)
	}
	logger.Info("AI provider configured", "provider", cfg.AIProvider)

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		TemplatesDir: "web/templates",
		Logger:       logger,
		IsDev:        cfg.Env == "development",
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// Initialize middleware
	isSecure := cfg.IsProduction()
	authMw := middleware.NewAuthMiddleware(backend, logger, isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	rateLimiter := middleware.NewAuthRateLimiter(logger)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(backend, renderer, logger, isSecure)
	dashboardHandler := handler.NewDashboardHandler(backend, renderer, logger, isSecure)
	productHandler := handler.NewProductHandler(backend, renderer, logger, isSecure)
	clientHandler := handler.NewClientHandler(backend, renderer, logger, isSecure)
	inventoryHandler := handler.NewInventoryHandler(backend, renderer, logger, isSecure)
	orderHandler := handler.NewOrderHandler(backend, renderer, logger, isSecure)
	routeHandler := handler.NewRouteHandler(backend, renderer, logger, isSecure)
	locationHandler := handler.NewLocationHandler(backend, renderer, logger, isSecure)
	reportHandler := handler.NewReportHandler(backend, report.NewPDFGenerator(), renderer, logger, isSecure)
	assistantHandler := handler.NewAssistantHandler(provider, renderer, logger, isSecure, cfg.AIMaxTokens)

	// Middleware stacks
	public := authMw.Hydrate
	protected := middleware.Stack(authMw.Hydrate, authMw.RequireAuth)
	adminOnly := middleware.Stack(authMw.Hydrate, authMw.RequireAuth, authMw.RequireRole(domain.RoleAdmin))
	courierOnly := middleware.Stack(authMw.Hydrate, authMw.RequireAuth, authMw.RequireRole(domain.RoleCourier))

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	staticFS := http.FileServer(http.Dir("web/static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (basic-auth protected)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Root: send the visitor to their home page
	mux.Handle("GET /", public(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			handler.NotFoundResponse(w, r, logger)
			return
		}
		if store := auth.GetSession(r.Context()); store != nil {
			store.CheckAuth()
			if store.IsAuthenticated() {
				http.Redirect(w, r, middleware.RoleHome(store.User().Role), http.StatusSeeOther)
				return
			}
		}
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
	})))

	// Auth pages (public, rate limited on submission)
	mux.Handle("GET /sign-in", public(http.HandlerFunc(authHandler.ShowSignIn)))
	mux.Handle("POST /sign-in", public(rateLimiter.LimitLogin(http.HandlerFunc(authHandler.SignIn))))
	mux.Handle("GET /sign-up", public(http.HandlerFunc(authHandler.ShowSignUp)))
	mux.Handle("POST /sign-up", public(rateLimiter.LimitSignup(http.HandlerFunc(authHandler.SignUp))))
	mux.Handle("POST /logout", public(http.HandlerFunc(authHandler.Logout)))

	// Dashboards
	mux.Handle("GET /dashboard", adminOnly(http.HandlerFunc(dashboardHandler.Dashboard)))
	mux.Handle("GET /courier/dashboard", courierOnly(http.HandlerFunc(dashboardHandler.CourierDashboard)))

	// Products (admin)
	mux.Handle("GET /dashboard/products", adminOnly(http.HandlerFunc(productHandler.List)))
	mux.Handle("POST /dashboard/products", adminOnly(http.HandlerFunc(productHandler.Create)))
	mux.Handle("POST /dashboard/products/{id}/update", adminOnly(http.HandlerFunc(productHandler.Update)))
	mux.Handle("POST /dashboard/products/{id}/deactivate", adminOnly(http.HandlerFunc(productHandler.Deactivate)))
	mux.Handle("POST /dashboard/products/{id}/activate", adminOnly(http.HandlerFunc(productHandler.Activate)))

	// Clients (admin)
	mux.Handle("GET /dashboard/clients", adminOnly(http.HandlerFunc(clientHandler.List)))
	mux.Handle("POST /dashboard/clients", adminOnly(http.HandlerFunc(clientHandler.Create)))
	mux.Handle("POST /dashboard/clients/{id}/update", adminOnly(http.HandlerFunc(clientHandler.Update)))
	mux.Handle("POST /dashboard/clients/{id}/deactivate", adminOnly(http.HandlerFunc(clientHandler.Deactivate)))
	mux.Handle("POST /dashboard/clients/{id}/activate", adminOnly(http.HandlerFunc(clientHandler.Activate)))
	mux.Handle("POST /dashboard/clients/{id}/location", adminOnly(http.HandlerFunc(clientHandler.UpdateLocation)))

	// Inventory (admin)
	mux.Handle("GET /dashboard/inventory", adminOnly(http.HandlerFunc(inventoryHandler.List)))
	mux.Handle("GET /dashboard/inventory/{id}/movements", adminOnly(http.HandlerFunc(inventoryHandler.Movements)))
	mux.Handle("POST /dashboard/inventory/adjust", adminOnly(http.HandlerFunc(inventoryHandler.Adjust)))
	mux.Handle("POST /dashboard/inventory/{id}/deactivate", adminOnly(http.HandlerFunc(inventoryHandler.Deactivate)))

	// Orders (couriers see and update the orders on their routes)
	mux.Handle("GET /dashboard/orders", protected(http.HandlerFunc(orderHandler.List)))
	mux.Handle("GET /dashboard/orders/{id}", protected(http.HandlerFunc(orderHandler.Detail)))
	mux.Handle("POST /dashboard/orders", adminOnly(http.HandlerFunc(orderHandler.Create)))
	mux.Handle("POST /dashboard/orders/{id}/status", protected(http.HandlerFunc(orderHandler.UpdateStatus)))
	mux.Handle("POST /dashboard/orders/{id}/cancel", adminOnly(http.HandlerFunc(orderHandler.Cancel)))
	mux.Handle("POST /dashboard/orders/{id}/deactivate", adminOnly(http.HandlerFunc(orderHandler.Deactivate)))

	// Routes (couriers see their own; management is admin-only)
	mux.Handle("GET /dashboard/routes", adminOnly(http.HandlerFunc(routeHandler.List)))
	mux.Handle("GET /dashboard/routes/{id}", protected(http.HandlerFunc(routeHandler.Detail)))
	mux.Handle("POST /dashboard/routes", adminOnly(http.HandlerFunc(routeHandler.Create)))
	mux.Handle("POST /dashboard/routes/{id}/assign", adminOnly(http.HandlerFunc(routeHandler.Assign)))
	mux.Handle("POST /dashboard/routes/{id}/orders/{orderID}/remove", adminOnly(http.HandlerFunc(routeHandler.RemoveOrder)))
	mux.Handle("POST /dashboard/routes/{id}/status", protected(http.HandlerFunc(routeHandler.UpdateStatus)))
	mux.Handle("POST /dashboard/routes/{id}/deactivate", adminOnly(http.HandlerFunc(routeHandler.Deactivate)))
	mux.Handle("POST /dashboard/routes/{id}/delete", adminOnly(http.HandlerFunc(routeHandler.Delete)))

	// Company location (admin)
	mux.Handle("GET /dashboard/company/location", adminOnly(http.HandlerFunc(locationHandler.Show)))
	mux.Handle("POST /dashboard/company/location", adminOnly(http.HandlerFunc(locationHandler.Update)))

	// Reports (admin)
	mux.Handle("GET /dashboard/reports", adminOnly(http.HandlerFunc(reportHandler.Index)))
	mux.Handle("GET /dashboard/reports/inventory.pdf", adminOnly(http.HandlerFunc(reportHandler.InventoryPDF)))
	mux.Handle("GET /dashboard/reports/orders.pdf", adminOnly(http.HandlerFunc(reportHandler.OrdersPDF)))
	mux.Handle("GET /dashboard/reports/routes.pdf", adminOnly(http.HandlerFunc(reportHandler.RoutesPDF)))

	// AI assistant
	mux.Handle("GET /dashboard/assistant", protected(http.HandlerFunc(assistantHandler.Show)))
	mux.Handle("POST /api/ai/chat", protected(rateLimiter.LimitAssistant(http.HandlerFunc(assistantHandler.Chat))))
	mux.Handle("POST /api/ai/transcribe", protected(http.HandlerFunc(assistantHandler.Transcribe)))

	// Outer middleware: logging, security headers, HTTP metrics
	root := middleware.Stack(loggingMw.Handler, securityMw.Handler, metrics.Middleware)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newAIProvider builds the configured assistant provider.
func newAIProvider(cfg *internal.Config, logger *slog.Logger) (ai.Provider, error) {
	switch cfg.AIProvider {
	case "openai":
		return openai.New(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			ProviderConfig: ai.ProviderConfig{
				RequestTimeout: cfg.AIRequestTimeout,
			},
		}, logger)
	default:
		return mock.New(logger), nil
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
