// Package server wires handlers, middlewares and health endpoints into the
// root http.Handler.
package server

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/traiteur-admin/internal/cache"
	"github.com/diewo77/traiteur-admin/internal/clients"
	"github.com/diewo77/traiteur-admin/internal/handlers"
	"github.com/diewo77/traiteur-admin/internal/httpx"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/middleware"
	"github.com/diewo77/traiteur-admin/internal/monitoring"
	"github.com/diewo77/traiteur-admin/internal/repository"
	"github.com/diewo77/traiteur-admin/internal/services"
)

// Deps are the collaborators New needs. Cache may be nil.
type Deps struct {
	DB    *gorm.DB
	Cache cache.DirectoryCache
	Log   *logger.Logger
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	dir := d.Cache
	if dir == nil {
		dir = cache.Noop{}
	}

	productRepo := repository.NewProductRepo(d.DB, log)
	promoRepo := repository.NewPromoCodeRepo(d.DB, log)
	quoteRepo := repository.NewQuoteRepo(d.DB, log)
	quoteSvc := services.NewQuoteService(quoteRepo, productRepo, promoRepo, dir, log)

	ph := handlers.NewProductHandler(productRepo, log)
	pch := handlers.NewPromoCodeHandler(promoRepo, log)
	qh := handlers.NewQuoteHandler(quoteRepo, quoteSvc, log)
	ch := handlers.NewClientHandler(clients.NewAggregator(quoteRepo, log), dir, log)

	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := d.DB.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", monitoring.Handler())

	// --- Products ---
	mux.HandleFunc("GET /products", ph.List)
	mux.HandleFunc("POST /products", ph.Create)
	mux.HandleFunc("GET /products/{id}", ph.Get)
	mux.HandleFunc("PUT /products/{id}", ph.Update)
	mux.HandleFunc("DELETE /products/{id}", ph.Delete)

	// --- Promo codes ---
	mux.HandleFunc("GET /promo-codes", pch.List)
	mux.HandleFunc("POST /promo-codes", pch.Create)
	mux.HandleFunc("GET /promo-codes/check", pch.Check)
	mux.HandleFunc("GET /promo-codes/{id}", pch.Get)
	mux.HandleFunc("PUT /promo-codes/{id}", pch.Update)
	mux.HandleFunc("DELETE /promo-codes/{id}", pch.Delete)

	// --- Quotes ---
	mux.HandleFunc("GET /quotes", qh.List)
	mux.HandleFunc("POST /quotes", qh.Create)
	mux.HandleFunc("GET /quotes/finished", qh.ListFinished)
	mux.HandleFunc("GET /quotes/deleted", qh.ListDeleted)
	mux.HandleFunc("GET /quotes/{id}", qh.Get)
	mux.HandleFunc("PUT /quotes/{id}", qh.Update)
	mux.HandleFunc("POST /quotes/{id}/finish", qh.Finish)
	mux.HandleFunc("POST /quotes/{id}/delete", qh.Delete)
	mux.HandleFunc("POST /quotes/finished/{id}/delete", qh.DeleteFinished)
	mux.HandleFunc("POST /quotes/deleted/{id}/restore", qh.Restore)

	// --- Clients (derived from quotes) ---
	mux.HandleFunc("GET /clients", ch.List)
	mux.HandleFunc("GET /clients/{phone}", ch.Get)

	return middleware.Chain(mux,
		middleware.Recover(log),
		middleware.RequestID,
		middleware.Logging(log),
		middleware.Metrics,
	)
}
