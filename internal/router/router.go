package router

import (
	"net/http"

	"agri-mandi/internal/handler"
	"agri-mandi/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New builds the HTTP router with all routes and middleware registered.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))
	r.Use(middleware.ActorID(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/{id}", productHandler.Get)
			r.Post("/{id}/restock", productHandler.Restock)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.Summary)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.List)
			r.Post("/", orderHandler.Create)
			r.Get("/{id}", orderHandler.Get)
			r.Post("/{id}/transition", orderHandler.Transition)
			r.Post("/{id}/confirm", orderHandler.Confirm)
			r.Post("/{id}/cancel", orderHandler.Cancel)
			r.Post("/{id}/payment", orderHandler.RecordPayment)
			r.Get("/{id}/history", orderHandler.History)
			r.Get("/{id}/status", orderHandler.Status)
		})
	})

	return r
}
