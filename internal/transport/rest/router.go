package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает маршруты ядра заказов.
func NewRouter(handler *Handler, logger *log.Entry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", handler.CreateProduct)
		r.Get("/", handler.ListProducts)
		r.Get("/{id}", handler.GetProduct)
		r.Put("/{id}/stock", handler.AdjustStock)
	})

	r.Route("/carts/{customerID}", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Delete("/", handler.ClearCart)
		r.Post("/items", handler.AddCartItem)
		r.Put("/items/{productID}", handler.SetCartItem)
		r.Delete("/items/{productID}", handler.RemoveCartItem)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", handler.PlaceOrder)
		r.Get("/", handler.ListOrders)
		r.Get("/{id}", handler.GetOrder)
		r.Put("/{id}/status", handler.UpdateOrderStatus)
		r.Delete("/{id}", handler.CancelOrder)
		r.Get("/{id}/timeline", handler.GetOrderTimeline)
	})

	return r
}

// requestLogger пишет строку доступа через logrus после обработки запроса.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.New().WithField("component", "rest")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("http request")
		})
	}
}
