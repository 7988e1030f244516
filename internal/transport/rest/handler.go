// Package rest публикует операции корзины, каталога и заказов поверх chi.
// Слой только декодирует запросы, передаёт явного принципала в сервисы и
// переводит доменные ошибки в HTTP-статусы.
package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/grocery/internal/auth"
	"github.com/vladislavdragonenkov/grocery/internal/domain"
	"github.com/vladislavdragonenkov/grocery/internal/service/cart"
	"github.com/vladislavdragonenkov/grocery/internal/service/order"
)

const defaultListOrdersLimit = 100

// Handler обрабатывает HTTP-запросы к ядру заказов.
type Handler struct {
	orders   *order.Service
	carts    *cart.Ledger
	products domain.ProductRepository
	logger   *log.Entry
}

// NewHandler конструирует обработчик с зависимостями.
func NewHandler(orders *order.Service, carts *cart.Ledger, products domain.ProductRepository, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "rest")
	}
	return &Handler{
		orders:   orders,
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// --- Каталог ---

// CreateProduct регистрирует товар в каталоге.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	var detalhes []string
	if strings.TrimSpace(req.Name) == "" {
		detalhes = append(detalhes, "name: must not be blank")
	}
	if req.PriceMinor < 0 {
		detalhes = append(detalhes, "price_minor: must be non-negative")
	}
	if req.Quantity < 0 {
		detalhes = append(detalhes, "quantity: must be non-negative")
	}
	var expiresAt time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			detalhes = append(detalhes, "expires_at: must be RFC 3339")
		} else {
			expiresAt = parsed
		}
	}
	if len(detalhes) > 0 {
		writeError(w, r, http.StatusBadRequest, "validation failed", detalhes)
		return
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(req.Name),
		PriceMinor: req.PriceMinor,
		Quantity:   req.Quantity,
		ExpiresAt:  expiresAt,
		CategoryID: req.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.products.Create(product); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(product))
}

// ListProducts возвращает каталог.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List()
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	result := make([]productResponse, 0, len(products))
	for _, product := range products {
		result = append(result, mapProduct(product))
	}
	writeJSON(w, http.StatusOK, result)
}

// GetProduct возвращает товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(product))
}

// AdjustStock корректирует остаток товара на delta.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	product, err := h.products.AdjustStock(chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(product))
}

// --- Корзина ---

// GetCart возвращает корзину клиента, лениво создавая пустую.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Get(chi.URLParam(r, "customerID"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

// AddCartItem добавляет qty единиц товара к существующей позиции корзины.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	var detalhes []string
	if req.ProductID == "" {
		detalhes = append(detalhes, "product_id: must not be blank")
	}
	if req.Qty < 1 {
		detalhes = append(detalhes, "qty: must be at least 1")
	}
	if len(detalhes) > 0 {
		writeError(w, r, http.StatusBadRequest, "validation failed", detalhes)
		return
	}

	cart, err := h.carts.AddItem(chi.URLParam(r, "customerID"), req.ProductID, req.Qty)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

// SetCartItem выставляет количество позиции, перезаписывая прежнее.
func (h *Handler) SetCartItem(w http.ResponseWriter, r *http.Request) {
	var req setCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body", nil)
		return
	}
	if req.Qty < 1 {
		writeError(w, r, http.StatusBadRequest, "validation failed", []string{"qty: must be at least 1"})
		return
	}

	cart, err := h.carts.SetItem(chi.URLParam(r, "customerID"), chi.URLParam(r, "productID"), req.Qty)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

// RemoveCartItem удаляет позицию из корзины.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveItem(chi.URLParam(r, "customerID"), chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

// ClearCart опустошает корзину, не удаляя её.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Clear(chi.URLParam(r, "customerID"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

// --- Заказы ---

// PlaceOrder оформляет заказ из явного списка позиций или из корзины клиента.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	principal := auth.FromRequest(r)
	customerID := req.CustomerID
	if customerID == "" {
		// Для аутентифицированных клиентов customer_id можно опустить.
		customerID = principal.ID
	}

	var detalhes []string
	if customerID == "" {
		detalhes = append(detalhes, "customer_id: must not be blank")
	}
	if req.PaymentMethod == "" {
		detalhes = append(detalhes, "payment_method: must not be blank")
	}
	if req.DeliveryAddress == "" {
		detalhes = append(detalhes, "delivery_address: must not be blank")
	}
	if !req.FromCart && len(req.Items) == 0 {
		detalhes = append(detalhes, "items: must contain at least one item")
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			detalhes = append(detalhes, "items["+strconv.Itoa(i)+"].product_id: must not be blank")
		}
		if item.Qty < 1 {
			detalhes = append(detalhes, "items["+strconv.Itoa(i)+"].qty: must be at least 1")
		}
	}
	if len(detalhes) > 0 {
		writeError(w, r, http.StatusBadRequest, "validation failed", detalhes)
		return
	}

	var placed domain.Order
	var err error
	if req.FromCart {
		placed, err = h.orders.PlaceOrderFromCart(principal, customerID, req.PaymentMethod, req.DeliveryAddress)
	} else {
		lines := make([]order.LineRequest, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, order.LineRequest{ProductID: item.ProductID, Qty: item.Qty})
		}
		placed, err = h.orders.PlaceOrder(principal, customerID, lines, req.PaymentMethod, req.DeliveryAddress)
	}
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(placed))
}

// GetOrder возвращает заказ с позициями, платежом и доставкой.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	placed, err := h.orders.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(placed))
}

// ListOrders возвращает заказы клиента из query-параметра customer_id.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	limit := defaultListOrdersLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, r, http.StatusBadRequest, "validation failed", []string{"limit: must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	orders, err := h.orders.ListByCustomer(customerID, limit)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	result := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, result)
}

// UpdateOrderStatus переводит заказ вперёд по жизненному циклу.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body", nil)
		return
	}
	if req.Status == "" {
		writeError(w, r, http.StatusBadRequest, "validation failed", []string{"status: must not be blank"})
		return
	}

	status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	updated, err := h.orders.UpdateStatus(auth.FromRequest(r), chi.URLParam(r, "id"), status)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(updated))
}

// CancelOrder отменяет заказ с возвратом остатков.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	canceled, err := h.orders.Cancel(auth.FromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(canceled))
}

// GetOrderTimeline возвращает события жизненного цикла заказа.
func (h *Handler) GetOrderTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.orders.Timeline(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapTimeline(events))
}
