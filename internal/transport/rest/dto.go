package rest

import (
	"time"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

// --- Запросы ---

type createProductRequest struct {
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Quantity   int32  `json:"quantity"`
	ExpiresAt  string `json:"expires_at"` // формат RFC 3339
	CategoryID string `json:"category_id"`
}

type adjustStockRequest struct {
	Delta int32 `json:"delta"`
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type setCartItemRequest struct {
	Qty int32 `json:"qty"`
}

type placeOrderRequest struct {
	CustomerID      string             `json:"customer_id"`
	Items           []orderItemRequest `json:"items"`
	FromCart        bool               `json:"from_cart"`
	PaymentMethod   string             `json:"payment_method"`
	DeliveryAddress string             `json:"delivery_address"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Ответы ---

type productResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceMinor int64     `json:"price_minor"`
	Quantity   int32     `json:"quantity"`
	ExpiresAt  time.Time `json:"expires_at"`
	CategoryID string    `json:"category_id"`
}

type cartResponse struct {
	ID         string           `json:"id"`
	CustomerID string           `json:"customer_id"`
	Items      map[string]int32 `json:"items"`
	TotalItems int32            `json:"total_items"`
	TotalMinor int64            `json:"total_minor"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	Status     string              `json:"status"`
	Lines      []orderLineResponse `json:"lines"`
	TotalMinor int64               `json:"total_minor"`
	Payment    paymentResponse     `json:"payment"`
	Delivery   deliveryResponse    `json:"delivery"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type orderLineResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	PriceMinor  int64  `json:"price_minor"`
	Qty         int32  `json:"qty"`
}

type paymentResponse struct {
	ID          string `json:"id"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount_minor"`
}

type deliveryResponse struct {
	ID          string     `json:"id"`
	Address     string     `json:"address"`
	Status      string     `json:"status"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

type timelineEventResponse struct {
	Type     string    `json:"type"`
	Actor    string    `json:"actor,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

// --- Маппинг домена в DTO (границы слоя: домен не знает о JSON) ---

func mapProduct(p domain.Product) productResponse {
	return productResponse{
		ID:         p.ID,
		Name:       p.Name,
		PriceMinor: p.PriceMinor,
		Quantity:   p.Quantity,
		ExpiresAt:  p.ExpiresAt,
		CategoryID: p.CategoryID,
	}
}

func mapCart(c domain.Cart) cartResponse {
	items := c.Lines
	if items == nil {
		items = map[string]int32{}
	}
	return cartResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Items:      items,
		TotalItems: c.TotalItems,
		TotalMinor: c.TotalMinor,
		UpdatedAt:  c.UpdatedAt,
	}
}

func mapOrder(o domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, orderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			PriceMinor:  line.PriceMinor,
			Qty:         line.Qty,
		})
	}
	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		Lines:      lines,
		TotalMinor: o.TotalMinor,
		Payment: paymentResponse{
			ID:          o.Payment.ID,
			Method:      o.Payment.Method,
			Status:      string(o.Payment.Status),
			AmountMinor: o.Payment.AmountMinor,
		},
		Delivery: deliveryResponse{
			ID:          o.Delivery.ID,
			Address:     o.Delivery.Address,
			Status:      string(o.Delivery.Status),
			DeliveredAt: o.Delivery.DeliveredAt,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func mapTimeline(events []domain.TimelineEvent) []timelineEventResponse {
	result := make([]timelineEventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, timelineEventResponse{
			Type:     event.Type,
			Actor:    event.Actor,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	return result
}
