package domain_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

func TestErrorClassification(t *testing.T) {
	insufficient := &domain.InsufficientStockError{
		ProductID:   "product-1",
		ProductName: "Feijão 1kg",
		Available:   6,
		Requested:   7,
	}
	missing := &domain.ProductsNotFoundError{IDs: []string{"a", "b"}}
	transition := &domain.TransitionError{
		From: domain.OrderStatusPaid,
		To:   domain.OrderStatusCanceled,
	}

	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"product not found", domain.ErrProductNotFound, domain.IsNotFound},
		{"customer not found", domain.ErrCustomerNotFound, domain.IsNotFound},
		{"order not found", domain.ErrOrderNotFound, domain.IsNotFound},
		{"aggregate products not found", missing, domain.IsNotFound},
		{"duplicate name", domain.ErrProductNameTaken, domain.IsDuplicate},
		{"insufficient stock", insufficient, domain.IsInsufficientStock},
		{"cart line absent", domain.ErrCartLineAbsent, domain.IsBusinessRule},
		{"order not pending", domain.ErrOrderNotPending, domain.IsBusinessRule},
		{"cancel bypassed", domain.ErrCancelBypassed, domain.IsBusinessRule},
		{"negative stock adjust", domain.ErrStockNegative, domain.IsBusinessRule},
		{"illegal transition", transition, domain.IsBusinessRule},
		{"stock conflict", domain.ErrStockConflict, domain.IsConflict},
		{"order version conflict", domain.ErrOrderVersionConflict, domain.IsConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.check(tc.err) {
				t.Fatalf("expected positive classification for %v", tc.err)
			}
		})
	}

	// Обёртка через %w не должна ломать классификацию.
	wrapped := fmt.Errorf("place order: %w", insufficient)
	if !domain.IsInsufficientStock(wrapped) {
		t.Fatal("wrapped insufficient stock error lost its class")
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &domain.InsufficientStockError{
		ProductName: "Leite 1L",
		Available:   2,
		Requested:   5,
	}
	msg := err.Error()
	for _, part := range []string{"Leite 1L", "available 2", "requested 5"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q does not mention %q", msg, part)
		}
	}
}

func TestProductsNotFoundErrorAggregatesIDs(t *testing.T) {
	err := &domain.ProductsNotFoundError{IDs: []string{"p-1", "p-2"}}
	msg := err.Error()
	if !strings.Contains(msg, "p-1") || !strings.Contains(msg, "p-2") {
		t.Fatalf("message %q must list every missing id", msg)
	}
}
