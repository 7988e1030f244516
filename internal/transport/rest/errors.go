package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

// errorResponse — единый формат тела ошибки HTTP-слоя.
type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Detalhes  []string  `json:"detalhes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError отвечает телом ошибки с полем detalhes для пофилдовых замечаний.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, detalhes []string) {
	writeJSON(w, status, errorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
		Detalhes:  detalhes,
	})
}

// validationSentinels — доменные ошибки формы запроса; отображаются в 400.
var validationSentinels = []error{
	domain.ErrCustomerRequired,
	domain.ErrLinesRequired,
	domain.ErrLineQtyInvalid,
	domain.ErrLinePriceInvalid,
	domain.ErrPaymentMethodRequired,
	domain.ErrDeliveryAddressRequired,
	domain.ErrProductNameRequired,
	domain.ErrProductIDRequired,
}

func isValidation(err error) bool {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// writeDomainError переводит доменную ошибку в HTTP-статус:
// NotFound -> 404, Duplicate и конфликт версий -> 409, нехватка остатка и
// нарушение бизнес-правила -> 400, всё прочее -> 500 без внутренних деталей.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *log.Entry, err error) {
	switch {
	case domain.IsNotFound(err):
		writeError(w, r, http.StatusNotFound, err.Error(), nil)
	case domain.IsDuplicate(err), domain.IsConflict(err):
		writeError(w, r, http.StatusConflict, err.Error(), nil)
	case domain.IsInsufficientStock(err), domain.IsBusinessRule(err), isValidation(err):
		writeError(w, r, http.StatusBadRequest, err.Error(), nil)
	default:
		logger.WithError(err).WithField("path", r.URL.Path).Error("unhandled domain error")
		writeError(w, r, http.StatusInternalServerError, "internal server error", nil)
	}
}
