package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jrvelez/pedidos/internal/catalog"
	"github.com/jrvelez/pedidos/internal/orders"
)

type errorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message, Timestamp: time.Now().UTC()})
}

// writeDomainError maps the domain taxonomy onto status codes. Anything
// outside the taxonomy is an opaque 500: internal detail never leaks.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrInvalidOrderRequest):
		writeErrorBody(w, http.StatusBadRequest, "INVALID_ORDER_REQUEST", err.Error())
	case errors.Is(err, catalog.ErrInsufficientStock):
		writeErrorBody(w, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, orders.ErrReservationConflict):
		writeErrorBody(w, http.StatusConflict, "RESERVATION_CONFLICT", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		writeErrorBody(w, http.StatusUnprocessableEntity, "PRODUCT_NOT_FOUND", err.Error())
	case errors.Is(err, catalog.ErrProductInactive):
		writeErrorBody(w, http.StatusUnprocessableEntity, "PRODUCT_INACTIVE", err.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		writeErrorBody(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
	case errors.Is(err, catalog.ErrInvalidProduct):
		writeErrorBody(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, catalog.ErrDuplicateName):
		writeErrorBody(w, http.StatusConflict, "DUPLICATE_NAME", err.Error())
	case errors.Is(err, catalog.ErrWriteConflict):
		writeErrorBody(w, http.StatusConflict, "WRITE_CONFLICT", err.Error())
	default:
		log.Printf("unexpected error: %v", err)
		writeErrorBody(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
	}
}
