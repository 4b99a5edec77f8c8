package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/inventory/application"
	"ecommerce/internal/service/inventory/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HTTPHandler exposes the reservation port over HTTP:
//
//	POST /reserve?productId=&quantity=  -> {"reserved": bool}
//	POST /release?productId=&quantity=
//	GET  /products?id=
type HTTPHandler struct {
	svc *application.InventoryService
}

func NewHTTPHandler(svc *application.InventoryService) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/reserve", h.reserve)
	mux.HandleFunc("/release", h.release)
	mux.HandleFunc("/products", h.getProduct)
}

func (h *HTTPHandler) reserve(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	productID, quantity, err := stockParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reserved, err := h.svc.Reserve(ctx, productID, quantity)
	if err != nil {
		writeStockError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"reserved": reserved})
}

func (h *HTTPHandler) release(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	productID, quantity, err := stockParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Release(ctx, productID, quantity); err != nil {
		writeStockError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HTTPHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	product, err := h.svc.GetProduct(ctx, id)
	if err != nil {
		writeStockError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(product)
}

func stockParams(r *http.Request) (int64, int32, error) {
	productID, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
	if err != nil {
		return 0, 0, errors.New("invalid productId")
	}
	quantity, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 32)
	if err != nil || quantity <= 0 {
		return 0, 0, errors.New("invalid quantity")
	}
	return productID, int32(quantity), nil
}

func writeStockError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrProductNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	logger.Ctx(r.Context()).Error().Err(err).Msg("inventory request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
