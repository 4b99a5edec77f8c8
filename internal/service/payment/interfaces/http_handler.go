package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/payment/application"
	"ecommerce/internal/service/payment/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HTTPHandler exposes payment queries and the refund operation:
//
//	POST /payments/refund?paymentId=
//	GET  /payments?paymentId=
//	GET  /payments/byOrder?orderId=
//	GET  /payments/list?userId=&page=&size=
type HTTPHandler struct {
	svc *application.PaymentService
}

func NewHTTPHandler(svc *application.PaymentService) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/payments/refund", h.refund)
	mux.HandleFunc("/payments", h.getPayment)
	mux.HandleFunc("/payments/byOrder", h.getByOrder)
	mux.HandleFunc("/payments/list", h.listByUser)
}

func (h *HTTPHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid userId", http.StatusBadRequest)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	payments, err := h.svc.ListUserPayments(ctx, userID, page, size)
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}

func (h *HTTPHandler) refund(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	paymentID := r.URL.Query().Get("paymentId")
	if paymentID == "" {
		http.Error(w, "missing paymentId", http.StatusBadRequest)
		return
	}

	payment, err := h.svc.ProcessRefund(ctx, paymentID)
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payment)
}

func (h *HTTPHandler) getPayment(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	paymentID := r.URL.Query().Get("paymentId")
	if paymentID == "" {
		http.Error(w, "missing paymentId", http.StatusBadRequest)
		return
	}

	payment, err := h.svc.GetPayment(ctx, paymentID)
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payment)
}

func (h *HTTPHandler) getByOrder(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	orderID, err := strconv.ParseInt(r.URL.Query().Get("orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid orderId", http.StatusBadRequest)
		return
	}

	payment, err := h.svc.GetPaymentByOrder(ctx, orderID)
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payment)
}

func writePaymentError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *domain.InvalidPaymentStateError
	var gateway *domain.GatewayError
	switch {
	case errors.As(err, &invalid):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &gateway):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, domain.ErrPaymentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logger.Ctx(r.Context()).Error().Err(err).Msg("payment request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
