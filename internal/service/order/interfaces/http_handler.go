package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/order/application"
	"ecommerce/internal/service/order/domain"
	"ecommerce/internal/service/order/infrastructure/adapter"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HTTPHandler exposes the order operations:
//
//	POST /orders/create?userId=&shippingAddressId=&paymentMethod=
//	POST /orders/cancel?orderId=&userId=
//	POST /orders/status?orderId=&status=
//	GET  /orders?orderId=&userId=
//	GET  /orders/byNumber?orderNumber=
//	GET  /orders/list?userId=&page=&size=
//	POST /cart/add?userId=&productId=&productName=&quantity=&unitPrice=
//	GET  /cart?userId=
type HTTPHandler struct {
	svc  *application.OrderApplicationService
	cart *adapter.CartRedisAdapter
}

func NewHTTPHandler(svc *application.OrderApplicationService, cart *adapter.CartRedisAdapter) *HTTPHandler {
	return &HTTPHandler{svc: svc, cart: cart}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/orders/create", h.createOrder)
	mux.HandleFunc("/orders/cancel", h.cancelOrder)
	mux.HandleFunc("/orders/status", h.updateStatus)
	mux.HandleFunc("/orders", h.getOrder)
	mux.HandleFunc("/orders/byNumber", h.getOrderByNumber)
	mux.HandleFunc("/orders/list", h.listOrders)
	mux.HandleFunc("/cart/add", h.addCartItem)
	mux.HandleFunc("/cart", h.getCart)
}

func (h *HTTPHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID, err := int64Param(r, "userId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	addressID, err := int64Param(r, "shippingAddressId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.svc.CreateOrder(ctx, userID, addressID, r.URL.Query().Get("paymentMethod"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	orderID, err := int64Param(r, "orderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userID, err := int64Param(r, "userId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.svc.CancelOrder(ctx, orderID, userID)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	orderID, err := int64Param(r, "orderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status := domain.OrderStatus(r.URL.Query().Get("status"))

	order, err := h.svc.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	orderID, err := int64Param(r, "orderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userID, err := int64Param(r, "userId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.svc.GetOrder(ctx, orderID, userID)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	orderNumber := r.URL.Query().Get("orderNumber")
	if orderNumber == "" {
		http.Error(w, "missing orderNumber", http.StatusBadRequest)
		return
	}

	order, err := h.svc.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID, err := int64Param(r, "userId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	orders, err := h.svc.ListUserOrders(ctx, userID, page, size)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) addCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID, err := int64Param(r, "userId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	productID, err := int64Param(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	quantity, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 32)
	if err != nil || quantity <= 0 {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}
	unitPrice, err := strconv.ParseFloat(r.URL.Query().Get("unitPrice"), 64)
	if err != nil || unitPrice < 0 {
		http.Error(w, "invalid unitPrice", http.StatusBadRequest)
		return
	}

	line := domain.CartLine{
		ProductID:   productID,
		ProductName: r.URL.Query().Get("productName"),
		Quantity:    int32(quantity),
		UnitPrice:   unitPrice,
	}
	if err := h.cart.AddItem(ctx, userID, line); err != nil {
		writeOrderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HTTPHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID, err := int64Param(r, "userId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lines, err := h.cart.Items(ctx, userID)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func int64Param(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s", name)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var oos *domain.OutOfStockError
	var invalid *domain.InvalidTransitionError
	switch {
	case errors.As(err, &oos):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &invalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrCartEmpty):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Ctx(r.Context()).Error().Err(err).Msg("order request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
