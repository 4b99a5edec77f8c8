package adapter

import (
	"context"
	"net/url"
	"strconv"

	"ecommerce/internal/pkg/httpclient"
	"ecommerce/internal/pkg/logger"
)

const inventoryServiceName = "inventory-service"

// InventoryHTTPAdapter calls the inventory service over its HTTP interface,
// resolving instances through service discovery.
type InventoryHTTPAdapter struct {
	client *httpclient.Client
}

func NewInventoryHTTPAdapter(client *httpclient.Client) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client}
}

// Reserve maps an unreachable inventory service onto the insufficient-stock
// answer. The saga treats both identically, so the caller sees one failure
// mode instead of two.
func (a *InventoryHTTPAdapter) Reserve(ctx context.Context, productID int64, quantity int32) (bool, error) {
	params := url.Values{}
	params.Set("productId", strconv.FormatInt(productID, 10))
	params.Set("quantity", strconv.FormatInt(int64(quantity), 10))

	var resp struct {
		Reserved bool `json:"reserved"`
	}
	if err := a.client.CallService(ctx, inventoryServiceName, "/reserve", params, &resp); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Int64("product_id", productID).
			Msg("inventory reserve call failed, treating as insufficient stock")
		return false, nil
	}
	return resp.Reserved, nil
}

func (a *InventoryHTTPAdapter) Release(ctx context.Context, productID int64, quantity int32) error {
	params := url.Values{}
	params.Set("productId", strconv.FormatInt(productID, 10))
	params.Set("quantity", strconv.FormatInt(int64(quantity), 10))

	return a.client.CallService(ctx, inventoryServiceName, "/release", params, nil)
}
