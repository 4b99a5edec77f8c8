package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"ecommerce/internal/pkg/redis"
	"ecommerce/internal/service/order/domain"

	"github.com/pkg/errors"
)

// CartRedisAdapter stores each user's cart as a Redis hash keyed by product
// id, with the line serialized as JSON.
type CartRedisAdapter struct {
	client *redis.Client
}

func NewCartRedisAdapter(client *redis.Client) *CartRedisAdapter {
	return &CartRedisAdapter{client: client}
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

type cartLineRecord struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

func (a *CartRedisAdapter) Items(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	raw, err := a.client.GetClient().HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cart")
	}
	lines := make([]domain.CartLine, 0, len(raw))
	for _, value := range raw {
		var rec cartLineRecord
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			return nil, errors.Wrap(err, "corrupt cart line")
		}
		lines = append(lines, domain.CartLine{
			ProductID:   rec.ProductID,
			ProductName: rec.ProductName,
			Quantity:    rec.Quantity,
			UnitPrice:   rec.UnitPrice,
		})
	}
	return lines, nil
}

func (a *CartRedisAdapter) Clear(ctx context.Context, userID int64) error {
	return errors.Wrap(a.client.GetClient().Del(ctx, cartKey(userID)).Err(), "failed to clear cart")
}

// Restore rewrites the cleared lines. It deliberately overwrites per field so
// lines a user re-added concurrently are kept.
func (a *CartRedisAdapter) Restore(ctx context.Context, userID int64, lines []domain.CartLine) error {
	if len(lines) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(lines))
	for _, line := range lines {
		payload, err := json.Marshal(cartLineRecord{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
		if err != nil {
			return errors.Wrap(err, "failed to encode cart line")
		}
		fields[strconv.FormatInt(line.ProductID, 10)] = payload
	}
	return errors.Wrap(a.client.GetClient().HSet(ctx, cartKey(userID), fields).Err(), "failed to restore cart")
}

// AddItem is the cart write path used by the HTTP interface.
func (a *CartRedisAdapter) AddItem(ctx context.Context, userID int64, line domain.CartLine) error {
	payload, err := json.Marshal(cartLineRecord{
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode cart line")
	}
	return errors.Wrap(
		a.client.GetClient().HSet(ctx, cartKey(userID), strconv.FormatInt(line.ProductID, 10), payload).Err(),
		"failed to add cart line")
}
