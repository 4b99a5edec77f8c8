package adapter

import (
	"context"
	"strconv"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/zookeeper"

	"github.com/pkg/errors"
)

// ZkOrderLocker serializes per-order mutations across all order service
// instances with a zookeeper lock.
type ZkOrderLocker struct {
	conn *zookeeper.Conn
}

func NewZkOrderLocker(conn *zookeeper.Conn) *ZkOrderLocker {
	return &ZkOrderLocker{conn: conn}
}

func (l *ZkOrderLocker) WithLock(ctx context.Context, orderID int64, fn func(ctx context.Context) error) error {
	lock, err := zookeeper.NewOrderLock(l.conn, strconv.FormatInt(orderID, 10))
	if err != nil {
		return errors.Wrap(err, "failed to prepare order lock")
	}
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "failed to acquire order lock")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Int64("order_id", orderID).Msg("failed to release order lock")
		}
	}()
	return fn(ctx)
}
