package main

import (
	"context"
	"net/http"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/bootstrap"
	"ecommerce/internal/pkg/httpclient"
	"ecommerce/internal/pkg/logger"
	pkgredis "ecommerce/internal/pkg/redis"
	"ecommerce/internal/pkg/zookeeper"
	"ecommerce/internal/service/order/application"
	"ecommerce/internal/service/order/infrastructure"
	"ecommerce/internal/service/order/infrastructure/adapter"
	"ecommerce/internal/service/order/interfaces"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	serviceName = "order-service"
	servicePort = 8081
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	var (
		consumerCancel context.CancelFunc
		consumers      *interfaces.PaymentEventConsumer
		producer       *adapter.OrderEventProducer
		redisClient    *pkgredis.Client
		zkConn         *zookeeper.Conn
		group          *errgroup.Group
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			tracer := otel.Tracer(serviceName)

			db, err := gorm.Open(gormmysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
			if err != nil {
				logger.Ctx(nil).Fatal().Err(err).Msg("failed to connect to mysql")
			}
			if err := db.AutoMigrate(&infrastructure.OrderModel{}, &infrastructure.OrderItemModel{}); err != nil {
				logger.Ctx(nil).Fatal().Err(err).Msg("failed to migrate order schema")
			}

			redisClient, err = pkgredis.NewClient(cfg.Infra.Redis.Addr)
			if err != nil {
				logger.Ctx(nil).Fatal().Err(err).Msg("failed to connect to redis")
			}
			zkConn, err = zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
			if err != nil {
				logger.Ctx(nil).Fatal().Err(err).Msg("failed to connect to zookeeper")
			}

			producer = adapter.NewOrderEventProducer(cfg.Infra.Kafka.Brokers)
			cart := adapter.NewCartRedisAdapter(redisClient)
			inventory := adapter.NewInventoryHTTPAdapter(httpclient.NewClient(tracer, appCtx.Nacos))
			locker := adapter.NewZkOrderLocker(zkConn)
			repo := infrastructure.NewGormOrderRepository(db)

			svc := application.NewOrderApplicationService(repo, cart, inventory, producer, locker, tracer)

			interfaces.NewHTTPHandler(svc, cart).Register(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			consumers = interfaces.NewPaymentEventConsumer(
				cfg.Infra.Kafka.Brokers, events.NewTopology(), svc, tracer, cfg.Payment.RetryMaxAttempts)

			var consumerCtx context.Context
			consumerCtx, consumerCancel = context.WithCancel(context.Background())
			group, consumerCtx = errgroup.WithContext(consumerCtx)
			for _, consumer := range consumers.Consumers() {
				c := consumer
				group.Go(func() error { return c.Run(consumerCtx) })
			}
		},
		OnShutdown: []func(ctx context.Context){
			func(ctx context.Context) {
				if consumerCancel != nil {
					consumerCancel()
				}
				if consumers != nil {
					consumers.Close()
				}
				if group != nil {
					if err := group.Wait(); err != nil {
						logger.Ctx(ctx).Error().Err(err).Msg("consumer loop exited with error")
					}
				}
				if producer != nil {
					producer.Close()
				}
				if redisClient != nil {
					redisClient.Close()
				}
				if zkConn != nil {
					zkConn.Close()
				}
			},
		},
	})
}
