package main

import (
	"context"
	"net/http"
	"time"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/bootstrap"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/payment/application"
	"ecommerce/internal/service/payment/infrastructure"
	"ecommerce/internal/service/payment/interfaces"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	serviceName = "payment-service"
	servicePort = 8082
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	var (
		consumerCancel context.CancelFunc
		consumers      *interfaces.OrderEventConsumer
		producer       *infrastructure.PaymentEventProducer
		processor      *application.Processor
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
			if err := db.AutoMigrate(&infrastructure.PaymentModel{}); err != nil {
				logger.Ctx(nil).Fatal().Err(err).Msg("failed to migrate payment schema")
			}

			producer = infrastructure.NewPaymentEventProducer(cfg.Infra.Kafka.Brokers)
			gateway := infrastructure.NewSimulatedGateway(
				tracer,
				time.Duration(cfg.Payment.SimulationDelayMs)*time.Millisecond,
				cfg.Payment.SuccessRate,
			)
			repo := infrastructure.NewGormPaymentRepository(db)

			svc := application.NewPaymentService(repo, gateway, producer, tracer)
			processor = application.NewProcessor(svc, cfg.Payment.Workers)
			svc.AttachProcessor(processor)

			var consumerCtx context.Context
			consumerCtx, consumerCancel = context.WithCancel(context.Background())
			processor.Start(consumerCtx)

			interfaces.NewHTTPHandler(svc).Register(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			consumers = interfaces.NewOrderEventConsumer(
				cfg.Infra.Kafka.Brokers, events.NewTopology(), svc, tracer, cfg.Payment.RetryMaxAttempts)

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
				if processor != nil {
					processor.Stop()
				}
				if producer != nil {
					producer.Close()
				}
			},
		},
	})
}
