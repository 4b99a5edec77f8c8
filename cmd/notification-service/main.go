package main

import (
	"context"
	"net/http"

	"ecommerce/internal/events"
	"ecommerce/internal/pkg/bootstrap"
	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/service/notification/application"
	"ecommerce/internal/service/notification/interfaces"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "notification-service"
	servicePort = 8084
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	var (
		consumerCancel context.CancelFunc
		consumers      *interfaces.NotificationConsumer
		group          *errgroup.Group
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			tracer := otel.Tracer(serviceName)

			hub := application.NewHub()
			notifier := application.NewNotifier(hub)

			interfaces.NewWSHandler(hub).Register(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			consumers = interfaces.NewNotificationConsumer(
				cfg.Infra.Kafka.Brokers, events.NewTopology(), notifier, tracer)

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
			},
		},
	})
}
