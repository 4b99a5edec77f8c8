package main

import (
	"context"
	"net/http"

	"ecommerce/internal/pkg/bootstrap"
	"ecommerce/internal/pkg/logger"
	pkgredis "ecommerce/internal/pkg/redis"
	"ecommerce/internal/service/inventory/application"
	"ecommerce/internal/service/inventory/infrastructure"
	"ecommerce/internal/service/inventory/interfaces"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	serviceName = "inventory-service"
	servicePort = 8083
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	var redisClient *pkgredis.Client

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			tracer := otel.Tracer(serviceName)

			db, err := gorm.Open(gormmysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
			if err != nil {
				logger.Ctx(nil).Fatal().Err(err).Msg("failed to connect to mysql")
			}
			if err := db.AutoMigrate(&infrastructure.ProductModel{}); err != nil {
				logger.Ctx(nil).Fatal().Err(err).Msg("failed to migrate product schema")
			}

			redisClient, err = pkgredis.NewClient(cfg.Infra.Redis.Addr)
			if err != nil {
				logger.Ctx(nil).Fatal().Err(err).Msg("failed to connect to redis")
			}

			repo := infrastructure.NewGormProductRepository(db, redisClient)
			svc := application.NewInventoryService(repo, tracer)

			interfaces.NewHTTPHandler(svc).Register(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		},
		OnShutdown: []func(ctx context.Context){
			func(ctx context.Context) {
				if redisClient != nil {
					redisClient.Close()
				}
			},
		},
	})
}
