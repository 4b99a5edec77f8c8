package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ecommerce/internal/pkg/logger"
	"ecommerce/internal/pkg/nacos"
	"ecommerce/internal/pkg/tracing"
)

// AppCtx is handed to each service's RegisterHandlers callback.
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// AppInfo describes one service binary.
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
	// OnShutdown hooks run during graceful shutdown, first to last, before the
	// HTTP server closes.
	OnShutdown []func(ctx context.Context)
}

// StartService runs the shared lifecycle: tracing, service registration, HTTP
// server, then blocks until SIGINT/SIGTERM and tears everything down in
// reverse order.
func StartService(info AppInfo) {
	Init()
	logger.Init(info.ServiceName)
	cfg := GetCurrentConfig()

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	namingClient, err := nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to initialize nacos client")
	}

	ip, err := outboundIP()
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to determine outbound IP")
	}
	if err := namingClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to register service")
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: namingClient})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		logger.Ctx(nil).Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Ctx(nil).Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Ctx(nil).Info().Msgf("shutting down %s", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := namingClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		logger.Ctx(nil).Error().Err(err).Msg("error deregistering from nacos")
	}

	for _, hook := range info.OnShutdown {
		hook(ctx)
	}

	if err := tp.Shutdown(ctx); err != nil {
		logger.Ctx(nil).Error().Err(err).Msg("error shutting down tracer provider")
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.Ctx(nil).Error().Err(err).Msg("error shutting down http server")
	}
	logger.Ctx(nil).Info().Msgf("%s gracefully shut down", info.ServiceName)
}

// outboundIP discovers the address this host would use to reach the network,
// which is what peers should dial.
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
