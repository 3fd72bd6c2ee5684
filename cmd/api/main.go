package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/berfenger/lowcarbon-sensors/internal/adapter/actor"
	"github.com/berfenger/lowcarbon-sensors/internal/adapter/rest"
	"github.com/berfenger/lowcarbon-sensors/internal/config"
	"github.com/berfenger/lowcarbon-sensors/internal/core/actor"
	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/metrics"
	"github.com/berfenger/lowcarbon-sensors/internal/refresh"
	"github.com/berfenger/lowcarbon-sensors/internal/server"
	"github.com/berfenger/lowcarbon-sensors/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	slog.Info("Using", "config", config.Redacted(*cfg))

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	// REST backend, instrumented
	restClient, err := rest.NewClientFromConfig(cfg.REST, logger)
	if err != nil {
		slog.Error("rest client", "error", err)
		return
	}
	sensorService := metrics.NewInstrumentedSensorService(restClient)

	// sensor change events
	es := &eventstream.EventStream{}
	es.Subscribe(metrics.ObserveSensorEvent)

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActorWithEventStream(*cfg, sensorService, mqttActorProvider(cfg, logger), es, logger)
	})
	pid, err := ctx.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		return
	}

	// periodic list reload
	var refresher *refresh.Refresher
	if cfg.Refresh.IntervalMillis > 0 {
		refresher, err = refresh.Start(context.Background(), time.Duration(cfg.Refresh.IntervalMillis)*time.Millisecond, func() {
			ctx.Send(pid, domain.LoadAllRequest{})
		}, logger)
		if err != nil {
			panic(fmt.Sprintf("refresh scheduler error: %s", err))
		}
	}

	server := server.NewServer(*cfg, ctx, pid, logger)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	if refresher != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		refresher.Stop(stopCtx)
		cancel()
	}

	ctx.Stop(pid)
	as.Shutdown()
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	if !cfg.MQTT.Enable {
		return nil
	}
	return func(es *eventstream.EventStream) pactor.Actor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}
