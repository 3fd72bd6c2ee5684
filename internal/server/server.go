package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/berfenger/lowcarbon-sensors/internal/config"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type Server struct {
	port           uint
	httpLog        bool
	requestTimeout time.Duration
	rootContext    *actor.RootContext
	masterActor    *actor.PID
	logger         *zap.Logger
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID, logger *zap.Logger) *http.Server {
	NewServer := &Server{
		port:        cfg.Port,
		rootContext: rootContext,
		masterActor: masterActor,
		httpLog:     cfg.HttpLog,
		// an operation may queue behind another one and chain two backend calls
		requestTimeout: 3*time.Duration(cfg.REST.TimeoutMillis)*time.Millisecond + time.Second,
		logger:         logger,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: NewServer.requestTimeout + 10*time.Second,
	}

	return server
}
