package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/config"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/httpapi"
	inventoryrpc "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/rpc"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger := config.NewLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		logger.WithError(err).Fatal("failed to open store")
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := service.Open(ctx, store, cfg.Settings(), service.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Fatal("failed to load state")
	}

	rpcDone := make(chan struct{})
	if cfg.PacketAddr != "" {
		ln, err := net.Listen("tcp", cfg.PacketAddr)
		if err != nil {
			logger.WithError(err).Fatal("failed to listen for packets")
		}
		srv := inventoryrpc.NewServer(inventoryrpc.NewDispatcher(sess), logger)
		go func() {
			defer close(rpcDone)
			logger.Infof("packet listener on %s", cfg.PacketAddr)
			if err := srv.Serve(ctx, ln); err != nil {
				logger.WithError(err).Error("packet listener stopped")
			}
		}()
	} else {
		close(rpcDone)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(sess, logger, cfg.CORSOrigins()...),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("%s listening on %s", cfg.CompanyName, cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
	<-rpcDone
	logger.Info("server exited")
}
