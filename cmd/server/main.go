package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/store-staffing/internal/adapters/grpc/handler"
	"github.com/ogurasousui/store-staffing/internal/adapters/repository/postgres"
	"github.com/ogurasousui/store-staffing/internal/core/assignment"
	"github.com/ogurasousui/store-staffing/internal/core/employee"
	"github.com/ogurasousui/store-staffing/internal/core/store"
	"github.com/ogurasousui/store-staffing/internal/platform/config"
	pg "github.com/ogurasousui/store-staffing/internal/platform/db/postgres"
	"github.com/ogurasousui/store-staffing/internal/platform/logger"
	"github.com/ogurasousui/store-staffing/internal/platform/server"
)

const txMaxAttempts = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		logger.FromContext(ctx).Fatal("failed to load .env", "err", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.FromContext(ctx).Fatal("failed to load config", "path", cfgPath, "err", err)
	}

	log := logger.New(cfg.Log, os.Stderr)
	ctx = logger.WithContext(ctx, log)

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database pool", "err", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool, pg.WithMaxAttempts(txMaxAttempts))

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	storeRepo := postgres.NewStoreRepository(dbPool)
	assignmentRepo := postgres.NewAssignmentRepository(dbPool)

	storeSvc := store.NewService(storeRepo, nil, txManager)
	assignmentSvc := assignment.NewService(assignmentRepo, nil, txManager)
	employeeSvc := employee.NewService(employeeRepo, assignmentRepo, storeRepo, nil, txManager)

	grpcServer := server.New(cfg.Server.ListenAddr, server.Handlers{
		Employee:   handler.NewEmployeeGrpcHandler(employeeSvc),
		Store:      handler.NewStoreGrpcHandler(storeSvc),
		Assignment: handler.NewAssignmentGrpcHandler(assignmentSvc),
	}, log, server.WithShutdownTimeout(cfg.Server.ShutdownTimeout))

	if err := grpcServer.Run(ctx); err != nil {
		log.Fatal("server stopped with error", "err", err)
	}
	log.Info("server stopped")
}
