package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/inventory"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/mongodb"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/storage"
	"github.com/fekuna/omnipos-warehouse/internal/product"
	"github.com/fekuna/omnipos-warehouse/internal/server"

	attrH "github.com/fekuna/omnipos-warehouse/internal/attribute/handler"
	attrRepoPkg "github.com/fekuna/omnipos-warehouse/internal/attribute/repository"
	attrUCPkg "github.com/fekuna/omnipos-warehouse/internal/attribute/usecase"

	boardH "github.com/fekuna/omnipos-warehouse/internal/board/handler"
	boardRepoPkg "github.com/fekuna/omnipos-warehouse/internal/board/repository"
	boardUCPkg "github.com/fekuna/omnipos-warehouse/internal/board/usecase"

	importH "github.com/fekuna/omnipos-warehouse/internal/importer/handler"
	importUCPkg "github.com/fekuna/omnipos-warehouse/internal/importer/usecase"

	invH "github.com/fekuna/omnipos-warehouse/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-warehouse/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-warehouse/internal/inventory/usecase"

	prodH "github.com/fekuna/omnipos-warehouse/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-warehouse/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-warehouse/internal/product/usecase"

	taskH "github.com/fekuna/omnipos-warehouse/internal/task/handler"
	taskRepoPkg "github.com/fekuna/omnipos-warehouse/internal/task/repository"
	taskUCPkg "github.com/fekuna/omnipos-warehouse/internal/task/usecase"

	userH "github.com/fekuna/omnipos-warehouse/internal/user/handler"
	userRepoPkg "github.com/fekuna/omnipos-warehouse/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-warehouse/internal/user/usecase"
)

const uploadURLPrefix = "/static/uploads"

func newServeCommand(opts *rootOptions) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, opts *rootOptions, migrate bool) error {
	cfg, appLogger := opts.cfg, opts.log
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres
	db, err := openPostgres(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}
	txm := database.NewTxManager(db)

	// Optional backends. Each stays a nil interface when absent.
	var (
		invCache  inventory.Cache
		prodCache product.Cache
		publisher inventory.EventPublisher
		searcher  product.Searcher
	)
	if redisClient := openRedis(cfg, appLogger); redisClient != nil {
		defer redisClient.Close()
		invCache, prodCache = redisClient, redisClient
	}
	if producer := openKafka(cfg, appLogger); producer != nil {
		defer producer.Close()
		publisher = producer
	}
	if esClient := openElastic(cfg, appLogger); esClient != nil {
		searcher = esClient
	}
	images := storage.NewLocalStore(cfg.Inventory.UploadDir, uploadURLPrefix)
	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL, cfg.JWT.Issuer)

	// Warehouse
	invUC := invUCPkg.NewInventoryUseCase(invRepoPkg.NewPGRepository(db), invCache, publisher, invUCPkg.Options{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		PageSize:          cfg.Inventory.PageSize,
	}, appLogger)
	attrUC := attrUCPkg.NewAttributeUseCase(attrRepoPkg.NewPGRepository(db), appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepoPkg.NewPGRepository(db), txm, invUC, prodCache, searcher, prodUCPkg.Options{
		SKUPrefix:  cfg.Inventory.SKUPrefix,
		Files:      images,
		Attributes: attrUC,
	}, appLogger)
	importUC := importUCPkg.NewImportUseCase(txm, prodUC, attrUC, invUC, appLogger)
	userHandler := userH.NewUserHandler(userUCPkg.NewUserUseCase(userRepoPkg.NewPGRepository(db), tokens, appLogger), appLogger)

	checks := []server.HealthCheck{{Name: "postgres", Check: db.PingContext}}
	routerCfg := server.RouterConfig{
		Tokens: tokens,
		Public: []server.PublicRegistrar{userHandler},
		Warehouse: []server.Registrar{
			userHandler,
			prodH.NewProductHandler(prodUC, images, cfg.Inventory.PageSize, appLogger),
			attrH.NewAttributeHandler(attrUC, appLogger),
			invH.NewInventoryHandler(invUC, cfg.Inventory.PageSize, appLogger),
			importH.NewImportHandler(importUC, appLogger),
		},
		StaticDir:    cfg.Inventory.UploadDir,
		StaticPrefix: uploadURLPrefix,
		Development:  cfg.IsDevelopment(),
	}

	// Task boards
	if mongoClient, mdb := openMongo(ctx, cfg, appLogger); mdb != nil {
		defer mongoClient.Disconnect(context.Background())
		boardRepo := boardRepoPkg.NewMongoRepository(mdb)
		taskRepo := taskRepoPkg.NewMongoRepository(mdb)
		boardUC := boardUCPkg.NewBoardUseCase(boardRepo, boardRepoPkg.NewMemberRepository(mdb), taskRepo,
			mongodb.NewSessionTx(mongoClient, cfg.Mongo.Transactions), appLogger)
		taskUC := taskUCPkg.NewTaskUseCase(taskRepo, boardRepo, appLogger)

		routerCfg.Boards = []server.Registrar{
			boardH.NewBoardHandler(boardUC, appLogger),
			taskH.NewTaskHandler(taskUC, appLogger),
		}
		routerCfg.Profiles = boardUC
		checks = append(checks, server.HealthCheck{Name: "mongo", Check: func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		}})
	}
	routerCfg.Checks = checks

	httpServer := &http.Server{
		Addr:    listenAddr(cfg.Server.HTTPPort),
		Handler: server.NewRouter(routerCfg, appLogger),
	}
	grpcServer, healthServer := server.NewGRPCServer(appLogger)
	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down server...")
	case err = <-errCh:
		appLogger.Error("server failed", zap.Error(err))
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		appLogger.Warn("HTTP shutdown incomplete", zap.Error(serr))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
	return err
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
