package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"storefront/cache"
	"storefront/config"
	"storefront/jwt"
	"storefront/routers"
	"storefront/services"
	"storefront/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	rdb := config.SetupRedisConnection(cfg)
	defer rdb.Close()
	//Redis只用於儀表板快取，無法連線時仍可啟動
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("無法連接到Redis: %v\n", err)
	}

	tokens, err := jwt.LoadManager(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath, cfg.JWT.TokenTTL)
	if err != nil {
		return fmt.Errorf("無法讀取JWT金鑰: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	svc := services.New(db, tokens, cache.NewRedisStatsCache(rdb, cfg.Redis.StatsTTL), time.Now)
	router := routers.SetupRouters(svc, storage.NewLocal(cfg.Server.UploadsDir))

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	return nil
}
