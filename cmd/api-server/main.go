package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"scantrack/internal/adapter"
	"scantrack/internal/browse"
	"scantrack/internal/catalog"
	"scantrack/internal/notify"
	"scantrack/internal/progress"
	"scantrack/internal/tracking"
	"scantrack/pkg/database"
	"scantrack/pkg/utils"
)

func main() {
	cfg, err := utils.LoadTrackerConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	registry := adapter.Default()
	sessions := browse.NewFactory(browse.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})

	// Live event fan-out: WebSocket + TCP feed, plus UDP push.
	hub := progress.NewHub()
	router.GET("/ws", progress.WSHandler(hub))
	tcpSrv := progress.NewServer(":7070", hub)

	notifyRegistry := notify.NewRegistry()
	notifySrv := notify.NewServer(cfg.NotifyAddr, notifyRegistry, nil)

	store := tracking.NewSQLStore(db)
	engine := tracking.NewEngine(registry, store, sessions)
	engine.Workers = cfg.Workers
	engine.PairTimeout = cfg.PairTimeout
	engine.Events = tracking.MultiSink{hub, notifySrv}

	service := tracking.NewService(engine, store)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	api := router.Group("/api")

	adapterHandler := adapter.NewHandler(registry, sessions)
	adapterHandler.RegisterRoutes(api)

	catalogRepo := catalog.NewRepo(db)
	catalogHandler := catalog.NewHandler(catalogRepo, registry.Names())
	catalogHandler.RegisterRoutes(api)

	trackingHandler := tracking.NewHandler(service, store)
	trackingHandler.RegisterRoutes(api)

	httpSrv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := notifySrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", cfg.ServerAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}
	if err := notifySrv.Close(); err != nil {
		log.Printf("notify shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
