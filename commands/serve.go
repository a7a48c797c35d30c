package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"tripwindow/config"
	"tripwindow/database"
	"tripwindow/handlers"
	"tripwindow/scheduler"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the watch scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := database.InitDB(cfg); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.DB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tripPlanner := buildPlanner(cfg, true)
	handlers.SetPlanner(tripPlanner)

	sched := scheduler.NewScheduler(ctx, tripPlanner)
	if err := sched.RegisterAll(cfg.Schedule.WatchCron, cfg.Schedule.PruneCron, cfg.Schedule.RetentionDays); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: newRouter(cfg),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  shutdown: %v", err)
		}
	}()

	log.Printf("🚀 TripWindow backend starting on port %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func newRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// Trusted proxies (hosted deployments sit behind a proxy)
	if err := r.SetTrustedProxies([]string{"0.0.0.0/0"}); err != nil {
		log.Printf("⚠️  trusted proxies: %v", err)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.FrontendURLs,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handlers.Register(r.Group("/api"))
	return r
}
