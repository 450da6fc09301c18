package commands

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasklight/core/internal/infrastructure/config"
	"github.com/tasklight/core/internal/infrastructure/logger"
	"github.com/tasklight/core/internal/infrastructure/server"
	"github.com/tasklight/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Tasklight API server",
		Long:  "Start the Tasklight API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer(seed)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Preload a few demo tasks into the store")

	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Tasklight version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Tasklight v1.0.0")
		},
	}
}

func runServer(seed bool) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	if seed {
		seedTasks(srv, appLogger)
	}

	appLogger.Info("Starting Tasklight API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
	)

	go func() {
		if err := srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Graceful shutdown failed", "error", err)
	}
}

// seedTasks preloads a handful of starter tasks through the store's own
// creation path, so they pass the same validation as user input.
func seedTasks(srv *server.Server, appLogger *logger.Logger) {
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")
	groceries := "Weekly shopping run"

	seeds := []ports.CreateTaskRequest{
		{Text: "Buy groceries", Description: &groceries, DueDate: &today, SubTasks: []string{"milk", "bread", "eggs"}},
		{Text: "Water the plants"},
		{Text: "Review pull requests", SubTasks: []string{"backend", "frontend"}},
	}

	for _, req := range seeds {
		if _, err := srv.Store().Add(ctx, req); err != nil {
			appLogger.Warn("Failed to seed task", "text", req.Text, "error", err)
		}
	}

	appLogger.Info("Seeded demo tasks", "count", len(seeds))
}
