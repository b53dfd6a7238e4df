package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/theshibabasement/neuroflow/internal/app"
	"github.com/theshibabasement/neuroflow/internal/services"
	"github.com/theshibabasement/neuroflow/internal/tasks"
)

// The worker process drains the deferred memory write queue. It shares the
// app wiring with the API server but never listens on HTTP.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	marker := services.NewChatMarker(a.Repos.ChatHistory)
	worker, err := tasks.NewWorker(a.Clients.Redis, a.Services.MemoryCore, marker, a.Log)
	if err != nil {
		a.Log.Error("worker init failed", "error", err)
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Log.Error("worker exited", "error", err)
		os.Exit(1)
	}
}
