package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/cinebridge-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(); err != nil {
		a.Log.Error("Failed to start background workers", "error", err)
		_ = a.Close()
		os.Exit(1)
	}

	runErr := a.Run(ctx)
	if runErr != nil {
		a.Log.Error("Server failed", "error", runErr)
	}
	if err := a.Close(); err != nil {
		a.Log.Warn("Shutdown incomplete", "error", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
