package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stunity/feed-service/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}

	if err := a.Start(); err != nil {
		a.Log.Error("Failed to start background jobs", "error", err)
		a.Close()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		a.Log.Info("Shutting down", "signal", sig.String())
		a.Close()
		os.Exit(0)
	}()

	a.Log.Info("Server listening", "port", a.Cfg.Port)
	if err := a.Run(); err != nil {
		a.Log.Error("Server failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}
