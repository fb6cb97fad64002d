package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glimmerdesk/fsbridge/internal/infrastructure/config"
	"github.com/glimmerdesk/fsbridge/internal/infrastructure/server"
)

func main() {
	port := flag.String("port", "", "listen port (overrides FSBRIDGE_PORT)")
	scopeFile := flag.String("scope", "", "scope policy JSON file (overrides FSBRIDGE_SCOPE_FILE)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *scopeFile != "" {
		cfg.Scope.File = *scopeFile
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("server error: %v", err)
	}
}
