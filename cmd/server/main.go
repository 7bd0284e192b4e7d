package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Alfredbis29/hireme-chat-server/internal/chat"
	"github.com/Alfredbis29/hireme-chat-server/internal/server"
	"github.com/Alfredbis29/hireme-chat-server/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Starting HireMe chat server...")

	// Load local .env (dev only)
	_ = godotenv.Load()

	config := server.NewConfigFromEnv()
	m := metrics.New()

	// The hub owns all chat state; the gateway owns the connections.
	hub := chat.NewHub(config.HistoryLimit)
	gateway := server.NewGateway(hub, config, m)
	go gateway.Run()

	httpServer := server.CreateServer(config.Port, gateway.SetupRoutes())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-stop:
		log.Printf("Received signal %s, shutting down", sig)
	}

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Printf("HTTP shutdown did not complete cleanly: %v", err)
	}
	if err := gateway.Shutdown(shutdownTimeout); err != nil {
		log.Printf("Gateway shutdown did not complete cleanly: %v", err)
	}
}
