package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/samkari/roadmap-service/config"
	"github.com/samkari/roadmap-service/endpoints"
	"github.com/samkari/roadmap-service/internal/commands"
	"github.com/samkari/roadmap-service/internal/dispatch"
	"github.com/samkari/roadmap-service/internal/gateway"
	"github.com/samkari/roadmap-service/internal/scheduler"
	"github.com/samkari/roadmap-service/internal/storage"
	"github.com/samkari/roadmap-service/types"
	"github.com/samkari/roadmap-service/utils"
)

const ServiceName = "roadmap-service"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Println(utils.GetVersion().Str)
			os.Exit(0)
		case "help", "--help", "-h":
			fmt.Println("Samkari Roadmap Service")
			fmt.Println()
			fmt.Println("Usage:")
			fmt.Println("  roadmap-service            Start the service")
			fmt.Println("  roadmap-service version    Display version information")
			fmt.Println()
			fmt.Println("Configuration is read from config.json (override with SAMKARI_CONFIG)")
			fmt.Println("and SAMKARI_* environment variables.")
			os.Exit(0)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load configuration: %v", err)
	}

	log.Println("Initializing Redis connection...")
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatalf("FATAL: Redis unreachable at %s: %v", cfg.RedisAddr, err)
	}
	pingCancel()
	log.Println("Redis connected successfully")

	store := storage.NewStore(redisClient)
	gw := gateway.NewClient(cfg.GatewayHTTPURL)

	deps := &commands.Dependencies{
		Store:   store,
		Gateway: gw,
		Confirm: commands.NewConfirmTracker(),
	}

	dispatcher := dispatch.New(deps)
	dispatcher.Prefix = cfg.CommandPrefix

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dispatcher.Run(ctx)

	consumer := gateway.NewConsumer(cfg.GatewayWSURL, func(ctx context.Context, ev *types.MessageEvent) {
		dispatcher.Enqueue(ev)
	})
	go consumer.Run(ctx)

	go scheduler.New(store, gw, cfg.ScheduleHour).Run(ctx)

	api := &endpoints.API{Store: store, BackupDir: cfg.BackupDir, APIToken: cfg.APIToken}
	corsLayer := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Service-Token"},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      corsLayer.Handler(api.Router()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("Starting %s on :%d\n", ServiceName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server crashed: %v", err)
		}
	}()

	utils.SetHealthStatus("OK", "Service is running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down service...")

	utils.SetHealthStatus("SHUTTING_DOWN", "Service is shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
	log.Println("Service exited cleanly")
}
