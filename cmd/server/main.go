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

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/config"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/handler"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/infrastructure/cache"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/infrastructure/database"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/infrastructure/lock"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/infrastructure/mq"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/ledger"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/notify"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/repository"
	"github.com/NICANORKYAMBA/bank-system-sub000/pkg/idgen"
)

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	idgen.Init(1)

	db, err := database.Connect(&cfg.Postgres)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	log.Println("[Main] postgres connected")

	redisClient, err := cache.Connect(&cfg.Redis)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	log.Println("[Main] redis connected")

	producer, err := mq.NewProducer(&cfg.Kafka)
	if err != nil {
		log.Fatalf("create kafka producer: %v", err)
	}
	defer producer.Close()
	log.Println("[Main] kafka producer ready")

	store := repository.NewGormStore(db)
	locker := lock.NewFactory(
		redisClient,
		time.Duration(cfg.Business.LockTTLSeconds)*time.Second,
		time.Duration(cfg.Business.LockRetryIntervalMs)*time.Millisecond,
		cfg.Business.LockMaxRetries,
	)
	notifier := notify.NewMovementNotifier(producer, cfg.Kafka.Topic.MovementNotifications)

	engine := ledger.NewEngine(store, locker, notifier)
	accounts := ledger.NewAccountService(store)

	router := handler.SetupRouter(engine, accounts)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("[Main] listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Main] shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] shutdown error: %v", err)
	}

	log.Println("[Main] server stopped")
}
