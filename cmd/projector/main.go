package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jrvelez/pedidos/internal/config"
	kafkax "github.com/jrvelez/pedidos/internal/kafka"
	"github.com/jrvelez/pedidos/internal/orders"
	"github.com/jrvelez/pedidos/internal/projector"
	"github.com/jrvelez/pedidos/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &projector.Service{
		Cache:       redisx.Client{R: rdb},
		ServiceName: cfg.ServiceName + "-projector",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ProjectorGroup, orders.TopicOrderCreated, cfg.ProjectorWorkers)

	go func() {
		log.Printf("projector started: group=%s topic=%s workers=%d",
			cfg.ProjectorGroup, orders.TopicOrderCreated, cfg.ProjectorWorkers)
		if err := cons.Start(ctx, svc.HandleOrderCreated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down projector...")
	cancel()
}
