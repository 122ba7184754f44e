package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/jrvelez/pedidos/internal/catalog"
	"github.com/jrvelez/pedidos/internal/config"
	"github.com/jrvelez/pedidos/internal/httpx"
	kafkax "github.com/jrvelez/pedidos/internal/kafka"
	"github.com/jrvelez/pedidos/internal/orders"
	"github.com/jrvelez/pedidos/internal/postgres"
	"github.com/jrvelez/pedidos/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.Client{R: rdb}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	prod.Start(ctx)

	// Services & handlers
	orderSvc := &orders.Service{
		Tx:              &postgres.TxManager{DB: db},
		ReserveAttempts: cfg.ReserveAttempts,
	}
	productSvc := &catalog.Service{Store: postgres.NewCatalogStore(db)}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Service:  orderSvc,
		Producer: prod,
		Cache:    cache,
		Name:     cfg.ServiceName,
	}
	ph := &httpx.ProductsHandler{Service: productSvc, Cache: cache}
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireUser(httpx.HeaderIdentity{}))
		oh.Register(r)
		ph.Register(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // stop intake, flush remaining messages
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
