package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/book-exchange/exchange/config"
	"github.com/Astemirdum/book-exchange/exchange/internal/handler"
	"github.com/Astemirdum/book-exchange/exchange/internal/repository"
	"github.com/Astemirdum/book-exchange/exchange/internal/server"
	"github.com/Astemirdum/book-exchange/exchange/internal/service"
	"github.com/Astemirdum/book-exchange/exchange/migrations"
	"github.com/Astemirdum/book-exchange/pkg/auth"
	"github.com/Astemirdum/book-exchange/pkg/circuit_breaker"
	"github.com/Astemirdum/book-exchange/pkg/kafka"
	"github.com/Astemirdum/book-exchange/pkg/logger"
	"github.com/Astemirdum/book-exchange/pkg/postgres"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "exchange")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("db pool", zap.Error(err))
	}
	defer pool.Close()
	db, err := postgres.NewPostgresDB(ctx, pool, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}
	events := repository.NewEventRepository(pool, log)
	issuer := auth.NewIssuer(cfg.Auth)

	g, gCtx := errgroup.WithContext(ctx)

	pub := service.NewStorePublisher(events)
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		defer producer.Close()
		pub = service.NewKafkaPublisher(producer, circuit_breaker.New(cfg.Breaker), kafka.RequestEventsTopic)
	} else {
		log.Warn("no kafka brokers configured, events go straight to the store")
	}

	svc := service.NewService(repo, events, pub, issuer, log)

	if cfg.Kafka.Enabled() {
		group, err := kafka.NewConsumer(cfg.Kafka, kafka.EventsConsumerGroup)
		if err != nil {
			log.Fatal("kafka.NewConsumer", zap.Error(err))
		}
		defer group.Close()
		consumer := handler.NewConsumer(svc, log)
		g.Go(func() error {
			return kafka.Consume(gCtx, group, consumer, kafka.RequestEventsTopic)
		})
	}

	h := handler.New(svc, svc, svc, issuer, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr", net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("app stopped", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}
