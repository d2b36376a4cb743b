package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salonware/salonbooking/config"
	"github.com/salonware/salonbooking/internal/cache"
	"github.com/salonware/salonbooking/internal/kafka"
	"github.com/salonware/salonbooking/internal/notification"
	"github.com/salonware/salonbooking/internal/repository"
	"github.com/salonware/salonbooking/internal/service/reservation"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Reservation.ScheduleCacheTTLSeconds)*time.Second)

	reservationRepo := repository.NewReservationRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)

	reservationService := reservation.NewReservationService(
		reservationRepo,
		customerRepo,
		staffRepo,
		serviceRepo,
		redisCache,
		nil,
		"",
		time.Duration(cfg.Reservation.SlotLockTTLSeconds)*time.Second,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := notification.NewEmailSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.ReservationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.SendReservationConfirmation(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.CompletionSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			completed, err := reservationService.CompleteFinished(ctx)
			if err != nil {
				log.Printf("completion sweep error: %v", err)
				continue
			}
			if len(completed) > 0 {
				log.Printf("marked %d reservations completed", len(completed))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
