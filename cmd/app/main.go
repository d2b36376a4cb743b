package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/salonware/salonbooking/api"
	"github.com/salonware/salonbooking/config"
	"github.com/salonware/salonbooking/internal/bootstrap"
	"github.com/salonware/salonbooking/internal/cache"
	"github.com/salonware/salonbooking/internal/kafka"
	"github.com/salonware/salonbooking/internal/repository"
	"github.com/salonware/salonbooking/internal/service/payment"
	"github.com/salonware/salonbooking/internal/service/reservation"
	"github.com/salonware/salonbooking/migrations"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runMigrations(cfg); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Reservation.ScheduleCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	reservationRepo := repository.NewReservationRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	reservationService := reservation.NewReservationService(
		reservationRepo,
		customerRepo,
		staffRepo,
		serviceRepo,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Reservation.SlotLockTTLSeconds)*time.Second,
		reservation.WithConflictPolicy(reservation.ConflictPolicy(cfg.Reservation.ConflictPolicy)),
		reservation.WithModifiableWindow(time.Duration(cfg.Reservation.ModifiableWindowHours)*time.Hour),
	)
	paymentService := payment.NewPaymentService(reservationService, paymentRepo, payment.NewStubProvider())

	handler := api.NewReservationHandler(reservationService, paymentService)

	if err := bootstrap.Run(ctx, cfg, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runMigrations(cfg *config.Config) error {
	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
