package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/httpapi"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
	"taskhub/internal/service"
	"taskhub/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	store, err := storage.NewStore(cfg.UploadDir, nil)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("notifier: %v", err)
		}
		notifier = tg
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	userSvc := service.NewUserService(userRepo, issuer)
	taskSvc := service.NewTaskService(taskRepo, userRepo, store, notifier)
	reminderSvc := service.NewReminderService(taskRepo, notifier)
	sweeper := storage.NewSweeper(store, taskRepo)

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.SweepInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		removed, err := sweeper.Sweep(jobCtx, time.Now())
		if err != nil {
			log.Printf("sweep: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("sweep: removed %d orphaned files", removed)
		}
	}); err != nil {
		log.Fatalf("schedule sweep: %v", err)
	}
	if _, err := scheduler.ScheduleDaily(cfg.ReminderHour, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := reminderSvc.NotifyDue(jobCtx, time.Now()); err != nil {
			log.Printf("reminders: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := httpapi.NewServer(userSvc, taskSvc, httpapi.Options{
		Issuer:     issuer,
		UserFinder: userRepo,
		UploadDir:  cfg.UploadDir,
		Production: cfg.Production(),
	})

	go func() {
		if err := server.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()
	log.Printf("taskhub listening on %s", cfg.ListenAddr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Echo().Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}
