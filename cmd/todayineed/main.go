package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"today-i-need/internal/bot"
	"today-i-need/internal/config"
	"today-i-need/internal/repository"
	"today-i-need/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	categorySvc := service.NewCategoryService(categoryRepo)
	taskSvc := service.NewTaskService(taskRepo, time.Now, cfg.Location)
	reminderSvc := service.NewReminderService(taskRepo, cfg.Location)
	scheduler := service.NewSchedulerService(cfg.Location)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, categorySvc, taskSvc, reminderSvc, scheduler, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	if err := telegramBot.ScheduleReports(); err != nil {
		log.Fatalf("schedule reports: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Printf("[info] Today I Need bot started (timezone %s)", cfg.Location)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
