package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"taskmanager/internal/app"
	"taskmanager/internal/config"
	"taskmanager/internal/logger"
)

func main() {
	cfg, err := config.Load("config.yml")
	if err != nil {
		log.Fatalf("загрузка конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		log.Fatalf("инициализация приложения: %v", err)
	}

	go func() {
		if err := a.Run(); err != nil {
			logger.Error("Сервер остановился с ошибкой", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", err)
	}
}
