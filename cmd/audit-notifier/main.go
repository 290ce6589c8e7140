package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fan-chat-assist/internal/adapters/repo"
	"fan-chat-assist/internal/infra/config"
	"fan-chat-assist/internal/infra/db"
	loginfra "fan-chat-assist/internal/infra/log"
	"fan-chat-assist/internal/infra/metrics"
	"fan-chat-assist/internal/infra/queue"
)

// audit-notifier читает события жизненного цикла аудита из очереди и
// складывает их в БД для комплаенс-отчётности.
func main() {
	cfg := config.Load()
	logger := loginfra.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger, ":9091")

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("audit-notifier: нет подключения к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	events, err := queue.NewAMQPAuditEvents(cfg.AMQPURL, cfg.Queues.AuditEvents)
	if err != nil {
		logger.Fatal().Err(err).Msg("audit-notifier: нет подключения к RabbitMQ")
	}
	defer events.Close()

	logger.Info().Str("queue", cfg.Queues.AuditEvents).Msg("audit-notifier: started")

	for {
		event, err := events.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info().Msg("audit-notifier: stopped")
				return
			}
			logger.Error().Err(err).Msg("audit-notifier: чтение очереди")
			time.Sleep(time.Second)
			continue
		}

		metrics.IncSendLifecycle(string(event.Status))
		if err := repoAdapter.RecordAuditEvent(ctx, event); err != nil {
			logger.Error().Err(err).Str("audit_id", event.AuditID).Msg("audit-notifier: событие не сохранено")
			continue
		}
		logger.Debug().
			Str("audit_id", event.AuditID).
			Str("status", string(event.Status)).
			Msg("audit-notifier: событие сохранено")
	}
}
