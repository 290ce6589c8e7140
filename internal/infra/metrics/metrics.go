package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	AnalyzeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fan_analyze_requests_total",
		Help: "Количество запросов на классификацию фаната",
	})
	AnalyzeDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fan_analyze_duration_seconds",
		Help:    "Время классификации фаната",
		Buckets: prometheus.DefBuckets,
	})
	PersonalityByType = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fan_personality_total",
		Help: "Распределение определённых типов личности",
	}, []string{"personality"})
	MessagesGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_generated_total",
		Help: "Количество сгенерированных кандидатов ответа",
	}, []string{"personality", "phase"})
	ComplianceWarnings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_warnings_total",
		Help: "Предупреждения комплаенс-проверки по типам",
	}, []string{"type", "severity"})
	ComplianceChecksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compliance_checks_total",
		Help: "Количество комплаенс-проверок сообщений",
	})
	SendLifecycle = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "send_lifecycle_total",
		Help: "Переходы записей аудита по стадиям ручной отправки",
	}, []string{"status"})
	CapabilityFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "capability_failures_total",
		Help: "Отказы внешних способностей (clipboard, browser, store)",
	}, []string{"capability"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		AnalyzeRequestsTotal,
		AnalyzeDurationSeconds,
		PersonalityByType,
		MessagesGenerated,
		ComplianceWarnings,
		ComplianceChecksTotal,
		SendLifecycle,
		CapabilityFailures,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncPersonality увеличивает счётчик определённого типа личности.
func IncPersonality(personality string) {
	PersonalityByType.WithLabelValues(personality).Inc()
}

// IncComplianceWarning увеличивает счётчик предупреждений комплаенса.
func IncComplianceWarning(warningType, severity string) {
	ComplianceWarnings.WithLabelValues(warningType, severity).Inc()
}

// IncSendLifecycle увеличивает счётчик переходов жизненного цикла отправки.
func IncSendLifecycle(status string) {
	SendLifecycle.WithLabelValues(status).Inc()
}

// IncCapabilityFailure увеличивает счётчик отказов внешней способности.
func IncCapabilityFailure(capability string) {
	CapabilityFailures.WithLabelValues(capability).Inc()
}
