package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"fan-chat-assist/internal/adapters/capability"
	"fan-chat-assist/internal/adapters/nlp"
	"fan-chat-assist/internal/adapters/repo"
	"fan-chat-assist/internal/domain"
	"fan-chat-assist/internal/infra/cache"
	"fan-chat-assist/internal/infra/config"
	"fan-chat-assist/internal/infra/db"
	httpinfra "fan-chat-assist/internal/infra/http"
	loginfra "fan-chat-assist/internal/infra/log"
	"fan-chat-assist/internal/infra/metrics"
	"fan-chat-assist/internal/infra/queue"
	"fan-chat-assist/internal/usecase/analyzer"
	"fan-chat-assist/internal/usecase/compliance"
	"fan-chat-assist/internal/usecase/generator"
	"fan-chat-assist/internal/usecase/sendaudit"
)

func main() {
	cfg := config.Load()
	logger := loginfra.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	trackerOpts := []sendaudit.Option{
		sendaudit.WithClipboard(capability.SystemClipboard{}),
		sendaudit.WithBrowser(capability.SystemBrowser{}),
	}
	var sharedCache domain.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		sharedCache = cache.NewRedis(client)
		trackerOpts = append(trackerOpts, sendaudit.WithCache(sharedCache))
	}
	if cfg.AMQPURL != "" {
		events, err := queue.NewAMQPAuditEvents(cfg.AMQPURL, cfg.Queues.AuditEvents)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к RabbitMQ")
		}
		defer events.Close()
		trackerOpts = append(trackerOpts, sendaudit.WithEvents(events))
	}

	tracker := sendaudit.NewTracker(
		repoAdapter,
		cfg.Send.ChatURLBase,
		logger.With().Str("component", "sendaudit").Logger(),
		trackerOpts...,
	)

	breakpoints := analyzer.PhaseBreakpoints{
		IntrigueMax:   cfg.Phases.IntrigueMax,
		RapportMax:    cfg.Phases.RapportMax,
		AttractionMax: cfg.Phases.AttractionMax,
	}
	analyzerSvc := analyzer.NewService(
		analyzer.LexiconForLocale(cfg.Locale),
		breakpoints,
		nlp.ProseExtractor{},
		logger.With().Str("component", "analyzer").Logger(),
	)
	validator := compliance.NewValidator(
		cfg.Compliance.MaxMessageLength,
		cfg.Compliance.EmojiThreshold,
		cfg.Compliance.ManualSendRequired,
		cfg.Compliance.AIDisclosure,
	)
	generatorSvc := generator.NewService(
		generator.TableForLocale(cfg.Locale),
		validator,
		cfg.Generator.UrgencyEnabled,
		logger.With().Str("component", "generator").Logger(),
	)

	srv := httpinfra.NewServer(logger)
	h := handlers{
		analyzer:  analyzerSvc,
		generator: generatorSvc,
		tracker:   tracker,
		profiles:  repoAdapter,
		cache:     sharedCache,
		log:       logger.With().Str("component", "api").Logger(),
	}
	h.register(srv.Router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api: graceful shutdown failed")
		}
	}()

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("api: сервер остановился с ошибкой")
	}
}

type handlers struct {
	analyzer  *analyzer.Service
	generator *generator.Service
	tracker   *sendaudit.Tracker
	profiles  domain.ProfileRepo
	cache     domain.Cache
	log       zerolog.Logger
}

func (h handlers) register(r chi.Router) {
	r.Post("/api/v1/fans/{fanID}/analyze", h.analyze)
	r.Post("/api/v1/messages/generate", h.generate)
	r.Post("/api/v1/send/prepare", h.prepare)
	r.Post("/api/v1/send/{auditID}/execute", h.execute)
	r.Post("/api/v1/send/{auditID}/confirm", h.confirm)
	r.Get("/api/v1/send/{auditID}/status", h.status)
	r.Get("/api/v1/send/report", h.report)
}

type messagePayload struct {
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

func toDomainMessages(fanID string, payload []messagePayload) []domain.Message {
	messages := make([]domain.Message, 0, len(payload))
	for _, m := range payload {
		messages = append(messages, domain.Message{FanID: fanID, Text: m.Text, SentAt: m.SentAt})
	}
	return messages
}

type analyzeRequest struct {
	Messages []messagePayload `json:"messages"`
}

type analyzeResponse struct {
	Profile   domain.FanProfile        `json:"profile"`
	Phase     domain.ConversationPhase `json:"phase"`
	Spending  domain.SpendingEstimate  `json:"spending"`
	Interests []string                 `json:"interests"`
}

func (h handlers) analyze(w http.ResponseWriter, r *http.Request) {
	fanID := chi.URLParam(r, "fanID")
	if fanID == "" {
		writeError(w, http.StatusBadRequest, "fan_id is required")
		return
	}
	defer r.Body.Close()
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	messages := toDomainMessages(fanID, req.Messages)
	profile := h.analyzer.AnalyzePersonality(fanID, messages)

	resp := analyzeResponse{
		Profile:   profile,
		Phase:     h.analyzer.AnalyzePhase(messages),
		Spending:  h.analyzer.EstimateSpendingPotential(messages),
		Interests: h.analyzer.ExtractInterests(messages),
	}

	// Профиль сохраняется best effort: анализ остаётся доступным и без хранилища.
	if err := h.profiles.SaveFanProfile(r.Context(), profile); err != nil {
		h.log.Warn().Err(err).Str("fan_id", fanID).Msg("профиль не сохранён")
	}
	if h.cache != nil {
		if payload, err := json.Marshal(profile); err == nil {
			_ = h.cache.Set("profile:"+fanID, payload, time.Hour)
		}
	}

	writeJSON(w, resp)
}

type generateRequest struct {
	FanID       string            `json:"fan_id"`
	Messages    []messagePayload  `json:"messages"`
	Context     map[string]string `json:"context"`
	AccountSize string            `json:"account_size"`
}

type generateResponse struct {
	domain.GeneratedMessage
	Review string `json:"review"`
}

func (h handlers) generate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FanID == "" {
		writeError(w, http.StatusBadRequest, "fan_id is required")
		return
	}

	accountSize := domain.AccountSmall
	if req.AccountSize == string(domain.AccountLarge) {
		accountSize = domain.AccountLarge
	}

	messages := toDomainMessages(req.FanID, req.Messages)
	profile := h.analyzer.AnalyzePersonality(req.FanID, messages)
	phase := h.analyzer.AnalyzePhase(messages)

	generated := h.generator.Generate(profile, phase, req.Context, accountSize, req.FanID)
	writeJSON(w, generateResponse{
		GeneratedMessage: generated,
		Review:           compliance.FormatForReview(req.FanID, generated.Message, generated.Compliance),
	})
}

type prepareRequest struct {
	FanID   string `json:"fan_id"`
	Message string `json:"message"`
	AuditID string `json:"audit_id"`
}

func (h handlers) prepare(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.tracker.PrepareManualSend(r.Context(), req.FanID, req.Message, req.AuditID)
	if err != nil {
		switch {
		case errors.Is(err, sendaudit.ErrEmptyFanID), errors.Is(err, sendaudit.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, sendaudit.ErrAlreadyPrepared), errors.Is(err, sendaudit.ErrAlreadySent):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, sendaudit.ErrPrepareFailed.Error())
		}
		return
	}
	writeJSON(w, res)
}

type executeRequest struct {
	OpenBrowser bool `json:"open_browser"`
}

func (h handlers) execute(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")
	defer r.Body.Close()
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.tracker.ExecuteOneClickSend(r.Context(), auditID, req.OpenBrowser)
	if err != nil {
		writeSendError(w, err)
		return
	}
	writeJSON(w, res)
}

type confirmRequest struct {
	SentByUser bool `json:"sent_by_user"`
}

func (h handlers) confirm(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")
	defer r.Body.Close()
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.tracker.MarkMessageSent(r.Context(), auditID, req.SentByUser)
	if err != nil {
		writeSendError(w, err)
		return
	}
	writeJSON(w, res)
}

func (h handlers) status(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")
	rec, err := h.tracker.GetSendStatus(r.Context(), auditID)
	if err != nil {
		writeSendError(w, err)
		return
	}
	writeJSON(w, rec)
}

func (h handlers) report(w http.ResponseWriter, r *http.Request) {
	fanID := r.URL.Query().Get("fan_id")
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}
	writeJSON(w, h.tracker.GenerateSendReport(fanID, days))
}

func writeSendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAuditNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sendaudit.ErrAlreadySent):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sendaudit.ErrHumanConfirmationRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
