package sendaudit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fan-chat-assist/internal/domain"
	"fan-chat-assist/internal/infra/metrics"
)

var (
	// ErrEmptyFanID возвращается до любой мутации состояния.
	ErrEmptyFanID = errors.New("пустой fan id")
	// ErrEmptyMessage возвращается до любой мутации состояния.
	ErrEmptyMessage = errors.New("пустое сообщение")
	// ErrHumanConfirmationRequired возвращается если отправку не подтвердил человек.
	ErrHumanConfirmationRequired = errors.New("отправка должна быть подтверждена человеком")
	// ErrAlreadySent возвращается при попытке повторить терминальный переход.
	ErrAlreadySent = errors.New("запись уже отмечена отправленной")
	// ErrAlreadyPrepared возвращается при попытке повторно подготовить существующий id.
	ErrAlreadyPrepared = errors.New("запись аудита уже подготовлена")
	// ErrPrepareFailed возвращается если хранилище не приняло новую запись.
	ErrPrepareFailed = errors.New("failed to prepare message for sending")
	// ErrConfirmFailed возвращается если хранилище не зафиксировало отправку.
	ErrConfirmFailed = errors.New("не удалось зафиксировать отправку в хранилище")
)

const (
	cacheKeyPrefix = "audit:"
	cacheTTL       = 24 * time.Hour
	previewRunes   = 120
)

// Tracker владеет жизненным циклом ручной отправки и записями аудита.
// Переходы по одному audit_id сериализуются per-key замком, разные id
// обрабатываются параллельно. Долговременная копия живёт во внешнем
// хранилище: переходы всегда пишут в обе копии, отказ хранилища после
// подготовки деградирует запись до best effort, но не роняет вызов.
type Tracker struct {
	mu      sync.Mutex
	records map[string]domain.AuditRecord
	locks   map[string]*sync.Mutex

	repo      domain.AuditRepo
	cache     domain.Cache
	events    domain.AuditEventPublisher
	clipboard domain.Clipboard
	browser   domain.BrowserOpener

	chatURLBase string
	log         zerolog.Logger
	now         func() time.Time
}

// Option настраивает необязательные способности трекера.
type Option func(*Tracker)

// WithCache подключает общий кэш-слой для записей аудита.
func WithCache(c domain.Cache) Option {
	return func(t *Tracker) { t.cache = c }
}

// WithEvents подключает публикацию событий жизненного цикла.
func WithEvents(p domain.AuditEventPublisher) Option {
	return func(t *Tracker) { t.events = p }
}

// WithClipboard подключает буфер обмена оператора.
func WithClipboard(c domain.Clipboard) Option {
	return func(t *Tracker) { t.clipboard = c }
}

// WithBrowser подключает открытие ссылок в браузере оператора.
func WithBrowser(b domain.BrowserOpener) Option {
	return func(t *Tracker) { t.browser = b }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker создаёт трекер ручной отправки.
func NewTracker(repo domain.AuditRepo, chatURLBase string, logger zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		records:     make(map[string]domain.AuditRecord),
		locks:       make(map[string]*sync.Mutex),
		repo:        repo,
		chatURLBase: strings.TrimRight(chatURLBase, "/"),
		log:         logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PrepareResult описывает подготовленную к ручной отправке запись.
type PrepareResult struct {
	AuditID            string   `json:"audit_id"`
	OnlyFansURL        string   `json:"onlyfans_url"`
	ClipboardAvailable bool     `json:"clipboard_available"`
	Instructions       []string `json:"instructions"`
	ReadyForSend       bool     `json:"ready_for_send"`
}

// ExecuteResult описывает результат шага «в один клик».
type ExecuteResult struct {
	ClipboardCopied      bool   `json:"clipboard_copied"`
	BrowserOpened        bool   `json:"browser_opened"`
	MessagePreview       string `json:"message_preview"`
	NextStep             string `json:"next_step"`
	ComplianceMaintained bool   `json:"compliance_maintained"`
	ManualCopyRequired   string `json:"manual_copy_required,omitempty"`
}

// ConfirmResult фиксирует переход в терминальное состояние.
type ConfirmResult struct {
	Status               domain.SendStatus `json:"status"`
	SentAt               time.Time         `json:"sent_at"`
	ComplianceMaintained bool              `json:"compliance_maintained"`
}

// PrepareManualSend создаёт запись аудита и готовит сообщение к ручной
// отправке. Отказ хранилища на этом шаге возвращается явной ошибкой: без durable-копии
// запись не считается подготовленной.
func (t *Tracker) PrepareManualSend(ctx context.Context, fanID, message, auditID string) (PrepareResult, error) {
	if strings.TrimSpace(fanID) == "" {
		return PrepareResult{}, ErrEmptyFanID
	}
	if strings.TrimSpace(message) == "" {
		return PrepareResult{}, ErrEmptyMessage
	}
	if auditID == "" {
		auditID = deriveAuditID(fanID, t.now().UTC())
	}

	lock := t.lockFor(auditID)
	lock.Lock()
	defer lock.Unlock()

	// Существующий id не перезаписывается: иначе входными данными вызова
	// можно было бы откатить запись из терминального состояния.
	switch existing, err := t.lookup(ctx, auditID); {
	case err == nil:
		if existing.Status == domain.StatusSentManually {
			return PrepareResult{}, ErrAlreadySent
		}
		return PrepareResult{}, ErrAlreadyPrepared
	case !errors.Is(err, domain.ErrAuditNotFound):
		return PrepareResult{}, fmt.Errorf("%w: %v", ErrPrepareFailed, err)
	}

	rec := domain.AuditRecord{
		AuditID:    auditID,
		FanID:      fanID,
		Message:    message,
		Status:     domain.StatusPrepared,
		PreparedAt: t.now().UTC(),
	}

	if err := t.repo.SaveAuditRecord(ctx, rec, true); err != nil {
		metrics.IncCapabilityFailure("store")
		t.log.Error().Err(err).Str("audit_id", auditID).Msg("sendaudit: хранилище не приняло запись")
		return PrepareResult{}, fmt.Errorf("%w: %v", ErrPrepareFailed, err)
	}

	t.mu.Lock()
	t.records[auditID] = rec
	t.mu.Unlock()
	t.cacheRecord(rec)
	t.publishEvent(ctx, rec)
	metrics.IncSendLifecycle(string(domain.StatusPrepared))

	return PrepareResult{
		AuditID:            auditID,
		OnlyFansURL:        t.chatURL(fanID),
		ClipboardAvailable: t.clipboard != nil,
		Instructions: []string{
			"1. Откройте чат с фанатом по ссылке",
			"2. Выполните шаг one-click, чтобы скопировать сообщение",
			"3. Вставьте сообщение в поле чата",
			"4. Проверьте текст и отправьте вручную",
			"5. Подтвердите отправку в системе",
		},
		ReadyForSend: true,
	}, nil
}

// ExecuteOneClickSend копирует сообщение в буфер обмена и по запросу
// открывает чат в браузере. Обе способности best effort: их отказ
// деградирует результат, но не прерывает вызов. Успешное копирование
// переводит запись в clipboard_prepared.
func (t *Tracker) ExecuteOneClickSend(ctx context.Context, auditID string, openBrowser bool) (ExecuteResult, error) {
	lock := t.lockFor(auditID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := t.lookup(ctx, auditID)
	if err != nil {
		return ExecuteResult{}, err
	}
	if rec.Status == domain.StatusSentManually {
		return ExecuteResult{}, ErrAlreadySent
	}

	copied := false
	if t.clipboard != nil {
		if err := t.clipboard.Copy(rec.Message); err != nil {
			metrics.IncCapabilityFailure("clipboard")
			t.log.Warn().Err(err).Str("audit_id", auditID).Msg("sendaudit: буфер обмена недоступен")
		} else {
			copied = true
		}
	}

	opened := false
	if openBrowser && t.browser != nil {
		if err := t.browser.Open(t.chatURL(rec.FanID)); err != nil {
			metrics.IncCapabilityFailure("browser")
			t.log.Warn().Err(err).Str("audit_id", auditID).Msg("sendaudit: браузер не открылся")
		} else {
			opened = true
		}
	}

	res := ExecuteResult{
		ClipboardCopied:      copied,
		BrowserOpened:        opened,
		MessagePreview:       preview(rec.Message),
		ComplianceMaintained: true,
	}

	if copied {
		if rec.Status == domain.StatusPrepared {
			t.transition(ctx, rec, domain.StatusClipboardPrepared)
		}
		res.NextStep = "Вставьте сообщение в чат и отправьте вручную"
	} else {
		res.ManualCopyRequired = rec.Message
		res.NextStep = "Скопируйте сообщение вручную и отправьте из чата"
	}

	return res, nil
}

// MarkMessageSent выполняет единственный переход в терминальное состояние. Вызов
// обязан исходить от подтверждённого человеком действия: из активности
// буфера обмена или браузера отправка никогда не выводится.
func (t *Tracker) MarkMessageSent(ctx context.Context, auditID string, sentByUser bool) (ConfirmResult, error) {
	if !sentByUser {
		return ConfirmResult{}, ErrHumanConfirmationRequired
	}

	lock := t.lockFor(auditID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := t.lookup(ctx, auditID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if rec.Status == domain.StatusSentManually {
		return ConfirmResult{}, ErrAlreadySent
	}

	sentAt := t.now().UTC()
	if err := t.repo.MarkSentManually(ctx, auditID, sentAt); err != nil {
		metrics.IncCapabilityFailure("store")
		return ConfirmResult{}, fmt.Errorf("%w: %v", ErrConfirmFailed, err)
	}

	rec.Status = domain.StatusSentManually
	rec.SentAt = &sentAt
	rec.UpdatedAt = &sentAt
	t.mu.Lock()
	t.records[auditID] = rec
	t.mu.Unlock()
	t.cacheRecord(rec)
	t.publishEvent(ctx, rec)
	metrics.IncSendLifecycle(string(domain.StatusSentManually))

	return ConfirmResult{Status: domain.StatusSentManually, SentAt: sentAt, ComplianceMaintained: true}, nil
}

// GetSendStatus возвращает снимок записи: сначала память, затем хранилище.
func (t *Tracker) GetSendStatus(ctx context.Context, auditID string) (domain.AuditRecord, error) {
	lock := t.lockFor(auditID)
	lock.Lock()
	defer lock.Unlock()
	return t.lookup(ctx, auditID)
}

// transition пишет новый статус в обе копии. Отказ durable-копии здесь
// деградирует запись до best effort и только логируется.
func (t *Tracker) transition(ctx context.Context, rec domain.AuditRecord, status domain.SendStatus) {
	at := t.now().UTC()
	rec.Status = status
	rec.UpdatedAt = &at

	t.mu.Lock()
	t.records[rec.AuditID] = rec
	t.mu.Unlock()

	if err := t.repo.UpdateAuditStatus(ctx, rec.AuditID, status, at); err != nil {
		metrics.IncCapabilityFailure("store")
		t.log.Warn().Err(err).Str("audit_id", rec.AuditID).Msg("sendaudit: durable-копия отстала, запись best effort")
	}
	t.cacheRecord(rec)
	t.publishEvent(ctx, rec)
	metrics.IncSendLifecycle(string(status))
}

// lookup ищет запись в памяти, затем в кэше, затем в хранилище.
// Копии не расходятся молча: попадание из внешнего слоя прогревает память.
func (t *Tracker) lookup(ctx context.Context, auditID string) (domain.AuditRecord, error) {
	t.mu.Lock()
	rec, ok := t.records[auditID]
	t.mu.Unlock()
	if ok {
		return rec, nil
	}

	if t.cache != nil {
		if payload, err := t.cache.Get(cacheKeyPrefix + auditID); err == nil && len(payload) > 0 {
			if err := json.Unmarshal(payload, &rec); err == nil && rec.AuditID == auditID {
				t.mu.Lock()
				t.records[auditID] = rec
				t.mu.Unlock()
				return rec, nil
			}
		}
	}

	rec, err := t.repo.LoadAuditRecord(ctx, auditID)
	if err != nil {
		if errors.Is(err, domain.ErrAuditNotFound) {
			return domain.AuditRecord{}, domain.ErrAuditNotFound
		}
		return domain.AuditRecord{}, fmt.Errorf("чтение записи аудита: %w", err)
	}
	t.mu.Lock()
	t.records[auditID] = rec
	t.mu.Unlock()
	t.cacheRecord(rec)
	return rec, nil
}

func (t *Tracker) lockFor(auditID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[auditID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[auditID] = lock
	}
	return lock
}

func (t *Tracker) cacheRecord(rec domain.AuditRecord) {
	if t.cache == nil {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := t.cache.Set(cacheKeyPrefix+rec.AuditID, payload, cacheTTL); err != nil {
		t.log.Debug().Err(err).Str("audit_id", rec.AuditID).Msg("sendaudit: кэш недоступен")
	}
}

func (t *Tracker) publishEvent(ctx context.Context, rec domain.AuditRecord) {
	if t.events == nil {
		return
	}
	event := domain.AuditEvent{
		AuditID:    rec.AuditID,
		FanID:      rec.FanID,
		Status:     rec.Status,
		OccurredAt: t.now().UTC(),
	}
	if err := t.events.Publish(ctx, event); err != nil {
		metrics.IncCapabilityFailure("queue")
		t.log.Warn().Err(err).Str("audit_id", rec.AuditID).Msg("sendaudit: событие аудита не опубликовано")
	}
}

func (t *Tracker) chatURL(fanID string) string {
	return t.chatURLBase + "/" + fanID + "/"
}

// deriveAuditID строит идентификатор из фаната и момента создания.
// Суффикс защищает от коллизий в пределах одной наносекунды.
func deriveAuditID(fanID string, at time.Time) string {
	return fmt.Sprintf("%s_%d_%s", fanID, at.UnixNano(), uuid.NewString()[:8])
}

func preview(message string) string {
	runes := []rune(message)
	if len(runes) <= previewRunes {
		return message
	}
	return string(runes[:previewRunes]) + "…"
}
