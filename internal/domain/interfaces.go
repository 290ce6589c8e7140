package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAuditNotFound возвращается если запись аудита отсутствует и в памяти, и в хранилище.
var ErrAuditNotFound = errors.New("запись аудита не найдена")

// ErrProfileNotFound возвращается если профиль фаната не сохранялся.
var ErrProfileNotFound = errors.New("профиль фаната не найден")

// AuditRepo описывает долговременное хранилище записей аудита.
// Хранилище считается at-least-once: транзакционность ядро не реализует.
type AuditRepo interface {
	SaveAuditRecord(ctx context.Context, rec AuditRecord, manualSendRequired bool) error
	UpdateAuditStatus(ctx context.Context, auditID string, status SendStatus, at time.Time) error
	MarkSentManually(ctx context.Context, auditID string, sentAt time.Time) error
	LoadAuditRecord(ctx context.Context, auditID string) (AuditRecord, error)
}

// ProfileRepo сохраняет и возвращает профили фанатов.
type ProfileRepo interface {
	SaveFanProfile(ctx context.Context, profile FanProfile) error
	LoadFanProfile(ctx context.Context, fanID string) (FanProfile, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}

// Clipboard описывает способность копировать текст в буфер обмена оператора.
type Clipboard interface {
	Copy(text string) error
}

// BrowserOpener описывает способность открывать ссылки в браузере оператора.
type BrowserOpener interface {
	Open(url string) error
}

// InterestExtractor извлекает интересы фаната из текста.
// Отсутствие бэкенда считается штатной ситуацией: анализатор деградирует до пустого набора.
type InterestExtractor interface {
	Extract(text string) ([]string, error)
}

// AuditEventPublisher публикует события жизненного цикла аудита.
type AuditEventPublisher interface {
	Publish(ctx context.Context, event AuditEvent) error
}

// AuditEventConsumer блокирующе читает события жизненного цикла аудита.
type AuditEventConsumer interface {
	Pop(ctx context.Context) (AuditEvent, error)
}
