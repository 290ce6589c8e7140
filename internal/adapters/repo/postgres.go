package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fan-chat-assist/internal/domain"
	"fan-chat-assist/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.AuditRepo = (*Postgres)(nil)
var _ domain.ProfileRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return p.connCtx()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// SaveAuditRecord сохраняет подготовленную запись аудита. Конфликт по
// audit_id существующую строку не меняет: регресс статуса через вставку невозможен.
func (p *Postgres) SaveAuditRecord(ctx context.Context, rec domain.AuditRecord, manualSendRequired bool) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO audit_records (audit_id, fan_id, message, status, compliance_status, manual_send_required, prepared_at)
VALUES ($1, $2, $3, $4, 'ready_for_manual_send', $5, $6)
ON CONFLICT (audit_id) DO NOTHING
`, rec.AuditID, rec.FanID, rec.Message, rec.Status, manualSendRequired, rec.PreparedAt)
	metrics.ObserveNetworkRequest("postgres", "audit_insert", "audit_records", start, err)
	return err
}

// UpdateAuditStatus обновляет статус записи аудита.
func (p *Postgres) UpdateAuditStatus(ctx context.Context, auditID string, status domain.SendStatus, at time.Time) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE audit_records SET status = $2, updated_at = $3 WHERE audit_id = $1
`, auditID, status, at)
	metrics.ObserveNetworkRequest("postgres", "audit_update_status", "audit_records", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuditNotFound
	}
	return nil
}

// MarkSentManually фиксирует терминальное состояние записи.
func (p *Postgres) MarkSentManually(ctx context.Context, auditID string, sentAt time.Time) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE audit_records SET status = 'sent_manually', sent_at = $2, updated_at = $2 WHERE audit_id = $1
`, auditID, sentAt)
	metrics.ObserveNetworkRequest("postgres", "audit_mark_sent", "audit_records", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuditNotFound
	}
	return nil
}

// LoadAuditRecord возвращает запись аудита по идентификатору.
func (p *Postgres) LoadAuditRecord(ctx context.Context, auditID string) (domain.AuditRecord, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var (
		rec       domain.AuditRecord
		sentAt    sql.NullTime
		updatedAt sql.NullTime
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT audit_id, fan_id, message, status, prepared_at, sent_at, updated_at
FROM audit_records WHERE audit_id = $1
`, auditID).Scan(&rec.AuditID, &rec.FanID, &rec.Message, &rec.Status, &rec.PreparedAt, &sentAt, &updatedAt)
	metrics.ObserveNetworkRequest("postgres", "audit_load", "audit_records", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AuditRecord{}, domain.ErrAuditNotFound
		}
		return domain.AuditRecord{}, err
	}
	if sentAt.Valid {
		rec.SentAt = &sentAt.Time
	}
	if updatedAt.Valid {
		rec.UpdatedAt = &updatedAt.Time
	}
	return rec, nil
}

// SaveFanProfile сохраняет результат классификации фаната.
func (p *Postgres) SaveFanProfile(ctx context.Context, profile domain.FanProfile) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO fan_profiles (fan_id, personality_type, confidence, polarity, subjectivity, mood, engagement_level, analyzed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (fan_id) DO UPDATE SET personality_type = EXCLUDED.personality_type, confidence = EXCLUDED.confidence,
  polarity = EXCLUDED.polarity, subjectivity = EXCLUDED.subjectivity, mood = EXCLUDED.mood,
  engagement_level = EXCLUDED.engagement_level, analyzed_at = EXCLUDED.analyzed_at
`, profile.FanID, profile.PersonalityType, profile.Confidence, profile.Sentiment.Polarity,
		profile.Sentiment.Subjectivity, profile.Sentiment.Mood, profile.EngagementLevel, profile.AnalyzedAt)
	metrics.ObserveNetworkRequest("postgres", "profile_upsert", "fan_profiles", start, err)
	return err
}

// LoadFanProfile возвращает последний сохранённый профиль фаната.
func (p *Postgres) LoadFanProfile(ctx context.Context, fanID string) (domain.FanProfile, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var profile domain.FanProfile
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT fan_id, personality_type, confidence, polarity, subjectivity, mood, engagement_level, analyzed_at
FROM fan_profiles WHERE fan_id = $1
`, fanID).Scan(&profile.FanID, &profile.PersonalityType, &profile.Confidence, &profile.Sentiment.Polarity,
		&profile.Sentiment.Subjectivity, &profile.Sentiment.Mood, &profile.EngagementLevel, &profile.AnalyzedAt)
	metrics.ObserveNetworkRequest("postgres", "profile_load", "fan_profiles", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FanProfile{}, domain.ErrProfileNotFound
		}
		return domain.FanProfile{}, err
	}
	return profile, nil
}

// RecordAuditEvent сохраняет событие жизненного цикла для отчётности.
func (p *Postgres) RecordAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO audit_events (audit_id, fan_id, status, occurred_at) VALUES ($1, $2, $3, $4)
`, event.AuditID, event.FanID, event.Status, event.OccurredAt)
	metrics.ObserveNetworkRequest("postgres", "audit_event_insert", "audit_events", start, err)
	return err
}
