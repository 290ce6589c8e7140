package domain

import "time"

// PersonalityType описывает поведенческий тип фаната.
type PersonalityType string

const (
	PersonalityEmotional PersonalityType = "emotional"
	PersonalityConqueror PersonalityType = "conqueror"
)

// ConversationPhase описывает стадию IRAS-прогрессии диалога.
type ConversationPhase string

const (
	PhaseIntrigue   ConversationPhase = "intrigue"
	PhaseRapport    ConversationPhase = "rapport"
	PhaseAttraction ConversationPhase = "attraction"
	PhaseSubmission ConversationPhase = "submission"
)

// PhaseRank возвращает порядковый номер стадии для сравнения прогрессии.
func PhaseRank(p ConversationPhase) int {
	switch p {
	case PhaseIntrigue:
		return 0
	case PhaseRapport:
		return 1
	case PhaseAttraction:
		return 2
	case PhaseSubmission:
		return 3
	}
	return -1
}

// EngagementLevel описывает уровень вовлечённости фаната.
type EngagementLevel string

const (
	EngagementHigh   EngagementLevel = "high"
	EngagementMedium EngagementLevel = "medium"
	EngagementLow    EngagementLevel = "low"
)

// Mood описывает дискретную оценку настроения по полярности.
type Mood string

const (
	MoodVeryPositive Mood = "very_positive"
	MoodPositive     Mood = "positive"
	MoodNeutral      Mood = "neutral"
	MoodNegative     Mood = "negative"
	MoodVeryNegative Mood = "very_negative"
)

// SpendingTier описывает оценку покупательского потенциала.
type SpendingTier string

const (
	SpendingHigh   SpendingTier = "high_spender"
	SpendingMedium SpendingTier = "medium_spender"
	SpendingLow    SpendingTier = "low_spender"
)

// AccountSize описывает размер аккаунта модели и влияет на тон сообщения.
type AccountSize string

const (
	AccountSmall AccountSize = "small"
	AccountLarge AccountSize = "large"
)

// Message представляет входящее сообщение фаната.
// SentAt принимается для будущего использования и на классификацию не влияет.
type Message struct {
	FanID  string
	Text   string
	SentAt time.Time
}

// Sentiment содержит результат сентимент-оценки текста.
type Sentiment struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
	Mood         Mood    `json:"mood"`
}

// FanProfile содержит результат классификации фаната по истории сообщений.
type FanProfile struct {
	FanID           string          `json:"fan_id"`
	PersonalityType PersonalityType `json:"personality_type"`
	Confidence      float64         `json:"confidence"`
	Sentiment       Sentiment       `json:"sentiment"`
	EngagementLevel EngagementLevel `json:"engagement_level"`
	AnalyzedAt      time.Time       `json:"analyzed_at"`
}

// SpendingEstimate содержит оценку покупательского потенциала фаната.
type SpendingEstimate struct {
	Potential       SpendingTier `json:"potential"`
	Confidence      float64      `json:"confidence"`
	IndicatorsFound []string     `json:"indicators_found"`
}

// Severity задаёт вес предупреждения комплаенса.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// ComplianceWarning описывает одно предупреждение проверки сообщения.
type ComplianceWarning struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// ComplianceRequirement описывает обязательное условие отправки.
type ComplianceRequirement struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// ComplianceVerdict содержит итог проверки сообщения.
// Compliant истинен тогда и только тогда, когда нет critical-предупреждений.
type ComplianceVerdict struct {
	Compliant    bool                    `json:"compliant"`
	Warnings     []ComplianceWarning     `json:"warnings"`
	Requirements []ComplianceRequirement `json:"requirements"`
}

// GeneratedMessage содержит результат генерации кандидата ответа.
type GeneratedMessage struct {
	Message            string            `json:"message"`
	Compliance         ComplianceVerdict `json:"compliance"`
	ManualSendRequired bool              `json:"manual_send_required"`
}

// SendStatus описывает состояние записи аудита ручной отправки.
type SendStatus string

const (
	StatusPrepared          SendStatus = "prepared"
	StatusClipboardPrepared SendStatus = "clipboard_prepared"
	StatusSentManually      SendStatus = "sent_manually"
)

// AuditRecord описывает след подготовленного к ручной отправке сообщения.
// Жизненный цикл: prepared → clipboard_prepared → sent_manually, без возвратов.
type AuditRecord struct {
	AuditID    string     `json:"audit_id"`
	FanID      string     `json:"fan_id"`
	Message    string     `json:"message"`
	Status     SendStatus `json:"status"`
	PreparedAt time.Time  `json:"prepared_at"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// AuditEvent описывает событие жизненного цикла записи аудита для очереди.
type AuditEvent struct {
	AuditID    string     `json:"audit_id"`
	FanID      string     `json:"fan_id"`
	Status     SendStatus `json:"status"`
	OccurredAt time.Time  `json:"occurred_at"`
}
