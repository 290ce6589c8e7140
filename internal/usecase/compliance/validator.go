package compliance

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"

	"fan-chat-assist/internal/domain"
	"fan-chat-assist/internal/infra/metrics"
)

// Типы предупреждений и требований, попадающие в вердикт.
const (
	WarningAutomatedLanguage = "automated_language"
	WarningMessageLength     = "message_length"
	WarningSpamIndicators    = "spam_indicators"
	WarningExcessiveEmojis   = "excessive_emojis"

	RequirementManualSend   = "manual_send"
	RequirementAIDisclosure = "ai_disclosure"
)

// automatedPhrases перечисляет маркеры машинной генерации, критичные для платформы.
var automatedPhrases = []string{
	"automatically generated",
	"bot response",
	"auto-reply",
	"automated message",
	"as an ai",
}

var repeatedPunctRe = regexp.MustCompile(`[!?]{3,}`)

// spamMarkers ищутся в исходном регистре: сигналом является капс.
var spamMarkers = []string{"URGENT", "ACT NOW", "LIMITED TIME", "BUY NOW", "LAST CHANCE"}

// Validator проверяет кандидата ответа по правилам платформы.
// Проверка остаётся чистой функцией от текста и конфигурации.
type Validator struct {
	maxMessageLength   int
	emojiThreshold     int
	manualSendRequired bool
	aiDisclosure       bool
}

// NewValidator создаёт валидатор с порогами из конфигурации.
func NewValidator(maxMessageLength, emojiThreshold int, manualSendRequired, aiDisclosure bool) *Validator {
	return &Validator{
		maxMessageLength:   maxMessageLength,
		emojiThreshold:     emojiThreshold,
		manualSendRequired: manualSendRequired,
		aiDisclosure:       aiDisclosure,
	}
}

// ManualSendRequired сообщает, требует ли платформа ручную отправку.
func (v *Validator) ManualSendRequired() bool {
	return v.manualSendRequired
}

// Validate детерминированно проверяет текст сообщения. Вердикт не зависит
// от предыдущих вызовов: повторная проверка того же текста идентична.
func (v *Validator) Validate(fanID, message string) domain.ComplianceVerdict {
	verdict := domain.ComplianceVerdict{Compliant: true}

	lower := strings.ToLower(message)
	for _, phrase := range automatedPhrases {
		if strings.Contains(lower, phrase) {
			verdict.Warnings = append(verdict.Warnings, domain.ComplianceWarning{
				Type:     WarningAutomatedLanguage,
				Severity: domain.SeverityCritical,
				Detail:   fmt.Sprintf("сообщение содержит маркер машинной генерации %q", phrase),
			})
			break
		}
	}

	if v.maxMessageLength > 0 {
		if n := utf8.RuneCountInString(message); n > v.maxMessageLength {
			verdict.Warnings = append(verdict.Warnings, domain.ComplianceWarning{
				Type:     WarningMessageLength,
				Severity: domain.SeverityWarning,
				Detail:   fmt.Sprintf("длина %d превышает лимит %d символов", n, v.maxMessageLength),
			})
		}
	}

	if indicators := spamIndicators(message); len(indicators) > 0 {
		verdict.Warnings = append(verdict.Warnings, domain.ComplianceWarning{
			Type:     WarningSpamIndicators,
			Severity: domain.SeverityWarning,
			Detail:   "спам-маркеры: " + strings.Join(indicators, ", "),
		})
	}

	if v.emojiThreshold > 0 {
		if n := len(gomoji.CollectAll(message)); n > v.emojiThreshold {
			verdict.Warnings = append(verdict.Warnings, domain.ComplianceWarning{
				Type:     WarningExcessiveEmojis,
				Severity: domain.SeverityWarning,
				Detail:   fmt.Sprintf("%d эмодзи при пороге %d", n, v.emojiThreshold),
			})
		}
	}

	for _, w := range verdict.Warnings {
		metrics.IncComplianceWarning(w.Type, string(w.Severity))
		if w.Severity == domain.SeverityCritical {
			verdict.Compliant = false
		}
	}
	metrics.ComplianceChecksTotal.Inc()

	if v.manualSendRequired {
		verdict.Requirements = append(verdict.Requirements, domain.ComplianceRequirement{
			Type:   RequirementManualSend,
			Detail: "финальную отправку выполняет человек, автоматическая отправка запрещена",
		})
	}
	if v.aiDisclosure {
		verdict.Requirements = append(verdict.Requirements, domain.ComplianceRequirement{
			Type:   RequirementAIDisclosure,
			Detail: "платформа требует раскрывать использование ИИ при генерации",
		})
	}

	return verdict
}

// spamIndicators собирает сработавшие спам-признаки: серии знаков
// препинания и капс-маркеры срочности.
func spamIndicators(message string) []string {
	var indicators []string
	if m := repeatedPunctRe.FindString(message); m != "" {
		indicators = append(indicators, m)
	}
	for _, marker := range spamMarkers {
		if strings.Contains(message, marker) {
			indicators = append(indicators, marker)
		}
	}
	return indicators
}
