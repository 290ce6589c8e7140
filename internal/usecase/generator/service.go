package generator

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"fan-chat-assist/internal/domain"
	"fan-chat-assist/internal/infra/metrics"
	"fan-chat-assist/internal/usecase/compliance"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Service собирает кандидата ответа из шаблонов и прогоняет его через
// комплаенс-проверку. Сервис не хранит состояния между вызовами.
type Service struct {
	table          TemplateTable
	validator      *compliance.Validator
	urgencyEnabled bool
	log            zerolog.Logger
}

// NewService создаёт генератор сообщений.
func NewService(table TemplateTable, validator *compliance.Validator, urgencyEnabled bool, logger zerolog.Logger) *Service {
	return &Service{table: table, validator: validator, urgencyEnabled: urgencyEnabled, log: logger}
}

// Generate выбирает шаблон по (тип личности, стадия), подставляет контекст
// и возвращает сообщение вместе с неизменённым вердиктом комплаенса.
func (s *Service) Generate(profile domain.FanProfile, phase domain.ConversationPhase, contextVars map[string]string, accountSize domain.AccountSize, fanID string) domain.GeneratedMessage {
	tpl, ok := s.table.Lookup(profile.PersonalityType, phase)
	if !ok {
		s.log.Debug().
			Str("personality", string(profile.PersonalityType)).
			Str("phase", string(phase)).
			Msg("generator: нет шаблона для комбинации, используется запасной")
		tpl = s.table.Generic()
	}

	message := renderTemplate(tpl, contextVars)

	// Фраза срочности только добавляет текст, базовое сообщение не трогает.
	if accountSize == domain.AccountLarge && s.urgencyEnabled && s.table.Urgency() != "" {
		message = message + " " + s.table.Urgency()
	}

	verdict := s.validator.Validate(fanID, message)
	metrics.MessagesGenerated.WithLabelValues(string(profile.PersonalityType), string(phase)).Inc()

	return domain.GeneratedMessage{
		Message:            message,
		Compliance:         verdict,
		ManualSendRequired: s.validator.ManualSendRequired(),
	}
}

// renderTemplate подставляет значения контекста. Несопоставленные
// плейсхолдеры удаляются и никогда не утекают в вывод.
func renderTemplate(tpl string, vars map[string]string) string {
	out := placeholderRe.ReplaceAllStringFunc(tpl, func(token string) string {
		name := token[1 : len(token)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		return ""
	})
	return strings.Join(strings.Fields(out), " ")
}
