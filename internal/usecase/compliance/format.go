package compliance

import (
	"strings"

	"fan-chat-assist/internal/domain"
)

// FormatForReview готовит блок, который оператор просматривает перед
// ручной отправкой: исходное сообщение, статус комплаенса и требования.
func FormatForReview(fanID, message string, verdict domain.ComplianceVerdict) string {
	var b strings.Builder

	b.WriteString("=== СООБЩЕНИЕ ДЛЯ РУЧНОЙ ОТПРАВКИ ===\n")
	b.WriteString("Фанат: " + fanID + "\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	b.WriteString(message + "\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")

	if verdict.Compliant {
		b.WriteString("Комплаенс: PASSED\n")
	} else {
		b.WriteString("Комплаенс: FAILED\n")
	}
	for _, w := range verdict.Warnings {
		b.WriteString("  [" + string(w.Severity) + "] " + w.Type + ": " + w.Detail + "\n")
	}

	b.WriteString("REQUIREMENTS:\n")
	for _, r := range verdict.Requirements {
		b.WriteString("  - " + r.Type + ": " + r.Detail + "\n")
	}

	return b.String()
}
