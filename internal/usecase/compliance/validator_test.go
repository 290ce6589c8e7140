package compliance

import (
	"reflect"
	"strings"
	"testing"

	"fan-chat-assist/internal/domain"
)

func newTestValidator() *Validator {
	return NewValidator(1500, 10, true, false)
}

func findWarning(verdict domain.ComplianceVerdict, warningType string) (domain.ComplianceWarning, bool) {
	for _, w := range verdict.Warnings {
		if w.Type == warningType {
			return w, true
		}
	}
	return domain.ComplianceWarning{}, false
}

func TestValidateAutomatedLanguageIsCritical(t *testing.T) {
	v := newTestValidator()
	verdict := v.Validate("fan1", "This message was automatically generated for you")
	if verdict.Compliant {
		t.Fatal("маркер машинной генерации должен валить комплаенс")
	}
	w, ok := findWarning(verdict, WarningAutomatedLanguage)
	if !ok {
		t.Fatal("ожидали предупреждение automated_language")
	}
	if w.Severity != domain.SeverityCritical {
		t.Fatalf("ожидали critical, получили %s", w.Severity)
	}
}

func TestValidateLongMessageStaysCompliant(t *testing.T) {
	v := newTestValidator()
	verdict := v.Validate("fan1", strings.Repeat("a", 2000))
	w, ok := findWarning(verdict, WarningMessageLength)
	if !ok {
		t.Fatal("ожидали предупреждение message_length")
	}
	if w.Severity != domain.SeverityWarning {
		t.Fatalf("длина не должна быть critical: %s", w.Severity)
	}
	if !verdict.Compliant {
		t.Fatal("без critical-предупреждений вердикт остаётся compliant")
	}
}

func TestValidateSpamIndicators(t *testing.T) {
	v := newTestValidator()
	verdict := v.Validate("fan1", "URGENT!!! ACT NOW or miss out")
	w, ok := findWarning(verdict, WarningSpamIndicators)
	if !ok {
		t.Fatal("ожидали предупреждение spam_indicators")
	}
	if w.Severity != domain.SeverityWarning {
		t.Fatalf("спам не должен быть critical: %s", w.Severity)
	}
	if !verdict.Compliant {
		t.Fatal("спам-маркеры не должны валить комплаенс")
	}
}

func TestValidateExcessiveEmojis(t *testing.T) {
	v := newTestValidator()
	verdict := v.Validate("fan1", strings.Repeat("😍", 11))
	if _, ok := findWarning(verdict, WarningExcessiveEmojis); !ok {
		t.Fatal("ожидали предупреждение excessive_emojis")
	}

	verdict = v.Validate("fan1", strings.Repeat("😍", 10))
	if _, ok := findWarning(verdict, WarningExcessiveEmojis); ok {
		t.Fatal("порог не превышен, предупреждения быть не должно")
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	v := newTestValidator()
	message := "Hey you! URGENT!!! This was automatically generated 😍😍"
	first := v.Validate("fan1", message)
	second := v.Validate("fan1", message)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("повторная проверка дала другой вердикт: %+v vs %+v", first, second)
	}
}

func TestValidateManualSendRequirement(t *testing.T) {
	v := newTestValidator()
	verdict := v.Validate("fan1", "hello")
	found := false
	for _, r := range verdict.Requirements {
		if r.Type == RequirementManualSend {
			found = true
		}
	}
	if !found {
		t.Fatal("требование manual_send должно присутствовать независимо от текста")
	}

	relaxed := NewValidator(1500, 10, false, false)
	verdict = relaxed.Validate("fan1", "hello")
	for _, r := range verdict.Requirements {
		if r.Type == RequirementManualSend {
			t.Fatal("требование manual_send не ожидалось при выключенной настройке")
		}
	}
}

func TestValidateCleanMessage(t *testing.T) {
	v := newTestValidator()
	verdict := v.Validate("fan1", "Hey, how was your day?")
	if !verdict.Compliant {
		t.Fatalf("чистое сообщение должно проходить: %+v", verdict.Warnings)
	}
	if len(verdict.Warnings) != 0 {
		t.Fatalf("не ожидали предупреждений: %+v", verdict.Warnings)
	}
}

func TestFormatForReview(t *testing.T) {
	v := newTestValidator()
	verdict := v.Validate("fan1", "hello there")
	block := FormatForReview("fan1", "hello there", verdict)
	if !strings.Contains(block, "hello there") {
		t.Fatal("блок должен содержать исходное сообщение")
	}
	if !strings.Contains(block, "PASSED") {
		t.Fatal("блок должен содержать статус комплаенса")
	}
	if !strings.Contains(block, "REQUIREMENTS:") {
		t.Fatal("блок должен содержать секцию требований")
	}
	if !strings.Contains(block, RequirementManualSend) {
		t.Fatal("блок должен перечислять требование manual_send")
	}
}
