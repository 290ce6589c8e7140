package generator

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"fan-chat-assist/internal/domain"
	"fan-chat-assist/internal/usecase/compliance"
)

func newTestService(urgency bool) *Service {
	validator := compliance.NewValidator(1500, 10, true, false)
	return NewService(TableForLocale("en"), validator, urgency, zerolog.Nop())
}

func emotionalProfile() domain.FanProfile {
	return domain.FanProfile{FanID: "fan1", PersonalityType: domain.PersonalityEmotional}
}

func TestGenerateSubstitutesContext(t *testing.T) {
	s := newTestService(false)
	res := s.Generate(emotionalProfile(), domain.PhaseIntrigue, map[string]string{"name": "Alex"}, domain.AccountSmall, "fan1")
	if !strings.Contains(res.Message, "Alex") {
		t.Fatalf("ожидали подстановку имени, получили %q", res.Message)
	}
	if strings.Contains(res.Message, "{name}") {
		t.Fatalf("плейсхолдер утёк в вывод: %q", res.Message)
	}
}

func TestGenerateRemovesUnmatchedPlaceholders(t *testing.T) {
	s := newTestService(false)
	res := s.Generate(emotionalProfile(), domain.PhaseRapport, nil, domain.AccountSmall, "fan1")
	if strings.ContainsAny(res.Message, "{}") {
		t.Fatalf("несопоставленный плейсхолдер утёк в вывод: %q", res.Message)
	}
}

func TestGenerateFallsBackToGeneric(t *testing.T) {
	s := newTestService(false)
	res := s.Generate(emotionalProfile(), domain.ConversationPhase("unknown"), nil, domain.AccountSmall, "fan1")
	if res.Message == "" {
		t.Fatal("запасной шаблон не должен быть пустым")
	}
	if !strings.Contains(res.Message, "hoping to hear from you") {
		t.Fatalf("ожидали запасной шаблон, получили %q", res.Message)
	}
}

func TestGenerateUrgencyOnlyAppends(t *testing.T) {
	small := newTestService(true).Generate(emotionalProfile(), domain.PhaseIntrigue, nil, domain.AccountSmall, "fan1")
	large := newTestService(true).Generate(emotionalProfile(), domain.PhaseIntrigue, nil, domain.AccountLarge, "fan1")
	if !strings.HasPrefix(large.Message, small.Message) {
		t.Fatalf("фраза срочности должна только добавляться: %q vs %q", small.Message, large.Message)
	}
	if len(large.Message) <= len(small.Message) {
		t.Fatal("для крупного аккаунта ожидали добавочную фразу")
	}
}

func TestGenerateEmbedsComplianceVerdict(t *testing.T) {
	s := newTestService(false)
	res := s.Generate(emotionalProfile(), domain.PhaseIntrigue, nil, domain.AccountSmall, "fan1")
	if !res.Compliance.Compliant {
		t.Fatalf("шаблонное сообщение должно проходить комплаенс: %+v", res.Compliance.Warnings)
	}
	if !res.ManualSendRequired {
		t.Fatal("manual_send_required должен отражать настройку платформы")
	}
	foundManualSend := false
	for _, r := range res.Compliance.Requirements {
		if r.Type == compliance.RequirementManualSend {
			foundManualSend = true
		}
	}
	if !foundManualSend {
		t.Fatal("ожидали требование manual_send в вердикте")
	}
}

func TestRenderTemplateEmptyContext(t *testing.T) {
	out := renderTemplate("hello {name} how are you", map[string]string{})
	if out != "hello how are you" {
		t.Fatalf("ожидали %q, получили %q", "hello how are you", out)
	}
}
