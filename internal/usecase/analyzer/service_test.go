package analyzer

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"fan-chat-assist/internal/domain"
)

func newTestService() *Service {
	return NewService(LexiconForLocale("en"), DefaultBreakpoints(), nil, zerolog.Nop())
}

func makeMessages(texts ...string) []domain.Message {
	messages := make([]domain.Message, 0, len(texts))
	for _, t := range texts {
		messages = append(messages, domain.Message{FanID: "fan1", Text: t})
	}
	return messages
}

func TestAnalyzePersonalityEmotional(t *testing.T) {
	s := newTestService()
	profile := s.AnalyzePersonality("fan1", makeMessages(
		"i love talking to you",
		"i miss you so much",
		"you have my heart",
	))
	if profile.PersonalityType != domain.PersonalityEmotional {
		t.Fatalf("ожидали emotional, получили %s", profile.PersonalityType)
	}
	if profile.Confidence <= 0 || profile.Confidence > 1 {
		t.Fatalf("confidence вне (0,1]: %f", profile.Confidence)
	}
}

func TestAnalyzePersonalityConqueror(t *testing.T) {
	s := newTestService()
	profile := s.AnalyzePersonality("fan1", makeMessages(
		"i always win",
		"money and power are everything",
		"i'm the boss of my own success",
	))
	if profile.PersonalityType != domain.PersonalityConqueror {
		t.Fatalf("ожидали conqueror, получили %s", profile.PersonalityType)
	}
}

func TestAnalyzePersonalityTieGoesToEmotional(t *testing.T) {
	s := newTestService()
	// Нулевые счёты с обеих сторон: равенство разрешается в пользу emotional.
	profile := s.AnalyzePersonality("fan1", makeMessages("zzz", "qqq"))
	if profile.PersonalityType != domain.PersonalityEmotional {
		t.Fatalf("ожидали emotional при равенстве, получили %s", profile.PersonalityType)
	}
	if profile.Confidence != 0 {
		t.Fatalf("ожидали confidence 0, получили %f", profile.Confidence)
	}
}

func TestAnalyzePersonalityEmptyInputDefaults(t *testing.T) {
	s := newTestService()
	profile := s.AnalyzePersonality("fan1", nil)
	if profile.PersonalityType == "" {
		t.Fatal("тип личности должен быть задан даже на пустом входе")
	}
	if profile.EngagementLevel != domain.EngagementMedium {
		t.Fatalf("ожидали medium по умолчанию, получили %s", profile.EngagementLevel)
	}
	if profile.Sentiment.Mood != domain.MoodNeutral {
		t.Fatalf("ожидали neutral, получили %s", profile.Sentiment.Mood)
	}
	if profile.Sentiment.Subjectivity != 0.5 {
		t.Fatalf("ожидали subjectivity 0.5, получили %f", profile.Sentiment.Subjectivity)
	}
}

func TestAnalyzePhaseBoundaries(t *testing.T) {
	s := newTestService()
	cases := map[int]domain.ConversationPhase{
		0:  domain.PhaseIntrigue,
		2:  domain.PhaseIntrigue,
		3:  domain.PhaseRapport,
		5:  domain.PhaseRapport,
		6:  domain.PhaseAttraction,
		10: domain.PhaseAttraction,
		11: domain.PhaseSubmission,
	}
	for count, expected := range cases {
		messages := make([]domain.Message, count)
		if got := s.AnalyzePhase(messages); got != expected {
			t.Fatalf("для %d сообщений ожидали %s, получили %s", count, expected, got)
		}
	}
}

func TestAnalyzePhaseMonotonic(t *testing.T) {
	s := newTestService()
	prev := -1
	for n := 0; n <= 15; n++ {
		rank := domain.PhaseRank(s.AnalyzePhase(make([]domain.Message, n)))
		if rank < prev {
			t.Fatalf("стадия регрессировала на %d сообщениях", n)
		}
		prev = rank
	}
}

func TestEngagementLevels(t *testing.T) {
	s := newTestService()
	cases := []struct {
		text     string
		expected domain.EngagementLevel
	}{
		{"this is amazing, i can't wait, you are my favorite", domain.EngagementHigh},
		{"busy now, talk later, whatever", domain.EngagementLow},
		{"zzz qqq", domain.EngagementMedium},
	}
	for _, tc := range cases {
		profile := s.AnalyzePersonality("fan1", makeMessages(tc.text))
		if profile.EngagementLevel != tc.expected {
			t.Fatalf("для %q ожидали %s, получили %s", tc.text, tc.expected, profile.EngagementLevel)
		}
	}
}

func TestEngagementTieFavorsHigherTier(t *testing.T) {
	s := newTestService()
	// По одному попаданию в high и medium: побеждает первый уровень в порядке приоритета.
	profile := s.AnalyzePersonality("fan1", makeMessages("amazing and nice"))
	if profile.EngagementLevel != domain.EngagementHigh {
		t.Fatalf("ожидали high при ничьей, получили %s", profile.EngagementLevel)
	}
}

func TestEstimateSpendingPotentialHigh(t *testing.T) {
	s := newTestService()
	est := s.EstimateSpendingPotential(makeMessages(
		"i want to spoil you, money is no object",
		"i just dropped $500 on a gift",
	))
	if est.Potential != domain.SpendingHigh {
		t.Fatalf("ожидали high_spender, получили %s", est.Potential)
	}
	if est.Confidence <= 0 || est.Confidence > 1 {
		t.Fatalf("confidence вне (0,1]: %f", est.Confidence)
	}
	if len(est.IndicatorsFound) == 0 {
		t.Fatal("ожидали непустой список индикаторов")
	}
}

func TestEstimateSpendingPotentialNoSignal(t *testing.T) {
	s := newTestService()
	est := s.EstimateSpendingPotential(makeMessages("hello there"))
	if est.Confidence != 0 {
		t.Fatalf("ожидали confidence 0, получили %f", est.Confidence)
	}
	if len(est.IndicatorsFound) != 0 {
		t.Fatalf("ожидали пустой список индикаторов, получили %v", est.IndicatorsFound)
	}
}

func TestExtractInterestsWithoutBackend(t *testing.T) {
	s := newTestService()
	interests := s.ExtractInterests(makeMessages("i like fishing and football"))
	if interests == nil {
		t.Fatal("ожидали пустой набор, а не nil")
	}
	if len(interests) != 0 {
		t.Fatalf("без NLP-бэкенда ожидали пустой набор, получили %v", interests)
	}
}

func TestLexiconMergeKeepsBaseline(t *testing.T) {
	lex := LexiconForLocale("ru")
	base := LexiconForLocale("en")
	for _, kw := range base.Emotional {
		found := false
		for _, merged := range lex.Emotional {
			if merged == kw {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("базовое слово %q потеряно при слиянии", kw)
		}
	}
}

func TestMoodBuckets(t *testing.T) {
	cases := []struct {
		polarity float64
		expected domain.Mood
	}{
		{0.8, domain.MoodVeryPositive},
		{0.3, domain.MoodPositive},
		{0.0, domain.MoodNeutral},
		{-0.3, domain.MoodNegative},
		{-0.8, domain.MoodVeryNegative},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%0.1f", tc.polarity), func(t *testing.T) {
			if got := moodFor(tc.polarity); got != tc.expected {
				t.Fatalf("для %f ожидали %s, получили %s", tc.polarity, tc.expected, got)
			}
		})
	}
}
