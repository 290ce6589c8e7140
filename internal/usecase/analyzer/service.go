package analyzer

import (
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fan-chat-assist/internal/domain"
	"fan-chat-assist/internal/infra/metrics"
)

// PhaseBreakpoints задаёт границы стадий диалога по числу сообщений.
type PhaseBreakpoints struct {
	IntrigueMax   int
	RapportMax    int
	AttractionMax int
}

// DefaultBreakpoints возвращает границы стадий по умолчанию.
func DefaultBreakpoints() PhaseBreakpoints {
	return PhaseBreakpoints{IntrigueMax: 2, RapportMax: 5, AttractionMax: 10}
}

// Service реализует классификацию фанатов по истории сообщений.
// Сервис не хранит состояния между вызовами и безопасен для конкурентного использования.
type Service struct {
	lexicon     Lexicon
	breakpoints PhaseBreakpoints
	extractor   domain.InterestExtractor
	log         zerolog.Logger
}

// NewService создаёт анализатор. extractor может быть nil: извлечение
// интересов тогда деградирует до пустого набора.
func NewService(lexicon Lexicon, breakpoints PhaseBreakpoints, extractor domain.InterestExtractor, logger zerolog.Logger) *Service {
	return &Service{lexicon: lexicon, breakpoints: breakpoints, extractor: extractor, log: logger}
}

// AnalyzePersonality классифицирует фаната по всей истории сообщений.
// Профиль заполняется всегда, даже на пустом входе.
func (s *Service) AnalyzePersonality(fanID string, messages []domain.Message) domain.FanProfile {
	started := time.Now()
	blob := foldMessages(messages)

	emotional := countKeywordHits(blob, s.lexicon.Emotional)
	conqueror := countKeywordHits(blob, s.lexicon.Conqueror)

	// При равных счетах, включая нулевые, побеждает emotional.
	personality := domain.PersonalityConqueror
	if emotional >= conqueror {
		personality = domain.PersonalityEmotional
	}

	total := emotional + conqueror
	if total < 1 {
		total = 1
	}
	confidence := math.Abs(float64(emotional-conqueror)) / float64(total)
	if confidence > 1 {
		confidence = 1
	}

	profile := domain.FanProfile{
		FanID:           fanID,
		PersonalityType: personality,
		Confidence:      confidence,
		Sentiment:       scoreSentiment(blob),
		EngagementLevel: s.engagementLevel(blob),
		AnalyzedAt:      time.Now().UTC(),
	}

	metrics.AnalyzeRequestsTotal.Inc()
	metrics.AnalyzeDurationSeconds.Observe(time.Since(started).Seconds())
	metrics.IncPersonality(string(personality))
	return profile
}

// AnalyzePhase определяет стадию диалога по числу сообщений.
// Временные метки сообщений принимаются, но сейчас не учитываются.
func (s *Service) AnalyzePhase(messages []domain.Message) domain.ConversationPhase {
	n := len(messages)
	switch {
	case n <= s.breakpoints.IntrigueMax:
		return domain.PhaseIntrigue
	case n <= s.breakpoints.RapportMax:
		return domain.PhaseRapport
	case n <= s.breakpoints.AttractionMax:
		return domain.PhaseAttraction
	}
	return domain.PhaseSubmission
}

// EstimateSpendingPotential оценивает покупательский потенциал по
// фиксированному набору паттернов.
func (s *Service) EstimateSpendingPotential(messages []domain.Message) domain.SpendingEstimate {
	blob := foldMessages(messages)

	counts := make(map[domain.SpendingTier]int, len(spendingOrder))
	found := make(map[domain.SpendingTier][]string, len(spendingOrder))
	total := 0
	for _, tier := range spendingOrder {
		for _, re := range spendingPatterns[tier] {
			matches := re.FindAllString(blob, -1)
			if len(matches) == 0 {
				continue
			}
			counts[tier] += len(matches)
			total += len(matches)
			found[tier] = append(found[tier], matches...)
		}
	}

	// Порядок фиксирован: при равных счетах побеждает первый уровень.
	potential := domain.SpendingLow
	best := 0
	for _, tier := range spendingOrder {
		if counts[tier] > best {
			potential = tier
			best = counts[tier]
		}
	}

	confidence := 0.0
	if total > 0 {
		confidence = float64(counts[potential]) / float64(total)
	}

	return domain.SpendingEstimate{
		Potential:       potential,
		Confidence:      confidence,
		IndicatorsFound: found[potential],
	}
}

// ExtractInterests извлекает интересы фаната. Без NLP-бэкенда возвращает
// пустой набор, сбой бэкенда также деградирует до пустого набора.
func (s *Service) ExtractInterests(messages []domain.Message) []string {
	if s.extractor == nil {
		return []string{}
	}
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		texts = append(texts, m.Text)
	}
	interests, err := s.extractor.Extract(strings.Join(texts, " "))
	if err != nil {
		s.log.Debug().Err(err).Msg("analyzer: извлечение интересов недоступно")
		return []string{}
	}
	if interests == nil {
		return []string{}
	}
	return interests
}

func (s *Service) engagementLevel(blob string) domain.EngagementLevel {
	level := domain.EngagementMedium
	best := 0
	for _, tier := range engagementOrder {
		if c := countKeywordHits(blob, s.lexicon.Engagement[tier]); c > best {
			level = tier
			best = c
		}
	}
	return level
}

// foldMessages склеивает историю в один приведённый к нижнему регистру блок.
func foldMessages(messages []domain.Message) string {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		texts = append(texts, m.Text)
	}
	return strings.ToLower(strings.Join(texts, " "))
}

// countKeywordHits считает различные ключевые слова, встретившиеся как подстрока.
func countKeywordHits(blob string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(blob, kw) {
			hits++
		}
	}
	return hits
}
