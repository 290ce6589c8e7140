package analyzer

import (
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"

	"fan-chat-assist/internal/domain"
)

// neutralSentiment возвращает значения по умолчанию при пустом тексте или сбое оценщика.
func neutralSentiment() domain.Sentiment {
	return domain.Sentiment{Polarity: 0, Subjectivity: 0.5, Mood: domain.MoodNeutral}
}

// scoreSentiment оценивает полярность и субъективность текста.
// Сбой оценщика деградирует до нейтральных значений, а не ошибки.
func scoreSentiment(text string) (s domain.Sentiment) {
	s = neutralSentiment()
	if strings.TrimSpace(text) == "" {
		return s
	}
	defer func() {
		if r := recover(); r != nil {
			s = neutralSentiment()
		}
	}()
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	score := sentitext.PolarityScore(parsed)
	s.Polarity = clamp(score.Compound, -1, 1)
	s.Subjectivity = clamp(score.Positive+score.Negative, 0, 1)
	s.Mood = moodFor(s.Polarity)
	return s
}

// moodFor раскладывает полярность по корзинам на порогах ±0.1 и ±0.5.
func moodFor(polarity float64) domain.Mood {
	switch {
	case polarity > 0.5:
		return domain.MoodVeryPositive
	case polarity > 0.1:
		return domain.MoodPositive
	case polarity < -0.5:
		return domain.MoodVeryNegative
	case polarity < -0.1:
		return domain.MoodNegative
	}
	return domain.MoodNeutral
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
