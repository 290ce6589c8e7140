package analyzer

import (
	"regexp"

	"fan-chat-assist/internal/domain"
)

// DefaultLocale задаёт базовую локаль: её словари всегда участвуют в скоринге.
const DefaultLocale = "en"

// Lexicon содержит словари ключевых слов одной локали.
type Lexicon struct {
	Emotional  []string
	Conqueror  []string
	Engagement map[domain.EngagementLevel][]string
}

// engagementOrder фиксирует порядок разрешения ничьих: первый максимальный уровень побеждает.
var engagementOrder = []domain.EngagementLevel{
	domain.EngagementHigh,
	domain.EngagementMedium,
	domain.EngagementLow,
}

// spendingOrder фиксирует порядок разрешения ничьих для покупательского потенциала.
var spendingOrder = []domain.SpendingTier{
	domain.SpendingHigh,
	domain.SpendingMedium,
	domain.SpendingLow,
}

// spendingPatterns задаёт фиксированный набор регулярных выражений по уровням трат.
var spendingPatterns = map[domain.SpendingTier][]*regexp.Regexp{
	domain.SpendingHigh: {
		regexp.MustCompile(`\$\s?\d{3,}`),
		regexp.MustCompile(`money is no object`),
		regexp.MustCompile(`spoil you`),
		regexp.MustCompile(`buy (?:you )?anything`),
		regexp.MustCompile(`whatever it costs`),
		regexp.MustCompile(`\bvip\b`),
	},
	domain.SpendingMedium: {
		regexp.MustCompile(`\$\s?\d{1,2}(?:\D|$)`),
		regexp.MustCompile(`\btip(?:ped|ping)?\b`),
		regexp.MustCompile(`\bunlock\b`),
		regexp.MustCompile(`\bbuy\b`),
		regexp.MustCompile(`\bpurchase\b`),
		regexp.MustCompile(`\bsubscri(?:be|ption)\b`),
	},
	domain.SpendingLow: {
		regexp.MustCompile(`can'?t afford`),
		regexp.MustCompile(`too expensive`),
		regexp.MustCompile(`\bbroke\b`),
		regexp.MustCompile(`\bfor free\b`),
		regexp.MustCompile(`\bdiscount\b`),
		regexp.MustCompile(`\bcheap(?:er)?\b`),
	},
}

var lexicons = map[string]Lexicon{
	"en": {
		Emotional: []string{
			"love", "miss", "feel", "lonely", "heart", "care", "sweet",
			"beautiful", "dream", "close", "connection", "hug", "soul",
		},
		Conqueror: []string{
			"win", "best", "money", "boss", "power", "deal", "success",
			"compete", "top", "control", "respect", "champion", "hustle",
		},
		Engagement: map[domain.EngagementLevel][]string{
			domain.EngagementHigh: {
				"can't wait", "amazing", "always", "every day", "favorite",
				"obsessed", "need more", "thinking about you",
			},
			domain.EngagementMedium: {
				"nice", "cool", "good", "thanks", "maybe", "sometimes",
			},
			domain.EngagementLow: {
				"busy", "later", "whatever", "bye", "not interested",
			},
		},
	},
	"ru": {
		Emotional: []string{
			"люблю", "скучаю", "чувству", "одинок", "сердце", "нежн",
			"красив", "мечта", "душ", "обнял",
		},
		Conqueror: []string{
			"побед", "лучший", "деньги", "босс", "власть", "сделк",
			"успех", "контрол", "уважен", "чемпион",
		},
		Engagement: map[domain.EngagementLevel][]string{
			domain.EngagementHigh: {
				"не могу дождаться", "обожаю", "каждый день", "любим",
				"постоянно думаю",
			},
			domain.EngagementMedium: {
				"норм", "хорошо", "спасибо", "может быть", "иногда",
			},
			domain.EngagementLow: {
				"занят", "потом", "неважно", "пока", "неинтересно",
			},
		},
	},
}

// LexiconForLocale возвращает словарь локали, слитый с базовой локалью.
// Базовые ключевые слова участвуют всегда, это расширяет полноту для
// смешанных диалогов.
func LexiconForLocale(locale string) Lexicon {
	base := lexicons[DefaultLocale]
	if locale == "" || locale == DefaultLocale {
		return base
	}
	extra, ok := lexicons[locale]
	if !ok {
		return base
	}
	merged := Lexicon{
		Emotional:  mergeKeywords(base.Emotional, extra.Emotional),
		Conqueror:  mergeKeywords(base.Conqueror, extra.Conqueror),
		Engagement: make(map[domain.EngagementLevel][]string, len(engagementOrder)),
	}
	for _, tier := range engagementOrder {
		merged.Engagement[tier] = mergeKeywords(base.Engagement[tier], extra.Engagement[tier])
	}
	return merged
}

func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, kw := range list {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}
