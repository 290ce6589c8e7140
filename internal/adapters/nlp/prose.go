package nlp

import (
	"strings"

	prose "github.com/jdkato/prose/v2"

	"fan-chat-assist/internal/domain"
)

// ProseExtractor извлекает интересы фаната из текста через prose.
// Это вспомогательная способность: полноценного NLU здесь нет, берутся
// именованные сущности и существительные.
type ProseExtractor struct{}

var _ domain.InterestExtractor = ProseExtractor{}

// Extract возвращает набор интересов без дубликатов.
func (ProseExtractor) Extract(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	interests := make([]string, 0)
	add := func(raw string) {
		v := strings.ToLower(strings.TrimSpace(raw))
		if v == "" || len(v) < 3 {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		interests = append(interests, v)
	}

	for _, ent := range doc.Entities() {
		add(ent.Text)
	}
	for _, tok := range doc.Tokens() {
		if tok.Tag == "NN" || tok.Tag == "NNS" {
			add(tok.Text)
		}
	}
	return interests, nil
}
