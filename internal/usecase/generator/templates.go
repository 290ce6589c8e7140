package generator

import "fan-chat-assist/internal/domain"

// templateKey однозначно задаёт шаблон по типу личности и стадии диалога.
type templateKey struct {
	personality domain.PersonalityType
	phase       domain.ConversationPhase
}

// TemplateTable содержит таблицу шаблонов одной локали. Разрешается один раз при
// старте, по запросу не перечитывается.
type TemplateTable struct {
	templates map[templateKey]string
	generic   string
	urgency   string
}

// Lookup возвращает шаблон для пары (тип личности, стадия).
func (t TemplateTable) Lookup(personality domain.PersonalityType, phase domain.ConversationPhase) (string, bool) {
	tpl, ok := t.templates[templateKey{personality: personality, phase: phase}]
	return tpl, ok
}

// Generic возвращает запасной шаблон для неизвестных комбинаций.
func (t TemplateTable) Generic() string {
	return t.generic
}

// Urgency возвращает добавочную фразу срочности для крупных аккаунтов.
func (t TemplateTable) Urgency() string {
	return t.urgency
}

var tables = map[string]TemplateTable{
	"en": {
		templates: map[templateKey]string{
			{domain.PersonalityEmotional, domain.PhaseIntrigue}:   "Hey {name}... I noticed you stopped by and honestly something told me we'd get along 💕 What's something that made you smile today?",
			{domain.PersonalityEmotional, domain.PhaseRapport}:    "I was just thinking about our chat, {name} 🥰 You said you're into {interest} and I can't stop wondering what else we have in common?",
			{domain.PersonalityEmotional, domain.PhaseAttraction}: "{name}, talking to you has become the warmest part of my day ❤️ I made something special and I think you of all people would feel it the way I do...",
			{domain.PersonalityEmotional, domain.PhaseSubmission}: "You already know how close you are to me, {name} 💞 I saved something just for you, something I wouldn't trust anyone else with...",
			{domain.PersonalityConqueror, domain.PhaseIntrigue}:   "Well well, {name} 😏 Not everyone gets a message from me first. Something about you stood out, so prove me right.",
			{domain.PersonalityConqueror, domain.PhaseRapport}:    "{name}, I like how you carry yourself. Most guys here can't keep up with me, but you're clearly into {interest} and that's a different league.",
			{domain.PersonalityConqueror, domain.PhaseAttraction}: "Top spot on my list is earned, {name}, and you're climbing fast 🔥 I have something exclusive that only winners get to see.",
			{domain.PersonalityConqueror, domain.PhaseSubmission}: "{name}, you've beaten everyone to the front of the line. The best of what I have is reserved for you, if you're still the man I think you are.",
		},
		generic: "Hey {name} 😊 I was hoping to hear from you today. Tell me what's on your mind?",
		urgency: "I only have a few minutes before my inbox explodes again, so catch me while I'm here 😉",
	},
	"ru": {
		templates: map[templateKey]string{
			{domain.PersonalityEmotional, domain.PhaseIntrigue}:   "Привет, {name}... Я заметила, что ты заглянул, и что-то подсказало мне, что мы поладим 💕 Что сегодня заставило тебя улыбнуться?",
			{domain.PersonalityEmotional, domain.PhaseRapport}:    "Я как раз вспоминала наш разговор, {name} 🥰 Ты говорил про {interest}, и мне так интересно, что ещё у нас общего?",
			{domain.PersonalityEmotional, domain.PhaseAttraction}: "{name}, разговоры с тобой стали самой тёплой частью моего дня ❤️ Я приготовила кое-что особенное и уверена, что именно ты это почувствуешь...",
			{domain.PersonalityEmotional, domain.PhaseSubmission}: "Ты же знаешь, насколько ты мне близок, {name} 💞 Я сохранила кое-что только для тебя, такое я больше никому не доверю...",
			{domain.PersonalityConqueror, domain.PhaseIntrigue}:   "Так-так, {name} 😏 Не каждому я пишу первой. В тебе что-то есть, докажи, что я не ошиблась.",
			{domain.PersonalityConqueror, domain.PhaseRapport}:    "{name}, мне нравится, как ты держишься. Большинство здесь за мной не успевает, но ты явно разбираешься в {interest}, а это другой уровень.",
			{domain.PersonalityConqueror, domain.PhaseAttraction}: "Первое место в моём списке нужно заслужить, {name}, и ты быстро поднимаешься 🔥 У меня есть кое-что эксклюзивное только для победителей.",
			{domain.PersonalityConqueror, domain.PhaseSubmission}: "{name}, ты обошёл всех. Лучшее из того, что у меня есть, я придержала для тебя, если ты всё ещё тот, за кого я тебя принимаю.",
		},
		generic: "Привет, {name} 😊 Я надеялась сегодня тебя услышать. Расскажи, что у тебя на уме?",
		urgency: "У меня всего пара минут, пока личка снова не взорвалась, лови момент 😉",
	},
}

// TableForLocale возвращает таблицу шаблонов локали, по умолчанию английскую.
func TableForLocale(locale string) TemplateTable {
	if table, ok := tables[locale]; ok {
		return table
	}
	return tables["en"]
}
