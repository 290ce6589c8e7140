package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`
	Locale string `envconfig:"LOCALE" default:"en"`

	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`
	AMQPURL   string `envconfig:"AMQP_URL"`

	Phases struct {
		IntrigueMax   int `envconfig:"PHASE_INTRIGUE_MAX" default:"2"`
		RapportMax    int `envconfig:"PHASE_RAPPORT_MAX" default:"5"`
		AttractionMax int `envconfig:"PHASE_ATTRACTION_MAX" default:"10"`
	} `envconfig:""`

	Compliance struct {
		MaxMessageLength   int  `envconfig:"COMPLIANCE_MAX_MESSAGE_LENGTH" default:"1500"`
		EmojiThreshold     int  `envconfig:"COMPLIANCE_EMOJI_THRESHOLD" default:"10"`
		ManualSendRequired bool `envconfig:"MANUAL_SEND_REQUIRED" default:"true"`
		AIDisclosure       bool `envconfig:"AI_DISCLOSURE" default:"false"`
	} `envconfig:""`

	Generator struct {
		UrgencyEnabled bool `envconfig:"GENERATOR_URGENCY_ENABLED" default:"true"`
	} `envconfig:""`

	Send struct {
		ChatURLBase string `envconfig:"OF_CHAT_URL_BASE" default:"https://onlyfans.com/my/chats/chat"`
	} `envconfig:""`

	Queues struct {
		AuditEvents string `envconfig:"AUDIT_EVENTS_QUEUE" default:"audit_events"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
