package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Values that ship in sample .env files and must never be treated as real
// credentials.
var placeholderSecrets = map[string]struct{}{
	"xxx":            {},
	"your_api_key":   {},
	"your-api-key":   {},
	"please_replace": {},
	"changeme":       {},
}

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	AppEnv      string
	ListenAddr  string
	PostgresURI string
	RedisURI    string
	SentryDSN   string

	SecretKey   string
	CookieName  string
	AdminAPIKey string

	// Pipeline
	PipelineEnabled  bool
	DryRun           bool
	PostSlots        []string
	Timezone         string
	MaxPostsPerCycle int
	ReadyDir         string
	DefaultImage     string

	// Image generation
	ImageSource    string // local, replicate or leonardo
	PromptTemplate string
	ReplicateToken string
	ReplicateModel string
	LeonardoToken  string
	LeonardoModel  string

	// Captions
	CaptionStyle     string
	CaptionModel     string
	CaptionPrompt    string
	CaptionTemplates []string
	OpenAIAPIKey     string
	OpenAIBaseURL    string

	// Platforms
	Platforms          []string
	TwitterAccessToken string
	TwitterSuffix      string
	TelegramBotToken   string
	TelegramChannelID  int64
	TelegramPrefix     string

	R2 R2
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":3000"),
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", ""),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		SecretKey:   getEnv("SECRET_KEY", ""),
		CookieName:  getEnv("COOKIE_NAME", "postpilot_session"),
		AdminAPIKey: getSecret("ADMIN_API_KEY"),

		PipelineEnabled:  getEnvBool("PIPELINE_ENABLED", false),
		DryRun:           getEnvBool("DRY_RUN", false),
		PostSlots:        getEnvList("POST_SLOTS"),
		Timezone:         getEnv("TIMEZONE", "UTC"),
		MaxPostsPerCycle: getEnvInt("MAX_POSTS_PER_CYCLE", 1),
		ReadyDir:         getEnv("READY_DIR", "data/ready_to_post"),
		DefaultImage:     getEnv("DEFAULT_IMAGE", "data/ready_to_post/default_test.png"),

		ImageSource:    strings.ToLower(getEnv("IMAGE_SOURCE", "local")),
		PromptTemplate: getEnv("PROMPT_TEMPLATE", ""),
		ReplicateToken: getSecret("REPLICATE_API_TOKEN"),
		ReplicateModel: getEnv("REPLICATE_MODEL", ""),
		LeonardoToken:  getSecret("LEONARDO_API_TOKEN"),
		LeonardoModel:  getEnv("LEONARDO_MODEL", ""),

		CaptionStyle:     getEnv("CAPTION_STYLE", "default"),
		CaptionModel:     getEnv("CAPTION_MODEL", "gpt-4o-mini"),
		CaptionPrompt:    getEnv("CAPTION_PROMPT", ""),
		CaptionTemplates: getEnvList("CAPTION_TEMPLATES"),
		OpenAIAPIKey:     getSecret("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com"),

		Platforms:          getEnvList("PLATFORMS"),
		TwitterAccessToken: getSecret("TWITTER_ACCESS_TOKEN"),
		TwitterSuffix:      getEnv("TWITTER_SUFFIX", ""),
		TelegramBotToken:   getSecret("TELEGRAM_BOT_TOKEN"),
		TelegramChannelID:  getEnvInt64("TELEGRAM_CHANNEL_ID", 0),
		TelegramPrefix:     getEnv("TELEGRAM_PREFIX", ""),

		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

// CloudImageEnabled reports whether the configured image source requires a
// cloud generation provider.
func (c *Config) CloudImageEnabled() bool {
	return c.ImageSource == "replicate" || c.ImageSource == "leonardo"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getSecret reads an env var and drops well-known placeholder values so a
// sample .env cannot enable a cloud tier with a fake key.
func getSecret(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if _, ok := placeholderSecrets[strings.ToLower(value)]; ok {
		slog.Warn("ignoring placeholder secret", "key", key)
		return ""
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
