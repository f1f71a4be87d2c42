package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Queue     QueueConfig
	Cache     CacheConfig
	Gemini    GeminiConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type QueueConfig struct {
	// UseRedis selects the distributed backend; startup still probes the
	// connection and falls back in-process when Redis is unreachable.
	UseRedis    bool
	Concurrency int
}

type CacheConfig struct {
	TTLHours int
}

type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	NotesPerMin   int
	ExportPerHour int
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("GOOGLE_API_KEY")
	readSecret("JWT_SECRET")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("queue.use_redis", "USE_REDIS_QUEUE")
	_ = viper.BindEnv("queue.concurrency", "QUEUE_CONCURRENCY")
	_ = viper.BindEnv("cache.ttl_hours", "CACHE_TTL_HOURS")
	_ = viper.BindEnv("gemini.api_key", "GOOGLE_API_KEY")
	_ = viper.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	_ = viper.BindEnv("gemini.model", "MODEL_NAME")
	_ = viper.BindEnv("gemini.temperature", "AI_TEMPERATURE")
	_ = viper.BindEnv("gemini.max_tokens", "AI_MAX_TOKENS")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("ratelimit.notes_per_min", "RATELIMIT_NOTES_PER_MIN")
	_ = viper.BindEnv("ratelimit.export_per_hour", "RATELIMIT_EXPORT_PER_HOUR")

	// Defaults
	viper.SetDefault("server.port", "4000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("queue.use_redis", false)
	viper.SetDefault("queue.concurrency", 2)
	viper.SetDefault("cache.ttl_hours", 24)
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.temperature", 0.7)
	viper.SetDefault("gemini.max_tokens", 4000)
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("ratelimit.notes_per_min", 30)
	viper.SetDefault("ratelimit.export_per_hour", 120)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Queue: QueueConfig{
			UseRedis:    viper.GetBool("queue.use_redis"),
			Concurrency: viper.GetInt("queue.concurrency"),
		},
		Cache: CacheConfig{
			TTLHours: viper.GetInt("cache.ttl_hours"),
		},
		Gemini: GeminiConfig{
			APIKey:      viper.GetString("gemini.api_key"),
			BaseURL:     viper.GetString("gemini.base_url"),
			Model:       viper.GetString("gemini.model"),
			Temperature: viper.GetFloat64("gemini.temperature"),
			MaxTokens:   viper.GetInt("gemini.max_tokens"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		RateLimit: RateLimitConfig{
			NotesPerMin:   viper.GetInt("ratelimit.notes_per_min"),
			ExportPerHour: viper.GetInt("ratelimit.export_per_hour"),
		},
	}

	return cfg, nil
}
