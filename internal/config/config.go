// config реализует конфигурацию community-service: загрузка из YAML/ENV
// с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Ops      OpsConfig      `yaml:"ops"`
	DB       DBConfig       `yaml:"db"`
	Cache    CacheConfig    `yaml:"cache"`
	S3       S3Config       `yaml:"s3"`
	Nats     NatsConfig     `yaml:"nats"`
	Auth     AuthConfig     `yaml:"auth"`
	Limits   LimitsConfig   `yaml:"limits"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки публичного HTTP API.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

// OpsConfig — служебный HTTP (health/metrics).
type OpsConfig struct {
	Host string `yaml:"host" env:"OPS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"OPS_PORT" env-default:"50091"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (o OpsConfig) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// DBConfig — настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// CacheConfig — Redis: typing-присутствие и мост realtime-событий.
type CacheConfig struct {
	URL    string `yaml:"url" env:"REDIS_URL" env-required:"true"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"community"`
}

// S3Config — объектное хранилище вложений (MinIO/S3-совместимое).
// Пустой Endpoint выключает presign-поток целиком.
type S3Config struct {
	Endpoint   string        `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey  string        `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey  string        `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket     string        `yaml:"bucket" env:"S3_BUCKET" env-default:"attachments"`
	UseSSL     bool          `yaml:"use_ssl" env:"S3_USE_SSL" env-default:"true"`
	PresignTTL time.Duration `yaml:"presign_ttl" env:"S3_PRESIGN_TTL" env-default:"10m"`
	// Максимальный размер вложения в байтах.
	MaxSizeBytes int64 `yaml:"max_size_bytes" env:"S3_MAX_SIZE_BYTES" env-default:"10485760"`
}

// NatsConfig — события для внешнего сервиса push-уведомлений.
// Пустой URL выключает публикацию.
type NatsConfig struct {
	URL     string `yaml:"url" env:"NATS_URL"`
	Subject string `yaml:"subject" env:"NATS_SUBJECT" env-default:"community.events"`
}

// AuthConfig — проверка bearer-токенов внешнего auth-провайдера.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
}

// LimitsConfig — лимиты контента и отрисовки дерева.
type LimitsConfig struct {
	// Максимальная глубина разворачивания дерева при отдаче (корень = 0).
	MaxRenderDepth int `yaml:"max_render_depth" env:"MAX_RENDER_DEPTH" env-default:"4"`
	// Максимальная длина текста комментария в рунах.
	MaxContentLen int `yaml:"max_content_len" env:"MAX_CONTENT_LEN" env-default:"4000"`
}

// RealtimeConfig — параметры live-подписок и typing-присутствия.
type RealtimeConfig struct {
	// Окно простоя, по истечении которого отметка «печатает» снимается.
	TypingIdle time.Duration `yaml:"typing_idle" env:"TYPING_IDLE" env-default:"3s"`
	// Косметическая длительность подсветки нового комментария на клиенте.
	// Сервис лишь транслирует её в снапшотах, не интерпретирует.
	HighlightTTL time.Duration `yaml:"highlight_ttl" env:"HIGHLIGHT_TTL" env-default:"5s"`
	// Размер буфера исходящих снапшотов на одну подписку.
	SendBuffer int `yaml:"send_buffer" env:"SEND_BUFFER" env-default:"8"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// Кандидаты-файлы в порядке приоритета; обязательность различается:
	// явный путь и CONFIG_PATH должны существовать, local.yaml — опционален.
	candidates := []struct {
		path     string
		required bool
	}{
		{path: path, required: true},
		{path: os.Getenv("CONFIG_PATH"), required: true},
		{path: "local.yaml", required: false},
	}

	for _, c := range candidates {
		if c.path == "" {
			continue
		}

		if _, err := os.Stat(c.path); err != nil {
			if c.required {
				return nil, fmt.Errorf("config file %q stat failed: %w", c.path, err)
			}

			continue
		}

		if err := cleanenv.ReadConfig(c.path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", c.path, err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if c.Cache.URL == "" {
		return fmt.Errorf("cache.url is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Limits.MaxRenderDepth < 1 || c.Limits.MaxRenderDepth > 32 {
		return fmt.Errorf("limits.max_render_depth must be in [1, 32]")
	}

	if c.Limits.MaxContentLen <= 0 {
		return fmt.Errorf("limits.max_content_len must be > 0")
	}

	if c.Realtime.TypingIdle < 250*time.Millisecond {
		return fmt.Errorf("realtime.typing_idle must be at least 250ms")
	}

	if c.Realtime.SendBuffer <= 0 {
		return fmt.Errorf("realtime.send_buffer must be > 0")
	}

	if c.S3.Endpoint != "" {
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required when s3.endpoint is set")
		}

		if c.S3.PresignTTL <= 0 {
			return fmt.Errorf("s3.presign_ttl must be > 0")
		}

		if c.S3.MaxSizeBytes <= 0 {
			return fmt.Errorf("s3.max_size_bytes must be > 0")
		}
	}

	return nil
}
