// Package config отвечает за:
// - чтение необязательного server.yaml
// - подстановку переменных окружения вида ${MONGO_URI}
// - переопределение настроек переменными окружения
// - проставление дефолтов
// - валидацию (чтобы сервер не стартовал с дырявыми настройками)
//
// Флаги командной строки накладываются поверх в пакете cli.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Окружения сервера.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Драйверы хранилища.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config — корневая структура всего конфига сервера.
type Config struct {
	Env      string         `yaml:"env"` // development|production
	Server   ServerConfig   `yaml:"server"`
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Password PasswordConfig `yaml:"password"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// ServerConfig — настройки HTTP-сервера.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"` // время на graceful shutdown
}

// HTTPConfig — параметры цепочки middleware и маршрутов.
type HTTPConfig struct {
	APIPrefix      string          `yaml:"api_prefix"`
	RequestTimeout time.Duration   `yaml:"request_timeout"`
	QueueDepth     int             `yaml:"queue_depth"`    // сколько запросов может ждать своей очереди
	MaxInFlight    int             `yaml:"max_in_flight"`  // сколько запросов обрабатывается одновременно
	MaxBodyBytes   int64           `yaml:"max_body_bytes"` // лимит размера тела запроса
	Swagger        bool            `yaml:"swagger"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	CORS           CORSConfig      `yaml:"cors"`
}

// RateLimitConfig — глобальный (не по клиенту) rate limit.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// CORSConfig — политика CORS.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// StoreConfig — настройки хранилища пользователей.
type StoreConfig struct {
	Driver         string        `yaml:"driver"` // mongo|postgres
	Mongo          MongoConfig   `yaml:"mongo"`
	PostgresDSN    string        `yaml:"postgres_dsn"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// MongoConfig — подключение к документному хранилищу.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// PasswordConfig — настройки хэширования паролей пользователей.
type PasswordConfig struct {
	Argon2 Argon2Config `yaml:"argon2"`
}

// Argon2Config — параметры argon2id.
type Argon2Config struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
	KeyLen    uint32 `yaml:"key_len"`
	SaltLen   uint32 `yaml:"salt_len"`
}

// LogConfig — настройки логирования (zap).
type LogConfig struct {
	Dir   string `yaml:"dir"`   // куда пишем файлы в production
	Level string `yaml:"level"` // debug|info|warn|error
}

// TracingConfig — OpenTelemetry.
type TracingConfig struct {
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"` // OTLP/gRPC, пусто = без экспорта
}

// Load читает YAML (если path не пустой), подставляет переменные окружения вида ${VAR},
// затем парсит в структуру, применяет переопределения из окружения,
// проставляет дефолты.
//
// Валидация вызывается отдельно, после наложения флагов.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
		}

		// Подставляем переменные окружения в текст YAML:
		// uri: "${MONGO_URI}" -> uri: "реальное_значение"
		raw = []byte(ExpandEnvStrict(string(raw)))

		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("не удалось распарсить yaml: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	ApplyDefaults(&cfg)

	return &cfg, nil
}

var envPlaceholder = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// ExpandEnvStrict заменяет ${VAR} на значение из окружения.
// Если переменная не задана — оставляем ${VAR} как есть,
// а потом Validate() упадёт с понятной ошибкой.
func ExpandEnvStrict(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := envPlaceholder.FindStringSubmatch(m)
		if len(sub) != 2 {
			return m
		}
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		return m
	})
}

// ApplyDefaults — дефолтные значения, если поле не задано.
func ApplyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = EnvDevelopment
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.HTTP.APIPrefix == "" {
		cfg.HTTP.APIPrefix = "/api/v1"
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTP.QueueDepth == 0 {
		cfg.HTTP.QueueDepth = 1024
	}
	if cfg.HTTP.MaxInFlight == 0 {
		cfg.HTTP.MaxInFlight = 64
	}
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 1 << 20
	}
	if cfg.HTTP.RateLimit.RPS == 0 {
		cfg.HTTP.RateLimit.RPS = 5
	}
	if cfg.HTTP.RateLimit.Burst == 0 {
		cfg.HTTP.RateLimit.Burst = 5
	}
	if len(cfg.HTTP.CORS.AllowedOrigins) == 0 {
		cfg.HTTP.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.HTTP.CORS.AllowedMethods) == 0 {
		cfg.HTTP.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "PUT", "PATCH"}
	}
	if len(cfg.HTTP.CORS.AllowedHeaders) == 0 {
		cfg.HTTP.CORS.AllowedHeaders = []string{"Authorization", "Accept", "Content-Type"}
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreMongo
	}
	if cfg.Store.Mongo.URI == "" {
		cfg.Store.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Store.Mongo.Collection == "" {
		cfg.Store.Mongo.Collection = "User"
	}
	if cfg.Store.ConnectTimeout == 0 {
		cfg.Store.ConnectTimeout = 10 * time.Second
	}

	if cfg.Password.Argon2 == (Argon2Config{}) {
		cfg.Password.Argon2 = Argon2Config{
			Time:      3,
			MemoryKiB: 64 * 1024,
			Threads:   2,
			KeyLen:    32,
			SaltLen:   16,
		}
	}

	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "signup-server"
	}
}

// Validate проверяет, что конфиг заполнен корректно.
// Если что-то не так — возвращаем ошибку и сервер НЕ стартует.
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("env должен быть development|production (сейчас %q)", c.Env)
	}

	// Базовая проверка сервера
	if c.Server.Host == "" {
		return errors.New("server.host обязателен")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port некорректен: %d", c.Server.Port)
	}

	// HTTP
	if !strings.HasPrefix(c.HTTP.APIPrefix, "/") {
		return fmt.Errorf("http.api_prefix должен начинаться с / (сейчас %q)", c.HTTP.APIPrefix)
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("http.request_timeout должен быть > 0")
	}
	if c.HTTP.QueueDepth <= 0 || c.HTTP.MaxInFlight <= 0 {
		return errors.New("http.queue_depth и http.max_in_flight должны быть > 0")
	}
	if c.HTTP.RateLimit.RPS <= 0 || c.HTTP.RateLimit.Burst <= 0 {
		return errors.New("http.rate_limit.rps и http.rate_limit.burst должны быть > 0")
	}

	// Хранилище
	switch c.Store.Driver {
	case StoreMongo:
		if err := checkResolved("store.mongo.uri", c.Store.Mongo.URI); err != nil {
			return err
		}
		if c.Store.Mongo.Database == "" {
			return errors.New("store.mongo.database обязателен (MONGO_DB или --mongo-db)")
		}
		if err := checkResolved("store.mongo.database", c.Store.Mongo.Database); err != nil {
			return err
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn обязателен для driver=postgres")
		}
		if err := checkResolved("store.postgres_dsn", c.Store.PostgresDSN); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store.driver должен быть mongo|postgres (сейчас %q)", c.Store.Driver)
	}

	// Хэширование паролей
	a := c.Password.Argon2
	if a.Time == 0 || a.MemoryKiB == 0 || a.Threads == 0 || a.KeyLen == 0 || a.SaltLen == 0 {
		return errors.New("password.argon2 должен быть настроен полностью")
	}

	return nil
}

// Addr — адрес, который слушает сервер.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// checkResolved ловит ${VAR}, который не подставился.
func checkResolved(name, v string) error {
	if strings.Contains(v, "${") && strings.Contains(v, "}") {
		return fmt.Errorf("%s содержит неподставленную переменную: %q", name, v)
	}
	return nil
}

// ApplyEnvOverrides даёт возможность переопределять настройки
// через переменные окружения без ${...} в yaml.
// Например APP_PORT=9090 переопределит server.port.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = strings.ToLower(v)
	}
	if v := os.Getenv("APP_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Store.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DB"); v != "" {
		c.Store.Mongo.Database = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Store.PostgresDSN = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.Log.Dir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Tracing.Endpoint = v
	}
}
