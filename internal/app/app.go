package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tokyo должен грузиться и в scratch-образе

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	myErr "vcc-feedback/internal/types/errors"
)

const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Переменные окружения, которые перекрывают значения из YAML
const (
	EnvSecret       = "VCC_SECRET"
	EnvRedisAddr    = "VCC_REDIS_ADDR"
	EnvDBPassword   = "VCC_DB_PASSWORD"
	EnvServerPort   = "VCC_SRV_PORT"
	EnvStorage      = "VCC_STORAGE"
	EnvKafkaBrokers = "VCC_KAFKA_BROKERS"
	EnvTrustProxy   = "VCC_TRUST_PROXY"
)

const (
	defaultServerPort      = ":8080"
	defaultRedisAddr       = "redis:6379"
	defaultSessionDuration = 30 * time.Minute
	defaultListLimit       = 10
	defaultTimezone        = "Asia/Tokyo"
	defaultSubmitRPS       = 0.2
	defaultSubmitBurst     = 5
	defaultKafkaTopic      = "feedback-events"
)

type Config struct {
	CfgDB           ConfigDB      `yaml:"db"`
	CfgRedis        ConfigRedis   `yaml:"redis"`
	CfgKafka        ConfigKafka   `yaml:"kafka"`
	Storage         string        `yaml:"storage"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	Secret          string        `yaml:"secret"`
	ServerPort      string        `yaml:"srv_port"`
	SessionDuration time.Duration `yaml:"session_duration"`
	ListLimit       int           `yaml:"list_limit"`
	Timezone        string        `yaml:"timezone"`
	SubmitRPS       float64       `yaml:"submit_rps"`
	SubmitBurst     int           `yaml:"submit_burst"`

	// TrustProxy - брать IP клиента из X-Forwarded-For, только за своим прокси
	TrustProxy bool `yaml:"trust_proxy"`
}

type ConfigDB struct {
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
	Port     uint   `yaml:"port"`
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
}

type ConfigRedis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ConfigKafka - пустой Brokers выключает события
type ConfigKafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// NewConfig - читает YAML, затем накладывает переменные окружения и дефолты
func NewConfig(configPath string) (*Config, error) {
	cfg, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var c Config
	err = yaml.Unmarshal(cfg, &c)
	if err != nil {
		return nil, err
	}

	c.ApplyEnv()
	c.setDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadDotEnv - подхватывает .env, уже заданные переменные не перезаписываются
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvSecret); v != "" {
		c.Secret = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.CfgRedis.Addr = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.CfgDB.Password = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		c.ServerPort = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage = v
	}
	if v := os.Getenv(EnvKafkaBrokers); v != "" {
		c.CfgKafka.Brokers = splitList(v)
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvTrustProxy)); err == nil {
		c.TrustProxy = v
	}
}

func (c *Config) setDefaults() {
	if c.Storage == "" {
		c.Storage = StorageRedis
	}
	if c.ServerPort == "" {
		c.ServerPort = defaultServerPort
	}
	if c.CfgRedis.Addr == "" {
		c.CfgRedis.Addr = defaultRedisAddr
	}
	if c.SessionDuration <= 0 {
		c.SessionDuration = defaultSessionDuration
	}
	if c.ListLimit <= 0 {
		c.ListLimit = defaultListLimit
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.SubmitRPS <= 0 {
		c.SubmitRPS = defaultSubmitRPS
	}
	if c.SubmitBurst <= 0 {
		c.SubmitBurst = defaultSubmitBurst
	}
	if c.CfgKafka.Topic == "" {
		c.CfgKafka.Topic = defaultKafkaTopic
	}
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageRedis, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("%w: %q", myErr.ErrUnknownStorage, c.Storage)
	}

	if c.Secret == "" {
		return fmt.Errorf("session secret is empty, set %s or secret in config", EnvSecret)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location - часовой пояс, в котором показываются даты
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.CfgDB.Host, c.CfgDB.Port, c.CfgDB.Login, c.CfgDB.Password, c.CfgDB.Database,
	)
}

func (c *Config) KafkaEnabled() bool {
	return len(c.CfgKafka.Brokers) > 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
