// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Discord ---
	DiscordToken string `envconfig:"DISCORD_TOKEN" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"dndbot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Часовой пояс ролевого сервера — по нему идёт еженедельная выплата комерциям
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Madrid"`

	// --- Timed actions (работа, кража) ---
	WorkCooldown  time.Duration `envconfig:"WORK_COOLDOWN" default:"72h"`
	StealCooldown time.Duration `envconfig:"STEAL_COOLDOWN" default:"72h"`
	// Диапазон награды за работу: [WORK_REWARD_MIN, WORK_REWARD_MAX]
	WorkRewardMin int64 `envconfig:"WORK_REWARD_MIN" default:"10"`
	WorkRewardMax int64 `envconfig:"WORK_REWARD_MAX" default:"100"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.WorkCooldown <= 0 || c.StealCooldown <= 0 {
		return fmt.Errorf("кулдауны должны быть положительными")
	}
	if c.WorkRewardMin <= 0 || c.WorkRewardMax < c.WorkRewardMin {
		return fmt.Errorf("некорректный диапазон WORK_REWARD_MIN/WORK_REWARD_MAX")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
