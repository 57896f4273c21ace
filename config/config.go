package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingToken se devuelve cuando falta el token del bot de Telegram.
var ErrMissingToken = errors.New("telegram token is required (telegram.token or TELEGRAM_BOT_TOKEN)")

// Config es la configuración completa del bot.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Journal  JournalConfig  `yaml:"journal"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// TelegramConfig controla la conexión con la Bot API.
type TelegramConfig struct {
	Token              string  `yaml:"token"`
	PollTimeoutSeconds int     `yaml:"poll_timeout_seconds"`
	SendRatePerSec     float64 `yaml:"send_rate_per_sec"` // límite de Telegram: ~30/s por bot
	Debug              bool    `yaml:"debug"`
}

// JournalConfig contiene el catálogo de tickers y opciones de listado.
type JournalConfig struct {
	Tickers     []string `yaml:"tickers"`      // se siembran en la DB al arrancar
	RecentLimit int      `yaml:"recent_limit"` // trades por /trades
}

// DispatchConfig controla el worker pool de eventos.
type DispatchConfig struct {
	Workers int `yaml:"workers"` // 0 = NumCPU*2
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Parse interpreta el YAML y aplica overrides de entorno y defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Validate comprueba lo necesario para correr contra Telegram.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("JOURNAL_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Telegram.PollTimeoutSeconds <= 0 {
		cfg.Telegram.PollTimeoutSeconds = 60
	}
	if cfg.Telegram.SendRatePerSec <= 0 {
		cfg.Telegram.SendRatePerSec = 25
	}
	if cfg.Journal.RecentLimit <= 0 {
		cfg.Journal.RecentLimit = 10
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "journal.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
