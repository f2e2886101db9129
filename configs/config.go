package configs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "LEMON_"
	envConfigPath = "LEMON_CONFIG"
	defaultPath   = "configs/base.yaml"
)

type Config struct {
	App struct {
		Name     string   `koanf:"name"`
		Port     string   `koanf:"port"`
		LogLevel string   `koanf:"log_level"`
		LogFile  string   `koanf:"log_file"`
		Origins  []string `koanf:"cors_origins"`
	} `koanf:"app"`

	DB struct {
		Driver string `koanf:"driver"` // sqlite | postgres
		Source string `koanf:"source"`
	} `koanf:"db"`

	JWT struct {
		Secret string        `koanf:"secret"`
		TTL    time.Duration `koanf:"ttl"`
	} `koanf:"jwt"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	RateLimit struct {
		Anon   int           `koanf:"anon"`
		User   int           `koanf:"user"`
		Window time.Duration `koanf:"window"`
	} `koanf:"ratelimit"`

	Rabbit struct {
		URL      string `koanf:"url"`
		Exchange string `koanf:"exchange"`
	} `koanf:"rabbitmq"`

	Admin struct {
		Username string `koanf:"username"`
		Password string `koanf:"password"`
		Email    string `koanf:"email"`
	} `koanf:"admin"`
}

var defaults = map[string]any{
	"app.name":          "littlelemon",
	"app.port":          "8000",
	"app.log_level":     "info",
	"db.driver":         "sqlite",
	"db.source":         "littlelemon.db",
	"jwt.secret":        "changeme",
	"jwt.ttl":           "24h",
	"ratelimit.anon":    60,
	"ratelimit.user":    300,
	"ratelimit.window":  "1m",
	"rabbitmq.exchange": "littlelemon.orders",
}

// LoadConfig layers defaults, an optional YAML file and LEMON_* environment
// variables (nested with "__", e.g. LEMON_DB__DRIVER). A .env file is loaded
// into the environment first when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	path := defaultPath
	if v, ok := os.LookupEnv(envConfigPath); ok && v != "" {
		path = v
	}
	return Load(path)
}

func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("app.port required")
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver must be sqlite or postgres, got %q", c.DB.Driver)
	}
	if c.DB.Source == "" {
		return fmt.Errorf("db.source required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit.window must be positive")
	}
	return nil
}
