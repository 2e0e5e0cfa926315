package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries everything the server needs, read from TRUEVOW_* environment
// variables (optionally seeded from a .env file in development).
type Config struct {
	Addr          string `envconfig:"ADDR" default:":8080"`
	DBPath        string `envconfig:"DB_PATH"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR"`
	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	AdminKey      string `envconfig:"ADMIN_KEY"`
	PromoCodes    string `envconfig:"PROMO_CODES"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	Commit        string `envconfig:"COMMIT"`
	BuildTime     string `envconfig:"BUILD_TIME"`
}

// Load reads the configuration. A missing .env file is not an error; explicit
// environment variables always win over .env contents.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("truevow", &cfg); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}
	return &cfg, nil
}

// PromoCodeMap parses TRUEVOW_PROMO_CODES, a comma-separated list of
// CODE:PERCENT pairs, e.g. "ENGAGED25:25,PASTOR100:100".
func (c *Config) PromoCodeMap() (map[string]int, error) {
	out := map[string]int{}
	if strings.TrimSpace(c.PromoCodes) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(c.PromoCodes, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, pctStr, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("promo code entry %q is not CODE:PERCENT", pair)
		}
		pct, err := strconv.Atoi(strings.TrimSpace(pctStr))
		if err != nil {
			return nil, fmt.Errorf("promo code entry %q has a bad percentage: %w", pair, err)
		}
		out[strings.TrimSpace(code)] = pct
	}
	return out, nil
}
