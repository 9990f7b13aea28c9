package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string `validate:"required"`
	} `mapstructure:"app"`

	HTTP struct {
		Addr string `validate:"required"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN string `validate:"required"`
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Rotativo struct {
		CodePrefix    string `mapstructure:"code_prefix"`
		UpdateWorkers int    `mapstructure:"update_workers" validate:"gte=1"`
	} `mapstructure:"rotativo"`

	Dashboard struct {
		PageSize int `mapstructure:"page_size" validate:"gte=1"`
	} `mapstructure:"dashboard"`

	CountSheet struct {
		UserDP01 string `mapstructure:"user_dp01"`
		UserDP40 string `mapstructure:"user_dp40"`
	} `mapstructure:"countsheet"`
}

// Load reads the YAML file at path (if it exists), then applies APP_* env overrides.
// A .env file in the working directory is loaded first and never overrides the real env.
func Load(path string) (Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return c, fmt.Errorf("read config: %w", err)
			}
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return c, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "America/Sao_Paulo")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("rotativo.code_prefix", "rotativo_")
	v.SetDefault("rotativo.update_workers", 8)
	v.SetDefault("dashboard.page_size", 1000)
	v.SetDefault("countsheet.user_dp01", "Usuário DP01")
	v.SetDefault("countsheet.user_dp40", "Usuário DP40")
}

// Location resolves app.timezone; every "today" in the service is computed in it.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}
