// Package config carga la configuración del servicio desde variables de entorno
// (y opcionalmente un archivo .env) usando viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// DevSecret es el secreto inseguro de desarrollo. Solo se usa con
// ALLOW_INSECURE_DEFAULT_SECRET=true.
const DevSecret = "default-secret-change-in-production"

var ErrMissingSecret = errors.New("config: JWT_SECRET is not set (set ALLOW_INSECURE_DEFAULT_SECRET=true to use the development default)")

// Keys (viper las mapea a la env var en mayúsculas).
const (
	keyAppName             = "app_name"
	keyPort                = "port"
	keyReadTimeout         = "http_read_timeout"
	keyWriteTimeout        = "http_write_timeout"
	keyShutdownTimeout     = "http_shutdown_timeout"
	keyDatabaseURL         = "database_url"
	keyDatabaseMaxConns    = "database_max_conns"
	keyJWTSecret           = "jwt_secret"
	keyAllowInsecureSecret = "allow_insecure_default_secret"
	keyLogLevel            = "log_level"
	keyLogFormat           = "log_format"
	keyCORSOrigins         = "cors_allowed_origins"
	keyMetricsEnabled      = "metrics_enabled"
)

type Config struct {
	AppName string

	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	DatabaseURL      string
	DatabaseMaxConns int

	JWTSecret           string
	AllowInsecureSecret bool

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string
	MetricsEnabled     bool
}

// Load lee env vars. Si envFile existe se usa como base (formato dotenv);
// las variables de entorno reales siempre ganan.
func Load(envFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	// AutomaticEnv solo aplica a Get*; BindEnv hace que Unmarshal/IsSet también las vean.
	for _, k := range v.AllKeys() {
		_ = v.BindEnv(k, strings.ToUpper(k))
	}

	if strings.TrimSpace(envFile) != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
			}
		}
	}

	cfg := Config{
		AppName:             strings.TrimSpace(v.GetString(keyAppName)),
		Port:                v.GetInt(keyPort),
		ReadTimeout:         v.GetDuration(keyReadTimeout),
		WriteTimeout:        v.GetDuration(keyWriteTimeout),
		ShutdownTimeout:     v.GetDuration(keyShutdownTimeout),
		DatabaseURL:         strings.TrimSpace(v.GetString(keyDatabaseURL)),
		DatabaseMaxConns:    v.GetInt(keyDatabaseMaxConns),
		JWTSecret:           v.GetString(keyJWTSecret),
		AllowInsecureSecret: v.GetBool(keyAllowInsecureSecret),
		LogLevel:            v.GetString(keyLogLevel),
		LogFormat:           v.GetString(keyLogFormat),
		CORSAllowedOrigins:  splitList(v.GetString(keyCORSOrigins)),
		MetricsEnabled:      v.GetBool(keyMetricsEnabled),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: invalid PORT %d", cfg.Port)
	}
	if cfg.DatabaseMaxConns <= 0 {
		cfg.DatabaseMaxConns = 10
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAppName, "notes-api")
	v.SetDefault(keyPort, 8000)
	v.SetDefault(keyReadTimeout, 5*time.Second)
	v.SetDefault(keyWriteTimeout, 10*time.Second)
	v.SetDefault(keyShutdownTimeout, 10*time.Second)
	v.SetDefault(keyDatabaseURL, "")
	v.SetDefault(keyDatabaseMaxConns, 10)
	v.SetDefault(keyJWTSecret, "")
	v.SetDefault(keyAllowInsecureSecret, false)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyCORSOrigins, "*")
	v.SetDefault(keyMetricsEnabled, true)
}

// SigningSecret resuelve el secreto del verificador.
// insecure=true indica que se usó DevSecret.
func (c Config) SigningSecret() (secret []byte, insecure bool, err error) {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret), false, nil
	}
	if c.AllowInsecureSecret {
		return []byte(DevSecret), true, nil
	}
	return nil, false, ErrMissingSecret
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	items := lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return lo.Compact(items)
}
