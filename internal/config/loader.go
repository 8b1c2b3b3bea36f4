package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/rpattn/grosscalc/internal/db"
)

// Config is the full runtime configuration. EncryptionKey is a hex-encoded
// 32-byte AES key and has no usable default: it must come from config.yaml
// or the GROSSCALC_ENCRYPTION_KEY environment variable.
type Config struct {
	Database      db.Config
	ServerAddr    string
	CORSOrigin    string
	EncryptionKey string
	AskURL        string
	AskTimeout    time.Duration
}

// Load reads config.yaml from configPath, applying defaults and environment
// overrides with the GROSSCALC prefix (GROSSCALC_DATABASE_HOST and so on).
func Load(configPath string) (Config, error) {
	cfg := Config{
		Database:   db.DefaultConfig(),
		ServerAddr: ":8080",
		CORSOrigin: "http://localhost:3000",
		AskURL:     "http://localhost:8100",
		AskTimeout: 30 * time.Second,
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("GROSSCALC")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("server.cors_origin")
	v.BindEnv("encryption_key")
	v.BindEnv("ask.url")
	v.BindEnv("ask.timeout")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.ServerAddr = v.GetString("server.addr")
	}
	if v.IsSet("server.cors_origin") {
		cfg.CORSOrigin = v.GetString("server.cors_origin")
	}
	if v.IsSet("encryption_key") {
		cfg.EncryptionKey = v.GetString("encryption_key")
	}
	if v.IsSet("ask.url") {
		cfg.AskURL = v.GetString("ask.url")
	}
	if v.IsSet("ask.timeout") {
		cfg.AskTimeout = v.GetDuration("ask.timeout")
	}

	if cfg.EncryptionKey == "" {
		return cfg, fmt.Errorf("encryption_key is not configured")
	}

	return cfg, nil
}
