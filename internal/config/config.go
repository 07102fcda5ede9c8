package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/utils"
)

type Config struct {
	Port           string        `yaml:"port"`
	JWTSecretKey   string        `yaml:"jwt_secret_key"`
	AccessTokenTTL time.Duration `yaml:"-"`
	AvatarDir      string        `yaml:"avatar_dir"`
	AvatarFont     string        `yaml:"avatar_font"`
	CORSOrigins    []string      `yaml:"cors_origins"`

	AccessTokenTTLSeconds int `yaml:"access_token_ttl_seconds"`
}

// Load builds the config from the environment, with an optional YAML file
// (CONFIG_FILE) applied first so env vars always win.
func Load(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:                  "8080",
		JWTSecretKey:          "defaultsecret",
		AccessTokenTTLSeconds: 3600,
		AvatarDir:             "./avatars",
		CORSOrigins:           []string{"http://localhost:3000", "http://localhost:5173"},
	}

	if path := utils.GetEnv("CONFIG_FILE", "", log); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	cfg.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", cfg.JWTSecretKey, log)
	cfg.AccessTokenTTLSeconds = utils.GetEnvAsInt("ACCESS_TOKEN_TTL", cfg.AccessTokenTTLSeconds, log)
	cfg.AvatarDir = utils.GetEnv("AVATAR_DIR", cfg.AvatarDir, log)
	cfg.AvatarFont = utils.GetEnv("AVATAR_FONT", cfg.AvatarFont, log)

	cfg.AccessTokenTTL = time.Duration(cfg.AccessTokenTTLSeconds) * time.Second
	return cfg, nil
}
