package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configは開発用APIサーバーの設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL string // 空ならインメモリ

	JWTSecret string // JWT署名シークレット

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	GoEnv    string // dev/prod
	SeedDemo bool   // デモデータ投入
	LogLevel string
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 14 * 24 * time.Hour,
		BcryptCost:      12,
		GoEnv:           getenv("GO_ENV", "dev"),
		SeedDemo:        envBool("SEED_DEMO", true),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}

	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL must be duration: %w", err)
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("BCRYPT_COST must be number: %w", err)
		}
		cfg.BcryptCost = n
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		if cfg.GoEnv != "dev" {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = "dev_secret_change_me"
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be number: %w", err)
	}

	return cfg, nil
}

// Addr は ":8080" 形式
func (c Config) Addr() string {
	return ":" + c.Port
}

// ClientConfigはストアフロント（クライアント）の設定
type ClientConfig struct {
	APIBaseURL string // バックエンドのベースURL

	TokenStore    string // memory / redis
	TokenProfile  string // redisキーの区別
	RedisAddr     string
	RedisPassword string
	RedisTokenTTL time.Duration

	LogLevel string
}

const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// LoadClientはクライアント用の環境変数
func LoadClient() (ClientConfig, error) {
	cfg := ClientConfig{
		APIBaseURL:    strings.TrimRight(os.Getenv("API_BASE_URL"), "/"),
		TokenStore:    getenv("TOKEN_STORE", TokenStoreMemory),
		TokenProfile:  getenv("TOKEN_PROFILE", "default"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}

	if cfg.APIBaseURL == "" {
		return ClientConfig{}, fmt.Errorf("API_BASE_URL is required")
	}

	switch cfg.TokenStore {
	case TokenStoreMemory, TokenStoreRedis:
	default:
		return ClientConfig{}, fmt.Errorf("TOKEN_STORE must be memory or redis: %q", cfg.TokenStore)
	}

	if v := os.Getenv("REDIS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("REDIS_TOKEN_TTL must be duration: %w", err)
		}
		cfg.RedisTokenTTL = d
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}
