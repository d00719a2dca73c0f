package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config 保存应用程序配置。
type Config struct {
	App        AppConfig        `json:"app"`
	Postgres   PostgresConfig   `json:"postgres"`
	Redis      RedisConfig      `json:"redis"`
	Email      EmailConfig      `json:"email"`
	ImageStore ImageStoreConfig `json:"image_store"`
	Security   SecurityConfig   `json:"security"`
}

// AppConfig 应用程序基础配置。
type AppConfig struct {
	Env      string `json:"env"`       // 运行环境: local / prod
	LogLevel string `json:"log_level"` // 日志级别: debug / info / warn / error
	HTTPAddr string `json:"http_addr"` // API 服务监听地址
	Locale   string `json:"locale"`    // 消息语言: en / ua
}

// PostgresConfig Postgres 数据库配置。
type PostgresConfig struct {
	DSN string `json:"dsn"` // 数据库连接字符串
}

// RedisConfig Redis 缓存配置。
type RedisConfig struct {
	Addr     string `json:"addr"`     // Redis 地址 (host:port)
	Password string `json:"password"` // Redis 密码
}

// EmailConfig 邮件通知配置。
type EmailConfig struct {
	SMTPHost  string `json:"smtp_host"`
	SMTPPort  int    `json:"smtp_port"`
	SMTPUser  string `json:"smtp_user"`
	SMTPPass  string `json:"smtp_pass"`
	FromEmail string `json:"from_email"`
	BaseURL   string `json:"base_url"` // 邮件里链接使用的服务地址
}

// ImageStoreConfig 图床配置。
type ImageStoreConfig struct {
	BaseURL string `json:"base_url"` // 图床 API 根地址
	APIKey  string `json:"api_key"`
}

// SecurityConfig 安全相关配置。
type SecurityConfig struct {
	JWTSecret       string        `json:"jwt_secret"`        // JWT 签名密钥
	AccessTTL       time.Duration `json:"access_ttl"`        // 访问令牌有效期（如 "15m"）
	RefreshTTL      time.Duration `json:"refresh_ttl"`       // 刷新令牌有效期（如 "168h"）
	EmailTokenTTL   time.Duration `json:"email_token_ttl"`   // 邮件令牌有效期
	ProfileCacheTTL time.Duration `json:"profile_cache_ttl"` // 用户资料缓存有效期
}

// Load 从 JSON 文件加载配置。
//
// 它会尝试读取 configs/config.json 文件，如果不存在则使用默认值。
func Load(configPath ...string) (*Config, error) {
	path := "configs/config.json"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	// 如果配置文件不存在，使用默认配置
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := getDefaultConfig()
		// 即使没有配置文件，也允许环境变量覆盖默认值
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// 应用默认值（对于未设置的字段）
	applyDefaults(cfg)

	// 环境变量优先覆盖配置
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadOrDefault 加载配置，如果失败则返回默认配置（不报错）。
func LoadOrDefault(configPath ...string) *Config {
	cfg, err := Load(configPath...)
	if err != nil {
		fallback := getDefaultConfig()
		applyEnvOverrides(fallback)
		return fallback
	}
	return cfg
}

// getDefaultConfig 返回默认配置。
func getDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Env:      "local",
			LogLevel: "info",
			HTTPAddr: ":8080",
			Locale:   "en",
		},
		Postgres: PostgresConfig{
			DSN: "host=localhost user=postgres password=postgres dbname=photoshare port=5432 sslmode=disable",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
		},
		Email: EmailConfig{
			SMTPHost:  "smtp.gmail.com",
			SMTPPort:  587,
			SMTPUser:  "",
			SMTPPass:  "",
			FromEmail: "",
			BaseURL:   "http://localhost:8080",
		},
		ImageStore: ImageStoreConfig{
			BaseURL: "https://api.imgur.com/3",
			APIKey:  "",
		},
		Security: SecurityConfig{
			JWTSecret:       "dev_secret_change_me",
			AccessTTL:       15 * time.Minute,
			RefreshTTL:      7 * 24 * time.Hour,
			EmailTokenTTL:   24 * time.Hour,
			ProfileCacheTTL: 5 * time.Minute,
		},
	}
}

// applyDefaults 对未设置的字段应用默认值。
func applyDefaults(cfg *Config) {
	defaults := getDefaultConfig()

	if cfg.App.Env == "" {
		cfg.App.Env = defaults.App.Env
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = defaults.App.LogLevel
	}
	if cfg.App.HTTPAddr == "" {
		cfg.App.HTTPAddr = defaults.App.HTTPAddr
	}
	if cfg.App.Locale == "" {
		cfg.App.Locale = defaults.App.Locale
	}
	if cfg.Postgres.DSN == "" {
		cfg.Postgres.DSN = defaults.Postgres.DSN
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaults.Redis.Addr
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = defaults.Email.SMTPPort
	}
	if cfg.Email.BaseURL == "" {
		cfg.Email.BaseURL = defaults.Email.BaseURL
	}
	if cfg.ImageStore.BaseURL == "" {
		cfg.ImageStore.BaseURL = defaults.ImageStore.BaseURL
	}
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = defaults.Security.JWTSecret
	}
	if cfg.Security.AccessTTL == 0 {
		cfg.Security.AccessTTL = defaults.Security.AccessTTL
	}
	if cfg.Security.RefreshTTL == 0 {
		cfg.Security.RefreshTTL = defaults.Security.RefreshTTL
	}
	if cfg.Security.EmailTokenTTL == 0 {
		cfg.Security.EmailTokenTTL = defaults.Security.EmailTokenTTL
	}
	if cfg.Security.ProfileCacheTTL == 0 {
		cfg.Security.ProfileCacheTTL = defaults.Security.ProfileCacheTTL
	}
}

func applyEnvOverrides(cfg *Config) {
	viper.AutomaticEnv()

	_ = viper.BindEnv("db_dsn", "DB_DSN")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = viper.BindEnv("smtp_pass", "SMTP_PASS")
	_ = viper.BindEnv("jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("image_api_key", "IMAGE_API_KEY")

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("APP_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("APP_HTTP_ADDR"); v != "" {
		cfg.App.HTTPAddr = v
	}
	if v := os.Getenv("APP_LOCALE"); v != "" {
		cfg.App.Locale = v
	}

	if v := viper.GetString("db_dsn"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := viper.GetString("redis_addr"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := viper.GetString("redis_password"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = i
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUser = v
	}
	if v := viper.GetString("smtp_pass"); v != "" {
		cfg.Email.SMTPPass = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Email.FromEmail = v
	}
	if v := os.Getenv("APP_BASE_URL"); v != "" {
		cfg.Email.BaseURL = v
	}

	if v := os.Getenv("IMAGE_API_URL"); v != "" {
		cfg.ImageStore.BaseURL = v
	}
	if v := viper.GetString("image_api_key"); v != "" {
		cfg.ImageStore.APIKey = v
	}

	if v := viper.GetString("jwt_secret"); v != "" {
		cfg.Security.JWTSecret = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.AccessTTL = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.RefreshTTL = d
		}
	}
	if v := os.Getenv("EMAIL_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.EmailTokenTTL = d
		}
	}
	if v := os.Getenv("PROFILE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.ProfileCacheTTL = d
		}
	}
}

// UnmarshalJSON 自定义 JSON 解析，支持时间Duration字符串。
func (s *SecurityConfig) UnmarshalJSON(data []byte) error {
	type Alias SecurityConfig
	aux := &struct {
		AccessTTL       string `json:"access_ttl"`
		RefreshTTL      string `json:"refresh_ttl"`
		EmailTokenTTL   string `json:"email_token_ttl"`
		ProfileCacheTTL string `json:"profile_cache_ttl"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.AccessTTL != "" {
		duration, err := time.ParseDuration(aux.AccessTTL)
		if err != nil {
			return fmt.Errorf("invalid access_ttl format: %w", err)
		}
		s.AccessTTL = duration
	}
	if aux.RefreshTTL != "" {
		duration, err := time.ParseDuration(aux.RefreshTTL)
		if err != nil {
			return fmt.Errorf("invalid refresh_ttl format: %w", err)
		}
		s.RefreshTTL = duration
	}
	if aux.EmailTokenTTL != "" {
		duration, err := time.ParseDuration(aux.EmailTokenTTL)
		if err != nil {
			return fmt.Errorf("invalid email_token_ttl format: %w", err)
		}
		s.EmailTokenTTL = duration
	}
	if aux.ProfileCacheTTL != "" {
		duration, err := time.ParseDuration(aux.ProfileCacheTTL)
		if err != nil {
			return fmt.Errorf("invalid profile_cache_ttl format: %w", err)
		}
		s.ProfileCacheTTL = duration
	}

	return nil
}

// MarshalJSON 自定义 JSON 序列化，将 Duration 转为字符串。
func (s SecurityConfig) MarshalJSON() ([]byte, error) {
	type Alias SecurityConfig
	return json.Marshal(&struct {
		AccessTTL       string `json:"access_ttl"`
		RefreshTTL      string `json:"refresh_ttl"`
		EmailTokenTTL   string `json:"email_token_ttl"`
		ProfileCacheTTL string `json:"profile_cache_ttl"`
		*Alias
	}{
		AccessTTL:       s.AccessTTL.String(),
		RefreshTTL:      s.RefreshTTL.String(),
		EmailTokenTTL:   s.EmailTokenTTL.String(),
		ProfileCacheTTL: s.ProfileCacheTTL.String(),
		Alias:           (*Alias)(&s),
	})
}
