package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"convention-planner/internal/planner"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	BaseURL   string     `mapstructure:"base_url"`
	BodyLimit int64      `mapstructure:"body_limit"` // 请求体上限（字节），导入文件也受此限制
	CORS      CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（可选，不可用时撤销与限流降级）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 会议编辑令牌配置
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	EditTokenTTL time.Duration `mapstructure:"edit_token_ttl"`
	PasscodeCost int           `mapstructure:"passcode_cost"` // bcrypt cost
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlannerConfig 表单缺省值与导入限制
type PlannerConfig struct {
	ConventionDays      int           `mapstructure:"convention_days"`
	TimeSlotsPerDay     int           `mapstructure:"time_slots_per_day"`
	RoomsPerDay         int           `mapstructure:"rooms_per_day"`
	SessionsPerSlot     int           `mapstructure:"sessions_per_slot"`
	PapersPerSession    int           `mapstructure:"papers_per_session"`
	MinPapersPerSession int           `mapstructure:"min_papers_per_session"`
	MaxPapersPerSession int           `mapstructure:"max_papers_per_session"`
	RoundTableDuration  int           `mapstructure:"round_table_duration"`
	MaxImportRows       int           `mapstructure:"max_import_rows"`
	DefaultStartTime    string        `mapstructure:"default_start_time"`
	SessionMinutes      int           `mapstructure:"session_minutes"`
	BreakMinutes        int           `mapstructure:"break_minutes"`
	Timezone            string        `mapstructure:"timezone"` // ICS 导入换算开始时间使用
	Limits              PlannerLimits `mapstructure:"limits"`
}

// PlannerLimits 排期参数上限，超出的输入按上限计算
type PlannerLimits struct {
	ConventionDays  int `mapstructure:"convention_days"`
	TimeSlotsPerDay int `mapstructure:"time_slots_per_day"`
	SessionsPerSlot int `mapstructure:"sessions_per_slot"`
	RoomsPerDay     int `mapstructure:"rooms_per_day"`
	TotalPapers     int `mapstructure:"total_papers"`
	RoundTables     int `mapstructure:"round_tables"`
}

// Location 会议所在时区；无法识别时为 UTC
func (c PlannerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Defaults 转换为排期计算使用的缺省值
func (c PlannerConfig) Defaults() planner.Defaults {
	return planner.Defaults{
		ConventionDays:      c.ConventionDays,
		TimeSlotsPerDay:     c.TimeSlotsPerDay,
		RoomsPerDay:         c.RoomsPerDay,
		SessionsPerSlot:     c.SessionsPerSlot,
		PapersPerSession:    c.PapersPerSession,
		MinPapersPerSession: c.MinPapersPerSession,
		MaxPapersPerSession: c.MaxPapersPerSession,
		RoundTableDuration:  c.RoundTableDuration,
		Limits: planner.Limits{
			ConventionDays:  c.Limits.ConventionDays,
			TimeSlotsPerDay: c.Limits.TimeSlotsPerDay,
			SessionsPerSlot: c.Limits.SessionsPerSlot,
			RoomsPerDay:     c.Limits.RoomsPerDay,
			TotalPapers:     c.Limits.TotalPapers,
			RoundTables:     c.Limits.RoundTables,
		},
	}
}

// RateLimitConfig 滑动窗口限流配置（按客户端 IP）
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int64         `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SetDefaults 写入全部默认值（CLI 读取参数文件时复用 planner.* 部分）
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit", 4<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "convention_planner")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.edit_token_ttl", "720h")
	v.SetDefault("auth.passcode_cost", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("planner.convention_days", planner.DefaultConventionDays)
	v.SetDefault("planner.time_slots_per_day", planner.DefaultTimeSlotsPerDay)
	v.SetDefault("planner.rooms_per_day", planner.DefaultRoomsPerDay)
	v.SetDefault("planner.sessions_per_slot", planner.DefaultSessionsPerSlot)
	v.SetDefault("planner.papers_per_session", planner.DefaultPapersPerSession)
	v.SetDefault("planner.min_papers_per_session", planner.DefaultMinPapersPerSession)
	v.SetDefault("planner.max_papers_per_session", planner.DefaultMaxPapersPerSession)
	v.SetDefault("planner.round_table_duration", planner.DefaultRoundTableDuration)
	v.SetDefault("planner.max_import_rows", 2000)
	v.SetDefault("planner.default_start_time", "09:00")
	v.SetDefault("planner.session_minutes", 90)
	v.SetDefault("planner.break_minutes", 15)
	v.SetDefault("planner.timezone", "UTC")
	v.SetDefault("planner.limits.convention_days", planner.LimitConventionDays)
	v.SetDefault("planner.limits.time_slots_per_day", planner.LimitTimeSlotsPerDay)
	v.SetDefault("planner.limits.sessions_per_slot", planner.LimitSessionsPerSlot)
	v.SetDefault("planner.limits.rooms_per_day", planner.LimitRoomsPerDay)
	v.SetDefault("planner.limits.total_papers", planner.LimitTotalPapers)
	v.SetDefault("planner.limits.round_tables", planner.LimitRoundTables)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", "1m")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Auth.EditTokenTTL <= 0 {
		return fmt.Errorf("配置校验失败: auth.edit_token_ttl 必须为正")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("配置校验失败: rate_limit.requests 与 rate_limit.window 必须为正")
	}
	return nil
}
