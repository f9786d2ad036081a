package config

import (
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName    string `env:"SERVICE_NAME" envDefault:"punchclock"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"punchclock"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"pclk"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// 身份提供方配置，签名密钥集由 issuer 发布（按 kid 轮换，无需主动失效）
	AuthIssuer        string `env:"AUTH_ISSUER"`
	AuthAudience      string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL       string `env:"AUTH_JWKS_URL"`
	AuthSubjectClaims string `env:"AUTH_SUBJECT_CLAIMS" envDefault:"preferred_username,upn,email,oid,sub"`

	// 鉴权策略
	RequireAuthForWrite bool `env:"REQUIRE_AUTH_FOR_WRITE" envDefault:"false"`
	RequireAuthForRead  bool `env:"REQUIRE_AUTH_FOR_READ" envDefault:"false"`

	// 打卡策略配置
	PunchPairedMode          bool          `env:"PUNCH_PAIRED_MODE" envDefault:"true"` // true: in/out 配对模式, false: 单次打卡
	AllowMultipleOpenPunches bool          `env:"ALLOW_MULTIPLE_OPEN_PUNCHES" envDefault:"false"`
	ListDefaultLimit         int           `env:"LIST_DEFAULT_LIMIT" envDefault:"50"`
	ListMaxLimit             int           `env:"LIST_MAX_LIMIT" envDefault:"200"`
	PunchMaxOpenAge          time.Duration `env:"PUNCH_MAX_OPEN_AGE" envDefault:"16h"` // 超过该时长仍未关闭的打卡视为遗留
	SweepInterval            time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`     // scheduler 扫描间隔

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTLPSampleRatio float64 `env:"OTLP_SAMPLE_RATIO" envDefault:"0.1"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.AuthJWKSURL == "" {
		if Cfg.RequireAuthForWrite || Cfg.RequireAuthForRead {
			log.Fatal("AUTH_JWKS_URL is required when REQUIRE_AUTH_FOR_WRITE or REQUIRE_AUTH_FOR_READ is enabled")
		}
		log.Printf("WARN: AUTH_JWKS_URL is not set, bearer credentials will be ignored and punches stay anonymous")
	}

	if Cfg.AuthJWKSURL != "" && Cfg.AuthIssuer == "" {
		log.Fatal("AUTH_ISSUER is required when AUTH_JWKS_URL is set")
	}

	if Cfg.AuthJWKSURL != "" && Cfg.AuthAudience == "" {
		log.Fatal("AUTH_AUDIENCE is required when AUTH_JWKS_URL is set")
	}

	if Cfg.ListDefaultLimit <= 0 || Cfg.ListDefaultLimit > Cfg.ListMaxLimit {
		log.Fatal("LIST_DEFAULT_LIMIT must be positive and not exceed LIST_MAX_LIMIT")
	}

	if !Cfg.PunchPairedMode && Cfg.AllowMultipleOpenPunches {
		log.Printf("WARN: ALLOW_MULTIPLE_OPEN_PUNCHES has no effect outside paired mode")
	}
}

// SubjectClaimPriority 返回按优先级排序的 subject claim 候选列表
func (c *Config) SubjectClaimPriority() []string {
	parts := strings.Split(c.AuthSubjectClaims, ",")
	claims := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			claims = append(claims, p)
		}
	}
	return claims
}

// AuthConfigured 是否配置了外部身份提供方
func (c *Config) AuthConfigured() bool {
	return c.AuthJWKSURL != ""
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
