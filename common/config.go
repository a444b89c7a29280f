package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// TransportHTTP 以 HTTP 服务形式暴露两个接口
	TransportHTTP = "http"
	// TransportStdio 以 MCP stdio 服务形式暴露两个工具
	TransportStdio = "stdio"
)

// Config 应用配置结构
type Config struct {
	// Gemini 配置
	GeminiAPIKey       string
	GeminiBaseURL      string
	GeminiAPIVersion   string
	GeminiComposeModel string
	// GenAI 请求超时时间（秒），0 表示不设置超时
	GenAITimeoutSeconds int

	// CORS 信任的域名（及其子域名）
	CORSTrustedDomain string
	// 模型未返回图片时是否回退为原始室内图
	InteriorFallback bool

	// 传输方式: http 或 stdio
	Transport     string
	ServerAddress string
	ServerPort    string
	BodyLimitMB   int

	MetricsEnabled bool

	// 日志配置
	LogLevel  string // 日志级别: debug, info, warn, error
	LogFormat string // 日志格式: json, text
	LogOutput string // 输出位置: stdout, stderr, file
	LogFile   string // 日志文件路径（当 LogOutput 为 file 时）
}

// LoadConfig 从 .env 文件和环境变量加载配置
//
// GEMINI_API_KEY 缺失不会导致加载失败：每个请求各自返回 500 配置错误。
func LoadConfig() (*Config, error) {
	// 加载 .env 文件（如果存在）
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}

	config := &Config{
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:       strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "/"),
		GeminiAPIVersion:    getEnv("GEMINI_API_VERSION", "v1beta"),
		GeminiComposeModel:  getEnv("GEMINI_COMPOSE_MODEL", "gemini-1.5-pro"),
		GenAITimeoutSeconds: getEnvInt("GENAI_TIMEOUT_SECONDS", 0),
		CORSTrustedDomain:   strings.ToLower(getEnv("CORS_TRUSTED_DOMAIN", "barulins.art")),
		InteriorFallback:    getEnvBool("COMPOSE_INTERIOR_FALLBACK", true),
		Transport:           strings.ToLower(getEnv("TRANSPORT", TransportHTTP)),
		ServerAddress:       getEnv("SERVER_ADDRESS", "0.0.0.0"),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		BodyLimitMB:         getEnvInt("SERVER_BODY_LIMIT_MB", 20),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", false),
		// 日志配置
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogOutput: getEnv("LOG_OUTPUT", "stdout"),
		LogFile:   getEnv("LOG_FILE", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// stdio 模式下 stdout 被 MCP 协议占用
	if config.Transport == TransportStdio && strings.EqualFold(config.LogOutput, "stdout") {
		config.LogOutput = "stderr"
	}

	// 初始化日志系统
	logConfig := &LogConfig{
		Level:    config.LogLevel,
		Format:   config.LogFormat,
		Output:   config.LogOutput,
		FilePath: config.LogFile,
	}
	if err := InitLogger(logConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if config.GeminiAPIKey == "" {
		Warn("GEMINI_API_KEY is not set, every request will fail with a configuration error")
	}

	return config, nil
}

// Validate 校验与 API Key 无关的配置项
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("unsupported TRANSPORT: %s", c.Transport)
	}
	if c.GeminiBaseURL == "" {
		return fmt.Errorf("GEMINI_BASE_URL must not be empty")
	}
	if c.GeminiComposeModel == "" {
		return fmt.Errorf("GEMINI_COMPOSE_MODEL must not be empty")
	}
	if c.CORSTrustedDomain == "" {
		return fmt.Errorf("CORS_TRUSTED_DOMAIN must not be empty")
	}
	if c.GenAITimeoutSeconds < 0 {
		return fmt.Errorf("GENAI_TIMEOUT_SECONDS must not be negative: %d", c.GenAITimeoutSeconds)
	}
	if c.BodyLimitMB <= 0 {
		return fmt.Errorf("SERVER_BODY_LIMIT_MB must be positive: %d", c.BodyLimitMB)
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	switch value {
	case "":
		return defaultValue
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultValue
}

// getEnvInt 获取整型环境变量
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return defaultValue
}

// GetServerAddr 返回完整的服务器地址
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.ServerAddress, c.ServerPort)
}

// GenAITimeout 返回出站请求超时时间
func (c *Config) GenAITimeout() time.Duration {
	return time.Duration(c.GenAITimeoutSeconds) * time.Second
}
