package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置结构体
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	LLM       LLMConfig       `yaml:"llm"`
	Chat      ChatConfig      `yaml:"chat"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`         // 服务器监听端口
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读取超时时间
	WriteTimeout time.Duration `yaml:"writeTimeout"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idleTimeout"`  // 空闲超时时间
}

// DatabaseConfig 数据库配置
// Driver 支持 mysql / postgres / sqlite；sqlite 时 Database 为文件路径（可为 :memory:）
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`   // 数据库驱动类型
	Host     string `yaml:"host"`     // 数据库主机地址
	Port     int    `yaml:"port"`     // 数据库端口
	Username string `yaml:"username"` // 数据库用户名
	Password string `yaml:"password"` // 数据库密码
	Database string `yaml:"database"` // 数据库名称
	Charset  string `yaml:"charset"`  // 字符集（mysql）
	SSLMode  string `yaml:"sslMode"`  // SSL模式（postgres）
	MaxIdle  int    `yaml:"maxIdle"`  // 最大空闲连接数
	MaxOpen  int    `yaml:"maxOpen"`  // 最大打开连接数
	LogSQL   bool   `yaml:"logSql"`   // 是否打印SQL
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `yaml:"secret"`     // JWT密钥
	ExpireTime time.Duration `yaml:"expireTime"` // JWT过期时间
	Issuer     string        `yaml:"issuer"`     // JWT签发者
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // 日志级别
	Filename   string `yaml:"filename"`   // 日志文件名
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`   // 是否压缩
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`  // 是否启用（关闭时缓存、限流、在线状态全部降级）
	Host     string `yaml:"host"`     // Redis主机地址
	Port     int    `yaml:"port"`     // Redis端口
	Password string `yaml:"password"` // Redis密码
	DB       int    `yaml:"db"`       // Redis数据库编号
}

// WebSocketConfig WebSocket 心跳配置
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval"` // 发送ping的间隔
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读超时时间（未收到任何数据则断开）
}

// LLMConfig 本地大模型（Ollama 兼容接口）配置
type LLMConfig struct {
	BaseURL           string        `yaml:"baseUrl"`           // 推理服务地址
	Model             string        `yaml:"model"`             // 模型名称
	Timeout           time.Duration `yaml:"timeout"`           // 单次调用超时
	IntentTemperature float64       `yaml:"intentTemperature"` // 意图解析温度
	ReplyTemperature  float64       `yaml:"replyTemperature"`  // 回复生成温度
	RatePerSecond     float64       `yaml:"ratePerSecond"`     // 客户端限速
	Burst             int           `yaml:"burst"`             // 限速突发量
	BreakerTimeout    time.Duration `yaml:"breakerTimeout"`    // 熔断打开后多久尝试半开
}

// ChatConfig 聊天搜索配置
type ChatConfig struct {
	MaxResults int `yaml:"maxResults"` // 最多返回电影数
}

// CatalogConfig 电影目录配置
type CatalogConfig struct {
	PageSize int           `yaml:"pageSize"` // 每页条数（固定）
	CacheTTL time.Duration `yaml:"cacheTtl"` // 列表页缓存时间
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	ChatRequests int           `yaml:"chatRequests"` // 窗口内最大聊天请求数
	ChatWindow   time.Duration `yaml:"chatWindow"`   // 窗口长度
}

// LoadConfig 加载配置（混合方式：YAML文件 + .env + 环境变量）
func LoadConfig() *Config {
	return LoadConfigFrom("config/config.yaml")
}

// LoadConfigFrom 从指定路径加载配置
func LoadConfigFrom(filePath string) *Config {
	// 1. 首先从YAML文件加载默认配置
	config := loadFromYAML(filePath)

	// 2. .env 文件可选，不存在时忽略
	_ = godotenv.Load()

	// 3. 用环境变量覆盖配置（环境变量优先级更高）
	overrideWithEnvVars(config)

	return config
}

// loadFromYAML 从YAML文件加载配置
func loadFromYAML(filePath string) *Config {
	config := getDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		// 如果文件不存在，返回默认配置
		return config
	}

	// 解析到默认配置之上，文件中缺失的字段保留默认值
	if err := yaml.Unmarshal(data, config); err != nil {
		return getDefaultConfig()
	}

	return config
}

// overrideWithEnvVars 用环境变量覆盖配置
func overrideWithEnvVars(config *Config) {
	// 服务器配置
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}

	// 数据库配置
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Database.Driver = driver
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if charset := getEnv("DB_CHARSET", ""); charset != "" {
		config.Database.Charset = charset
	}
	if sslMode := getEnv("DB_SSLMODE", ""); sslMode != "" {
		config.Database.SSLMode = sslMode
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}
	config.Database.LogSQL = getEnvBool("DB_LOG_SQL", config.Database.LogSQL)

	// JWT配置
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if expireTime := getEnvDuration("JWT_EXPIRE_TIME", 0); expireTime > 0 {
		config.JWT.ExpireTime = expireTime
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// 日志配置
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	if maxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); maxBackups > 0 {
		config.Log.MaxBackups = maxBackups
	}
	if maxAge := getEnvInt("LOG_MAX_AGE", 0); maxAge > 0 {
		config.Log.MaxAge = maxAge
	}

	// Redis配置
	config.Redis.Enabled = getEnvBool("REDIS_ENABLED", config.Redis.Enabled)
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	// WebSocket配置
	if d := getEnvDuration("WS_PING_INTERVAL", 0); d > 0 {
		config.WebSocket.PingInterval = d
	}
	if d := getEnvDuration("WS_READ_TIMEOUT", 0); d > 0 {
		config.WebSocket.ReadTimeout = d
	}

	// 大模型配置
	if baseURL := getEnv("LLM_BASE_URL", ""); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if model := getEnv("LLM_MODEL", ""); model != "" {
		config.LLM.Model = model
	}
	if d := getEnvDuration("LLM_TIMEOUT", 0); d > 0 {
		config.LLM.Timeout = d
	}
	if r := getEnvFloat("LLM_RATE_PER_SECOND", 0); r > 0 {
		config.LLM.RatePerSecond = r
	}

	// 聊天与目录配置
	if n := getEnvInt("CHAT_MAX_RESULTS", 0); n > 0 {
		config.Chat.MaxResults = n
	}
	if n := getEnvInt("CATALOG_PAGE_SIZE", 0); n > 0 {
		config.Catalog.PageSize = n
	}
	if d := getEnvDuration("CATALOG_CACHE_TTL", 0); d > 0 {
		config.Catalog.CacheTTL = d
	}

	// 限流配置
	if n := getEnvInt("RATE_LIMIT_CHAT_REQUESTS", 0); n > 0 {
		config.RateLimit.ChatRequests = n
	}
	if d := getEnvDuration("RATE_LIMIT_CHAT_WINDOW", 0); d > 0 {
		config.RateLimit.ChatWindow = d
	}
}

// getDefaultConfig 获取默认配置
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			Username: "filmmate",
			Password: "filmmate",
			Database: "filmmate",
			Charset:  "utf8mb4",
			SSLMode:  "disable",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		JWT: JWTConfig{
			Secret:     "change-me-in-production",
			ExpireTime: 24 * time.Hour,
			Issuer:     "filmmate",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  90 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL:           "http://localhost:11434",
			Model:             "llama3",
			Timeout:           8 * time.Second,
			IntentTemperature: 0.1,
			ReplyTemperature:  0.7,
			RatePerSecond:     2,
			Burst:             4,
			BreakerTimeout:    30 * time.Second,
		},
		Chat: ChatConfig{
			MaxResults: 5,
		},
		Catalog: CatalogConfig{
			PageSize: 12,
			CacheTTL: time.Minute,
		},
		RateLimit: RateLimitConfig{
			ChatRequests: 20,
			ChatWindow:   time.Minute,
		},
	}
}

// 辅助函数：获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 辅助函数：获取浮点环境变量
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// 辅助函数：获取时间环境变量
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
