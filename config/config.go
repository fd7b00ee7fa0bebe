package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Upload   UploadConfig   `mapstructure:"upload"`
	JWT      JWTConfig      `mapstructure:"jwt"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// StorageConfig 选择存储实现：postgres 或 memory，启动时确定后不再切换
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type UploadConfig struct {
	Dir               string `mapstructure:"dir"`
	MaxSizeBytes      int64  `mapstructure:"max_size_bytes"`
	ExtractTimeoutSec int    `mapstructure:"extract_timeout_sec"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

func LoadConfig() (*Config, error) {
	// 本地开发时从 .env 读取，文件不存在则忽略
	_ = godotenv.Load()

	config := &Config{}

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("storage.driver", "postgres")
	viper.SetDefault("openai.model", "gpt-4o")
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.max_size_bytes", 10*1024*1024)
	viper.SetDefault("upload.extract_timeout_sec", 120)
	viper.SetDefault("jwt.expire_minutes", 60)

	// 从环境变量读取配置
	viper.AutomaticEnv()

	// 绑定环境变量
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")
	viper.BindEnv("database.sslmode", "DB_SSLMODE")
	viper.BindEnv("storage.driver", "STORAGE_DRIVER")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("upload.dir", "UPLOAD_DIR")
	viper.BindEnv("upload.max_size_bytes", "UPLOAD_MAX_SIZE_BYTES")
	viper.BindEnv("upload.extract_timeout_sec", "EXTRACT_TIMEOUT_SEC")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expire_minutes", "JWT_EXPIRE_MINUTES")

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %v", err)
	}

	// 验证必需的配置
	if config.OpenAI.APIKey == "" {
		logrus.Warn("OpenAI API key not configured")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
