package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type BasicAuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type APIConfig struct {
	Host         string          `mapstructure:"host"`
	DefaultLimit int             `mapstructure:"defaultLimit"`
	MaxLimit     int             `mapstructure:"maxLimit"`
	BasicAuth    BasicAuthConfig `mapstructure:"basicAuth"`
}

type StorageConfig struct {
	Main   StorageConnectionConfig `mapstructure:"main"`
	Cursor StorageConnectionConfig `mapstructure:"cursor"`
}

type StorageConnectionConfig struct {
	Clickhouse *ClickhouseConfig `mapstructure:"clickhouse"`
	Badger     *BadgerConfig     `mapstructure:"badger"`
	Memory     *MemoryConfig     `mapstructure:"memory"`
	Redis      *RedisConfig      `mapstructure:"redis"`
}

type ClickhouseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	DisableTLS   bool   `mapstructure:"disableTLS"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
}

type BadgerConfig struct {
	Path string `mapstructure:"path"`
}

type MemoryConfig struct {
	MaxItems int `mapstructure:"maxItems"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"poolSize"`
}

type FileSourceConfig struct {
	Path string `mapstructure:"path"`
}

type SourceConfig struct {
	Name string            `mapstructure:"name"`
	File *FileSourceConfig `mapstructure:"file"`
}

type PublisherConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Brokers        string `mapstructure:"brokers"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	TransfersTopic string `mapstructure:"transfersTopic"`
	AccountsTopic  string `mapstructure:"accountsTopic"`
}

type S3ArchiveConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
}

type ArchiveConfig struct {
	Directory         string           `mapstructure:"directory"`
	MaxFileSizeMB     int64            `mapstructure:"maxFileSizeMb"`
	TransfersPerBatch int              `mapstructure:"transfersPerBatch"`
	S3                *S3ArchiveConfig `mapstructure:"s3"`
}

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	API       APIConfig       `mapstructure:"api"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Source    SourceConfig    `mapstructure:"source"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

var Cfg Config

func LoadConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./configs")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// sets e.g. STORAGE_MAIN_CLICKHOUSE_HOST to storage.main.clickhouse.host
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&Cfg); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	return nil
}
