package config

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/kelseyhightower/envconfig"
	sdk "github.com/matrixorigin/moi-go-sdk"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RSVP      RSVPConfig      `yaml:"rsvp"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Storage   StorageConfig   `yaml:"storage"`
	MOI       MOIConfig       `yaml:"moi"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type LogConfig struct {
	Level      string `yaml:"level" envconfig:"LOG_LEVEL"`
	File       string `yaml:"file" envconfig:"LOG_FILE"`
	Console    bool   `yaml:"console" envconfig:"LOG_CONSOLE"`
	MaxSizeMB  int    `yaml:"max_size_mb" ignored:"true"`
	MaxBackups int    `yaml:"max_backups" ignored:"true"`
	MaxAgeDays int    `yaml:"max_age_days" ignored:"true"`
}

type ServerConfig struct {
	Port        int      `yaml:"port" envconfig:"PORT"`
	CORSOrigins []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
	StaticDir   string   `yaml:"static_dir" envconfig:"STATIC_DIR"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver" envconfig:"DB_DRIVER"`
	DSN         string `yaml:"dsn" envconfig:"DB_URI"`
	Host        string `yaml:"host" envconfig:"DB_HOST"`
	Port        int    `yaml:"port" envconfig:"DB_PORT"`
	User        string `yaml:"user" envconfig:"DB_USER"`
	Password    string `yaml:"password" envconfig:"DB_PASS"`
	Name        string `yaml:"name" envconfig:"DB_NAME"`
	AutoMigrate bool   `yaml:"auto_migrate" envconfig:"DB_AUTO_MIGRATE"`
}

// AuthConfig guards the admin routes. An empty PasswordHash leaves them open.
type AuthConfig struct {
	Username     string        `yaml:"username" envconfig:"ADMIN_USER"`
	PasswordHash string        `yaml:"password_hash" envconfig:"ADMIN_PASSWORD_HASH"`
	JWTSecret    string        `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" envconfig:"JWT_TTL"`
}

type RSVPConfig struct {
	VerifyURL string `yaml:"verify_url" envconfig:"RSVP_VERIFY_URL"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" envconfig:"KAFKA_TOPIC"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket" envconfig:"S3_BUCKET"`
	Region   string `yaml:"region" envconfig:"S3_REGION"`
	Endpoint string `yaml:"endpoint" envconfig:"S3_ENDPOINT"`
	Prefix   string `yaml:"prefix" envconfig:"S3_PREFIX"`
}

type MOIConfig struct {
	BaseURL        string `yaml:"base_url" envconfig:"MOI_BASE_URL"`
	APIKey         string `yaml:"api_key" envconfig:"MOI_API_KEY"`
	CatalogID      int64  `yaml:"catalog_id" envconfig:"MOI_CATALOG_ID"`
	DatabaseName   string `yaml:"database_name" envconfig:"MOI_DB_NAME"`
	DatabaseID     int64  `yaml:"database_id" envconfig:"MOI_DB_ID"`
	ArchiveTableID int64  `yaml:"archive_table_id" envconfig:"MOI_ARCHIVE_TABLE_ID"`
}

func (m MOIConfig) Enabled() bool { return m.APIKey != "" && m.BaseURL != "" }

type SchedulerConfig struct {
	CloseIntervalMin uint64 `yaml:"close_interval_min" envconfig:"SCHED_CLOSE_MIN"`
	RelayIntervalSec uint64 `yaml:"relay_interval_sec" envconfig:"SCHED_RELAY_SEC"`
}

func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 5000, CORSOrigins: []string{"http://localhost:3000"}},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Database: DatabaseConfig{Driver: "mysql", Port: 3306, Name: "rsvp", AutoMigrate: true},
		Auth:     AuthConfig{Username: "admin", TokenTTL: 12 * time.Hour},
		Kafka:    KafkaConfig{Topic: "rsvp-events"},
		MOI:      MOIConfig{DatabaseName: "rsvp_archive", CatalogID: 1},
		Scheduler: SchedulerConfig{
			CloseIntervalMin: 30,
			RelayIntervalSec: 10,
		},
	}
}

// Load reads the first config file found, then applies environment overrides.
func Load(configFile string) (*Config, error) {
	c := Default()

	paths := []string{"etc/config-dev.yaml", "/etc/jsmc-rsvp/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	return c, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true}

	switch c.Database.Driver {
	case "", "mysql":
		sqlDB, err := c.openMySQL()
		if err != nil {
			return nil, err
		}
		return gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), gcfg)
	case "postgres":
		dsn := c.Database.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name)
		}
		return gorm.Open(postgres.Open(dsn), gcfg)
	case "sqlite":
		dsn := c.Database.DSN
		if dsn == "" {
			dsn = c.Database.Name + ".db"
		}
		return gorm.Open(sqlite.Open(dsn), gcfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

func (c *Config) openMySQL() (*sql.DB, error) {
	cfg := gomysql.NewConfig()
	if c.Database.DSN != "" {
		parsed, err := gomysql.ParseDSN(c.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		cfg = parsed
	} else {
		cfg.User = c.Database.User
		cfg.Passwd = c.Database.Password
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	}
	if c.Database.Name != "" {
		cfg.DBName = c.Database.Name
	}
	cfg.ParseTime = true

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return sqlDB, nil
}

func (c *Config) NewRawClient() (*sdk.RawClient, error) {
	if !c.MOI.Enabled() {
		return nil, errors.New("moi not configured")
	}
	return sdk.NewRawClient(c.MOI.BaseURL, c.MOI.APIKey)
}
