package db

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string

	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	SQLitePath string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

// PostgresDSN renders the connection URL. Credentials are escaped.
func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Name,
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": []string{sslMode}}.Encode()
	return u.String()
}

// Open connects with the configured driver. SQLite runs on a single
// connection since it serialises writers anyway.
func Open(cfg Config, log *logger.Logger) (*gorm.DB, error) {
	serviceLog := log.With("service", "Database")
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		zap.NewStdLog(log.SugaredLogger.Desugar()),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres:
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gcfg)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
	case DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "skillpath.db"
		}
		db, err = gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", path, err)
		}
		cfg.MaxOpenConns = 1
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	serviceLog.Info("database connected", "driver", db.Dialector.Name())
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB, log *logger.Logger) error {
	if db.Dialector.Name() == DriverPostgres {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			return fmt.Errorf("enable uuid-ossp extension: %w", err)
		}
	}
	if err := db.AutoMigrate(types.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("database migrated", "tables", len(types.AllModels()))
	return nil
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
