package db

import (
	"database/sql"
	"fmt"
	"time"

	"blog-service/configs"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

type Store struct{ Base *gorm.DB }

// Open connects to the SQL backend named by cfg.StoreDriver, retrying with
// backoff while the database comes up.
func Open(cfg *configs.Config, log logrus.FieldLogger) (*Store, error) {
	var dial gorm.Dialector
	switch cfg.StoreDriver {
	case configs.StorePostgres:
		dial = postgres.Open(cfg.DSN())
	case configs.StoreSQLite:
		dial = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("driver %q is not a sql store", cfg.StoreDriver)
	}

	base, err := connect(8, func() (*gorm.DB, error) {
		return gorm.Open(dial, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}, func(db *sql.DB) error { return pingWithTimeout(db, 2*time.Second) }, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := base.DB()
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver == configs.StoreSQLite {
		// in-memory sqlite databases live per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(40)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if cfg.OTELEnabled {
		if err := base.Use(tracing.NewPlugin()); err != nil {
			log.WithError(err).Warn("gorm tracing plugin")
		}
	}
	return &Store{Base: base}, nil
}

// OpenSQLite opens an isolated sqlite database, mainly for tests.
func OpenSQLite(dsn string) (*Store, error) {
	base, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := base.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return &Store{Base: base}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.Base.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var sleep = time.Sleep

// connect dials and pings up to attempts times with doubling backoff capped at
// 8s. A handle that fails its ping is closed before the next attempt.
func connect(attempts int, dial func() (*gorm.DB, error), ping func(*sql.DB) error, log logrus.FieldLogger) (*gorm.DB, error) {
	backoff := time.Second
	var err error
	for i := 1; i <= attempts; i++ {
		var base *gorm.DB
		if base, err = dial(); err == nil {
			var sqlDB *sql.DB
			if sqlDB, err = base.DB(); err == nil {
				if err = ping(sqlDB); err == nil {
					return base, nil
				}
				_ = sqlDB.Close()
			}
		}
		log.WithError(err).WithField("attempt", i).Warn("db not ready")
		if i == attempts {
			break
		}
		sleep(backoff)
		if backoff < 8*time.Second {
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("db open after %d attempts: %w", attempts, err)
}

func pingWithTimeout(sqlDB *sql.DB, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- sqlDB.Ping() }()
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("db ping timeout after %s", timeout)
	}
}
