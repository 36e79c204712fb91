package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes the connection pool and SQL logging
type Options struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// SlowThreshold marks queries worth a warning; vector searches sit close to it
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
}

// DefaultOptions logs only slow queries and errors
func DefaultOptions() Options {
	return Options{
		MaxIdleConns:    10,
		MaxOpenConns:    50,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   500 * time.Millisecond,
		LogLevel:        logger.Warn,
	}
}

func getLogger(opts Options) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			// embeddings are bound as parameters and would flood the log
			ParameterizedQueries: true,
			Colorful:             false,
		},
	)
}

func configureConnectionPool(db *gorm.DB, opts Options) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	return nil
}

// NewGormDBFromDSN opens a Postgres connection with DefaultOptions
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return Open(dsn, DefaultOptions())
}

func Open(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(opts),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, opts); err != nil {
		return nil, err
	}

	return db, nil
}
