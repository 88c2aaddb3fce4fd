package database

import (
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

type DatabaseConfig struct {
	Path string
}

func NewConnection(dbConfig *DatabaseConfig) (*gorm.DB, error) {
	if dbConfig == nil || dbConfig.Path == "" {
		return nil, errors.New("database path is empty")
	}

	db, err := gorm.Open(sqlite.Open(dbConfig.Path), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database %s", dbConfig.Path)
	}

	// sqlite allows a single writer; keep the pool at one connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
