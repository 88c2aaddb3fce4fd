package repository

import (
	"gorm.io/gorm"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/models"
)

type Repositories struct {
	FileRecordRepository interfaces.FileRecordRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		FileRecordRepository: NewFileRecordRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.FileRecord{},
	)
}
