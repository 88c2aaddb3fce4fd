package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/inboxpilot/docsort/internal/utils"
)

// FileRecord is the bookkeeping row for a filed document
type FileRecord struct {
	ID           string `gorm:"type:varchar(50);primaryKey"`
	Path         string `gorm:"type:varchar(1000);not null"`
	OriginalName string `gorm:"type:varchar(500)"`
	DocumentType string `gorm:"type:varchar(50);index"`
	Sender       string `gorm:"type:varchar(255)"`
	Subject      string `gorm:"type:varchar(500)"`
	Size         int    `gorm:"default:0"`

	// SHA-256 hash of content, matches the dedup ledger entry
	ContentHash string `gorm:"type:varchar(64);index"`

	// Standard timestamps
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

// TableName overrides the table name for FileRecord
func (FileRecord) TableName() string {
	return "file_records"
}

func (f *FileRecord) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = utils.GenerateNanoIDWithPrefix("file", 12)
	}
	f.CreatedAt = time.Now().UTC()
	return nil
}
