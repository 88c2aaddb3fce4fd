package interfaces

import (
	"context"

	"github.com/inboxpilot/docsort/internal/models"
)

type FileRecordRepository interface {
	Create(ctx context.Context, record *models.FileRecord) error
	GetByID(ctx context.Context, id string) (*models.FileRecord, error)
	List(ctx context.Context, limit int) ([]*models.FileRecord, error)
	CountByType(ctx context.Context) (map[string]int64, error)
}
