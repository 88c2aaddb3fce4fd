package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/models"
	"github.com/inboxpilot/docsort/internal/tracing"
)

type fileRecordRepository struct {
	db *gorm.DB
}

func NewFileRecordRepository(db *gorm.DB) interfaces.FileRecordRepository {
	return &fileRecordRepository{db: db}
}

// Create adds a new file record to the database
func (r *fileRecordRepository) Create(ctx context.Context, record *models.FileRecord) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fileRecordRepository.Create")
	defer span.Finish()
	tracing.SetDefaultRepositorySpanTags(ctx, span)

	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID retrieves a file record by its ID
func (r *fileRecordRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fileRecordRepository.GetByID")
	defer span.Finish()
	tracing.SetDefaultRepositorySpanTags(ctx, span)

	var record models.FileRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &record, nil
}

// List retrieves the most recently filed documents
func (r *fileRecordRepository) List(ctx context.Context, limit int) ([]*models.FileRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fileRecordRepository.List")
	defer span.Finish()
	tracing.SetDefaultRepositorySpanTags(ctx, span)

	if limit <= 0 {
		limit = 50
	}

	var records []*models.FileRecord
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return records, nil
}

// CountByType returns the number of filed documents per document type
func (r *fileRecordRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fileRecordRepository.CountByType")
	defer span.Finish()
	tracing.SetDefaultRepositorySpanTags(ctx, span)

	type row struct {
		DocumentType string
		Total        int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.FileRecord{}).
		Select("document_type, count(*) as total").
		Group("document_type").
		Find(&rows).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.DocumentType] = r.Total
	}
	return counts, nil
}
