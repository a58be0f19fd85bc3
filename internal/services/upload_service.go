package services

import (
	"context"
	"fmt"
	"io"

	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/upload"
	"gorm.io/gorm"
)

// UploadService pins media and keeps a record of every upload
type UploadService interface {
	Upload(ctx context.Context, userID *string, fileName string, size int64, r io.Reader) (*models.Upload, error)
	ListUploads(userID *string) ([]models.Upload, error)
}

type uploadService struct {
	db       *gorm.DB
	uploader upload.Uploader
}

func NewUploadService(db *gorm.DB, uploader upload.Uploader) UploadService {
	return &uploadService{db: db, uploader: uploader}
}

func (s *uploadService) Upload(ctx context.Context, userID *string, fileName string, size int64, r io.Reader) (*models.Upload, error) {
	if size > upload.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", upload.ErrUploadFailed, fileName, upload.MaxFileSize)
	}
	cid, err := s.uploader.Upload(ctx, fileName, r)
	if err != nil {
		return nil, err
	}
	record := &models.Upload{
		UserID:     userID,
		CID:        cid,
		FileName:   fileName,
		Size:       size,
		GatewayURL: s.uploader.GatewayURL(cid),
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}
	return record, nil
}

func (s *uploadService) ListUploads(userID *string) ([]models.Upload, error) {
	var uploads []models.Upload
	query := s.db.Order("id desc")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	err := query.Find(&uploads).Error
	return uploads, err
}
