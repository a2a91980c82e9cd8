package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// FileTableName is the table name for files
const FileTableName = "file"

// FileI defines the methods for the file table
type FileI interface {
	// ListFiles returns all file records.
	ListFiles(ctx context.Context) ([]FileModel, error)
	// CreateFile inserts a new file record.
	CreateFile(ctx context.Context, file FileModel) (*FileModel, error)
	// GetFile returns the file with the given ID, or customerror.ErrNotFound.
	GetFile(ctx context.Context, fileID string) (*FileModel, error)
	// DeleteFile removes a file record by ID. The physical blob and the
	// file's vector collection are the caller's responsibility.
	DeleteFile(ctx context.Context, fileID string) error
}

// FileModel is the model for the file table
type FileModel struct {
	ID       string `gorm:"column:id;size:255;primaryKey" json:"id"`
	UserID   string `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	Filename string `gorm:"column:filename;size:1023;not null" json:"filename"`
	// Path locates the blob in the storage provider (a path under the
	// upload root for local storage, an object key for MinIO).
	Path      string         `gorm:"column:path;size:1023;not null" json:"path"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	Meta      datatypes.JSON `gorm:"column:meta" json:"meta"`
	CreatedAt int64          `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt int64          `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName overrides gorm's pluralized naming.
func (FileModel) TableName() string {
	return FileTableName
}

func (r *repository) ListFiles(ctx context.Context) ([]FileModel, error) {
	var files []FileModel
	if err := r.db.WithContext(ctx).Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *repository) CreateFile(ctx context.Context, file FileModel) (*FileModel, error) {
	now := time.Now().Unix()
	if file.CreatedAt == 0 {
		file.CreatedAt = now
	}
	if file.UpdatedAt == 0 {
		file.UpdatedAt = now
	}
	if err := r.db.WithContext(ctx).Create(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *repository) GetFile(ctx context.Context, fileID string) (*FileModel, error) {
	var file FileModel
	if err := getByID(r.db.WithContext(ctx), fileID, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *repository) DeleteFile(ctx context.Context, fileID string) error {
	return r.db.WithContext(ctx).Where("id = ?", fileID).Delete(&FileModel{}).Error
}
