package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// KnowledgeBaseTableName is the table name for knowledge bases
const KnowledgeBaseTableName = "knowledge"

// KnowledgeBaseI defines the methods for the knowledge base table
type KnowledgeBaseI interface {
	// ListKnowledgeBases returns all knowledge base records.
	ListKnowledgeBases(ctx context.Context) ([]KnowledgeBaseModel, error)
	// CreateKnowledgeBase inserts a new knowledge base record.
	CreateKnowledgeBase(ctx context.Context, kb KnowledgeBaseModel) (*KnowledgeBaseModel, error)
	// GetKnowledgeBase returns the knowledge base with the given ID, or
	// customerror.ErrNotFound.
	GetKnowledgeBase(ctx context.Context, kbID string) (*KnowledgeBaseModel, error)
	// DeleteKnowledgeBase removes a knowledge base record by ID. The
	// KB's vector collection (named by the KB ID) is the caller's
	// responsibility.
	DeleteKnowledgeBase(ctx context.Context, kbID string) error
}

// KnowledgeBaseModel is the model for the knowledge base table. Data
// holds the referenced file IDs in one of two historical shapes
// (a flat "file_ids" list or a "files" list of ids/objects); the
// reference extractor normalizes both.
type KnowledgeBaseModel struct {
	ID          string         `gorm:"column:id;size:255;primaryKey" json:"id"`
	UserID      string         `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	Name        string         `gorm:"column:name;size:255;not null" json:"name"`
	Description string         `gorm:"column:description;size:1023" json:"description"`
	Data        datatypes.JSON `gorm:"column:data" json:"data"`
	Meta        datatypes.JSON `gorm:"column:meta" json:"meta"`
	CreatedAt   int64          `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   int64          `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName overrides gorm's pluralized naming.
func (KnowledgeBaseModel) TableName() string {
	return KnowledgeBaseTableName
}

func (r *repository) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBaseModel, error) {
	var kbs []KnowledgeBaseModel
	if err := r.db.WithContext(ctx).Find(&kbs).Error; err != nil {
		return nil, err
	}
	return kbs, nil
}

func (r *repository) CreateKnowledgeBase(ctx context.Context, kb KnowledgeBaseModel) (*KnowledgeBaseModel, error) {
	now := time.Now().Unix()
	if kb.CreatedAt == 0 {
		kb.CreatedAt = now
	}
	if kb.UpdatedAt == 0 {
		kb.UpdatedAt = now
	}
	if err := r.db.WithContext(ctx).Create(&kb).Error; err != nil {
		return nil, err
	}
	return &kb, nil
}

func (r *repository) GetKnowledgeBase(ctx context.Context, kbID string) (*KnowledgeBaseModel, error) {
	var kb KnowledgeBaseModel
	if err := getByID(r.db.WithContext(ctx), kbID, &kb); err != nil {
		return nil, err
	}
	return &kb, nil
}

func (r *repository) DeleteKnowledgeBase(ctx context.Context, kbID string) error {
	return r.db.WithContext(ctx).Where("id = ?", kbID).Delete(&KnowledgeBaseModel{}).Error
}
