package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// ModelTableName is the table name for model presets
const ModelTableName = "model"

// ModelI defines the methods for the model table (user-defined model
// presets layered on top of base LLMs).
type ModelI interface {
	ListModels(ctx context.Context) ([]ModelModel, error)
	CreateModel(ctx context.Context, model ModelModel) (*ModelModel, error)
	DeleteModel(ctx context.Context, modelID string) error
}

// ModelModel is the model for the model table
type ModelModel struct {
	ID          string         `gorm:"column:id;size:255;primaryKey" json:"id"`
	UserID      string         `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	BaseModelID *string        `gorm:"column:base_model_id;size:255" json:"base_model_id"`
	Name        string         `gorm:"column:name;size:255;not null" json:"name"`
	Params      datatypes.JSON `gorm:"column:params" json:"params"`
	Meta        datatypes.JSON `gorm:"column:meta" json:"meta"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   int64          `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   int64          `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName overrides gorm's pluralized naming.
func (ModelModel) TableName() string {
	return ModelTableName
}

func (r *repository) ListModels(ctx context.Context) ([]ModelModel, error) {
	var models []ModelModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *repository) CreateModel(ctx context.Context, model ModelModel) (*ModelModel, error) {
	now := time.Now().Unix()
	if model.CreatedAt == 0 {
		model.CreatedAt = now
	}
	if model.UpdatedAt == 0 {
		model.UpdatedAt = now
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *repository) DeleteModel(ctx context.Context, modelID string) error {
	return r.db.WithContext(ctx).Where("id = ?", modelID).Delete(&ModelModel{}).Error
}
