package repository

import (
	"context"
	"time"
)

// PromptTableName is the table name for prompts
const PromptTableName = "prompt"

// PromptI defines the methods for the prompt table. Prompts are keyed
// by their slash command rather than a generated ID.
type PromptI interface {
	ListPrompts(ctx context.Context) ([]PromptModel, error)
	CreatePrompt(ctx context.Context, prompt PromptModel) (*PromptModel, error)
	DeletePrompt(ctx context.Context, command string) error
}

// PromptModel is the model for the prompt table
type PromptModel struct {
	Command   string `gorm:"column:command;size:255;primaryKey" json:"command"`
	UserID    string `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	Title     string `gorm:"column:title;size:1023" json:"title"`
	Content   string `gorm:"column:content" json:"content"`
	Timestamp int64  `gorm:"column:timestamp;not null" json:"timestamp"`
}

// TableName overrides gorm's pluralized naming.
func (PromptModel) TableName() string {
	return PromptTableName
}

func (r *repository) ListPrompts(ctx context.Context) ([]PromptModel, error) {
	var prompts []PromptModel
	if err := r.db.WithContext(ctx).Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *repository) CreatePrompt(ctx context.Context, prompt PromptModel) (*PromptModel, error) {
	if prompt.Timestamp == 0 {
		prompt.Timestamp = time.Now().Unix()
	}
	if err := r.db.WithContext(ctx).Create(&prompt).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (r *repository) DeletePrompt(ctx context.Context, command string) error {
	return r.db.WithContext(ctx).Where("command = ?", command).Delete(&PromptModel{}).Error
}
