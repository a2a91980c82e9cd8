package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// NoteTableName is the table name for notes
const NoteTableName = "note"

// NoteI defines the methods for the note table
type NoteI interface {
	ListNotes(ctx context.Context) ([]NoteModel, error)
	CreateNote(ctx context.Context, note NoteModel) (*NoteModel, error)
	GetNote(ctx context.Context, noteID string) (*NoteModel, error)
	DeleteNote(ctx context.Context, noteID string) error
}

// NoteModel is the model for the note table
type NoteModel struct {
	ID        string         `gorm:"column:id;size:255;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	Title     string         `gorm:"column:title;size:1023" json:"title"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	Meta      datatypes.JSON `gorm:"column:meta" json:"meta"`
	CreatedAt int64          `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt int64          `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName overrides gorm's pluralized naming.
func (NoteModel) TableName() string {
	return NoteTableName
}

func (r *repository) ListNotes(ctx context.Context) ([]NoteModel, error) {
	var notes []NoteModel
	if err := r.db.WithContext(ctx).Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *repository) CreateNote(ctx context.Context, note NoteModel) (*NoteModel, error) {
	now := time.Now().Unix()
	if note.CreatedAt == 0 {
		note.CreatedAt = now
	}
	if note.UpdatedAt == 0 {
		note.UpdatedAt = now
	}
	if err := r.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *repository) GetNote(ctx context.Context, noteID string) (*NoteModel, error) {
	var note NoteModel
	if err := getByID(r.db.WithContext(ctx), noteID, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *repository) DeleteNote(ctx context.Context, noteID string) error {
	return r.db.WithContext(ctx).Where("id = ?", noteID).Delete(&NoteModel{}).Error
}
