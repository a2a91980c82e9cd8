package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FolderTableName is the table name for chat folders
const FolderTableName = "folder"

// FolderI defines the methods for the folder table
type FolderI interface {
	ListFolders(ctx context.Context) ([]FolderModel, error)
	CreateFolder(ctx context.Context, folder FolderModel) (*FolderModel, error)
	// DeleteFolder removes a folder record. When cascadeChats is true the
	// chats filed under the folder are removed as well; otherwise they
	// are detached and keep their own lifecycle.
	DeleteFolder(ctx context.Context, folderID string, cascadeChats bool) error
}

// FolderModel is the model for the folder table
type FolderModel struct {
	ID        string         `gorm:"column:id;size:255;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	ParentID  *string        `gorm:"column:parent_id;size:255" json:"parent_id"`
	Name      string         `gorm:"column:name;size:255;not null" json:"name"`
	Items     datatypes.JSON `gorm:"column:items" json:"items"`
	CreatedAt int64          `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt int64          `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName overrides gorm's pluralized naming.
func (FolderModel) TableName() string {
	return FolderTableName
}

func (r *repository) ListFolders(ctx context.Context) ([]FolderModel, error) {
	var folders []FolderModel
	if err := r.db.WithContext(ctx).Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *repository) CreateFolder(ctx context.Context, folder FolderModel) (*FolderModel, error) {
	now := time.Now().Unix()
	if folder.CreatedAt == 0 {
		folder.CreatedAt = now
	}
	if folder.UpdatedAt == 0 {
		folder.UpdatedAt = now
	}
	if err := r.db.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *repository) DeleteFolder(ctx context.Context, folderID string, cascadeChats bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascadeChats {
			if err := tx.Where("folder_id = ?", folderID).Delete(&ChatModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&ChatModel{}).Where("folder_id = ?", folderID).
				Update(ChatColumn.FolderID, nil).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", folderID).Delete(&FolderModel{}).Error
	})
}
