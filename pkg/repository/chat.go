package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// ChatTableName is the table name for chats
const ChatTableName = "chat"

// ChatI defines the methods for the chat table
type ChatI interface {
	// ListChats returns all chat records, including archived ones.
	ListChats(ctx context.Context) ([]ChatModel, error)
	// CreateChat inserts a new chat record.
	CreateChat(ctx context.Context, chat ChatModel) (*ChatModel, error)
	// GetChat returns the chat with the given ID, or customerror.ErrNotFound.
	GetChat(ctx context.Context, chatID string) (*ChatModel, error)
	// UpdateChat persists the mutable fields of an existing chat.
	UpdateChat(ctx context.Context, chat ChatModel) (*ChatModel, error)
	// DeleteChat removes a chat record by ID.
	DeleteChat(ctx context.Context, chatID string) error
}

// ChatModel is the model for the chat table. The Chat column holds the
// transcript as an opaque JSON blob owned by the conversation
// subsystem; this layer never parses it beyond a best-effort scan for
// file references.
type ChatModel struct {
	ID        string         `gorm:"column:id;size:255;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	Title     string         `gorm:"column:title;size:1023" json:"title"`
	Chat      datatypes.JSON `gorm:"column:chat" json:"chat"`
	Meta      datatypes.JSON `gorm:"column:meta" json:"meta"`
	FolderID  *string        `gorm:"column:folder_id;size:255" json:"folder_id"`
	Archived  bool           `gorm:"column:archived;not null;default:false" json:"archived"`
	Pinned    bool           `gorm:"column:pinned;not null;default:false" json:"pinned"`
	CreatedAt int64          `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt int64          `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName overrides gorm's pluralized naming.
func (ChatModel) TableName() string {
	return ChatTableName
}

// ChatColumns is the table column map
type ChatColumns struct {
	ID        string
	UserID    string
	FolderID  string
	Archived  string
	UpdatedAt string
}

// ChatColumn is the singleton column map for the chat table
var ChatColumn = ChatColumns{
	ID:        "id",
	UserID:    "user_id",
	FolderID:  "folder_id",
	Archived:  "archived",
	UpdatedAt: "updated_at",
}

func (r *repository) ListChats(ctx context.Context) ([]ChatModel, error) {
	var chats []ChatModel
	if err := r.db.WithContext(ctx).Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *repository) CreateChat(ctx context.Context, chat ChatModel) (*ChatModel, error) {
	now := time.Now().Unix()
	if chat.CreatedAt == 0 {
		chat.CreatedAt = now
	}
	if chat.UpdatedAt == 0 {
		chat.UpdatedAt = now
	}
	if err := r.db.WithContext(ctx).Create(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *repository) GetChat(ctx context.Context, chatID string) (*ChatModel, error) {
	var chat ChatModel
	if err := getByID(r.db.WithContext(ctx), chatID, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *repository) UpdateChat(ctx context.Context, chat ChatModel) (*ChatModel, error) {
	chat.UpdatedAt = time.Now().Unix()
	if err := r.db.WithContext(ctx).Save(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *repository) DeleteChat(ctx context.Context, chatID string) error {
	return r.db.WithContext(ctx).Where("id = ?", chatID).Delete(&ChatModel{}).Error
}
