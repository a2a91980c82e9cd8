package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/chatstack/chat-backend/pkg/customerror"
)

// Repository bundles the relational-store operations the application
// layers depend on. The reconciler only consumes the list/get/delete
// subset; create/update operations belong to the regular CRUD surface.
type Repository interface {
	UserI
	ChatI
	FileI
	KnowledgeBaseI
	NoteI
	PromptI
	ModelI
	FolderI
	SystemI
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a Repository backed by the given gorm connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// getByID fetches a record by primary key, mapping gorm's not-found
// sentinel to the domain error.
func getByID(db *gorm.DB, id string, dst any) error {
	err := db.Where("id = ?", id).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return customerror.ErrNotFound
	}
	return err
}
