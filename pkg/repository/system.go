package repository

import (
	"context"

	"gorm.io/gorm"
)

// SystemI defines storage-engine level operations.
type SystemI interface {
	// Vacuum reclaims the space freed by deleted rows. It is an
	// optimization, not a correctness requirement; both the sqlite and
	// postgres engines accept the plain VACUUM statement.
	Vacuum(ctx context.Context) error
}

func (r *repository) Vacuum(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("VACUUM").Error
}

// Migrate creates or updates the schema for every model the repository
// manages. Production deployments run it once at startup; tests run it
// against throwaway databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ChatModel{},
		&FileModel{},
		&KnowledgeBaseModel{},
		&NoteModel{},
		&PromptModel{},
		&ModelModel{},
		&FolderModel{},
	)
}
