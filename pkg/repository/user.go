package repository

import (
	"context"
	"time"
)

// UserTableName is the table name for users
const UserTableName = "user"

// UserI defines the methods for the user table. The user directory is
// the reconciler's ground truth for record liveness: any record whose
// owner is missing from ListUserIDs is orphaned.
type UserI interface {
	// ListUserIDs returns the IDs of all existing users.
	ListUserIDs(ctx context.Context) ([]string, error)
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, user UserModel) (*UserModel, error)
	// DeleteUser removes a user record. Owned resources are reconciled
	// by the pruning run, not cascaded here.
	DeleteUser(ctx context.Context, userID string) error
}

// UserModel is the model for the user table
type UserModel struct {
	ID        string `gorm:"column:id;size:255;primaryKey" json:"id"`
	Name      string `gorm:"column:name;size:255;not null" json:"name"`
	Email     string `gorm:"column:email;size:255;not null" json:"email"`
	Role      string `gorm:"column:role;size:63;not null;default:pending" json:"role"`
	CreatedAt int64  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt int64  `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName overrides gorm's pluralized naming.
func (UserModel) TableName() string {
	return UserTableName
}

func (r *repository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) CreateUser(ctx context.Context, user UserModel) (*UserModel, error) {
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = now
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) DeleteUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("id = ?", userID).Delete(&UserModel{}).Error
}
