package vectordb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// CatalogFileName is the embedded engine's metadata catalog, stored at
// the top of the vector root next to the collection directories.
const CatalogFileName = "catalog.sqlite3"

// collectionModel is a catalog row mapping an internal directory ID to
// the collection's logical name.
type collectionModel struct {
	DirID     string `gorm:"column:dir_id;size:255;primaryKey"`
	Name      string `gorm:"column:name;size:255;not null;uniqueIndex"`
	CreatedAt int64  `gorm:"column:created_at;not null"`
}

func (collectionModel) TableName() string {
	return "collection"
}

type embeddedDB struct {
	root   string
	db     *gorm.DB
	logger *zap.Logger
}

// NewEmbedded opens (or initializes) an embedded vector store under the
// given root. Each collection is a directory named by a generated
// internal ID; the ID-to-name mapping lives in a sqlite catalog at the
// root. The layout mirrors embedded engines such as Chroma, whose
// directory names are meaningless without the catalog.
func NewEmbedded(root string, logger *zap.Logger) (VectorDatabase, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating vector root: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(filepath.Join(root, CatalogFileName)), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening vector catalog: %w", err)
	}
	if err := db.AutoMigrate(&collectionModel{}); err != nil {
		return nil, fmt.Errorf("migrating vector catalog: %w", err)
	}
	return &embeddedDB{root: root, db: db, logger: logger}, nil
}

func (e *embeddedDB) CreateCollection(ctx context.Context, name string) error {
	has, err := e.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	dirID := uuid.Must(uuid.NewV4()).String()
	if err := os.MkdirAll(filepath.Join(e.root, dirID), 0o755); err != nil {
		return fmt.Errorf("creating collection directory: %w", err)
	}
	record := collectionModel{
		DirID:     dirID,
		Name:      name,
		CreatedAt: time.Now().Unix(),
	}
	if err := e.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("registering collection: %w", err)
	}
	e.logger.Debug("created vector collection",
		zap.String("name", name), zap.String("dir", dirID))
	return nil
}

func (e *embeddedDB) HasCollection(ctx context.Context, name string) (bool, error) {
	var count int64
	err := e.db.WithContext(ctx).Model(&collectionModel{}).
		Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (e *embeddedDB) DropCollection(ctx context.Context, name string) (DropStatus, error) {
	var record collectionModel
	err := e.db.WithContext(ctx).Where("name = ?", name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AlreadyAbsent, nil
	}
	if err != nil {
		return AlreadyAbsent, err
	}

	if err := os.RemoveAll(filepath.Join(e.root, record.DirID)); err != nil {
		return AlreadyAbsent, fmt.Errorf("removing collection directory: %w", err)
	}
	if err := e.db.WithContext(ctx).Where("dir_id = ?", record.DirID).
		Delete(&collectionModel{}).Error; err != nil {
		return AlreadyAbsent, fmt.Errorf("deregistering collection: %w", err)
	}
	return Dropped, nil
}

func (e *embeddedDB) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	if err := e.db.WithContext(ctx).Model(&collectionModel{}).
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// Collections implements PhysicalCatalog.
func (e *embeddedDB) Collections(ctx context.Context) ([]CatalogEntry, error) {
	var records []collectionModel
	if err := e.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]CatalogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, CatalogEntry{DirName: r.DirID, Collection: r.Name})
	}
	return entries, nil
}

// Root implements PhysicalCatalog.
func (e *embeddedDB) Root() string {
	return e.root
}

func (e *embeddedDB) Compact(ctx context.Context) error {
	return e.db.WithContext(ctx).Exec("VACUUM").Error
}

func (e *embeddedDB) Close() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
