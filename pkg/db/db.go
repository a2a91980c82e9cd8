package db

import (
	"fmt"
	"log"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/chatstack/chat-backend/config"
)

var db *gorm.DB
var once sync.Once

// GetSharedConnection returns the process-wide gorm connection, opening
// it on first use from the global configuration.
func GetSharedConnection() *gorm.DB {
	once.Do(func() {
		var err error
		db, err = GetConnection(&config.Config.Database)
		if err != nil {
			log.Fatalf("opening database connection: %v", err)
		}
	})
	return db
}

// GetConnection opens a gorm connection for the given database config.
func GetConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
			cfg.Host,
			cfg.Username,
			cfg.Password,
			cfg.Name,
			cfg.Port,
			cfg.TimeZone,
		)
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		QueryFields: true, // QueryFields mode will select by all fields' name for current model
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "postgres" {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(cfg.Pool.IdleConnections)
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxConnections)
		if cfg.Pool.ConnLifeTime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.Pool.ConnLifeTime)
		}
	}

	return gormDB, nil
}

// Close closes the underlying sql.DB of a gorm connection.
func Close(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}
