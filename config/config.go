package config

import (
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/redis/go-redis/v9"
)

// Config - Global variable to export
var Config AppConfig

// AppConfig defines the application configuration
type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Storage  StorageConfig  `koanf:"storage"`
	Minio    MinioConfig    `koanf:"minio"`
	Vector   VectorConfig   `koanf:"vector"`
	Prune    PruneConfig    `koanf:"prune"`
}

// ServerConfig defines HTTP server configurations
type ServerConfig struct {
	Port  int `koanf:"port"`
	HTTPS struct {
		Cert string `koanf:"cert"`
		Key  string `koanf:"key"`
	}
	Debug bool `koanf:"debug"`
	// AdminAPIKey guards the administrative endpoints. When empty, the
	// admin routes are mounted without authentication (local deployments).
	AdminAPIKey string `koanf:"adminapikey"`
}

// DatabaseConfig related to the relational database
type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver   string `koanf:"driver" validate:"oneof=postgres sqlite"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	TimeZone string `koanf:"timezone"`
	// Path is the database file location when the sqlite driver is used.
	Path string `koanf:"path"`
	Pool struct {
		IdleConnections int           `koanf:"idleconnections"`
		MaxConnections  int           `koanf:"maxconnections"`
		ConnLifeTime    time.Duration `koanf:"connlifetime"`
	} `koanf:"pool"`
}

// CacheConfig related to Redis
type CacheConfig struct {
	Enabled bool `koanf:"enabled"`
	Redis   struct {
		RedisOptions redis.Options `koanf:"redisoptions"`
	} `koanf:"redis"`
}

// StorageConfig names the on-disk roots the reconciler operates on.
// They are passed explicitly into the service at construction so tests
// can point them at temporary directories.
type StorageConfig struct {
	// Provider is either "local" or "minio".
	Provider string `koanf:"provider" validate:"oneof=local minio"`
	// UploadDir is the root of the uploaded-file blobs ("<id>_<name>" entries).
	UploadDir string `koanf:"uploaddir"`
	// CacheDirs are transient derived-artifact caches, cleared on every
	// prune run.
	CacheDirs []string `koanf:"cachedirs"`
}

// MinioConfig is the MinIO object-storage configuration.
type MinioConfig struct {
	Host       string `koanf:"host"`
	Port       string `koanf:"port"`
	User       string `koanf:"user"`
	Password   string `koanf:"password"`
	BucketName string `koanf:"bucketname"`
	Secure     bool   `koanf:"secure"`
}

// VectorConfig selects and configures the vector database backend.
type VectorConfig struct {
	// Backend is either "embedded" or "milvus".
	Backend string `koanf:"backend" validate:"oneof=embedded milvus"`
	// Dir is the embedded backend's storage root (directory per collection
	// plus the metadata catalog).
	Dir    string `koanf:"dir"`
	Milvus struct {
		Host string `koanf:"host"`
		Port string `koanf:"port"`
	} `koanf:"milvus"`
}

// PruneConfig tunes the data-pruning reconciler.
type PruneConfig struct {
	// LockTTL bounds how long a crashed run can hold the Redis run lock.
	LockTTL time.Duration `koanf:"lockttl"`
}

// Init - Assign global config to decoded config struct
func Init(filePath string) error {
	k := koanf.New(".")
	parser := yaml.Parser()

	if err := k.Load(confmap.Provider(map[string]any{
		"database.driver":  "sqlite",
		"database.path":    "data/chat.db",
		"storage.provider": "local",
		"vector.backend":   "embedded",
		"prune.lockttl":    30 * time.Minute,
	}, "."), nil); err != nil {
		log.Fatal(err.Error())
	}

	if err := k.Load(file.Provider(filePath), parser); err != nil {
		log.Fatal(err.Error())
	}

	if err := k.Load(env.ProviderWithValue("CFG_", ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CFG_")), "_", ".")
		if strings.Contains(v, ",") {
			return key, strings.Split(strings.TrimSpace(v), ",")
		}
		return key, v
	}), nil); err != nil {
		return err
	}

	if err := k.Unmarshal("", &Config); err != nil {
		return err
	}

	return ValidateConfig(&Config)
}

// ValidateConfig is for custom validation rules for the configuration
func ValidateConfig(cfg *AppConfig) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}
