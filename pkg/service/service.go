package service

import (
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chatstack/chat-backend/pkg/repository"
	"github.com/chatstack/chat-backend/pkg/repository/object"
	"github.com/chatstack/chat-backend/pkg/vectordb"
)

// Service implements the application use cases on top of the
// relational repository, the blob storage and the vector database.
type Service struct {
	repository repository.Repository
	blob       object.Storage
	vector     vectordb.VectorDatabase

	// redisClient guards against concurrent prune runs across
	// processes. When nil (tests, single-binary deployments) an
	// in-process mutex is used instead.
	redisClient *redis.Client
	lockTTL     time.Duration
	pruneMu     sync.Mutex

	uploadDir string
	cacheDirs []string

	logger *zap.Logger
}

// Config collects the collaborators and the on-disk roots a Service
// operates on. Roots are passed explicitly so tests can run against
// temporary directories.
type Config struct {
	Repository  repository.Repository
	Blob        object.Storage
	Vector      vectordb.VectorDatabase
	RedisClient *redis.Client
	LockTTL     time.Duration
	UploadDir   string
	CacheDirs   []string
	Logger      *zap.Logger
}

// NewService initiates a service instance
func NewService(cfg Config) *Service {
	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 30 * time.Minute
	}
	return &Service{
		repository:  cfg.Repository,
		blob:        cfg.Blob,
		vector:      cfg.Vector,
		redisClient: cfg.RedisClient,
		lockTTL:     lockTTL,
		uploadDir:   cfg.UploadDir,
		cacheDirs:   cfg.CacheDirs,
		logger:      cfg.Logger,
	}
}
