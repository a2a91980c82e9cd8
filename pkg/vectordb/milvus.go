package vectordb

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"
)

// Default schema for collections created through this adapter. The
// embedding dimensionality matches the deployment's embedding model.
const (
	milvusVectorDim      = 1536
	milvusFieldID        = "id"
	milvusFieldEmbedding = "embedding"

	// tolerance window passed to manual compaction requests
	compactionTolerance = 10 * time.Second
)

type milvusDB struct {
	c      client.Client
	logger *zap.Logger
}

// NewMilvus connects to a Milvus deployment. Milvus owns its storage
// remotely, so this backend does not implement PhysicalCatalog and the
// physical vector sweep degrades to a no-op.
func NewMilvus(ctx context.Context, host, port string, logger *zap.Logger) (VectorDatabase, error) {
	c, err := client.NewGrpcClient(ctx, host+":"+port)
	if err != nil {
		return nil, fmt.Errorf("connecting to milvus: %w", err)
	}
	return &milvusDB{c: c, logger: logger}, nil
}

func (m *milvusDB) CreateCollection(ctx context.Context, name string) error {
	has, err := m.c.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if has {
		m.logger.Debug("collection already exists", zap.String("name", name))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: name,
		Fields: []*entity.Field{
			{Name: milvusFieldID, DataType: entity.FieldTypeVarChar, PrimaryKey: true,
				TypeParams: map[string]string{"max_length": "255"}},
			{Name: milvusFieldEmbedding, DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", milvusVectorDim)}},
		},
	}
	if err := m.c.CreateCollection(ctx, schema, 1); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (m *milvusDB) HasCollection(ctx context.Context, name string) (bool, error) {
	return m.c.HasCollection(ctx, name)
}

func (m *milvusDB) DropCollection(ctx context.Context, name string) (DropStatus, error) {
	has, err := m.c.HasCollection(ctx, name)
	if err != nil {
		return AlreadyAbsent, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !has {
		return AlreadyAbsent, nil
	}
	if err := m.c.DropCollection(ctx, name); err != nil {
		return AlreadyAbsent, fmt.Errorf("failed to drop collection: %w", err)
	}
	return Dropped, nil
}

func (m *milvusDB) ListCollections(ctx context.Context) ([]string, error) {
	collections, err := m.c.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	names := make([]string, 0, len(collections))
	for _, coll := range collections {
		names = append(names, coll.Name)
	}
	return names, nil
}

// Compact requests a manual compaction per collection. Milvus handles
// the actual space reclamation asynchronously on the server.
func (m *milvusDB) Compact(ctx context.Context) error {
	names, err := m.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := m.c.ManualCompaction(ctx, name, compactionTolerance); err != nil {
			m.logger.Warn("manual compaction failed",
				zap.String("collection", name), zap.Error(err))
		}
	}
	return nil
}

func (m *milvusDB) Close() error {
	return m.c.Close()
}
