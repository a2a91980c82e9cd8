package service

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// clearCaches removes the configured transient cache directories.
// They hold derived artifacts that are cheap to regenerate, so no
// liveness check is needed; each root is recreated empty.
func (s *Service) clearCaches() {
	for _, dir := range s.cacheDirs {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to clear cache directory",
				zap.String("dir", dir), zap.Error(err))
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Warn("failed to recreate cache directory",
				zap.String("dir", dir), zap.Error(err))
			continue
		}
		s.logger.Debug("cleared cache directory", zap.String("dir", dir))
	}
}

// compact reclaims storage freed by the run's deletions, in the
// relational engine and in the vector backend's own catalog.
func (s *Service) compact(ctx context.Context) {
	if err := s.repository.Vacuum(ctx); err != nil {
		s.logger.Warn("database compaction failed", zap.Error(err))
	}
	if err := s.vector.Compact(ctx); err != nil {
		s.logger.Warn("vector store compaction failed", zap.Error(err))
	}
}
