package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/chatstack/chat-backend/pkg/vectordb"
)

// uploadEntryFileID extracts the owning file ID from an upload-dir
// entry name. Uploads are stored as "<file id>_<original name>" with a
// canonical UUID as the ID. Anything that does not match the
// convention yields ok=false and is never a deletion candidate:
// ambiguous names are left untouched.
func uploadEntryFileID(name string) (id string, ok bool) {
	prefix, _, found := strings.Cut(name, "_")
	if !found || len(prefix) != 36 {
		return "", false
	}
	if _, err := uuid.FromString(prefix); err != nil {
		return "", false
	}
	return prefix, true
}

// sweepUploadDir removes upload-dir entries whose owning file record no
// longer exists. It runs after logical reconciliation and re-derives
// the live set from the pruned relational store, catching blobs
// stranded by crashed or partial prior runs.
func (s *Service) sweepUploadDir(ctx context.Context) error {
	if s.uploadDir == "" {
		s.logger.Debug("no upload directory configured, skipping sweep")
		return nil
	}

	files, err := s.repository.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	live := make(map[string]struct{}, len(files))
	for _, f := range files {
		live[f.ID] = struct{}{}
	}

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return fmt.Errorf("reading upload directory: %w", err)
	}

	removed, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := uploadEntryFileID(entry.Name())
		if !ok {
			s.logger.Warn("upload entry does not match the naming convention, leaving it",
				zap.String("entry", entry.Name()))
			skipped++
			continue
		}
		if _, isLive := live[id]; isLive {
			continue
		}
		if err := os.Remove(filepath.Join(s.uploadDir, entry.Name())); err != nil {
			s.logger.Error("failed to remove stranded upload",
				zap.String("entry", entry.Name()), zap.Error(err))
			continue
		}
		s.logger.Debug("removed stranded upload",
			zap.String("entry", entry.Name()), zap.String("file_id", id))
		removed++
	}
	s.logger.Info("upload directory sweep finished",
		zap.Int("removed", removed), zap.Int("skipped", skipped))
	return nil
}

// sweepVectorDir removes vector-storage directories that no longer
// correspond to a live file or knowledge base. It only applies to
// backends with a local directory-per-collection layout; directory
// names are internal identifiers that resolve to collection names only
// through the backend's metadata catalog. Without a readable catalog
// the sweep is skipped entirely: guessing liveness would risk deleting
// live data irreversibly.
func (s *Service) sweepVectorDir(ctx context.Context) error {
	catalog, ok := s.vector.(vectordb.PhysicalCatalog)
	if !ok {
		s.logger.Warn("vector backend exposes no local storage catalog, skipping vector directory sweep")
		return nil
	}

	entries, err := catalog.Collections(ctx)
	if err != nil {
		s.logger.Warn("vector catalog unreadable, skipping vector directory sweep", zap.Error(err))
		return nil
	}
	nameByDir := make(map[string]string, len(entries))
	for _, e := range entries {
		nameByDir[e.DirName] = e.Collection
	}

	files, err := s.repository.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	kbs, err := s.repository.ListKnowledgeBases(ctx)
	if err != nil {
		return fmt.Errorf("listing knowledge bases: %w", err)
	}
	live := make(map[string]struct{}, len(files)+len(kbs))
	for _, f := range files {
		live[FileCollectionName(f.ID)] = struct{}{}
	}
	for _, kb := range kbs {
		live[kb.ID] = struct{}{}
	}

	dirents, err := os.ReadDir(catalog.Root())
	if err != nil {
		return fmt.Errorf("reading vector root: %w", err)
	}

	removed := 0
	for _, dirent := range dirents {
		// The catalog database and its journal files live next to the
		// collection directories.
		if !dirent.IsDir() {
			continue
		}
		name, inCatalog := nameByDir[dirent.Name()]
		if inCatalog {
			if _, isLive := live[name]; isLive {
				continue
			}
			// Cataloged but dead: drop through the backend so the
			// catalog row goes with the directory.
			if _, err := s.vector.DropCollection(ctx, name); err != nil {
				s.logger.Error("failed to drop stranded collection",
					zap.String("collection", name), zap.Error(err))
				continue
			}
			s.logger.Debug("removed stranded vector collection",
				zap.String("collection", name), zap.String("dir", dirent.Name()))
			removed++
			continue
		}
		// No catalog entry at all: the directory is unreachable by the
		// backend and safe to remove.
		if err := os.RemoveAll(filepath.Join(catalog.Root(), dirent.Name())); err != nil {
			s.logger.Error("failed to remove uncataloged vector directory",
				zap.String("dir", dirent.Name()), zap.Error(err))
			continue
		}
		s.logger.Debug("removed uncataloged vector directory", zap.String("dir", dirent.Name()))
		removed++
	}
	s.logger.Info("vector directory sweep finished", zap.Int("removed", removed))
	return nil
}
