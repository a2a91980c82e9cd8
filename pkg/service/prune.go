package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/chatstack/chat-backend/pkg/customerror"
	"github.com/chatstack/chat-backend/pkg/repository"
)

// pruneLockKey is the Redis key guarding against concurrent runs.
const pruneLockKey = "prune:data:lock"

// PruneParams configures a data-pruning run.
type PruneParams struct {
	// Days is the age cutoff for chats; chats whose updated_at is at
	// least this many days old are deleted. Nil disables age-based chat
	// pruning.
	Days *int `json:"days"`
	// ExemptArchivedChats keeps archived chats regardless of age.
	ExemptArchivedChats bool `json:"exempt_archived_chats"`
}

// PruneData reconciles the relational store, the blob storage, the
// vector database and the on-disk directories against the set of live
// users. The run is synchronous and idempotent: every delete tolerates
// an already-absent target, and a second run over unchanged state
// deletes nothing.
//
// Stages run in order: chat pruning, file reconciliation, knowledge
// base reconciliation, owner-scoped entities, physical sweeps, cache
// clearing and compaction. A stage failure is logged and remembered
// while later stages still run; deletions committed before a failure
// stay committed and convergence is re-established by the next run.
func (s *Service) PruneData(ctx context.Context, params PruneParams) error {
	if params.Days != nil && *params.Days < 0 {
		return fmt.Errorf("days must be non-negative")
	}

	unlock, err := s.acquireRunLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s.logger.Info("prune run started",
		zap.Any("days", params.Days),
		zap.Bool("exempt_archived_chats", params.ExemptArchivedChats))

	userIDs, err := s.repository.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	liveUsers := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		liveUsers[id] = struct{}{}
	}

	var runErr error
	fail := func(stage string, err error) {
		s.logger.Error("prune stage failed", zap.String("stage", stage), zap.Error(err))
		if runErr == nil {
			runErr = fmt.Errorf("%s: %w", stage, err)
		}
	}

	if err := s.pruneChats(ctx, params, liveUsers); err != nil {
		fail("chat pruning", err)
	}
	if err := s.pruneFiles(ctx, liveUsers); err != nil {
		fail("file reconciliation", err)
	}
	if err := s.pruneKnowledgeBases(ctx, liveUsers); err != nil {
		fail("knowledge base reconciliation", err)
	}
	if err := s.pruneOwnedEntities(ctx, liveUsers); err != nil {
		fail("owned entity reconciliation", err)
	}
	if err := s.sweepUploadDir(ctx); err != nil {
		fail("upload directory sweep", err)
	}
	if err := s.sweepVectorDir(ctx); err != nil {
		fail("vector directory sweep", err)
	}

	// Cache clearing and compaction are optimizations; their failures
	// never fail the run.
	s.clearCaches()
	s.compact(ctx)

	if runErr != nil {
		return runErr
	}
	s.logger.Info("prune run complete")
	return nil
}

// acquireRunLock enforces at-most-one active reconciliation. Deletes
// are individually idempotent, but concurrent runs racing on the same
// directories would double-count and double-log.
func (s *Service) acquireRunLock(ctx context.Context) (func(), error) {
	if s.redisClient == nil {
		if !s.pruneMu.TryLock() {
			return nil, customerror.ErrPruneInProgress
		}
		return s.pruneMu.Unlock, nil
	}

	token := uuid.Must(uuid.NewV4()).String()
	ok, err := s.redisClient.SetNX(ctx, pruneLockKey, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !ok {
		return nil, customerror.ErrPruneInProgress
	}
	return func() {
		// Release only if the lock is still ours; a run that outlived
		// the TTL must not free a successor's lock.
		val, err := s.redisClient.Get(context.Background(), pruneLockKey).Result()
		if err == nil && val == token {
			s.redisClient.Del(context.Background(), pruneLockKey)
		}
	}, nil
}

// chatExpired reports whether the chat falls outside the age cutoff.
func chatExpired(chat repository.ChatModel, params PruneParams, now int64) bool {
	if params.Days == nil {
		return false
	}
	if params.ExemptArchivedChats && chat.Archived {
		return false
	}
	cutoff := now - int64(*params.Days)*86400
	return chat.UpdatedAt <= cutoff
}

// pruneChats deletes chats that are either past the age cutoff or
// owned by a user that no longer exists. A chat's own age and archival
// status are authoritative; file references inside it do not keep it
// alive.
func (s *Service) pruneChats(ctx context.Context, params PruneParams, liveUsers map[string]struct{}) error {
	chats, err := s.repository.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("listing chats: %w", err)
	}

	now := time.Now().Unix()
	deleted, failed := 0, 0
	for _, chat := range chats {
		_, ownerLive := liveUsers[chat.UserID]
		if ownerLive && !chatExpired(chat, params, now) {
			continue
		}
		if err := s.repository.DeleteChat(ctx, chat.ID); err != nil {
			s.logger.Error("failed to delete chat", zap.String("chat_id", chat.ID), zap.Error(err))
			failed++
			continue
		}
		s.logger.Debug("deleted chat", zap.String("chat_id", chat.ID))
		deleted++
	}
	s.logger.Info("chat pruning finished", zap.Int("deleted", deleted), zap.Int("failed", failed))
	return nil
}

// pruneFiles deletes every file that has no live owner or no live
// reference. The reference set is recomputed from the already-pruned
// chats and knowledge bases, so files only referenced by deleted chats
// are reclaimed in the same run.
func (s *Service) pruneFiles(ctx context.Context, liveUsers map[string]struct{}) error {
	files, err := s.repository.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	chats, err := s.repository.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("listing chats: %w", err)
	}
	kbs, err := s.repository.ListKnowledgeBases(ctx)
	if err != nil {
		return fmt.Errorf("listing knowledge bases: %w", err)
	}
	refs := s.referencedFileIDs(chats, kbs)

	deleted, failed := 0, 0
	for _, file := range files {
		_, ownerLive := liveUsers[file.UserID]
		_, referenced := refs[file.ID]
		if ownerLive && referenced {
			continue
		}
		if err := s.deleteFileEverywhere(ctx, file); err != nil {
			// Abandon this file for the run; the physical sweep or the
			// next run picks up whatever is left.
			s.logger.Error("failed to delete file", zap.String("file_id", file.ID), zap.Error(err))
			failed++
			continue
		}
		deleted++
	}
	s.logger.Info("file reconciliation finished", zap.Int("deleted", deleted), zap.Int("failed", failed))
	return nil
}

// deleteFileEverywhere removes a file's blob, vector collection and
// relational record, in that order. An already-absent blob or
// collection is success; the record must still go.
func (s *Service) deleteFileEverywhere(ctx context.Context, file repository.FileModel) error {
	if file.Path != "" {
		if _, err := s.blob.DeleteFile(ctx, file.Path); err != nil {
			return fmt.Errorf("deleting blob %q: %w", file.Path, err)
		}
	}
	if _, err := s.vector.DropCollection(ctx, FileCollectionName(file.ID)); err != nil {
		return fmt.Errorf("dropping vector collection: %w", err)
	}
	if err := s.repository.DeleteFile(ctx, file.ID); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	s.logger.Debug("deleted file", zap.String("file_id", file.ID))
	return nil
}

// pruneKnowledgeBases deletes knowledge bases whose owner is gone,
// along with their vector collection. Knowledge bases are roots, not
// leaves: their contents are not reference-checked against anything.
func (s *Service) pruneKnowledgeBases(ctx context.Context, liveUsers map[string]struct{}) error {
	kbs, err := s.repository.ListKnowledgeBases(ctx)
	if err != nil {
		return fmt.Errorf("listing knowledge bases: %w", err)
	}

	deleted, failed := 0, 0
	for _, kb := range kbs {
		if _, ownerLive := liveUsers[kb.UserID]; ownerLive {
			continue
		}
		if _, err := s.vector.DropCollection(ctx, kb.ID); err != nil {
			s.logger.Error("failed to drop knowledge base collection",
				zap.String("kb_id", kb.ID), zap.Error(err))
			failed++
			continue
		}
		if err := s.repository.DeleteKnowledgeBase(ctx, kb.ID); err != nil {
			s.logger.Error("failed to delete knowledge base",
				zap.String("kb_id", kb.ID), zap.Error(err))
			failed++
			continue
		}
		s.logger.Debug("deleted knowledge base", zap.String("kb_id", kb.ID))
		deleted++
	}
	s.logger.Info("knowledge base reconciliation finished",
		zap.Int("deleted", deleted), zap.Int("failed", failed))
	return nil
}

// pruneOwnedEntities deletes notes, prompts, model presets and folders
// whose owner is gone. None of these carry a sub-reference graph;
// folder deletion does not cascade into chats since the chat stage is
// authoritative for chat lifecycle.
func (s *Service) pruneOwnedEntities(ctx context.Context, liveUsers map[string]struct{}) error {
	notes, err := s.repository.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("listing notes: %w", err)
	}
	prompts, err := s.repository.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("listing prompts: %w", err)
	}
	models, err := s.repository.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}
	folders, err := s.repository.ListFolders(ctx)
	if err != nil {
		return fmt.Errorf("listing folders: %w", err)
	}

	notesDeleted, promptsDeleted, modelsDeleted, foldersDeleted := 0, 0, 0, 0
	for _, note := range notes {
		if _, live := liveUsers[note.UserID]; live {
			continue
		}
		if err := s.repository.DeleteNote(ctx, note.ID); err != nil {
			s.logger.Error("failed to delete note", zap.String("note_id", note.ID), zap.Error(err))
			continue
		}
		s.logger.Debug("deleted note", zap.String("note_id", note.ID))
		notesDeleted++
	}
	for _, prompt := range prompts {
		if _, live := liveUsers[prompt.UserID]; live {
			continue
		}
		if err := s.repository.DeletePrompt(ctx, prompt.Command); err != nil {
			s.logger.Error("failed to delete prompt", zap.String("command", prompt.Command), zap.Error(err))
			continue
		}
		s.logger.Debug("deleted prompt", zap.String("command", prompt.Command))
		promptsDeleted++
	}
	for _, model := range models {
		if _, live := liveUsers[model.UserID]; live {
			continue
		}
		if err := s.repository.DeleteModel(ctx, model.ID); err != nil {
			s.logger.Error("failed to delete model", zap.String("model_id", model.ID), zap.Error(err))
			continue
		}
		s.logger.Debug("deleted model", zap.String("model_id", model.ID))
		modelsDeleted++
	}
	for _, folder := range folders {
		if _, live := liveUsers[folder.UserID]; live {
			continue
		}
		if err := s.repository.DeleteFolder(ctx, folder.ID, false); err != nil {
			s.logger.Error("failed to delete folder", zap.String("folder_id", folder.ID), zap.Error(err))
			continue
		}
		s.logger.Debug("deleted folder", zap.String("folder_id", folder.ID))
		foldersDeleted++
	}

	s.logger.Info("owned entity reconciliation finished",
		zap.Int("notes", notesDeleted),
		zap.Int("prompts", promptsDeleted),
		zap.Int("models", modelsDeleted),
		zap.Int("folders", foldersDeleted))
	return nil
}
