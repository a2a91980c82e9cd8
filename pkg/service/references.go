package service

import (
	"encoding/json"
	"regexp"

	"go.uber.org/zap"

	"github.com/chatstack/chat-backend/pkg/repository"
)

// fileRefPattern recovers file references from a chat transcript. The
// transcript schema belongs to the conversation subsystem and varies
// across client versions, so references are found by a best-effort
// text scan of the raw JSON rather than a structured parse.
var fileRefPattern = regexp.MustCompile(`"file_id":\s*"([^"]+)"`)

// FileCollectionName returns the vector collection holding a file's
// embeddings.
func FileCollectionName(fileID string) string {
	return "file-" + fileID
}

// extractChatFileIDs scans a chat content blob for file references.
func extractChatFileIDs(content []byte) []string {
	matches := fileRefPattern.FindAllSubmatch(content, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, string(m[1]))
	}
	return ids
}

// kbData carries the two historical shapes of the knowledge base
// reference list: a flat "file_ids" array and a "files" array whose
// elements are either bare IDs or {"id": ...} objects. Both are
// normalized to plain IDs here and never propagated further.
type kbData struct {
	FileIDs []string          `json:"file_ids"`
	Files   []json.RawMessage `json:"files"`
}

// extractKBFileIDs returns the file IDs referenced by a knowledge
// base. Malformed data yields no references and a warning; a single
// corrupt record must not block the reconciliation of everything else.
func extractKBFileIDs(kb repository.KnowledgeBaseModel, logger *zap.Logger) []string {
	if len(kb.Data) == 0 {
		return nil
	}

	var data kbData
	if err := json.Unmarshal(kb.Data, &data); err != nil {
		logger.Warn("knowledge base has malformed data, skipping its references",
			zap.String("kb_id", kb.ID), zap.Error(err))
		return nil
	}

	ids := make([]string, 0, len(data.FileIDs)+len(data.Files))
	ids = append(ids, data.FileIDs...)

	for _, raw := range data.Files {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != "" {
			ids = append(ids, obj.ID)
			continue
		}
		logger.Warn("knowledge base file entry has unrecognized shape, skipping",
			zap.String("kb_id", kb.ID))
	}
	return ids
}

// referencedFileIDs computes the live-by-reference set from the current
// chats and knowledge bases.
func (s *Service) referencedFileIDs(chats []repository.ChatModel, kbs []repository.KnowledgeBaseModel) map[string]struct{} {
	refs := map[string]struct{}{}
	for _, chat := range chats {
		for _, id := range extractChatFileIDs(chat.Chat) {
			refs[id] = struct{}{}
		}
	}
	for _, kb := range kbs {
		for _, id := range extractKBFileIDs(kb, s.logger) {
			refs[id] = struct{}{}
		}
	}
	return refs
}
