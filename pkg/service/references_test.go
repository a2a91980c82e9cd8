package service

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/chatstack/chat-backend/pkg/repository"
)

func TestExtractChatFileIDs(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "no references",
			content:  `{"title": "hello", "messages": []}`,
			expected: []string{},
		},
		{
			name:     "single reference",
			content:  `{"messages": {"m1": {"file_id": "abc-123"}}}`,
			expected: []string{"abc-123"},
		},
		{
			name:     "multiple references with whitespace",
			content:  `{"a": {"file_id":"f1"}, "b": {"file_id":   "f2"}}`,
			expected: []string{"f1", "f2"},
		},
		{
			name:     "file_id as non-string is ignored",
			content:  `{"file_id": 42}`,
			expected: []string{},
		},
		{
			name:     "not valid JSON still scans",
			content:  `garbage "file_id": "f3" trailing`,
			expected: []string{"f3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractChatFileIDs([]byte(tt.content))
			c.Check(got, qt.DeepEquals, tt.expected)
		})
	}
}

func TestExtractKBFileIDs(t *testing.T) {
	c := qt.New(t)
	logger := zap.NewNop()

	tests := []struct {
		name     string
		data     string
		expected []string
	}{
		{
			name:     "flat file_ids list",
			data:     `{"file_ids": ["f1", "f2"]}`,
			expected: []string{"f1", "f2"},
		},
		{
			name:     "files as objects",
			data:     `{"files": [{"id": "f3"}, {"id": "f4"}]}`,
			expected: []string{"f3", "f4"},
		},
		{
			name:     "files as bare ids",
			data:     `{"files": ["f5"]}`,
			expected: []string{"f5"},
		},
		{
			name:     "mixed shapes",
			data:     `{"file_ids": ["f1"], "files": ["f2", {"id": "f3"}]}`,
			expected: []string{"f1", "f2", "f3"},
		},
		{
			name:     "malformed data yields nothing",
			data:     `"not an object"`,
			expected: nil,
		},
		{
			name:     "unrecognized entry shape is skipped",
			data:     `{"files": [{"uid": "x"}, "f6"]}`,
			expected: []string{"f6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := repository.KnowledgeBaseModel{ID: "kb-1", Data: datatypes.JSON(tt.data)}
			got := extractKBFileIDs(kb, logger)
			c.Check(got, qt.DeepEquals, tt.expected)
		})
	}
}

func TestExtractKBFileIDs_EmptyData(t *testing.T) {
	c := qt.New(t)
	kb := repository.KnowledgeBaseModel{ID: "kb-empty"}
	c.Check(extractKBFileIDs(kb, zap.NewNop()), qt.IsNil)
}
