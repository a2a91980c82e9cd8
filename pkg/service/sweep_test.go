package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gofrs/uuid"

	"github.com/chatstack/chat-backend/pkg/vectordb"
)

func TestUploadEntryFileID(t *testing.T) {
	c := qt.New(t)

	validID := uuid.Must(uuid.NewV4()).String()
	tests := []struct {
		name     string
		entry    string
		expected string
		ok       bool
	}{
		{"conforming name", validID + "_report.pdf", validID, true},
		{"underscores in filename", validID + "_my_report_v2.pdf", validID, true},
		{"no delimiter", "README", "", false},
		{"prefix is not a uuid", "not-a-uuid_file.txt", "", false},
		{"unhyphenated hex prefix", "0123456789abcdef0123456789abcdef_x.txt", "", false},
		{"empty prefix", "_file.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := uploadEntryFileID(tt.entry)
			c.Check(ok, qt.Equals, tt.ok)
			c.Check(id, qt.Equals, tt.expected)
		})
	}
}

func TestSweepUploadDir(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner")
	kept := env.seedFile(t, owner.ID)
	env.seedKnowledgeBase(t, owner.ID, kept.ID)

	// A blob stranded by a crashed prior run: conforming name, no record.
	strandedID := uuid.Must(uuid.NewV4()).String()
	stranded := filepath.Join(env.uploadDir, strandedID+"_ghost.txt")
	c.Assert(os.WriteFile(stranded, []byte("x"), 0o644), qt.IsNil)

	// Non-conforming names must never be deleted, live record or not.
	odd := filepath.Join(env.uploadDir, "weird name !@#.dat")
	c.Assert(os.WriteFile(odd, []byte("x"), 0o644), qt.IsNil)

	c.Assert(env.svc.PruneData(ctx, PruneParams{}), qt.IsNil)

	_, err := os.Stat(stranded)
	c.Check(os.IsNotExist(err), qt.IsTrue)
	_, err = os.Stat(odd)
	c.Check(err, qt.IsNil)
	_, err = os.Stat(filepath.Join(env.uploadDir, kept.Path))
	c.Check(err, qt.IsNil)
}

func TestSweepVectorDir_StrandedCollection(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner")
	kept := env.seedFile(t, owner.ID)
	env.seedKnowledgeBase(t, owner.ID, kept.ID)

	// A collection whose file record vanished without the drop landing.
	strandedID := uuid.Must(uuid.NewV4()).String()
	c.Assert(env.vector.CreateCollection(ctx, FileCollectionName(strandedID)), qt.IsNil)

	// A directory with no catalog entry at all.
	uncataloged := filepath.Join(env.vectorRoot, uuid.Must(uuid.NewV4()).String())
	c.Assert(os.MkdirAll(uncataloged, 0o755), qt.IsNil)

	c.Assert(env.svc.PruneData(ctx, PruneParams{}), qt.IsNil)

	has, err := env.vector.HasCollection(ctx, FileCollectionName(strandedID))
	c.Assert(err, qt.IsNil)
	c.Check(has, qt.IsFalse)

	_, err = os.Stat(uncataloged)
	c.Check(os.IsNotExist(err), qt.IsTrue)

	// The kept file's collection and the catalog itself are untouched.
	has, err = env.vector.HasCollection(ctx, FileCollectionName(kept.ID))
	c.Assert(err, qt.IsNil)
	c.Check(has, qt.IsTrue)
	_, err = os.Stat(filepath.Join(env.vectorRoot, vectordb.CatalogFileName))
	c.Check(err, qt.IsNil)
}

// remoteOnlyVector wraps the embedded backend but hides its physical
// catalog, behaving like a remote engine.
type remoteOnlyVector struct {
	vectordb.VectorDatabase
}

func TestSweepVectorDir_SkippedWithoutCatalog(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	env.svc.vector = remoteOnlyVector{env.svc.vector}

	// Stranded directory that a catalog-less sweep must not touch.
	stray := filepath.Join(env.vectorRoot, uuid.Must(uuid.NewV4()).String())
	c.Assert(os.MkdirAll(stray, 0o755), qt.IsNil)

	c.Assert(env.svc.PruneData(ctx, PruneParams{}), qt.IsNil)

	_, err := os.Stat(stray)
	c.Check(err, qt.IsNil)
}
