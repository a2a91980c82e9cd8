package repository

import (
	"context"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/chatstack/chat-backend/pkg/customerror"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrating test schema: %v", err)
	}
	return NewRepository(db)
}

func TestRepository_UserLifecycle(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.CreateUser(ctx, UserModel{ID: "u1", Name: "a", Email: "a@x"})
	c.Assert(err, qt.IsNil)
	_, err = repo.CreateUser(ctx, UserModel{ID: "u2", Name: "b", Email: "b@x"})
	c.Assert(err, qt.IsNil)

	ids, err := repo.ListUserIDs(ctx)
	c.Assert(err, qt.IsNil)
	c.Check(ids, qt.ContentEquals, []string{"u1", "u2"})

	c.Assert(repo.DeleteUser(ctx, "u1"), qt.IsNil)
	ids, err = repo.ListUserIDs(ctx)
	c.Assert(err, qt.IsNil)
	c.Check(ids, qt.DeepEquals, []string{"u2"})
}

func TestRepository_GetChatNotFound(t *testing.T) {
	c := qt.New(t)
	repo := newTestRepository(t)

	_, err := repo.GetChat(context.Background(), "missing")
	c.Check(err, qt.Equals, customerror.ErrNotFound)
}

func TestRepository_DeleteChatIsIdempotent(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.CreateChat(ctx, ChatModel{ID: "c1", UserID: "u1"})
	c.Assert(err, qt.IsNil)

	c.Assert(repo.DeleteChat(ctx, "c1"), qt.IsNil)
	// A second delete of the same row is not an error.
	c.Assert(repo.DeleteChat(ctx, "c1"), qt.IsNil)
}

func TestRepository_DeleteFolder(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	t.Run("cascade removes filed chats", func(t *testing.T) {
		repo := newTestRepository(t)
		folderID := "f1"
		_, err := repo.CreateFolder(ctx, FolderModel{ID: folderID, UserID: "u1", Name: "work"})
		c.Assert(err, qt.IsNil)
		_, err = repo.CreateChat(ctx, ChatModel{ID: "c1", UserID: "u1", FolderID: &folderID})
		c.Assert(err, qt.IsNil)

		c.Assert(repo.DeleteFolder(ctx, folderID, true), qt.IsNil)

		_, err = repo.GetChat(ctx, "c1")
		c.Check(err, qt.Equals, customerror.ErrNotFound)
	})

	t.Run("no cascade detaches filed chats", func(t *testing.T) {
		repo := newTestRepository(t)
		folderID := "f1"
		_, err := repo.CreateFolder(ctx, FolderModel{ID: folderID, UserID: "u1", Name: "work"})
		c.Assert(err, qt.IsNil)
		_, err = repo.CreateChat(ctx, ChatModel{ID: "c1", UserID: "u1", FolderID: &folderID})
		c.Assert(err, qt.IsNil)

		c.Assert(repo.DeleteFolder(ctx, folderID, false), qt.IsNil)

		chat, err := repo.GetChat(ctx, "c1")
		c.Assert(err, qt.IsNil)
		c.Check(chat.FolderID, qt.IsNil)

		folders, err := repo.ListFolders(ctx)
		c.Assert(err, qt.IsNil)
		c.Check(folders, qt.HasLen, 0)
	})
}

func TestRepository_Vacuum(t *testing.T) {
	c := qt.New(t)
	repo := newTestRepository(t)
	c.Check(repo.Vacuum(context.Background()), qt.IsNil)
}

func TestRepository_TimestampsDefaulted(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	repo := newTestRepository(t)

	file, err := repo.CreateFile(ctx, FileModel{ID: "f1", UserID: "u1", Filename: "a", Path: "p"})
	c.Assert(err, qt.IsNil)
	c.Check(file.CreatedAt > 0, qt.IsTrue)
	c.Check(file.UpdatedAt > 0, qt.IsTrue)

	// Explicit timestamps are preserved (pruning tests rely on this to
	// age records).
	chat, err := repo.CreateChat(ctx, ChatModel{ID: "c1", UserID: "u1", CreatedAt: 123, UpdatedAt: 123})
	c.Assert(err, qt.IsNil)
	c.Check(chat.UpdatedAt, qt.Equals, int64(123))
}
