package object

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	storage, err := NewLocalStorage(t.TempDir(), zap.NewNop())
	c.Assert(err, qt.IsNil)

	c.Assert(storage.SaveFile(ctx, "abc_doc.txt", []byte("hello")), qt.IsNil)

	content, err := storage.ReadFile(ctx, "abc_doc.txt")
	c.Assert(err, qt.IsNil)
	c.Check(string(content), qt.Equals, "hello")

	status, err := storage.DeleteFile(ctx, "abc_doc.txt")
	c.Assert(err, qt.IsNil)
	c.Check(status, qt.Equals, Deleted)

	_, err = storage.ReadFile(ctx, "abc_doc.txt")
	c.Check(err, qt.IsNotNil)
}

func TestLocalStorage_DeleteMissingIsNotAnError(t *testing.T) {
	c := qt.New(t)

	storage, err := NewLocalStorage(t.TempDir(), zap.NewNop())
	c.Assert(err, qt.IsNil)

	status, err := storage.DeleteFile(context.Background(), "never_was_here.bin")
	c.Assert(err, qt.IsNil)
	c.Check(status, qt.Equals, AlreadyAbsent)

	// Deleting twice converges on the same answer.
	status, err = storage.DeleteFile(context.Background(), "never_was_here.bin")
	c.Assert(err, qt.IsNil)
	c.Check(status, qt.Equals, AlreadyAbsent)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	c := qt.New(t)

	storage, err := NewLocalStorage(t.TempDir(), zap.NewNop())
	c.Assert(err, qt.IsNil)

	c.Check(storage.SaveFile(context.Background(), "/etc/passwd", []byte("x")), qt.IsNotNil)
}

func TestLocalStorage_NestedPaths(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	storage, err := NewLocalStorage(t.TempDir(), zap.NewNop())
	c.Assert(err, qt.IsNil)

	c.Assert(storage.SaveFile(ctx, "sub/dir/blob.bin", []byte("x")), qt.IsNil)
	content, err := storage.ReadFile(ctx, "sub/dir/blob.bin")
	c.Assert(err, qt.IsNil)
	c.Check(content, qt.DeepEquals, []byte("x"))
}
