package badger

import (
	"context"
	"testing"

	payloadmemory "github.com/hollowfs/hollowfs/pkg/payload/memory"
	"github.com/hollowfs/hollowfs/pkg/volume"
	volumetesting "github.com/hollowfs/hollowfs/pkg/volume/testing"
)

// newTestVolume opens a badger volume in a per-test temp directory, closed
// automatically when the test finishes.
func newTestVolume(t *testing.T) *Volume {
	t.Helper()

	vol, err := New(context.Background(), Config{
		DBPath:   t.TempDir(),
		Payloads: payloadmemory.New(),
	})
	if err != nil {
		t.Fatalf("Failed to create badger volume: %v", err)
	}
	t.Cleanup(func() { _ = vol.Close() })
	return vol
}

// TestBadgerVolume runs the complete volume test suite against the BadgerDB
// implementation backed by in-memory payloads.
func TestBadgerVolume(t *testing.T) {
	suite := &volumetesting.VolumeTestSuite{
		NewVolume: func(t *testing.T) volume.Volume {
			return newTestVolume(t)
		},
	}

	suite.Run(t)
}

// TestRecordsSurviveReopen checks that objects, markers, and leaf sizes come
// back after closing and reopening the database, and that container size
// memos do not.
func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := t.TempDir()
	payloads := payloadmemory.New()

	vol, err := New(ctx, Config{DBPath: dbPath, Payloads: payloads})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	root, err := vol.Root(ctx)
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}

	dir, err := vol.Create(ctx, root, "docs", volume.KindDirectory, 0)
	if err != nil {
		t.Fatalf("Create directory failed: %v", err)
	}
	leaf, err := vol.Create(ctx, dir, "report.txt", volume.KindFile, 7)
	if err != nil {
		t.Fatalf("Create file failed: %v", err)
	}

	stream, err := vol.OpenStream(ctx, leaf, volume.DataStream)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	if _, err := stream.WriteAt(ctx, []byte("persisted bytes"), 0); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	marker := []byte{0x1a, 0x00, 0x00, 0x90, 0xff}
	if err := vol.SetMarker(ctx, leaf.ID, marker); err != nil {
		t.Fatalf("SetMarker failed: %v", err)
	}
	if err := vol.SetOffline(ctx, leaf.ID, true); err != nil {
		t.Fatalf("SetOffline failed: %v", err)
	}

	// Simulate a size memo on the container; it must not persist.
	dir.SizeKnown = true
	dir.DataSize = 4096
	dir.AllocatedSize = 4096

	leafID, dirID := leaf.ID, dir.ID

	if err := vol.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	vol, err = New(ctx, Config{DBPath: dbPath, Payloads: payloads})
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer vol.Close()

	reloaded, err := vol.Object(ctx, leafID)
	if err != nil {
		t.Fatalf("Object after reopen failed: %v", err)
	}
	if !reloaded.Offline {
		t.Error("Offline flag should survive reopen")
	}
	if !reloaded.SizeKnown || reloaded.DataSize != int64(len("persisted bytes")) {
		t.Errorf("Leaf size should survive reopen, got known=%v size=%d",
			reloaded.SizeKnown, reloaded.DataSize)
	}
	if reloaded.SecurityID != 7 {
		t.Errorf("SecurityID should survive reopen, got %d", reloaded.SecurityID)
	}

	blob, err := vol.Marker(ctx, leafID)
	if err != nil {
		t.Fatalf("Marker after reopen failed: %v", err)
	}
	if string(blob) != string(marker) {
		t.Errorf("Marker should survive reopen verbatim, got %x", blob)
	}

	reDir, err := vol.Object(ctx, dirID)
	if err != nil {
		t.Fatalf("Directory after reopen failed: %v", err)
	}
	if reDir.SizeKnown {
		t.Error("Container size memo must not survive reopen")
	}
}
