package memory

import (
	"context"
	"errors"
	"testing"

	payloadpkg "github.com/hollowfs/hollowfs/pkg/payload"
	payloadmemory "github.com/hollowfs/hollowfs/pkg/payload/memory"
	"github.com/hollowfs/hollowfs/pkg/volume"
	volumetesting "github.com/hollowfs/hollowfs/pkg/volume/testing"
)

// TestMemoryVolume runs the complete volume test suite against the
// in-memory implementation backed by in-memory payloads.
func TestMemoryVolume(t *testing.T) {
	suite := &volumetesting.VolumeTestSuite{
		NewVolume: func(t *testing.T) volume.Volume {
			vol, err := New(context.Background(), payloadmemory.New())
			if err != nil {
				t.Fatalf("Failed to create memory volume: %v", err)
			}
			return vol
		},
	}

	suite.Run(t)
}

// TestUnlinkDeletesPayload checks that destroying a leaf removes its bytes
// from the payload store, not just the object record.
func TestUnlinkDeletesPayload(t *testing.T) {
	ctx := context.Background()
	payloads := payloadmemory.New()

	vol, err := New(ctx, payloads)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	root, err := vol.Root(ctx)
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}

	leaf, err := vol.Create(ctx, root, "doomed", volume.KindFile, 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stream, err := vol.OpenStream(ctx, leaf, volume.DataStream)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	if _, err := stream.WriteAt(ctx, []byte("payload bytes"), 0); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	key := payloadKey(leaf.ID, volume.DataStream)
	if _, err := payloads.Size(ctx, key); err != nil {
		t.Fatalf("Payload should exist before unlink: %v", err)
	}

	if err := vol.Unlink(ctx, root, "/doomed", leaf, "doomed"); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}

	if _, err := payloads.Size(ctx, key); !errors.Is(err, payloadpkg.ErrNotFound) {
		t.Fatalf("Payload should be gone after the last unlink, got %v", err)
	}
}

// TestCreateLeafSeedsEmptyPayload checks that a fresh leaf has a payload
// from birth, so resize and read work before the first write.
func TestCreateLeafSeedsEmptyPayload(t *testing.T) {
	ctx := context.Background()
	payloads := payloadmemory.New()

	vol, err := New(ctx, payloads)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	root, err := vol.Root(ctx)
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}

	leaf, err := vol.Create(ctx, root, "fresh", volume.KindFile, 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	size, err := payloads.Size(ctx, payloadKey(leaf.ID, volume.DataStream))
	if err != nil {
		t.Fatalf("Payload should exist for a fresh leaf: %v", err)
	}
	if size != 0 {
		t.Fatalf("Fresh payload should be empty, got %d bytes", size)
	}

	// Resize before any write hits the eagerly created payload.
	stream, err := vol.OpenStream(ctx, leaf, volume.DataStream)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	defer stream.Close()

	if err := stream.Resize(ctx, 2048); err != nil {
		t.Fatalf("Resize on a never-written leaf failed: %v", err)
	}
	if got := stream.Size(); got != 2048 {
		t.Fatalf("Expected size 2048 after resize, got %d", got)
	}
}
