package placeholder

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/internal/logger"
	payloadmemory "github.com/hollowfs/hollowfs/pkg/payload/memory"
	"github.com/hollowfs/hollowfs/pkg/reparse"
	"github.com/hollowfs/hollowfs/pkg/volume"
	volumememory "github.com/hollowfs/hollowfs/pkg/volume/memory"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// testVendor is the vendor GUID stamped on test markers.
var testVendor = uuid.MustParse("d9144b59-4512-43d2-96d1-d50c99f0f9ad")

// instrumentedVolume wraps a real volume to observe and shape its stream
// traffic: it counts index-stream opens and positioned transfers, can cap
// the bytes a single ReadAt/WriteAt moves, and can inject failures.
type instrumentedVolume struct {
	volume.Volume

	// readChunk and writeChunk cap the bytes one positioned call transfers.
	// Zero means unlimited.
	readChunk  int
	writeChunk int

	// failIndexOpen makes index-stream opens fail with an I/O error.
	failIndexOpen bool

	// zeroReads and zeroWrites make positioned calls return 0, nil.
	zeroReads  bool
	zeroWrites bool

	indexOpens int
	readCalls  int
	writeCalls int
}

func (v *instrumentedVolume) OpenStream(ctx context.Context, obj *volume.Object, name string) (volume.Stream, error) {
	if name == volume.IndexStream {
		v.indexOpens++
		if v.failIndexOpen {
			return nil, &volume.Error{Code: volume.ErrIOError, Message: "index unavailable"}
		}
	}

	stream, err := v.Volume.OpenStream(ctx, obj, name)
	if err != nil {
		return nil, err
	}
	return &instrumentedStream{Stream: stream, vol: v}, nil
}

type instrumentedStream struct {
	volume.Stream
	vol *instrumentedVolume
}

func (s *instrumentedStream) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	s.vol.readCalls++
	if s.vol.zeroReads {
		return 0, nil
	}
	if c := s.vol.readChunk; c > 0 && len(p) > c {
		p = p[:c]
	}
	return s.Stream.ReadAt(ctx, p, off)
}

func (s *instrumentedStream) WriteAt(ctx context.Context, p []byte, off int64) (int, error) {
	s.vol.writeCalls++
	if s.vol.zeroWrites {
		return 0, nil
	}
	if c := s.vol.writeChunk; c > 0 && len(p) > c {
		p = p[:c]
	}
	return s.Stream.WriteAt(ctx, p, off)
}

// harness bundles a handler, an instrumented memory volume, and the helpers
// the operation tests share.
type harness struct {
	t       *testing.T
	ctx     *Context
	vol     *instrumentedVolume
	handler *DefaultHandler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	inner, err := volumememory.New(context.Background(), payloadmemory.New())
	require.NoError(t, err)

	vol := &instrumentedVolume{Volume: inner}
	return &harness{
		t:       t,
		ctx:     &Context{Context: context.Background(), Volume: vol},
		vol:     vol,
		handler: &DefaultHandler{},
	}
}

// marker encodes a placeholder marker blob with the given tag.
func (h *harness) marker(tag reparse.Tag) []byte {
	h.t.Helper()

	m := &reparse.Marker{Tag: tag, VendorID: testVendor, Name: "OneDrive"}
	raw, err := m.Encode()
	require.NoError(h.t, err)
	return raw
}

func (h *harness) root() *volume.Object {
	h.t.Helper()

	root, err := h.vol.Root(h.ctx.Context)
	require.NoError(h.t, err)
	return root
}

func (h *harness) mkdir(parent *volume.Object, name string) *volume.Object {
	h.t.Helper()

	dir, err := h.vol.Create(h.ctx.Context, parent, name, volume.KindDirectory, 0)
	require.NoError(h.t, err)
	return dir
}

// mkfile creates a leaf and fills its data stream through the volume layer,
// bypassing the handler under test.
func (h *harness) mkfile(parent *volume.Object, name string, content []byte) *volume.Object {
	h.t.Helper()

	leaf, err := h.vol.Create(h.ctx.Context, parent, name, volume.KindFile, 0)
	require.NoError(h.t, err)

	if len(content) > 0 {
		stream, err := h.vol.Volume.OpenStream(h.ctx.Context, leaf, volume.DataStream)
		require.NoError(h.t, err)
		_, err = stream.WriteAt(h.ctx.Context, content, 0)
		require.NoError(h.t, err)
		require.NoError(h.t, stream.Close())
	}
	return leaf
}
