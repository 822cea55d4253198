package render

import (
	"strings"
	"testing"

	"github.com/opentui/core"
)

func newTestBuffer(cols, rows int) *core.OptimizedBuffer {
	return core.NewOptimizedBuffer(cols, rows, core.Opaque(1, 1, 1), core.Opaque(0, 0, 0), nil)
}

func TestSnapshotFrameCapturesDrawnText(t *testing.T) {
	buf := newTestBuffer(10, 2)
	buf.DrawText("Hi", 0, 0, core.Opaque(1, 1, 1), core.Opaque(0, 0, 0), 0)
	f := SnapshotFrame(buf)
	if f.Cols != 10 || f.Rows != 2 {
		t.Fatalf("unexpected frame size %dx%d", f.Cols, f.Rows)
	}
	c, ok := f.at(0, 0)
	if !ok || c.Codepoint != 'H' {
		t.Fatalf("expected 'H' at (0,0), got %+v ok=%v", c, ok)
	}
}

func TestEncodeFullRenderEmitsAllCells(t *testing.T) {
	buf := newTestBuffer(3, 1)
	buf.DrawText("abc", 0, 0, core.Opaque(1, 1, 1), core.Opaque(0, 0, 0), 0)
	cur := SnapshotFrame(buf)

	var sb strings.Builder
	Encoder{}.Encode(&sb, Frame{}, cur, 0, 0, true)
	out := sb.String()
	if !strings.Contains(out, "abc") {
		t.Fatalf("expected encoded output to contain \"abc\", got %q", out)
	}
}

func TestEncodeSkipsUnchangedCells(t *testing.T) {
	buf := newTestBuffer(5, 1)
	buf.DrawText("hello", 0, 0, core.Opaque(1, 1, 1), core.Opaque(0, 0, 0), 0)
	prev := SnapshotFrame(buf)

	buf2 := newTestBuffer(5, 1)
	buf2.DrawText("hXllo", 0, 0, core.Opaque(1, 1, 1), core.Opaque(0, 0, 0), 0)
	cur := SnapshotFrame(buf2)

	var sb strings.Builder
	Encoder{}.Encode(&sb, prev, cur, 0, 0, false)
	out := sb.String()
	if strings.Contains(out, "hello") {
		t.Fatalf("expected unchanged run to be skipped, got %q", out)
	}
	if !strings.Contains(out, "X") {
		t.Fatalf("expected the changed cell to be emitted, got %q", out)
	}
}

func TestWriterBufferedModeRequiresDrainBeforeNextFlush(t *testing.T) {
	w := NewBufferedWriter()
	if err := w.Flush([]byte("frame1")); err != nil {
		t.Fatalf("first flush should succeed: %v", err)
	}
	if err := w.Flush([]byte("frame2")); err != ErrPendingDrain {
		t.Fatalf("expected ErrPendingDrain, got %v", err)
	}
	got := w.Drain()
	if string(got) != "frame1" {
		t.Fatalf("expected drained bytes %q, got %q", "frame1", got)
	}
	if err := w.Flush([]byte("frame2")); err != nil {
		t.Fatalf("flush after drain should succeed: %v", err)
	}
}
