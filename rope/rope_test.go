package rope

import "testing"

func TestAppendAndSubstring(t *testing.T) {
	r := New(nil)
	r.Append([]byte("hello "))
	r.Append([]byte("world"))
	if got := r.Substring(0, r.LenChars()); got != "hello world" {
		t.Fatalf("Substring() = %q, want %q", got, "hello world")
	}
	if r.LenChars() != len("hello world") {
		t.Fatalf("LenChars() = %d", r.LenChars())
	}
}

func TestCRLFNormalization(t *testing.T) {
	r := FromBytes([]byte("a\r\nb\rc\nd"), true, nil)
	got := r.Substring(0, r.LenChars())
	want := "a\nb\nc\nd"
	if got != want {
		t.Fatalf("Substring() = %q, want %q", got, want)
	}
	if r.LineCount() != 4 {
		t.Fatalf("LineCount() = %d, want 4", r.LineCount())
	}
}

func TestSpliceInsertAndDelete(t *testing.T) {
	r := FromBytes([]byte("hello world"), true, nil)
	r.Splice(5, 5, []byte(","))
	if got := r.Substring(0, r.LenChars()); got != "hello, world" {
		t.Fatalf("after insert: %q", got)
	}
	r.Splice(5, 6, nil)
	if got := r.Substring(0, r.LenChars()); got != "hello world" {
		t.Fatalf("after delete: %q", got)
	}
}

func TestLineStartOffsetAndPositionRoundTrip(t *testing.T) {
	r := FromBytes([]byte("ab\ncd\nef"), true, nil)
	if off := r.LineStartOffset(0); off != 0 {
		t.Fatalf("line 0 start = %d", off)
	}
	if off := r.LineStartOffset(1); off != 3 {
		t.Fatalf("line 1 start = %d, want 3", off)
	}
	if off := r.LineStartOffset(2); off != 6 {
		t.Fatalf("line 2 start = %d, want 6", off)
	}
	row, col, ok := r.OffsetToPosition(4)
	if !ok || row != 1 || col != 1 {
		t.Fatalf("OffsetToPosition(4) = (%d,%d,%v), want (1,1,true)", row, col, ok)
	}
	if off := r.PositionToOffset(1, 1); off != 4 {
		t.Fatalf("PositionToOffset(1,1) = %d, want 4", off)
	}
}

func TestLineStartOffsetClampsOutOfRange(t *testing.T) {
	r := FromBytes([]byte("ab\ncd"), true, nil)
	if off := r.LineStartOffset(50); off != r.LenChars() {
		t.Fatalf("out-of-range LineStartOffset = %d, want %d", off, r.LenChars())
	}
}

func TestWalkEmitsEverySegmentOnce(t *testing.T) {
	r := FromBytes([]byte("ab\ncd\nef"), true, nil)
	var segments []string
	var breaks []bool
	r.Walk(func(text string, trailing bool) {
		segments = append(segments, text)
		breaks = append(breaks, trailing)
	})
	want := []string{"ab", "cd", "ef"}
	if len(segments) != len(want) {
		t.Fatalf("segments = %v, want %v", segments, want)
	}
	for i, s := range want {
		if segments[i] != s {
			t.Fatalf("segments[%d] = %q, want %q", i, segments[i], s)
		}
	}
	if breaks[0] != true || breaks[1] != true || breaks[2] != false {
		t.Fatalf("breaks = %v", breaks)
	}
}

func TestWalkOnEmptyRopeEmitsOneEmptySegment(t *testing.T) {
	r := New(nil)
	count := 0
	r.Walk(func(text string, trailing bool) {
		count++
		if text != "" || trailing {
			t.Fatalf("unexpected segment %q trailing=%v", text, trailing)
		}
	})
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
