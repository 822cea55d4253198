package edit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentui/core"
	"github.com/opentui/core/text"
)

// newBuf wires a real width oracle through text.New/New rather than nil,
// so tests exercising wide-grapheme columns (e.g.
// TestMoveCursorRightSkipsWideGrapheme) actually run the oracle-aware path
// instead of silently falling back to a char-count and passing for the
// wrong reason.
func newBuf() *EditBuffer {
	oracle := core.NewWidthOracle(core.WidthPolicyUnicode, false)
	tb := text.New(oracle)
	return New(tb, oracle)
}

func TestInsertTextAtEndOfLine(t *testing.T) {
	b := newBuf()
	b.SetText([]byte("Hello"))
	b.SetCursor(0, 5)
	b.InsertText(" World")
	assert.Equal(t, "Hello World", b.String())
	pos := b.GetCursorPosition()
	assert.Equal(t, Position{Row: 0, Col: 11, Offset: 11}, pos)
}

func TestDeleteCharBackwardMergesLines(t *testing.T) {
	b := newBuf()
	b.SetText([]byte("Line 1\nLine 2"))
	b.SetCursor(1, 0)
	b.DeleteCharBackward()
	assert.Equal(t, "Line 1Line 2", b.String())
	pos := b.GetCursorPosition()
	assert.Equal(t, Position{Row: 0, Col: 6, Offset: 6}, pos)
}

func TestMoveCursorRightSkipsWideGrapheme(t *testing.T) {
	b := newBuf()
	b.SetText([]byte("A\U0001F31FB")) // A 🌟 B
	b.SetCursor(0, 1)
	b.MoveCursorRight()
	pos := b.GetCursorPosition()
	assert.Equal(t, 3, pos.Col)
}

func TestUndoRedoRestoresReplacedText(t *testing.T) {
	b := newBuf()
	b.SetText([]byte("original"))
	b.ReplaceText([]byte("replacement one"))
	b.ReplaceText([]byte("replacement two"))

	meta, ok := b.Undo()
	require.True(t, ok)
	require.NotEmpty(t, meta)
	assert.Equal(t, "replacement one", b.String())

	meta, ok = b.Undo()
	require.True(t, ok)
	assert.Equal(t, "original", b.String())

	_, ok = b.Undo()
	assert.False(t, ok)

	_, ok = b.Redo()
	require.True(t, ok)
	assert.Equal(t, "replacement one", b.String())

	_, ok = b.Redo()
	require.True(t, ok)
	assert.Equal(t, "replacement two", b.String())
}

func TestInsertTextCoalescesContiguousTyping(t *testing.T) {
	b := newBuf()
	b.SetText([]byte(""))
	b.InsertText("h")
	b.InsertText("e")
	b.InsertText("l")
	b.InsertText("l")
	b.InsertText("o")
	assert.Equal(t, "hello", b.String())
	assert.True(t, b.CanUndo())
	_, ok := b.Undo()
	require.True(t, ok)
	assert.Equal(t, "", b.String())
}

func TestCursorJumpClosesCoalesceSession(t *testing.T) {
	b := newBuf()
	b.SetText([]byte(""))
	b.InsertText("ab")
	b.SetCursor(0, 0)
	b.InsertText("x")
	// Two separate insert entries: undoing once only reverts the jump
	// insert, not both.
	_, ok := b.Undo()
	require.True(t, ok)
	assert.Equal(t, "ab", b.String())
}

func TestWordBoundaries(t *testing.T) {
	b := newBuf()
	b.SetText([]byte("foo bar"))
	b.SetCursorByOffset(0)
	nb := b.GetNextWordBoundary()
	assert.Equal(t, 3, nb.Offset)
}

func TestEventsCoalesceAtSettlePoint(t *testing.T) {
	b := newBuf()
	var cursorEvents, contentEvents int
	b.Subscribe(func(k EventKind) {
		switch k {
		case EventCursorChanged:
			cursorEvents++
		case EventContentChanged:
			contentEvents++
		}
	})
	b.SetText([]byte("abc"))
	assert.Equal(t, 1, cursorEvents)
	assert.Equal(t, 1, contentEvents)
}

func TestDestroyedBufferEmitsNoEvents(t *testing.T) {
	b := newBuf()
	fired := false
	b.Subscribe(func(k EventKind) { fired = true })
	b.Destroy()
	assert.Panics(t, func() { b.SetText([]byte("x")) })
	assert.False(t, fired)
}
