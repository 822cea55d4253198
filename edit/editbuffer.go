// Package edit implements EditBuffer: a mutable document built atop
// text.TextBuffer, adding grapheme-aware cursor motion, edit operations,
// undo/redo, and coalesced event emission (spec §4.4).
package edit

import (
	"github.com/opentui/core"
	"github.com/opentui/core/text"
)

// EditBuffer is the cursor+edit+undo layer over a text.TextBuffer. Like
// TextBuffer, it is single-writer: the embedder must not call one
// instance from two threads concurrently (spec §5).
type EditBuffer struct {
	tb        *text.TextBuffer
	oracle    *core.WidthOracle
	cursor    Position
	stickyCol int
	hasSticky bool
	undo      *undoManager
	events    eventQueue
	destroyed bool
}

// New wraps tb with cursor/edit/undo machinery. oracle must be the same
// width policy tb itself was created with.
func New(tb *text.TextBuffer, oracle *core.WidthOracle) *EditBuffer {
	return &EditBuffer{tb: tb, oracle: oracle, undo: newUndoManager()}
}

func (b *EditBuffer) checkLive() {
	if b.destroyed {
		panic("edit: use of destroyed EditBuffer")
	}
}

// Destroy releases the buffer and stops further event delivery. Idempotent.
func (b *EditBuffer) Destroy() {
	b.events.destroyed = true
	b.destroyed = true
}

// Subscribe registers a listener for cursor-changed/content-changed
// events.
func (b *EditBuffer) Subscribe(l Listener) {
	b.events.subscribe(l)
}

func (b *EditBuffer) resetCursor() {
	b.cursor = Position{}
	b.hasSticky = false
}

// SetText replaces the whole document and clears both undo stacks (spec
// §4.4).
func (b *EditBuffer) SetText(data []byte) {
	b.checkLive()
	b.tb.SetText(data, true)
	b.undo.clear()
	b.resetCursor()
	b.events.markContentChanged()
	b.events.markCursorChanged()
	b.events.settle()
}

// SetTextOwned is SetText's owned-buffer variant; this port always copies
// into the rope's own storage, so it behaves identically to SetText (see
// rope.FromBytes's doc comment for why "owned" has no effect here).
func (b *EditBuffer) SetTextOwned(data []byte) {
	b.SetText(data)
}

// ReplaceText replaces the whole document but preserves undo history,
// pushing one undo_replace entry (spec §4.4).
func (b *EditBuffer) ReplaceText(data []byte) {
	b.checkLive()
	before := b.tb.GetPlainText(0)
	cursorBefore := b.cursor
	b.tb.SetText(data, false)
	b.resetCursor()
	b.undo.record(editReplace, 0, string(before), string(data), cursorBefore, b.cursor, true, "replace")
	b.events.markContentChanged()
	b.events.markCursorChanged()
	b.events.settle()
}

// ReplaceTextOwned mirrors ReplaceText (see SetTextOwned).
func (b *EditBuffer) ReplaceTextOwned(data []byte) {
	b.ReplaceText(data)
}

// Clear empties the document without touching undo history.
func (b *EditBuffer) Clear() {
	b.checkLive()
	b.tb.Clear()
	b.resetCursor()
	b.events.markContentChanged()
	b.events.markCursorChanged()
	b.events.settle()
}

// ClearHistory drops both undo stacks without touching the document.
func (b *EditBuffer) ClearHistory() {
	b.checkLive()
	b.undo.clear()
}

// applyEdit is the single low-level mutation path every insert/delete
// goes through: it snapshots the replaced range, splices the rope,
// updates the cursor, and records (possibly coalescing) an undo entry.
func (b *EditBuffer) applyEdit(start, end int, replacement string, kind editKind, cursorAfter Position, meta string) {
	if end < start {
		start, end = end, start
	}
	before := b.tb.Rope().Substring(start, end)
	cursorBefore := b.cursor
	b.tb.Rope().Splice(start, end, []byte(replacement))
	// Resolve the cursor's row/col against the spliced text.
	cursorAfter = b.positionForOffset(cursorAfter.Offset)

	cursorJump := false
	if p := b.undo.pending; p != nil {
		cursorJump = p.entry.cursorAfter.Offset != cursorBefore.Offset
	}

	b.undo.record(kind, start, before, replacement, cursorBefore, cursorAfter, cursorJump, meta)
	b.cursor = cursorAfter
	b.hasSticky = false
	b.events.markContentChanged()
	b.events.markCursorChanged()
	b.events.settle()
}

// InsertChar inserts s (expected to be a single grapheme) at the cursor
// and advances the cursor past it.
func (b *EditBuffer) InsertChar(s string) {
	b.checkLive()
	b.InsertText(s)
}

// InsertText inserts s at the cursor. A newline in s splits the current
// line; a multi-line insert places the cursor at the end of the last
// inserted line (spec §4.4).
func (b *EditBuffer) InsertText(s string) {
	b.checkLive()
	at := b.cursor.Offset
	runes := []rune(s)
	newOffset := at + len(runes)
	after := Position{Offset: newOffset}
	b.applyEdit(at, at, s, editInsert, after, "insert")
}

// DeleteChar deletes the grapheme cluster at the cursor, merging with the
// next line if the cursor is at end-of-line (spec §4.4).
func (b *EditBuffer) DeleteChar() {
	b.checkLive()
	at := b.cursor.Offset
	next := b.nextGrapheme(at)
	if next == at {
		return
	}
	after := b.positionForOffset(at)
	b.applyEdit(at, next, "", editDelete, after, "delete-forward")
}

// DeleteCharBackward deletes the grapheme cluster before the cursor,
// merging with the previous line when at column 0 (spec §4.4).
func (b *EditBuffer) DeleteCharBackward() {
	b.checkLive()
	at := b.cursor.Offset
	prevStart := b.prevGrapheme(at)
	if prevStart == at {
		return
	}
	after := b.positionForOffset(prevStart)
	b.applyEdit(prevStart, at, "", editDelete, after, "delete-backward")
}

// DeleteRange deletes [startRow,startCol) .. [endRow,endCol), clamping and
// swapping reversed arguments per spec §4.4's invalid_range handling.
func (b *EditBuffer) DeleteRange(startRow, startCol, endRow, endCol int) {
	b.checkLive()
	s := b.tb.Rope().PositionToOffset(startRow, startCol)
	e := b.tb.Rope().PositionToOffset(endRow, endCol)
	if e < s {
		s, e = e, s
	}
	after := b.positionForOffset(s)
	b.applyEdit(s, e, "", editDelete, after, "delete-range")
}

// NewLine inserts a line break at the cursor.
func (b *EditBuffer) NewLine() {
	b.checkLive()
	b.InsertText("\n")
}

// DeleteLine removes the cursor's current logical line, including its
// trailing newline when present.
func (b *EditBuffer) DeleteLine() {
	b.checkLive()
	row := b.cursor.Row
	start := b.tb.Rope().LineStartOffset(row)
	end := b.tb.Rope().LineStartOffset(row + 1)
	if end == start {
		return
	}
	after := b.positionForOffset(start)
	b.applyEdit(start, end, "", editDelete, after, "delete-line")
}

// moveTo sets the cursor to pos and fires a cursor-changed event at the
// call's settle point. resetStickyCol controls whether a horizontal move
// should drop the sticky column spec §4.4 requires for vertical moves.
func (b *EditBuffer) moveTo(pos Position, resetStickyCol bool) {
	b.cursor = pos
	if resetStickyCol {
		b.hasSticky = false
	}
	b.events.markCursorChanged()
	b.events.settle()
}

// MoveCursorLeft moves back one grapheme cluster (two columns for a
// width-2 cluster), never resting inside a cluster.
func (b *EditBuffer) MoveCursorLeft() {
	b.checkLive()
	start := b.prevGrapheme(b.cursor.Offset)
	b.moveTo(b.positionForOffset(start), true)
}

// MoveCursorRight moves forward one grapheme cluster.
func (b *EditBuffer) MoveCursorRight() {
	b.checkLive()
	next := b.nextGrapheme(b.cursor.Offset)
	b.moveTo(b.positionForOffset(next), true)
}

// MoveCursorUp moves to the previous logical line, preserving (or
// initializing) a sticky target column.
func (b *EditBuffer) MoveCursorUp() {
	b.checkLive()
	b.moveVertical(-1)
}

// MoveCursorDown moves to the next logical line.
func (b *EditBuffer) MoveCursorDown() {
	b.checkLive()
	b.moveVertical(1)
}

func (b *EditBuffer) moveVertical(delta int) {
	target := b.cursor.Col
	if b.hasSticky {
		target = b.stickyCol
	}
	row := b.cursor.Row + delta
	if row < 0 {
		row = 0
	}
	if row >= b.tb.Rope().LineCount() {
		row = b.tb.Rope().LineCount() - 1
	}
	col := b.snapColToGraphemeBoundary(row, target)
	off := b.tb.Rope().PositionToOffset(row, col)
	if !b.hasSticky {
		b.stickyCol = target
		b.hasSticky = true
	}
	b.cursor = b.positionForOffset(off)
	b.events.markCursorChanged()
	b.events.settle()
}

// GotoLine moves the cursor to the start of line n, clamped to the
// document's range (spec §7's out_of_bounds clamp policy).
func (b *EditBuffer) GotoLine(n int) {
	b.checkLive()
	if n < 0 {
		n = 0
	}
	off := b.tb.Rope().LineStartOffset(n)
	b.moveTo(b.positionForOffset(off), true)
}

// SetCursor is an alias for SetCursorToLineCol (spec §4.4 lists both
// names).
func (b *EditBuffer) SetCursor(row, col int) {
	b.SetCursorToLineCol(row, col)
}

// SetCursorToLineCol snaps col to the nearest grapheme boundary <= col
// when it lands mid-cluster, clamping out-of-range row/col to the
// document's end (spec §4.4).
func (b *EditBuffer) SetCursorToLineCol(row, col int) {
	b.checkLive()
	if row < 0 {
		row = 0
	}
	lineCount := b.tb.Rope().LineCount()
	if row >= lineCount {
		row = lineCount - 1
	}
	if col < 0 {
		col = 0
	}
	snapped := b.snapColToGraphemeBoundary(row, col)
	off := b.tb.Rope().PositionToOffset(row, snapped)
	b.moveTo(b.positionForOffset(off), true)
}

// SetCursorByOffset moves the cursor to an absolute char offset, clamped
// to the document's range.
func (b *EditBuffer) SetCursorByOffset(off int) {
	b.checkLive()
	n := b.tb.Rope().LenChars()
	if off < 0 {
		off = 0
	}
	if off > n {
		off = n
	}
	b.moveTo(b.positionForOffset(off), true)
}

// GetCursorPosition returns the current cursor.
func (b *EditBuffer) GetCursorPosition() Position {
	b.checkLive()
	return b.cursor
}

// GetNextWordBoundary returns the offset/position of the next word
// boundary at or after the cursor (spec §4.4, §8's is_word rule).
func (b *EditBuffer) GetNextWordBoundary() Position {
	b.checkLive()
	return b.positionForOffset(b.wordBoundary(b.cursor.Offset, 1))
}

// GetPrevWordBoundary returns the offset/position of the previous word
// boundary at or before the cursor.
func (b *EditBuffer) GetPrevWordBoundary() Position {
	b.checkLive()
	return b.positionForOffset(b.wordBoundary(b.cursor.Offset, -1))
}

func (b *EditBuffer) runeAt(off int) (rune, bool) {
	n := b.tb.Rope().LenChars()
	if off < 0 || off >= n {
		return 0, false
	}
	runes := []rune(b.tb.Rope().Substring(off, off+1))
	if len(runes) == 0 {
		return 0, false
	}
	return runes[0], true
}

// wordBoundary walks from off in the given direction (+1/-1) to the first
// position where is_word(prev) != is_word(next), or a line break, per
// spec §4.6's boundary rule (shared verbatim by EditBuffer and
// EditorView).
func (b *EditBuffer) wordBoundary(off, dir int) int {
	n := b.tb.Rope().LenChars()
	pos := off
	if pos <= 0 && dir < 0 {
		return 0
	}
	if pos >= n && dir > 0 {
		return n
	}
	for {
		pos += dir
		if pos <= 0 {
			return 0
		}
		if pos >= n {
			return n
		}
		prev, _ := b.runeAt(pos - 1)
		next, _ := b.runeAt(pos)
		if prev == '\n' || next == '\n' {
			return pos
		}
		if isWordRune(prev) != isWordRune(next) {
			return pos
		}
	}
}

// GetEOL returns the offset of the end of the cursor's current logical
// line (before its newline, if any).
func (b *EditBuffer) GetEOL() int {
	b.checkLive()
	row := b.cursor.Row
	start := b.tb.Rope().LineStartOffset(row)
	next := b.tb.Rope().LineStartOffset(row + 1)
	if next > start {
		if r, ok := b.runeAt(next - 1); ok && r == '\n' {
			return next - 1
		}
	}
	return next
}

// OffsetToPosition/PositionToOffset/GetLineStartOffset delegate to the
// underlying rope.
func (b *EditBuffer) OffsetToPosition(off int) (row, col int, ok bool) {
	b.checkLive()
	return b.tb.Rope().OffsetToPosition(off)
}

func (b *EditBuffer) PositionToOffset(row, col int) int {
	b.checkLive()
	return b.tb.Rope().PositionToOffset(row, col)
}

func (b *EditBuffer) GetLineStartOffset(row int) int {
	b.checkLive()
	return b.tb.Rope().LineStartOffset(row)
}

// GetTextRange returns the text in char offsets [start, end), swapping a
// reversed range rather than rejecting it (spec §4.4's invalid_range
// contract).
func (b *EditBuffer) GetTextRange(start, end int) string {
	b.checkLive()
	if end < start {
		start, end = end, start
	}
	return b.tb.Rope().Substring(start, end)
}

// GetTextRangeByCoords is GetTextRange expressed in (row,col) pairs.
func (b *EditBuffer) GetTextRangeByCoords(startRow, startCol, endRow, endCol int) string {
	b.checkLive()
	s := b.tb.Rope().PositionToOffset(startRow, startCol)
	e := b.tb.Rope().PositionToOffset(endRow, endCol)
	return b.GetTextRange(s, e)
}

// Undo restores the before-snapshot of the most recent undo entry and
// moves the cursor to cursor_before, returning the entry's meta string,
// or "" with ok=false if there is nothing to undo (spec §4.4).
func (b *EditBuffer) Undo() (meta string, ok bool) {
	b.checkLive()
	e, found := b.undo.popUndo()
	if !found {
		return "", false
	}
	b.restoreSnapshot(e.start, e.after, e.before)
	b.cursor = e.cursorBefore
	b.events.markContentChanged()
	b.events.markCursorChanged()
	b.events.settle()
	return e.meta, true
}

// Redo restores the after-snapshot and moves the cursor to cursor_after.
func (b *EditBuffer) Redo() (meta string, ok bool) {
	b.checkLive()
	e, found := b.undo.popRedo()
	if !found {
		return "", false
	}
	b.restoreSnapshot(e.start, e.before, e.after)
	b.cursor = e.cursorAfter
	b.events.markContentChanged()
	b.events.markCursorChanged()
	b.events.settle()
	return e.meta, true
}

// restoreSnapshot replaces the text currently occupying [start,
// start+len(currentRunes)) with replacement, used by both Undo (replacing
// "after" with "before") and Redo (the reverse).
func (b *EditBuffer) restoreSnapshot(start int, current, replacement string) {
	currentLen := len([]rune(current))
	b.tb.Rope().Splice(start, start+currentLen, []byte(replacement))
}

func (b *EditBuffer) CanUndo() bool { b.checkLive(); return b.undo.canUndo() }
func (b *EditBuffer) CanRedo() bool { b.checkLive(); return b.undo.canRedo() }

// String returns the entire document, mainly for tests and debugging
// (not a spec-named operation, but every EditBuffer test needs it).
func (b *EditBuffer) String() string {
	return string(b.tb.GetPlainText(0))
}
