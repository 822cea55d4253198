package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opentui/core/edit"
	"github.com/opentui/core/text"
)

func newEditorView(t *testing.T, content string) (*EditorView, *edit.EditBuffer) {
	t.Helper()
	tb := text.New(nil)
	eb := edit.New(tb, nil)
	eb.SetText([]byte(content))
	tv := New(tb, nil)
	return NewEditorView(tv, eb), eb
}

func TestGetVisualCursorNoWrap(t *testing.T) {
	ev, eb := newEditorView(t, "Hello\nWorld")
	eb.SetCursor(1, 3)
	cur := ev.GetVisualCursor()
	assert.Equal(t, 1, cur.VisualRow)
	assert.Equal(t, 3, cur.VisualCol)
	assert.Equal(t, 1, cur.LogicalRow)
	assert.Equal(t, 3, cur.LogicalCol)
}

func TestGetVisualCursorAcrossWrappedLine(t *testing.T) {
	ev, eb := newEditorView(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	ev.SetWrapMode(WrapChar)
	ev.tv.SetWrapWidth(10)
	eb.SetCursor(0, 12)
	cur := ev.GetVisualCursor()
	assert.Equal(t, 1, cur.VisualRow)
	assert.Equal(t, 2, cur.VisualCol)
}

func TestMoveDownVisualPreservesStickyColumnAcrossWrap(t *testing.T) {
	ev, eb := newEditorView(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	ev.SetWrapMode(WrapChar)
	ev.tv.SetWrapWidth(10)
	eb.SetCursor(0, 3)
	ev.MoveDownVisual()
	cur := ev.GetVisualCursor()
	assert.Equal(t, 1, cur.VisualRow)
	assert.Equal(t, 3, cur.VisualCol)
}

func TestScrollMarginClampedToRange(t *testing.T) {
	ev, _ := newEditorView(t, "a")
	ev.SetScrollMargin(-1)
	assert.Equal(t, 0.0, ev.scrollMargin)
	ev.SetScrollMargin(10)
	assert.Equal(t, 0.45, ev.scrollMargin)
}

func TestAdjustScrollKeepsCursorWithinViewport(t *testing.T) {
	lines := ""
	for i := 0; i < 50; i++ {
		lines += "line\n"
	}
	ev, eb := newEditorView(t, lines)
	ev.SetViewportSize(20, 10)
	ev.SetScrollMargin(0.2)
	eb.GotoLine(40)
	ev.adjustScrollToCursor()
	_, offsetY, _, _ := ev.GetViewport()
	cur := ev.GetVisualCursor()
	assert.True(t, cur.VisualRow >= 0 && cur.VisualRow < 10)
	assert.True(t, offsetY > 0)
}

func TestDeleteSelectedTextRemovesRangeAndClearsSelection(t *testing.T) {
	ev, eb := newEditorView(t, "Hello World")
	ev.SetSelectionAt(0, 0, 0, 5)
	ev.DeleteSelectedText()
	assert.Equal(t, " World", eb.String())
	assert.False(t, ev.HasSelection())
}

func TestVisualToLogicalAndBackRoundTrip(t *testing.T) {
	ev, _ := newEditorView(t, "Hello\nWorld")
	ev.SetViewportSize(20, 10)
	row, col := ev.VisualToLogicalCursor(1, 2)
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, col)
	cur := ev.LogicalToVisualCursor(row, col)
	assert.Equal(t, 1, cur.VisualRow)
	assert.Equal(t, 2, cur.VisualCol)
}

func TestGetVisualSOLAndEOLOnWrappedLine(t *testing.T) {
	ev, eb := newEditorView(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	ev.SetWrapMode(WrapChar)
	ev.tv.SetWrapWidth(10)
	eb.SetCursor(0, 15)
	solRow, solCol := ev.GetVisualSOL()
	eolRow, eolCol := ev.GetVisualEOL()
	assert.Equal(t, 0, solRow)
	assert.Equal(t, 10, solCol)
	assert.Equal(t, 0, eolRow)
	assert.Equal(t, 20, eolCol)
}
