package view

import (
	"github.com/opentui/core/edit"
)

// VisualCursor is spec §4.6's get_visual_cursor result: visual
// coordinates are viewport-relative; logical coordinates are
// document-absolute.
type VisualCursor struct {
	VisualRow, VisualCol   int
	LogicalRow, LogicalCol int
	Offset                 int
}

// EditorView layers a scrollable viewport, scroll margin, and
// visual-coordinate cursor/selection atop a TextBufferView and the
// EditBuffer that owns the underlying document (spec §4.6). It is the
// layer a terminal UI actually drives: cmd/coredemo's draw reads
// GetViewport and the wrapped virtual lines it covers, and its input loop
// wires keystrokes to the cursor-movement operations.
type EditorView struct {
	tv  *TextBufferView
	eb  *edit.EditBuffer

	viewportW, viewportH int
	offsetY              int // first visible virtual line
	offsetX              int // horizontal scroll, used only when wrap_mode==none
	scrollMargin         float64
}

// NewEditorView builds an EditorView over tv/eb, which must share the
// same underlying TextBuffer. It subscribes to eb's content-changed event
// so tv's wrap cache invalidates automatically on every edit, since
// EditBuffer has no direct reference to the views layered above it.
func NewEditorView(tv *TextBufferView, eb *edit.EditBuffer) *EditorView {
	e := &EditorView{tv: tv, eb: eb}
	eb.Subscribe(func(kind edit.EventKind) {
		if kind == edit.EventContentChanged {
			tv.MarkDirty()
		}
	})
	return e
}

// SetViewportSize sets the viewport dimensions, propagating width to the
// underlying TextBufferView (spec §4.5's wrap-on-width-change rule).
func (e *EditorView) SetViewportSize(w, h int) {
	e.tv.SetViewportSize(w, h)
	e.viewportW, e.viewportH = w, h
	e.clampScroll()
}

// GetViewport returns the current (offsetX, offsetY, w, h).
func (e *EditorView) GetViewport() (offsetX, offsetY, w, h int) {
	return e.offsetX, e.offsetY, e.viewportW, e.viewportH
}

// SetScrollMargin sets the scroll margin as a fraction of viewport
// height, clamped to [0, 0.45] per spec §4.6.
func (e *EditorView) SetScrollMargin(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 0.45 {
		fraction = 0.45
	}
	e.scrollMargin = fraction
}

// SetWrapMode delegates to the underlying TextBufferView.
func (e *EditorView) SetWrapMode(mode WrapMode) {
	e.tv.SetWrapMode(mode)
}

// GetVirtualLineCount returns the number of virtual lines currently
// visible in the viewport (at most viewportH, fewer at document end).
func (e *EditorView) GetVirtualLineCount() int {
	total := e.GetTotalVirtualLineCount()
	visible := total - e.offsetY
	if visible < 0 {
		visible = 0
	}
	if visible > e.viewportH {
		visible = e.viewportH
	}
	return visible
}

// GetTotalVirtualLineCount returns the total number of virtual (wrapped)
// lines across the whole document.
func (e *EditorView) GetTotalVirtualLineCount() int {
	return len(e.tv.LineInfo().LineStarts)
}

// virtualLineForLogical finds the index into LineInfo's flattened arrays
// of the visual segment on logical line row that contains display column
// col (or the line's last segment if col is at/after its end, i.e. the
// cursor sits at end-of-line).
func (e *EditorView) virtualLineForLogical(row, col int) int {
	info := e.tv.LineInfo()
	best := -1
	for i, src := range info.LineSources {
		if src != row {
			if best >= 0 {
				break
			}
			continue
		}
		start := info.LineStarts[i]
		width := info.LineWidths[i]
		best = i
		if col < start+width || i == len(info.LineSources)-1 || info.LineSources[i+1] != row {
			break
		}
	}
	if best < 0 {
		best = 0
	}
	return best
}

// GetVisualCursor maps the owning EditBuffer's logical cursor into
// viewport-relative visual coordinates.
func (e *EditorView) GetVisualCursor() VisualCursor {
	pos := e.eb.GetCursorPosition()
	info := e.tv.LineInfo()
	vIdx := e.virtualLineForLogical(pos.Row, pos.Col)
	visualCol := pos.Col
	if vIdx < len(info.LineStarts) {
		visualCol = pos.Col - info.LineStarts[vIdx]
	}
	return VisualCursor{
		VisualRow:  vIdx - e.offsetY,
		VisualCol:  visualCol - e.offsetX,
		LogicalRow: pos.Row,
		LogicalCol: pos.Col,
		Offset:     pos.Offset,
	}
}

// LogicalToVisualCursor converts an arbitrary logical (row, col) to
// visual coordinates without touching the EditBuffer's actual cursor.
func (e *EditorView) LogicalToVisualCursor(row, col int) VisualCursor {
	info := e.tv.LineInfo()
	vIdx := e.virtualLineForLogical(row, col)
	visualCol := col
	if vIdx < len(info.LineStarts) {
		visualCol = col - info.LineStarts[vIdx]
	}
	off := e.eb.PositionToOffset(row, col)
	return VisualCursor{
		VisualRow:  vIdx - e.offsetY,
		VisualCol:  visualCol - e.offsetX,
		LogicalRow: row,
		LogicalCol: col,
		Offset:     off,
	}
}

// VisualToLogicalCursor converts viewport-relative visual coordinates
// back to a logical (row, col).
func (e *EditorView) VisualToLogicalCursor(visualRow, visualCol int) (row, col int) {
	info := e.tv.LineInfo()
	idx := visualRow + e.offsetY
	if idx < 0 {
		idx = 0
	}
	if idx >= len(info.LineSources) {
		idx = len(info.LineSources) - 1
	}
	if idx < 0 {
		return 0, 0
	}
	row = info.LineSources[idx]
	col = info.LineStarts[idx] + visualCol + e.offsetX
	max := info.LineStarts[idx] + info.LineWidths[idx]
	if col > max {
		col = max
	}
	if col < info.LineStarts[idx] {
		col = info.LineStarts[idx]
	}
	return row, col
}

// moveVisual moves the cursor delta virtual rows up/down, targeting the
// cursor's current visual column at the time of each call. No sticky
// column is kept between calls: passing through a shorter row clamps the
// column, and later moves continue from the clamped column. Wide clusters
// are traversed atomically because SetCursorToLineCol snaps to a grapheme
// boundary.
func (e *EditorView) moveVisual(delta int) {
	cur := e.GetVisualCursor()
	info := e.tv.LineInfo()
	curIdx := cur.VisualRow + e.offsetY
	targetIdx := curIdx + delta
	if targetIdx < 0 {
		targetIdx = 0
	}
	if targetIdx >= len(info.LineStarts) {
		targetIdx = len(info.LineStarts) - 1
	}
	targetRow := info.LineSources[targetIdx]
	targetCol := info.LineStarts[targetIdx] + cur.VisualCol + e.offsetX
	e.eb.SetCursorToLineCol(targetRow, targetCol)
	e.adjustScrollToCursor()
}

// MoveUpVisual moves up one visual row.
func (e *EditorView) MoveUpVisual() { e.moveVisual(-1) }

// MoveDownVisual moves down one visual row.
func (e *EditorView) MoveDownVisual() { e.moveVisual(1) }

// GetVisualSOL/GetVisualEOL return the logical (row, col) of the start/end
// of the cursor's current visual (wrapped) segment.
func (e *EditorView) GetVisualSOL() (row, col int) {
	pos := e.eb.GetCursorPosition()
	info := e.tv.LineInfo()
	idx := e.virtualLineForLogical(pos.Row, pos.Col)
	return info.LineSources[idx], info.LineStarts[idx]
}

func (e *EditorView) GetVisualEOL() (row, col int) {
	pos := e.eb.GetCursorPosition()
	info := e.tv.LineInfo()
	idx := e.virtualLineForLogical(pos.Row, pos.Col)
	return info.LineSources[idx], info.LineStarts[idx] + info.LineWidths[idx]
}

// GetNextWordBoundary/GetPrevWordBoundary delegate to the owning
// EditBuffer, which implements the shared is_word rule (spec §4.6 reuses
// §4.4's definition verbatim).
func (e *EditorView) GetNextWordBoundary() edit.Position { return e.eb.GetNextWordBoundary() }
func (e *EditorView) GetPrevWordBoundary() edit.Position { return e.eb.GetPrevWordBoundary() }

// SetCursorByOffset moves the owning EditBuffer's cursor and rescrolls.
func (e *EditorView) SetCursorByOffset(off int) {
	e.eb.SetCursorByOffset(off)
	e.adjustScrollToCursor()
}

// adjustScrollToCursor implements spec §4.6's scroll policy: after a
// cursor move, if the visual cursor sits within scroll_margin ·
// viewport_height of the top/bottom, scroll so it sits exactly at the
// margin. Horizontal scroll mirrors this only when wrap_mode==none.
func (e *EditorView) adjustScrollToCursor() {
	e.clampScroll()
	if e.viewportH <= 0 {
		return
	}
	cur := e.GetVisualCursor()
	margin := int(e.scrollMargin * float64(e.viewportH))
	if cur.VisualRow < margin {
		e.offsetY -= margin - cur.VisualRow
	} else if cur.VisualRow >= e.viewportH-margin {
		e.offsetY += cur.VisualRow - (e.viewportH - margin - 1)
	}
	if e.offsetY < 0 {
		e.offsetY = 0
	}

	if e.tv.wrapMode == WrapNone && e.viewportW > 0 {
		hmargin := int(e.scrollMargin * float64(e.viewportW))
		cur = e.GetVisualCursor()
		if cur.VisualCol < hmargin {
			e.offsetX -= hmargin - cur.VisualCol
		} else if cur.VisualCol >= e.viewportW-hmargin {
			e.offsetX += cur.VisualCol - (e.viewportW - hmargin - 1)
		}
		if e.offsetX < 0 {
			e.offsetX = 0
		}
	}
}

func (e *EditorView) clampScroll() {
	total := e.GetTotalVirtualLineCount()
	maxOffset := total - e.viewportH
	if maxOffset < 0 {
		maxOffset = 0
	}
	if e.offsetY > maxOffset {
		e.offsetY = maxOffset
	}
	if e.offsetY < 0 {
		e.offsetY = 0
	}
}

// Selection mirror (visual coordinates), spec §4.6: same semantics as
// TextBufferView's selection but addressed via (row,col) through the
// owning view rather than raw display offsets, for callers driving
// selection from mouse/visual input.
func (e *EditorView) SetSelectionAt(startRow, startCol, endRow, endCol int) {
	sr, sc := e.VisualToLogicalCursor(startRow, startCol)
	er, ec := e.VisualToLogicalCursor(endRow, endCol)
	e.tv.SetLocalSelection(sc, sr, ec, er, nil, nil)
}

func (e *EditorView) UpdateSelectionAt(row, col int) {
	lr, lc := e.VisualToLogicalCursor(row, col)
	e.tv.UpdateLocalSelection(lc, lr)
}

func (e *EditorView) HasSelection() bool      { return e.tv.HasSelection() }
func (e *EditorView) GetSelectedText() string { return e.tv.GetSelectedText() }

// DeleteSelectedText removes the current selection's text from the
// document and clears the selection, leaving the cursor at the deletion
// point (spec §4.6).
func (e *EditorView) DeleteSelectedText() {
	start, end, ok := e.tv.GetSelection()
	if !ok {
		return
	}
	cs := e.tv.displayOffsetToCharOffset(start)
	ce := e.tv.displayOffsetToCharOffset(end)
	if ce < cs {
		cs, ce = ce, cs
	}
	sr, sc, _ := e.eb.OffsetToPosition(cs)
	er, ec, _ := e.eb.OffsetToPosition(ce)
	e.eb.DeleteRange(sr, sc, er, ec)
	e.tv.ResetSelection()
	e.adjustScrollToCursor()
}
