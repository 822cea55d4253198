package view

import "github.com/opentui/core"

// selectionState is a byte-range selection expressed in display-column
// offsets over the unwrapped logical text (spec §4.5): this keeps
// selection boundaries stable across re-wrapping, since display columns
// (unlike char offsets) don't shift when wrap_width changes.
type selectionState struct {
	anchorDisp, focusDisp int
	bg, fg                *core.RGBA
}

// SetSelection starts a selection at display-column offsets [start, end)
// in the logical, unwrapped text.
func (v *TextBufferView) SetSelection(start, end int, bg, fg *core.RGBA) {
	v.selection = &selectionState{anchorDisp: start, focusDisp: end, bg: bg, fg: fg}
}

// UpdateSelection moves the selection's focus end, keeping the anchor.
func (v *TextBufferView) UpdateSelection(focus int) {
	if v.selection == nil {
		return
	}
	v.selection.focusDisp = focus
}

// SetLocalSelection starts a selection given logical coordinates for the
// anchor (column ax, row ay) and focus (column fx, row fy), converting each
// through the rope's position<->offset machinery into the same
// display-column space SetSelection uses.
func (v *TextBufferView) SetLocalSelection(ax, ay, fx, fy int, bg, fg *core.RGBA) {
	aOff := v.charOffsetToDisplayOffset(v.tb.Rope().PositionToOffset(ay, ax))
	fOff := v.charOffsetToDisplayOffset(v.tb.Rope().PositionToOffset(fy, fx))
	v.SetSelection(aOff, fOff, bg, fg)
}

// UpdateLocalSelection moves the focus end to logical column fx, row fy.
func (v *TextBufferView) UpdateLocalSelection(fx, fy int) {
	if v.selection == nil {
		return
	}
	v.UpdateSelection(v.charOffsetToDisplayOffset(v.tb.Rope().PositionToOffset(fy, fx)))
}

// ResetSelection clears the current selection.
func (v *TextBufferView) ResetSelection() { v.selection = nil }

// HasSelection reports whether a selection is active.
func (v *TextBufferView) HasSelection() bool { return v.selection != nil }

// GetSelection returns the selection's normalized [start, end) display
// offsets (anchor/focus order-independent).
func (v *TextBufferView) GetSelection() (start, end int, ok bool) {
	if v.selection == nil {
		return 0, 0, false
	}
	s, e := v.selection.anchorDisp, v.selection.focusDisp
	if e < s {
		s, e = e, s
	}
	return s, e, true
}

// GetSelectedText materializes the selection's text.
func (v *TextBufferView) GetSelectedText() string {
	start, end, ok := v.GetSelection()
	if !ok {
		return ""
	}
	cs := v.displayOffsetToCharOffset(start)
	ce := v.displayOffsetToCharOffset(end)
	if ce < cs {
		cs, ce = ce, cs
	}
	return v.tb.Rope().Substring(cs, ce)
}

// displayOffsetToCharOffset resolves a display-column offset over the
// unwrapped logical text (with each newline counted as exactly one
// column, per spec §4.5) to the corresponding rope char offset. This is
// one of spec §9's explicitly open questions ("selection semantics over
// the newline character... source behavior is ambiguous"); the decision
// taken here is: the newline occupies display column
// `lineEndDisp` through `lineEndDisp+1` exclusive, so offset==lineEndDisp
// resolves to the position immediately before the newline (end of the
// line's visible text) and offset==lineEndDisp+1 resolves to immediately
// after it (start of the next line) — i.e. the newline is a real,
// one-column-wide selectable unit, not skipped.
func (v *TextBufferView) displayOffsetToCharOffset(off int) int {
	if off < 0 {
		off = 0
	}
	charPos, dispPos, result := 0, 0, -1
	v.tb.Rope().Walk(func(lineText string, hasBreak bool) {
		if result >= 0 {
			return
		}
		runes := []rune(lineText)
		widths := make([]int, len(runes))
		lineDispWidth := 0
		for i, r := range runes {
			w := 1
			if v.oracle != nil {
				w = v.oracle.RuneWidth(r)
			}
			widths[i] = w
			lineDispWidth += w
		}
		lineEndDisp := dispPos + lineDispWidth
		if off <= lineEndDisp {
			consumed, ci := 0, 0
			for ci < len(runes) && consumed < off-dispPos {
				consumed += widths[ci]
				ci++
			}
			result = charPos + ci
			return
		}
		if hasBreak && off == lineEndDisp+1 {
			result = charPos + len(runes) + 1
			return
		}
		dispPos = lineEndDisp
		charPos += len(runes)
		if hasBreak {
			dispPos++
			charPos++
		}
	})
	if result < 0 {
		result = charPos
	}
	return result
}

// charOffsetToDisplayOffset is displayOffsetToCharOffset's inverse,
// used to translate (row,col)-derived char offsets (SetLocalSelection)
// into the display-column space SetSelection operates in.
func (v *TextBufferView) charOffsetToDisplayOffset(charOff int) int {
	charPos, dispPos, result := 0, 0, -1
	v.tb.Rope().Walk(func(lineText string, hasBreak bool) {
		if result >= 0 {
			return
		}
		runes := []rune(lineText)
		lineCharLen := len(runes)
		lineDispWidth := 0
		for _, r := range runes {
			w := 1
			if v.oracle != nil {
				w = v.oracle.RuneWidth(r)
			}
			lineDispWidth += w
		}
		if charOff <= charPos+lineCharLen {
			consumedChars := charOff - charPos
			w := 0
			for i := 0; i < consumedChars; i++ {
				rw := 1
				if v.oracle != nil {
					rw = v.oracle.RuneWidth(runes[i])
				}
				w += rw
			}
			result = dispPos + w
			return
		}
		if hasBreak && charOff == charPos+lineCharLen+1 {
			result = dispPos + lineDispWidth + 1
			return
		}
		dispPos += lineDispWidth
		charPos += lineCharLen
		if hasBreak {
			dispPos++
			charPos++
		}
	})
	if result < 0 {
		result = dispPos
	}
	return result
}
