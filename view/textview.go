// Package view implements the read-only projection layer: TextBufferView
// (wrap + line_info) and EditorView (viewport, visual cursor, selection)
// atop text.TextBuffer (spec §4.5, §4.6).
package view

import (
	"github.com/opentui/core"
	"github.com/opentui/core/text"
)

// LineInfo is spec §3's TextBufferView cache, exposed read-only.
type LineInfo struct {
	LineStarts   []int
	LineWidths   []int
	LineSources  []int
	LineWraps    []int
	MaxLineWidth int
}

// TextBufferView projects a TextBuffer into wrapped visual lines. It
// holds no text of its own; `epoch` tracks the buffer/parameter
// generation the cache was built against so a stale read is always
// detectable (spec §3's "Epoch ticks on any TextBuffer mutation or
// wrap-parameter change").
type TextBufferView struct {
	tb       *text.TextBuffer
	oracle   *core.WidthOracle
	wrapMode WrapMode
	wrapWidth int // 0 means unset/null
	viewportW, viewportH int

	cache      LineInfo
	cacheValid bool
	epoch      int
	// textEpoch is not read or updated anywhere: TextBuffer has no
	// public epoch counter, so views rely on MarkDirty being called
	// explicitly whenever the owning EditBuffer/TextBuffer mutates —
	// mirroring spec §3's explicit-invalidation model rather than
	// polling.
	textEpoch int

	selection *selectionState
}

// New creates a view over tb using the given width oracle (must match
// tb's own, per spec §9).
func New(tb *text.TextBuffer, oracle *core.WidthOracle) *TextBufferView {
	return &TextBufferView{tb: tb, oracle: oracle}
}

// SetWrapMode sets the wrap policy and invalidates the cache.
func (v *TextBufferView) SetWrapMode(mode WrapMode) {
	if v.wrapMode == mode {
		return
	}
	v.wrapMode = mode
	v.invalidate()
}

// SetWrapWidth sets the wrap width; 0 means "null" (unlimited), per spec
// §4.5. Invalidates the cache on change.
func (v *TextBufferView) SetWrapWidth(n int) {
	if n < 0 {
		n = 0
	}
	if v.wrapWidth == n {
		return
	}
	v.wrapWidth = n
	v.invalidate()
}

// SetViewportSize sets the viewport dimensions. Per spec §4.5, a change
// in width invalidates the wrap cache; height alone does not.
func (v *TextBufferView) SetViewportSize(w, h int) {
	if w != v.viewportW {
		v.viewportW = w
		v.invalidate()
	}
	v.viewportH = h
}

// MarkDirty invalidates the cache, to be called by the owning
// EditBuffer/TextBuffer wrapper on every content mutation (spec §4.5's
// mark_dirty operation, also used internally for (a) in the epoch
// contract: "any buffer mutation").
func (v *TextBufferView) MarkDirty() {
	v.invalidate()
}

func (v *TextBufferView) invalidate() {
	v.cacheValid = false
	v.epoch++
}

// Epoch returns the current cache generation counter.
func (v *TextBufferView) Epoch() int { return v.epoch }

// ensureCache rebuilds LineInfo if the cache is stale. This is the single
// pass over the rope's segments (spec §4.2's walkLinesAndSegments
// pattern): each logical line is visited exactly once.
func (v *TextBufferView) ensureCache() {
	if v.cacheValid {
		return
	}
	info := LineInfo{}
	lineIdx := 0
	v.tb.Rope().Walk(func(text string, hasTrailingBreak bool) {
		segs := wrapLine(text, v.wrapMode, v.wrapWidth, v.oracle)
		for _, s := range segs {
			info.LineStarts = append(info.LineStarts, s.StartCol)
			info.LineWidths = append(info.LineWidths, s.Width)
			info.LineSources = append(info.LineSources, lineIdx)
			info.LineWraps = append(info.LineWraps, s.Wrap)
			if s.Width > info.MaxLineWidth {
				info.MaxLineWidth = s.Width
			}
		}
		lineIdx++
	})
	if len(info.LineStarts) == 0 {
		// Empty buffer: spec §8's boundary behavior.
		info.LineStarts = []int{0}
		info.LineWidths = []int{0}
		info.LineSources = []int{0}
		info.LineWraps = []int{0}
	}
	v.cache = info
	v.cacheValid = true
}

// LineInfo returns the current wrapped line-info cache, rebuilding it if
// stale.
func (v *TextBufferView) LineInfo() LineInfo {
	v.ensureCache()
	return v.cache
}

// MeasureForDimensions computes {line_count, max_width} as if the
// viewport were (w, hHint), without mutating the cache (spec §4.5).
func (v *TextBufferView) MeasureForDimensions(w, hHint int) (lineCount, maxWidth int) {
	savedValid := v.cacheValid
	savedCache := v.cache
	savedWidth := v.wrapWidth
	savedViewportW := v.viewportW

	v.wrapWidth = w
	v.viewportW = w
	v.cacheValid = false
	v.ensureCache()
	lineCount = len(v.cache.LineStarts)
	maxWidth = v.cache.MaxLineWidth

	v.wrapWidth = savedWidth
	v.viewportW = savedViewportW
	v.cache = savedCache
	v.cacheValid = savedValid
	return lineCount, maxWidth
}

// GetPlainText delegates to the underlying buffer.
func (v *TextBufferView) GetPlainText(maxLen int) []byte {
	return v.tb.GetPlainText(maxLen)
}

// Buffer returns the TextBuffer this view projects, for callers that need
// direct rope access (e.g. a renderer slicing visible segment text).
func (v *TextBufferView) Buffer() *text.TextBuffer {
	return v.tb
}
