// Package text implements TextBuffer: a rope-backed text store with
// styled-chunk metadata, per-line highlight intervals, and a shared
// syntax-style palette reference (spec §4.3).
package text

import (
	"fmt"
	"os"

	"github.com/opentui/core"
	"github.com/opentui/core/rope"
)

// StyledChunk is one piece of a set_styled_text call: a run of text with
// its own optional fg/bg/attrs, concatenated with its neighbors to form
// the buffer's full text.
type StyledChunk struct {
	Text  string
	Fg    *core.RGBA
	Bg    *core.RGBA
	Attrs *core.Attr
}

// styledRange is the buffer-internal representation of a StyledChunk,
// recorded against a char-offset range of the rope after concatenation.
type styledRange struct {
	start, end int
	fg, bg     *core.RGBA
	attrs      *core.Attr
}

// TextBuffer wraps a rope.Rope with styled-chunk metadata, per-line
// highlight intervals, default style, and a shared syntax palette
// reference — structurally the direct generalization of purfecterm's
// Buffer type, minus the terminal-cursor/scrollback/sprite concerns that
// moved to the edit/view/render layers in this port.
type TextBuffer struct {
	rp           *rope.Rope
	oracle       *core.WidthOracle
	styled       []styledRange
	highlights   map[int][]Highlight
	defaultFg    core.RGBA
	defaultBg    core.RGBA
	defaultAttrs core.Attr
	palette      *Palette
	seq          int
	destroyed    bool
}

// New creates an empty TextBuffer using oracle for any width-sensitive
// computation the rope caches (spec §9: width policy is fixed per buffer).
func New(oracle *core.WidthOracle) *TextBuffer {
	return &TextBuffer{
		rp:         rope.New(oracle),
		oracle:     oracle,
		highlights: make(map[int][]Highlight),
	}
}

func (t *TextBuffer) checkLive() {
	if t.destroyed {
		panic("text: use of destroyed TextBuffer")
	}
}

// Destroy releases the buffer. Idempotent; later calls panic (spec §3).
func (t *TextBuffer) Destroy() {
	t.rp = nil
	t.destroyed = true
}

// SetText replaces the entire contents. With resetHistory, the buffer's
// rope (and therefore its memory-region registry) is rebuilt from
// scratch, discarding every previously registered region; without it, the
// new bytes are registered as an additional region on the existing rope,
// preserving whatever the caller layer (EditBuffer) tracks as undo
// history over prior regions (spec §4.3).
func (t *TextBuffer) SetText(data []byte, resetHistory bool) {
	t.checkLive()
	if resetHistory {
		t.rp = rope.New(t.oracle)
		t.rp.Append(data)
	} else {
		n := t.rp.LenChars()
		t.rp.Splice(0, n, data)
	}
	t.styled = nil
	t.highlights = make(map[int][]Highlight)
}

// ReplaceMemBuffer swaps the logical contents for data (spec §4.3's
// replace_mem_buffer). data becomes a new region under the rope's own
// region numbering; memID is accepted but not recorded, so no region can
// later be looked up by it.
// owned is accepted for interface parity with rope.FromBytes and, as
// there, has no behavioral effect: this package always owns a decoded
// copy of the bytes it stores.
func (t *TextBuffer) ReplaceMemBuffer(memID int, data []byte, owned bool) {
	t.checkLive()
	_ = memID
	n := t.rp.LenChars()
	t.rp.Splice(0, n, data)
}

// Append adds data to the end of the buffer, normalizing CRLF (handled by
// the underlying rope). Per spec §4.3, no re-segmentation is attempted
// across the append boundary.
func (t *TextBuffer) Append(data []byte) {
	t.checkLive()
	t.rp.Append(data)
}

// LoadFile reads path and loads it as the buffer's entire contents,
// registering the blob as one owned memory region (spec §6's "File
// formats" contract). The file-read error is propagated rather than
// panicking, matching spec §7's io-kind errors surfacing via return value.
func (t *TextBuffer) LoadFile(path string) error {
	t.checkLive()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("text: load file %q: %w", path, err)
	}
	t.SetText(data, true)
	return nil
}

// SetStyledText replaces the entire text with the concatenation of
// chunks' Text, recording each chunk's (fg?, bg?, attrs?) as a styled
// range over the resulting char offsets; omitted fields fall back to the
// buffer's defaults at resolve time (spec §4.3).
func (t *TextBuffer) SetStyledText(chunks []StyledChunk) {
	t.checkLive()
	var all []byte
	var ranges []styledRange
	offset := 0
	for _, c := range chunks {
		start := offset
		runeLen := len([]rune(c.Text))
		all = append(all, []byte(c.Text)...)
		offset += runeLen
		if c.Fg != nil || c.Bg != nil || c.Attrs != nil {
			ranges = append(ranges, styledRange{start: start, end: offset, fg: c.Fg, bg: c.Bg, attrs: c.Attrs})
		}
	}
	t.rp = rope.New(t.oracle)
	t.rp.Append(all)
	t.styled = ranges
	t.highlights = make(map[int][]Highlight)
}

// SetDefaultFg/Bg/Attrs set the style applied to text that no styled
// range or highlight covers.
func (t *TextBuffer) SetDefaultFg(c core.RGBA)   { t.defaultFg = c }
func (t *TextBuffer) SetDefaultBg(c core.RGBA)   { t.defaultBg = c }
func (t *TextBuffer) SetDefaultAttrs(a core.Attr) { t.defaultAttrs = a }

// DefaultStyle returns the buffer's current default fg/bg/attrs.
func (t *TextBuffer) DefaultStyle() (core.RGBA, core.RGBA, core.Attr) {
	return t.defaultFg, t.defaultBg, t.defaultAttrs
}

// Clear empties the contents. Per spec §4.3, highlight ref_tag mappings
// are conceptually preserved for later re-application by the caller — in
// practice this means Clear drops the line->highlight index (there is no
// text left to index) but does not touch the palette, so a caller that
// re-adds highlights by the same ref_tag after refilling the buffer gets
// the same style ids back.
func (t *TextBuffer) Clear() {
	t.checkLive()
	t.rp = rope.New(t.oracle)
	t.styled = nil
	t.highlights = make(map[int][]Highlight)
}

// Reset additionally drops the palette reference and default styles,
// restoring the buffer to its just-constructed state (spec §4.3).
func (t *TextBuffer) Reset() {
	t.checkLive()
	t.Clear()
	t.palette = nil
	t.defaultFg = core.RGBA{}
	t.defaultBg = core.RGBA{}
	t.defaultAttrs = 0
}

// AddHighlight adds one highlight interval to line.
func (t *TextBuffer) AddHighlight(line, colStart, colEnd, styleID, priority int, refTag string) {
	t.checkLive()
	t.seq++
	h := Highlight{ColStart: colStart, ColEnd: colEnd, StyleID: styleID, Priority: priority, RefTag: refTag, seq: t.seq}
	t.highlights[line] = append(t.highlights[line], h)
	sortHighlights(t.highlights[line])
}

// AddHighlightByCharRange adds a highlight given a char-offset range
// rather than a (line, col) pair, splitting across line boundaries as
// needed using the rope's line index.
func (t *TextBuffer) AddHighlightByCharRange(start, end, styleID, priority int, refTag string) {
	t.checkLive()
	if end < start {
		start, end = end, start
	}
	startRow, startCol, ok := t.rp.OffsetToPosition(start)
	if !ok {
		return
	}
	endRow, endCol, ok := t.rp.OffsetToPosition(end)
	if !ok {
		endRow, endCol = startRow, startCol
	}
	if startRow == endRow {
		t.AddHighlight(startRow, startCol, endCol, styleID, priority, refTag)
		return
	}
	// Spans multiple lines: split at each line's logical end (spec §4.3
	// doesn't enumerate this directly, but add_highlight is
	// single-line by definition — this generalizes the same way a
	// multi-line selection is rendered, one interval per line).
	lineEnd := t.lineDisplayWidth(startRow)
	t.AddHighlight(startRow, startCol, lineEnd, styleID, priority, refTag)
	for row := startRow + 1; row < endRow; row++ {
		t.AddHighlight(row, 0, t.lineDisplayWidth(row), styleID, priority, refTag)
	}
	t.AddHighlight(endRow, 0, endCol, styleID, priority, refTag)
}

func (t *TextBuffer) lineDisplayWidth(row int) int {
	start := t.rp.LineStartOffset(row)
	nextStart := t.rp.LineStartOffset(row + 1)
	text := t.rp.Substring(start, nextStart)
	n := len(text)
	if n > 0 && text[n-1] == '\n' {
		text = text[:n-1]
	}
	if t.oracle == nil {
		return len([]rune(text))
	}
	return t.oracle.StringWidth(text)
}

// RemoveHighlightsByRef removes every highlight across every line tagged
// with ref.
func (t *TextBuffer) RemoveHighlightsByRef(ref string) {
	t.checkLive()
	for line, hs := range t.highlights {
		kept := hs[:0]
		for _, h := range hs {
			if h.RefTag != ref {
				kept = append(kept, h)
			}
		}
		t.highlights[line] = kept
	}
}

// ClearLineHighlights drops every highlight on one line.
func (t *TextBuffer) ClearLineHighlights(line int) {
	t.checkLive()
	delete(t.highlights, line)
}

// ClearAllHighlights drops every highlight in the buffer.
func (t *TextBuffer) ClearAllHighlights() {
	t.checkLive()
	t.highlights = make(map[int][]Highlight)
}

// SetSyntaxStyle installs (or clears, with nil) the shared palette this
// buffer's highlight style ids resolve against.
func (t *TextBuffer) SetSyntaxStyle(p *Palette) {
	t.checkLive()
	t.palette = p
}

// Palette returns the buffer's current syntax palette, or nil.
func (t *TextBuffer) Palette() *Palette { return t.palette }

// GetLineHighlights returns line's highlights, sorted by ColStart then
// Priority descending.
func (t *TextBuffer) GetLineHighlights(line int) []Highlight {
	t.checkLive()
	hs := t.highlights[line]
	out := make([]Highlight, len(hs))
	copy(out, hs)
	return out
}

// GetPlainText returns up to maxLen runes of the buffer's text as bytes;
// maxLen<=0 means unbounded.
func (t *TextBuffer) GetPlainText(maxLen int) []byte {
	t.checkLive()
	n := t.rp.LenChars()
	if maxLen > 0 && maxLen < n {
		n = maxLen
	}
	return []byte(t.rp.Substring(0, n))
}

// Rope exposes the underlying rope for the edit/view layers built on top
// of TextBuffer (they need offset/position conversion and Walk directly;
// spec §4.4/§4.5 operations are implemented one layer up using this).
func (t *TextBuffer) Rope() *rope.Rope { return t.rp }

// StyleAt resolves the effective (fg, bg, attrs) for char offset off,
// applying: a styled range if one covers off, else the buffer defaults.
// Highlights are resolved separately by the view layer since they are
// keyed by (line, column) rather than absolute char offset.
func (t *TextBuffer) StyleAt(off int) (core.RGBA, core.RGBA, core.Attr) {
	fg, bg, attrs := t.defaultFg, t.defaultBg, t.defaultAttrs
	for _, r := range t.styled {
		if off >= r.start && off < r.end {
			if r.fg != nil {
				fg = *r.fg
			}
			if r.bg != nil {
				bg = *r.bg
			}
			if r.attrs != nil {
				attrs = *r.attrs
			}
		}
	}
	return fg, bg, attrs
}
