// Package rope implements the text-storage layer under TextBuffer: a
// piece-table keyed by Unicode scalar value offsets, with a cumulative-offset
// index that locates the piece holding an offset by binary search. Line-start
// lookups (and so (row, col) conversions) scan the pieces linearly.
//
// Nothing in the retrieved reference pack implements a rope or piece table
// (grepped across every example repo and other_examples/ file — none
// exists), so this package has no direct teacher file to adapt. It is
// grounded instead on generalizing purfecterm's own caching discipline:
// buffer_lines.go/buffer.go cache per-line width and count rather than
// rescanning the grid on every query, and this package applies the same
// idea one level down, caching per-piece char/newline/width totals so
// queries never rescan already-ingested text.
package rope

import (
	"strings"

	"github.com/opentui/core"
)

// region is an immutable, append-only decoded-rune buffer. Pieces slice
// into a region; regions are kept alive for the Rope's lifetime by the
// Rope.regions slice (spec §4.2's "every leaf is a slice into a registered
// memory region kept alive for the rope's lifetime").
type region struct {
	id    int
	runes []rune
	bytes int // original UTF-8 byte length, for LenBytes accounting
}

// piece is one contiguous span of a region, with cached totals so rope-wide
// queries (LenChars, LineCount, ...) never rescan ingested text.
type piece struct {
	bufID        int
	start, count int // rune range [start, start+count) into its region
	newlines     int
	maxLineWidth int
	displayWidth int
}

// Rope is a piece-table text store: newline-aware, byte- and char-counted,
// with offset<->(row,col) conversion. Not safe for concurrent use without
// external synchronization, matching TextBuffer's single-writer contract
// (spec §5).
type Rope struct {
	oracle    *core.WidthOracle
	regions   []*region
	pieces    []piece
	nextBufID int

	// cumulative prefix sums over pieces, index i = total chars/newlines
	// before piece i. Rebuilt lazily after any mutation.
	cumChars    []int
	cumNewlines []int
	dirty       bool
}

// New creates an empty rope. oracle is used only to compute each piece's
// cached displayWidth/maxLineWidth totals (spec §3's rope node cache);
// nil is accepted and treated as "don't track display width" (LenChars/
// LineCount/offset math all work without it).
func New(oracle *core.WidthOracle) *Rope {
	return &Rope{oracle: oracle, dirty: true}
}

// FromBytes creates a rope seeded with data. owned is accepted for
// interface parity with spec §4.2's from_bytes(bytes, owned) but has no
// behavioral effect here: the rope always decodes into its own rune
// buffer, so there is never a second owner of the caller's []byte to
// worry about corrupting.
func FromBytes(data []byte, owned bool, oracle *core.WidthOracle) *Rope {
	r := New(oracle)
	r.registerAndAppend(data)
	return r
}

func normalizeCRLF(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// registerAndAppend decodes data (after CRLF normalization), registers it
// as a new memory region, and appends one piece spanning all of it.
func (r *Rope) registerAndAppend(data []byte) {
	text := normalizeCRLF(string(data))
	runes := []rune(text)
	id := r.nextBufID
	r.nextBufID++
	r.regions = append(r.regions, &region{id: id, runes: runes, bytes: len(data)})
	if len(runes) == 0 {
		return
	}
	r.pieces = append(r.pieces, r.makePiece(id, runes, 0, len(runes)))
	r.dirty = true
}

func (r *Rope) makePiece(bufID int, runes []rune, start, count int) piece {
	p := piece{bufID: bufID, start: start, count: count}
	lineWidth := 0
	for i := start; i < start+count; i++ {
		ch := runes[i]
		if ch == '\n' {
			p.newlines++
			if lineWidth > p.maxLineWidth {
				p.maxLineWidth = lineWidth
			}
			lineWidth = 0
			continue
		}
		w := 1
		if r.oracle != nil {
			w = r.oracle.RuneWidth(ch)
		}
		p.displayWidth += w
		lineWidth += w
	}
	if lineWidth > p.maxLineWidth {
		p.maxLineWidth = lineWidth
	}
	return p
}

func (r *Rope) regionRunes(bufID int) []rune {
	for _, reg := range r.regions {
		if reg.id == bufID {
			return reg.runes
		}
	}
	return nil
}

func (r *Rope) rebuildIndex() {
	if !r.dirty {
		return
	}
	r.cumChars = make([]int, len(r.pieces)+1)
	r.cumNewlines = make([]int, len(r.pieces)+1)
	for i, p := range r.pieces {
		r.cumChars[i+1] = r.cumChars[i] + p.count
		r.cumNewlines[i+1] = r.cumNewlines[i] + p.newlines
	}
	r.dirty = false
}

// Append adds data to the end of the rope as a new piece, normalizing
// CRLF to LF. Spec §4.3 notes the TextBuffer layer is responsible for not
// re-segmenting graphemes across append boundaries; this rope layer is
// purely char-oriented and has no grapheme notion to preserve.
func (r *Rope) Append(data []byte) {
	r.registerAndAppend(data)
}

// LenChars returns the total Unicode scalar value count.
func (r *Rope) LenChars() int {
	r.rebuildIndex()
	return r.cumChars[len(r.cumChars)-1]
}

// LenBytes returns the total original UTF-8 byte length across all
// registered regions — exposed "for allocation sizing only" per spec §4.2,
// since offsets elsewhere in the API are always in chars, not bytes.
func (r *Rope) LenBytes() int {
	total := 0
	for _, reg := range r.regions {
		total += reg.bytes
	}
	return total
}

// LineCount returns the number of lines: newlines + 1 (an empty rope has
// exactly one, empty, line).
func (r *Rope) LineCount() int {
	r.rebuildIndex()
	return r.cumNewlines[len(r.cumNewlines)-1] + 1
}

// pieceAt finds the piece containing char offset off (0 <= off <=
// LenChars()) and returns its index plus the char offset within that
// piece, via binary search over the prefix-sum index.
func (r *Rope) pieceAt(off int) (pieceIdx, within int) {
	r.rebuildIndex()
	lo, hi := 0, len(r.pieces)
	for lo < hi {
		mid := (lo + hi) / 2
		if r.cumChars[mid+1] <= off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(r.pieces) {
		return len(r.pieces), 0
	}
	return lo, off - r.cumChars[lo]
}

// Substring returns the text in [startChar, endChar).
func (r *Rope) Substring(startChar, endChar int) string {
	r.rebuildIndex()
	total := r.LenChars()
	if startChar < 0 {
		startChar = 0
	}
	if endChar > total {
		endChar = total
	}
	if startChar >= endChar {
		return ""
	}
	var sb strings.Builder
	remaining := endChar - startChar
	idx, within := r.pieceAt(startChar)
	for remaining > 0 && idx < len(r.pieces) {
		p := r.pieces[idx]
		runes := r.regionRunes(p.bufID)
		avail := p.count - within
		take := avail
		if take > remaining {
			take = remaining
		}
		s := p.start + within
		sb.WriteString(string(runes[s : s+take]))
		remaining -= take
		within = 0
		idx++
	}
	return sb.String()
}

// Splice replaces [startChar, endChar) with data, normalizing CRLF to LF
// on ingest. The replaced range and the inserted text become new pieces;
// the pieces table is not rebalanced into a tree, just kept as an ordered
// slice — adequate for the access patterns the view/edit layers make
// (sequential scans and localized edits), though not the O(log n) splice
// a balanced rope achieves for pathological edit patterns.
func (r *Rope) Splice(startChar, endChar int, data []byte) {
	r.rebuildIndex()
	total := r.LenChars()
	if startChar < 0 {
		startChar = 0
	}
	if endChar > total {
		endChar = total
	}
	if endChar < startChar {
		endChar = startChar
	}

	before := r.splitPieces(startChar)
	after := r.splitPieces(endChar)

	head := append([]piece(nil), r.pieces[:before]...)
	tail := append([]piece(nil), r.pieces[after:]...)

	var mid []piece
	if len(data) > 0 {
		text := normalizeCRLF(string(data))
		runes := []rune(text)
		id := r.nextBufID
		r.nextBufID++
		r.regions = append(r.regions, &region{id: id, runes: runes, bytes: len(data)})
		mid = append(mid, r.makePiece(id, runes, 0, len(runes)))
	}

	r.pieces = append(head, append(mid, tail...)...)
	r.dirty = true
}

// splitPieces ensures a piece boundary falls exactly at char offset off,
// splitting the piece straddling it if necessary, and returns the piece
// index at which off begins.
func (r *Rope) splitPieces(off int) int {
	r.rebuildIndex()
	if off <= 0 {
		return 0
	}
	if off >= r.LenChars() {
		return len(r.pieces)
	}
	idx, within := r.pieceAt(off)
	if within == 0 {
		return idx
	}
	p := r.pieces[idx]
	runes := r.regionRunes(p.bufID)
	left := r.makePiece(p.bufID, runes, p.start, within)
	right := r.makePiece(p.bufID, runes, p.start+within, p.count-within)
	next := make([]piece, 0, len(r.pieces)+1)
	next = append(next, r.pieces[:idx]...)
	next = append(next, left, right)
	next = append(next, r.pieces[idx+1:]...)
	r.pieces = next
	r.dirty = true
	r.rebuildIndex()
	return idx + 1
}

// OffsetToPosition converts a char offset to (row, col), both 0-based. col
// is a display column (spec §3's cursor invariant: "col is a display
// column"), summed via the width oracle rather than counted in chars, so a
// width-2 grapheme before off shifts col by 2, not 1. ok is false if off is
// out of range (spec §4.2's `| None`).
func (r *Rope) OffsetToPosition(off int) (row, col int, ok bool) {
	r.rebuildIndex()
	if off < 0 || off > r.LenChars() {
		return 0, 0, false
	}
	row = r.rowAt(off)
	lineStart := r.LineStartOffset(row)
	return row, r.displayWidth(lineStart, off), true
}

// rowAt returns the 0-based line number containing char offset off, by
// counting newlines strictly before it.
func (r *Rope) rowAt(off int) int {
	idx, within := r.pieceAt(off)
	nlBefore := r.cumNewlines[idx]
	p := r.pieceAtSafe(idx)
	runes := r.regionRunes(p.bufID)
	for i := 0; i < within; i++ {
		if runes[p.start+i] == '\n' {
			nlBefore++
		}
	}
	return nlBefore
}

// displayWidth sums the display width of the runes in [start, end) via the
// width oracle (1 per rune when none was supplied, i.e. a char count).
func (r *Rope) displayWidth(start, end int) int {
	if end <= start {
		return 0
	}
	width := 0
	for _, ch := range r.Substring(start, end) {
		width += r.runeWidth(ch)
	}
	return width
}

// runeWidth reports ch's display width via the oracle, or 1 if the rope
// has none (char-count fallback, matching makePiece's own nil-oracle rule).
func (r *Rope) runeWidth(ch rune) int {
	if r.oracle == nil {
		return 1
	}
	return r.oracle.RuneWidth(ch)
}

func (r *Rope) pieceAtSafe(idx int) piece {
	if idx < 0 || idx >= len(r.pieces) {
		return piece{}
	}
	return r.pieces[idx]
}

// LineStartOffset returns the char offset where line `row` begins. Rows
// beyond the last line clamp to LenChars() (the end-of-document position),
// matching the clamp-on-out-of-range convention used by
// set_cursor_to_line_col (spec §4.4, §9 open question resolved in
// DESIGN.md: clamp, not fail).
func (r *Rope) LineStartOffset(row int) int {
	r.rebuildIndex()
	if row <= 0 {
		return 0
	}
	total := r.LenChars()
	// Linear scan over pieces tallying newlines; rope sizes in this
	// engine's target use (editor buffers, not multi-GB logs) make this
	// acceptable, and it reuses the same single-pass discipline as Walk.
	seen := 0
	charsBefore := 0
	for _, p := range r.pieces {
		if seen+p.newlines < row {
			seen += p.newlines
			charsBefore += p.count
			continue
		}
		runes := r.regionRunes(p.bufID)
		for i := 0; i < p.count; i++ {
			if runes[p.start+i] == '\n' {
				seen++
				if seen == row {
					return charsBefore + i + 1
				}
			}
		}
		charsBefore += p.count
	}
	return total
}

// PositionToOffset converts (row, col) to a char offset. col is a display
// column, matching OffsetToPosition; it is walked rune-by-rune summing
// widths via the oracle rather than added as a char count, so a request
// that lands inside a width-2 cluster snaps to the cluster's start rather
// than splitting it. Both row and col clamp to the document's range.
func (r *Rope) PositionToOffset(row, col int) int {
	lineStart := r.LineStartOffset(row)
	nextStart := r.LineStartOffset(row + 1)
	lineEnd := nextStart
	if nextStart > lineStart && r.charAt(nextStart-1) == '\n' {
		lineEnd--
	}
	if lineEnd < lineStart {
		lineEnd = lineStart
	}
	if col <= 0 {
		return lineStart
	}
	width := 0
	off := lineStart
	for off < lineEnd {
		w := r.runeWidth(r.charAt(off))
		if width+w > col {
			break
		}
		width += w
		off++
		if width >= col {
			break
		}
	}
	return off
}

func (r *Rope) charAt(off int) rune {
	if off < 0 || off >= r.LenChars() {
		return 0
	}
	idx, within := r.pieceAt(off)
	p := r.pieceAtSafe(idx)
	runes := r.regionRunes(p.bufID)
	if runes == nil || within >= p.count {
		return 0
	}
	return runes[p.start+within]
}

// Walk calls visit once per contiguous line-segment across the whole
// rope, in document order, in a single traversal — the
// walkLinesAndSegments pattern spec §4.2 requires so that callers
// building line/segment structures (TextBufferView, EditorView) never
// issue repeated get(i) scans. hasTrailingBreak is true when the segment
// ends with the newline that terminates its line. The final segment (the
// text after the last newline, empty when the document ends with one) is
// always emitted with hasTrailingBreak false, so the number of segments
// equals LineCount().
func (r *Rope) Walk(visit func(text string, hasTrailingBreak bool)) {
	var sb strings.Builder
	flush := func(trailingBreak bool) {
		visit(sb.String(), trailingBreak)
		sb.Reset()
	}
	for _, p := range r.pieces {
		runes := r.regionRunes(p.bufID)
		start := p.start
		for i := 0; i < p.count; i++ {
			ch := runes[p.start+i]
			if ch == '\n' {
				sb.WriteString(string(runes[start : p.start+i]))
				flush(true)
				start = p.start + i + 1
			}
		}
		if start < p.start+p.count {
			sb.WriteString(string(runes[start : p.start+p.count]))
		}
	}
	flush(false)
}
