package view

import "github.com/opentui/core"

// WrapMode selects how a logical line is split into visual lines (spec
// §4.5).
type WrapMode int

const (
	WrapNone WrapMode = iota
	WrapChar
	WrapWord
)

// segment is one visual line produced by wrapping a single logical line:
// StartCol is a display-column offset from the logical line's start (not
// a global offset — spec §4.5 requires this so selection stays stable
// under re-wrapping), Width is the segment's display width, and Wrap is
// its index within the logical line (0 for the first visual line).
type segment struct {
	StartCol, Width, Wrap int
}

// clusterWidths returns one display width per rune of line, with combining
// marks folded into width 0, matching how OptimizedBuffer/EditBuffer treat
// grapheme clusters elsewhere in this port.
func clusterWidths(line string, oracle *core.WidthOracle) []int {
	runes := []rune(line)
	widths := make([]int, 0, len(runes))
	for _, r := range runes {
		w := 1
		if oracle != nil {
			w = oracle.RuneWidth(r)
		}
		widths = append(widths, w)
	}
	return widths
}

// wrapLine splits one logical line's text into visual segments under the
// given mode/width. wrapWidth<=0 means "no limit" regardless of mode,
// which also covers spec §4.5's set_wrap_width(null) case.
func wrapLine(line string, mode WrapMode, wrapWidth int, oracle *core.WidthOracle) []segment {
	if mode == WrapNone || wrapWidth <= 0 {
		w := 0
		if oracle != nil {
			w = oracle.StringWidth(line)
		} else {
			w = len([]rune(line))
		}
		return []segment{{StartCol: 0, Width: w, Wrap: 0}}
	}
	if mode == WrapWord {
		return wrapWord(line, wrapWidth, oracle)
	}
	return wrapChar(line, wrapWidth, oracle)
}

// wrapChar implements spec §4.5's char-wrap algorithm, including the
// width-2-overflow-by-exactly-1 rule: a wide cluster that would land
// across the boundary forces the current segment to end one column short
// and starts the cluster at column 0 of the next segment.
func wrapChar(line string, wrapWidth int, oracle *core.WidthOracle) []segment {
	widths := clusterWidths(line, oracle)
	var out []segment
	col := 0       // display column within the logical line consumed so far
	curWidth := 0  // width of the visual segment under construction
	segStart := 0  // StartCol of the segment under construction
	wrapIdx := 0
	emit := func() {
		out = append(out, segment{StartCol: segStart, Width: curWidth, Wrap: wrapIdx})
		wrapIdx++
		segStart = col
		curWidth = 0
	}
	for _, w := range widths {
		if curWidth+w > wrapWidth {
			emit()
		}
		curWidth += w
		col += w
	}
	out = append(out, segment{StartCol: segStart, Width: curWidth, Wrap: wrapIdx})
	if len(out) == 0 {
		out = append(out, segment{StartCol: 0, Width: 0, Wrap: 0})
	}
	return out
}

// wrapWord extends wrapChar's column accounting with a record of the most
// recent whitespace-run end seen since the current segment started. On
// overflow it prefers breaking there: the whitespace itself stays at the
// end of the emitted segment (so line_widths still accounts for it) but
// the next segment starts right after it. The one exception: when the
// character that overflows is itself whitespace and the segment has no
// earlier break point, the next segment starts with that whitespace. It
// falls back to a mid-word char-break only when the
// current segment has no whitespace to break at — exactly spec §4.5's
// "break only at whitespace when possible; if a single word exceeds
// wrap_width, it falls back to char-wrap within that word".
func wrapWord(line string, wrapWidth int, oracle *core.WidthOracle) []segment {
	widths := clusterWidths(line, oracle)
	runes := []rune(line)
	var out []segment
	col := 0         // absolute display column consumed so far
	segStart := 0    // absolute column where the current segment starts
	breakAt := -1    // absolute column of the last safe whitespace break, or -1
	wrapIdx := 0

	emit := func(end int) {
		out = append(out, segment{StartCol: segStart, Width: end - segStart, Wrap: wrapIdx})
		wrapIdx++
		segStart = end
		breakAt = -1
	}

	for i, w := range widths {
		if col-segStart+w > wrapWidth {
			if breakAt > segStart {
				emit(breakAt)
			} else {
				emit(col)
			}
		}
		col += w
		ch := runes[i]
		if ch == ' ' || ch == '\t' {
			breakAt = col
		}
	}
	out = append(out, segment{StartCol: segStart, Width: col - segStart, Wrap: wrapIdx})
	if len(out) == 0 {
		out = append(out, segment{StartCol: 0, Width: 0, Wrap: 0})
	}
	return out
}
