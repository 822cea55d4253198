package core

// OptimizedBuffer is a fixed-size cell grid with alpha-blended drawing
// primitives and a scissor-clip stack (spec §3, §4.1). It carries no
// text-shaping state of its own — the rope/text/edit layers produce
// already-segmented runs of (codepoint, width) that this package paints.
//
// Structurally this replaces purfecterm's Buffer: that type bundled the
// cell grid together with scrollback, selection, sprites, and cursor
// auto-scroll. Here those concerns move to higher layers (edit, view); this
// type keeps only what purfecterm's buffer_cells.go/buffer_output.go/
// buffer_crop.go did with the grid itself.
type OptimizedBuffer struct {
	cols, rows   int
	cells        []Cell
	defaultFg    RGBA
	defaultBg    RGBA
	respectAlpha bool
	scissors     *scissorStack
	width        *WidthOracle
	destroyed    bool
}

// NewOptimizedBuffer allocates a cols x rows grid, cleared to the given
// default colors, using the given width oracle for every draw_text call
// made against this buffer for its lifetime (spec §9: the policy is fixed
// at creation).
func NewOptimizedBuffer(cols, rows int, defaultFg, defaultBg RGBA, oracle *WidthOracle) *OptimizedBuffer {
	b := &OptimizedBuffer{
		cols:      cols,
		rows:      rows,
		defaultFg: defaultFg,
		defaultBg: defaultBg,
		width:     oracle,
	}
	b.scissors = newScissorStack(Rect{X: 0, Y: 0, W: cols, H: rows})
	b.cells = make([]Cell, cols*rows)
	b.fillBlank(0, len(b.cells))
	return b
}

func (b *OptimizedBuffer) checkLive() {
	if b.destroyed {
		panic("core: use of destroyed OptimizedBuffer")
	}
}

// Destroy releases the grid. Idempotent; further method calls panic (spec
// §3: "a destroyed handle fails loudly on any further method call").
func (b *OptimizedBuffer) Destroy() {
	b.cells = nil
	b.destroyed = true
}

// Size returns the buffer's current (cols, rows).
func (b *OptimizedBuffer) Size() (cols, rows int) {
	b.checkLive()
	return b.cols, b.rows
}

func (b *OptimizedBuffer) fillBlank(from, to int) {
	blank := BlankCell(b.defaultFg, b.defaultBg)
	for i := from; i < to; i++ {
		b.cells[i] = blank
	}
}

func (b *OptimizedBuffer) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= b.cols || y >= b.rows {
		return 0, false
	}
	return y*b.cols + x, true
}

// Resize reallocates the grid to (cols, rows), copying the overlapping
// region and clearing newly exposed cells to the buffer's default, exactly
// as spec §3 describes for Grid resizing.
func (b *OptimizedBuffer) Resize(cols, rows int) {
	b.checkLive()
	next := make([]Cell, cols*rows)
	blank := BlankCell(b.defaultFg, b.defaultBg)
	for i := range next {
		next[i] = blank
	}
	overlapCols := min(cols, b.cols)
	overlapRows := min(rows, b.rows)
	for y := 0; y < overlapRows; y++ {
		srcStart := y * b.cols
		dstStart := y * cols
		copy(next[dstStart:dstStart+overlapCols], b.cells[srcStart:srcStart+overlapCols])
	}
	b.cells = next
	b.cols, b.rows = cols, rows
	b.scissors = newScissorStack(Rect{X: 0, Y: 0, W: cols, H: rows})
}

// SetRespectAlpha toggles whether this buffer participates in background
// blending when drawn onto another buffer via DrawFrameBuffer (spec §4.1).
func (b *OptimizedBuffer) SetRespectAlpha(v bool) { b.respectAlpha = v }

// RespectAlpha reports the current respect_alpha flag.
func (b *OptimizedBuffer) RespectAlpha() bool { return b.respectAlpha }

// clip returns the current effective scissor clip.
func (b *OptimizedBuffer) clip() Rect {
	return b.scissors.effective()
}

// PushScissor narrows the clip region by the given rectangle.
func (b *OptimizedBuffer) PushScissor(x, y, w, h int) {
	b.checkLive()
	b.scissors.push(Rect{X: x, Y: y, W: w, H: h})
}

// PopScissor undoes the most recent PushScissor. Popping past the bottom
// of the stack is a programming error: fatal when DebugMode is set, a
// no-op otherwise (spec §4.1, §7).
func (b *OptimizedBuffer) PopScissor() {
	b.checkLive()
	b.scissors.pop()
}

// ClearScissors drops every entry, returning the clip to the full grid.
func (b *OptimizedBuffer) ClearScissors() {
	b.checkLive()
	b.scissors.clear()
}

// Clear paints every cell in the full grid (bypassing scissor, matching
// purfecterm's Clear semantics of resetting the whole backing array) to a
// blank cell with the given background.
func (b *OptimizedBuffer) Clear(bg RGBA) {
	b.checkLive()
	blank := BlankCell(b.defaultFg, bg)
	for i := range b.cells {
		b.cells[i] = blank
	}
}

// GetCell returns the cell at (x, y) and whether that position is in
// bounds.
func (b *OptimizedBuffer) GetCell(x, y int) (Cell, bool) {
	b.checkLive()
	i, ok := b.index(x, y)
	if !ok {
		return Cell{}, false
	}
	return b.cells[i], true
}

// setCellRaw writes a cell with no clipping or bounds check performed by
// the caller's contract — used internally once a position is known good.
func (b *OptimizedBuffer) setCellRaw(x, y int, c Cell) {
	i, ok := b.index(x, y)
	if !ok {
		return
	}
	b.cells[i] = c
}

// inClip reports whether (x, y) falls both in the grid and the current
// scissor clip — every draw primitive discards writes outside this region
// silently, per spec §4.1 ("Writes outside the grid or current clip are
// silently discarded").
func (b *OptimizedBuffer) inClip(x, y int) bool {
	return b.clip().Contains(x, y)
}

// FillRect paints (x,y,w,h) to a blank cell of the given color, clipped.
func (b *OptimizedBuffer) FillRect(x, y, w, h int, color RGBA) {
	b.checkLive()
	blank := BlankCell(color, color)
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			if b.inClip(col, row) {
				b.setCellRaw(col, row, blank)
			}
		}
	}
}

// SetCell overwrites the cell at (x, y), clipped and bounds-checked.
func (b *OptimizedBuffer) SetCell(x, y int, codepoint rune, fg, bg RGBA, attrs Attr) {
	b.checkLive()
	if !b.inClip(x, y) {
		return
	}
	w := b.width.RuneWidth(codepoint)
	cell := Cell{Codepoint: codepoint, Fg: fg, Bg: bg, Attrs: attrs, Width: CellWidth(w)}
	if w == 0 {
		cell.Width = WidthZero
	}
	b.placeGrapheme(x, y, cell, w)
}

// SetCellBlend blends fg over the existing fg and bg over the existing bg
// using straight-alpha compositing (spec §4.1).
func (b *OptimizedBuffer) SetCellBlend(x, y int, codepoint rune, fg, bg RGBA, attrs Attr) {
	b.checkLive()
	if !b.inClip(x, y) {
		return
	}
	existing, ok := b.GetCell(x, y)
	if !ok {
		return
	}
	w := b.width.RuneWidth(codepoint)
	cp := codepoint
	if w == 0 {
		cp = existing.Codepoint
	}
	cell := Cell{
		Codepoint: cp,
		Fg:        fg.Over(existing.Fg),
		Bg:        bg.Over(existing.Bg),
		Attrs:     attrs | existing.Attrs,
		Width:     existing.Width,
	}
	if w > 0 {
		cell.Width = CellWidth(w)
	}
	b.placeGrapheme(x, y, cell, w)
}

// placeGrapheme writes cell at (x,y) and, for a width-2 cluster, its
// continuation sentinel at (x+1,y). Before writing, it clears any existing
// width-2 owner whose continuation would otherwise be orphaned — spec
// §4.1's "must first clear the owning cell (both halves)" rule.
func (b *OptimizedBuffer) placeGrapheme(x, y int, cell Cell, width int) {
	b.clearOrphanOwner(x, y)
	b.setCellRaw(x, y, cell)
	if width == 2 {
		b.clearOrphanOwner(x+1, y)
		if b.inClip(x+1, y) {
			b.setCellRaw(x+1, y, continuationOf(cell))
		}
	}
}

// clearOrphanOwner checks whether (x,y) is the continuation half of a
// width-2 cluster and, if so, blanks both halves so a new write never
// leaves a dangling continuation sentinel pointing at nothing.
func (b *OptimizedBuffer) clearOrphanOwner(x, y int) {
	existing, ok := b.GetCell(x, y)
	if !ok || !existing.Continuation {
		return
	}
	blank := BlankCell(b.defaultFg, b.defaultBg)
	b.setCellRaw(x-1, y, blank)
	b.setCellRaw(x, y, blank)
}

// DrawText iterates the runes of text as grapheme clusters (approximated
// here at the rune level; combining marks fold onto the previous cell via
// the width oracle), measuring width via the buffer's oracle, and writes
// them starting at (x, y). A width-2 cluster that would land past the
// clip's right edge wraps: the remaining cell on the current row is padded
// with a space and the cluster restarts at column x on the next row, per
// spec §4.1's wide-grapheme wrap rule. bg is optional (nil means "keep
// existing background" is not supported at this layer — callers pass the
// buffer's default when bg is absent).
func (b *OptimizedBuffer) DrawText(text string, x, y int, fg, bg RGBA, attrs Attr) {
	b.checkLive()
	clip := b.clip()
	col, row := x, y
	for _, r := range text {
		if r == '\n' {
			col = x
			row++
			continue
		}
		w := b.width.RuneWidth(r)
		if w == 0 && col > x {
			// Combining mark: fold onto the previous cell rather than
			// advance the column.
			prevCol := col - 1
			if prev, ok := b.GetCell(prevCol, row); ok {
				_ = prev // codepoint composition beyond the base rune is
				// outside this buffer's model (spec §3's Cell carries a
				// single codepoint); folding here only preserves width.
			}
			continue
		}
		if w == 2 && col+2 > clip.X+clip.W {
			// Wide cluster doesn't fit: pad remainder of row, wrap.
			if b.inClip(col, row) {
				b.setCellRaw(col, row, BlankCell(fg, bg))
			}
			col = x
			row++
		}
		if b.inClip(col, row) {
			cell := Cell{Codepoint: r, Fg: fg, Bg: bg, Attrs: attrs, Width: CellWidth(w)}
			b.placeGrapheme(col, row, cell, w)
		}
		if w == 0 {
			w = 1
		}
		col += w
	}
}

// DrawFrameBuffer copies cells from src into this buffer at (dstX, dstY),
// optionally restricted to srcRect (nil means the whole source). Zero-alpha
// source cells are skipped; when src.RespectAlpha() is set, copied cells
// are blended over the destination instead of overwriting it (spec
// §4.1).
func (b *OptimizedBuffer) DrawFrameBuffer(dstX, dstY int, src *OptimizedBuffer, srcRect *Rect) {
	b.checkLive()
	region := Rect{X: 0, Y: 0, W: src.cols, H: src.rows}
	if srcRect != nil {
		region = region.intersect(*srcRect)
	}
	for sy := region.Y; sy < region.Y+region.H; sy++ {
		for sx := region.X; sx < region.X+region.W; sx++ {
			cell, ok := src.GetCell(sx, sy)
			if !ok || cell.Fg.A == 0 && cell.Bg.A == 0 {
				continue
			}
			dx := dstX + (sx - region.X)
			dy := dstY + (sy - region.Y)
			if !b.inClip(dx, dy) {
				continue
			}
			if src.RespectAlpha() {
				b.SetCellBlend(dx, dy, cell.Codepoint, cell.Fg, cell.Bg, cell.Attrs)
			} else {
				b.setCellRaw(dx, dy, cell)
			}
		}
	}
}

// DrawPackedBuffer paints a flat RGBA pixel buffer (as produced by an
// external image/sprite decoder) at pos using dims for stride, skipping
// fully transparent pixels (spec §4.1). Each pixel becomes one cell; this
// buffer does not attempt sub-cell pixel compositing (out of scope per
// spec §1's "Non-goals: GPU rendering").
func (b *OptimizedBuffer) DrawPackedBuffer(data []RGBA, pos Rect, dims Rect) {
	b.checkLive()
	for y := 0; y < dims.H; y++ {
		for x := 0; x < dims.W; x++ {
			idx := y*dims.W + x
			if idx >= len(data) {
				return
			}
			px := data[idx]
			if px.A == 0 {
				continue
			}
			dx, dy := pos.X+x, pos.Y+y
			if b.inClip(dx, dy) {
				b.setCellRaw(dx, dy, Cell{Codepoint: ' ', Fg: px, Bg: px, Width: WidthOne})
			}
		}
	}
}

// DrawSuperSampleBuffer downsamples a higher-resolution packed pixel
// buffer into cells by averaging each sampleX x sampleY block, used for
// sixel-less "image as glyph" rendering paths (spec §4.1). Fully
// transparent blocks are skipped.
func (b *OptimizedBuffer) DrawSuperSampleBuffer(data []RGBA, srcW, srcH int, pos Rect, sampleX, sampleY int) {
	b.checkLive()
	if sampleX <= 0 {
		sampleX = 1
	}
	if sampleY <= 0 {
		sampleY = 1
	}
	cols := srcW / sampleX
	rows := srcH / sampleY
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			var r, g, bl, a float32
			n := 0
			for sy := 0; sy < sampleY; sy++ {
				for sx := 0; sx < sampleX; sx++ {
					px := cx*sampleX + sx
					py := cy*sampleY + sy
					idx := py*srcW + px
					if idx < 0 || idx >= len(data) {
						continue
					}
					c := data[idx]
					r += c.R
					g += c.G
					bl += c.B
					a += c.A
					n++
				}
			}
			if n == 0 || a == 0 {
				continue
			}
			avg := RGBA{R: r / float32(n), G: g / float32(n), B: bl / float32(n), A: a / float32(n)}
			dx, dy := pos.X+cx, pos.Y+cy
			if b.inClip(dx, dy) {
				b.setCellRaw(dx, dy, Cell{Codepoint: ' ', Fg: avg, Bg: avg, Width: WidthOne})
			}
		}
	}
}

// BorderChars is the 8-glyph set draw_box expects: {topLeft, top, topRight,
// right, bottomRight, bottom, bottomLeft, left}, matching the ordering
// purfecterm/cli/renderer.go's borderCharSet uses.
type BorderChars [8]rune

// SingleLineBorder mirrors purfecterm's "Single" box-drawing set.
var SingleLineBorder = BorderChars{'┌', '─', '┐', '│', '┘', '─', '└', '│'}

// DrawBoxOptions controls optional draw_box chrome.
type DrawBoxOptions struct {
	TitleAlign int // -1 left, 0 center, 1 right
}

// DrawBox paints a rectangular border with optional centered/aligned
// title, grounded on purfecterm/cli/renderer.go's renderBorder.
func (b *OptimizedBuffer) DrawBox(x, y, w, h int, chars BorderChars, opts DrawBoxOptions, borderColor, bg RGBA, title string) {
	b.checkLive()
	if w < 2 || h < 2 {
		return
	}
	b.SetCell(x, y, chars[0], borderColor, bg, 0)
	b.SetCell(x+w-1, y, chars[2], borderColor, bg, 0)
	b.SetCell(x, y+h-1, chars[6], borderColor, bg, 0)
	b.SetCell(x+w-1, y+h-1, chars[4], borderColor, bg, 0)
	for cx := x + 1; cx < x+w-1; cx++ {
		b.SetCell(cx, y, chars[1], borderColor, bg, 0)
		b.SetCell(cx, y+h-1, chars[5], borderColor, bg, 0)
	}
	for cy := y + 1; cy < y+h-1; cy++ {
		b.SetCell(x, cy, chars[7], borderColor, bg, 0)
		b.SetCell(x+w-1, cy, chars[3], borderColor, bg, 0)
	}
	if title == "" {
		return
	}
	maxTitle := w - 2
	if len(title) > maxTitle {
		title = title[:maxTitle]
	}
	var startX int
	switch opts.TitleAlign {
	case -1:
		startX = x + 1
	case 1:
		startX = x + w - 1 - b.width.StringWidth(title)
	default:
		startX = x + (w-b.width.StringWidth(title))/2
	}
	b.DrawText(title, startX, y, borderColor, bg, 0)
}
