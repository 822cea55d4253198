// Package core provides the OpenTUI native render core: a double-buffered
// cell grid with damage-tracked flushing, shared by the higher-level rope,
// text, edit, view, and render packages.
//
// This package contains:
//   - RGBA color and cell representation
//   - The Unicode width oracle (wcwidth / modern-unicode policies)
//   - OptimizedBuffer: the cell grid with alpha-blended drawing primitives
//     and a scissor-clip stack
//
// Higher layers build on this package the way purfecterm-gtk/purfecterm-qt
// build on the purfecterm core: a thin, GUI-free package holding the cell
// model and scissor stack, with stateful frame diffing and the
// front/back swap layered on top of it in package render.
package core

// Attr is a bitmask of cell attributes, matching spec §3's packed
// "attrs: u8" field and spec §6's SGR attribute set (bold, italic,
// underline, dim, strikethrough, inverse, blink).
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrDim
	AttrStrikethrough
	AttrInverse
	AttrBlink
)

// Has reports whether all bits in mask are set.
func (a Attr) Has(mask Attr) bool {
	return a&mask == mask
}

// RGBA is a straight-alpha float color. purfecterm's Color keeps R,G,B as
// uint8 plus a ColorType tag for round-tripping ANSI codes; OptimizedBuffer
// instead needs lossless alpha compositing across repeated draws (spec
// §4.1), so components are float32 in [0,1].
type RGBA struct {
	R, G, B, A float32
}

// Opaque builds a fully-opaque RGBA.
func Opaque(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// Transparent is the zero-alpha color used for "no paint" (e.g. sprite
// pixels skipped by draw_packed_buffer per spec §4.1).
var Transparent = RGBA{}

// Over composites src over dst using straight-alpha blending, exactly as
// spec §4.1 defines for set_cell_blend:
//
//	out   = src·α + dst·(1−α)
//	α_out = α_src + α_dst·(1−α_src)
func (src RGBA) Over(dst RGBA) RGBA {
	if src.A >= 1 {
		return src
	}
	if src.A <= 0 {
		return dst
	}
	inv := 1 - src.A
	return RGBA{
		R: src.R*src.A + dst.R*inv,
		G: src.G*src.A + dst.G*inv,
		B: src.B*src.A + dst.B*inv,
		A: src.A + dst.A*inv,
	}
}

// CellWidth is the display width a cell occupies: 0 (combining mark folded
// into the owning cell), 1, or 2 (left half of a wide grapheme). The right
// half of a wide grapheme is a continuation sentinel per spec §3.
type CellWidth uint8

const (
	WidthZero CellWidth = 0
	WidthOne  CellWidth = 1
	WidthTwo  CellWidth = 2
)

// Cell is a single grid position: {codepoint, fg, bg, attrs, width} per
// spec §3. Continuation marks the right half of a width-2 cluster; it
// always carries Codepoint 0 and must be paired with its owning left cell.
type Cell struct {
	Codepoint    rune
	Fg, Bg       RGBA
	Attrs        Attr
	Width        CellWidth
	Continuation bool
}

// BlankCell returns a default space cell painted with the given colors.
func BlankCell(fg, bg RGBA) Cell {
	return Cell{Codepoint: ' ', Fg: fg, Bg: bg, Width: WidthOne}
}

// continuationOf returns the right-half sentinel for a width-2 owning
// cell: "codepoint 0, same attrs" per spec §3.
func continuationOf(owner Cell) Cell {
	return Cell{
		Codepoint:    0,
		Fg:           owner.Fg,
		Bg:           owner.Bg,
		Attrs:        owner.Attrs,
		Width:        WidthTwo,
		Continuation: true,
	}
}
