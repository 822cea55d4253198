package text

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/opentui/core"
)

// Style is what a style id resolves to: optional fg/bg overrides plus an
// attribute mask, applied over the TextBuffer's default style when present
// (spec §3's "Syntax-style palette").
type Style struct {
	Fg, Bg   *core.RGBA
	Attrs    core.Attr
	HasAttrs bool
}

// Palette is the append-only `name -> style_id` map spec §3 describes,
// shared by reference across any number of TextBuffers via SetSyntaxStyle.
// Lookups are cached per consumer and invalidated only by a palette
// mutation (AddStyle), tracked here with a monotonic epoch.
type Palette struct {
	names  map[string]int
	styles []Style
	epoch  int
}

// NewPalette returns an empty, mutable palette.
func NewPalette() *Palette {
	return &Palette{names: make(map[string]int)}
}

// AddStyle registers name -> a new style id, or returns the existing id if
// name is already registered (append-only: styles are never removed or
// renumbered once assigned).
func (p *Palette) AddStyle(name string, style Style) int {
	if id, ok := p.names[name]; ok {
		p.styles[id] = style
		p.epoch++
		return id
	}
	id := len(p.styles)
	p.styles = append(p.styles, style)
	p.names[name] = id
	p.epoch++
	return id
}

// StyleID looks up a previously registered name.
func (p *Palette) StyleID(name string) (int, bool) {
	id, ok := p.names[name]
	return id, ok
}

// Resolve returns the style for an id, or the zero Style if out of range.
func (p *Palette) Resolve(id int) Style {
	if id < 0 || id >= len(p.styles) {
		return Style{}
	}
	return p.styles[id]
}

// Epoch returns the current mutation counter, so view-layer caches of
// resolved colors can invalidate exactly on palette mutation, matching the
// "cached lookups are invalidated only on palette mutation" contract in
// spec §3.
func (p *Palette) Epoch() int { return p.epoch }

// NewChromaPalette builds a Palette from a named chroma style (e.g.
// "monokai", "github"), mapping chroma's token categories to style ids —
// the same category-to-appearance mapping
// AhnafCodes-basementui/go/tui/highlight_chroma.go uses, generalized from
// ANSI 16-color escape strings to this package's RGBA-based Style so it
// composes with OptimizedBuffer's true-color cells instead of emitting
// raw escapes itself.
func NewChromaPalette(styleName string) *Palette {
	st := styles.Get(styleName)
	if st == nil {
		st = styles.Fallback
	}
	p := NewPalette()
	categories := []chroma.TokenType{
		chroma.Keyword,
		chroma.Name,
		chroma.NameFunction,
		chroma.NameClass,
		chroma.LiteralString,
		chroma.LiteralNumber,
		chroma.Comment,
		chroma.Operator,
		chroma.Punctuation,
		chroma.Error,
		chroma.GenericDeleted,
		chroma.GenericInserted,
	}
	for _, tt := range categories {
		entry := st.Get(tt)
		s := Style{}
		if entry.Colour.IsSet() {
			c := chromaColourToRGBA(entry.Colour)
			s.Fg = &c
		}
		if entry.Background.IsSet() {
			c := chromaColourToRGBA(entry.Background)
			s.Bg = &c
		}
		if entry.Bold == chroma.Yes {
			s.Attrs |= core.AttrBold
			s.HasAttrs = true
		}
		if entry.Italic == chroma.Yes {
			s.Attrs |= core.AttrItalic
			s.HasAttrs = true
		}
		if entry.Underline == chroma.Yes {
			s.Attrs |= core.AttrUnderline
			s.HasAttrs = true
		}
		p.AddStyle(tt.String(), s)
	}
	return p
}

func chromaColourToRGBA(c chroma.Colour) core.RGBA {
	return core.Opaque(float32(c.Red())/255, float32(c.Green())/255, float32(c.Blue())/255)
}
