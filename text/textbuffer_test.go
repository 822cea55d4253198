package text

import (
	"testing"

	"github.com/opentui/core"
)

func TestSetTextRoundTrip(t *testing.T) {
	tb := New(nil)
	tb.SetText([]byte("Hello\nWorld"), true)
	if got := string(tb.GetPlainText(0)); got != "Hello\nWorld" {
		t.Fatalf("GetPlainText = %q", got)
	}
}

func TestSetStyledTextConcatenatesPlainText(t *testing.T) {
	tb := New(nil)
	red := core.Opaque(1, 0, 0)
	tb.SetStyledText([]StyledChunk{
		{Text: "red", Fg: &red},
		{Text: " plain"},
	})
	if got := string(tb.GetPlainText(0)); got != "red plain" {
		t.Fatalf("GetPlainText = %q", got)
	}
	fg, _, _ := tb.StyleAt(0)
	if fg != red {
		t.Fatalf("StyleAt(0) fg = %v, want %v", fg, red)
	}
	fg2, _, _ := tb.StyleAt(5)
	if fg2 == red {
		t.Fatalf("StyleAt(5) should not carry the red chunk's style")
	}
}

func TestHighlightsSortedByColStartThenPriorityDescending(t *testing.T) {
	tb := New(nil)
	tb.SetText([]byte("abcdefgh"), true)
	tb.AddHighlight(0, 2, 5, 1, 1, "a")
	tb.AddHighlight(0, 0, 3, 2, 5, "b")
	tb.AddHighlight(0, 0, 3, 3, 10, "c")

	hs := tb.GetLineHighlights(0)
	if len(hs) != 3 {
		t.Fatalf("len = %d", len(hs))
	}
	if hs[0].StyleID != 3 || hs[1].StyleID != 2 || hs[2].StyleID != 1 {
		t.Fatalf("order = %+v", hs)
	}
}

func TestRemoveHighlightsByRef(t *testing.T) {
	tb := New(nil)
	tb.SetText([]byte("abcdef"), true)
	tb.AddHighlight(0, 0, 2, 1, 1, "lexer")
	tb.AddHighlight(0, 2, 4, 2, 1, "manual")
	tb.RemoveHighlightsByRef("lexer")
	hs := tb.GetLineHighlights(0)
	if len(hs) != 1 || hs[0].RefTag != "manual" {
		t.Fatalf("hs = %+v", hs)
	}
}

func TestClearPreservesDefaultsResetDropsThem(t *testing.T) {
	tb := New(nil)
	tb.SetDefaultFg(core.Opaque(1, 1, 1))
	tb.SetText([]byte("hi"), true)
	tb.Clear()
	fg, _, _ := tb.DefaultStyle()
	if fg != core.Opaque(1, 1, 1) {
		t.Fatalf("Clear should preserve default style")
	}
	tb.Reset()
	fg2, _, _ := tb.DefaultStyle()
	if fg2 != (core.RGBA{}) {
		t.Fatalf("Reset should drop default style, got %v", fg2)
	}
}

func TestPaletteAppendOnlyAndEpoch(t *testing.T) {
	p := NewPalette()
	id1 := p.AddStyle("keyword", Style{})
	epoch1 := p.Epoch()
	id2 := p.AddStyle("keyword", Style{Attrs: core.AttrBold, HasAttrs: true})
	if id1 != id2 {
		t.Fatalf("re-adding an existing name should reuse its id")
	}
	if p.Epoch() == epoch1 {
		t.Fatalf("mutating an existing style should bump the epoch")
	}
}
