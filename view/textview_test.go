package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opentui/core"
	"github.com/opentui/core/text"
)

func newView(t *testing.T, content string) *TextBufferView {
	t.Helper()
	tb := text.New(nil)
	tb.SetText([]byte(content), true)
	return New(tb, nil)
}

func TestLineInfoNoWrap(t *testing.T) {
	v := newView(t, "Hello\nWorld")
	info := v.LineInfo()
	assert.Equal(t, []int{0, 0}, info.LineStarts)
	assert.Equal(t, []int{5, 5}, info.LineWidths)
}

func TestLineInfoCharWrap(t *testing.T) {
	v := newView(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	v.SetWrapMode(WrapChar)
	v.SetWrapWidth(10)
	info := v.LineInfo()
	assert.Equal(t, []int{0, 10, 20}, info.LineStarts)
	assert.Equal(t, []int{10, 10, 6}, info.LineWidths)
}

func TestEmptyBufferLineInfo(t *testing.T) {
	v := newView(t, "")
	info := v.LineInfo()
	assert.Equal(t, []int{0}, info.LineStarts)
	assert.Equal(t, []int{0}, info.LineWidths)
}

func TestMeasureForDimensionsDoesNotMutateCache(t *testing.T) {
	v := newView(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	v.SetWrapMode(WrapChar)
	v.SetWrapWidth(10)
	before := v.LineInfo()
	lc, mw := v.MeasureForDimensions(5, 100)
	assert.Equal(t, 6, lc) // 26 chars / 5 per line, rounding up
	assert.Equal(t, 5, mw)
	after := v.LineInfo()
	assert.Equal(t, before, after)
}

func TestSelectionOverPlainASCII(t *testing.T) {
	v := newView(t, "Hello World")
	v.SetSelection(6, 11, nil, nil)
	assert.Equal(t, "World", v.GetSelectedText())
}

func TestWordWrapBreaksAtWhitespace(t *testing.T) {
	segs := wrapWord("the quick brown fox", 10, nil)
	var widths []int
	for _, s := range segs {
		widths = append(widths, s.Width)
	}
	for _, w := range widths {
		if w > 10 {
			t.Fatalf("segment width %d exceeds wrap width 10: %v", w, widths)
		}
	}
	assert.True(t, len(segs) >= 2)
}

func TestWordWrapFallsBackToCharWrapForLongWord(t *testing.T) {
	segs := wrapWord("supercalifragilisticexpialidocious", 10, nil)
	for _, s := range segs {
		if s.Width > 10 {
			t.Fatalf("segment width %d exceeds 10", s.Width)
		}
	}
}

func TestWideGraphemeNeverStraddlesWrapBoundary(t *testing.T) {
	oracle := core.NewWidthOracle(core.WidthPolicyUnicode, false)
	tb := text.New(oracle)
	tb.SetText([]byte("123456789中"), true) // 9 ascii + 1 CJK (width 2)
	v := New(tb, oracle)
	v.SetWrapMode(WrapChar)
	v.SetWrapWidth(10)
	info := v.LineInfo()
	assert.Equal(t, 2, len(info.LineStarts))
	for _, w := range info.LineWidths {
		assert.LessOrEqual(t, w, 10)
	}
}
