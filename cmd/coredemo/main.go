// Command coredemo is a minimal editor wired directly to the opentui/core
// packages: it loads a file (or a builtin sample) into an EditBuffer,
// drives a render.Renderer with box/status-bar chrome, and reads keyboard
// input through github.com/phroun/direct-key-handler, the same library
// purfecterm/cli/input.go uses. Grounded on purfecterm/cli/example/main.go
// and purfecterm/cli/terminal.go's Options/New/Start lifecycle.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/phroun/direct-key-handler/keyboard"

	"github.com/opentui/core"
	"github.com/opentui/core/edit"
	"github.com/opentui/core/render"
	"github.com/opentui/core/text"
	"github.com/opentui/core/view"
)

const sample = `package main

func main() {
	// coredemo sample buffer — edit me.
	println("hello, opentui/core")
}
`

func main() {
	filePath := flag.String("file", "", "file to load (defaults to a builtin sample)")
	lang := flag.String("lang", "go", "chroma lexer name for syntax highlighting, empty to disable")
	wrapFlag := flag.String("wrap", "word", "wrap mode: none, char, word")
	debugTrace := flag.Bool("debug", false, "enable [DEBUG]/[WARN] tracing to stderr")
	flag.Parse()

	oracle := core.NewWidthOracle(core.WidthPolicyUnicode, false)
	tb := text.New(oracle)

	if *filePath != "" {
		if err := tb.LoadFile(*filePath); err != nil {
			fmt.Fprintf(os.Stderr, "coredemo: %v\n", err)
			os.Exit(1)
		}
	} else {
		tb.SetText([]byte(sample), true)
	}

	if *lang != "" {
		applySyntaxHighlighting(tb, *lang)
	}

	eb := edit.New(tb, oracle)
	tv := view.New(tb, oracle)
	tv.SetWrapMode(parseWrapMode(*wrapFlag))
	tv.SetWrapWidth(0) // sized once the viewport is known, below
	ev := view.NewEditorView(tv, eb)
	ev.SetScrollMargin(0.2)

	tty := render.OpenTTY(os.Stdout)
	if err := tty.EnterRawMode(); err != nil {
		fmt.Fprintf(os.Stderr, "coredemo: %v\n", err)
		os.Exit(1)
	}
	defer tty.Restore()

	cols, rows, err := tty.Size()
	if err != nil || cols <= 0 || rows <= 0 {
		cols, rows = 80, 24
	}

	caps := render.Probe(os.Stdin, os.Stdout, *debugTrace)
	writer := render.NewNativeWriter(tty)
	scheme := core.DefaultColorScheme()
	r := render.NewRenderer(cols, rows, scheme, true, oracle, writer, caps, *debugTrace)

	const chromeW, chromeH = 2, 3 // border (1 each side) + status bar row
	viewportW, viewportH := cols-chromeW, rows-chromeH
	tv.SetWrapWidth(viewportW)
	ev.SetViewportSize(viewportW, viewportH)

	os.Stdout.WriteString("\x1b[?1049h\x1b[2J")
	defer os.Stdout.WriteString("\x1b[?1049l")

	stop := make(chan struct{})
	go r.RenderLoop()
	go render.WatchResize(stop, func() {
		if c, rr, err := tty.Size(); err == nil {
			r.Resize(c, rr)
			tv.SetWrapWidth(c - chromeW)
			ev.SetViewportSize(c-chromeW, rr-chromeH)
			r.RequestRender()
		}
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	quit := make(chan struct{})
	manageTerminal := false
	kb := keyboard.New(keyboard.Options{InputReader: os.Stdin, ManageTerminal: &manageTerminal})
	kb.OnKey = func(key string) {
		handleKey(key, eb, ev, quit)
		draw(r, tv, ev, cols, rows)
		r.RequestRender()
	}
	if err := kb.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "coredemo: starting keyboard handler: %v\n", err)
		os.Exit(1)
	}

	draw(r, tv, ev, cols, rows)
	r.RequestRender()

	select {
	case <-sig:
	case <-quit:
	}

	kb.Stop()
	close(stop)
	r.Shutdown()
}

func parseWrapMode(s string) view.WrapMode {
	switch s {
	case "none":
		return view.WrapNone
	case "char":
		return view.WrapChar
	default:
		return view.WrapWord
	}
}

// applySyntaxHighlighting tokenizes the buffer's current text with chroma's
// lexer for lang and installs one highlight per token, exercising the same
// lex-then-highlight pipeline AhnafCodes-basementui/go/tui/highlight_chroma.go
// uses, generalized from ANSI spans to TextBuffer's char-range highlights.
func applySyntaxHighlighting(tb *text.TextBuffer, lang string) {
	palette := text.NewChromaPalette("monokai")
	tb.SetSyntaxStyle(palette)

	lexer := lexers.Get(lang)
	if lexer == nil {
		return
	}
	code := string(tb.GetPlainText(0))
	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return
	}
	offset := 0
	for _, tok := range iter.Tokens() {
		length := len([]rune(tok.Value))
		if id, ok := palette.StyleID(tok.Type.Category().String()); ok {
			tb.AddHighlightByCharRange(offset, offset+length, id, 0, "syntax")
		}
		offset += length
	}
}

func handleKey(key string, eb *edit.EditBuffer, ev *view.EditorView, quit chan struct{}) {
	switch key {
	case "C-q", "C-c":
		select {
		case <-quit:
		default:
			close(quit)
		}
	case "Up":
		ev.MoveUpVisual()
	case "Down":
		ev.MoveDownVisual()
	case "Left":
		eb.MoveCursorLeft()
	case "Right":
		eb.MoveCursorRight()
	case "Home":
		row, _ := ev.GetVisualSOL()
		eb.SetCursor(row, 0)
	case "End":
		row, col := ev.GetVisualEOL()
		eb.SetCursor(row, col)
	case "Enter":
		eb.NewLine()
	case "Tab":
		eb.InsertText("\t")
	case "Backspace":
		eb.DeleteCharBackward()
	default:
		if len([]rune(key)) == 1 {
			eb.InsertText(key)
		}
	}
}

// segmentText returns the text of one wrapped visual segment: the
// substring of logical line logicalRow spanning display columns
// [startCol, startCol+width). PositionToOffset takes display columns, so
// the slice is exact through wide graphemes as well.
func segmentText(tv *view.TextBufferView, logicalRow, startCol, width int) string {
	rp := tv.Buffer().Rope()
	s := rp.PositionToOffset(logicalRow, startCol)
	e := rp.PositionToOffset(logicalRow, startCol+width)
	if e < s {
		e = s
	}
	return rp.Substring(s, e)
}

// draw paints the box chrome, the visible wrapped lines, and a status bar
// into the renderer's back buffer, grounded on
// purfecterm/cli/renderer.go's Render/renderBorder/renderStatusBar.
func draw(r *render.Renderer, tv *view.TextBufferView, ev *view.EditorView, cols, rows int) {
	buf := r.Back()
	scheme := core.DefaultColorScheme()
	fg, bg := scheme.Foreground(true), scheme.Background(true)
	buf.Clear(bg)
	buf.DrawBox(0, 0, cols, rows-1, core.SingleLineBorder, core.DrawBoxOptions{TitleAlign: 0}, fg, bg, "coredemo")

	_, offsetY, _, viewportH := ev.GetViewport()
	info := tv.LineInfo()

	for row := 0; row < viewportH && offsetY+row < len(info.LineStarts); row++ {
		idx := offsetY + row
		logicalRow := info.LineSources[idx]
		startCol := info.LineStarts[idx]
		width := info.LineWidths[idx]
		segText := segmentText(tv, logicalRow, startCol, width)
		buf.DrawText(segText, 1, 1+row, fg, bg, 0)
	}

	cur := ev.GetVisualCursor()
	r.SetCursor(1+cur.VisualCol, 1+cur.VisualRow, true)

	status := fmt.Sprintf(" row %d, col %d ", cur.LogicalRow+1, cur.LogicalCol+1)
	buf.DrawText(status, 1, rows-1, bg, fg, core.AttrInverse)

	r.Swap()
}
