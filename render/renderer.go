package render

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/opentui/core"
)

// Renderer owns the double-buffer swap and the render-thread's diff/encode
// pass (spec §5): the main thread draws into Back(), then calls Swap;
// the render thread calls Render, which encodes Front() against the last
// emitted frame and flushes it through a Writer. The two synchronize only
// at Swap's single critical section — grounded on
// purfecterm/cli/renderer.go's RenderLoop/Render pair, generalized from a
// single shared buffer to the explicit front/back split spec §5 requires.
type Renderer struct {
	mu sync.Mutex

	front, back *core.OptimizedBuffer
	prevFrame   Frame

	writer  *Writer
	encoder Encoder
	caps    Capabilities

	cursorX, cursorY int
	cursorVisible    bool

	renderNeeded bool
	debugTrace   bool

	shutdown chan struct{}
}

// NewRenderer creates a Renderer with matching front/back buffers of the
// given size, following purfecterm/cli.Options' size-defaulting pattern.
func NewRenderer(cols, rows int, scheme core.ColorScheme, dark bool, oracle *core.WidthOracle, w *Writer, caps Capabilities, debugTrace bool) *Renderer {
	fg, bg := scheme.Foreground(dark), scheme.Background(dark)
	return &Renderer{
		front:      core.NewOptimizedBuffer(cols, rows, fg, bg, oracle),
		back:       core.NewOptimizedBuffer(cols, rows, fg, bg, oracle),
		writer:     w,
		caps:       caps,
		debugTrace: debugTrace,
		shutdown:   make(chan struct{}),
		encoder:    Encoder{SyncUpdate: caps.Sync},
	}
}

// Back returns the buffer the main thread should draw into this frame.
func (r *Renderer) Back() *core.OptimizedBuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.back
}

// SetCursor records the hardware cursor position/visibility for the next
// encoded frame.
func (r *Renderer) SetCursor(x, y int, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursorX, r.cursorY, r.cursorVisible = x, y, visible
}

// RequestRender marks that a render is needed, mirroring
// purfecterm/cli/renderer.go's RequestRender/renderNeeded flag.
func (r *Renderer) RequestRender() {
	r.mu.Lock()
	r.renderNeeded = true
	r.mu.Unlock()
}

// Swap is the single synchronization point spec §5 describes: once the
// main thread has finished drawing into Back() and the render thread has
// finished flushing Front(), the two buffers trade places under the
// mutex. No other state crosses threads.
func (r *Renderer) Swap() {
	r.mu.Lock()
	r.front, r.back = r.back, r.front
	r.mu.Unlock()
}

// Resize resizes both buffers, e.g. in response to a SIGWINCH.
func (r *Renderer) Resize(cols, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.front.Resize(cols, rows)
	r.back.Resize(cols, rows)
	r.prevFrame = Frame{}
}

// Render encodes the current front buffer against the last flushed frame
// and writes it out. Returns nil without flushing (logging the skip when
// debug tracing is on) if the writer reports ErrPendingDrain — the
// buffered-mode suspension point spec §5 calls out. The front buffer is
// snapshotted under the mutex, so a concurrent Swap or Resize never
// changes it mid-read.
func (r *Renderer) Render() error {
	r.mu.Lock()
	cur := SnapshotFrame(r.front)
	cx, cy, cvis := r.cursorX, r.cursorY, r.cursorVisible
	r.mu.Unlock()

	var sb strings.Builder
	r.encoder.Encode(&sb, r.prevFrame, cur, cx, cy, cvis)

	if err := r.writer.Flush([]byte(sb.String())); err != nil {
		if err == ErrPendingDrain {
			if r.debugTrace {
				log.Printf("[DEBUG] render: frame skipped, previous frame not yet drained")
			}
			return nil
		}
		log.Printf("[ERROR] render: flush failed: %v", err)
		return err
	}
	r.prevFrame = cur
	return nil
}

// RenderLoop runs at ~60fps, rendering only when RequestRender marked a
// frame dirty, exactly as purfecterm/cli/renderer.go's RenderLoop does
// with its 16ms ticker.
func (r *Renderer) RenderLoop() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			needsRender := r.renderNeeded
			r.renderNeeded = false
			r.mu.Unlock()
			if needsRender {
				if err := r.Render(); err != nil && r.debugTrace {
					log.Printf("[WARN] render: render pass error: %v", err)
				}
			}
		case <-r.shutdown:
			return
		}
	}
}

// Shutdown signals the render loop to stop at the next tick (spec §5's
// cancellation model: a shutdown flag checked once per frame, no
// cross-thread cancellation).
func (r *Renderer) Shutdown() {
	close(r.shutdown)
}
