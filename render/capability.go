package render

import (
	"bufio"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Capabilities holds the terminal feature booleans spec §6's probe sets:
// kitty_keyboard, rgb, unicode-width method, focus_tracking,
// bracketed_paste, hyperlinks, sync, sgr_pixels.
type Capabilities struct {
	KittyKeyboard  bool
	RGB            bool
	UnicodeWidth   string // "wcwidth" or "unicode" — conservative default is "wcwidth"
	FocusTracking  bool
	BracketedPaste bool
	Hyperlinks     bool
	Sync           bool
	SGRPixels      bool
	TimedOut       bool
}

// conservativeDefaults is what Probe falls back to on a capability_timeout
// (spec §7): no optional feature assumed present.
func conservativeDefaults() Capabilities {
	return Capabilities{UnicodeWidth: "wcwidth"}
}

// ProbeTimeout is spec §6's fixed 100ms capability-probe budget.
const ProbeTimeout = 100 * time.Millisecond

// Probe writes the DA1, XTVERSION, Kitty-graphics-query and OSC 11
// background-color query sequences to w and reads the reply from r for up
// to ProbeTimeout, parsing whichever response arrives before the deadline.
// No Unicode-width probe is sent, so UnicodeWidth keeps its conservative
// default. Grounded on purfecterm/terminal_caps.go's stdlib-only
// capability detection, extended with live escape-sequence queries
// (purfecterm itself only inspects $TERM and isatty, since it never probes
// a live terminal reply stream).
//
// r must be the real input file (os.Stdin in cmd/coredemo), not a copy:
// the read runs under r.SetReadDeadline rather than in a background
// goroutine, so it never outlives ProbeTimeout and never leaves a reader
// racing whatever reads r afterward (the keyboard handler, started right
// after Probe returns).
func Probe(r *os.File, w io.Writer, debugTrace bool) Capabilities {
	caps := conservativeDefaults()

	if _, err := w.Write([]byte("\x1b[c\x1b[>0q\x1b_Gi=1,a=q\x1b\\\x1b]11;?\x1b\\")); err != nil {
		if debugTrace {
			log.Printf("[WARN] render: capability probe write failed: %v", err)
		}
		caps.TimedOut = true
		return caps
	}

	if err := r.SetReadDeadline(time.Now().Add(ProbeTimeout)); err != nil {
		// Deadlines aren't supported on this descriptor (e.g. a plain
		// file in tests); fall back to the conservative defaults rather
		// than risk a read that never returns.
		if debugTrace {
			log.Printf("[WARN] render: capability probe deadline unsupported: %v", err)
		}
		caps.TimedOut = true
		return caps
	}
	defer r.SetReadDeadline(time.Time{})

	br := bufio.NewReaderSize(r, 4096)
	buf := make([]byte, 4096)
	var sb strings.Builder
	for {
		n, err := br.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}

	reply := sb.String()
	if reply == "" {
		caps.TimedOut = true
		if debugTrace {
			log.Printf("[WARN] render: capability probe timed out after %s", ProbeTimeout)
		}
		return caps
	}
	parseCapabilityReply(reply, &caps)
	if debugTrace {
		log.Printf("[DEBUG] render: capability probe reply %q", reply)
	}
	return caps
}

// parseCapabilityReply sets booleans from whatever escape fragments made
// it back before the deadline: a real terminal interleaves a DA1 "\x1b[?"
// response, an XTVERSION/Kitty-keyboard echo ("\x1b[>...u" or a Kitty
// graphics "\x1b_G" reply), and an OSC 11 background-color reply.
func parseCapabilityReply(reply string, caps *Capabilities) {
	if strings.Contains(reply, "\x1b[>") || strings.Contains(reply, "\x1b[?u") {
		caps.KittyKeyboard = true
	}
	if strings.Contains(reply, "\x1b]11;rgb:") {
		caps.RGB = true
	}
	if strings.Contains(reply, "\x1b_G") {
		caps.SGRPixels = true
	}
	if strings.Contains(reply, "\x1b[?2026") {
		caps.Sync = true
	}
	if strings.Contains(reply, "\x1b[?1004") {
		caps.FocusTracking = true
	}
	if strings.Contains(reply, "\x1b[200~") {
		caps.BracketedPaste = true
	}
}
