package core

// ColorScheme resolves default foreground/background colors for dark and
// light modes. OptimizedBuffer itself only stores RGBA values, but the
// renderer (render.Renderer) needs a source of "default" colors to paint
// cleared cells. Cursor is carried in the scheme, but no OSC 12
// cursor-color sequence is sent from it — carried over from purfecterm/color.go's ColorScheme/ResolveColor, which
// solves exactly this for DECSCNM light/dark switching.
type ColorScheme struct {
	DarkForeground, DarkBackground   RGBA
	LightForeground, LightBackground RGBA
	Cursor                           RGBA
}

// DefaultColorScheme mirrors purfecterm.DefaultColorScheme's constants,
// translated from 0-255 component space into the float32 [0,1] space used
// here.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		DarkForeground:  Opaque(212.0/255, 212.0/255, 212.0/255),
		DarkBackground:  Opaque(30.0/255, 30.0/255, 30.0/255),
		LightForeground: Opaque(30.0/255, 30.0/255, 30.0/255),
		LightBackground: Opaque(1, 1, 1),
		Cursor:          Opaque(1, 1, 1),
	}
}

// Foreground returns the scheme's foreground for the given theme.
func (s ColorScheme) Foreground(dark bool) RGBA {
	if dark {
		return s.DarkForeground
	}
	return s.LightForeground
}

// Background returns the scheme's background for the given theme.
func (s ColorScheme) Background(dark bool) RGBA {
	if dark {
		return s.DarkBackground
	}
	return s.LightBackground
}

// sgrTrueColor renders an RGBA (ignoring alpha) as a 24-bit SGR color
// fragment, e.g. "38;2;255;128;0", the same encoding purfecterm's
// Color.ToSGRCode produces for ColorTypeTrueColor.
func sgrTrueColor(c RGBA, isFg bool) string {
	r := clamp255(c.R)
	g := clamp255(c.G)
	b := clamp255(c.B)
	prefix := "48;2;"
	if isFg {
		prefix = "38;2;"
	}
	return prefix + itoa(r) + ";" + itoa(g) + ";" + itoa(b)
}

// SGRTrueColor exports sgrTrueColor for the render package's damage
// encoder, which builds SGR runs directly from buffer cells.
func SGRTrueColor(c RGBA, isFg bool) string { return sgrTrueColor(c, isFg) }

func clamp255(f float32) int {
	v := int(f*255 + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// itoa is a tiny non-allocating-ish int->string helper, matching
// purfecterm/color.go's own hand-rolled itoa (kept to avoid pulling in
// strconv for a one-line conversion used on every rendered cell).
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
