package ui

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// ASCII brightness ramp from darkest to brightest, for colorless
// terminals.
const asciiRamp = " .:-=+*#%@"

// colorMode describes how frame pixels are rendered in the terminal.
type colorMode uint8

const (
	colorOff     colorMode = iota // NO_COLOR or dumb terminal
	colorANSI16                   // basic 16-color
	colorANSI256                  // 256-color
	colorTrue                     // 24-bit truecolor
)

var (
	detectOnce sync.Once
	termColor  colorMode
)

// detectColorMode checks terminal capabilities once.
func detectColorMode() colorMode {
	detectOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			termColor = colorOff
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		ct := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
			termColor = colorTrue
		case strings.Contains(term, "256color"):
			termColor = colorANSI256
		case term == "dumb":
			termColor = colorOff
		case term == "" && runtime.GOOS == "windows":
			termColor = colorANSI16
		case term == "":
			termColor = colorOff
		default:
			termColor = colorANSI16
		}
	})
	return termColor
}

// FrameRenderer converts the compositor's rgb24 surface into a terminal
// string. In color mode it packs two pixel rows per terminal row using
// "▀" with fg = top pixel and bg = bottom pixel; without color it maps
// the top pixel of each pair to a brightness character.
type FrameRenderer struct {
	mode colorMode
	sb   strings.Builder // reusable builder to cut per-frame allocations
}

// NewFrameRenderer creates a renderer for the current terminal.
func NewFrameRenderer() *FrameRenderer {
	return &FrameRenderer{mode: detectColorMode()}
}

// Color reports whether the renderer emits color escapes.
func (r *FrameRenderer) Color() bool { return r.mode != colorOff }

// Render converts an rgb24 frame of frameW x frameH pixels (frameH even,
// exactly matching the live surface) into terminal rows.
func (r *FrameRenderer) Render(frame []byte, frameW, frameH int) string {
	if frameW <= 0 || frameH <= 0 || len(frame) < frameW*frameH*3 {
		return ""
	}

	r.sb.Reset()
	r.sb.Grow(frameW * frameH / 2 * 24)

	rows := frameH / 2
	var lastFg, lastBg string

	for row := 0; row < rows; row++ {
		if r.mode == colorOff {
			for col := 0; col < frameW; col++ {
				pr, pg, pb := pixelAt(frame, frameW, col, row*2)
				r.sb.WriteByte(brightnessChar(luminance(pr, pg, pb)))
			}
			if row < rows-1 {
				r.sb.WriteByte('\n')
			}
			continue
		}

		for col := 0; col < frameW; col++ {
			tr, tg, tb := pixelAt(frame, frameW, col, row*2)
			br, bg, bb := pixelAt(frame, frameW, col, row*2+1)

			fg := fgColorSeq(r.mode, tr, tg, tb)
			bgc := bgColorSeq(r.mode, br, bg, bb)
			if fg != lastFg {
				r.sb.WriteString(fg)
				lastFg = fg
			}
			if bgc != lastBg {
				r.sb.WriteString(bgc)
				lastBg = bgc
			}
			r.sb.WriteString("▀")
		}
		r.sb.WriteString(ansiReset)
		lastFg, lastBg = "", ""
		if row < rows-1 {
			r.sb.WriteByte('\n')
		}
	}

	return r.sb.String()
}

// pixelAt reads an RGB triplet from the frame buffer.
func pixelAt(frame []byte, stride, x, y int) (uint8, uint8, uint8) {
	off := (y*stride + x) * 3
	if off+2 >= len(frame) {
		return 0, 0, 0
	}
	return frame[off], frame[off+1], frame[off+2]
}

// luminance computes perceived brightness (ITU-R BT.601).
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

// brightnessChar maps a 0-255 luminance to an ASCII character.
func brightnessChar(lum uint8) byte {
	idx := int(lum) * (len(asciiRamp) - 1) / 255
	return asciiRamp[idx]
}

const ansiReset = "\x1b[0m"

// fgColorSeq returns an ANSI foreground color escape for the given RGB.
func fgColorSeq(mode colorMode, r, g, b uint8) string {
	switch mode {
	case colorTrue:
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	case colorANSI256:
		return fmt.Sprintf("\x1b[38;5;%dm", ansi256Index(r, g, b))
	case colorANSI16:
		return fmt.Sprintf("\x1b[%dm", ansi16Code(r, g, b, 30, 90))
	default:
		return ""
	}
}

// bgColorSeq returns an ANSI background color escape for the given RGB.
func bgColorSeq(mode colorMode, r, g, b uint8) string {
	switch mode {
	case colorTrue:
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
	case colorANSI256:
		return fmt.Sprintf("\x1b[48;5;%dm", ansi256Index(r, g, b))
	case colorANSI16:
		return fmt.Sprintf("\x1b[%dm", ansi16Code(r, g, b, 40, 100))
	default:
		return ""
	}
}

func ansi256Index(r, g, b uint8) int {
	ri := int(r) * 5 / 255
	gi := int(g) * 5 / 255
	bi := int(b) * 5 / 255
	return 16 + 36*ri + 6*gi + bi
}

// ansi16Code maps RGB to the nearest ANSI 16 color code using the given
// normal/bright SGR bases.
func ansi16Code(r, g, b uint8, base, brightBase int) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, c := range ansi16Palette {
		dr := int(r) - int(c[0])
		dg := int(g) - int(c[1])
		db := int(b) - int(c[2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 8 {
		return base + best
	}
	return brightBase + best - 8
}

var ansi16Palette = [16][3]uint8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}
