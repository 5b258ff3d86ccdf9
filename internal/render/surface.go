package render

import (
	"image"
	"image/color"
	"image/draw"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// background is the canvas clear color (near-black studio gray).
var background = color.RGBA{R: 16, G: 16, B: 20, A: 255}

// Surface is the pixel canvas the compositor draws into. One frame is
// cleared, drawn, and then handed off as rgb24 bytes to the encoder or
// the terminal renderer.
type Surface struct {
	dims Dimensions
	img  *image.RGBA
}

// NewSurface allocates a cleared surface for the given dimensions.
func NewSurface(dims Dimensions) *Surface {
	s := &Surface{
		dims: dims,
		img:  image.NewRGBA(image.Rect(0, 0, dims.Width, dims.Height)),
	}
	s.Clear()
	return s
}

// Dims returns the surface dimensions.
func (s *Surface) Dims() Dimensions { return s.dims }

// Clear fills the surface with the background color.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
}

// At returns the pixel at (x, y), or the background color out of bounds.
func (s *Surface) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= s.dims.Width || y >= s.dims.Height {
		return background
	}
	return s.img.RGBAAt(x, y)
}

// IsBackground reports whether the pixel at (x, y) is untouched.
func (s *Surface) IsBackground(x, y int) bool {
	return s.At(x, y) == background
}

// blendPixel composites src over the existing pixel at the given opacity.
func (s *Surface) blendPixel(x, y int, c color.RGBA, opacity float64) {
	if x < 0 || y < 0 || x >= s.dims.Width || y >= s.dims.Height {
		return
	}
	if opacity >= 1 {
		s.img.SetRGBA(x, y, c)
		return
	}
	if opacity <= 0 {
		return
	}
	dst := s.img.RGBAAt(x, y)
	s.img.SetRGBA(x, y, color.RGBA{
		R: uint8(float64(c.R)*opacity + float64(dst.R)*(1-opacity)),
		G: uint8(float64(c.G)*opacity + float64(dst.G)*(1-opacity)),
		B: uint8(float64(c.B)*opacity + float64(dst.B)*(1-opacity)),
		A: 255,
	})
}

// VLine draws a vertical stroke from y0 to y1 inclusive at column x,
// alpha-blended at the given opacity.
func (s *Surface) VLine(x, y0, y1 int, c color.RGBA, opacity float64) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		s.blendPixel(x, y, c, opacity)
	}
}

// FillRect fills [x0,x1)x[y0,y1) at the given opacity.
func (s *Surface) FillRect(x0, y0, x1, y1 int, c color.RGBA, opacity float64) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.blendPixel(x, y, c, opacity)
		}
	}
}

// DrawLabel renders a text label with its baseline at (x, y).
func (s *Surface) DrawLabel(text string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// RGB24 packs the surface into tightly packed rgb24 bytes, row-major
// top-to-bottom: the layout ffmpeg's rawvideo demuxer and the terminal
// half-block renderer both consume.
func (s *Surface) RGB24() []byte {
	w, h := s.dims.Width, s.dims.Height
	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		src := s.img.Pix[y*s.img.Stride : y*s.img.Stride+w*4]
		dst := out[y*w*3:]
		for x := 0; x < w; x++ {
			dst[x*3] = src[x*4]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return out
}

// ParseColor converts a hex color string to RGBA, falling back to white
// for malformed input so a bad preset never breaks a frame.
func ParseColor(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
