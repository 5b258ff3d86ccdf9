package render

// Export surfaces are always full HD; live surfaces track the viewport.
const (
	ExportWidth  = 1920
	ExportHeight = 1080

	// AspectRatio is the nominal surface aspect (16:9).
	AspectRatio = 16.0 / 9.0
)

// Dimensions describes the pixel surface currently being drawn to. It is
// a pure value: a resize creates a new one rather than mutating.
type Dimensions struct {
	Width  int
	Height int
}

// LiveDimensions describes a dynamically sized viewport surface.
func LiveDimensions(width, height int) Dimensions {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return Dimensions{Width: width, Height: height}
}

// ExportDimensions describes the fixed 1920x1080 export surface.
func ExportDimensions() Dimensions {
	return Dimensions{Width: ExportWidth, Height: ExportHeight}
}

// CenterY returns the vertical midpoint in pixels.
func (d Dimensions) CenterY() float64 {
	return float64(d.Height) / 2
}

// HeightPercentToPixels converts a height percentage (0-100) to pixels.
func (d Dimensions) HeightPercentToPixels(percent float64) float64 {
	return percent / 100 * float64(d.Height)
}

// PixelX converts a normalized [0,1] X coordinate to pixels.
func (d Dimensions) PixelX(norm float64) float64 {
	return norm * float64(d.Width)
}

// PixelY converts a normalized [0,1] Y coordinate to pixels.
func (d Dimensions) PixelY(norm float64) float64 {
	return norm * float64(d.Height)
}

// NormX converts a pixel X coordinate to normalized [0,1] space.
func (d Dimensions) NormX(px float64) float64 {
	if d.Width == 0 {
		return 0
	}
	return px / float64(d.Width)
}

// NormY converts a pixel Y coordinate to normalized [0,1] space.
func (d Dimensions) NormY(px float64) float64 {
	if d.Height == 0 {
		return 0
	}
	return px / float64(d.Height)
}
