package render

import "testing"

func TestExportDimensions(t *testing.T) {
	d := ExportDimensions()
	if d.Width != 1920 || d.Height != 1080 {
		t.Fatalf("ExportDimensions() = %dx%d, want 1920x1080", d.Width, d.Height)
	}
	if got := d.CenterY(); got != 540 {
		t.Fatalf("CenterY() = %v, want 540", got)
	}
}

func TestHeightPercentToPixels(t *testing.T) {
	d := ExportDimensions()
	if got := d.HeightPercentToPixels(50); got != 540 {
		t.Fatalf("HeightPercentToPixels(50) = %v, want 540", got)
	}
	if got := d.HeightPercentToPixels(100); got != 1080 {
		t.Fatalf("HeightPercentToPixels(100) = %v, want 1080", got)
	}
}

func TestNormalizedPixelRoundTrip(t *testing.T) {
	d := LiveDimensions(800, 450)
	if got := d.PixelX(0.5); got != 400 {
		t.Fatalf("PixelX(0.5) = %v, want 400", got)
	}
	if got := d.NormX(400); got != 0.5 {
		t.Fatalf("NormX(400) = %v, want 0.5", got)
	}
	if got := d.PixelY(0.25); got != 112.5 {
		t.Fatalf("PixelY(0.25) = %v, want 112.5", got)
	}
	if got := d.NormY(112.5); got != 0.25 {
		t.Fatalf("NormY(112.5) = %v, want 0.25", got)
	}
}

func TestLiveDimensionsFloor(t *testing.T) {
	d := LiveDimensions(0, -5)
	if d.Width != 1 || d.Height != 1 {
		t.Fatalf("LiveDimensions(0, -5) = %dx%d, want 1x1", d.Width, d.Height)
	}
}
