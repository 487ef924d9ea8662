package viewport

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestZoomOutFloor(t *testing.T) {
	c := New(Options{})

	for i := 0; i < 20; i++ {
		tr := c.ZoomOut()
		if tr.Scale < DefaultMinScale {
			t.Fatalf("scale dropped to %v after %d zoom-outs", tr.Scale, i+1)
		}
	}
	if got := c.Transform().Scale; !approx(got, 0.5) {
		t.Errorf("scale = %v, want 0.5", got)
	}
}

func TestZoomInCeiling(t *testing.T) {
	c := New(Options{MaxScale: 2})

	for i := 0; i < 10; i++ {
		c.ZoomIn()
	}
	if got := c.Transform().Scale; !approx(got, 2) {
		t.Errorf("scale = %v, want 2", got)
	}
}

func TestFitCentersAndReset(t *testing.T) {
	c := New(Options{})
	c.SetContainer(Size{Width: 800, Height: 600})

	tr := c.Fit(Size{Width: 1600, Height: 600})
	if !approx(tr.Scale, 0.5) {
		t.Errorf("fit scale = %v, want 0.5", tr.Scale)
	}
	if !approx(tr.X, 0) || !approx(tr.Y, 150) {
		t.Errorf("fit offset = (%v, %v), want (0, 150)", tr.X, tr.Y)
	}

	c.ZoomIn()
	c.ZoomIn()
	if approx(c.Transform().Scale, 0.5) {
		t.Fatal("zoom in had no effect")
	}

	if got := c.Reset(); got != tr {
		t.Errorf("Reset() = %+v, want %+v", got, tr)
	}
}

func TestFitDoesNotUpscaleSmallContent(t *testing.T) {
	c := New(Options{})
	c.SetContainer(Size{Width: 800, Height: 600})

	tr := c.Fit(Size{Width: 200, Height: 100})
	if !approx(tr.Scale, 1) {
		t.Errorf("scale = %v, want 1", tr.Scale)
	}
	if !approx(tr.X, 300) || !approx(tr.Y, 250) {
		t.Errorf("offset = (%v, %v), want (300, 250)", tr.X, tr.Y)
	}
}

func TestLaterFitKeepsUserZoom(t *testing.T) {
	c := New(Options{})
	c.SetContainer(Size{Width: 800, Height: 600})
	c.Fit(Size{Width: 400, Height: 300})
	zoomed := c.ZoomIn()

	if got := c.Fit(Size{Width: 500, Height: 300}); got != zoomed {
		t.Errorf("second Fit changed live transform: %+v, want %+v", got, zoomed)
	}
}

func TestResetWithoutFitIsIdentity(t *testing.T) {
	c := New(Options{})
	c.ZoomIn()
	if got := c.Reset(); got != (Transform{Scale: 1}) {
		t.Errorf("Reset() = %+v, want identity", got)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		want    Size
		wantErr bool
	}{
		{"width height", `<svg width="120px" height="80"></svg>`, Size{120, 80}, false},
		{"viewBox fallback", `<?xml version="1.0"?><svg width="100%" viewBox="0 0 300 150"></svg>`, Size{300, 150}, false},
		{"comma viewBox", `<svg viewBox="0,0,10,20"/>`, Size{10, 20}, false},
		{"no size", `<svg></svg>`, Size{}, true},
		{"not svg", `<html></html>`, Size{}, true},
		{"empty", ``, Size{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.markup)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFitBeforeContainerIsKnown(t *testing.T) {
	c := New(Options{})

	if tr := c.Fit(Size{Width: 2000, Height: 1000}); !approx(tr.Scale, 1) {
		t.Fatalf("scale without container = %v, want 1", tr.Scale)
	}

	c.SetContainer(Size{Width: 1000, Height: 500})
	tr := c.Fit(Size{Width: 2000, Height: 1000})
	if !approx(tr.Scale, 0.5) || !approx(tr.X, 0) || !approx(tr.Y, 0) {
		t.Errorf("transform after container known = %+v, want scale 0.5 at origin", tr)
	}
	if got := c.Transform(); got != tr {
		t.Errorf("live transform = %+v, want %+v", got, tr)
	}

	c.ZoomIn()
	c.Fit(Size{Width: 2000, Height: 1000})
	if got := c.Transform().Scale; !approx(got, 1) {
		t.Errorf("later fit undid zoom: scale = %v", got)
	}
}
