// Package viewport tracks the pan/zoom transform applied to a rendered
// diagram.
package viewport

import (
	"math"
	"sync"
)

// Defaults match the editor's original pan/zoom widget.
const (
	DefaultMinScale = 0.5
	DefaultMaxScale = 8.0
	DefaultStep     = 0.5
)

// Size is a width/height pair in CSS pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Transform is the pan offset and zoom scale applied to the content.
type Transform struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Options bound the controller.
type Options struct {
	MinScale float64
	MaxScale float64
	Step     float64
}

func (o Options) withDefaults() Options {
	if o.MinScale <= 0 {
		o.MinScale = DefaultMinScale
	}
	if o.MaxScale < o.MinScale {
		o.MaxScale = math.Max(DefaultMaxScale, o.MinScale)
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	return o
}

// Controller owns the transform for one preview.
type Controller struct {
	opts Options

	mu        sync.Mutex
	current   Transform
	initial   Transform
	content   Size
	container Size
	fitted    bool
}

// New creates a Controller at scale 1 with no offset.
func New(opts Options) *Controller {
	identity := Transform{Scale: 1}
	return &Controller{
		opts:    opts.withDefaults(),
		current: identity,
		initial: identity,
	}
}

// ZoomIn increases the scale by one step, up to the maximum.
func (c *Controller) ZoomIn() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoomLocked(c.current.Scale + c.opts.Step)
	return c.current
}

// ZoomOut decreases the scale by one step. The scale never drops below the
// minimum.
func (c *Controller) ZoomOut() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoomLocked(c.current.Scale - c.opts.Step)
	return c.current
}

// Reset restores the centered, fit-to-container transform.
func (c *Controller) Reset() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.initial
	return c.current
}

// SetContainer records the size of the area the diagram is shown in.
func (c *Controller) SetContainer(s Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.container = s
}

// Fit computes the centered fit-to-container transform for content and makes
// it the reset target. Only the first fit with a known container and content
// size changes the live transform, so later renders do not undo the user's zoom.
func (c *Controller) Fit(content Size) Transform {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.content = content
	c.initial = c.fitLocked()
	if !c.fitted {
		c.current = c.initial
		c.fitted = c.content.Valid() && c.container.Valid()
	}
	return c.current
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) fitLocked() Transform {
	if !c.content.Valid() || !c.container.Valid() {
		return Transform{Scale: 1}
	}
	scale := math.Min(c.container.Width/c.content.Width, c.container.Height/c.content.Height)
	scale = math.Min(scale, 1)
	scale = c.clamp(scale)
	return Transform{
		Scale: scale,
		X:     (c.container.Width - c.content.Width*scale) / 2,
		Y:     (c.container.Height - c.content.Height*scale) / 2,
	}
}

// zoomLocked scales around the container center so the point in the middle
// of the view stays put.
func (c *Controller) zoomLocked(target float64) {
	target = c.clamp(target)
	prev := c.current.Scale
	if target == prev {
		return
	}
	if c.container.Valid() && prev > 0 {
		cx, cy := c.container.Width/2, c.container.Height/2
		ratio := target / prev
		c.current.X = cx - (cx-c.current.X)*ratio
		c.current.Y = cy - (cy-c.current.Y)*ratio
	}
	c.current.Scale = target
	if target < 1 && c.content.Valid() && c.container.Valid() {
		// Zoomed-out content is kept centered.
		c.current.X = (c.container.Width - c.content.Width*target) / 2
		c.current.Y = (c.container.Height - c.content.Height*target) / 2
	}
}

func (c *Controller) clamp(scale float64) float64 {
	return math.Max(c.opts.MinScale, math.Min(c.opts.MaxScale, scale))
}
