// Package screen keeps a copy of what the clock's digits show, and draws it as an image for
// debugging the rest of the program without looking at (or having) the display.
package screen

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"net/http"
	"sync"

	"golang.org/x/image/vector"
)

const (
	digits = 8

	// Geometry of one digit in the preview, in pixels.
	digitWidth   = 60
	digitHeight  = 100
	digitSpacing = 20
	border       = 20
	thickness    = 10
	slant        = 6 // how far the top of a digit leans right of its bottom
)

var (
	background = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	unlit      = color.RGBA{R: 0x28, G: 0x28, B: 0x28, A: 0xff}

	// The middle four digits are blue, the rest yellow.
	colors = [digits]color.RGBA{
		{R: 0xff, G: 0xc0, B: 0x20, A: 0xff},
		{R: 0xff, G: 0xc0, B: 0x20, A: 0xff},
		{R: 0x30, G: 0x90, B: 0xff, A: 0xff},
		{R: 0x30, G: 0x90, B: 0xff, A: 0xff},
		{R: 0x30, G: 0x90, B: 0xff, A: 0xff},
		{R: 0x30, G: 0x90, B: 0xff, A: 0xff},
		{R: 0xff, G: 0xc0, B: 0x20, A: 0xff},
		{R: 0xff, G: 0xc0, B: 0x20, A: 0xff},
	}
)

// Screen is the last frame written to the display.
type Screen struct {
	mu         sync.Mutex
	frame      [digits]uint8  // must hold mu to read or write.
	brightness [digits]uint16 // must hold mu to read or write.
}

// New returns a blank Screen.
func New() *Screen {
	s := new(Screen)
	for i := range s.brightness {
		s.brightness[i] = 0xffff
	}
	return s
}

// Update records the segments and brightness of every digit.
func (s *Screen) Update(frame [digits]uint8, brightness [digits]uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
	s.brightness = brightness
}

// Frame returns the last recorded segments and brightness.
func (s *Screen) Frame() ([digits]uint8, [digits]uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.brightness
}

// ServeHTTP serves the current frame as a PNG.
func (s *Screen) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	frame, brightness := s.Frame()
	img := Render(frame, brightness)
	w.Header().Add("content-type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, img); err != nil {
		log.Printf("encoding image: %v", err)
	}
}

// segment is a polygon in the unit square of a digit: x grows right, y grows down.
type segment [][2]float32

// Segments in the order of the bitmask: a, b, c, d, e, f, g, decimal point.
var segments = func() [8]segment {
	w, h, t := float32(digitWidth), float32(digitHeight), float32(thickness)
	horizontal := func(y float32) segment {
		return segment{{t, y - t/2}, {w - t, y - t/2}, {w - t/2, y}, {w - t, y + t/2}, {t, y + t/2}, {t / 2, y}}
	}
	vertical := func(x, y0, y1 float32) segment {
		return segment{{x, y0}, {x + t/2, y0 + t/2}, {x + t/2, y1 - t/2}, {x, y1}, {x - t/2, y1 - t/2}, {x - t/2, y0 + t/2}}
	}
	return [8]segment{
		horizontal(t / 2),
		vertical(w-t/2, t/2, h/2),
		vertical(w-t/2, h/2, h-t/2),
		horizontal(h - t/2),
		vertical(t/2, h/2, h-t/2),
		vertical(t/2, t/2, h/2),
		horizontal(h / 2),
		{{w + 2, h - t}, {w + 2 + t, h - t}, {w + 2 + t, h}, {w + 2, h}},
	}
}()

// scale dims c by a digit's brightness, 0xffff being full brightness.
func scale(c color.RGBA, brightness uint16) color.RGBA {
	f := func(v uint8) uint8 { return uint8(uint32(v) * uint32(brightness) / 0xffff) }
	lit := color.RGBA{R: f(c.R), G: f(c.G), B: f(c.B), A: 0xff}
	// Never draw a lit segment darker than an unlit one.
	if lit.R < unlit.R && lit.G < unlit.G && lit.B < unlit.B {
		return color.RGBA{R: unlit.R + 1, G: unlit.G + 1, B: unlit.B + 1, A: 0xff}
	}
	return lit
}

// Size is the size of the images Render draws.
var Size = image.Pt(2*border+digits*digitWidth+(digits-1)*digitSpacing, 2*border+digitHeight)

// Render draws a frame: lit segments in their digit's color scaled by its brightness, unlit
// segments in grey.
func Render(frame [digits]uint8, brightness [digits]uint16) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: Size})
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for d := 0; d < digits; d++ {
		x0 := float32(border + d*(digitWidth+digitSpacing))
		for i, seg := range segments {
			c := unlit
			if frame[d]&(1<<(7-i)) != 0 {
				c = scale(colors[d], brightness[d])
			}
			z := vector.NewRasterizer(Size.X, Size.Y)
			for j, p := range seg {
				x := x0 + p[0] + slant*(1-p[1]/digitHeight)
				y := float32(border) + p[1]
				if j == 0 {
					z.MoveTo(x, y)
				} else {
					z.LineTo(x, y)
				}
			}
			z.ClosePath()
			z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
		}
	}
	return img
}
