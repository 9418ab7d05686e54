package blueprint

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	gridStep = 20
	// eraser strokes paint the canvas paper color
	paperHex = "#FFFFFF"
	gridHex  = "#E5E7EB"
)

var (
	paper, _     = ParseColor(paperHex)
	gridColor, _ = ParseColor(gridHex)
)

// Render replays the visible commands onto a width x height raster. The
// background, when given, is scaled to fit and centered like the canvas
// itself; drawing coordinates scale with the canvas.
func (d *Drawing) Render(width, height int, background image.Image) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	draw.Draw(img, img.Bounds(), image.NewUniform(paper), image.Point{}, draw.Src)

	if background != nil {
		src := background.Bounds()
		if !src.Empty() {
			s := math.Min(float64(img.Bounds().Dx())/float64(src.Dx()), float64(img.Bounds().Dy())/float64(src.Dy()))
			w, h := int(float64(src.Dx())*s), int(float64(src.Dy())*s)
			x, y := (img.Bounds().Dx()-w)/2, (img.Bounds().Dy()-h)/2
			xdraw.ApproxBiLinear.Scale(img, image.Rect(x, y, x+w, y+h), background, src, xdraw.Over, nil)
		}
	}

	r := newRaster(img, d.Width, d.Height)
	if d.Grid {
		r.grid(d.Width, d.Height)
	}
	for _, c := range d.Visible() {
		r.command(c)
	}
	return img
}

// EncodePNG writes img as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

type raster struct {
	img    *image.RGBA
	scale  float64
	offset Point
}

func newRaster(img *image.RGBA, canvasW, canvasH float64) *raster {
	r := &raster{img: img, scale: 1}
	if canvasW > 0 && canvasH > 0 {
		w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
		r.scale = math.Min(w/canvasW, h/canvasH)
		r.offset = Point{X: (w - canvasW*r.scale) / 2, Y: (h - canvasH*r.scale) / 2}
	}
	return r
}

func (r *raster) at(p Point) Point {
	return Point{X: r.offset.X + p.X*r.scale, Y: r.offset.Y + p.Y*r.scale}
}

func (r *raster) grid(w, h float64) {
	if w <= 0 || h <= 0 {
		b := r.img.Bounds()
		w, h = float64(b.Dx()), float64(b.Dy())
	}
	for x := 0.0; x <= w; x += gridStep {
		r.segment(r.at(Point{X: x}), r.at(Point{X: x, Y: h}), 1, gridColor)
	}
	for y := 0.0; y <= h; y += gridStep {
		r.segment(r.at(Point{Y: y}), r.at(Point{X: w, Y: y}), 1, gridColor)
	}
}

func (r *raster) command(c Command) {
	col, err := ParseColor(c.Color)
	if c.Kind == KindEraser || err != nil {
		col = paper
	}
	width := c.Width * r.scale

	switch c.Kind {
	case KindStroke, KindEraser:
		prev := r.at(c.Points[0])
		r.segment(prev, prev, width, col)
		for _, p := range c.Points[1:] {
			next := r.at(p)
			r.segment(prev, next, width, col)
			prev = next
		}
	case KindLine:
		r.segment(r.at(c.Points[0]), r.at(c.Points[1]), width, col)
	case KindArrow, KindDoubleArrow:
		from, to := r.at(c.Points[0]), r.at(c.Points[1])
		head := (c.Width*3 + 10) * r.scale
		r.segment(from, to, width, col)
		r.arrowHead(from, to, head, width, col)
		if c.Kind == KindDoubleArrow {
			r.arrowHead(to, from, head, width, col)
		}
	case KindRect:
		a, b := r.at(c.Points[0]), r.at(c.Points[1])
		corners := []Point{a, {X: b.X, Y: a.Y}, b, {X: a.X, Y: b.Y}, a}
		for i := 1; i < len(corners); i++ {
			r.segment(corners[i-1], corners[i], width, col)
		}
	case KindEllipse:
		r.ellipse(r.at(c.Points[0]), r.at(c.Points[1]), width, col)
	case KindText:
		r.text(r.at(c.Points[0]), c.Text, col)
	}
}

func (r *raster) arrowHead(from, to Point, length, width float64, col color.RGBA) {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	for _, side := range []float64{-math.Pi / 6, math.Pi / 6} {
		tip := Point{
			X: to.X - length*math.Cos(angle+side),
			Y: to.Y - length*math.Sin(angle+side),
		}
		r.segment(to, tip, width, col)
	}
}

// ellipse inscribes an ellipse in the box spanned by a and b
func (r *raster) ellipse(a, b Point, width float64, col color.RGBA) {
	cx, cy := (a.X+b.X)/2, (a.Y+b.Y)/2
	rx, ry := math.Abs(b.X-a.X)/2, math.Abs(b.Y-a.Y)/2
	steps := max(16, int(math.Pi*(rx+ry)/2))
	prev := Point{X: cx + rx, Y: cy}
	for i := 1; i <= steps; i++ {
		t := 2 * math.Pi * float64(i) / float64(steps)
		next := Point{X: cx + rx*math.Cos(t), Y: cy + ry*math.Sin(t)}
		r.segment(prev, next, width, col)
		prev = next
	}
}

// text uses a fixed bitmap face; it does not scale with the canvas
func (r *raster) text(at Point, s string, col color.RGBA) {
	face := basicfont.Face7x13
	d := font.Drawer{Dst: r.img, Src: image.NewUniform(col), Face: face}
	lineHeight := face.Metrics().Height
	dot := fixed.P(int(at.X), int(at.Y)).Add(fixed.Point26_6{Y: face.Metrics().Ascent})
	for _, line := range strings.Split(s, "\n") {
		d.Dot = dot
		d.DrawString(line)
		dot.Y += lineHeight
	}
}

// segment paints a round-capped line of the given width in pixels
func (r *raster) segment(a, b Point, width float64, col color.RGBA) {
	half := math.Max(width/2, 0.5)
	bounds := r.img.Bounds()
	minX := max(bounds.Min.X, int(math.Floor(math.Min(a.X, b.X)-half)))
	maxX := min(bounds.Max.X-1, int(math.Ceil(math.Max(a.X, b.X)+half)))
	minY := max(bounds.Min.Y, int(math.Floor(math.Min(a.Y, b.Y)-half)))
	maxY := min(bounds.Max.Y-1, int(math.Ceil(math.Max(a.Y, b.Y)+half)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if distance(Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}, a, b) <= half {
				r.img.SetRGBA(x, y, col)
			}
		}
	}
}

func distance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	t := 0.0
	if l2 := dx*dx + dy*dy; l2 > 0 {
		t = math.Max(0, math.Min(1, ((p.X-a.X)*dx+(p.Y-a.Y)*dy)/l2))
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
