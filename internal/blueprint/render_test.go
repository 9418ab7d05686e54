package blueprint

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.RGBA{R: 0xff, A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func TestRender_LineScalesWithResolution(t *testing.T) {
	t.Parallel()
	d, err := New(100, 100)
	require.NoError(t, err)
	require.NoError(t, d.Push(Command{Kind: KindLine, Color: "#FF0000", Width: 4, Points: []Point{{10, 50}, {90, 50}}}))

	small := d.Render(100, 100, nil)
	assert.Equal(t, red, small.RGBAAt(50, 50))
	assert.Equal(t, white, small.RGBAAt(50, 10))
	assert.Equal(t, white, small.RGBAAt(5, 50), "before the start cap")

	large := d.Render(400, 400, nil)
	assert.Equal(t, red, large.RGBAAt(200, 200))
	assert.Equal(t, red, large.RGBAAt(200, 205), "width scales with the canvas")
	assert.Equal(t, white, large.RGBAAt(20, 200))
}

func TestRender_CentersCanvasOnOtherAspect(t *testing.T) {
	t.Parallel()
	d, err := New(100, 100)
	require.NoError(t, err)
	require.NoError(t, d.Push(Command{Kind: KindStroke, Color: "#FF0000", Width: 10, Points: []Point{{50, 50}}}))

	img := d.Render(300, 100, nil)
	assert.Equal(t, red, img.RGBAAt(150, 50), "canvas is centered horizontally")
	assert.Equal(t, white, img.RGBAAt(50, 50))
}

func TestRender_EraserAndClear(t *testing.T) {
	t.Parallel()
	d := &Drawing{}
	require.NoError(t, d.Push(Command{Kind: KindRect, Color: "#FF0000", Width: 2, Points: []Point{{10, 10}, {40, 40}}}))
	img := d.Render(50, 50, nil)
	assert.Equal(t, red, img.RGBAAt(10, 25), "left edge")
	assert.Equal(t, white, img.RGBAAt(25, 25), "rectangles are outlines")

	require.NoError(t, d.Push(Command{Kind: KindEraser, Width: 6, Points: []Point{{10, 20}, {10, 30}}}))
	img = d.Render(50, 50, nil)
	assert.Equal(t, white, img.RGBAAt(10, 25))
	assert.Equal(t, red, img.RGBAAt(10, 15))

	d.Clear()
	img = d.Render(50, 50, nil)
	assert.Equal(t, white, img.RGBAAt(10, 15))
}

func TestRender_ShapesAndText(t *testing.T) {
	t.Parallel()
	d := &Drawing{}
	require.NoError(t, d.Push(Command{Kind: KindEllipse, Color: "#FF0000", Width: 2, Points: []Point{{0, 0}, {100, 50}}}))
	require.NoError(t, d.Push(Command{Kind: KindDoubleArrow, Color: "#FF0000", Width: 2, Points: []Point{{20, 80}, {80, 80}}}))
	require.NoError(t, d.Push(Command{Kind: KindText, Color: "#000000", Points: []Point{{5, 60}}, Text: "WALL"}))

	img := d.Render(100, 100, nil)
	assert.Equal(t, red, img.RGBAAt(50, 0), "top of the ellipse")
	assert.Equal(t, white, img.RGBAAt(50, 25), "ellipse interior")
	assert.Equal(t, red, img.RGBAAt(50, 80))

	var dark int
	for y := 60; y < 75; y++ {
		for x := 5; x < 35; x++ {
			if img.RGBAAt(x, y).R < 0x80 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "text leaves glyph pixels")
}

func TestRender_GridAndBackground(t *testing.T) {
	t.Parallel()
	bg := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := range 10 {
		for x := range 10 {
			bg.SetRGBA(x, y, color.RGBA{B: 0xff, A: 0xff})
		}
	}

	d := &Drawing{}
	img := d.Render(40, 20, bg)
	assert.Equal(t, white, img.RGBAAt(2, 10), "letterbox keeps paper")
	assert.Equal(t, uint8(0xff), img.RGBAAt(20, 10).B)
	assert.Zero(t, img.RGBAAt(20, 10).R)

	grid := &Drawing{Width: 40, Height: 40, Grid: true}
	img = grid.Render(40, 40, nil)
	assert.NotEqual(t, white, img.RGBAAt(20, 5))
	assert.Equal(t, white, img.RGBAAt(10, 10))
}

func TestEncodePNG(t *testing.T) {
	t.Parallel()
	img := (&Drawing{}).Render(12, 8, nil)
	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, img))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 8), decoded.Bounds())
}
