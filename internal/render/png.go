package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"runpal/internal/route"
)

const (
	DefaultPNGWidth    = 600
	DefaultSupersample = 4
	maxPNGWidth        = 2400
	maxCanvasWidth     = 4096
)

// PNGOptions controls a raster render. Height is half the width, at least 1.
type PNGOptions struct {
	Width       int
	Supersample int
	Minimal     bool
}

// PNG rasterises the route map. The glow filter is not reproduced.
func PNG(w io.Writer, path route.PathResult, opts PNGOptions) error {
	img := Raster(path, opts)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Raster draws the route into an RGBA image at the requested width.
func Raster(path route.PathResult, opts PNGOptions) *image.RGBA {
	width := opts.Width
	if width <= 0 {
		width = DefaultPNGWidth
	}
	if width > maxPNGWidth {
		width = maxPNGWidth
	}
	ss := supersample(width, opts.Supersample)

	c := newCanvas(width*ss, max(1, width*ss/2))
	c.fill(hexColor(ColorBackground, 1))

	grid := hexColor(ColorGrid, 0.1)
	for y := 1.0; y < route.CanvasHeight; y += 15 {
		for x := 1.0; x < route.CanvasWidth; x += 15 {
			c.disc(x, y, 1, grid)
		}
	}

	deco := hexColor("#000000", 0.05)
	c.stroke(quadratic(-20, 100, 150, 20, 320, 80, 32), 15, func(float64) color.Color { return deco })
	c.stroke([]route.Point{{X: 100, Y: -20}, {X: 120, Y: 170}}, 10, func(float64) color.Color { return deco })

	shadow := make([]route.Point, len(path.Points))
	for i, p := range path.Points {
		shadow[i] = route.Point{X: p.X + 2, Y: p.Y + 3}
	}
	shade := hexColor("#000000", 0.1)
	c.stroke(shadow, 6, func(float64) color.Color { return shade })

	from, to := hexColor(ColorGradFrom, 1), hexColor(ColorGradTo, 1)
	c.stroke(path.Points, 4, func(x float64) color.Color {
		return lerp(from, to, x/route.CanvasWidth)
	})

	radius := 5.0
	if opts.Minimal {
		radius = 4
	}
	c.disc(path.Start.X, path.Start.Y, radius+1, color.White)
	c.disc(path.Start.X, path.Start.Y, radius-1, hexColor(ColorStart, 1))

	ex, ey := path.End.X, path.End.Y-14
	c.polygon([]route.Point{{X: ex, Y: ey + 14}, {X: ex, Y: ey}, {X: ex + 8, Y: ey + 4}, {X: ex, Y: ey + 8}}, hexColor(ColorFlag, 1))
	c.stroke([]route.Point{{X: ex, Y: ey}, {X: ex, Y: ey + 14}}, 1, func(float64) color.Color { return hexColor(ColorFlagStroke, 1) })
	c.disc(ex, ey+14, 2, hexColor(ColorFlag, 1))

	out := image.NewRGBA(image.Rect(0, 0, width, max(1, width/2)))
	draw.CatmullRom.Scale(out, out.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	return out
}

// supersample returns the sampling factor for width, reduced so the
// working canvas never exceeds maxCanvasWidth pixels across.
func supersample(width, ss int) int {
	if ss <= 0 {
		ss = DefaultSupersample
	}
	return max(1, min(ss, maxCanvasWidth/width))
}

// canvas maps logical route coordinates onto a supersampled image.
type canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
	k   float64
}

func newCanvas(w, h int) *canvas {
	return &canvas{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:   vector.NewRasterizer(1, 1),
		k:   float64(w) / route.CanvasWidth,
	}
}

func (c *canvas) fill(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// polygon fills pts, rasterising only the polygon's bounding box.
func (c *canvas) polygon(pts []route.Point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	xs := make([]float32, len(pts))
	ys := make([]float32, len(pts))
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(0), float32(0)
	for i, p := range pts {
		xs[i], ys[i] = c.project(p)
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	r := image.Rect(int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY)))).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}

	c.z.Reset(r.Dx(), r.Dy())
	c.z.DrawOp = draw.Over
	ox, oy := float32(r.Min.X), float32(r.Min.Y)
	c.z.MoveTo(xs[0]-ox, ys[0]-oy)
	for i := 1; i < len(xs); i++ {
		c.z.LineTo(xs[i]-ox, ys[i]-oy)
	}
	c.z.ClosePath()
	c.z.Draw(c.img, r, image.NewUniform(col), image.Point{})
}

func (c *canvas) disc(cx, cy, r float64, col color.Color) {
	const sides = 24
	pts := make([]route.Point, sides)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / sides
		pts[i] = route.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	c.polygon(pts, col)
}

// stroke draws a polyline with round joins; shade picks the colour of each
// segment from its midpoint x.
func (c *canvas) stroke(pts []route.Point, width float64, shade func(x float64) color.Color) {
	half := width / 2
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		col := shade((a.X + b.X) / 2)
		if length > 0 {
			nx, ny := -dy/length*half, dx/length*half
			c.polygon([]route.Point{
				{X: a.X + nx, Y: a.Y + ny},
				{X: b.X + nx, Y: b.Y + ny},
				{X: b.X - nx, Y: b.Y - ny},
				{X: a.X - nx, Y: a.Y - ny},
			}, col)
		}
		c.disc(b.X, b.Y, half, col)
	}
	if len(pts) > 0 {
		c.disc(pts[0].X, pts[0].Y, half, shade(pts[0].X))
	}
}

func (c *canvas) project(p route.Point) (float32, float32) {
	b := c.img.Bounds()
	x := math.Max(0, math.Min(float64(b.Dx()), p.X*c.k))
	y := math.Max(0, math.Min(float64(b.Dy()), p.Y*c.k))
	return float32(x), float32(y)
}

func quadratic(x0, y0, cx, cy, x1, y1 float64, steps int) []route.Point {
	pts := make([]route.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		u := 1 - t
		pts = append(pts, route.Point{
			X: u*u*x0 + 2*u*t*cx + t*t*x1,
			Y: u*u*y0 + 2*u*t*cy + t*t*y1,
		})
	}
	return pts
}

func hexColor(hex string, alpha float64) color.NRGBA {
	var rgb uint64
	if len(hex) == 7 && hex[0] == '#' {
		rgb, _ = strconv.ParseUint(hex[1:], 16, 32)
	}
	return color.NRGBA{
		R: uint8(rgb >> 16),
		G: uint8(rgb >> 8),
		B: uint8(rgb),
		A: uint8(math.Round(alpha * 255)),
	}
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
