package route

import (
	"math"
	"strconv"
	"strings"
)

// Logical canvas the path is generated on.
const (
	CanvasWidth  = 300
	CanvasHeight = 150
	Padding      = 20
	OriginX      = 30

	MinSegments = 6
	MaxSegments = 10
)

const (
	minY = Padding
	maxY = CanvasHeight - Padding
	maxX = CanvasWidth - Padding
)

// Point is a coordinate on the logical canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathResult is a generated route. Treat it as immutable.
type PathResult struct {
	Points []Point `json:"points"`
	Start  Point   `json:"start"`
	End    Point   `json:"end"`
}

// Generate turns an identifier into its route. The same identifier always
// yields the same points.
func Generate(identifier string) PathResult {
	seq := NewSequence(Seed(identifier))

	x := float64(OriginX)
	y := CanvasHeight/2 + (seq.Float64()-0.5)*60
	segments := MinSegments + int(math.Floor(seq.Float64()*(MaxSegments-MinSegments+1)))

	points := make([]Point, 0, segments+1)
	points = append(points, Point{X: x, Y: y})
	for i := 0; i < segments; i++ {
		moveX := 20 + seq.Float64()*30
		moveY := (seq.Float64() - 0.5) * 60

		x += moveX
		y += moveY

		y = math.Max(minY, math.Min(maxY, y))
		x = math.Min(maxX, x)

		points = append(points, Point{X: x, Y: y})
	}

	return PathResult{
		Points: points,
		Start:  points[0],
		End:    points[len(points)-1],
	}
}

// Segments returns the number of line segments in the path.
func (p PathResult) Segments() int {
	if len(p.Points) == 0 {
		return 0
	}
	return len(p.Points) - 1
}

// Polyline formats the points as an SVG points attribute.
func (p PathResult) Polyline() string {
	parts := make([]string, 0, len(p.Points))
	for _, pt := range p.Points {
		parts = append(parts, formatCoord(pt.X)+","+formatCoord(pt.Y))
	}
	return strings.Join(parts, " ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
