// Package render draws generated routes as SVG, PNG and GeoJSON.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"runpal/internal/route"
)

// Palette shared by the SVG and raster renderers.
const (
	ColorBackground = "#f8fafc"
	ColorGrid       = "#64748b"
	ColorGradFrom   = "#4f46e5"
	ColorGradTo     = "#ec4899"
	ColorStart      = "#10b981"
	ColorFlag       = "#ef4444"
	ColorFlagStroke = "#b91c1c"
)

// Fixed background strokes. They are decoration only and do not follow the route.
var decorativeStrokes = []struct {
	D     string
	Width int
}{
	{D: "M-20,100 Q150,20 320,80", Width: 15},
	{D: "M100,-20 L120,170", Width: 10},
}

// SVGOptions controls a single SVG render.
type SVGOptions struct {
	// DefsID prefixes gradient, filter and pattern ids. Maps rendered on the
	// same page must use distinct values.
	DefsID string
	// Minimal shrinks the start marker for card thumbnails.
	Minimal bool
	// Standalone adds the XML namespace and pixel size for serving as a file.
	Standalone bool
}

// SVG writes the route map: dot grid, decorative strokes, the shadowed
// gradient polyline and the start/end markers.
func SVG(w io.Writer, path route.PathResult, opts SVGOptions) error {
	id := opts.DefsID
	if id == "" {
		id = "route"
	}
	var buf bytes.Buffer

	buf.WriteString(`<svg class="route-map-svg" viewBox="0 0 300 150" preserveAspectRatio="none"`)
	if opts.Standalone {
		buf.WriteString(` xmlns="http://www.w3.org/2000/svg" width="600" height="300"`)
	}
	buf.WriteString(`>`)

	fmt.Fprintf(&buf, `<defs>`+
		`<pattern id="grid-%[1]s" width="15" height="15" patternUnits="userSpaceOnUse">`+
		`<circle cx="1" cy="1" r="1" fill="%[2]s"/></pattern>`+
		`<filter id="glow-%[1]s" x="-20%%" y="-20%%" width="140%%" height="140%%">`+
		`<feGaussianBlur stdDeviation="2" result="blur"/>`+
		`<feComposite in="SourceGraphic" in2="blur" operator="over"/></filter>`+
		`<linearGradient id="pathGradient-%[1]s" x1="0%%" y1="0%%" x2="100%%" y2="0%%">`+
		`<stop offset="0%%" stop-color="%[3]s"/><stop offset="100%%" stop-color="%[4]s"/>`+
		`</linearGradient></defs>`,
		id, ColorGrid, ColorGradFrom, ColorGradTo)

	fmt.Fprintf(&buf, `<rect width="300" height="150" fill="%s"/>`, ColorBackground)
	fmt.Fprintf(&buf, `<rect width="300" height="150" fill="url(#grid-%s)" opacity="0.1"/>`, id)

	buf.WriteString(`<g opacity="0.05" fill="none" stroke="#000">`)
	for _, s := range decorativeStrokes {
		fmt.Fprintf(&buf, `<path d="%s" stroke-width="%d"/>`, s.D, s.Width)
	}
	buf.WriteString(`</g>`)

	points := path.Polyline()
	fmt.Fprintf(&buf, `<polyline points="%s" fill="none" stroke="rgba(0,0,0,0.1)" stroke-width="6" `+
		`stroke-linecap="round" stroke-linejoin="round" transform="translate(2, 3)"/>`, points)
	fmt.Fprintf(&buf, `<polyline points="%s" fill="none" stroke="url(#pathGradient-%s)" stroke-width="4" `+
		`stroke-linecap="round" stroke-linejoin="round" filter="url(#glow-%s)"/>`, points, id, id)

	radius := 5
	if opts.Minimal {
		radius = 4
	}
	fmt.Fprintf(&buf, `<circle cx="%s" cy="%s" r="%d" fill="%s" stroke="white" stroke-width="2"/>`,
		num(path.Start.X), num(path.Start.Y), radius, ColorStart)

	fmt.Fprintf(&buf, `<g transform="translate(%s, %s)">`+
		`<path d="M0,14 L0,0 L8,4 L0,8" fill="%s" stroke="%s" stroke-width="1" stroke-linejoin="round"/>`+
		`<circle cx="0" cy="14" r="2" fill="%s"/></g>`,
		num(path.End.X), num(path.End.Y-14), ColorFlag, ColorFlagStroke, ColorFlag)

	buf.WriteString(`</svg>`)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
