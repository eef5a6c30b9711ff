package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"runpal/internal/render"
	"runpal/internal/viewmodel"
)

// routeSVG inlines the route drawing for m.
func routeSVG(m viewmodel.RouteMap) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return render.SVG(w, m.Path, render.SVGOptions{DefsID: m.DefsID, Minimal: m.Minimal})
	})
}

// contentStyle positions the map content layer. The values come from the
// viewport state machine, never from user input.
func contentStyle(m viewmodel.RouteMap) map[string]templ.SafeCSSProperty {
	return map[string]templ.SafeCSSProperty{
		"transform":  templ.SafeCSSProperty(m.Transform),
		"transition": templ.SafeCSSProperty(m.Transition),
	}
}
