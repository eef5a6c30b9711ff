package render

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"runpal/internal/route"
)

// Feature roles in the exported collection.
const (
	RoleRoute = "route"
	RoleStart = "start"
	RoleEnd   = "end"
)

// GeoJSON exports the route as a FeatureCollection in canvas coordinates:
// the LineString followed by start and end Points.
func GeoJSON(path route.PathResult, identifier string) ([]byte, error) {
	line := make(orb.LineString, 0, len(path.Points))
	for _, p := range path.Points {
		line = append(line, orb.Point{p.X, p.Y})
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(feature(line, identifier, RoleRoute, path.Segments()))
	fc.Append(feature(orb.Point{path.Start.X, path.Start.Y}, identifier, RoleStart, path.Segments()))
	fc.Append(feature(orb.Point{path.End.X, path.End.Y}, identifier, RoleEnd, path.Segments()))

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal geojson: %w", err)
	}
	return data, nil
}

func feature(g orb.Geometry, identifier, role string, segments int) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["run_id"] = identifier
	f.Properties["role"] = role
	f.Properties["segments"] = segments
	return f
}
