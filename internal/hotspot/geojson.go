package hotspot

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/argusint/argus-cli/internal/model"
)

// GeoJSON renders the hotspot set as a FeatureCollection for the map
// layer. Coordinates are lon/lat WGS84 points.
func GeoJSON(hotspots []model.Hotspot) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(hotspots))}
	for _, h := range hotspots {
		pt := geom.NewPointFlat(geom.XY, []float64{h.Lon, h.Lat})
		pt.SetSRID(4326)
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       h.ID,
			Geometry: pt,
			Properties: map[string]interface{}{
				"name":          h.Name,
				"level":         string(h.Activity.Level),
				"status":        h.Activity.Status,
				"score":         h.Activity.Score,
				"matched_count": h.Activity.MatchedCount,
				"has_breaking":  h.Activity.HasBreaking,
			},
		})
	}
	return fc
}
