package geometry

import "shutdown-tracker/internal/models"

// ToGeoJSON renders s as a GeoJSON geometry object. GeoJSON positions are
// [lng, lat]. A circle becomes its center Point; the radius travels in the
// feature properties.
func ToGeoJSON(s Shape) map[string]interface{} {
	switch v := s.(type) {
	case Circle:
		return map[string]interface{}{"type": "Point", "coordinates": position(v.Center)}
	case Point:
		return map[string]interface{}{"type": "Point", "coordinates": position(v.Center)}
	case Polygon:
		ring := positions(v.Ring)
		if len(ring) > 0 && v.Ring[0] != v.Ring[len(v.Ring)-1] {
			ring = append(ring, position(v.Ring[0]))
		}
		return map[string]interface{}{"type": "Polygon", "coordinates": [][][2]float64{ring}}
	case Line:
		return map[string]interface{}{"type": "LineString", "coordinates": positions(v.Path)}
	}
	return nil
}

func position(p models.LatLng) [2]float64 {
	return [2]float64{p.Lng(), p.Lat()}
}

func positions(ps []models.LatLng) [][2]float64 {
	out := make([][2]float64, 0, len(ps))
	for _, p := range ps {
		out = append(out, position(p))
	}
	return out
}
