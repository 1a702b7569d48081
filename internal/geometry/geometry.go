// Package geometry turns the flat geometry columns of a shutdown into one of
// four typed shapes and derives map-fit data from them.
package geometry

import (
	"errors"
	"fmt"

	"shutdown-tracker/internal/models"
)

var (
	ErrUnknownType = errors.New("unknown geometry type")
	ErrIncomplete  = errors.New("geometry is missing required fields")
)

// Shape is implemented only by Circle, Point, Polygon and Line.
type Shape interface {
	Kind() models.GeometryType
	// Points are the shape's vertices; for circle and point, the center.
	Points() []models.LatLng
	isShape()
}

type Circle struct {
	Center   models.LatLng
	RadiusKm float64
}

type Point struct {
	Center models.LatLng
}

// Polygon closes implicitly from its last vertex back to the first.
type Polygon struct {
	Ring []models.LatLng
}

type Line struct {
	Path []models.LatLng
}

func (Circle) Kind() models.GeometryType  { return models.GeometryCircle }
func (Point) Kind() models.GeometryType   { return models.GeometryPoint }
func (Polygon) Kind() models.GeometryType { return models.GeometryPolygon }
func (Line) Kind() models.GeometryType    { return models.GeometryLine }

func (c Circle) Points() []models.LatLng  { return []models.LatLng{c.Center} }
func (p Point) Points() []models.LatLng   { return []models.LatLng{p.Center} }
func (p Polygon) Points() []models.LatLng { return append([]models.LatLng(nil), p.Ring...) }
func (l Line) Points() []models.LatLng    { return append([]models.LatLng(nil), l.Path...) }

func (Circle) isShape()  {}
func (Point) isShape()   {}
func (Polygon) isShape() {}
func (Line) isShape()    {}

// FromRecord reads the shape a record's geometry_type calls for. Records of an
// unknown type yield ErrUnknownType, records missing their fields ErrIncomplete.
func FromRecord(rec *models.Shutdown) (Shape, error) {
	switch rec.GeometryType {
	case models.GeometryCircle:
		if rec.CenterLat == nil || rec.CenterLng == nil || rec.RadiusKm == nil {
			return nil, fmt.Errorf("circle: %w", ErrIncomplete)
		}
		return Circle{
			Center:   models.LatLng{*rec.CenterLat, *rec.CenterLng},
			RadiusKm: *rec.RadiusKm,
		}, nil
	case models.GeometryPoint:
		if rec.CenterLat == nil || rec.CenterLng == nil {
			return nil, fmt.Errorf("point: %w", ErrIncomplete)
		}
		return Point{Center: models.LatLng{*rec.CenterLat, *rec.CenterLng}}, nil
	case models.GeometryPolygon:
		if len(rec.Coordinates) == 0 {
			return nil, fmt.Errorf("polygon: %w", ErrIncomplete)
		}
		return Polygon{Ring: append([]models.LatLng(nil), rec.Coordinates...)}, nil
	case models.GeometryLine:
		if len(rec.Coordinates) == 0 {
			return nil, fmt.Errorf("line: %w", ErrIncomplete)
		}
		return Line{Path: append([]models.LatLng(nil), rec.Coordinates...)}, nil
	default:
		return nil, fmt.Errorf("%q: %w", rec.GeometryType, ErrUnknownType)
	}
}

// Assign writes s into rec's geometry columns, clearing the ones s does not use.
func Assign(rec *models.Shutdown, s Shape) {
	rec.CenterLat, rec.CenterLng, rec.RadiusKm, rec.Coordinates = nil, nil, nil, nil
	rec.GeometryType = s.Kind()

	switch v := s.(type) {
	case Circle:
		lat, lng, r := v.Center.Lat(), v.Center.Lng(), v.RadiusKm
		rec.CenterLat, rec.CenterLng, rec.RadiusKm = &lat, &lng, &r
	case Point:
		lat, lng := v.Center.Lat(), v.Center.Lng()
		rec.CenterLat, rec.CenterLng = &lat, &lng
	case Polygon:
		rec.Coordinates = append([]models.LatLng(nil), v.Ring...)
	case Line:
		rec.Coordinates = append([]models.LatLng(nil), v.Path...)
	}
}

// Validate checks that a shape is well formed enough to store.
func Validate(s Shape) error {
	for i, p := range s.Points() {
		if p.Lat() < -90 || p.Lat() > 90 {
			return fmt.Errorf("point %d: latitude %v out of range", i, p.Lat())
		}
		if p.Lng() < -180 || p.Lng() > 180 {
			return fmt.Errorf("point %d: longitude %v out of range", i, p.Lng())
		}
	}

	switch v := s.(type) {
	case Circle:
		if !(v.RadiusKm > 0) {
			return fmt.Errorf("radius must be positive, got %v", v.RadiusKm)
		}
	case Polygon:
		if len(v.Ring) < 3 {
			return fmt.Errorf("polygon needs at least 3 coordinates, got %d", len(v.Ring))
		}
	case Line:
		if len(v.Path) < 2 {
			return fmt.Errorf("line needs at least 2 coordinates, got %d", len(v.Path))
		}
	}
	return nil
}

// Renderable reports whether the map can draw rec.
func Renderable(rec *models.Shutdown) bool {
	_, err := FromRecord(rec)
	return err == nil
}

// BoundingPoints returns the points used to fit the map to rec. Records that
// cannot be read as a shape contribute nothing.
func BoundingPoints(rec *models.Shutdown) []models.LatLng {
	s, err := FromRecord(rec)
	if err != nil {
		return nil
	}
	return s.Points()
}

type Bounds struct {
	SouthWest models.LatLng `json:"south_west"`
	NorthEast models.LatLng `json:"north_east"`
}

// FitBounds returns the box around every bounding point of recs. ok is false
// when no record contributes a point.
func FitBounds(recs []models.Shutdown) (b Bounds, ok bool) {
	for i := range recs {
		for _, p := range BoundingPoints(&recs[i]) {
			if !ok {
				b = Bounds{SouthWest: p, NorthEast: p}
				ok = true
				continue
			}
			b.SouthWest = models.LatLng{min(b.SouthWest.Lat(), p.Lat()), min(b.SouthWest.Lng(), p.Lng())}
			b.NorthEast = models.LatLng{max(b.NorthEast.Lat(), p.Lat()), max(b.NorthEast.Lng(), p.Lng())}
		}
	}
	return b, ok
}
