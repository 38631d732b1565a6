package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// GeometryType identifies the shape of a geometry payload
type GeometryType string

const (
	GeometryPoint      GeometryType = "Point"
	GeometryLineString GeometryType = "LineString"
	GeometryPolygon    GeometryType = "Polygon"
)

// metersPerDegree is the length of one degree of latitude on WGS84
const metersPerDegree = 111194.9

// Coordinate is a WGS84 position as [longitude, latitude]
type Coordinate [2]float64

// Lon returns the longitude component
func (c Coordinate) Lon() float64 {
	return c[0]
}

// Lat returns the latitude component
func (c Coordinate) Lat() float64 {
	return c[1]
}

// Geometry is a closed tagged union of Point, LineString and Polygon.
// Coordinates are WGS84 lon/lat. Polygons carry a single exterior ring
// whose first and last coordinates must coincide.
type Geometry struct {
	Type        GeometryType
	Coordinates []Coordinate
}

// NewPoint creates a point geometry
func NewPoint(lon, lat float64) Geometry {
	return Geometry{Type: GeometryPoint, Coordinates: []Coordinate{{lon, lat}}}
}

// NewLineString creates a line geometry from an ordered coordinate list
func NewLineString(coords ...Coordinate) Geometry {
	return Geometry{Type: GeometryLineString, Coordinates: coords}
}

// NewPolygon creates a polygon geometry from its exterior ring
func NewPolygon(ring ...Coordinate) Geometry {
	return Geometry{Type: GeometryPolygon, Coordinates: ring}
}

type geometryJSON struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// MarshalJSON serializes the geometry in GeoJSON shape
func (g Geometry) MarshalJSON() ([]byte, error) {
	switch g.Type {
	case GeometryPoint:
		if len(g.Coordinates) != 1 {
			return nil, fmt.Errorf("%w: point must have exactly one coordinate", ErrInvalidGeometry)
		}
		return json.Marshal(struct {
			Type        GeometryType `json:"type"`
			Coordinates Coordinate   `json:"coordinates"`
		}{g.Type, g.Coordinates[0]})
	case GeometryLineString:
		return json.Marshal(struct {
			Type        GeometryType `json:"type"`
			Coordinates []Coordinate `json:"coordinates"`
		}{g.Type, g.Coordinates})
	case GeometryPolygon:
		return json.Marshal(struct {
			Type        GeometryType   `json:"type"`
			Coordinates [][]Coordinate `json:"coordinates"`
		}{g.Type, [][]Coordinate{g.Coordinates}})
	default:
		return nil, fmt.Errorf("%w: unknown geometry type %q", ErrInvalidGeometry, g.Type)
	}
}

// UnmarshalJSON parses a GeoJSON-shaped payload, rejecting unknown
// type tags and malformed coordinate arrays at the boundary
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw geometryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	switch raw.Type {
	case GeometryPoint:
		var c Coordinate
		if err := json.Unmarshal(raw.Coordinates, &c); err != nil {
			return fmt.Errorf("%w: malformed point coordinates", ErrInvalidGeometry)
		}
		g.Type = GeometryPoint
		g.Coordinates = []Coordinate{c}
	case GeometryLineString:
		var coords []Coordinate
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil {
			return fmt.Errorf("%w: malformed line coordinates", ErrInvalidGeometry)
		}
		g.Type = GeometryLineString
		g.Coordinates = coords
	case GeometryPolygon:
		var rings [][]Coordinate
		if err := json.Unmarshal(raw.Coordinates, &rings); err != nil {
			return fmt.Errorf("%w: malformed polygon coordinates", ErrInvalidGeometry)
		}
		if len(rings) == 0 {
			return fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
		}
		// Only the exterior ring is used; interior holes are not supported
		g.Type = GeometryPolygon
		g.Coordinates = rings[0]
	default:
		return fmt.Errorf("%w: unknown geometry type %q", ErrInvalidGeometry, raw.Type)
	}

	return g.Validate()
}

// Validate checks coordinate counts and value ranges
func (g Geometry) Validate() error {
	switch g.Type {
	case GeometryPoint:
		if len(g.Coordinates) != 1 {
			return fmt.Errorf("%w: point must have exactly one coordinate", ErrInvalidGeometry)
		}
	case GeometryLineString:
		if len(g.Coordinates) < 2 {
			return fmt.Errorf("%w: line must have at least two coordinates", ErrInvalidGeometry)
		}
	case GeometryPolygon:
		if len(g.Coordinates) < 4 {
			return fmt.Errorf("%w: polygon ring must have at least four coordinates", ErrInvalidGeometry)
		}
		first := g.Coordinates[0]
		last := g.Coordinates[len(g.Coordinates)-1]
		if first != last {
			return fmt.Errorf("%w: polygon ring is not closed", ErrInvalidGeometry)
		}
	default:
		return fmt.Errorf("%w: unknown geometry type %q", ErrInvalidGeometry, g.Type)
	}

	for _, c := range g.Coordinates {
		if math.IsNaN(c.Lon()) || math.IsNaN(c.Lat()) || math.IsInf(c.Lon(), 0) || math.IsInf(c.Lat(), 0) {
			return fmt.Errorf("%w: non-finite coordinate", ErrInvalidGeometry)
		}
		if c.Lon() < -180 || c.Lon() > 180 {
			return fmt.Errorf("%w: longitude %f out of range", ErrInvalidGeometry, c.Lon())
		}
		if c.Lat() < -90 || c.Lat() > 90 {
			return fmt.Errorf("%w: latitude %f out of range", ErrInvalidGeometry, c.Lat())
		}
	}

	return nil
}

// BBox is an axis-aligned bounding box in WGS84 used as a cheap
// prefilter before exact distance tests
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// BoundingBox returns the envelope of the geometry
func (g Geometry) BoundingBox() BBox {
	b := BBox{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
	for _, c := range g.Coordinates {
		b.MinLon = math.Min(b.MinLon, c.Lon())
		b.MaxLon = math.Max(b.MaxLon, c.Lon())
		b.MinLat = math.Min(b.MinLat, c.Lat())
		b.MaxLat = math.Max(b.MaxLat, c.Lat())
	}
	return b
}

// Expand grows the box by the given distance in meters on every side
func (b BBox) Expand(meters float64) BBox {
	dLat := meters / metersPerDegree
	midLat := (b.MinLat + b.MaxLat) / 2
	scale := math.Cos(midLat * math.Pi / 180)
	if scale < 0.01 {
		scale = 0.01
	}
	dLon := meters / (metersPerDegree * scale)
	return BBox{
		MinLon: b.MinLon - dLon,
		MinLat: b.MinLat - dLat,
		MaxLon: b.MaxLon + dLon,
		MaxLat: b.MaxLat + dLat,
	}
}

// Intersects reports whether two boxes overlap (inclusive edges)
func (b BBox) Intersects(other BBox) bool {
	return b.MinLon <= other.MaxLon && other.MinLon <= b.MaxLon &&
		b.MinLat <= other.MaxLat && other.MinLat <= b.MaxLat
}

// planarPoint is a coordinate projected to local meters
type planarPoint struct {
	x float64
	y float64
}

// project converts coordinates to a local equirectangular plane around
// the given origin. Exact enough for buffer radii of a few hundred
// meters, which is all the conflict engine needs.
func project(coords []Coordinate, origin Coordinate) []planarPoint {
	scale := math.Cos(origin.Lat() * math.Pi / 180)
	pts := make([]planarPoint, len(coords))
	for i, c := range coords {
		pts[i] = planarPoint{
			x: (c.Lon() - origin.Lon()) * metersPerDegree * scale,
			y: (c.Lat() - origin.Lat()) * metersPerDegree,
		}
	}
	return pts
}

// DistanceMeters returns the minimum distance in meters between two
// geometries. Zero means they touch, cross or one contains the other.
func (g Geometry) DistanceMeters(other Geometry) float64 {
	if len(g.Coordinates) == 0 || len(other.Coordinates) == 0 {
		return math.Inf(1)
	}

	origin := g.Coordinates[0]
	a := project(g.Coordinates, origin)
	b := project(other.Coordinates, origin)

	// Containment makes the distance zero regardless of edge distances
	if g.Type == GeometryPolygon && pointInRing(b[0], a) {
		return 0
	}
	if other.Type == GeometryPolygon && pointInRing(a[0], b) {
		return 0
	}

	segA := segments(a, g.Type)
	segB := segments(b, other.Type)

	for _, sa := range segA {
		for _, sb := range segB {
			if segmentsCross(sa[0], sa[1], sb[0], sb[1]) {
				return 0
			}
		}
	}

	min := math.Inf(1)
	for _, p := range a {
		for _, s := range segB {
			min = math.Min(min, pointSegmentDistance(p, s[0], s[1]))
		}
		if len(segB) == 0 {
			for _, q := range b {
				min = math.Min(min, math.Hypot(p.x-q.x, p.y-q.y))
			}
		}
	}
	for _, q := range b {
		for _, s := range segA {
			min = math.Min(min, pointSegmentDistance(q, s[0], s[1]))
		}
	}
	return min
}

// WithinDistance reports whether the geometries lie within the given
// buffer of each other (inclusive)
func (g Geometry) WithinDistance(other Geometry, meters float64) bool {
	return g.DistanceMeters(other) <= meters
}

// Intersects reports whether the geometries touch, cross or contain
// each other
func (g Geometry) Intersects(other Geometry) bool {
	return g.DistanceMeters(other) == 0
}

// segments returns the edge list of a projected geometry. Points have
// none; polygon rings are already closed so consecutive pairs suffice.
func segments(pts []planarPoint, t GeometryType) [][2]planarPoint {
	if t == GeometryPoint || len(pts) < 2 {
		return nil
	}
	segs := make([][2]planarPoint, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, [2]planarPoint{pts[i], pts[i+1]})
	}
	return segs
}

func pointSegmentDistance(p, a, b planarPoint) float64 {
	dx := b.x - a.x
	dy := b.y - a.y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	t := ((p.x-a.x)*dx + (p.y-a.y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	cx := a.x + t*dx
	cy := a.y + t*dy
	return math.Hypot(p.x-cx, p.y-cy)
}

func cross(o, a, b planarPoint) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

func segmentsCross(a1, a2, b1, b2 planarPoint) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(b1, b2, a1)) ||
		(d2 == 0 && onSegment(b1, b2, a2)) ||
		(d3 == 0 && onSegment(a1, a2, b1)) ||
		(d4 == 0 && onSegment(a1, a2, b2))
}

func onSegment(a, b, p planarPoint) bool {
	return math.Min(a.x, b.x) <= p.x && p.x <= math.Max(a.x, b.x) &&
		math.Min(a.y, b.y) <= p.y && p.y <= math.Max(a.y, b.y)
}

// pointInRing runs a ray cast against a closed ring
func pointInRing(p planarPoint, ring []planarPoint) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi := ring[i]
		vj := ring[j]
		if (vi.y > p.y) != (vj.y > p.y) &&
			p.x < (vj.x-vi.x)*(p.y-vi.y)/(vj.y-vi.y)+vi.x {
			inside = !inside
		}
	}
	return inside
}
