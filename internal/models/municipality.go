package models

// Municipality is a territorial unit referenced by code. Only the
// bounding box is kept here; full boundary management lives outside
// this system.
type Municipality struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// BBox returns the municipality envelope
func (m *Municipality) BBox() BBox {
	return BBox{MinLon: m.MinLon, MinLat: m.MinLat, MaxLon: m.MaxLon, MaxLat: m.MaxLat}
}
