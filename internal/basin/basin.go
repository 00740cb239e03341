package basin

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

//go:embed nakambe.geojson
var defaultOutline []byte

// Summary describes the basin footprint the maps cover.
type Summary struct {
	Name      string     `json:"name"`
	Features  int        `json:"features"`
	BBox      [4]float64 `json:"bbox"`
	Longitude float64    `json:"centroid_longitude"`
	Latitude  float64    `json:"centroid_latitude"`
	AreaKm2   float64    `json:"area_km2"`
}

// Load reads the outline at path, or the embedded Nakambé outline when path is empty.
func Load(path string) (*Summary, error) {
	if path == "" {
		return Parse(defaultOutline)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read basin outline: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Summary, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal basin outline: %w", err)
	}

	var shapes orb.Collection
	name := ""
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		if name == "" {
			name = f.Properties.MustString("name", "")
		}
		shapes = append(shapes, f.Geometry)
	}
	if len(shapes) == 0 {
		return nil, errors.New("basin outline has no polygon")
	}

	centroid, area := planar.CentroidArea(shapes)
	if area <= 0 {
		return nil, errors.New("error getting basin centroid")
	}
	b := shapes.Bound()

	area = 0
	for _, g := range shapes {
		area += geo.Area(g)
	}

	return &Summary{
		Name:      name,
		Features:  len(shapes),
		BBox:      [4]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()},
		Longitude: centroid.Lon(),
		Latitude:  centroid.Lat(),
		AreaKm2:   area / 1e6,
	}, nil
}
