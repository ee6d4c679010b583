package mapview

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/zeebo/blake3"
)

// Point a WGS84 coordinate
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// jitterSpan total width of the per-area jitter in degrees (about 11 m)
const jitterSpan = 0.0001

// offsets approximate position of each named campus area relative to the
// campus centre, in degrees
var offsets = map[string]Point{
	// buildings
	"Main Building":       {0, 0},
	"Science Block":       {0.0005, 0.0003},
	"Laboratory Building": {0.0005, 0.0003},
	"Admin Block":         {-0.0003, 0.0002},
	"Library":             {0.0002, 0.0005},
	"Sports Complex":      {0.0008, -0.0002},
	"Cafeteria":           {-0.0002, -0.0004},

	// outdoor areas
	"Garden":            {0.0003, -0.0004},
	"Playground":        {-0.0006, 0.0002},
	"Sports Field":      {0.0008, -0.0003},
	"Corridor":          {0.0001, 0.0001},
	"Parking Area":      {-0.0005, -0.0005},
	"Entrance":          {-0.0002, 0},
	"Cafeteria Outdoor": {-0.0002, -0.0005},
	"Assembly Ground":   {0.0004, 0.0004},
	"Behind Building":   {0.0006, -0.0001},

	// sections
	"Primary":   {-0.0004, -0.0003},
	"Secondary": {0.0003, 0.0002},
	"Senior":    {0.0006, 0.0001},

	"General": {0, 0},
}

// Offset returns the offset of a named area; unknown names fall back to General
func Offset(location string) Point {
	if p, ok := offsets[strings.TrimSpace(location)]; ok {
		return p
	}
	return offsets["General"]
}

// Coordinates places a marker for location near center. The jitter is
// derived from the area text so a given area always lands on the same spot
// while different areas of one building do not overlap.
func Coordinates(center Point, location, specificArea string) Point {
	off := Offset(location)
	sum := blake3.Sum256([]byte(strings.TrimSpace(location) + "\x00" + strings.TrimSpace(specificArea)))

	jLat := unit(binary.BigEndian.Uint32(sum[0:4]))
	jLng := unit(binary.BigEndian.Uint32(sum[4:8]))

	return Point{
		Lat: center.Lat + off.Lat + (jLat-0.5)*jitterSpan,
		Lng: center.Lng + off.Lng + (jLng-0.5)*jitterSpan,
	}
}

// unit maps v onto [0, 1)
func unit(v uint32) float64 {
	return float64(v) / (math.MaxUint32 + 1.0)
}
