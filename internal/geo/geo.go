// Package geo provides great-circle distance math on a spherical Earth.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for every distance
// computation. Changing it changes which caches are visible and claimable.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point lies within latitude [-90,90] and
// longitude [-180,180].
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// Destination returns the point reached by travelling meters from p along
// the initial bearing (degrees clockwise from north).
func Destination(p Point, bearingDegrees, meters float64) Point {
	lat1 := radians(p.Lat)
	lon1 := radians(p.Lon)
	brg := radians(bearingDegrees)
	delta := meters / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(
		math.Sin(brg)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Point{Lat: degrees(lat2), Lon: normalizeLon(degrees(lon2))}
}

// Box is an axis-aligned latitude/longitude rectangle.
// When WrapsLon is set the longitude range is unbounded and only the
// latitude bounds apply.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	WrapsLon       bool
}

// BoundingBox returns a box that fully contains the circle of the given
// radius around center. It is a coarse filter; callers must still apply
// Distance to the candidates.
func BoundingBox(center Point, radiusMeters float64) Box {
	delta := radiusMeters / EarthRadiusMeters
	lat := radians(center.Lat)

	minLat := lat - delta
	maxLat := lat + delta

	// Circle reaches a pole: every longitude is in range.
	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 {
		return Box{
			MinLat:   math.Max(degrees(minLat), -90),
			MaxLat:   math.Min(degrees(maxLat), 90),
			MinLon:   -180,
			MaxLon:   180,
			WrapsLon: true,
		}
	}

	dLon := math.Asin(math.Sin(delta) / math.Cos(lat))
	minLon := degrees(radians(center.Lon) - dLon)
	maxLon := degrees(radians(center.Lon) + dLon)

	if minLon < -180 || maxLon > 180 {
		return Box{
			MinLat:   degrees(minLat),
			MaxLat:   degrees(maxLat),
			MinLon:   -180,
			MaxLon:   180,
			WrapsLon: true,
		}
	}

	return Box{
		MinLat: degrees(minLat),
		MaxLat: degrees(maxLat),
		MinLon: minLon,
		MaxLon: maxLon,
	}
}

// Contains reports whether p falls inside the box.
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.WrapsLon {
		return true
	}
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
