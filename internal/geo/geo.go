// Package geo implements great-circle navigation math on a spherical earth.
// All distances are in nautical miles, bearings in degrees.
package geo

import "math"

// EarthRadiusNM is the mean earth radius in nautical miles.
const EarthRadiusNM = 3440.065

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the haversine great-circle distance between p1 and p2.
func Distance(p1, p2 Point) float64 {
	lat1, lat2 := radians(p1.Lat), radians(p2.Lat)
	dLat := radians(p2.Lat - p1.Lat)
	dLon := radians(p2.Lon - p1.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusNM * c
}

// Bearing returns the initial bearing from p1 to p2 in degrees [0, 360).
func Bearing(p1, p2 Point) float64 {
	lat1, lat2 := radians(p1.Lat), radians(p2.Lat)
	dLon := radians(p2.Lon - p1.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(degrees(math.Atan2(y, x))+360, 360)
}

// CrossTrack returns the perpendicular distance from point to the great-circle
// route start->end. Always non-negative.
func CrossTrack(point, start, end Point) float64 {
	d13 := Distance(start, point) / EarthRadiusNM
	theta13 := radians(Bearing(start, point))
	theta12 := radians(Bearing(start, end))

	xt := math.Asin(math.Sin(d13) * math.Sin(theta13-theta12))
	return math.Abs(xt * EarthRadiusNM)
}

// AlongTrack returns the distance along the route start->end to the closest
// projection of point. The acos ratio is clamped to [-1, 1] to absorb
// floating-point drift; a residual NaN collapses to 0.
func AlongTrack(point, start, end Point) float64 {
	d13 := Distance(start, point) / EarthRadiusNM
	theta13 := radians(Bearing(start, point))
	theta12 := radians(Bearing(start, end))

	xt := math.Asin(math.Sin(d13) * math.Sin(theta13-theta12))

	ratio := 1.0
	if math.Cos(xt) != 0 {
		ratio = math.Cos(d13) / math.Cos(xt)
	}
	if ratio > 1 {
		ratio = 1
	} else if ratio < -1 {
		ratio = -1
	}
	at := math.Acos(ratio) * EarthRadiusNM
	if math.IsNaN(at) {
		return 0
	}
	// Projections behind the start point carry a negative sign.
	if math.Cos(theta13-theta12) < 0 {
		return -at
	}
	return at
}

// WithinSegment reports whether point's projection onto the route start->end
// falls between the two endpoints.
func WithinSegment(point, start, end Point) bool {
	at := AlongTrack(point, start, end)
	return at >= 0 && at <= Distance(start, end)
}
