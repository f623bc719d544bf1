package forest

import "math"

const earthRadiusM = 6378137.0

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// PolygonAreaHa returns the area of a (lon, lat) ring on a spherical earth
// in hectares. Orientation does not matter.
func PolygonAreaHa(polygon [][2]float64) float64 {
	ring := AOI{Polygon: polygon}.ring()
	if len(ring) < 3 {
		return 0
	}

	var sum float64
	for i := range ring {
		p1 := ring[i]
		p2 := ring[(i+1)%len(ring)]
		sum += radians(p2[0]-p1[0]) * (2 + math.Sin(radians(p1[1])) + math.Sin(radians(p2[1])))
	}
	areaM2 := math.Abs(sum * earthRadiusM * earthRadiusM / 2)
	return areaM2 / 10_000
}
