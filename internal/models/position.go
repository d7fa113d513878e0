package models

// Coordinates is the keyed position form: a geographical point addressed by
// named latitude and longitude components.
type Coordinates struct {
	Latitude  float64 // Latitude of the geographical point.
	Longitude float64 // Longitude of the geographical point.
}

// Pair is the ordered position form: latitude first, longitude second.
type Pair [2]float64

// Lat returns the first component of the pair.
func (p Pair) Lat() float64 { return p[0] }

// Lng returns the second component of the pair.
func (p Pair) Lng() float64 { return p[1] }
