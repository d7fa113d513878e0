package citymapper

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/transitlabs/citymapper/internal/models"
)

// ErrInvalidPosition is returned when a value cannot be converted into the
// "<lat>,<lng>" wire form.
var ErrInvalidPosition = errors.New(
	"position must be models.Coordinates, models.Pair or an ordered pair of floats",
)

// formatCoordinate renders a coordinate as its shortest decimal form:
// no trailing zeros, no trailing decimal point (124.00 -> "124").
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NormalizePosition converts a position value into the "<lat>,<lng>" string
// the API expects. Accepted forms are the keyed models.Coordinates, the
// ordered models.Pair, and plain [2]float64 or []float64 slices with at
// least two elements. Strings are rejected outright; a "1,2" literal is not
// a position.
func NormalizePosition(pos any) (string, error) {
	switch p := pos.(type) {
	case models.Coordinates:
		return formatCoordinate(p.Latitude) + "," + formatCoordinate(p.Longitude), nil
	case *models.Coordinates:
		if p == nil {
			return "", fmt.Errorf("%w: got nil *models.Coordinates", ErrInvalidPosition)
		}
		return formatCoordinate(p.Latitude) + "," + formatCoordinate(p.Longitude), nil
	case models.Pair:
		return formatCoordinate(p.Lat()) + "," + formatCoordinate(p.Lng()), nil
	case [2]float64:
		return formatCoordinate(p[0]) + "," + formatCoordinate(p[1]), nil
	case []float64:
		const pairLength = 2
		if len(p) < pairLength {
			return "", fmt.Errorf("%w: got %d coordinate(s)", ErrInvalidPosition, len(p))
		}
		return formatCoordinate(p[0]) + "," + formatCoordinate(p[1]), nil
	case string:
		return "", fmt.Errorf("%w: got string %q", ErrInvalidPosition, p)
	default:
		return "", fmt.Errorf("%w: got %T", ErrInvalidPosition, pos)
	}
}
