package citymapper

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Configuration errors for the time/time_type pairing.
var (
	ErrMissingTimeType = errors.New("time_type must be provided when a time is given")
	ErrInvalidTimeType = errors.New(`time_type must be "arrival"`)
)

// TravelTimeRequest describes one transit travel-time lookup.
//
// Time, when set, is expected in ISO-8601 format (the API does not accept
// anything else; this library does not validate the format). TimeType must
// then be "arrival" -- the only qualifier the API supports, see
// https://citymapper.3scale.net/docs.
type TravelTimeRequest struct {
	Origin      any    `validate:"-"`
	Destination any    `validate:"-"`
	Time        string `validate:"-"`
	TimeType    string `validate:"required_with=Time,omitempty,eq=arrival"`
}

var validate = validator.New()

// queryParam is one URL query entry. Params are kept as an ordered slice so
// the produced query string is deterministic; url.Values sorts keys on
// Encode.
type queryParam struct {
	key   string
	value string
}

// params validates the request and renders it as the ordered query
// parameters of a traveltime call. The endpoint path and the API key are the
// client's business, not the request's.
func (r TravelTimeRequest) params() ([]queryParam, error) {
	if err := validate.Struct(r); err != nil {
		return nil, configError(err, r)
	}

	start, err := NormalizePosition(r.Origin)
	if err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	end, err := NormalizePosition(r.Destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	const maxParams = 4
	params := make([]queryParam, 0, maxParams)
	if r.Time != "" {
		params = append(params,
			queryParam{"time", r.Time},
			queryParam{"time_type", r.TimeType},
		)
	}
	params = append(params,
		queryParam{"startcoord", start},
		queryParam{"endcoord", end},
	)
	return params, nil
}

// configError maps validator failures onto the package sentinels callers
// match with errors.Is.
func configError(err error, r TravelTimeRequest) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fieldErr := range verrs {
			if fieldErr.Field() != "TimeType" {
				continue
			}
			if fieldErr.Tag() == "required_with" {
				return ErrMissingTimeType
			}
			return fmt.Errorf("%w, got %q", ErrInvalidTimeType, r.TimeType)
		}
	}
	return fmt.Errorf("invalid traveltime request: %w", err)
}
