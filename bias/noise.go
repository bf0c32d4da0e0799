package bias

import (
	"github.com/pkg/errors"
)

// NoiseType selects which closed-form likelihood relates the simulated
// observables to the experimental reference values. The set is closed: every
// dispatch on NoiseType in this package handles all three members.
type NoiseType int

const (
	// GaussianSingle is gaussian noise with one uncertainty parameter shared
	// by all data points
	GaussianSingle NoiseType = iota

	// GaussianMulti is gaussian noise with one uncertainty parameter per
	// data point
	GaussianMulti

	// LongTail is long-tailed gaussian noise with one shared uncertainty
	// parameter, robust to outlier data
	LongTail
)

// ParseNoiseType maps the option spellings (GAUSS, MGAUSS, LTAIL) to a
// NoiseType
func ParseNoiseType(s string) (NoiseType, error) {
	switch s {
	case "GAUSS":
		return GaussianSingle, nil
	case "MGAUSS":
		return GaussianMulti, nil
	case "LTAIL":
		return LongTail, nil
	}
	return 0, errors.Errorf("Unknown noise type %q (want GAUSS, MGAUSS, or LTAIL)", s)
}

func (n NoiseType) String() string {
	switch n {
	case GaussianSingle:
		return "GAUSS"
	case GaussianMulti:
		return "MGAUSS"
	case LongTail:
		return "LTAIL"
	}
	return "UNKNOWN"
}

func (n NoiseType) valid() bool {
	return n == GaussianSingle || n == GaussianMulti || n == LongTail
}

// perDatumSigma is true when every data point carries its own uncertainty
// parameter
func (n NoiseType) perDatumSigma() bool {
	return n == GaussianMulti
}
