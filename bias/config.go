package bias

import (
	"github.com/pkg/errors"
)

// kBoltzmann is the Boltzmann constant in kJ/(mol·K), the energy units the
// host engines we care about report temperatures in.
const kBoltzmann = 0.0083144621

// Config collects every option consumed at construction. All values are
// validated once by New and immutable afterwards.
type Config struct {
	// Noise selects the likelihood form relating observables and reference
	// values (compulsory)
	Noise NoiseType

	// Parameters are the experimental reference values, one per observable.
	// Exactly one of Parameters and ParArgs must be supplied.
	Parameters []float64

	// ParArgs are reference values read from other derivative-free
	// quantities of the host instead of literal parameters
	ParArgs []float64

	// ScaleData enables sampling of a scaling factor common to all values
	// and replicas
	ScaleData bool

	// Scale0, ScaleMin, ScaleMax, DScale are the initial value, bounds, and
	// maximum MC move of the scaling factor (used only with ScaleData)
	Scale0   float64
	ScaleMin float64
	ScaleMax float64
	DScale   float64

	// Sigma0 holds either one initial uncertainty (shared, or broadcast to
	// every data point under GaussianMulti) or one per observable
	// (GaussianMulti only)
	Sigma0 []float64

	// SigmaMin, SigmaMax, DSigma are the bounds and maximum MC move of the
	// uncertainty parameters
	SigmaMin float64
	SigmaMax float64
	DSigma   float64

	// SigmaMean is the uncertainty in the mean estimate of an observable,
	// before the 1/sqrt(replicas) reduction applied at setup
	SigmaMean float64

	// Temp is an explicit system temperature in Kelvin. Leave zero to use
	// the host-provided thermal energy KbT instead.
	Temp float64

	// KbT is the host's thermal energy scale, consulted when Temp is zero
	KbT float64

	// MCSteps is the number of Metropolis iterations per sampler invocation
	MCSteps int64

	// MCStride is the number of force-evaluation steps between sampler
	// invocations, before scaling by ApplyStride
	MCStride int64

	// ApplyStride is the host's multiple-time-step factor; MCStride is
	// multiplied by it once at setup. Zero means 1.
	ApplyStride int64

	// Seed is the entropy fed to the replica generator; zero seeds from the
	// wall clock
	Seed int64
}

// reference resolves the PARAMETERS/PARARG alternatives into the single
// reference vector, enforcing that exactly one source is present and that it
// covers every observable.
func (c *Config) reference(narg int) ([]float64, error) {
	if len(c.Parameters) > 0 && len(c.ParArgs) > 0 {
		return nil, errors.New("It is not possible to use ParArgs and Parameters together")
	}

	ref := c.Parameters
	if len(ref) == 0 {
		ref = c.ParArgs
	}
	if len(ref) == 0 {
		return nil, errors.New("Either Parameters or ParArgs must supply the reference values")
	}
	if len(ref) != narg {
		return nil, errors.Errorf("Reference values should include the same number of elements as the arguments: %d != %d", len(ref), narg)
	}

	out := make([]float64, narg)
	copy(out, ref)
	return out, nil
}

// sigma expands Sigma0 into the live uncertainty vector: one entry per
// observable for GaussianMulti, a single shared entry otherwise.
func (c *Config) sigma(narg int) ([]float64, error) {
	if !c.Noise.perDatumSigma() && len(c.Sigma0) > 1 {
		return nil, errors.Errorf("More than one Sigma0 value is only valid with noise type %s", GaussianMulti)
	}

	switch {
	case len(c.Sigma0) == narg:
		out := make([]float64, narg)
		copy(out, c.Sigma0)
		return out, nil
	case len(c.Sigma0) == 1:
		n := 1
		if c.Noise.perDatumSigma() {
			n = narg
		}
		out := make([]float64, n)
		for i := range out {
			out[i] = c.Sigma0[0]
		}
		return out, nil
	}
	return nil, errors.Errorf("Sigma0 can accept either one single value or as many values as the arguments: got %d for %d arguments", len(c.Sigma0), narg)
}

// thermalEnergy resolves the explicit temperature against the host's value
func (c *Config) thermalEnergy() (float64, error) {
	kbt := c.KbT
	if c.Temp > 0.0 {
		kbt = kBoltzmann * c.Temp
	}
	if kbt <= 0.0 {
		return 0, errors.New("No temperature available: set Temp or KbT")
	}
	return kbt, nil
}

// check validates everything not covered by the resolvers above
func (c *Config) check(narg int) error {
	if narg < 1 {
		return errors.Errorf("At least one argument is required: got %d", narg)
	}
	if !c.Noise.valid() {
		return errors.Errorf("Unknown noise type %d", int(c.Noise))
	}
	if c.SigmaMean <= 0.0 {
		return errors.Errorf("SigmaMean must be positive: got %g", c.SigmaMean)
	}
	if c.SigmaMin <= 0.0 {
		return errors.Errorf("SigmaMin must be positive: got %g", c.SigmaMin)
	}
	if c.SigmaMax < c.SigmaMin {
		return errors.Errorf("SigmaMax %g is below SigmaMin %g", c.SigmaMax, c.SigmaMin)
	}
	if c.ScaleData && c.ScaleMax < c.ScaleMin {
		return errors.Errorf("ScaleMax %g is below ScaleMin %g", c.ScaleMax, c.ScaleMin)
	}
	if c.MCSteps < 1 {
		return errors.Errorf("MCSteps must be at least 1: got %d", c.MCSteps)
	}
	if c.MCStride < 1 {
		return errors.Errorf("MCStride must be at least 1: got %d", c.MCStride)
	}
	return nil
}
