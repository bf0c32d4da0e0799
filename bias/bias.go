// Package bias implements a Bayesian metainference score: a bias energy that
// reconciles simulated observables with noisy experimental reference data by
// sampling a data-scaling factor and noise-uncertainty parameters with
// Metropolis Monte Carlo, then feeds the posterior back to the host as a bias
// value and per-argument generalized forces.
package bias

import (
	"math"

	"github.com/pkg/errors"

	"github.com/cdmartin/metainf/comm"
	"github.com/cdmartin/metainf/rand"
)

// Metainference is one bias instance. All mutable state (scale, sigma, the
// cached MC energy, the accept counter) is owned here and only touched inside
// the Monte Carlo batch, which Calculate invokes from a single call site.
type Metainference struct {
	noise      NoiseType
	parameters []float64 // experimental reference values, fixed at setup
	ndata      int

	doScale  bool
	scale    float64
	scaleMin float64
	scaleMax float64
	dScale   float64

	sigma    []float64
	sigmaMin float64
	sigmaMax float64
	dSigma   float64

	// uncertainty in the mean estimate, already divided by sqrt(replicas)
	sigmaMean float64

	kbt float64

	oldEnergy float64
	mcSteps   int64
	mcStride  int64
	mcAccept  int64
	mcFirst   int64 // -1 until the first Calculate fixes it

	nrep    int64
	replica int64

	topo comm.Topology
	gen  *rand.Generator

	scaleBuf []float64 // scratch for scalar scale collectives
}

// Result is what one Calculate step publishes back to the host
type Result struct {
	// Bias is the bias potential in energy units
	Bias float64

	// Forces holds the per-argument generalized force -kbt * dE/dx_i. It is
	// meant to be added to the host's force accumulator.
	Forces []float64

	// Scale is the current data-scaling factor (1.0 when not sampled)
	Scale float64

	// Sigma holds the current uncertainty parameter(s)
	Sigma []float64

	// Accept is the running MC acceptance ratio in [0, 1]
	Accept float64
}

// New validates the configuration and builds a bias over narg observables
// communicating on the given topology. Every process of every replica must
// construct with the same options: construction itself performs collectives.
func New(narg int, cfg Config, topo comm.Topology) (*Metainference, error) {
	if err := cfg.check(narg); err != nil {
		return nil, err
	}

	parameters, err := cfg.reference(narg)
	if err != nil {
		return nil, err
	}

	sigma, err := cfg.sigma(narg)
	if err != nil {
		return nil, err
	}

	kbt, err := cfg.thermalEnergy()
	if err != nil {
		return nil, err
	}

	m := &Metainference{
		noise:      cfg.Noise,
		parameters: parameters,
		ndata:      narg,
		doScale:    cfg.ScaleData,
		scale:      1.0,
		sigma:      sigma,
		sigmaMin:   cfg.SigmaMin,
		sigmaMax:   cfg.SigmaMax,
		dSigma:     cfg.DSigma,
		kbt:        kbt,
		mcSteps:    cfg.MCSteps,
		mcStride:   cfg.MCStride,
		mcFirst:    -1,
		topo:       topo,
		scaleBuf:   make([]float64, 1),
	}

	if m.doScale {
		m.scale = cfg.Scale0
		m.scaleMin = cfg.ScaleMin
		m.scaleMax = cfg.ScaleMax
		m.dScale = cfg.DScale
	}

	m.nrep, m.replica, err = topo.Replicas()
	if err != nil {
		return nil, errors.Wrap(err, "Could not discover replica layout")
	}

	// more replicas mean a better mean estimate
	m.sigmaMean = cfg.SigmaMean / math.Sqrt(float64(m.nrep))

	// adjust for the host's multiple-time-step factor
	if cfg.ApplyStride > 1 {
		m.mcStride *= cfg.ApplyStride
	}

	m.gen, err = rand.NewReplicaGenerator(cfg.Seed, m.replica, topo.Intra)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Calculate advances the bias by one force-evaluation step: it runs the Monte
// Carlo batch when the stride allows (never on a replica-exchange step),
// updates the acceptance bookkeeping, and computes the bias and forces for
// the current observable values.
func (m *Metainference) Calculate(step int64, exchangeStep bool, args []float64) (*Result, error) {
	if len(args) != m.ndata {
		return nil, errors.Errorf("Expected %d arguments, got %d", m.ndata, len(args))
	}

	if step%m.mcStride == 0 && !exchangeStep {
		if err := m.doMonteCarlo(args); err != nil {
			return nil, err
		}
	}

	// needed when restarting: the first step seen anchors the trial count
	if m.mcFirst == -1 {
		m.mcFirst = step
	}

	trials := math.Floor(float64(step-m.mcFirst)/float64(m.mcStride)) + 1.0
	accept := float64(m.mcAccept) / float64(m.mcSteps) / trials

	res := &Result{
		Forces: make([]float64, m.ndata),
		Scale:  m.scale,
		Sigma:  append([]float64(nil), m.sigma...),
		Accept: accept,
	}

	var ene float64
	var err error
	switch m.noise {
	case GaussianSingle, GaussianMulti:
		ene, err = m.energyForceGJE(args, res.Forces)
	case LongTail:
		ene, err = m.energyForceSPE(args, res.Forces)
	default:
		err = errors.Errorf("Unknown noise type %d", int(m.noise))
	}
	if err != nil {
		return nil, err
	}

	res.Bias = m.kbt * ene
	return res, nil
}

// NArg returns the number of observables this bias tracks
func (m *Metainference) NArg() int {
	return m.ndata
}

// KbT returns the thermal energy scale fixed at setup
func (m *Metainference) KbT() float64 {
	return m.kbt
}

// Replicas returns the replica count and this process's replica index
func (m *Metainference) Replicas() (int64, int64) {
	return m.nrep, m.replica
}
