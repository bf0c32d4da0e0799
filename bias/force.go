package bias

import (
	"math"

	"github.com/pkg/errors"
)

// energyForceGJE recomputes the reduced energy for the gaussian forms and
// fills forces with -kbt * dE/dx_i per argument. The per-sigma 1/ss partial
// sums are reduced across the inter group first and then spread within the
// intra group, so distributed observable sets see the consensus precision.
// The returned energy is reduced (pre-kbt).
func (m *Metainference) energyForceGJE(args []float64, forces []float64) (float64, error) {
	smean2 := m.sigmaMean * m.sigmaMean

	ssize := len(m.sigma)
	ss := make([]float64, ssize)
	invS2 := make([]float64, ssize)

	for i := range m.sigma {
		ss[i] = m.sigma[i]*m.sigma[i] + smean2
		if m.topo.Intra.Rank() == 0 {
			invS2[i] = 1.0 / ss[i]
		}
	}

	if m.topo.Intra.Rank() == 0 {
		if err := m.topo.Inter.SumFloat64s(invS2); err != nil {
			return 0, errors.Wrap(err, "Inter-replica reduction failed")
		}
	}
	if err := m.topo.Intra.SumFloat64s(invS2); err != nil {
		return 0, errors.Wrap(err, "Intra-replica reduction failed")
	}

	ene := 0.0
	for i, x := range args {
		dev := m.scale*x - m.parameters[i]
		sel := 0
		if m.noise.perDatumSigma() {
			sel = i
		}
		ene += 0.5*dev*dev*invS2[sel] + math.Log(ss[sel]*sqrt2Pi)
		forces[i] = -m.kbt * dev * m.scale * invS2[sel]
	}
	return ene, nil
}

// energyForceSPE recomputes the reduced energy for the long-tailed form and
// fills forces with kbt times the (already negative) analytic derivative.
// Order matters here: per-argument forces and energies are summed across the
// inter group, the local normalization and prior are added once by the
// replica representative, and only then does the intra group reduce. Doing it
// in any other order double-counts or drops the prior term.
func (m *Metainference) energyForceSPE(args []float64, forces []float64) (float64, error) {
	smean2 := m.sigmaMean * m.sigmaMean
	s := math.Sqrt(m.sigma[0]*m.sigma[0] + smean2)

	narg := len(args)
	f := make([]float64, narg)
	eneBuf := make([]float64, 1)

	if m.topo.Intra.Rank() == 0 {
		ene := 0.0
		for i, x := range args {
			dev := m.scale*x - m.parameters[i]
			a2 := 0.5*dev*dev + s*s
			t := math.Exp(-a2 / smean2)
			dt := 1.0 / t
			it := 1.0 / (1.0 - t)
			dit := 1.0 / (1.0 - dt)
			ene += math.Log(2.0 * a2 * it)
			f[i] = -m.scale * dev * (dit/smean2 + 1.0/a2)
		}

		// collect contributions to forces and energy from the other replicas
		if err := m.topo.Inter.SumFloat64s(f); err != nil {
			return 0, errors.Wrap(err, "Inter-replica force reduction failed")
		}
		eneBuf[0] = ene
		if err := m.topo.Inter.SumFloat64s(eneBuf); err != nil {
			return 0, errors.Wrap(err, "Inter-replica energy reduction failed")
		}

		// normalization and prior of the local replica, added exactly once
		eneBuf[0] += math.Log(s) - float64(m.ndata)*math.Log(sqrt2OverPi*s)
	}

	if err := m.topo.Intra.SumFloat64s(f); err != nil {
		return 0, errors.Wrap(err, "Intra-replica force reduction failed")
	}
	if err := m.topo.Intra.SumFloat64s(eneBuf); err != nil {
		return 0, errors.Wrap(err, "Intra-replica energy reduction failed")
	}

	for i := range f {
		forces[i] = m.kbt * f[i]
	}
	return eneBuf[0], nil
}
